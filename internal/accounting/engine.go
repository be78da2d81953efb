// Package accounting computes the platform commission owed by restaurants,
// week by week, and the penalty level used to demote late payers.
package accounting

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chrisdamba/foodmarket/internal/models"
)

const (
	// CommissionRate is the share of gross revenue owed to the platform.
	CommissionRate = 0.05
	// GracePeriodDays after a week's Sunday before non-payment is penalised.
	GracePeriodDays = 5
	// MaxPenaltyLevel caps the escalation.
	MaxPenaltyLevel = 3
)

var ErrMissingRestaurantID = errors.New("restaurant id is required")

type InvoiceStatus string

const (
	InvoicePaid            InvoiceStatus = "paid"
	InvoiceAwaitingPayment InvoiceStatus = "awaiting_payment"
	InvoiceOverdue         InvoiceStatus = "overdue"
)

// CommissionSummary covers a single week.
type CommissionSummary struct {
	Week              WeekKey `json:"week"`
	TotalOrders       int     `json:"total_orders"`
	GrossRevenue      float64 `json:"gross_revenue"`
	CommissionAmount  float64 `json:"commission_amount"`
	CouponsUsed       float64 `json:"coupons_used"`
	NetCommission     float64 `json:"net_commission"`
	PendingCommission float64 `json:"pending_commission"`
}

type WeeklyPeriod struct {
	Key           WeekKey   `json:"key"`
	WeekStart     time.Time `json:"week_start"`
	WeekEnd       time.Time `json:"week_end"`
	GraceDeadline time.Time `json:"grace_deadline"`
	GrossRevenue  float64   `json:"gross_revenue"`
	CouponsUsed   float64   `json:"coupons_used"`
	NetCommission float64   `json:"net_commission"`
	GraceExpired  bool      `json:"grace_expired"`
	OrderIDs      []string  `json:"order_ids"`
}

type AccountingStatus struct {
	PenaltyLevel  int            `json:"penalty_level"`
	UnpaidPeriods []WeeklyPeriod `json:"unpaid_periods"`
	TotalPending  float64        `json:"total_pending"`
}

type InvoiceRecord struct {
	ID                string        `json:"id"`
	RestaurantID      string        `json:"restaurant_id"`
	Period            WeeklyPeriod  `json:"period"`
	Status            InvoiceStatus `json:"status"`
	OrderCount        int           `json:"order_count"`
	PendingCommission float64       `json:"pending_commission"`
}

// InvoiceID is the stable identifier of a restaurant's invoice for a week.
func InvoiceID(restaurantID string, week WeekKey) string {
	return restaurantID + ":" + week.String()
}

type Engine struct {
	Rate      decimal.Decimal
	GraceDays int
	Location  *time.Location
	// Skipped, when set, receives every order excluded because its date
	// does not parse. Reporting is left to the caller.
	Skipped func(order models.Order, err error)
}

func NewEngine(cfg models.AccountingConfig, loc *time.Location) *Engine {
	e := &Engine{
		Rate:      decimal.NewFromFloat(cfg.CommissionRate),
		GraceDays: cfg.GracePeriodDays,
		Location:  loc,
	}
	if cfg.CommissionRate <= 0 {
		e.Rate = decimal.NewFromFloat(CommissionRate)
	}
	if cfg.GracePeriodDays <= 0 {
		e.GraceDays = GracePeriodDays
	}
	if e.Location == nil {
		e.Location = time.Local
	}
	return e
}

// DefaultEngine uses the 5% rate, 5 grace days and local time.
func DefaultEngine() *Engine {
	return NewEngine(models.AccountingConfig{}, time.Local)
}

type datedOrder struct {
	models.Order
	at time.Time
}

type bucket struct {
	key            WeekKey
	gross          decimal.Decimal
	coupons        decimal.Decimal
	pendingGross   decimal.Decimal
	pendingCoupons decimal.Decimal
	orders         []datedOrder
	allPaid        bool
}

func (b *bucket) add(o datedOrder) {
	gross := decimal.NewFromFloat(o.Gross())
	coupon := decimal.NewFromFloat(o.CouponDiscount)
	b.gross = b.gross.Add(gross)
	b.coupons = b.coupons.Add(coupon)
	if !o.IsCommissionPaid {
		b.allPaid = false
		b.pendingGross = b.pendingGross.Add(gross)
		b.pendingCoupons = b.pendingCoupons.Add(coupon)
	}
	b.orders = append(b.orders, o)
}

func (e *Engine) net(gross, coupons decimal.Decimal) decimal.Decimal {
	return gross.Mul(e.Rate).Sub(coupons)
}

// relevant keeps the restaurant's orders with a parseable date. Order status
// plays no part: a cancelled order still owes commission until paid.
func (e *Engine) relevant(restaurantID string, orders []models.Order, keep func(models.Order) bool) []datedOrder {
	out := make([]datedOrder, 0, len(orders))
	for _, o := range orders {
		if o.RestaurantID != restaurantID {
			continue
		}
		if keep != nil && !keep(o) {
			continue
		}
		at, err := ParseOrderDate(o.Date, e.Location)
		if err != nil {
			if e.Skipped != nil {
				e.Skipped(o, err)
			}
			continue
		}
		out = append(out, datedOrder{Order: o, at: at})
	}
	return out
}

func (e *Engine) bucketize(orders []datedOrder) []*bucket {
	byKey := make(map[WeekKey]*bucket)
	var buckets []*bucket
	for _, o := range orders {
		key := WeekKeyOf(o.at)
		b, ok := byKey[key]
		if !ok {
			b = &bucket{key: key, allPaid: true}
			byKey[key] = b
			buckets = append(buckets, b)
		}
		b.add(o)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].key.Before(buckets[j].key)
	})
	return buckets
}

func (e *Engine) period(b *bucket, now time.Time) WeeklyPeriod {
	deadline := b.key.GraceDeadline(e.Location, e.GraceDays)
	ids := make([]string, len(b.orders))
	for i, o := range b.orders {
		ids[i] = o.ID
	}
	return WeeklyPeriod{
		Key:           b.key,
		WeekStart:     b.key.Start(e.Location),
		WeekEnd:       b.key.End(e.Location),
		GraceDeadline: deadline,
		GrossRevenue:  b.gross.InexactFloat64(),
		CouponsUsed:   b.coupons.InexactFloat64(),
		NetCommission: e.net(b.gross, b.coupons).InexactFloat64(),
		GraceExpired:  now.After(deadline),
		OrderIDs:      ids,
	}
}

// WeeklyCommission summarises the week containing now, from Monday 00:00 up
// to now.
func (e *Engine) WeeklyCommission(restaurantID string, orders []models.Order, now time.Time) (CommissionSummary, error) {
	week := WeekKeyOf(now.In(e.Location))
	return e.summarise(restaurantID, orders, week, now)
}

// WeeklyCommissionFor summarises a whole week regardless of now.
func (e *Engine) WeeklyCommissionFor(restaurantID string, orders []models.Order, week WeekKey) (CommissionSummary, error) {
	return e.summarise(restaurantID, orders, week, week.End(e.Location))
}

func (e *Engine) summarise(restaurantID string, orders []models.Order, week WeekKey, until time.Time) (CommissionSummary, error) {
	if restaurantID == "" {
		return CommissionSummary{}, ErrMissingRestaurantID
	}
	summary := CommissionSummary{Week: week}
	start := week.Start(e.Location)

	var gross, coupons, pendGross, pendCoupons decimal.Decimal
	for _, o := range e.relevant(restaurantID, orders, nil) {
		if o.at.Before(start) || o.at.After(until) {
			continue
		}
		g := decimal.NewFromFloat(o.Gross())
		c := decimal.NewFromFloat(o.CouponDiscount)
		summary.TotalOrders++
		gross = gross.Add(g)
		coupons = coupons.Add(c)
		if !o.IsCommissionPaid {
			pendGross = pendGross.Add(g)
			pendCoupons = pendCoupons.Add(c)
		}
	}

	summary.GrossRevenue = gross.InexactFloat64()
	summary.CommissionAmount = gross.Mul(e.Rate).InexactFloat64()
	summary.CouponsUsed = coupons.InexactFloat64()
	summary.NetCommission = e.net(gross, coupons).InexactFloat64()
	summary.PendingCommission = e.net(pendGross, pendCoupons).InexactFloat64()
	return summary, nil
}

// Status buckets the unpaid orders by week and derives the penalty level
// from the number of weeks whose grace period has run out.
func (e *Engine) Status(restaurantID string, orders []models.Order, now time.Time) (AccountingStatus, error) {
	if restaurantID == "" {
		return AccountingStatus{}, ErrMissingRestaurantID
	}
	unpaid := e.relevant(restaurantID, orders, func(o models.Order) bool { return !o.IsCommissionPaid })
	status := AccountingStatus{UnpaidPeriods: []WeeklyPeriod{}}
	if len(unpaid) == 0 {
		return status, nil
	}

	total := decimal.Zero
	expired := 0
	for _, b := range e.bucketize(unpaid) {
		p := e.period(b, now)
		if p.GraceExpired {
			expired++
		}
		total = total.Add(e.net(b.gross, b.coupons))
		status.UnpaidPeriods = append(status.UnpaidPeriods, p)
	}

	status.PenaltyLevel = PenaltyLevel(expired)
	status.TotalPending = total.InexactFloat64()
	return status, nil
}

// PenaltyLevel maps the number of expired unpaid weeks to 0..3.
func PenaltyLevel(expiredPeriods int) int {
	switch {
	case expiredPeriods <= 0:
		return 0
	case expiredPeriods >= MaxPenaltyLevel:
		return MaxPenaltyLevel
	default:
		return expiredPeriods
	}
}

// InvoiceHistory returns one record per week with orders, newest first.
func (e *Engine) InvoiceHistory(restaurantID string, orders []models.Order, now time.Time) ([]InvoiceRecord, error) {
	if restaurantID == "" {
		return nil, ErrMissingRestaurantID
	}
	buckets := e.bucketize(e.relevant(restaurantID, orders, nil))
	records := make([]InvoiceRecord, 0, len(buckets))
	for _, b := range buckets {
		p := e.period(b, now)
		status := InvoicePaid
		switch {
		case b.allPaid:
		case !now.After(p.GraceDeadline):
			status = InvoiceAwaitingPayment
		default:
			status = InvoiceOverdue
		}
		records = append(records, InvoiceRecord{
			ID:                InvoiceID(restaurantID, b.key),
			RestaurantID:      restaurantID,
			Period:            p,
			Status:            status,
			OrderCount:        len(b.orders),
			PendingCommission: e.net(b.pendingGross, b.pendingCoupons).InexactFloat64(),
		})
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Period.WeekEnd.After(records[j].Period.WeekEnd)
	})
	return records, nil
}
