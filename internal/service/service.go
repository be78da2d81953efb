// Package service wires the price intelligence and accounting engines to the
// repositories, the clock and the event sink.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/chrisdamba/foodmarket/internal/accounting"
	"github.com/chrisdamba/foodmarket/internal/clock"
	"github.com/chrisdamba/foodmarket/internal/events"
	"github.com/chrisdamba/foodmarket/internal/intelligence"
	"github.com/chrisdamba/foodmarket/internal/models"
	"github.com/chrisdamba/foodmarket/internal/output"
	"github.com/chrisdamba/foodmarket/internal/ranking"
	"github.com/chrisdamba/foodmarket/internal/repositories"
)

var (
	ErrNoExporter    = errors.New("no invoice exporter configured")
	ErrNoArchive     = errors.New("no invoice repository configured")
	ErrMissingItemID = errors.New("menu item id is required")
)

// Dependencies are the collaborators a Service needs. Invoices, Publisher and
// Exporter are optional.
type Dependencies struct {
	Orders      repositories.OrderRepository
	Restaurants repositories.RestaurantRepository
	Invoices    repositories.InvoiceRepository
	Clock       clock.Clock
	Publisher   *events.Publisher
	Exporter    *output.InvoiceExporter
}

type Service struct {
	orders       repositories.OrderRepository
	restaurants  repositories.RestaurantRepository
	invoices     repositories.InvoiceRepository
	clock        clock.Clock
	publisher    *events.Publisher
	exporter     *output.InvoiceExporter
	location     *time.Location
	intelligence *intelligence.Engine
	accounting   *accounting.Engine

	mu        sync.Mutex
	penalties map[string]int
}

func New(cfg *models.Config, loc *time.Location, deps Dependencies) *Service {
	if loc == nil {
		loc = time.Local
	}
	if deps.Clock == nil {
		deps.Clock = clock.System{Location: loc}
	}

	acct := accounting.NewEngine(cfg.Accounting, loc)
	acct.Skipped = func(o models.Order, err error) {
		log.Printf("[accounting] skipping order %s of restaurant %s: %v", o.ID, o.RestaurantID, err)
	}

	return &Service{
		orders:       deps.Orders,
		restaurants:  deps.Restaurants,
		invoices:     deps.Invoices,
		clock:        deps.Clock,
		publisher:    deps.Publisher,
		exporter:     deps.Exporter,
		location:     loc,
		intelligence: intelligence.NewEngine(cfg.Intelligence),
		accounting:   acct,
		penalties:    make(map[string]int),
	}
}

func (s *Service) now() time.Time {
	return s.clock.Now().In(s.location)
}

func (s *Service) restaurantOrders(ctx context.Context, restaurantID string) ([]models.Order, error) {
	if restaurantID == "" {
		return nil, accounting.ErrMissingRestaurantID
	}
	orders, err := s.orders.ListOrders(ctx, models.OrderFilter{RestaurantID: restaurantID})
	if err != nil {
		return nil, fmt.Errorf("list orders of %s: %w", restaurantID, err)
	}
	return orders, nil
}

// PriceIntelligence evaluates one menu item of a restaurant against the
// other restaurants open at the current hour. The bool is false when no
// comparison could be made, which includes a restaurant or item missing
// from the snapshot.
func (s *Service) PriceIntelligence(ctx context.Context, restaurantID, itemID string) (*intelligence.Result, bool, error) {
	if restaurantID == "" {
		return nil, false, accounting.ErrMissingRestaurantID
	}
	if itemID == "" {
		return nil, false, ErrMissingItemID
	}
	restaurants, err := s.restaurants.ListRestaurants(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("list restaurants: %w", err)
	}

	for _, r := range restaurants {
		if r.ID != restaurantID {
			continue
		}
		for _, item := range r.Menu {
			if item.ID != itemID {
				continue
			}
			result, ok := s.intelligence.Evaluate(item, restaurantID, restaurants, s.now().Hour())
			return result, ok, nil
		}
		break
	}
	return nil, false, nil
}

func (s *Service) WeeklyCommission(ctx context.Context, restaurantID string) (accounting.CommissionSummary, error) {
	orders, err := s.restaurantOrders(ctx, restaurantID)
	if err != nil {
		return accounting.CommissionSummary{}, err
	}
	return s.accounting.WeeklyCommission(restaurantID, orders, s.now())
}

// AccountingStatus also emits a penalty event when the level differs from
// the last one this service observed for the restaurant.
func (s *Service) AccountingStatus(ctx context.Context, restaurantID string) (accounting.AccountingStatus, error) {
	orders, err := s.restaurantOrders(ctx, restaurantID)
	if err != nil {
		return accounting.AccountingStatus{}, err
	}
	now := s.now()
	status, err := s.accounting.Status(restaurantID, orders, now)
	if err != nil {
		return accounting.AccountingStatus{}, err
	}
	s.observePenalty(now, restaurantID, status)
	return status, nil
}

func (s *Service) observePenalty(now time.Time, restaurantID string, status accounting.AccountingStatus) {
	s.mu.Lock()
	previous := s.penalties[restaurantID]
	s.penalties[restaurantID] = status.PenaltyLevel
	s.mu.Unlock()

	if err := s.publisher.PenaltyChanged(now, restaurantID, previous, status); err != nil {
		log.Printf("[events] penalty level event for %s: %v", restaurantID, err)
	}
}

func (s *Service) InvoiceHistory(ctx context.Context, restaurantID string) ([]accounting.InvoiceRecord, error) {
	orders, err := s.restaurantOrders(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	return s.accounting.InvoiceHistory(restaurantID, orders, s.now())
}

// MarkPeriodPaid settles one week and returns the ids of the orders it
// flagged. Settling an already paid week flags nothing and emits nothing.
func (s *Service) MarkPeriodPaid(ctx context.Context, restaurantID string, week accounting.WeekKey) ([]string, error) {
	orders, err := s.restaurantOrders(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	before, err := s.accounting.WeeklyCommissionFor(restaurantID, orders, week)
	if err != nil {
		return nil, err
	}

	marked, err := s.accounting.MarkPeriodPaid(ctx, s.orders, restaurantID, week)
	if err != nil {
		return marked, err
	}
	if len(marked) == 0 {
		return marked, nil
	}
	log.Printf("[accounting] marked %d orders of %s paid for week %s", len(marked), restaurantID, week)

	now := s.now()
	if err := s.publisher.PeriodPaid(now, restaurantID, week, marked, before.PendingCommission); err != nil {
		log.Printf("[events] period paid event for %s: %v", restaurantID, err)
	}
	if _, err := s.AccountingStatus(ctx, restaurantID); err != nil {
		log.Printf("[accounting] refreshing status of %s: %v", restaurantID, err)
	}
	return marked, nil
}

// Storefront lists every restaurant ranked for the customer facing list.
func (s *Service) Storefront(ctx context.Context, mode ranking.SortMode) ([]ranking.RankedRestaurant, error) {
	restaurants, err := s.restaurants.ListRestaurants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	unpaid, err := s.orders.ListOrders(ctx, models.OrderFilter{UnpaidOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list unpaid orders: %w", err)
	}

	byRestaurant := make(map[string][]models.Order)
	for _, o := range unpaid {
		byRestaurant[o.RestaurantID] = append(byRestaurant[o.RestaurantID], o)
	}

	now := s.now()
	ranked := make([]ranking.RankedRestaurant, 0, len(restaurants))
	for _, r := range restaurants {
		entry := ranking.RankedRestaurant{Restaurant: r}
		if r.ID != "" {
			status, err := s.accounting.Status(r.ID, byRestaurant[r.ID], now)
			if err != nil {
				return nil, err
			}
			entry.PenaltyLevel = status.PenaltyLevel
		}
		ranked = append(ranked, entry)
	}
	return ranking.Sort(ranked, mode, now.Hour()), nil
}

// ArchiveInvoices stores the current invoice history of a restaurant in the
// invoice repository and returns it.
func (s *Service) ArchiveInvoices(ctx context.Context, restaurantID string) ([]accounting.InvoiceRecord, error) {
	if s.invoices == nil {
		return nil, ErrNoArchive
	}
	history, err := s.InvoiceHistory(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if err := s.invoices.UpsertInvoices(ctx, history); err != nil {
		return nil, fmt.Errorf("archive invoices of %s: %w", restaurantID, err)
	}
	return history, nil
}

// ArchivedInvoices reads back what ArchiveInvoices stored, newest first.
func (s *Service) ArchivedInvoices(ctx context.Context, restaurantID string) ([]accounting.InvoiceRecord, error) {
	if s.invoices == nil {
		return nil, ErrNoArchive
	}
	if restaurantID == "" {
		return nil, accounting.ErrMissingRestaurantID
	}
	records, err := s.invoices.ListInvoices(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("archived invoices of %s: %w", restaurantID, err)
	}
	if records == nil {
		records = []accounting.InvoiceRecord{}
	}
	return records, nil
}

// ExportInvoices writes the invoice history of one restaurant, or of every
// restaurant when restaurantID is empty, as a single Parquet file.
func (s *Service) ExportInvoices(ctx context.Context, restaurantID string) (string, error) {
	if s.exporter == nil {
		return "", ErrNoExporter
	}

	ids := []string{restaurantID}
	name := restaurantID
	if restaurantID == "" {
		restaurants, err := s.restaurants.ListRestaurants(ctx)
		if err != nil {
			return "", fmt.Errorf("list restaurants: %w", err)
		}
		ids = ids[:0]
		for _, r := range restaurants {
			ids = append(ids, r.ID)
		}
		name = "all-" + s.now().Format("20060102")
	}

	var invoices []accounting.InvoiceRecord
	for _, id := range ids {
		history, err := s.InvoiceHistory(ctx, id)
		if err != nil {
			return "", err
		}
		invoices = append(invoices, history...)
	}
	return s.exporter.Export(ctx, name, invoices)
}

// Close releases the event sink.
func (s *Service) Close() error {
	return s.publisher.Close()
}
