package service

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisdamba/foodmarket/internal/accounting"
	"github.com/chrisdamba/foodmarket/internal/clock"
	"github.com/chrisdamba/foodmarket/internal/events"
	"github.com/chrisdamba/foodmarket/internal/models"
	"github.com/chrisdamba/foodmarket/internal/output"
	"github.com/chrisdamba/foodmarket/internal/ranking"
	"github.com/chrisdamba/foodmarket/internal/repositories"
	"github.com/chrisdamba/foodmarket/internal/repositories/cache"
	"github.com/chrisdamba/foodmarket/internal/repositories/fallback"
	"github.com/chrisdamba/foodmarket/internal/repositories/memory"
)

type sent struct {
	topic string
	body  []byte
}

type recordingOutput struct {
	messages []sent
}

func (r *recordingOutput) WriteMessage(topic string, msg []byte) error {
	r.messages = append(r.messages, sent{topic: topic, body: msg})
	return nil
}

func (r *recordingOutput) Close() error { return nil }

func (r *recordingOutput) topics() []string {
	out := make([]string, len(r.messages))
	for i, m := range r.messages {
		out[i] = m.topic
	}
	return out
}

// Wednesday 20 March 2024, noon.
var now = time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

func fixtureRestaurants() []models.Restaurant {
	return []models.Restaurant{
		{
			ID: "r1", Name: "Alpha Grill", Rating: 4.9, OpenTime: 0, CloseTime: 24,
			Menu: []models.MenuItem{{ID: "m1", Name: "Adana Kebap", Price: 300, BaseCategory: "kebab"}},
		},
		{
			ID: "r2", Name: "Beta Doner", Rating: 4.0, OpenTime: 0, CloseTime: 24,
			Menu: []models.MenuItem{{ID: "m2", Name: "Urfa Kebap", Price: 200, BaseCategory: "kebab"}},
		},
		{
			ID: "r3", Name: "Gamma Ocakbasi", Rating: 5.0, OpenTime: 0, CloseTime: 24,
			Menu: []models.MenuItem{{ID: "m3", Name: "Beyti", Price: 250, BaseCategory: "Kebab"}},
		},
	}
}

func fixtureOrders() []models.Order {
	return []models.Order{
		{ID: "o1", RestaurantID: "r1", Total: 100, Date: "04.03.2024", Status: models.OrderStatusDelivered},
		{ID: "o2", RestaurantID: "r1", Total: 200, Date: "12.03.2024", Status: models.OrderStatusDelivered},
		{ID: "o3", RestaurantID: "r1", Total: 50, Date: "19.03.2024", Status: models.OrderStatusDelivered, IsCommissionPaid: true},
		{ID: "o5", RestaurantID: "r3", Total: 80, Date: "26.02.2024", Status: models.OrderStatusDelivered},
		{ID: "o6", RestaurantID: "r3", Total: 60, Date: "05.03.2024", Status: models.OrderStatusDelivered},
	}
}

func newTestService(t *testing.T, store *memory.Store) (*Service, *recordingOutput) {
	t.Helper()
	rec := &recordingOutput{}
	cfg := &models.Config{}
	svc := New(cfg, time.UTC, Dependencies{
		Orders:      store,
		Restaurants: store,
		Invoices:    store,
		Clock:       clock.Fixed(now),
		Publisher:   events.NewPublisher(rec),
		Exporter:    output.NewLocalInvoiceExporter(t.TempDir(), "exports"),
	})
	return svc, rec
}

func TestPriceIntelligence(t *testing.T) {
	svc, _ := newTestService(t, memory.NewStore(fixtureRestaurants(), nil))
	ctx := context.Background()

	result, ok, err := svc.PriceIntelligence(ctx, "r1", "m1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, result.IsExpensive)
	assert.Equal(t, 225.0, result.AvgPrice)
	assert.Equal(t, 300.0, result.CurrentPrice)
	assert.Equal(t, 25.0, result.SavingsPercent)
	require.Len(t, result.BestOptions, 2)
	assert.Equal(t, "r2", result.BestOptions[0].RestaurantID)

	result, ok, err = svc.PriceIntelligence(ctx, "r1", "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, result)
	result, ok, err = svc.PriceIntelligence(ctx, "nope", "m1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, result)

	_, _, err = svc.PriceIntelligence(ctx, "", "m1")
	assert.ErrorIs(t, err, accounting.ErrMissingRestaurantID)
	_, _, err = svc.PriceIntelligence(ctx, "r1", "")
	assert.ErrorIs(t, err, ErrMissingItemID)
}

func TestWeeklyCommission(t *testing.T) {
	svc, _ := newTestService(t, memory.NewStore(fixtureRestaurants(), fixtureOrders()))

	summary, err := svc.WeeklyCommission(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-18", summary.Week.String())
	assert.Equal(t, 1, summary.TotalOrders)
	assert.InDelta(t, 2.5, summary.NetCommission, 1e-9)
	assert.InDelta(t, 0, summary.PendingCommission, 1e-9)

	_, err = svc.WeeklyCommission(context.Background(), "")
	assert.ErrorIs(t, err, accounting.ErrMissingRestaurantID)
}

func TestAccountingStatusEmitsPenaltyChanges(t *testing.T) {
	svc, rec := newTestService(t, memory.NewStore(fixtureRestaurants(), fixtureOrders()))
	ctx := context.Background()

	status, err := svc.AccountingStatus(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 1, status.PenaltyLevel)
	require.Len(t, status.UnpaidPeriods, 2)
	assert.True(t, status.UnpaidPeriods[0].GraceExpired)
	assert.False(t, status.UnpaidPeriods[1].GraceExpired)
	assert.InDelta(t, 15, status.TotalPending, 1e-9)
	assert.Equal(t, []string{events.TopicPenaltyLevel}, rec.topics())

	// unchanged level, no new event
	_, err = svc.AccountingStatus(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, rec.messages, 1)
}

func TestMarkPeriodPaid(t *testing.T) {
	store := memory.NewStore(fixtureRestaurants(), fixtureOrders())
	svc, rec := newTestService(t, store)
	ctx := context.Background()

	_, err := svc.AccountingStatus(ctx, "r1")
	require.NoError(t, err)
	rec.messages = nil

	week, err := accounting.ParseWeekKey("2024-03-04")
	require.NoError(t, err)

	marked, err := svc.MarkPeriodPaid(ctx, "r1", week)
	require.NoError(t, err)
	assert.Equal(t, []string{"o1"}, marked)
	assert.Equal(t, []string{events.TopicCommissionPeriodPaid, events.TopicPenaltyLevel}, rec.topics())

	var paid events.CommissionPeriodPaidEvent
	require.NoError(t, json.Unmarshal(rec.messages[0].body, &paid))
	assert.Equal(t, "2024-03-04", paid.Week)
	assert.InDelta(t, 5, paid.NetCommission, 1e-9)

	status, err := svc.AccountingStatus(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 0, status.PenaltyLevel)
	assert.Len(t, status.UnpaidPeriods, 1)

	rec.messages = nil
	marked, err = svc.MarkPeriodPaid(ctx, "r1", week)
	require.NoError(t, err)
	assert.Empty(t, marked)
	assert.Empty(t, rec.messages)
}

func TestStorefront(t *testing.T) {
	svc, _ := newTestService(t, memory.NewStore(fixtureRestaurants(), fixtureOrders()))
	ctx := context.Background()

	ids := func(rs []ranking.RankedRestaurant) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.ID
		}
		return out
	}

	recommended, err := svc.Storefront(ctx, ranking.SortRecommended)
	require.NoError(t, err)
	assert.Equal(t, []string{"r2", "r1", "r3"}, ids(recommended))
	assert.Equal(t, 1, recommended[1].PenaltyLevel)
	assert.Equal(t, 2, recommended[2].PenaltyLevel)

	byRating, err := svc.Storefront(ctx, ranking.SortRating)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2", "r3"}, ids(byRating))
}

func TestInvoiceHistoryArchiveAndExport(t *testing.T) {
	store := memory.NewStore(fixtureRestaurants(), fixtureOrders())
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	history, err := svc.InvoiceHistory(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, accounting.InvoicePaid, history[0].Status)
	assert.Equal(t, accounting.InvoiceAwaitingPayment, history[1].Status)
	assert.Equal(t, accounting.InvoiceOverdue, history[2].Status)

	archived, err := svc.ArchiveInvoices(ctx, "r1")
	require.NoError(t, err)
	stored, err := store.ListInvoices(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, stored, len(archived))
	fromArchive, err := svc.ArchivedInvoices(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, fromArchive, 3)
	assert.Equal(t, history[0].ID, fromArchive[0].ID)

	location, err := svc.ExportInvoices(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "all-20240320.parquet", filepath.Base(location))
}

func TestExportWithoutExporter(t *testing.T) {
	store := memory.NewStore(nil, nil)
	svc := New(&models.Config{}, time.UTC, Dependencies{Orders: store, Restaurants: store, Clock: clock.Fixed(now)})

	_, err := svc.ExportInvoices(context.Background(), "r1")
	assert.ErrorIs(t, err, ErrNoExporter)
	_, err = svc.ArchiveInvoices(context.Background(), "r1")
	assert.ErrorIs(t, err, ErrNoArchive)
	_, err = svc.ArchivedInvoices(context.Background(), "r1")
	assert.ErrorIs(t, err, ErrNoArchive)
	assert.NoError(t, svc.Close())
}

type downStore struct{}

func (downStore) ListOrders(context.Context, models.OrderFilter) ([]models.Order, error) {
	return nil, repositories.Unavailable("list orders", errors.New("connection refused"))
}

func (downStore) UpdateOrder(context.Context, string, models.OrderPatch) error {
	return repositories.Unavailable("update order", errors.New("connection refused"))
}

func (downStore) ListRestaurants(context.Context) ([]models.Restaurant, error) {
	return nil, repositories.Unavailable("list restaurants", errors.New("connection refused"))
}

func TestDegradesToEmptyResultsWhenStoreIsDown(t *testing.T) {
	repo := fallback.New(downStore{}, cache.NewMemoryCache(0))
	svc := New(&models.Config{}, time.UTC, Dependencies{Orders: repo, Restaurants: repo, Clock: clock.Fixed(now)})
	ctx := context.Background()

	status, err := svc.AccountingStatus(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 0, status.PenaltyLevel)
	assert.Empty(t, status.UnpaidPeriods)

	storefront, err := svc.Storefront(ctx, ranking.SortRecommended)
	require.NoError(t, err)
	assert.Empty(t, storefront)

	_, err = svc.MarkPeriodPaid(ctx, "r1", accounting.WeekKeyOf(now))
	assert.NoError(t, err)

	result, ok, err := svc.PriceIntelligence(ctx, "r1", "i1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, result)
}
