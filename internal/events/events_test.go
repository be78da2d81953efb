package events

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisdamba/foodmarket/internal/accounting"
)

type message struct {
	topic string
	body  []byte
}

type recorder struct {
	messages []message
	err      error
}

func (r *recorder) WriteMessage(topic string, msg []byte) error {
	if r.err != nil {
		return r.err
	}
	r.messages = append(r.messages, message{topic: topic, body: msg})
	return nil
}

func (r *recorder) Close() error { return nil }

func TestPeriodPaid(t *testing.T) {
	rec := &recorder{}
	p := NewPublisher(rec)
	at := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	week := accounting.WeekKeyOf(time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC))

	require.NoError(t, p.PeriodPaid(at, "r1", week, []string{"o1"}, 4.5))
	require.Len(t, rec.messages, 1)
	assert.Equal(t, TopicCommissionPeriodPaid, rec.messages[0].topic)

	var got CommissionPeriodPaidEvent
	require.NoError(t, json.Unmarshal(rec.messages[0].body, &got))
	assert.Equal(t, at.Unix(), got.Timestamp)
	assert.Equal(t, EventCommissionPeriodPaid, got.EventType)
	assert.Equal(t, "r1", got.RestaurantID)
	assert.Equal(t, "2024-03-04", got.Week)
	assert.Equal(t, []string{"o1"}, got.OrderIDs)
}

func TestPenaltyChangedOnlyOnMovement(t *testing.T) {
	rec := &recorder{}
	p := NewPublisher(rec)
	at := time.Now()

	require.NoError(t, p.PenaltyChanged(at, "r1", 1, accounting.AccountingStatus{PenaltyLevel: 1}))
	assert.Empty(t, rec.messages)

	require.NoError(t, p.PenaltyChanged(at, "r1", 1, accounting.AccountingStatus{
		PenaltyLevel:  2,
		UnpaidPeriods: make([]accounting.WeeklyPeriod, 2),
		TotalPending:  12,
	}))
	require.Len(t, rec.messages, 1)
	assert.Equal(t, TopicPenaltyLevel, rec.messages[0].topic)

	var got PenaltyLevelEvent
	require.NoError(t, json.Unmarshal(rec.messages[0].body, &got))
	assert.Equal(t, 1, got.PreviousLevel)
	assert.Equal(t, 2, got.PenaltyLevel)
	assert.Equal(t, 2, got.UnpaidWeeks)
}

func TestPublisherErrors(t *testing.T) {
	boom := errors.New("broker down")
	p := NewPublisher(&recorder{err: boom})
	err := p.PeriodPaid(time.Now(), "r1", accounting.WeekKey{}, nil, 0)
	assert.ErrorIs(t, err, boom)

	var nilPublisher *Publisher
	assert.NoError(t, nilPublisher.PeriodPaid(time.Now(), "r1", accounting.WeekKey{}, nil, 0))
	assert.NoError(t, NewPublisher(nil).Close())
}
