// Package events publishes accounting events to an output destination.
package events

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/chrisdamba/foodmarket/internal/accounting"
	"github.com/chrisdamba/foodmarket/internal/output"
)

const (
	TopicCommissionPeriodPaid = "commission_period_paid_events"
	TopicPenaltyLevel         = "penalty_level_events"
)

const (
	EventCommissionPeriodPaid = "commission_period_paid"
	EventPenaltyLevelChanged  = "penalty_level_changed"
)

// BaseEvent is the common structure for all events
type BaseEvent struct {
	Timestamp    int64  `json:"timestamp"`
	EventType    string `json:"eventType"`
	RestaurantID string `json:"restaurantId"`
}

type CommissionPeriodPaidEvent struct {
	BaseEvent
	Week          string   `json:"week"`
	OrderIDs      []string `json:"orderIds"`
	NetCommission float64  `json:"netCommission"`
}

type PenaltyLevelEvent struct {
	BaseEvent
	PreviousLevel int     `json:"previousLevel"`
	PenaltyLevel  int     `json:"penaltyLevel"`
	UnpaidWeeks   int     `json:"unpaidWeeks"`
	TotalPending  float64 `json:"totalPending"`
}

type Publisher struct {
	out output.OutputDestination
}

// NewPublisher returns a publisher writing to out. A nil out drops events.
func NewPublisher(out output.OutputDestination) *Publisher {
	return &Publisher{out: out}
}

func (p *Publisher) publish(topic string, event any) error {
	if p == nil || p.out == nil {
		return nil
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[events] error serializing event: %v", err)
		return err
	}
	if err := p.out.WriteMessage(topic, data); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

func (p *Publisher) PeriodPaid(at time.Time, restaurantID string, week accounting.WeekKey, orderIDs []string, net float64) error {
	if orderIDs == nil {
		orderIDs = []string{}
	}
	return p.publish(TopicCommissionPeriodPaid, CommissionPeriodPaidEvent{
		BaseEvent: BaseEvent{
			Timestamp:    at.Unix(),
			EventType:    EventCommissionPeriodPaid,
			RestaurantID: restaurantID,
		},
		Week:          week.String(),
		OrderIDs:      orderIDs,
		NetCommission: net,
	})
}

// PenaltyChanged emits an event only when the level actually moved.
func (p *Publisher) PenaltyChanged(at time.Time, restaurantID string, previous int, status accounting.AccountingStatus) error {
	if previous == status.PenaltyLevel {
		return nil
	}
	return p.publish(TopicPenaltyLevel, PenaltyLevelEvent{
		BaseEvent: BaseEvent{
			Timestamp:    at.Unix(),
			EventType:    EventPenaltyLevelChanged,
			RestaurantID: restaurantID,
		},
		PreviousLevel: previous,
		PenaltyLevel:  status.PenaltyLevel,
		UnpaidWeeks:   len(status.UnpaidPeriods),
		TotalPending:  status.TotalPending,
	})
}

func (p *Publisher) Close() error {
	if p == nil || p.out == nil {
		return nil
	}
	return p.out.Close()
}
