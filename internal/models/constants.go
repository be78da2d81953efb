package models

const (
	OrderStatusPlaced    = "placed"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready_for_pickup"
	OrderStatusPickedUp  = "picked_up"
	OrderStatusInTransit = "in_transit"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"

	RestaurantStatusOpen   = "open"
	RestaurantStatusClosed = "closed"
)

type UnitType string

const (
	UnitGram       UnitType = "gram"
	UnitMilliliter UnitType = "milliliter"
	UnitPortion    UnitType = "portion"
	UnitPiece      UnitType = "piece"
)

func (u UnitType) Valid() bool {
	switch u {
	case "", UnitGram, UnitMilliliter, UnitPortion, UnitPiece:
		return true
	}
	return false
}
