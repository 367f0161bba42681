// Package orders holds the driver-facing order status rules.
//
// The status graph is fixed: each status has at most one driver-reachable
// successor, and multi-hop jumps are never legal.
package orders

import "github.com/plateup-dev/plateup/internal/models"

// driverNext is the authoritative single-hop transition table for
// driver-initiated changes. Statuses absent from the map are terminal from a
// driver's point of view.
var driverNext = map[models.OrderStatus]models.OrderStatus{
	models.OrderReadyForPickup: models.OrderDriverAssigned,
	models.OrderDriverAssigned: models.OrderPickedUp,
	models.OrderPickedUp:       models.OrderEnRoute,
	models.OrderEnRoute:        models.OrderDelivered,
}

// driverVisible is the subset of statuses a driver can observe and act on.
var driverVisible = map[models.OrderStatus]struct{}{
	models.OrderReadyForPickup: {},
	models.OrderDriverAssigned: {},
	models.OrderPickedUp:       {},
	models.OrderEnRoute:        {},
}

// CanTransition reports whether a driver may move an order from one status
// directly to another.
func CanTransition(from, to models.OrderStatus) bool {
	next, ok := driverNext[from]
	return ok && next == to
}

// NextStatus returns the single driver-reachable successor of a status, or
// false when the status is terminal for drivers.
func NextStatus(from models.OrderStatus) (models.OrderStatus, bool) {
	next, ok := driverNext[from]
	return next, ok
}

// IsDriverVisible reports whether a status belongs to the driver-managed
// subset of the order lifecycle.
func IsDriverVisible(status models.OrderStatus) bool {
	_, ok := driverVisible[status]
	return ok
}

// DriverVisibleStatuses returns the driver-managed statuses in lifecycle order.
func DriverVisibleStatuses() []models.OrderStatus {
	return []models.OrderStatus{
		models.OrderReadyForPickup,
		models.OrderDriverAssigned,
		models.OrderPickedUp,
		models.OrderEnRoute,
	}
}
