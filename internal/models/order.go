package models

// OrderStatus represents the lifecycle stage of a delivery order.
type OrderStatus string

const (
	OrderPlaced         OrderStatus = "PLACED"
	OrderPaid           OrderStatus = "PAID"
	OrderFailedPayment  OrderStatus = "FAILED_PAYMENT"
	OrderAccepted       OrderStatus = "ACCEPTED"
	OrderRejected       OrderStatus = "REJECTED"
	OrderPreparing      OrderStatus = "PREPARING"
	OrderReadyForPickup OrderStatus = "READY_FOR_PICKUP"
	OrderDriverAssigned OrderStatus = "DRIVER_ASSIGNED"
	OrderPickedUp       OrderStatus = "PICKED_UP"
	OrderEnRoute        OrderStatus = "EN_ROUTE"
	OrderDelivered      OrderStatus = "DELIVERED"
)

// Order is a customer order placed with a restaurant and handed to a driver
// once it is ready for pickup.
type Order struct {
	BaseModel

	CustomerID   string  `gorm:"type:uuid;not null;index" json:"customer_id"`
	RestaurantID string  `gorm:"type:uuid;not null;index" json:"restaurant_id"`
	DriverID     *string `gorm:"type:uuid;index" json:"driver_id"`

	Status  OrderStatus `gorm:"not null;default:'PLACED';index" json:"status"`
	Address string      `gorm:"not null" json:"address"`
	Total   float64     `json:"total"`

	StatusChanges []OrderStatusChange `gorm:"foreignKey:OrderID" json:"status_changes,omitempty"`
}

// OrderStatusChange records one applied transition for auditability.
type OrderStatusChange struct {
	BaseModel

	OrderID    string      `gorm:"type:uuid;not null;index" json:"order_id"`
	FromStatus OrderStatus `gorm:"not null" json:"from_status"`
	ToStatus   OrderStatus `gorm:"not null" json:"to_status"`
	ChangedBy  string      `gorm:"type:uuid" json:"changed_by"`
}
