package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/plateup-dev/plateup/internal/models"
	"github.com/plateup-dev/plateup/internal/orders"
	apperrors "github.com/plateup-dev/plateup/pkg/errors"
	"github.com/plateup-dev/plateup/pkg/metrics"
)

// ErrIllegalTransition reports a requested status change the policy forbids.
var ErrIllegalTransition = apperrors.New(
	"ILLEGAL_TRANSITION",
	"The order cannot move to the requested status",
	http.StatusUnprocessableEntity,
)

// OrderService applies driver-initiated status transitions and lists the
// orders a driver can act on.
type OrderService struct {
	db *gorm.DB
}

// NewOrderService constructs an OrderService instance.
func NewOrderService(db *gorm.DB) (*OrderService, error) {
	if db == nil {
		return nil, errors.New("order service: db is required")
	}
	return &OrderService{db: db}, nil
}

// ListForDriver returns orders in driver-visible statuses: unclaimed orders
// ready for pickup, plus orders already assigned to this driver.
func (s *OrderService) ListForDriver(ctx context.Context, driverID string) ([]models.Order, error) {
	if strings.TrimSpace(driverID) == "" {
		return nil, errors.New("order service: driver id is required")
	}

	var result []models.Order
	err := s.db.WithContext(ctx).
		Where("status = ? AND driver_id IS NULL", models.OrderReadyForPickup).
		Or("driver_id = ? AND status IN ?", driverID, orders.DriverVisibleStatuses()).
		Order("created_at").
		Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("order service: list driver orders: %w", err)
	}
	return result, nil
}

// Transition moves an order one hop along the driver chain on behalf of a
// driver. The write is conditional on the status the caller saw, so when two
// drivers race to claim the same order exactly one update matches a row; the
// loser gets a conflict, never a silent double-claim.
func (s *OrderService) Transition(ctx context.Context, orderID, driverID string, to models.OrderStatus) (*models.Order, error) {
	if strings.TrimSpace(orderID) == "" || strings.TrimSpace(driverID) == "" {
		return nil, apperrors.NewBadRequest("order id and driver id are required")
	}

	var order models.Order
	err := s.db.WithContext(ctx).Take(&order, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("order service: find order: %w", err)
	}

	if !orders.CanTransition(order.Status, to) {
		metrics.OrderTransitions.WithLabelValues("rejected").Inc()
		return nil, ErrIllegalTransition
	}

	claiming := order.Status == models.OrderReadyForPickup
	if !claiming && (order.DriverID == nil || *order.DriverID != driverID) {
		metrics.OrderTransitions.WithLabelValues("rejected").Inc()
		return nil, apperrors.ErrForbidden
	}

	from := order.Status

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		update := map[string]any{"status": to}
		query := tx.Model(&models.Order{}).Where("id = ? AND status = ?", orderID, from)

		if claiming {
			// First hop also claims the order for this driver.
			update["driver_id"] = driverID
			query = query.Where("driver_id IS NULL")
		} else {
			query = query.Where("driver_id = ?", driverID)
		}

		result := query.Updates(update)
		if result.Error != nil {
			return fmt.Errorf("order service: update status: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			// Another request moved the order first.
			return apperrors.ErrConflict
		}

		change := models.OrderStatusChange{
			OrderID:    orderID,
			FromStatus: from,
			ToStatus:   to,
			ChangedBy:  driverID,
		}
		if err := tx.Create(&change).Error; err != nil {
			return fmt.Errorf("order service: record status change: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			metrics.OrderTransitions.WithLabelValues("lost").Inc()
		}
		return nil, err
	}

	metrics.OrderTransitions.WithLabelValues("applied").Inc()

	if err := s.db.WithContext(ctx).Take(&order, "id = ?", orderID).Error; err != nil {
		return nil, fmt.Errorf("order service: reload order: %w", err)
	}
	return &order, nil
}
