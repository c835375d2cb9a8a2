package production

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prime-apparel/backend/internal/orders"
	"github.com/prime-apparel/backend/internal/shared"
)

// OrderPort exposes the order transitions production drives.
type OrderPort interface {
	Transition(ctx context.Context, orderID int64, next orders.Status) (orders.Order, error)
}

// Service owns production tracking, QC and shipments for orders. A passing
// FINAL inspection and a dispatched shipment each push the parent order
// along its timeline.
type Service struct {
	repo   Repository
	orders OrderPort
	logger *slog.Logger
}

// NewService constructs a production service.
func NewService(repo Repository, orderPort OrderPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, orders: orderPort, logger: logger}
}

// UpsertRecord creates or replaces the production record for an order.
func (s *Service) UpsertRecord(ctx context.Context, record Record) (Record, error) {
	if record.OrderID <= 0 {
		return Record{}, fmt.Errorf("%w: order is required", shared.ErrValidation)
	}
	return s.repo.UpsertRecord(ctx, record)
}

// RecordByOrder returns the production record for an order.
func (s *Service) RecordByOrder(ctx context.Context, orderID int64) (Record, error) {
	return s.repo.RecordByOrder(ctx, orderID)
}

// PostQCReport stores an inspection result. A FINAL report with status
// PASS moves the order to QC_PASSED.
func (s *Service) PostQCReport(ctx context.Context, report QCReport) (QCReport, error) {
	if report.OrderID <= 0 {
		return QCReport{}, fmt.Errorf("%w: order is required", shared.ErrValidation)
	}
	if !report.Type.Valid() {
		return QCReport{}, fmt.Errorf("%w: unknown QC type %q", shared.ErrValidation, report.Type)
	}
	if !report.Status.Valid() {
		return QCReport{}, fmt.Errorf("%w: unknown QC status %q", shared.ErrValidation, report.Status)
	}
	if report.AQL.IsNegative() {
		return QCReport{}, fmt.Errorf("%w: AQL must not be negative", shared.ErrValidation)
	}
	created, err := s.repo.InsertQCReport(ctx, report)
	if err != nil {
		return QCReport{}, err
	}
	if created.Type == QCFinal && created.Status == QCPass {
		if _, err := s.orders.Transition(ctx, created.OrderID, orders.StatusQCPassed); err != nil {
			// The report stands either way; an order already past QC is
			// not an error worth failing the inspection over.
			if !errors.Is(err, shared.ErrInvalidState) {
				return QCReport{}, err
			}
			s.logger.Warn("final QC pass without order transition",
				slog.Int64("order_id", created.OrderID), slog.Any("error", err))
		}
	}
	return created, nil
}

// QCReportsByOrder returns inspections for an order.
func (s *Service) QCReportsByOrder(ctx context.Context, orderID int64) ([]QCReport, error) {
	return s.repo.QCReportsByOrder(ctx, orderID)
}

// CreateShipment registers a consignment for an order, starting PENDING.
func (s *Service) CreateShipment(ctx context.Context, shipment Shipment) (Shipment, error) {
	if shipment.OrderID <= 0 {
		return Shipment{}, fmt.Errorf("%w: order is required", shared.ErrValidation)
	}
	if strings.TrimSpace(shipment.Courier) == "" {
		return Shipment{}, fmt.Errorf("%w: courier is required", shared.ErrValidation)
	}
	shipment.Status = ShipmentPending
	return s.repo.CreateShipment(ctx, shipment)
}

// ShipmentsByOrder returns shipments for an order.
func (s *Service) ShipmentsByOrder(ctx context.Context, orderID int64) ([]Shipment, error) {
	return s.repo.ShipmentsByOrder(ctx, orderID)
}

// UpdateShipmentStatus progresses a shipment. Marking it SHIPPED moves the
// order to SHIPPED and stamps its shipment date; DELIVERED moves the order
// to DELIVERED.
func (s *Service) UpdateShipmentStatus(ctx context.Context, id int64, status ShipmentStatus) (Shipment, error) {
	if !status.Valid() {
		return Shipment{}, fmt.Errorf("%w: unknown shipment status %q", shared.ErrValidation, status)
	}
	shipment, err := s.repo.UpdateShipmentStatus(ctx, id, status)
	if err != nil {
		return Shipment{}, err
	}
	var next orders.Status
	switch status {
	case ShipmentShipped:
		next = orders.StatusShipped
	case ShipmentDelivered:
		next = orders.StatusDelivered
	default:
		return shipment, nil
	}
	if _, err := s.orders.Transition(ctx, shipment.OrderID, next); err != nil {
		if !errors.Is(err, shared.ErrInvalidState) {
			return Shipment{}, err
		}
		s.logger.Warn("shipment status without order transition",
			slog.Int64("order_id", shipment.OrderID), slog.Any("error", err))
	}
	return shipment, nil
}
