package production

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prime-apparel/backend/internal/orders"
	"github.com/prime-apparel/backend/internal/shared"
)

type memoryProdRepo struct {
	records   map[int64]Record
	reports   map[int64][]QCReport
	shipments map[int64]Shipment
	nextID    int64
}

func newMemoryProdRepo() *memoryProdRepo {
	return &memoryProdRepo{records: make(map[int64]Record), reports: make(map[int64][]QCReport), shipments: make(map[int64]Shipment)}
}

func (r *memoryProdRepo) UpsertRecord(ctx context.Context, record Record) (Record, error) {
	if existing, ok := r.records[record.OrderID]; ok {
		record.ID = existing.ID
	} else {
		r.nextID++
		record.ID = r.nextID
	}
	r.records[record.OrderID] = record
	return record, nil
}

func (r *memoryProdRepo) RecordByOrder(ctx context.Context, orderID int64) (Record, error) {
	record, ok := r.records[orderID]
	if !ok {
		return Record{}, shared.ErrNotFound
	}
	return record, nil
}

func (r *memoryProdRepo) InsertQCReport(ctx context.Context, report QCReport) (QCReport, error) {
	r.nextID++
	report.ID = r.nextID
	r.reports[report.OrderID] = append(r.reports[report.OrderID], report)
	return report, nil
}

func (r *memoryProdRepo) QCReportsByOrder(ctx context.Context, orderID int64) ([]QCReport, error) {
	return append([]QCReport(nil), r.reports[orderID]...), nil
}

func (r *memoryProdRepo) CreateShipment(ctx context.Context, shipment Shipment) (Shipment, error) {
	r.nextID++
	shipment.ID = r.nextID
	r.shipments[shipment.ID] = shipment
	return shipment, nil
}

func (r *memoryProdRepo) ShipmentsByOrder(ctx context.Context, orderID int64) ([]Shipment, error) {
	var list []Shipment
	for _, s := range r.shipments {
		if s.OrderID == orderID {
			list = append(list, s)
		}
	}
	return list, nil
}

func (r *memoryProdRepo) UpdateShipmentStatus(ctx context.Context, id int64, status ShipmentStatus) (Shipment, error) {
	shipment, ok := r.shipments[id]
	if !ok {
		return Shipment{}, shared.ErrNotFound
	}
	shipment.Status = status
	r.shipments[id] = shipment
	return shipment, nil
}

type stubOrderPort struct {
	transitions []orders.Status
	err         error
}

func (s *stubOrderPort) Transition(ctx context.Context, orderID int64, next orders.Status) (orders.Order, error) {
	if s.err != nil {
		return orders.Order{}, s.err
	}
	s.transitions = append(s.transitions, next)
	return orders.Order{ID: orderID, Status: next}, nil
}

func newTestService(port OrderPort) (*Service, *memoryProdRepo) {
	repo := newMemoryProdRepo()
	return NewService(repo, port, slog.Default()), repo
}

func TestFinalPassMovesOrderToQCPassed(t *testing.T) {
	port := &stubOrderPort{}
	svc, _ := newTestService(port)

	report, err := svc.PostQCReport(context.Background(), QCReport{OrderID: 1, Type: QCFinal, Status: QCPass})
	require.NoError(t, err)
	require.NotZero(t, report.ID)
	require.Equal(t, []orders.Status{orders.StatusQCPassed}, port.transitions)
}

func TestNonFinalReportsDoNotTransition(t *testing.T) {
	port := &stubOrderPort{}
	svc, _ := newTestService(port)
	ctx := context.Background()

	_, err := svc.PostQCReport(ctx, QCReport{OrderID: 1, Type: QCInline, Status: QCPass})
	require.NoError(t, err)
	_, err = svc.PostQCReport(ctx, QCReport{OrderID: 1, Type: QCFinal, Status: QCFail})
	require.NoError(t, err)
	require.Empty(t, port.transitions)
}

func TestFinalPassToleratesOrderAlreadyPastQC(t *testing.T) {
	port := &stubOrderPort{err: shared.ErrInvalidState}
	svc, repo := newTestService(port)

	report, err := svc.PostQCReport(context.Background(), QCReport{OrderID: 1, Type: QCFinal, Status: QCPass})
	require.NoError(t, err)
	require.NotZero(t, report.ID)
	require.Len(t, repo.reports[1], 1)
}

func TestPostQCReportValidation(t *testing.T) {
	svc, _ := newTestService(&stubOrderPort{})
	ctx := context.Background()

	_, err := svc.PostQCReport(ctx, QCReport{OrderID: 0, Type: QCFinal, Status: QCPass})
	require.ErrorIs(t, err, shared.ErrValidation)
	_, err = svc.PostQCReport(ctx, QCReport{OrderID: 1, Type: QCType("MIDLINE"), Status: QCPass})
	require.ErrorIs(t, err, shared.ErrValidation)
	_, err = svc.PostQCReport(ctx, QCReport{OrderID: 1, Type: QCFinal, Status: QCStatus("MAYBE")})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestShipmentShippedMovesOrder(t *testing.T) {
	port := &stubOrderPort{}
	svc, _ := newTestService(port)
	ctx := context.Background()

	shipment, err := svc.CreateShipment(ctx, Shipment{OrderID: 5, Courier: "Maersk", TrackingNo: "MSK-1"})
	require.NoError(t, err)
	require.Equal(t, ShipmentPending, shipment.Status)
	require.Empty(t, port.transitions)

	updated, err := svc.UpdateShipmentStatus(ctx, shipment.ID, ShipmentShipped)
	require.NoError(t, err)
	require.Equal(t, ShipmentShipped, updated.Status)
	require.Equal(t, []orders.Status{orders.StatusShipped}, port.transitions)

	_, err = svc.UpdateShipmentStatus(ctx, shipment.ID, ShipmentDelivered)
	require.NoError(t, err)
	require.Equal(t, []orders.Status{orders.StatusShipped, orders.StatusDelivered}, port.transitions)
}

func TestCreateShipmentRequiresCourier(t *testing.T) {
	svc, _ := newTestService(&stubOrderPort{})
	_, err := svc.CreateShipment(context.Background(), Shipment{OrderID: 5, Courier: " "})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpsertRecordKeyedByOrder(t *testing.T) {
	svc, repo := newTestService(&stubOrderPort{})
	ctx := context.Background()

	first, err := svc.UpsertRecord(ctx, Record{OrderID: 3, Stages: map[string]any{"cutting": 40}})
	require.NoError(t, err)
	second, err := svc.UpsertRecord(ctx, Record{OrderID: 3, Stages: map[string]any{"cutting": 100, "sewing": 20}})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Len(t, repo.records, 1)
}
