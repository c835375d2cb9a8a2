package production

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prime-apparel/backend/internal/shared"
)

// Repository describes production persistence.
type Repository interface {
	UpsertRecord(ctx context.Context, record Record) (Record, error)
	RecordByOrder(ctx context.Context, orderID int64) (Record, error)
	InsertQCReport(ctx context.Context, report QCReport) (QCReport, error)
	QCReportsByOrder(ctx context.Context, orderID int64) ([]QCReport, error)
	CreateShipment(ctx context.Context, shipment Shipment) (Shipment, error)
	ShipmentsByOrder(ctx context.Context, orderID int64) ([]Shipment, error)
	UpdateShipmentStatus(ctx context.Context, id int64, status ShipmentStatus) (Shipment, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) UpsertRecord(ctx context.Context, record Record) (Record, error) {
	approvals, err := json.Marshal(record.Approvals)
	if err != nil {
		return Record{}, err
	}
	stages, err := json.Marshal(record.Stages)
	if err != nil {
		return Record{}, err
	}
	row := r.pool.QueryRow(ctx, `INSERT INTO productions (order_id, approvals, stages, notes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (order_id) DO UPDATE SET approvals = $2, stages = $3, notes = $4, updated_at = NOW()
		RETURNING id, order_id, approvals, stages, notes, created_at, updated_at`,
		record.OrderID, approvals, stages, record.Notes)
	return scanRecord(row)
}

func (r *pgRepository) RecordByOrder(ctx context.Context, orderID int64) (Record, error) {
	return scanRecord(r.pool.QueryRow(ctx, `SELECT id, order_id, approvals, stages, notes, created_at, updated_at
		FROM productions WHERE order_id = $1`, orderID))
}

func scanRecord(row pgx.Row) (Record, error) {
	var record Record
	var approvals, stages []byte
	err := row.Scan(&record.ID, &record.OrderID, &approvals, &stages, &record.Notes, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, shared.ErrNotFound
		}
		return Record{}, err
	}
	if len(approvals) > 0 {
		if err := json.Unmarshal(approvals, &record.Approvals); err != nil {
			return Record{}, err
		}
	}
	if len(stages) > 0 {
		if err := json.Unmarshal(stages, &record.Stages); err != nil {
			return Record{}, err
		}
	}
	return record, nil
}

func (r *pgRepository) InsertQCReport(ctx context.Context, report QCReport) (QCReport, error) {
	defects, err := json.Marshal(report.Defects)
	if err != nil {
		return QCReport{}, err
	}
	images, err := json.Marshal(report.ImageURLs)
	if err != nil {
		return QCReport{}, err
	}
	err = r.pool.QueryRow(ctx, `INSERT INTO qc_reports (order_id, qc_type, status, aql, defects, image_urls, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at`,
		report.OrderID, report.Type, report.Status, report.AQL, defects, images, report.Notes, report.CreatedBy).
		Scan(&report.ID, &report.CreatedAt)
	if err != nil {
		return QCReport{}, err
	}
	return report, nil
}

func (r *pgRepository) QCReportsByOrder(ctx context.Context, orderID int64) ([]QCReport, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, order_id, qc_type, status, aql, defects, image_urls, notes, created_by, created_at
		FROM qc_reports WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []QCReport
	for rows.Next() {
		var report QCReport
		var defects, images []byte
		if err := rows.Scan(&report.ID, &report.OrderID, &report.Type, &report.Status, &report.AQL,
			&defects, &images, &report.Notes, &report.CreatedBy, &report.CreatedAt); err != nil {
			return nil, err
		}
		if len(defects) > 0 {
			if err := json.Unmarshal(defects, &report.Defects); err != nil {
				return nil, err
			}
		}
		if len(images) > 0 {
			if err := json.Unmarshal(images, &report.ImageURLs); err != nil {
				return nil, err
			}
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

func (r *pgRepository) CreateShipment(ctx context.Context, shipment Shipment) (Shipment, error) {
	docs, err := json.Marshal(shipment.DocumentURLs)
	if err != nil {
		return Shipment{}, err
	}
	var etd, eta any
	if !shipment.ETD.IsZero() {
		etd = shipment.ETD
	}
	if !shipment.ETA.IsZero() {
		eta = shipment.ETA
	}
	err = r.pool.QueryRow(ctx, `INSERT INTO shipments (order_id, courier, tracking_no, etd, eta, status, document_urls)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at, updated_at`,
		shipment.OrderID, shipment.Courier, shipment.TrackingNo, etd, eta, shipment.Status, docs).
		Scan(&shipment.ID, &shipment.CreatedAt, &shipment.UpdatedAt)
	if err != nil {
		return Shipment{}, err
	}
	return shipment, nil
}

func (r *pgRepository) ShipmentsByOrder(ctx context.Context, orderID int64) ([]Shipment, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, order_id, courier, tracking_no, etd, eta, status, document_urls, created_at, updated_at
		FROM shipments WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shipments []Shipment
	for rows.Next() {
		shipment, err := scanShipment(rows)
		if err != nil {
			return nil, err
		}
		shipments = append(shipments, shipment)
	}
	return shipments, rows.Err()
}

func (r *pgRepository) UpdateShipmentStatus(ctx context.Context, id int64, status ShipmentStatus) (Shipment, error) {
	row := r.pool.QueryRow(ctx, `UPDATE shipments SET status = $1, updated_at = NOW() WHERE id = $2
		RETURNING id, order_id, courier, tracking_no, etd, eta, status, document_urls, created_at, updated_at`, status, id)
	return scanShipment(row)
}

func scanShipment(row pgx.Row) (Shipment, error) {
	var shipment Shipment
	var docs []byte
	var etd, eta *time.Time
	err := row.Scan(&shipment.ID, &shipment.OrderID, &shipment.Courier, &shipment.TrackingNo,
		&etd, &eta, &shipment.Status, &docs, &shipment.CreatedAt, &shipment.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Shipment{}, shared.ErrNotFound
		}
		return Shipment{}, err
	}
	if etd != nil {
		shipment.ETD = *etd
	}
	if eta != nil {
		shipment.ETA = *eta
	}
	if len(docs) > 0 {
		if err := json.Unmarshal(docs, &shipment.DocumentURLs); err != nil {
			return Shipment{}, err
		}
	}
	return shipment, nil
}
