package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"swift-dispatch/internal/common"
	"swift-dispatch/internal/delivery"
	domainerrors "swift-dispatch/internal/errors"
)

const deliveryColumns = `id, tracking_id, status,
	pickup_street, pickup_city, pickup_postal_code, pickup_lat, pickup_lng,
	dropoff_street, dropoff_city, dropoff_postal_code, dropoff_lat, dropoff_lng,
	package_type, package_weight, package_value, package_dimensions, package_instructions,
	driver_id, signature, proof_photo, created_at, estimated_time, updated_at`

// deliveryRow flattens the nested aggregate into table columns.
type deliveryRow struct {
	ID                  string    `db:"id"`
	TrackingID          string    `db:"tracking_id"`
	Status              string    `db:"status"`
	PickupStreet        string    `db:"pickup_street"`
	PickupCity          string    `db:"pickup_city"`
	PickupPostalCode    string    `db:"pickup_postal_code"`
	PickupLat           float64   `db:"pickup_lat"`
	PickupLng           float64   `db:"pickup_lng"`
	DropoffStreet       string    `db:"dropoff_street"`
	DropoffCity         string    `db:"dropoff_city"`
	DropoffPostalCode   string    `db:"dropoff_postal_code"`
	DropoffLat          float64   `db:"dropoff_lat"`
	DropoffLng          float64   `db:"dropoff_lng"`
	PackageType         string    `db:"package_type"`
	PackageWeight       float64   `db:"package_weight"`
	PackageValue        float64   `db:"package_value"`
	PackageDimensions   string    `db:"package_dimensions"`
	PackageInstructions string    `db:"package_instructions"`
	DriverID            *string   `db:"driver_id"`
	Signature           string    `db:"signature"`
	ProofPhoto          string    `db:"proof_photo"`
	CreatedAt           time.Time `db:"created_at"`
	EstimatedTime       time.Time `db:"estimated_time"`
	UpdatedAt           time.Time `db:"updated_at"`
}

func toDeliveryRow(d *delivery.Delivery) *deliveryRow {
	return &deliveryRow{
		ID:                  d.ID,
		TrackingID:          d.TrackingID,
		Status:              string(d.Status),
		PickupStreet:        d.PickupAddress.Street,
		PickupCity:          d.PickupAddress.City,
		PickupPostalCode:    d.PickupAddress.PostalCode,
		PickupLat:           d.PickupAddress.Coordinates.Lat,
		PickupLng:           d.PickupAddress.Coordinates.Lng,
		DropoffStreet:       d.DeliveryAddress.Street,
		DropoffCity:         d.DeliveryAddress.City,
		DropoffPostalCode:   d.DeliveryAddress.PostalCode,
		DropoffLat:          d.DeliveryAddress.Coordinates.Lat,
		DropoffLng:          d.DeliveryAddress.Coordinates.Lng,
		PackageType:         d.Package.Type,
		PackageWeight:       d.Package.Weight,
		PackageValue:        d.Package.Value,
		PackageDimensions:   d.Package.Dimensions,
		PackageInstructions: d.Package.Instructions,
		DriverID:            d.DriverID,
		Signature:           d.Signature,
		ProofPhoto:          d.ProofPhoto,
		CreatedAt:           d.CreatedAt,
		EstimatedTime:       d.EstimatedTime,
		UpdatedAt:           d.UpdatedAt,
	}
}

func (r *deliveryRow) toDelivery() *delivery.Delivery {
	return &delivery.Delivery{
		ID:         r.ID,
		TrackingID: r.TrackingID,
		Status:     delivery.Status(r.Status),
		PickupAddress: delivery.Address{
			Street:      r.PickupStreet,
			City:        r.PickupCity,
			PostalCode:  r.PickupPostalCode,
			Coordinates: common.NewLocation(r.PickupLat, r.PickupLng),
		},
		DeliveryAddress: delivery.Address{
			Street:      r.DropoffStreet,
			City:        r.DropoffCity,
			PostalCode:  r.DropoffPostalCode,
			Coordinates: common.NewLocation(r.DropoffLat, r.DropoffLng),
		},
		Package: delivery.PackageDetails{
			Type:         r.PackageType,
			Weight:       r.PackageWeight,
			Value:        r.PackageValue,
			Dimensions:   r.PackageDimensions,
			Instructions: r.PackageInstructions,
		},
		DriverID:      r.DriverID,
		Signature:     r.Signature,
		ProofPhoto:    r.ProofPhoto,
		CreatedAt:     r.CreatedAt,
		EstimatedTime: r.EstimatedTime,
		UpdatedAt:     r.UpdatedAt,
	}
}

type DeliveryStore struct {
	db *sqlx.DB
}

func NewDeliveryStore(db *sqlx.DB) *DeliveryStore {
	return &DeliveryStore{db: db}
}

func (s *DeliveryStore) GetAll(ctx context.Context) ([]*delivery.Delivery, error) {
	query := fmt.Sprintf(`SELECT %s FROM deliveries ORDER BY created_at DESC`, deliveryColumns)

	var rows []*deliveryRow
	if err := sqlx.SelectContext(ctx, s.db, &rows, query); err != nil {
		return nil, domainerrors.NewInternal("failed to list deliveries", err)
	}
	return toDeliveries(rows), nil
}

func (s *DeliveryStore) GetByID(ctx context.Context, id string) (*delivery.Delivery, error) {
	query := fmt.Sprintf(`SELECT %s FROM deliveries WHERE id = $1`, deliveryColumns)

	var row deliveryRow
	err := sqlx.GetContext(ctx, s.db, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerrors.DeliveryNotFound(id)
	}
	if err != nil {
		return nil, domainerrors.NewInternal("failed to get delivery", err)
	}
	return row.toDelivery(), nil
}

func (s *DeliveryStore) GetByStatus(ctx context.Context, status delivery.Status) ([]*delivery.Delivery, error) {
	query := fmt.Sprintf(`SELECT %s FROM deliveries WHERE status = $1 ORDER BY created_at DESC`, deliveryColumns)

	var rows []*deliveryRow
	if err := sqlx.SelectContext(ctx, s.db, &rows, query, string(status)); err != nil {
		return nil, domainerrors.NewInternal("failed to list deliveries by status", err)
	}
	return toDeliveries(rows), nil
}

func (s *DeliveryStore) Create(ctx context.Context, d *delivery.Delivery) error {
	const query = `INSERT INTO deliveries (id, tracking_id, status,
		pickup_street, pickup_city, pickup_postal_code, pickup_lat, pickup_lng,
		dropoff_street, dropoff_city, dropoff_postal_code, dropoff_lat, dropoff_lng,
		package_type, package_weight, package_value, package_dimensions, package_instructions,
		driver_id, signature, proof_photo, created_at, estimated_time, updated_at)
	VALUES (:id, :tracking_id, :status,
		:pickup_street, :pickup_city, :pickup_postal_code, :pickup_lat, :pickup_lng,
		:dropoff_street, :dropoff_city, :dropoff_postal_code, :dropoff_lat, :dropoff_lng,
		:package_type, :package_weight, :package_value, :package_dimensions, :package_instructions,
		:driver_id, :signature, :proof_photo, :created_at, :estimated_time, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, s.db, query, toDeliveryRow(d)); err != nil {
		return domainerrors.NewInternal("failed to create delivery", err)
	}
	return nil
}

func (s *DeliveryStore) Update(ctx context.Context, d *delivery.Delivery) error {
	const query = `UPDATE deliveries SET status = :status,
		pickup_street = :pickup_street, pickup_city = :pickup_city, pickup_postal_code = :pickup_postal_code,
		pickup_lat = :pickup_lat, pickup_lng = :pickup_lng,
		dropoff_street = :dropoff_street, dropoff_city = :dropoff_city, dropoff_postal_code = :dropoff_postal_code,
		dropoff_lat = :dropoff_lat, dropoff_lng = :dropoff_lng,
		package_type = :package_type, package_weight = :package_weight, package_value = :package_value,
		package_dimensions = :package_dimensions, package_instructions = :package_instructions,
		driver_id = :driver_id, signature = :signature, proof_photo = :proof_photo,
		estimated_time = :estimated_time, updated_at = :updated_at
	WHERE id = :id`

	res, err := sqlx.NamedExecContext(ctx, s.db, query, toDeliveryRow(d))
	if err != nil {
		return domainerrors.NewInternal("failed to update delivery", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return domainerrors.DeliveryNotFound(d.ID)
	}
	return nil
}

func (s *DeliveryStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM deliveries WHERE id = $1`, id)
	if err != nil {
		return false, domainerrors.NewInternal("failed to delete delivery", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, domainerrors.NewInternal("failed to delete delivery", err)
	}
	return rows > 0, nil
}

func toDeliveries(rows []*deliveryRow) []*delivery.Delivery {
	out := make([]*delivery.Delivery, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDelivery())
	}
	return out
}
