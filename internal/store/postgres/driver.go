package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"swift-dispatch/internal/common"
	"swift-dispatch/internal/driver"
	domainerrors "swift-dispatch/internal/errors"
)

const driverColumns = `id, name, vehicle_type, status, lat, lng, rating, total_deliveries, active_deliveries, created_at, updated_at`

type driverRow struct {
	ID               string         `db:"id"`
	Name             string         `db:"name"`
	VehicleType      string         `db:"vehicle_type"`
	Status           string         `db:"status"`
	Lat              float64        `db:"lat"`
	Lng              float64        `db:"lng"`
	Rating           float64        `db:"rating"`
	TotalDeliveries  int            `db:"total_deliveries"`
	ActiveDeliveries pq.StringArray `db:"active_deliveries"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func toDriverRow(d *driver.Driver) *driverRow {
	return &driverRow{
		ID:               d.ID,
		Name:             d.Name,
		VehicleType:      string(d.VehicleType),
		Status:           string(d.Status),
		Lat:              d.Location.Lat,
		Lng:              d.Location.Lng,
		Rating:           d.Rating,
		TotalDeliveries:  d.TotalDeliveries,
		ActiveDeliveries: pq.StringArray(d.ActiveDeliveries),
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

func (r *driverRow) toDriver() *driver.Driver {
	return &driver.Driver{
		ID:               r.ID,
		Name:             r.Name,
		VehicleType:      driver.VehicleType(r.VehicleType),
		Status:           driver.Status(r.Status),
		Location:         common.NewLocation(r.Lat, r.Lng),
		Rating:           r.Rating,
		TotalDeliveries:  r.TotalDeliveries,
		ActiveDeliveries: []string(r.ActiveDeliveries),
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

type DriverStore struct {
	db *sqlx.DB
}

func NewDriverStore(db *sqlx.DB) *DriverStore {
	return &DriverStore{db: db}
}

func (s *DriverStore) GetAll(ctx context.Context) ([]*driver.Driver, error) {
	query := fmt.Sprintf(`SELECT %s FROM drivers ORDER BY created_at ASC`, driverColumns)

	var rows []*driverRow
	if err := sqlx.SelectContext(ctx, s.db, &rows, query); err != nil {
		return nil, domainerrors.NewInternal("failed to list drivers", err)
	}
	return toDrivers(rows), nil
}

func (s *DriverStore) GetByID(ctx context.Context, id string) (*driver.Driver, error) {
	query := fmt.Sprintf(`SELECT %s FROM drivers WHERE id = $1`, driverColumns)

	var row driverRow
	err := sqlx.GetContext(ctx, s.db, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerrors.DriverNotFound(id)
	}
	if err != nil {
		return nil, domainerrors.NewInternal("failed to get driver", err)
	}
	return row.toDriver(), nil
}

func (s *DriverStore) GetAvailable(ctx context.Context) ([]*driver.Driver, error) {
	query := fmt.Sprintf(`SELECT %s FROM drivers WHERE status = $1 ORDER BY created_at ASC`, driverColumns)

	var rows []*driverRow
	if err := sqlx.SelectContext(ctx, s.db, &rows, query, string(driver.StatusAvailable)); err != nil {
		return nil, domainerrors.NewInternal("failed to list available drivers", err)
	}
	return toDrivers(rows), nil
}

func (s *DriverStore) Create(ctx context.Context, d *driver.Driver) error {
	const query = `INSERT INTO drivers (id, name, vehicle_type, status, lat, lng, rating, total_deliveries, active_deliveries, created_at, updated_at)
		VALUES (:id, :name, :vehicle_type, :status, :lat, :lng, :rating, :total_deliveries, :active_deliveries, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, s.db, query, toDriverRow(d)); err != nil {
		return domainerrors.NewInternal("failed to create driver", err)
	}
	return nil
}

func (s *DriverStore) Update(ctx context.Context, d *driver.Driver) error {
	const query = `UPDATE drivers SET name = :name, vehicle_type = :vehicle_type, status = :status,
		lat = :lat, lng = :lng, rating = :rating, total_deliveries = :total_deliveries,
		active_deliveries = :active_deliveries, updated_at = :updated_at
	WHERE id = :id`

	res, err := sqlx.NamedExecContext(ctx, s.db, query, toDriverRow(d))
	if err != nil {
		return domainerrors.NewInternal("failed to update driver", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return domainerrors.DriverNotFound(d.ID)
	}
	return nil
}

func (s *DriverStore) UpdateLocation(ctx context.Context, id string, loc common.Location) (*driver.Driver, error) {
	const query = `UPDATE drivers SET lat = $2, lng = $3, updated_at = NOW() WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query, id, loc.Lat, loc.Lng)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to update driver location", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, domainerrors.DriverNotFound(id)
	}
	return s.GetByID(ctx, id)
}

func (s *DriverStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM drivers WHERE id = $1`, id)
	if err != nil {
		return false, domainerrors.NewInternal("failed to delete driver", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, domainerrors.NewInternal("failed to delete driver", err)
	}
	return rows > 0, nil
}

func toDrivers(rows []*driverRow) []*driver.Driver {
	out := make([]*driver.Driver, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDriver())
	}
	return out
}
