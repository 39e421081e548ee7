package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gomate-backend/internal/domain"
	"gomate-backend/internal/repository"
)

type locationRepository struct {
	db *sql.DB
}

func NewLocationRepository(db *sql.DB) repository.LocationRepository {
	return &locationRepository{db: db}
}

const locationColumns = `id, name, region, difficulty, distance_km, elevation_m, description, cover_url, created_on`

func (r *locationRepository) GetByID(ctx context.Context, id int32) (*domain.Location, error) {
	l := &domain.Location{}
	query := `SELECT ` + locationColumns + ` FROM locations WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&l.ID, &l.Name, &l.Region, &l.Difficulty, &l.DistanceKm, &l.ElevationM, &l.Description, &l.CoverURL, &l.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("location %d not found", id)
	}
	if err != nil {
		return nil, domain.StorageError("failed to get location", err)
	}
	return l, nil
}

func (r *locationRepository) List(ctx context.Context) ([]domain.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, domain.StorageError("failed to list locations", err)
	}
	defer rows.Close()
	return scanLocations(rows)
}

func (r *locationRepository) Search(ctx context.Context, region string, difficulty domain.Difficulty) ([]domain.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations
	          WHERE region ILIKE $1 AND ($2 = '' OR difficulty = $2) ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, "%"+region+"%", string(difficulty))
	if err != nil {
		return nil, domain.StorageError("failed to search locations", err)
	}
	defer rows.Close()
	return scanLocations(rows)
}

func scanLocations(rows *sql.Rows) ([]domain.Location, error) {
	var locs []domain.Location
	for rows.Next() {
		var l domain.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Region, &l.Difficulty, &l.DistanceKm, &l.ElevationM, &l.Description, &l.CoverURL, &l.CreatedOn); err != nil {
			return nil, domain.StorageError("failed to scan location", err)
		}
		locs = append(locs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("failed to read locations", err)
	}
	return locs, nil
}
