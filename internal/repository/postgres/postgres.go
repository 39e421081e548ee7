package postgres

import (
	"database/sql"

	"gomate-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.LocationRepository
	repository.TeamRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		UserRepository:         NewUserRepository(db),
		LocationRepository:     NewLocationRepository(db),
		TeamRepository:         NewTeamRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}
