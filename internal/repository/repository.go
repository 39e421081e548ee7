package repository

import (
	"context"
	"time"

	"gomate-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type LocationRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Location, error)
	List(ctx context.Context) ([]domain.Location, error)
	Search(ctx context.Context, region string, difficulty domain.Difficulty) ([]domain.Location, error)
}

// TeamTx is the unit of work for one lifecycle operation. The team row is
// locked for the duration of the transaction, so load-check-write against
// it is serialized with concurrent operations on the same team.
type TeamTx interface {
	// Team returns the locked team row as loaded at transaction start.
	Team() *domain.Team
	// Membership returns the row for userID, or nil when the user has
	// never applied to this team.
	Membership(ctx context.Context, userID int32) (*domain.Membership, error)
	SaveTeam(ctx context.Context, t *domain.Team) error
	SaveMembership(ctx context.Context, m *domain.Membership) error
	DeleteMembership(ctx context.Context, userID int32) error
}

type TeamFilter struct {
	LocationID int32
	Status     domain.TeamStatus
	Page       int32
	PageSize   int32
}

type TeamRepository interface {
	// Create persists the team and its leader membership in one transaction.
	Create(ctx context.Context, team *domain.Team, leader *domain.Membership) error
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	List(ctx context.Context, filter TeamFilter) ([]domain.Team, int32, error)
	ListByMember(ctx context.Context, userID int32) ([]domain.Team, []domain.Membership, error)
	GetMembership(ctx context.Context, teamID string, userID int32) (*domain.Membership, error)
	// ListMembers returns memberships with the matching status plus the
	// corresponding user profiles, for roster views.
	ListMembers(ctx context.Context, teamID string, status domain.MembershipStatus) ([]domain.User, []domain.Membership, error)

	// Mutate runs fn inside one transaction with the team row locked.
	// fn's writes are committed together or not at all; a lost
	// serialization race surfaces as domain.ErrConcurrentUpdate.
	Mutate(ctx context.Context, teamID string, fn func(ctx context.Context, tx TeamTx) error) error

	// Schedule queries used by the status sweep and reminder jobs.
	ListScheduleDue(ctx context.Context, now time.Time) ([]domain.Team, error)
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Team, error)
	UpdateStatus(ctx context.Context, teamID string, status domain.TeamStatus) error
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}
