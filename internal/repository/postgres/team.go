package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gomate-backend/internal/domain"
	"gomate-backend/internal/logger"
	"gomate-backend/internal/repository"

	"github.com/lib/pq"
)

type teamRepository struct {
	db *sql.DB
}

func NewTeamRepository(db *sql.DB) repository.TeamRepository {
	return &teamRepository{db: db}
}

const teamColumns = `id, location_id, leader_id, title, description, requirements, start_time, end_time, max_members, current_members, status, created_on`

func scanTeam(row interface{ Scan(...any) error }) (*domain.Team, error) {
	t := &domain.Team{}
	err := row.Scan(&t.ID, &t.LocationID, &t.LeaderID, &t.Title, &t.Description, &t.Requirements,
		&t.StartTime, &t.EndTime, &t.MaxMembers, &t.CurrentMembers, &t.Status, &t.CreatedOn)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// translateTxErr maps lock and uniqueness races to the retryable sentinel.
func translateTxErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "23505": // serialization failure, deadlock, unique violation
			return domain.ErrConcurrentUpdate
		}
	}
	return err
}

func (r *teamRepository) Create(ctx context.Context, team *domain.Team, leader *domain.Membership) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.StorageError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	teamQuery := `INSERT INTO teams (id, location_id, leader_id, title, description, requirements, start_time, end_time, max_members, current_members, status, created_on)
	              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = tx.ExecContext(ctx, teamQuery, team.ID, team.LocationID, team.LeaderID, team.Title, team.Description,
		team.Requirements, team.StartTime, team.EndTime, team.MaxMembers, team.CurrentMembers, team.Status, time.Now())
	if err != nil {
		return domain.StorageError("failed to insert team", err)
	}

	memberQuery := `INSERT INTO memberships (team_id, user_id, role, status, note, applied_on, joined_at)
	                VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = tx.ExecContext(ctx, memberQuery, leader.TeamID, leader.UserID, leader.Role, leader.Status, leader.Note, leader.AppliedOn, leader.JoinedAt)
	if err != nil {
		return domain.StorageError("failed to insert leader membership", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.StorageError("failed to commit team creation", err)
	}
	return nil
}

func (r *teamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	t, err := scanTeam(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("team not found")
	}
	if err != nil {
		return nil, domain.StorageError("failed to get team", err)
	}
	return t, nil
}

func (r *teamRepository) List(ctx context.Context, filter repository.TeamFilter) ([]domain.Team, int32, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.PageSize

	where := `WHERE ($1 = 0 OR location_id = $1) AND ($2 = '' OR status = $2)`
	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM teams `+where, filter.LocationID, string(filter.Status)).Scan(&count); err != nil {
		return nil, 0, domain.StorageError("failed to count teams", err)
	}

	query := `SELECT ` + teamColumns + ` FROM teams ` + where + ` ORDER BY start_time LIMIT $3 OFFSET $4`
	rows, err := r.db.QueryContext(ctx, query, filter.LocationID, string(filter.Status), filter.PageSize, offset)
	if err != nil {
		return nil, 0, domain.StorageError("failed to list teams", err)
	}
	defer rows.Close()

	teams, err := collectTeams(rows)
	if err != nil {
		return nil, 0, err
	}
	return teams, count, nil
}

func (r *teamRepository) ListByMember(ctx context.Context, userID int32) ([]domain.Team, []domain.Membership, error) {
	query := `SELECT ` + prefixedTeamColumns("t") + `,
	                 m.team_id, m.user_id, m.role, m.status, m.note, m.applied_on, m.joined_at
	          FROM teams t JOIN memberships m ON m.team_id = t.id
	          WHERE m.user_id = $1 ORDER BY t.start_time`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, nil, domain.StorageError("failed to list teams by member", err)
	}
	defer rows.Close()

	var teams []domain.Team
	var memberships []domain.Membership
	for rows.Next() {
		var t domain.Team
		var m domain.Membership
		if err := rows.Scan(&t.ID, &t.LocationID, &t.LeaderID, &t.Title, &t.Description, &t.Requirements,
			&t.StartTime, &t.EndTime, &t.MaxMembers, &t.CurrentMembers, &t.Status, &t.CreatedOn,
			&m.TeamID, &m.UserID, &m.Role, &m.Status, &m.Note, &m.AppliedOn, &m.JoinedAt); err != nil {
			return nil, nil, domain.StorageError("failed to scan team membership", err)
		}
		teams = append(teams, t)
		memberships = append(memberships, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, domain.StorageError("failed to read teams by member", err)
	}
	return teams, memberships, nil
}

func (r *teamRepository) GetMembership(ctx context.Context, teamID string, userID int32) (*domain.Membership, error) {
	return getMembership(ctx, r.db, teamID, userID)
}

func (r *teamRepository) ListMembers(ctx context.Context, teamID string, status domain.MembershipStatus) ([]domain.User, []domain.Membership, error) {
	query := `SELECT u.id, u.email, u.password_hash, u.name, u.bio, u.avatar_url, u.created_on, u.updated_on,
	                 m.team_id, m.user_id, m.role, m.status, m.note, m.applied_on, m.joined_at
	          FROM memberships m JOIN users u ON u.id = m.user_id
	          WHERE m.team_id = $1 AND m.status = $2 ORDER BY m.applied_on`
	rows, err := r.db.QueryContext(ctx, query, teamID, string(status))
	if err != nil {
		return nil, nil, domain.StorageError("failed to list team members", err)
	}
	defer rows.Close()

	var users []domain.User
	var memberships []domain.Membership
	for rows.Next() {
		var u domain.User
		var m domain.Membership
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Bio, &u.AvatarURL, &u.CreatedOn, &u.UpdatedOn,
			&m.TeamID, &m.UserID, &m.Role, &m.Status, &m.Note, &m.AppliedOn, &m.JoinedAt); err != nil {
			return nil, nil, domain.StorageError("failed to scan team member", err)
		}
		users = append(users, u)
		memberships = append(memberships, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, domain.StorageError("failed to read team members", err)
	}
	return users, memberships, nil
}

// Mutate locks the team row for the duration of fn. Concurrent lifecycle
// operations on the same team queue on the row lock, so every operation
// sees the committed result of the previous one.
func (r *teamRepository) Mutate(ctx context.Context, teamID string, fn func(ctx context.Context, tx repository.TeamTx) error) error {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.StorageError("failed to begin transaction", err)
	}
	defer sqlTx.Rollback()

	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1 FOR UPDATE`
	team, err := scanTeam(sqlTx.QueryRowContext(ctx, query, teamID))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundf("team not found")
	}
	if err != nil {
		if terr := translateTxErr(err); terr == domain.ErrConcurrentUpdate {
			return terr
		}
		return domain.StorageError("failed to lock team", err)
	}

	if err := fn(ctx, &teamTx{tx: sqlTx, team: team}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		if terr := translateTxErr(err); terr == domain.ErrConcurrentUpdate {
			return terr
		}
		return domain.StorageError("failed to commit team mutation", err)
	}
	return nil
}

func (r *teamRepository) ListScheduleDue(ctx context.Context, now time.Time) ([]domain.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams
	          WHERE status IN ('RECRUITING', 'FULL', 'ONGOING') AND start_time <= $1`
	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, domain.StorageError("failed to list schedule-due teams", err)
	}
	defer rows.Close()
	return collectTeams(rows)
}

func (r *teamRepository) ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams
	          WHERE status IN ('RECRUITING', 'FULL') AND start_time >= $1 AND start_time < $2`
	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, domain.StorageError("failed to list upcoming teams", err)
	}
	defer rows.Close()
	return collectTeams(rows)
}

func (r *teamRepository) UpdateStatus(ctx context.Context, teamID string, status domain.TeamStatus) error {
	query := `UPDATE teams SET status = $1 WHERE id = $2 AND status <> 'CANCELLED'`
	if _, err := r.db.ExecContext(ctx, query, string(status), teamID); err != nil {
		return domain.StorageError("failed to update team status", err)
	}
	return nil
}

func collectTeams(rows *sql.Rows) ([]domain.Team, error) {
	var teams []domain.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, domain.StorageError("failed to scan team", err)
		}
		teams = append(teams, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("failed to read teams", err)
	}
	return teams, nil
}

func prefixedTeamColumns(alias string) string {
	return alias + `.id, ` + alias + `.location_id, ` + alias + `.leader_id, ` + alias + `.title, ` +
		alias + `.description, ` + alias + `.requirements, ` + alias + `.start_time, ` + alias + `.end_time, ` +
		alias + `.max_members, ` + alias + `.current_members, ` + alias + `.status, ` + alias + `.created_on`
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getMembership(ctx context.Context, q querier, teamID string, userID int32) (*domain.Membership, error) {
	m := &domain.Membership{}
	query := `SELECT team_id, user_id, role, status, note, applied_on, joined_at
	          FROM memberships WHERE team_id = $1 AND user_id = $2`
	err := q.QueryRowContext(ctx, query, teamID, userID).Scan(&m.TeamID, &m.UserID, &m.Role, &m.Status, &m.Note, &m.AppliedOn, &m.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.StorageError("failed to get membership", err)
	}
	return m, nil
}

// teamTx implements repository.TeamTx over a single *sql.Tx.
type teamTx struct {
	tx   *sql.Tx
	team *domain.Team
}

func (t *teamTx) Team() *domain.Team { return t.team }

func (t *teamTx) Membership(ctx context.Context, userID int32) (*domain.Membership, error) {
	return getMembership(ctx, t.tx, t.team.ID, userID)
}

func (t *teamTx) SaveTeam(ctx context.Context, team *domain.Team) error {
	query := `UPDATE teams SET title = $1, description = $2, requirements = $3, start_time = $4, end_time = $5,
	                 max_members = $6, current_members = $7, status = $8 WHERE id = $9`
	_, err := t.tx.ExecContext(ctx, query, team.Title, team.Description, team.Requirements, team.StartTime,
		team.EndTime, team.MaxMembers, team.CurrentMembers, team.Status, team.ID)
	if err != nil {
		if terr := translateTxErr(err); terr == domain.ErrConcurrentUpdate {
			return terr
		}
		return domain.StorageError("failed to save team", err)
	}
	logger.DatabaseCall("UPDATE", "teams", "teamID", team.ID, "status", team.Status, "members", team.CurrentMembers)
	return nil
}

func (t *teamTx) SaveMembership(ctx context.Context, m *domain.Membership) error {
	query := `INSERT INTO memberships (team_id, user_id, role, status, note, applied_on, joined_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          ON CONFLICT (team_id, user_id)
	          DO UPDATE SET status = EXCLUDED.status, note = EXCLUDED.note, applied_on = EXCLUDED.applied_on, joined_at = EXCLUDED.joined_at`
	_, err := t.tx.ExecContext(ctx, query, m.TeamID, m.UserID, m.Role, m.Status, m.Note, m.AppliedOn, m.JoinedAt)
	if err != nil {
		if terr := translateTxErr(err); terr == domain.ErrConcurrentUpdate {
			return terr
		}
		return domain.StorageError("failed to save membership", err)
	}
	return nil
}

func (t *teamTx) DeleteMembership(ctx context.Context, userID int32) error {
	query := `DELETE FROM memberships WHERE team_id = $1 AND user_id = $2 AND role <> 'LEADER'`
	_, err := t.tx.ExecContext(ctx, query, t.team.ID, userID)
	if err != nil {
		return domain.StorageError("failed to delete membership", err)
	}
	return nil
}
