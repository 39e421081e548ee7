package service

import (
	"context"
	"sync"
	"time"

	"gomate-backend/internal/domain"
	"gomate-backend/internal/repository"
	"gomate-backend/internal/security"

	"github.com/stretchr/testify/mock"
)

type MockUserRepo struct{ mock.Mock }

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type MockLocationRepo struct{ mock.Mock }

func (m *MockLocationRepo) GetByID(ctx context.Context, id int32) (*domain.Location, error) {
	args := m.Called(ctx, id)
	if l := args.Get(0); l != nil {
		return l.(*domain.Location), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLocationRepo) List(ctx context.Context) ([]domain.Location, error) {
	args := m.Called(ctx)
	if l := args.Get(0); l != nil {
		return l.([]domain.Location), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLocationRepo) Search(ctx context.Context, region string, difficulty domain.Difficulty) ([]domain.Location, error) {
	args := m.Called(ctx, region, difficulty)
	if l := args.Get(0); l != nil {
		return l.([]domain.Location), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockNotificationRepo struct{ mock.Mock }

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	if n := args.Get(0); n != nil {
		return n.([]domain.Notification), args.Get(1).(int32), args.Error(2)
	}
	return nil, args.Get(1).(int32), args.Error(2)
}

func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

type MockEmailService struct{ mock.Mock }

func (m *MockEmailService) SendJoinRequestNotification(ctx context.Context, leaderEmail, leaderName, applicantName, teamTitle string) error {
	args := m.Called(ctx, leaderEmail, leaderName, applicantName, teamTitle)
	return args.Error(0)
}

func (m *MockEmailService) SendMembershipApprovedNotification(ctx context.Context, memberEmail, memberName, teamTitle string, startTime time.Time) error {
	args := m.Called(ctx, memberEmail, memberName, teamTitle, startTime)
	return args.Error(0)
}

func (m *MockEmailService) SendMembershipRejectedNotification(ctx context.Context, memberEmail, memberName, teamTitle string) error {
	args := m.Called(ctx, memberEmail, memberName, teamTitle)
	return args.Error(0)
}

func (m *MockEmailService) SendTeamCancelledNotification(ctx context.Context, memberEmail, memberName, teamTitle string) error {
	args := m.Called(ctx, memberEmail, memberName, teamTitle)
	return args.Error(0)
}

func (m *MockEmailService) SendHikeReminder(ctx context.Context, memberEmail, memberName, teamTitle string, startTime time.Time) error {
	args := m.Called(ctx, memberEmail, memberName, teamTitle, startTime)
	return args.Error(0)
}

type MockTokenManager struct{ mock.Mock }

func (m *MockTokenManager) GenerateAccessToken(userID int32, email string) (string, error) {
	args := m.Called(userID, email)
	return args.String(0), args.Error(1)
}

func (m *MockTokenManager) GenerateRefreshToken(userID int32, email string) (string, error) {
	args := m.Called(userID, email)
	return args.String(0), args.Error(1)
}

func (m *MockTokenManager) ValidateToken(tokenString string) (*security.UserClaims, error) {
	args := m.Called(tokenString)
	if c := args.Get(0); c != nil {
		return c.(*security.UserClaims), args.Error(1)
	}
	return nil, args.Error(1)
}

// fakeTeamRepo is an in-memory TeamRepository. Mutate serializes operations
// on a mutex the way the real implementation serializes them on the row
// lock, so it is safe to hammer from concurrent goroutines.
type fakeTeamRepo struct {
	mu          sync.Mutex
	team        *domain.Team
	memberships map[int32]*domain.Membership
	users       map[int32]domain.User
	scheduleDue []domain.Team
	statuses    map[string]domain.TeamStatus
	// mutateErrs is drained one error per Mutate call before fn runs,
	// to simulate lost serialization races.
	mutateErrs []error
}

func newFakeTeamRepo(team *domain.Team) *fakeTeamRepo {
	repo := &fakeTeamRepo{
		memberships: make(map[int32]*domain.Membership),
		users:       make(map[int32]domain.User),
		statuses:    make(map[string]domain.TeamStatus),
	}
	if team != nil {
		t2 := *team
		repo.team = &t2
		leader := domain.NewLeaderMembership(team.ID, team.LeaderID, time.Now())
		repo.memberships[team.LeaderID] = &leader
	}
	return repo
}

func (r *fakeTeamRepo) Create(ctx context.Context, team *domain.Team, leader *domain.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t2 := *team
	r.team = &t2
	lm := *leader
	r.memberships = map[int32]*domain.Membership{leader.UserID: &lm}
	return nil
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.team == nil || r.team.ID != id {
		return nil, domain.NotFoundf("team not found")
	}
	t2 := *r.team
	return &t2, nil
}

func (r *fakeTeamRepo) List(ctx context.Context, filter repository.TeamFilter) ([]domain.Team, int32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.team == nil {
		return nil, 0, nil
	}
	return []domain.Team{*r.team}, 1, nil
}

func (r *fakeTeamRepo) ListByMember(ctx context.Context, userID int32) ([]domain.Team, []domain.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.memberships[userID]
	if !ok || r.team == nil {
		return nil, nil, nil
	}
	return []domain.Team{*r.team}, []domain.Membership{*m}, nil
}

func (r *fakeTeamRepo) GetMembership(ctx context.Context, teamID string, userID int32) (*domain.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.memberships[userID]
	if !ok {
		return nil, nil
	}
	m2 := *m
	return &m2, nil
}

func (r *fakeTeamRepo) ListMembers(ctx context.Context, teamID string, status domain.MembershipStatus) ([]domain.User, []domain.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var users []domain.User
	var memberships []domain.Membership
	for id, m := range r.memberships {
		if m.Status != status {
			continue
		}
		users = append(users, r.users[id])
		memberships = append(memberships, *m)
	}
	return users, memberships, nil
}

func (r *fakeTeamRepo) Mutate(ctx context.Context, teamID string, fn func(ctx context.Context, tx repository.TeamTx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.mutateErrs) > 0 {
		err := r.mutateErrs[0]
		r.mutateErrs = r.mutateErrs[1:]
		if err != nil {
			return err
		}
	}

	if r.team == nil || r.team.ID != teamID {
		return domain.NotFoundf("team not found")
	}

	tx := &fakeTeamTx{repo: r}
	teamCopy := *r.team
	tx.team = &teamCopy

	if err := fn(ctx, tx); err != nil {
		return err
	}

	// Commit.
	r.team = tx.team
	for _, m := range tx.saved {
		m2 := m
		r.memberships[m.UserID] = &m2
	}
	for _, id := range tx.deleted {
		delete(r.memberships, id)
	}
	return nil
}

func (r *fakeTeamRepo) ListScheduleDue(ctx context.Context, now time.Time) ([]domain.Team, error) {
	return r.scheduleDue, nil
}

func (r *fakeTeamRepo) ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Team, error) {
	return nil, nil
}

func (r *fakeTeamRepo) UpdateStatus(ctx context.Context, teamID string, status domain.TeamStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[teamID] = status
	if r.team != nil && r.team.ID == teamID && r.team.Status != domain.TeamStatusCancelled {
		r.team.Status = status
	}
	return nil
}

type fakeTeamTx struct {
	repo    *fakeTeamRepo
	team    *domain.Team
	saved   []domain.Membership
	deleted []int32
}

func (t *fakeTeamTx) Team() *domain.Team { return t.team }

func (t *fakeTeamTx) Membership(ctx context.Context, userID int32) (*domain.Membership, error) {
	m, ok := t.repo.memberships[userID]
	if !ok {
		return nil, nil
	}
	m2 := *m
	return &m2, nil
}

func (t *fakeTeamTx) SaveTeam(ctx context.Context, team *domain.Team) error {
	t2 := *team
	t.team = &t2
	return nil
}

func (t *fakeTeamTx) SaveMembership(ctx context.Context, m *domain.Membership) error {
	t.saved = append(t.saved, *m)
	return nil
}

func (t *fakeTeamTx) DeleteMembership(ctx context.Context, userID int32) error {
	if m, ok := t.repo.memberships[userID]; ok && m.Role == domain.MembershipRoleLeader {
		return nil
	}
	t.deleted = append(t.deleted, userID)
	return nil
}
