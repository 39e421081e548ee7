package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"gomate-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func recruitingTeam(maxMembers int32) *domain.Team {
	return &domain.Team{
		ID:             "team-1",
		LocationID:     1,
		LeaderID:       1,
		Title:          "Sunrise Hike",
		StartTime:      testNow.Add(48 * time.Hour),
		EndTime:        testNow.Add(56 * time.Hour),
		MaxMembers:     maxMembers,
		CurrentMembers: 1,
		Status:         domain.TeamStatusRecruiting,
	}
}

func newTestTeamService(repo *fakeTeamRepo) (*teamService, *MockUserRepo, *MockLocationRepo, *MockNotificationRepo, *MockEmailService) {
	userRepo := new(MockUserRepo)
	locationRepo := new(MockLocationRepo)
	noteRepo := new(MockNotificationRepo)
	emailSvc := new(MockEmailService)

	svc := NewTeamService(repo, userRepo, locationRepo, noteRepo, emailSvc).(*teamService)
	svc.now = func() time.Time { return testNow }
	return svc, userRepo, locationRepo, noteRepo, emailSvc
}

// allowNotifications wires permissive expectations for the fire-and-forget
// side effects so lifecycle tests can focus on state.
func allowNotifications(userRepo *MockUserRepo, noteRepo *MockNotificationRepo, emailSvc *MockEmailService) {
	userRepo.On("GetByID", mock.Anything, mock.Anything).Return(&domain.User{ID: 1, Name: "Someone", Email: "someone@test.com"}, nil).Maybe()
	noteRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
	emailSvc.On("SendJoinRequestNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	emailSvc.On("SendMembershipApprovedNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	emailSvc.On("SendMembershipRejectedNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	emailSvc.On("SendTeamCancelledNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
}

func TestCreateTeam(t *testing.T) {
	ctx := context.Background()

	t.Run("creates team with leader membership", func(t *testing.T) {
		repo := newFakeTeamRepo(nil)
		svc, userRepo, locationRepo, noteRepo, emailSvc := newTestTeamService(repo)
		allowNotifications(userRepo, noteRepo, emailSvc)
		locationRepo.On("GetByID", ctx, int32(1)).Return(&domain.Location{ID: 1, Name: "Eagle Peak"}, nil)

		team, err := svc.CreateTeam(ctx, 1, CreateTeamInput{
			LocationID: 1,
			Title:      "Sunrise Hike",
			StartTime:  testNow.Add(48 * time.Hour),
			EndTime:    testNow.Add(56 * time.Hour),
			MaxMembers: 4,
		})
		assert.NoError(t, err)
		assert.NotEmpty(t, team.ID)
		assert.Equal(t, int32(1), team.CurrentMembers)
		assert.Equal(t, domain.TeamStatusRecruiting, team.Status)

		leader := repo.memberships[1]
		assert.NotNil(t, leader)
		assert.Equal(t, domain.MembershipRoleLeader, leader.Role)
		assert.Equal(t, domain.MembershipStatusApproved, leader.Status)
	})

	t.Run("unknown location", func(t *testing.T) {
		repo := newFakeTeamRepo(nil)
		svc, _, locationRepo, _, _ := newTestTeamService(repo)
		locationRepo.On("GetByID", ctx, int32(99)).Return(nil, domain.NotFoundf("location not found"))

		_, err := svc.CreateTeam(ctx, 1, CreateTeamInput{
			LocationID: 99,
			Title:      "Sunrise Hike",
			StartTime:  testNow.Add(48 * time.Hour),
			EndTime:    testNow.Add(56 * time.Hour),
			MaxMembers: 4,
		})
		assert.True(t, domain.IsKind(err, domain.KindNotFound))
		assert.Nil(t, repo.team)
	})

	t.Run("invalid capacity", func(t *testing.T) {
		repo := newFakeTeamRepo(nil)
		svc, _, _, _, _ := newTestTeamService(repo)

		_, err := svc.CreateTeam(ctx, 1, CreateTeamInput{
			LocationID: 1,
			Title:      "Sunrise Hike",
			StartTime:  testNow.Add(48 * time.Hour),
			EndTime:    testNow.Add(56 * time.Hour),
			MaxMembers: 1,
		})
		assert.True(t, domain.IsKind(err, domain.KindValidation))
	})
}

func TestJoinApproveRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTeamRepo(recruitingTeam(3))
	svc, userRepo, _, noteRepo, emailSvc := newTestTeamService(repo)
	allowNotifications(userRepo, noteRepo, emailSvc)

	membership, err := svc.JoinTeam(ctx, 2, "team-1", "count me in")
	assert.NoError(t, err)
	assert.Equal(t, domain.MembershipStatusPending, membership.Status)
	assert.Equal(t, int32(1), repo.team.CurrentMembers)

	team, err := svc.ApproveMember(ctx, 1, "team-1", 2)
	assert.NoError(t, err)
	assert.Equal(t, int32(2), team.CurrentMembers)
	assert.Equal(t, domain.TeamStatusRecruiting, team.Status)
	assert.Equal(t, domain.MembershipStatusApproved, repo.memberships[2].Status)
	assert.NotNil(t, repo.memberships[2].JoinedAt)
}

func TestRejectThenReapply(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTeamRepo(recruitingTeam(3))
	svc, userRepo, _, noteRepo, emailSvc := newTestTeamService(repo)
	allowNotifications(userRepo, noteRepo, emailSvc)

	_, err := svc.JoinTeam(ctx, 2, "team-1", "first try")
	assert.NoError(t, err)

	err = svc.RejectMember(ctx, 1, "team-1", 2)
	assert.NoError(t, err)
	assert.Equal(t, domain.MembershipStatusRejected, repo.memberships[2].Status)

	// Re-application reuses the same row.
	membership, err := svc.JoinTeam(ctx, 2, "team-1", "second try")
	assert.NoError(t, err)
	assert.Equal(t, domain.MembershipStatusPending, membership.Status)
	assert.Equal(t, "second try", repo.memberships[2].Note)
	assert.Equal(t, int32(1), repo.team.CurrentMembers)
}

func TestApproveLastSlotConcurrently(t *testing.T) {
	ctx := context.Background()

	// Capacity 3 with two approved, so exactly one of the pending
	// applicants can win the remaining slot.
	team := recruitingTeam(3)
	team.CurrentMembers = 2
	repo := newFakeTeamRepo(team)
	svc, userRepo, _, noteRepo, emailSvc := newTestTeamService(repo)
	allowNotifications(userRepo, noteRepo, emailSvc)

	const applicants = 8
	for i := 0; i < applicants; i++ {
		userID := int32(10 + i)
		repo.memberships[userID] = &domain.Membership{
			TeamID: "team-1", UserID: userID,
			Role: domain.MembershipRoleMember, Status: domain.MembershipStatusPending,
			AppliedOn: testNow,
		}
	}

	var wg sync.WaitGroup
	errs := make([]error, applicants)
	for i := 0; i < applicants; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.ApproveMember(ctx, 1, "team-1", int32(10+i))
		}(i)
	}
	wg.Wait()

	approved := 0
	for _, err := range errs {
		if err == nil {
			approved++
			continue
		}
		assert.True(t, domain.IsKind(err, domain.KindConflict), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, approved)
	assert.Equal(t, team.MaxMembers, repo.team.CurrentMembers)
	assert.Equal(t, domain.TeamStatusFull, repo.team.Status)
}

func TestLeaveTeam(t *testing.T) {
	ctx := context.Background()

	t.Run("leaving a full team reopens recruitment", func(t *testing.T) {
		team := recruitingTeam(2)
		team.CurrentMembers = 2
		team.Status = domain.TeamStatusFull
		repo := newFakeTeamRepo(team)
		repo.memberships[2] = &domain.Membership{
			TeamID: "team-1", UserID: 2,
			Role: domain.MembershipRoleMember, Status: domain.MembershipStatusApproved,
		}
		svc, _, _, _, _ := newTestTeamService(repo)

		got, err := svc.LeaveTeam(ctx, 2, "team-1")
		assert.NoError(t, err)
		assert.Equal(t, int32(1), got.CurrentMembers)
		assert.Equal(t, domain.TeamStatusRecruiting, got.Status)
		assert.Nil(t, repo.memberships[2])
	})

	t.Run("leader cannot leave", func(t *testing.T) {
		repo := newFakeTeamRepo(recruitingTeam(3))
		svc, _, _, _, _ := newTestTeamService(repo)

		_, err := svc.LeaveTeam(ctx, 1, "team-1")
		assert.True(t, domain.IsKind(err, domain.KindConflict))
		assert.NotNil(t, repo.memberships[1])
	})

	t.Run("non-member", func(t *testing.T) {
		repo := newFakeTeamRepo(recruitingTeam(3))
		svc, _, _, _, _ := newTestTeamService(repo)

		_, err := svc.LeaveTeam(ctx, 42, "team-1")
		assert.True(t, domain.IsKind(err, domain.KindConflict))
	})
}

func TestDissolveTeam(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTeamRepo(recruitingTeam(3))
	repo.memberships[2] = &domain.Membership{
		TeamID: "team-1", UserID: 2,
		Role: domain.MembershipRoleMember, Status: domain.MembershipStatusApproved,
	}
	repo.users[2] = domain.User{ID: 2, Name: "Member", Email: "member@test.com"}
	svc, userRepo, _, noteRepo, emailSvc := newTestTeamService(repo)
	allowNotifications(userRepo, noteRepo, emailSvc)

	team, err := svc.DissolveTeam(ctx, 1, "team-1")
	assert.NoError(t, err)
	assert.Equal(t, domain.TeamStatusCancelled, team.Status)

	// Terminal: no further lifecycle operation is legal.
	_, err = svc.JoinTeam(ctx, 3, "team-1", "")
	assert.True(t, domain.IsKind(err, domain.KindConflict))
	_, err = svc.DissolveTeam(ctx, 1, "team-1")
	assert.True(t, domain.IsKind(err, domain.KindConflict))
}

func TestMutateRetriesOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("single lost race retries and succeeds", func(t *testing.T) {
		repo := newFakeTeamRepo(recruitingTeam(3))
		repo.mutateErrs = []error{domain.ErrConcurrentUpdate}
		svc, userRepo, _, noteRepo, emailSvc := newTestTeamService(repo)
		allowNotifications(userRepo, noteRepo, emailSvc)

		membership, err := svc.JoinTeam(ctx, 2, "team-1", "")
		assert.NoError(t, err)
		assert.Equal(t, domain.MembershipStatusPending, membership.Status)
	})

	t.Run("second lost race surfaces a conflict", func(t *testing.T) {
		repo := newFakeTeamRepo(recruitingTeam(3))
		repo.mutateErrs = []error{domain.ErrConcurrentUpdate, domain.ErrConcurrentUpdate}
		svc, _, _, _, _ := newTestTeamService(repo)

		_, err := svc.JoinTeam(ctx, 2, "team-1", "")
		assert.True(t, domain.IsKind(err, domain.KindConflict))
		assert.Contains(t, err.Error(), "modified concurrently")
	})
}

func TestGetTeam(t *testing.T) {
	ctx := context.Background()

	setup := func(team *domain.Team) (*teamService, *fakeTeamRepo, *MockLocationRepo) {
		repo := newFakeTeamRepo(team)
		repo.users[1] = domain.User{ID: 1, Name: "Leader"}
		svc, _, locationRepo, _, _ := newTestTeamService(repo)
		locationRepo.On("GetByID", ctx, int32(1)).Return(&domain.Location{ID: 1, Name: "Eagle Peak"}, nil).Maybe()
		return svc, repo, locationRepo
	}

	t.Run("leader sees pending applicants", func(t *testing.T) {
		svc, repo, _ := setup(recruitingTeam(3))
		repo.memberships[2] = &domain.Membership{
			TeamID: "team-1", UserID: 2,
			Role: domain.MembershipRoleMember, Status: domain.MembershipStatusPending,
		}
		repo.users[2] = domain.User{ID: 2, Name: "Applicant"}

		detail, err := svc.GetTeam(ctx, 1, "team-1")
		assert.NoError(t, err)
		assert.Len(t, detail.Members, 1)
		assert.Len(t, detail.Pending, 1)
		assert.Equal(t, "Eagle Peak", detail.Location.Name)
	})

	t.Run("non-leader does not see pending applicants", func(t *testing.T) {
		svc, repo, _ := setup(recruitingTeam(3))
		repo.memberships[2] = &domain.Membership{
			TeamID: "team-1", UserID: 2,
			Role: domain.MembershipRoleMember, Status: domain.MembershipStatusPending,
		}

		detail, err := svc.GetTeam(ctx, 2, "team-1")
		assert.NoError(t, err)
		assert.Empty(t, detail.Pending)
		assert.NotNil(t, detail.Viewer)
		assert.Equal(t, domain.MembershipStatusPending, detail.Viewer.Status)
	})

	t.Run("derives ongoing status on read", func(t *testing.T) {
		team := recruitingTeam(3)
		team.StartTime = testNow.Add(-time.Hour)
		team.EndTime = testNow.Add(time.Hour)
		svc, _, _ := setup(team)

		detail, err := svc.GetTeam(ctx, 0, "team-1")
		assert.NoError(t, err)
		assert.Equal(t, domain.TeamStatusOngoing, detail.Team.Status)
	})
}

func TestSweepSchedule(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTeamRepo(nil)
	svc, _, _, _, _ := newTestTeamService(repo)

	mk := func(id string, status domain.TeamStatus, start, end time.Time) domain.Team {
		return domain.Team{ID: id, Status: status, StartTime: start, EndTime: end}
	}
	repo.scheduleDue = []domain.Team{
		mk("started", domain.TeamStatusRecruiting, testNow.Add(-time.Hour), testNow.Add(time.Hour)),
		mk("ended", domain.TeamStatusOngoing, testNow.Add(-3*time.Hour), testNow.Add(-time.Hour)),
		mk("current", domain.TeamStatusOngoing, testNow.Add(-time.Hour), testNow.Add(time.Hour)),
	}

	transitioned, err := svc.SweepSchedule(ctx, testNow)
	assert.NoError(t, err)
	assert.Equal(t, 2, transitioned)
	assert.Equal(t, domain.TeamStatusOngoing, repo.statuses["started"])
	assert.Equal(t, domain.TeamStatusCompleted, repo.statuses["ended"])
	_, touched := repo.statuses["current"]
	assert.False(t, touched)
}

func TestJoinSendsLeaderNotification(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTeamRepo(recruitingTeam(3))
	svc, userRepo, _, noteRepo, emailSvc := newTestTeamService(repo)

	userRepo.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, Name: "Leader", Email: "leader@test.com"}, nil).Once()
	userRepo.On("GetByID", ctx, int32(2)).Return(&domain.User{ID: 2, Name: "Applicant", Email: "applicant@test.com"}, nil).Once()
	noteRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.UserID == 1 && n.Attributes["type"] == "JOIN_REQUEST" && n.Attributes["user_id"] == fmt.Sprintf("%d", 2)
	})).Return(nil).Once()
	emailSvc.On("SendJoinRequestNotification", ctx, "leader@test.com", "Leader", "Applicant", "Sunrise Hike").Return(nil).Once()

	_, err := svc.JoinTeam(ctx, 2, "team-1", "hello")
	assert.NoError(t, err)

	userRepo.AssertExpectations(t)
	noteRepo.AssertExpectations(t)
	emailSvc.AssertExpectations(t)
}
