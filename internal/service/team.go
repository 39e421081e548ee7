package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gomate-backend/internal/domain"
	"gomate-backend/internal/logger"
	"gomate-backend/internal/repository"

	"github.com/google/uuid"
)

type teamService struct {
	teamRepo     repository.TeamRepository
	userRepo     repository.UserRepository
	locationRepo repository.LocationRepository
	noteRepo     repository.NotificationRepository
	emailSvc     EmailService
	now          func() time.Time
}

func NewTeamService(
	teamRepo repository.TeamRepository,
	userRepo repository.UserRepository,
	locationRepo repository.LocationRepository,
	noteRepo repository.NotificationRepository,
	emailSvc EmailService,
) TeamService {
	return &teamService{
		teamRepo:     teamRepo,
		userRepo:     userRepo,
		locationRepo: locationRepo,
		noteRepo:     noteRepo,
		emailSvc:     emailSvc,
		now:          time.Now,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, actorID int32, input CreateTeamInput) (*domain.Team, error) {
	now := s.now()

	team := &domain.Team{
		ID:             uuid.NewString(),
		LocationID:     input.LocationID,
		LeaderID:       actorID,
		Title:          input.Title,
		Description:    input.Description,
		Requirements:   input.Requirements,
		StartTime:      input.StartTime,
		EndTime:        input.EndTime,
		MaxMembers:     input.MaxMembers,
		CurrentMembers: 1,
		Status:         domain.TeamStatusRecruiting,
	}
	if err := domain.ValidateNewTeam(team, now); err != nil {
		return nil, err
	}

	if _, err := s.locationRepo.GetByID(ctx, input.LocationID); err != nil {
		return nil, err
	}

	leader := domain.NewLeaderMembership(team.ID, actorID, now)
	if err := s.teamRepo.Create(ctx, team, &leader); err != nil {
		return nil, err
	}

	logger.Info("Team created", "teamID", team.ID, "leaderID", actorID, "maxMembers", team.MaxMembers)
	return team, nil
}

func (s *teamService) JoinTeam(ctx context.Context, actorID int32, teamID, note string) (*domain.Membership, error) {
	var membership domain.Membership
	var team domain.Team

	err := s.mutate(ctx, teamID, func(ctx context.Context, tx repository.TeamTx) error {
		existing, err := tx.Membership(ctx, actorID)
		if err != nil {
			return err
		}
		m, err := domain.Join(tx.Team(), existing, actorID, note, s.now())
		if err != nil {
			return err
		}
		if err := tx.SaveMembership(ctx, &m); err != nil {
			return err
		}
		membership = m
		team = *tx.Team()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyJoinRequest(ctx, &team, actorID)
	return &membership, nil
}

func (s *teamService) ApproveMember(ctx context.Context, actorID int32, teamID string, memberID int32) (*domain.Team, error) {
	var team domain.Team

	err := s.mutate(ctx, teamID, func(ctx context.Context, tx repository.TeamTx) error {
		m, err := tx.Membership(ctx, memberID)
		if err != nil {
			return err
		}
		t := tx.Team()
		if err := domain.Approve(t, m, actorID, s.now()); err != nil {
			return err
		}
		if err := tx.SaveMembership(ctx, m); err != nil {
			return err
		}
		if err := tx.SaveTeam(ctx, t); err != nil {
			return err
		}
		team = *t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyDecision(ctx, &team, memberID, true)
	return &team, nil
}

func (s *teamService) RejectMember(ctx context.Context, actorID int32, teamID string, memberID int32) error {
	var team domain.Team

	err := s.mutate(ctx, teamID, func(ctx context.Context, tx repository.TeamTx) error {
		m, err := tx.Membership(ctx, memberID)
		if err != nil {
			return err
		}
		if err := domain.Reject(tx.Team(), m, actorID); err != nil {
			return err
		}
		if err := tx.SaveMembership(ctx, m); err != nil {
			return err
		}
		team = *tx.Team()
		return nil
	})
	if err != nil {
		return err
	}

	s.notifyDecision(ctx, &team, memberID, false)
	return nil
}

func (s *teamService) LeaveTeam(ctx context.Context, actorID int32, teamID string) (*domain.Team, error) {
	var team domain.Team

	err := s.mutate(ctx, teamID, func(ctx context.Context, tx repository.TeamTx) error {
		m, err := tx.Membership(ctx, actorID)
		if err != nil {
			return err
		}
		t := tx.Team()
		if err := domain.Leave(t, m); err != nil {
			return err
		}
		if err := tx.DeleteMembership(ctx, actorID); err != nil {
			return err
		}
		if err := tx.SaveTeam(ctx, t); err != nil {
			return err
		}
		team = *t
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Member left team", "teamID", teamID, "userID", actorID, "members", team.CurrentMembers)
	return &team, nil
}

func (s *teamService) DissolveTeam(ctx context.Context, actorID int32, teamID string) (*domain.Team, error) {
	var team domain.Team

	err := s.mutate(ctx, teamID, func(ctx context.Context, tx repository.TeamTx) error {
		t := tx.Team()
		if err := domain.Dissolve(t, actorID); err != nil {
			return err
		}
		if err := tx.SaveTeam(ctx, t); err != nil {
			return err
		}
		team = *t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyDissolved(ctx, &team)
	return &team, nil
}

// mutate runs one lifecycle transaction, retrying once when a concurrent
// operation wins the race. Unbounded spinning is deliberately avoided; the
// second loss surfaces as a conflict for the caller to retry.
func (s *teamService) mutate(ctx context.Context, teamID string, fn func(ctx context.Context, tx repository.TeamTx) error) error {
	err := s.teamRepo.Mutate(ctx, teamID, fn)
	if errors.Is(err, domain.ErrConcurrentUpdate) {
		logger.Warn("Team mutation lost a race, retrying once", "teamID", teamID)
		err = s.teamRepo.Mutate(ctx, teamID, fn)
		if errors.Is(err, domain.ErrConcurrentUpdate) {
			return domain.Conflictf("team was modified concurrently, please retry")
		}
	}
	return err
}

func (s *teamService) GetTeam(ctx context.Context, viewerID int32, teamID string) (*TeamDetail, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	// Present the time-derived status without waiting for the sweep.
	if status, changed := domain.DeriveScheduleStatus(team, s.now()); changed {
		team.Status = status
	}

	detail := &TeamDetail{Team: *team}

	if loc, err := s.locationRepo.GetByID(ctx, team.LocationID); err == nil {
		detail.Location = loc
	}

	users, memberships, err := s.teamRepo.ListMembers(ctx, teamID, domain.MembershipStatusApproved)
	if err != nil {
		return nil, err
	}
	detail.Members = toMemberViews(users, memberships)

	if viewerID == team.LeaderID {
		pendingUsers, pending, err := s.teamRepo.ListMembers(ctx, teamID, domain.MembershipStatusPending)
		if err != nil {
			return nil, err
		}
		detail.Pending = toMemberViews(pendingUsers, pending)
	}

	if viewerID != 0 {
		viewer, err := s.teamRepo.GetMembership(ctx, teamID, viewerID)
		if err != nil {
			return nil, err
		}
		detail.Viewer = viewer
	}

	return detail, nil
}

func (s *teamService) ListTeams(ctx context.Context, filter repository.TeamFilter) ([]domain.Team, int32, error) {
	return s.teamRepo.List(ctx, filter)
}

func (s *teamService) ListMyTeams(ctx context.Context, userID int32) ([]domain.Team, []domain.Membership, error) {
	return s.teamRepo.ListByMember(ctx, userID)
}

func (s *teamService) SweepSchedule(ctx context.Context, now time.Time) (int, error) {
	teams, err := s.teamRepo.ListScheduleDue(ctx, now)
	if err != nil {
		return 0, err
	}

	transitioned := 0
	for i := range teams {
		t := &teams[i]
		status, changed := domain.DeriveScheduleStatus(t, now)
		if !changed {
			continue
		}
		if err := s.teamRepo.UpdateStatus(ctx, t.ID, status); err != nil {
			logger.Error("Failed to sweep team status", "teamID", t.ID, "status", status, "error", err)
			continue
		}
		transitioned++
	}
	return transitioned, nil
}

// Side effects below are fire-and-forget: the membership transition has
// already committed, so notification failures are logged, not propagated.

func (s *teamService) notifyJoinRequest(ctx context.Context, team *domain.Team, applicantID int32) {
	leader, err := s.userRepo.GetByID(ctx, team.LeaderID)
	if err != nil {
		logger.Error("Failed to load leader for join notification", "teamID", team.ID, "error", err)
		return
	}
	applicant, err := s.userRepo.GetByID(ctx, applicantID)
	if err != nil {
		logger.Error("Failed to load applicant for join notification", "teamID", team.ID, "error", err)
		return
	}

	note := &domain.Notification{
		UserID:  leader.ID,
		Title:   "New Join Request",
		Message: fmt.Sprintf("%s wants to join %s", applicant.Name, team.Title),
		Attributes: map[string]string{
			"type":    "JOIN_REQUEST",
			"team_id": team.ID,
			"user_id": fmt.Sprintf("%d", applicantID),
		},
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		logger.Error("Failed to create join notification", "teamID", team.ID, "error", err)
	}
	_ = s.emailSvc.SendJoinRequestNotification(ctx, leader.Email, leader.Name, applicant.Name, team.Title)
}

func (s *teamService) notifyDecision(ctx context.Context, team *domain.Team, memberID int32, approved bool) {
	member, err := s.userRepo.GetByID(ctx, memberID)
	if err != nil {
		logger.Error("Failed to load member for decision notification", "teamID", team.ID, "error", err)
		return
	}

	title := "Join Request Rejected"
	message := fmt.Sprintf("Your request to join %s was rejected", team.Title)
	noteType := "JOIN_REJECTED"
	if approved {
		title = "Join Request Approved"
		message = fmt.Sprintf("You are now a member of %s", team.Title)
		noteType = "JOIN_APPROVED"
	}

	note := &domain.Notification{
		UserID:  member.ID,
		Title:   title,
		Message: message,
		Attributes: map[string]string{
			"type":    noteType,
			"team_id": team.ID,
		},
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		logger.Error("Failed to create decision notification", "teamID", team.ID, "error", err)
	}

	if approved {
		_ = s.emailSvc.SendMembershipApprovedNotification(ctx, member.Email, member.Name, team.Title, team.StartTime)
	} else {
		_ = s.emailSvc.SendMembershipRejectedNotification(ctx, member.Email, member.Name, team.Title)
	}
}

func (s *teamService) notifyDissolved(ctx context.Context, team *domain.Team) {
	users, memberships, err := s.teamRepo.ListMembers(ctx, team.ID, domain.MembershipStatusApproved)
	if err != nil {
		logger.Error("Failed to list members for dissolve notification", "teamID", team.ID, "error", err)
		return
	}

	for i, m := range memberships {
		if m.Role == domain.MembershipRoleLeader {
			continue
		}
		note := &domain.Notification{
			UserID:  m.UserID,
			Title:   "Team Cancelled",
			Message: fmt.Sprintf("The team %s has been cancelled by its leader", team.Title),
			Attributes: map[string]string{
				"type":    "TEAM_CANCELLED",
				"team_id": team.ID,
			},
		}
		if err := s.noteRepo.Create(ctx, note); err != nil {
			logger.Error("Failed to create dissolve notification", "teamID", team.ID, "userID", m.UserID, "error", err)
		}
		if i < len(users) {
			_ = s.emailSvc.SendTeamCancelledNotification(ctx, users[i].Email, users[i].Name, team.Title)
		}
	}
}
