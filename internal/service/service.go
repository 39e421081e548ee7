package service

import (
	"context"
	"time"

	"gomate-backend/internal/domain"
	"gomate-backend/internal/repository"
)

type AuthService interface {
	Signup(ctx context.Context, name, email, password string) (*domain.User, string, string, error) // user, access, refresh
	Login(ctx context.Context, email, password string) (*domain.User, string, string, error)
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
}

type UserService interface {
	GetProfile(ctx context.Context, userID int32) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int32, name, bio string) (*domain.User, error)
	// GetAvatarUploadURL returns a presigned upload URL and the storage key
	// the client must confirm once the upload finishes.
	GetAvatarUploadURL(ctx context.Context, userID int32, filename, contentType string) (uploadURL, key string, err error)
	ConfirmAvatar(ctx context.Context, userID int32, key string) (*domain.User, error)
}

type LocationService interface {
	ListLocations(ctx context.Context) ([]domain.Location, error)
	GetLocation(ctx context.Context, id int32) (*domain.Location, error)
	SearchLocations(ctx context.Context, region string, difficulty domain.Difficulty) ([]domain.Location, error)
}

// TeamService is the team lifecycle service: the sole writer of team
// status, member counts, and membership state.
type TeamService interface {
	CreateTeam(ctx context.Context, actorID int32, input CreateTeamInput) (*domain.Team, error)
	JoinTeam(ctx context.Context, actorID int32, teamID, note string) (*domain.Membership, error)
	ApproveMember(ctx context.Context, actorID int32, teamID string, memberID int32) (*domain.Team, error)
	RejectMember(ctx context.Context, actorID int32, teamID string, memberID int32) error
	LeaveTeam(ctx context.Context, actorID int32, teamID string) (*domain.Team, error)
	DissolveTeam(ctx context.Context, actorID int32, teamID string) (*domain.Team, error)

	GetTeam(ctx context.Context, viewerID int32, teamID string) (*TeamDetail, error)
	ListTeams(ctx context.Context, filter repository.TeamFilter) ([]domain.Team, int32, error)
	ListMyTeams(ctx context.Context, userID int32) ([]domain.Team, []domain.Membership, error)

	// SweepSchedule advances recruiting/full teams to ONGOING and ongoing
	// teams to COMPLETED based on their hike window. Called by the cron
	// runner; returns the number of teams transitioned.
	SweepSchedule(ctx context.Context, now time.Time) (int, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
}

type EmailService interface {
	SendJoinRequestNotification(ctx context.Context, leaderEmail, leaderName, applicantName, teamTitle string) error
	SendMembershipApprovedNotification(ctx context.Context, memberEmail, memberName, teamTitle string, startTime time.Time) error
	SendMembershipRejectedNotification(ctx context.Context, memberEmail, memberName, teamTitle string) error
	SendTeamCancelledNotification(ctx context.Context, memberEmail, memberName, teamTitle string) error
	SendHikeReminder(ctx context.Context, memberEmail, memberName, teamTitle string, startTime time.Time) error
}
