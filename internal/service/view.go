package service

import (
	"time"

	"gomate-backend/internal/domain"
)

// View models returned across the service boundary. Handlers serialize
// these directly; the storage shape of Team/Membership never leaks past
// this mapping.

type MemberView struct {
	UserID    int32                   `json:"user_id"`
	Name      string                  `json:"name"`
	AvatarURL string                  `json:"avatar_url"`
	Role      domain.MembershipRole   `json:"role"`
	Status    domain.MembershipStatus `json:"status"`
	Note      string                  `json:"note,omitempty"`
	JoinedAt  *time.Time              `json:"joined_at,omitempty"`
}

type TeamDetail struct {
	Team     domain.Team      `json:"team"`
	Location *domain.Location `json:"location,omitempty"`
	Members  []MemberView     `json:"members"`
	// Pending is populated only when the viewer is the team leader.
	Pending []MemberView `json:"pending,omitempty"`
	// Viewer is the viewer's own membership, if any.
	Viewer *domain.Membership `json:"viewer,omitempty"`
}

type CreateTeamInput struct {
	LocationID   int32     `json:"location_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Requirements string    `json:"requirements"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	MaxMembers   int32     `json:"max_members"`
}

func toMemberViews(users []domain.User, memberships []domain.Membership) []MemberView {
	views := make([]MemberView, 0, len(memberships))
	for i, m := range memberships {
		v := MemberView{
			UserID:   m.UserID,
			Role:     m.Role,
			Status:   m.Status,
			Note:     m.Note,
			JoinedAt: m.JoinedAt,
		}
		if i < len(users) {
			v.Name = users[i].Name
			v.AvatarURL = users[i].AvatarURL
		}
		views = append(views, v)
	}
	return views
}
