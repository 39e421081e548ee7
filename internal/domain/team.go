package domain

import "time"

type TeamStatus string

const (
	TeamStatusRecruiting TeamStatus = "RECRUITING"
	TeamStatusFull       TeamStatus = "FULL"
	TeamStatusOngoing    TeamStatus = "ONGOING"
	TeamStatusCompleted  TeamStatus = "COMPLETED"
	TeamStatusCancelled  TeamStatus = "CANCELLED"
)

// Team capacity bounds, leader included.
const (
	MinTeamMembers int32 = 2
	MaxTeamMembers int32 = 50
)

// Team is a scheduled group hike. CurrentMembers is the authoritative
// denormalized count of approved members (leader included); it is written
// only by the team lifecycle service.
type Team struct {
	ID             string     `json:"id"`
	LocationID     int32      `json:"location_id"`
	LeaderID       int32      `json:"leader_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Requirements   string     `json:"requirements"`
	StartTime      time.Time  `json:"start_time"`
	EndTime        time.Time  `json:"end_time"`
	MaxMembers     int32      `json:"max_members"`
	CurrentMembers int32      `json:"current_members"`
	Status         TeamStatus `json:"status"`
	CreatedOn      string     `json:"created_on"`
}

type MembershipRole string

const (
	MembershipRoleLeader MembershipRole = "LEADER"
	MembershipRoleMember MembershipRole = "MEMBER"
)

type MembershipStatus string

const (
	MembershipStatusPending  MembershipStatus = "PENDING"
	MembershipStatusApproved MembershipStatus = "APPROVED"
	MembershipStatusRejected MembershipStatus = "REJECTED"
)

// Membership is a user's relationship to a team. At most one row exists
// per (team, user); re-application after a rejection updates the row
// instead of inserting a new one.
type Membership struct {
	TeamID    string           `json:"team_id"`
	UserID    int32            `json:"user_id"`
	Role      MembershipRole   `json:"role"`
	Status    MembershipStatus `json:"status"`
	Note      string           `json:"note"`
	AppliedOn time.Time        `json:"applied_on"`
	JoinedAt  *time.Time       `json:"joined_at,omitempty"`
}
