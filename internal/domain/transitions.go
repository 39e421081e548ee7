package domain

import "time"

// Pure membership state machine. Functions here take working copies loaded
// by the lifecycle service, check the transition guards, and mutate the
// copies; persisting the result (and doing so atomically) is the caller's
// job. No function here performs I/O or looks at the clock on its own.

// ValidateNewTeam checks the creation invariants: a sane time window and a
// capacity within [MinTeamMembers, MaxTeamMembers].
func ValidateNewTeam(t *Team, now time.Time) error {
	if t.Title == "" {
		return Validationf("title is required")
	}
	if t.LocationID == 0 {
		return Validationf("location is required")
	}
	if !t.StartTime.Before(t.EndTime) {
		return Validationf("start time must be before end time")
	}
	if t.StartTime.Before(now) {
		return Validationf("start time must not be in the past")
	}
	if t.MaxMembers < MinTeamMembers || t.MaxMembers > MaxTeamMembers {
		return Validationf("max members must be between %d and %d", MinTeamMembers, MaxTeamMembers)
	}
	return nil
}

// NewLeaderMembership is the membership row created atomically with the
// team. The leader counts toward capacity from the start.
func NewLeaderMembership(teamID string, leaderID int32, now time.Time) Membership {
	return Membership{
		TeamID:    teamID,
		UserID:    leaderID,
		Role:      MembershipRoleLeader,
		Status:    MembershipStatusApproved,
		AppliedOn: now,
		JoinedAt:  &now,
	}
}

// Join produces the pending membership for userID, reusing the existing row
// after a rejection. existing is nil when the user has never applied.
func Join(t *Team, existing *Membership, userID int32, note string, now time.Time) (Membership, error) {
	if t.Status == TeamStatusCancelled {
		return Membership{}, Conflictf("team has been cancelled")
	}
	if t.Status != TeamStatusRecruiting {
		return Membership{}, Conflictf("team is not recruiting")
	}
	if existing != nil {
		switch existing.Status {
		case MembershipStatusApproved:
			return Membership{}, Conflictf("already a member")
		case MembershipStatusPending:
			return Membership{}, Conflictf("already pending")
		}
	}
	// Advisory only; the authoritative capacity check happens at approval.
	if t.CurrentMembers >= t.MaxMembers {
		return Membership{}, Conflictf("team is full")
	}

	m := Membership{
		TeamID:    t.ID,
		UserID:    userID,
		Role:      MembershipRoleMember,
		Status:    MembershipStatusPending,
		Note:      note,
		AppliedOn: now,
	}
	return m, nil
}

// Approve moves a pending membership to approved and bumps the member
// count, flipping the team to FULL at capacity. Capacity is re-validated
// here because two concurrent approvals may both have passed the join-time
// check.
func Approve(t *Team, m *Membership, actorID int32, now time.Time) error {
	if actorID != t.LeaderID {
		return Authorizationf("only the team leader can approve members")
	}
	if t.Status == TeamStatusCancelled {
		return Conflictf("team has been cancelled")
	}
	if m == nil {
		return NotFoundf("no pending membership found")
	}
	if m.Status != MembershipStatusPending {
		return Conflictf("membership is not pending")
	}
	if t.CurrentMembers >= t.MaxMembers {
		return Conflictf("team is full")
	}

	m.Status = MembershipStatusApproved
	m.JoinedAt = &now
	t.CurrentMembers++
	if t.CurrentMembers == t.MaxMembers {
		t.Status = TeamStatusFull
	}
	return nil
}

// Reject marks a pending membership rejected. The row stays so that a
// re-application updates it in place.
func Reject(t *Team, m *Membership, actorID int32) error {
	if actorID != t.LeaderID {
		return Authorizationf("only the team leader can reject members")
	}
	if t.Status == TeamStatusCancelled {
		return Conflictf("team has been cancelled")
	}
	if m == nil {
		return NotFoundf("no pending membership found")
	}
	if m.Status != MembershipStatusPending {
		return Conflictf("membership is not pending")
	}

	m.Status = MembershipStatusRejected
	m.JoinedAt = nil
	return nil
}

// Leave removes an approved member and decrements the count, reopening
// recruitment if the team was full. The leader row is never removed this
// way; dissolving the team is the only exit for a leader.
func Leave(t *Team, m *Membership) error {
	if t.Status == TeamStatusCancelled {
		return Conflictf("team has been cancelled")
	}
	if m == nil || m.Status != MembershipStatusApproved {
		return Conflictf("not a member of this team")
	}
	if m.Role == MembershipRoleLeader {
		return Conflictf("the leader cannot leave; dissolve the team instead")
	}

	t.CurrentMembers--
	if t.CurrentMembers < 1 {
		t.CurrentMembers = 1
	}
	if t.Status == TeamStatusFull && t.CurrentMembers < t.MaxMembers {
		t.Status = TeamStatusRecruiting
	}
	return nil
}

// Dissolve cancels the team. CANCELLED is terminal: no membership
// transition is legal afterwards.
func Dissolve(t *Team, actorID int32) error {
	if actorID != t.LeaderID {
		return Authorizationf("only the team leader can dissolve the team")
	}
	if t.Status == TeamStatusCancelled {
		return Conflictf("team has already been cancelled")
	}
	t.Status = TeamStatusCancelled
	return nil
}

// DeriveScheduleStatus returns the time-derived status for a team whose
// hike window has started or ended. Capacity statuses are left alone until
// start time; CANCELLED never changes.
func DeriveScheduleStatus(t *Team, now time.Time) (TeamStatus, bool) {
	if t.Status == TeamStatusCancelled || t.Status == TeamStatusCompleted {
		return t.Status, false
	}
	if !now.Before(t.EndTime) {
		return TeamStatusCompleted, t.Status != TeamStatusCompleted
	}
	if !now.Before(t.StartTime) {
		return TeamStatusOngoing, t.Status != TeamStatusOngoing
	}
	return t.Status, false
}
