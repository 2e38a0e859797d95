package session

import (
	"maps"

	"github.com/nihalmohammedm/n8n/internal/api"
	"github.com/nihalmohammedm/n8n/internal/permissions"
)

// Role name constants recognized by the derived-field predicates.
const (
	RoleOwner   = permissions.RoleOwner
	RoleMember  = permissions.RoleMember
	RoleDefault = permissions.RoleDefault
)

// User is a reconciled user record. FullName, IsDefaultUser, IsPendingUser,
// and IsOwner are derived: they are recomputed from the raw fields on every
// merge and never written directly.
type User struct {
	ID                     string
	Email                  string
	FirstName              string
	LastName               string
	FullName               string
	Role                   *api.Role
	Settings               map[string]any
	PersonalizationAnswers map[string]any
	MFAEnabled             *bool
	IsPending              bool
	FeatureFlags           map[string]any
	InviteAcceptURL        string
	SignInType             string

	IsDefaultUser bool
	IsPendingUser bool
	IsOwner       bool
}

// RoleName returns the user's role name, RoleDefault when no role is set.
func (u User) RoleName() string {
	if u.Role == nil {
		return RoleDefault
	}
	return u.Role.Name
}

// overlay applies a raw response on top of an existing record. Set fields
// replace their counterparts; unset fields persist. Maps are replaced
// wholesale, matching the field-wise (not deep) merge contract.
func overlay(existing User, resp api.UserResponse) User {
	merged := existing
	merged.ID = resp.ID
	if resp.Email != nil {
		merged.Email = *resp.Email
	}
	if resp.FirstName != nil {
		merged.FirstName = *resp.FirstName
	}
	if resp.LastName != nil {
		merged.LastName = *resp.LastName
	}
	if resp.GlobalRole != nil {
		role := *resp.GlobalRole
		merged.Role = &role
	}
	if resp.Settings != nil {
		merged.Settings = maps.Clone(resp.Settings)
	}
	if resp.PersonalizationAnswers != nil {
		merged.PersonalizationAnswers = maps.Clone(resp.PersonalizationAnswers)
	}
	if resp.MFAEnabled != nil {
		enabled := *resp.MFAEnabled
		merged.MFAEnabled = &enabled
	}
	if resp.IsPending != nil {
		merged.IsPending = *resp.IsPending
	}
	if resp.FeatureFlags != nil {
		merged.FeatureFlags = maps.Clone(resp.FeatureFlags)
	}
	if resp.InviteAcceptURL != nil {
		merged.InviteAcceptURL = *resp.InviteAcceptURL
	}
	if resp.SignInType != nil {
		merged.SignInType = *resp.SignInType
	}
	applyDerived(&merged)
	return merged
}

// applyDerived recomputes the derived fields from the raw ones. FullName is
// only set when a first name is present; a missing last name still leaves
// the trailing separator.
func applyDerived(u *User) {
	if u.FirstName != "" {
		u.FullName = u.FirstName + " " + u.LastName
	} else {
		u.FullName = ""
	}
	hasOwnerRole := u.Role != nil && u.Role.Name == RoleOwner
	u.IsPendingUser = u.IsPending
	u.IsOwner = hasOwnerRole
	u.IsDefaultUser = u.IsPending && hasOwnerRole
}
