// Package session implements the client-side session store: the roster of
// known users, the current authenticated user, and the actions that drive
// both through the REST API.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/nihalmohammedm/n8n/internal/api"
	"github.com/nihalmohammedm/n8n/internal/permissions"
	"github.com/nihalmohammedm/n8n/internal/personalization"
)

// PersonalizationModalKey identifies the survey modal in the UI shell.
const PersonalizationModalKey = "personalizationSurvey"

// Sentinel errors surfaced by store actions.
var (
	ErrNoCurrentUser = errors.New("session: no current user")
	ErrUnknownUser   = errors.New("session: unknown user id")
)

// APIClient is the transport collaborator: one method per action. A nil
// user with a nil error from the login-shaped calls means "not logged in"
// rather than a failure.
type APIClient interface {
	LoginWithCookie(ctx context.Context) (*api.UserResponse, error)
	Login(ctx context.Context, req api.LoginRequest) (*api.UserResponse, error)
	Logout(ctx context.Context) error
	CreateOwner(ctx context.Context, req api.CreateOwnerRequest) (*api.UserResponse, error)
	AcceptInvitation(ctx context.Context, req api.AcceptInvitationRequest) (*api.UserResponse, error)
	FetchUsers(ctx context.Context) ([]api.UserResponse, error)
	UpdateCurrentUser(ctx context.Context, req api.UpdateUserRequest) (*api.UserResponse, error)
	UpdateUserSettings(ctx context.Context, settings map[string]any) (map[string]any, error)
	UpdateOtherUserSettings(ctx context.Context, userID string, settings map[string]any) (map[string]any, error)
	UpdateRole(ctx context.Context, userID string, role api.Role) error
	DeleteUser(ctx context.Context, userID, transferID string) error
	InviteUsers(ctx context.Context, invites []api.Invite) ([]api.InviteResult, error)
	ReinviteUser(ctx context.Context, email string) (*api.InviteResult, error)
	EnableMFA(ctx context.Context, code string) error
	DisableMFA(ctx context.Context, code string) error
	SubmitPersonalizationSurvey(ctx context.Context, answers map[string]any) error
	FetchCloudAccount(ctx context.Context) (*api.CloudAccount, error)
	SendPasswordResetEmail(ctx context.Context, email string) error
	ValidatePasswordResetToken(ctx context.Context, token string) (*api.UserResponse, error)
	ChangePassword(ctx context.Context, req api.ChangePasswordRequest) error
}

// Analytics activates or deactivates tracking from a feature-flag bundle.
type Analytics interface {
	Init(flags map[string]any)
	Reset()
}

// SettingsStore is the sibling settings collaborator.
type SettingsStore interface {
	IsPersonalizationSurveyEnabled() bool
	StopShowingSetupPage()
}

// PermissionEvaluator maps (role, capability) to access decisions.
type PermissionEvaluator interface {
	IsAuthorized(role, capability string) bool
	CredentialPermissions(role string, owned bool) permissions.CredentialScope
}

// UIShell exposes the UI side effects the store may trigger.
type UIShell interface {
	OpenModal(key string)
	ClearBannerStack()
}

// CloudPlanContext is the cloud plan sibling store.
type CloudPlanContext interface {
	Reset()
}

// Deps bundles the collaborators injected into a Store.
type Deps struct {
	API         APIClient
	Analytics   Analytics
	Settings    SettingsStore
	Permissions PermissionEvaluator
	UI          UIShell
	CloudPlan   CloudPlanContext
}

// Store is the user session store. The users map is the sole source of
// truth; currentUserID references into it and is only assigned after the
// record has been merged.
type Store struct {
	deps Deps

	mu            sync.Mutex
	users         map[string]User
	currentUserID string
	cloudInfo     *api.CloudAccount
	initialized   bool
}

// NewStore constructs a Store with its collaborators.
func NewStore(deps Deps) *Store {
	return &Store{
		deps:  deps,
		users: make(map[string]User),
	}
}

// AddUsers merges raw user responses into the roster. Merging is a
// field-wise overlay: set fields replace, unset fields persist, and the
// derived fields are recomputed from the merged record. Entries without an
// id are skipped.
func (s *Store) AddUsers(responses []api.UserResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, resp := range responses {
		s.mergeLocked(resp)
	}
}

// mergeLocked is the single write path into the users map. Callers hold mu.
func (s *Store) mergeLocked(resp api.UserResponse) User {
	if resp.ID == "" {
		return User{}
	}
	merged := overlay(s.users[resp.ID], resp)
	s.users[resp.ID] = merged
	return merged
}

// DeleteUserByID removes one record from the roster; absent ids are a
// no-op. A deleted current user leaves currentUserID dangling; getters
// treat the missing record as "no current user".
func (s *Store) DeleteUserByID(id string) {
	s.mu.Lock()
	delete(s.users, id)
	s.mu.Unlock()
}

// setCurrentUser merges the response and points currentUserID at it, in
// that order, then activates analytics with the user's feature flags.
func (s *Store) setCurrentUser(resp api.UserResponse) User {
	s.mu.Lock()
	merged := s.mergeLocked(resp)
	s.currentUserID = merged.ID
	s.mu.Unlock()
	if s.deps.Analytics != nil {
		s.deps.Analytics.Init(merged.FeatureFlags)
	}
	return merged
}

// CurrentUser returns a copy of the current user record. ok is false when
// nobody is signed in or the record was deleted out from under the pointer.
func (s *Store) CurrentUser() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentUserLocked()
}

func (s *Store) currentUserLocked() (User, bool) {
	if s.currentUserID == "" {
		return User{}, false
	}
	user, ok := s.users[s.currentUserID]
	return user, ok
}

// CurrentUserID returns the current user id, empty when signed out.
func (s *Store) CurrentUserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentUserID
}

// UserByID returns a copy of one roster record.
func (s *Store) UserByID(id string) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	return user, ok
}

// AllUsers returns a copy of every roster record, in no particular order.
func (s *Store) AllUsers() []User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	return out
}

// CloudInfo returns the current user's cloud account blob, nil when not
// fetched.
func (s *Store) CloudInfo() *api.CloudAccount {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cloudInfo
}

// UserActivated reports whether the current user finished activation.
func (s *Store) UserActivated() bool {
	user, ok := s.CurrentUser()
	if !ok || user.Settings == nil {
		return false
	}
	activated, _ := user.Settings["userActivated"].(bool)
	return activated
}

// IsInstanceOwner reports whether the current user owns the instance.
func (s *Store) IsInstanceOwner() bool {
	user, ok := s.CurrentUser()
	return ok && user.IsOwner
}

// MFAEnabled reports the current user's MFA flag, false when absent.
func (s *Store) MFAEnabled() bool {
	user, ok := s.CurrentUser()
	if !ok || user.MFAEnabled == nil {
		return false
	}
	return *user.MFAEnabled
}

// CurrentRoleName returns the current user's role name, RoleDefault when
// nobody is signed in.
func (s *Store) CurrentRoleName() string {
	user, ok := s.CurrentUser()
	if !ok {
		return RoleDefault
	}
	return user.RoleName()
}

// CanInviteUsers reports whether the current user may invite users.
func (s *Store) CanInviteUsers() bool {
	return s.authorized(permissions.CapabilityInviteUsers)
}

// CanDeleteUsers reports whether the current user may delete users.
func (s *Store) CanDeleteUsers() bool {
	return s.authorized(permissions.CapabilityDeleteUsers)
}

// CanChangeRole reports whether the current user may change roles.
func (s *Store) CanChangeRole() bool {
	return s.authorized(permissions.CapabilityChangeRole)
}

// CanCreateCredentials reports whether the current user may create
// credentials.
func (s *Store) CanCreateCredentials() bool {
	return s.authorized(permissions.CapabilityCreateCredentials)
}

func (s *Store) authorized(capability string) bool {
	if s.deps.Permissions == nil {
		return false
	}
	return s.deps.Permissions.IsAuthorized(s.CurrentRoleName(), capability)
}

// CredentialPermissions evaluates credential access for the current user.
func (s *Store) CredentialPermissions(ownerID string) permissions.CredentialScope {
	if s.deps.Permissions == nil {
		return permissions.CredentialScope{}
	}
	owned := ownerID != "" && ownerID == s.CurrentUserID()
	return s.deps.Permissions.CredentialPermissions(s.CurrentRoleName(), owned)
}

// PersonalizedNodeTypes derives the node types to surface first for the
// current user, empty when nobody is signed in or no answers exist.
func (s *Store) PersonalizedNodeTypes() []string {
	user, ok := s.CurrentUser()
	if !ok {
		return []string{}
	}
	return personalization.NodeTypes(user.PersonalizationAnswers)
}
