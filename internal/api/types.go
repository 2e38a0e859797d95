package api

import "fmt"

// Role describes a user's global role.
type Role struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Scope string `json:"scope,omitempty"`
}

// UserResponse is the raw user record returned by the REST API. Optional
// fields are pointers so partial responses can be told apart from cleared
// values when they are merged into the session roster.
type UserResponse struct {
	ID                     string         `json:"id"`
	Email                  *string        `json:"email,omitempty"`
	FirstName              *string        `json:"firstName,omitempty"`
	LastName               *string        `json:"lastName,omitempty"`
	GlobalRole             *Role          `json:"globalRole,omitempty"`
	Settings               map[string]any `json:"settings,omitempty"`
	PersonalizationAnswers map[string]any `json:"personalizationAnswers,omitempty"`
	MFAEnabled             *bool          `json:"mfaEnabled,omitempty"`
	IsPending              *bool          `json:"isPending,omitempty"`
	FeatureFlags           map[string]any `json:"featureFlags,omitempty"`
	InviteAcceptURL        *string        `json:"inviteAcceptUrl,omitempty"`
	SignInType             *string        `json:"signInType,omitempty"`
}

// LoginRequest carries credentials for an interactive login.
type LoginRequest struct {
	Email           string `json:"emailOrLdapLoginId"`
	Password        string `json:"password"`
	MFACode         string `json:"mfaCode,omitempty"`
	MFARecoveryCode string `json:"mfaRecoveryCode,omitempty"`
}

// CreateOwnerRequest carries the first-run owner setup form.
type CreateOwnerRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

// AcceptInvitationRequest activates an invited account.
type AcceptInvitationRequest struct {
	InviterID string `json:"inviterId"`
	InviteeID string `json:"inviteeId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

// UpdateUserRequest carries profile fields for the current user.
type UpdateUserRequest struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
}

// Invite is a single entry in an invitation batch.
type Invite struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// InvitedUser is the user stub returned for one invitation.
type InvitedUser struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	InviteAcceptURL string `json:"inviteAcceptUrl,omitempty"`
	EmailSent       bool   `json:"emailSent"`
	IsPending       *bool  `json:"isPending,omitempty"`
	Role            *Role  `json:"globalRole,omitempty"`
}

// InviteResult is the per-invite outcome. Error is set for partial failures
// that still come back with a success status.
type InviteResult struct {
	User  InvitedUser `json:"user"`
	Error string      `json:"error,omitempty"`
}

// MFASetup is the server-provisioned TOTP enrolment material.
type MFASetup struct {
	Secret        string   `json:"secret"`
	QRCode        string   `json:"qrCode,omitempty"`
	RecoveryCodes []string `json:"recoveryCodes,omitempty"`
}

// ChangePasswordRequest completes a password reset.
type ChangePasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// CloudAccount is the external billing/account blob for the current user.
type CloudAccount struct {
	UserID          string `json:"userId"`
	ConfirmedEmail  bool   `json:"confirmed"`
	LicensePlanName string `json:"licensePlanName,omitempty"`
	TrialExpiresAt  string `json:"trialExpirationDate,omitempty"`
}

// Error is the REST error envelope returned on non-2xx responses.
type Error struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("api: %s (code %d)", e.Message, e.Code)
	}
	return "api: " + e.Message
}

// envelope is the {"data": ...} wrapper the REST API puts around payloads.
type envelope[T any] struct {
	Data T `json:"data"`
}
