package session

import (
	"context"
	"errors"

	"github.com/nihalmohammedm/n8n/internal/api"
	log "github.com/sirupsen/logrus"
)

// Initialize attempts the startup cookie login exactly once. All failures
// are swallowed; callers rely on Initialize never returning an error and
// never retrying.
func (s *Store) Initialize(ctx context.Context) {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return
	}
	s.initialized = true
	s.mu.Unlock()

	if err := s.LoginWithCookie(ctx); err != nil {
		log.WithError(err).Debug("session: startup cookie login failed")
	}
}

// LoginWithCookie resumes a cached session. A nil response from the API is
// the "not logged in" signal and leaves the store untouched.
func (s *Store) LoginWithCookie(ctx context.Context) error {
	resp, err := s.deps.API.LoginWithCookie(ctx)
	if err != nil {
		return err
	}
	if resp == nil {
		return nil
	}
	s.setCurrentUser(*resp)
	return nil
}

// LoginWithCreds signs in with credentials and makes the returned user
// current.
func (s *Store) LoginWithCreds(ctx context.Context, req api.LoginRequest) error {
	resp, err := s.deps.API.Login(ctx, req)
	if err != nil {
		return err
	}
	if resp == nil {
		return nil
	}
	user := s.setCurrentUser(*resp)
	s.maybePromptSurvey(user)
	return nil
}

// CreateOwner claims the instance with the first owner account and
// dismisses the first-run setup banner.
func (s *Store) CreateOwner(ctx context.Context, req api.CreateOwnerRequest) error {
	resp, err := s.deps.API.CreateOwner(ctx, req)
	if err != nil {
		return err
	}
	if resp == nil {
		return nil
	}
	s.setCurrentUser(*resp)
	if s.deps.Settings != nil {
		s.deps.Settings.StopShowingSetupPage()
	}
	return nil
}

// AcceptInvitation activates an invited account and signs it in.
func (s *Store) AcceptInvitation(ctx context.Context, req api.AcceptInvitationRequest) error {
	resp, err := s.deps.API.AcceptInvitation(ctx, req)
	if err != nil {
		return err
	}
	if resp == nil {
		return nil
	}
	user := s.setCurrentUser(*resp)
	s.maybePromptSurvey(user)
	return nil
}

// maybePromptSurvey opens the personalization survey modal after an
// interactive sign-in when the survey is enabled and unanswered.
func (s *Store) maybePromptSurvey(user User) {
	if s.deps.Settings == nil || s.deps.UI == nil {
		return
	}
	if !s.deps.Settings.IsPersonalizationSurveyEnabled() {
		return
	}
	if len(user.PersonalizationAnswers) > 0 {
		return
	}
	s.deps.UI.OpenModal(PersonalizationModalKey)
}

// Logout invalidates the remote session, then tears down local state. A
// failed remote call leaves the session untouched and surfaces the error.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.deps.API.Logout(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.currentUserID = ""
	s.cloudInfo = nil
	s.mu.Unlock()

	if s.deps.CloudPlan != nil {
		s.deps.CloudPlan.Reset()
	}
	if s.deps.Analytics != nil {
		s.deps.Analytics.Reset()
	}
	if s.deps.UI != nil {
		s.deps.UI.ClearBannerStack()
	}
	return nil
}

// FetchUsers refreshes the roster from the API.
func (s *Store) FetchUsers(ctx context.Context) error {
	responses, err := s.deps.API.FetchUsers(ctx)
	if err != nil {
		return err
	}
	s.AddUsers(responses)
	return nil
}

// UpdateCurrentUser patches the current user's profile fields and merges
// the response.
func (s *Store) UpdateCurrentUser(ctx context.Context, req api.UpdateUserRequest) error {
	if s.CurrentUserID() == "" {
		return ErrNoCurrentUser
	}
	resp, err := s.deps.API.UpdateCurrentUser(ctx, req)
	if err != nil {
		return err
	}
	if resp != nil {
		s.AddUsers([]api.UserResponse{*resp})
	}
	return nil
}

// UpdateUserSettings patches the current user's settings and overlays the
// returned settings object through the merge path.
func (s *Store) UpdateUserSettings(ctx context.Context, settings map[string]any) error {
	currentID := s.CurrentUserID()
	if currentID == "" {
		return ErrNoCurrentUser
	}
	updated, err := s.deps.API.UpdateUserSettings(ctx, settings)
	if err != nil {
		return err
	}
	s.AddUsers([]api.UserResponse{{ID: currentID, Settings: updated}})
	return nil
}

// UpdateOtherUserSettings patches another user's settings. The target must
// already be in the roster.
func (s *Store) UpdateOtherUserSettings(ctx context.Context, userID string, settings map[string]any) error {
	if _, ok := s.UserByID(userID); !ok {
		return ErrUnknownUser
	}
	updated, err := s.deps.API.UpdateOtherUserSettings(ctx, userID, settings)
	if err != nil {
		return err
	}
	s.AddUsers([]api.UserResponse{{ID: userID, Settings: updated}})
	return nil
}

// UpdateRole changes a user's global role and merges the new role.
func (s *Store) UpdateRole(ctx context.Context, userID string, role api.Role) error {
	if err := s.deps.API.UpdateRole(ctx, userID, role); err != nil {
		return err
	}
	s.AddUsers([]api.UserResponse{{ID: userID, GlobalRole: &role}})
	return nil
}

// DeleteUser removes a user remotely, then drops it from the roster.
func (s *Store) DeleteUser(ctx context.Context, userID, transferID string) error {
	if err := s.deps.API.DeleteUser(ctx, userID, transferID); err != nil {
		return err
	}
	s.DeleteUserByID(userID)
	return nil
}

// InviteUsers sends a batch of invitations, merges the returned stubs as
// pending accounts, and hands the raw per-invite results back for display.
func (s *Store) InviteUsers(ctx context.Context, invites []api.Invite) ([]api.InviteResult, error) {
	results, err := s.deps.API.InviteUsers(ctx, invites)
	if err != nil {
		return nil, err
	}
	responses := make([]api.UserResponse, 0, len(results))
	for _, result := range results {
		stub := result.User
		if stub.ID == "" {
			continue
		}
		pending := true
		if stub.IsPending != nil {
			pending = *stub.IsPending
		}
		email := stub.Email
		resp := api.UserResponse{
			ID:         stub.ID,
			Email:      &email,
			GlobalRole: stub.Role,
			IsPending:  &pending,
		}
		if stub.InviteAcceptURL != "" {
			url := stub.InviteAcceptURL
			resp.InviteAcceptURL = &url
		}
		responses = append(responses, resp)
	}
	s.AddUsers(responses)
	return results, nil
}

// ReinviteUser re-sends one invitation. An unsent email on a successful
// response becomes a client-side error carrying the server-reported reason.
func (s *Store) ReinviteUser(ctx context.Context, email string) error {
	result, err := s.deps.API.ReinviteUser(ctx, email)
	if err != nil {
		return err
	}
	if result != nil && !result.User.EmailSent {
		message := result.Error
		if message == "" {
			message = "invitation email was not sent"
		}
		return errors.New(message)
	}
	return nil
}

// EnableMFA turns on MFA for the current user and records the flag through
// the merge path. Without a current user it is a no-op.
func (s *Store) EnableMFA(ctx context.Context, code string) error {
	return s.setMFA(ctx, code, true)
}

// DisableMFA turns off MFA for the current user. Without a current user it
// is a no-op.
func (s *Store) DisableMFA(ctx context.Context, code string) error {
	return s.setMFA(ctx, code, false)
}

func (s *Store) setMFA(ctx context.Context, code string, enabled bool) error {
	currentID := s.CurrentUserID()
	if currentID == "" {
		return nil
	}
	var err error
	if enabled {
		err = s.deps.API.EnableMFA(ctx, code)
	} else {
		err = s.deps.API.DisableMFA(ctx, code)
	}
	if err != nil {
		return err
	}
	s.AddUsers([]api.UserResponse{{ID: currentID, MFAEnabled: &enabled}})
	return nil
}

// SubmitPersonalizationSurvey stores the survey answers remotely and on the
// current user record.
func (s *Store) SubmitPersonalizationSurvey(ctx context.Context, answers map[string]any) error {
	currentID := s.CurrentUserID()
	if currentID == "" {
		return ErrNoCurrentUser
	}
	if err := s.deps.API.SubmitPersonalizationSurvey(ctx, answers); err != nil {
		return err
	}
	s.AddUsers([]api.UserResponse{{ID: currentID, PersonalizationAnswers: answers}})
	return nil
}

// FetchUserCloudAccount loads the cloud account blob for the current user.
// Any failure is re-wrapped into a plain error preserving only the message.
func (s *Store) FetchUserCloudAccount(ctx context.Context) error {
	account, err := s.deps.API.FetchCloudAccount(ctx)
	if err != nil {
		return errors.New(err.Error())
	}
	s.mu.Lock()
	s.cloudInfo = account
	s.mu.Unlock()
	return nil
}

// SendPasswordResetEmail starts the password reset flow.
func (s *Store) SendPasswordResetEmail(ctx context.Context, email string) error {
	return s.deps.API.SendPasswordResetEmail(ctx, email)
}

// ValidatePasswordResetToken checks a reset token and returns its user
// without touching the roster.
func (s *Store) ValidatePasswordResetToken(ctx context.Context, token string) (*api.UserResponse, error) {
	return s.deps.API.ValidatePasswordResetToken(ctx, token)
}

// ChangePassword completes the password reset flow.
func (s *Store) ChangePassword(ctx context.Context, req api.ChangePasswordRequest) error {
	return s.deps.API.ChangePassword(ctx, req)
}
