// Package api implements the REST client the session store drives. Each
// action is one method; errors bubble to the caller unmodified.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nihalmohammedm/n8n/internal/config"
	"github.com/nihalmohammedm/n8n/internal/credcache"
	log "github.com/sirupsen/logrus"
)

// authCookieName is the session cookie issued by the login endpoints.
const authCookieName = "n8n-auth"

// Client talks to the product REST API. The session cookie captured from a
// login response is replayed on every later call and mirrored into the
// credential cache when one is attached.
type Client struct {
	rest     *resty.Client
	cache    *credcache.Cache
	validate *validator.Validate

	mu     sync.Mutex
	cookie string
}

// NewClient constructs a Client. cache may be nil; cookie persistence is
// then disabled and every run starts logged out.
func NewClient(cfg config.Config, cache *credcache.Cache) *Client {
	rest := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.RequestTimeout).
		SetHeader("browser-id", uuid.NewString())
	return &Client{
		rest:     rest,
		cache:    cache,
		validate: validator.New(),
	}
}

// do performs one JSON round trip. out, when non-nil, receives the decoded
// success body; error responses decode the server error envelope.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	apiErr := &Error{}
	req := c.rest.R().
		SetContext(ctx).
		SetError(apiErr)
	if cookie := c.currentCookie(); cookie != "" {
		req.SetCookie(&http.Cookie{Name: authCookieName, Value: cookie})
	}
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	resp, errDo := req.Execute(method, path)
	if errDo != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, errDo)
	}
	if resp.IsError() {
		if strings.TrimSpace(apiErr.Message) == "" {
			apiErr.Message = resp.Status()
		}
		apiErr.Status = resp.StatusCode()
		return apiErr
	}

	c.captureCookie(resp.Cookies())
	return nil
}

// currentCookie returns the in-memory session cookie.
func (c *Client) currentCookie() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cookie
}

// setCookie replaces the in-memory session cookie.
func (c *Client) setCookie(value string) {
	c.mu.Lock()
	c.cookie = value
	c.mu.Unlock()
}

// captureCookie keeps the auth cookie from a response, if one was issued.
func (c *Client) captureCookie(cookies []*http.Cookie) {
	for _, cookie := range cookies {
		if cookie.Name == authCookieName && cookie.Value != "" {
			c.setCookie(cookie.Value)
			return
		}
	}
}

// persistSession mirrors the current cookie and user snapshot into the
// credential cache. Cache failures are logged and dropped; the login itself
// already succeeded.
func (c *Client) persistSession(user *UserResponse) {
	if c.cache == nil {
		return
	}
	cookie := c.currentCookie()
	if cookie == "" {
		return
	}
	snapshot, errMarshal := json.Marshal(user)
	if errMarshal != nil {
		log.WithError(errMarshal).Warn("api: marshal user snapshot")
		snapshot = nil
	}
	if errSave := c.cache.SaveSession(cookie, snapshot); errSave != nil {
		log.WithError(errSave).Warn("api: persist session cookie")
	}
}

// dropSession clears the in-memory cookie and the cached copy.
func (c *Client) dropSession() {
	c.setCookie("")
	if c.cache == nil {
		return
	}
	if errClear := c.cache.Clear(); errClear != nil {
		log.WithError(errClear).Warn("api: clear session cache")
	}
}

// sessionExpired reports whether the session JWT is already past its expiry.
// The token is not verified here; the server remains the authority.
func sessionExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, errParse := jwt.NewParser().ParseUnverified(token, claims); errParse != nil {
		return true
	}
	exp, errClaims := claims.GetExpirationTime()
	if errClaims != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}

// LoginWithCookie resumes the cached session. A nil user with nil error
// means "not logged in": no cached cookie, an expired one, or a 401.
func (c *Client) LoginWithCookie(ctx context.Context) (*UserResponse, error) {
	if c.cache == nil {
		return nil, nil
	}
	cookie, _, errLoad := c.cache.LoadSession()
	if errors.Is(errLoad, credcache.ErrNoSession) {
		return nil, nil
	}
	if errLoad != nil {
		return nil, errLoad
	}
	if sessionExpired(cookie, time.Now()) {
		c.dropSession()
		return nil, nil
	}
	c.setCookie(cookie)

	out := &envelope[UserResponse]{}
	if errDo := c.do(ctx, http.MethodGet, "/login", nil, out); errDo != nil {
		var apiErr *Error
		if errors.As(errDo, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			c.dropSession()
			return nil, nil
		}
		return nil, errDo
	}
	if out.Data.ID == "" {
		return nil, nil
	}
	c.persistSession(&out.Data)
	return &out.Data, nil
}

// Login signs in with credentials and captures the issued session cookie.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*UserResponse, error) {
	out := &envelope[UserResponse]{}
	if errDo := c.do(ctx, http.MethodPost, "/login", req, out); errDo != nil {
		return nil, errDo
	}
	if out.Data.ID == "" {
		return nil, nil
	}
	c.persistSession(&out.Data)
	return &out.Data, nil
}

// Logout invalidates the server session, then drops the local cookie.
func (c *Client) Logout(ctx context.Context) error {
	if errDo := c.do(ctx, http.MethodPost, "/logout", nil, nil); errDo != nil {
		return errDo
	}
	c.dropSession()
	return nil
}

// CreateOwner claims the instance with the first owner account.
func (c *Client) CreateOwner(ctx context.Context, req CreateOwnerRequest) (*UserResponse, error) {
	out := &envelope[UserResponse]{}
	if errDo := c.do(ctx, http.MethodPost, "/owner/setup", req, out); errDo != nil {
		return nil, errDo
	}
	if out.Data.ID == "" {
		return nil, nil
	}
	c.persistSession(&out.Data)
	return &out.Data, nil
}

// AcceptInvitation activates an invited account and signs it in.
func (c *Client) AcceptInvitation(ctx context.Context, req AcceptInvitationRequest) (*UserResponse, error) {
	path := fmt.Sprintf("/invitations/%s/accept", req.InviteeID)
	out := &envelope[UserResponse]{}
	if errDo := c.do(ctx, http.MethodPost, path, req, out); errDo != nil {
		return nil, errDo
	}
	if out.Data.ID == "" {
		return nil, nil
	}
	c.persistSession(&out.Data)
	return &out.Data, nil
}

// FetchUsers lists all users on the instance.
func (c *Client) FetchUsers(ctx context.Context) ([]UserResponse, error) {
	out := &envelope[[]UserResponse]{}
	if errDo := c.do(ctx, http.MethodGet, "/users", nil, out); errDo != nil {
		return nil, errDo
	}
	return out.Data, nil
}

// UpdateCurrentUser updates profile fields of the signed-in user.
func (c *Client) UpdateCurrentUser(ctx context.Context, req UpdateUserRequest) (*UserResponse, error) {
	out := &envelope[UserResponse]{}
	if errDo := c.do(ctx, http.MethodPatch, "/me", req, out); errDo != nil {
		return nil, errDo
	}
	return &out.Data, nil
}

// UpdateUserSettings patches the signed-in user's settings map.
func (c *Client) UpdateUserSettings(ctx context.Context, settings map[string]any) (map[string]any, error) {
	out := &envelope[map[string]any]{}
	if errDo := c.do(ctx, http.MethodPatch, "/me/settings", settings, out); errDo != nil {
		return nil, errDo
	}
	return out.Data, nil
}

// UpdateOtherUserSettings patches another user's settings map.
func (c *Client) UpdateOtherUserSettings(ctx context.Context, userID string, settings map[string]any) (map[string]any, error) {
	path := fmt.Sprintf("/users/%s/settings", userID)
	out := &envelope[map[string]any]{}
	if errDo := c.do(ctx, http.MethodPatch, path, settings, out); errDo != nil {
		return nil, errDo
	}
	return out.Data, nil
}

// UpdateRole changes a user's global role.
func (c *Client) UpdateRole(ctx context.Context, userID string, role Role) error {
	path := fmt.Sprintf("/users/%s/role", userID)
	return c.do(ctx, http.MethodPatch, path, map[string]string{"newRoleName": role.Name}, nil)
}

// DeleteUser removes a user, optionally transferring owned resources.
func (c *Client) DeleteUser(ctx context.Context, userID, transferID string) error {
	path := "/users/" + userID
	if strings.TrimSpace(transferID) != "" {
		path += "?transferId=" + transferID
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// InviteUsers sends a batch of invitations. Addresses are validated locally
// before any request goes out.
func (c *Client) InviteUsers(ctx context.Context, invites []Invite) ([]InviteResult, error) {
	for _, invite := range invites {
		if errEmail := c.validate.Var(invite.Email, "required,email"); errEmail != nil {
			return nil, fmt.Errorf("api: invalid invite email %q", invite.Email)
		}
	}
	out := &envelope[[]InviteResult]{}
	if errDo := c.do(ctx, http.MethodPost, "/invitations", invites, out); errDo != nil {
		return nil, errDo
	}
	return out.Data, nil
}

// ReinviteUser re-sends a single invitation email.
func (c *Client) ReinviteUser(ctx context.Context, email string) (*InviteResult, error) {
	if errEmail := c.validate.Var(email, "required,email"); errEmail != nil {
		return nil, fmt.Errorf("api: invalid invite email %q", email)
	}
	out := &envelope[InviteResult]{}
	body := map[string]string{"email": email}
	if errDo := c.do(ctx, http.MethodPost, "/invitations/reinvite", body, out); errDo != nil {
		return nil, errDo
	}
	return &out.Data, nil
}

// FetchMFASetup retrieves the TOTP enrolment material.
func (c *Client) FetchMFASetup(ctx context.Context) (*MFASetup, error) {
	out := &envelope[MFASetup]{}
	if errDo := c.do(ctx, http.MethodGet, "/mfa/qr", nil, out); errDo != nil {
		return nil, errDo
	}
	return &out.Data, nil
}

// EnableMFA turns on MFA for the signed-in user.
func (c *Client) EnableMFA(ctx context.Context, code string) error {
	return c.do(ctx, http.MethodPost, "/mfa/enable", map[string]string{"mfaCode": code}, nil)
}

// DisableMFA turns off MFA for the signed-in user.
func (c *Client) DisableMFA(ctx context.Context, code string) error {
	return c.do(ctx, http.MethodPost, "/mfa/disable", map[string]string{"mfaCode": code}, nil)
}

// SubmitPersonalizationSurvey stores the survey answers server-side.
func (c *Client) SubmitPersonalizationSurvey(ctx context.Context, answers map[string]any) error {
	return c.do(ctx, http.MethodPost, "/me/survey", answers, nil)
}

// FetchCloudAccount retrieves the cloud billing/account blob.
func (c *Client) FetchCloudAccount(ctx context.Context) (*CloudAccount, error) {
	out := &envelope[CloudAccount]{}
	if errDo := c.do(ctx, http.MethodGet, "/cloud/me", nil, out); errDo != nil {
		return nil, errDo
	}
	return &out.Data, nil
}

// SendPasswordResetEmail starts the password reset flow.
func (c *Client) SendPasswordResetEmail(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/forgot-password", map[string]string{"email": email}, nil)
}

// ValidatePasswordResetToken checks a reset token and returns its user.
func (c *Client) ValidatePasswordResetToken(ctx context.Context, token string) (*UserResponse, error) {
	out := &envelope[UserResponse]{}
	path := "/resolve-password-token?token=" + token
	if errDo := c.do(ctx, http.MethodGet, path, nil, out); errDo != nil {
		return nil, errDo
	}
	return &out.Data, nil
}

// ChangePassword completes the password reset flow.
func (c *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	return c.do(ctx, http.MethodPost, "/change-password", req, nil)
}
