package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nihalmohammedm/n8n/internal/api"
	"github.com/nihalmohammedm/n8n/internal/cloud"
	"github.com/nihalmohammedm/n8n/internal/config"
	"github.com/nihalmohammedm/n8n/internal/credcache"
	"github.com/nihalmohammedm/n8n/internal/mfa"
	"github.com/nihalmohammedm/n8n/internal/permissions"
	"github.com/nihalmohammedm/n8n/internal/session"
	"github.com/nihalmohammedm/n8n/internal/settings"
	"github.com/nihalmohammedm/n8n/internal/telemetry"

	log "github.com/sirupsen/logrus"
)

// main runs the CLI entrypoint and exits on unrecoverable command errors.
func main() {
	if errRun := run(context.Background(), os.Args[1:]); errRun != nil {
		log.WithError(errRun).Error("command failed")
		os.Exit(1)
	}
}

// cliShell satisfies the UI shell contract for a terminal frontend.
type cliShell struct{}

func (cliShell) OpenModal(key string) {
	log.Infof("action required: %s", key)
}

func (cliShell) ClearBannerStack() {}

// run parses flags, builds the session store, and dispatches the subcommand.
func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("session", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "config file path (or env CONFIG_PATH)")
	email := fs.String("email", "", "account email (login, invite, reinvite)")
	password := fs.String("password", "", "account password (login)")
	mfaCode := fs.String("mfa-code", "", "current TOTP code (login with MFA)")
	if errParse := fs.Parse(args); errParse != nil {
		return errParse
	}

	path := *cfgPath
	if strings.TrimSpace(path) == "" {
		path = os.Getenv(config.EnvConfigPath)
	}
	cfg, errLoad := config.Load(config.ResolveConfigPath(path))
	if errLoad != nil {
		return errLoad
	}

	cache, errCache := credcache.Open(cfg.CachePath, cfg.CacheKey)
	if errCache != nil {
		return errCache
	}

	client := api.NewClient(cfg, cache)
	recorder := telemetry.NewRecorder(cfg.Telemetry)
	store := session.NewStore(session.Deps{
		API:         client,
		Analytics:   recorder,
		Settings:    settings.NewStore(settings.DefaultPersonalizationEnabled, true),
		Permissions: permissions.Evaluator{},
		UI:          cliShell{},
		CloudPlan:   cloud.NewPlanContext(),
	})
	store.Initialize(ctx)

	switch fs.Arg(0) {
	case "", "whoami":
		return runWhoami(store)
	case "login":
		return runLogin(ctx, store, recorder, *email, *password, *mfaCode)
	case "logout":
		return store.Logout(ctx)
	case "users":
		return runUsers(ctx, store)
	case "invite":
		return runInvite(ctx, store, *email)
	case "reinvite":
		return store.ReinviteUser(ctx, *email)
	case "mfa":
		return runMFA(ctx, store, client, fs.Arg(1), *mfaCode)
	default:
		return fmt.Errorf("unknown command: %s", fs.Arg(0))
	}
}

// runWhoami prints the current user, if any.
func runWhoami(store *session.Store) error {
	user, ok := store.CurrentUser()
	if !ok {
		fmt.Println("not logged in")
		return nil
	}
	fmt.Printf("%s <%s> role=%s mfa=%t\n", user.FullName, user.Email, user.RoleName(), store.MFAEnabled())
	return nil
}

// runLogin signs in with credentials and prints the resulting identity.
func runLogin(ctx context.Context, store *session.Store, recorder *telemetry.Recorder, email, password, mfaCode string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return fmt.Errorf("login requires -email and -password")
	}
	errLogin := store.LoginWithCreds(ctx, api.LoginRequest{
		Email:    email,
		Password: password,
		MFACode:  mfaCode,
	})
	if errLogin != nil {
		return errLogin
	}
	recorder.Track("user.loggedIn", map[string]any{"userId": store.CurrentUserID()})
	return runWhoami(store)
}

// runUsers refreshes and prints the roster.
func runUsers(ctx context.Context, store *session.Store) error {
	if errFetch := store.FetchUsers(ctx); errFetch != nil {
		return errFetch
	}
	for _, user := range store.AllUsers() {
		state := "active"
		if user.IsPendingUser {
			state = "pending"
		}
		fmt.Printf("%s\t%s\t%s\t%s\n", user.ID, user.Email, user.RoleName(), state)
	}
	return nil
}

// runInvite sends a single invitation and prints the per-invite outcome.
func runInvite(ctx context.Context, store *session.Store, email string) error {
	if !store.CanInviteUsers() {
		return fmt.Errorf("current role %q may not invite users", store.CurrentRoleName())
	}
	results, errInvite := store.InviteUsers(ctx, []api.Invite{{Email: email, Role: session.RoleMember}})
	if errInvite != nil {
		return errInvite
	}
	for _, result := range results {
		if result.Error != "" {
			fmt.Printf("%s: %s\n", result.User.Email, result.Error)
			continue
		}
		fmt.Printf("%s: invited (email sent: %t)\n", result.User.Email, result.User.EmailSent)
	}
	return nil
}

// runMFA handles the enable/disable subcommands. Enabling fetches the
// provisioned secret and computes the current TOTP code locally.
func runMFA(ctx context.Context, store *session.Store, client *api.Client, action, code string) error {
	switch action {
	case "enable":
		setup, errSetup := client.FetchMFASetup(ctx)
		if errSetup != nil {
			return errSetup
		}
		current, errCode := mfa.CurrentCode(setup.Secret, time.Now())
		if errCode != nil {
			return errCode
		}
		if errEnable := store.EnableMFA(ctx, current); errEnable != nil {
			return errEnable
		}
		fmt.Println("mfa enabled; store these recovery codes:")
		for _, recovery := range setup.RecoveryCodes {
			fmt.Println("  " + recovery)
		}
		return nil
	case "disable":
		if strings.TrimSpace(code) == "" {
			return fmt.Errorf("mfa disable requires -mfa-code")
		}
		return store.DisableMFA(ctx, code)
	default:
		return fmt.Errorf("usage: session mfa enable|disable")
	}
}
