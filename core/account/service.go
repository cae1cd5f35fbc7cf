package account

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
)

type (
	// SessionStore persists the local session across invocations.
	SessionStore interface {
		SaveTokens(sess core.Session) error
		Tokens() (core.Session, error)
		SaveProfile(profile core.Profile) error
		Profile() (core.Profile, error)
		Clear() error
	}

	Service struct {
		gw       core.AccountGateway
		sessions SessionStore
		log      core.Logger
	}
)

func NewService(gw core.AccountGateway, sessions SessionStore, log core.Logger) *Service {
	return &Service{gw: gw, sessions: sessions, log: log}
}

// Login authenticates against the backend and stores the granted session and
// profile locally.
func (svc *Service) Login(ctx context.Context, form Login) (core.Profile, error) {
	if err := form.Validate(); err != nil {
		return core.Profile{}, err
	}

	sess, err := svc.gw.Login(ctx, form.Identifier(), form.Password)
	if err != nil {
		return core.Profile{}, errors.Wrap(err, "logging in")
	}
	if err = svc.sessions.SaveTokens(sess); err != nil {
		return core.Profile{}, err
	}
	return svc.cacheProfile(ctx)
}

// Register creates a new student account; the backend logs it straight in.
func (svc *Service) Register(ctx context.Context, form NewAccount) (core.Profile, error) {
	if err := form.Validate(); err != nil {
		return core.Profile{}, err
	}

	sess, err := svc.gw.Register(ctx, core.Registration{
		Username:    form.Username,
		Email:       form.Email,
		DisplayName: form.DisplayName,
		Password:    form.Password,
	})
	if err != nil {
		return core.Profile{}, errors.Wrap(err, "registering account")
	}
	if err = svc.sessions.SaveTokens(sess); err != nil {
		return core.Profile{}, err
	}
	return svc.cacheProfile(ctx)
}

// Logout clears the local session. The remote logout is best-effort: a dead
// backend must not lock the student in.
func (svc *Service) Logout(ctx context.Context) error {
	if err := svc.gw.Logout(ctx); err != nil {
		svc.log.Warn(fmt.Sprintf("remote logout failed: %v", err))
	}
	return svc.sessions.Clear()
}

// Refresh trades the stored refresh token for a fresh session.
func (svc *Service) Refresh(ctx context.Context) error {
	sess, err := svc.gw.RefreshSession(ctx)
	if err != nil {
		return errors.Wrap(err, "refreshing session")
	}
	return svc.sessions.SaveTokens(sess)
}

// CurrentProfile serves the cached profile, fetching it when the cache is
// empty.
func (svc *Service) CurrentProfile(ctx context.Context) (core.Profile, error) {
	if profile, err := svc.sessions.Profile(); err == nil {
		return profile, nil
	}
	return svc.cacheProfile(ctx)
}

func (svc *Service) UpdateProfile(ctx context.Context, form UpdateProfile) (core.Profile, error) {
	if err := form.Validate(); err != nil {
		return core.Profile{}, err
	}

	profile, err := svc.gw.UpdateProfile(ctx, core.ProfileUpdate{DisplayName: form.DisplayName})
	if err != nil {
		return core.Profile{}, errors.Wrap(err, "updating profile")
	}
	if err = svc.sessions.SaveProfile(profile); err != nil {
		return core.Profile{}, err
	}
	return profile, nil
}

// IsAuthenticated reports whether a session is stored locally.
func (svc *Service) IsAuthenticated() bool {
	sess, err := svc.sessions.Tokens()
	return err == nil && sess.AccessToken != ""
}

func (svc *Service) cacheProfile(ctx context.Context) (core.Profile, error) {
	profile, err := svc.gw.Profile(ctx)
	if err != nil {
		return core.Profile{}, errors.Wrap(err, "fetching profile")
	}
	if err = svc.sessions.SaveProfile(profile); err != nil {
		return core.Profile{}, err
	}
	return profile, nil
}
