// Package session tracks which identity, if any, is signed in for one
// origin and keeps it in the origin's persisted store across restarts.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"keyportal/internal/engine/credentials"
	"keyportal/internal/pkg/metrics"
	"keyportal/internal/platform/models"
	"keyportal/internal/platform/repositories"
)

type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	ErrBusy             = errors.New("sign-in already in progress")
	ErrAlreadySignedIn  = errors.New("already signed in")
	ErrNotAuthenticated = errors.New("not signed in")
	ErrInterrupted      = errors.New("sign-in interrupted by sign-out")
	ErrIdentityChanged  = errors.New("signed-in identity changed")
)

// IdentityRepository persists the current identity.
type IdentityRepository interface {
	Load() (*models.Identity, error)
	Save(identity *models.Identity) error
	Clear() error
}

// Profile is the fixed identity a social provider hands back.
type Profile struct {
	Email  string
	Name   string
	Avatar string
}

var socialProfiles = map[models.Provider]Profile{
	models.ProviderGoogle: {
		Email:  "user@gmail.com",
		Name:   "Google User",
		Avatar: "https://images.pexels.com/photos/415829/pexels-photo-415829.jpeg?auto=compress&cs=tinysrgb&w=150",
	},
	models.ProviderLine: {
		Email:  "user@line.me",
		Name:   "Line User",
		Avatar: "https://images.pexels.com/photos/1043474/pexels-photo-1043474.jpeg?auto=compress&cs=tinysrgb&w=150",
	},
}

type Options struct {
	// SignInDelay stands in for the identity provider round trip.
	SignInDelay time.Duration
	Clock       clockwork.Clock
	Logger      *zerolog.Logger
	Metrics     metrics.Recorder
}

type Store struct {
	repo    IdentityRepository
	issuer  credentials.Issuer
	clock   clockwork.Clock
	delay   time.Duration
	log     zerolog.Logger
	metrics metrics.Recorder

	mu       sync.Mutex
	state    State
	identity *models.Identity
	// epoch changes on every sign-out so a sign-in that was waiting
	// when it happened can tell its result is stale.
	epoch uint64
}

// New builds the store and restores the persisted identity before
// returning, so callers never observe the transient Authenticating state
// of start-up.
func New(repo IdentityRepository, issuer credentials.Issuer, opts Options) *Store {
	s := &Store{
		repo:    repo,
		issuer:  issuer,
		clock:   opts.Clock,
		delay:   opts.SignInDelay,
		log:     log.Logger,
		metrics: opts.Metrics,
		state:   Authenticating,
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if opts.Logger != nil {
		s.log = *opts.Logger
	}
	if s.metrics == nil {
		s.metrics = metrics.Nop{}
	}

	s.restore()
	return s
}

func (s *Store) restore() {
	identity, err := s.repo.Load()

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case errors.Is(err, repositories.ErrCorruptIdentity):
		s.log.Warn().Err(err).Msg("discarding persisted identity")
		if clearErr := s.repo.Clear(); clearErr != nil {
			s.log.Error().Err(clearErr).Msg("failed to clear corrupt identity")
		}
		s.state = Unauthenticated
		s.metrics.RecordRestore(metrics.RestoreDiscarded)
	case err != nil:
		s.log.Error().Err(err).Msg("failed to read persisted identity")
		s.state = Unauthenticated
		s.metrics.RecordRestore(metrics.RestoreDiscarded)
	case identity == nil:
		s.state = Unauthenticated
		s.metrics.RecordRestore(metrics.RestoreEmpty)
	default:
		s.identity = identity
		s.state = Authenticated
		s.metrics.RecordRestore(metrics.RestoreSignedIn)
		s.log.Debug().Str("provider", string(identity.Provider)).Msg("session restored")
	}
}

// SignInEmail signs in with an email address. No credential check exists;
// the password is accepted as given.
func (s *Store) SignInEmail(ctx context.Context, email, password string) (*models.Identity, error) {
	return s.signIn(ctx, models.ProviderEmail, func() models.Identity {
		name, _, _ := strings.Cut(email, "@")
		return models.Identity{Email: email, Name: name}
	})
}

func (s *Store) SignInGoogle(ctx context.Context) (*models.Identity, error) {
	return s.signInSocial(ctx, models.ProviderGoogle)
}

func (s *Store) SignInLine(ctx context.Context) (*models.Identity, error) {
	return s.signInSocial(ctx, models.ProviderLine)
}

func (s *Store) signInSocial(ctx context.Context, provider models.Provider) (*models.Identity, error) {
	profile := socialProfiles[provider]
	return s.signIn(ctx, provider, func() models.Identity {
		return models.Identity{Email: profile.Email, Name: profile.Name, Avatar: profile.Avatar}
	})
}

func (s *Store) signIn(ctx context.Context, provider models.Provider, base func() models.Identity) (*models.Identity, error) {
	s.mu.Lock()
	switch s.state {
	case Authenticating:
		s.mu.Unlock()
		return nil, ErrBusy
	case Authenticated:
		s.mu.Unlock()
		return nil, ErrAlreadySignedIn
	}
	s.state = Authenticating
	epoch := s.epoch
	s.mu.Unlock()

	select {
	case <-s.clock.After(s.delay):
	case <-ctx.Done():
		s.mu.Lock()
		if s.epoch == epoch && s.state == Authenticating {
			s.state = Unauthenticated
		}
		s.mu.Unlock()
		return nil, ctx.Err()
	}

	identity := base()
	identity.ID = s.issuer.IdentityID()
	identity.UserID = s.issuer.UserID()
	identity.APIKey = s.issuer.APIKey()
	identity.Provider = provider

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch || s.state != Authenticating {
		return nil, ErrInterrupted
	}
	if err := s.repo.Save(&identity); err != nil {
		s.state = Unauthenticated
		return nil, fmt.Errorf("persisting identity: %w", err)
	}

	s.identity = &identity
	s.state = Authenticated
	s.metrics.RecordSignIn(string(provider))
	s.log.Info().Str("provider", string(provider)).Str("user_id", identity.UserID).Msg("signed in")

	out := identity
	return &out, nil
}

// SignOut forgets the identity in memory and in the persisted store. It
// may be called in any state, any number of times.
func (s *Store) SignOut() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.state = Unauthenticated
	s.identity = nil
	s.metrics.RecordSignOut()

	if err := s.repo.Clear(); err != nil {
		return fmt.Errorf("clearing identity: %w", err)
	}
	s.log.Info().Msg("signed out")
	return nil
}

// UpdateAPIKey replaces the key of identity identityID and re-persists it.
// It fails with ErrIdentityChanged when someone else is signed in by now.
func (s *Store) UpdateAPIKey(identityID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Authenticated {
		return ErrNotAuthenticated
	}
	if s.identity.ID != identityID {
		return ErrIdentityChanged
	}

	updated := *s.identity
	updated.APIKey = key
	if err := s.repo.Save(&updated); err != nil {
		return fmt.Errorf("persisting identity: %w", err)
	}
	s.identity = &updated
	return nil
}

// Current returns a copy of the signed-in identity.
func (s *Store) Current() (models.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Authenticated {
		return models.Identity{}, false
	}
	return *s.identity, true
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Release drops the in-memory session without touching the persisted
// store; a later New for the same origin restores it.
func (s *Store) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.state = Unauthenticated
	s.identity = nil
}
