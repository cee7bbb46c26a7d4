// Package app wires one origin's language, session and dashboard panel
// together and keeps a registry of origins for the server.
package app

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"keyportal/internal/engine/credentials"
	"keyportal/internal/engine/dashboard"
	"keyportal/internal/engine/session"
	"keyportal/internal/pkg/i18n"
	"keyportal/internal/pkg/metrics"
	"keyportal/internal/platform/repositories"
	"keyportal/internal/platform/storage"
)

type Options struct {
	Issuer          credentials.Issuer
	DefaultLocale   i18n.Locale
	SignInDelay     time.Duration
	RegenerateDelay time.Duration
	Clock           clockwork.Clock
	Logger          zerolog.Logger
	Metrics         metrics.Recorder

	// MaxOrigins and IdleTimeout bound the Registry.
	MaxOrigins  int
	IdleTimeout time.Duration
}

// State is everything one origin sees.
type State struct {
	Origin   string
	Language *i18n.Selector
	Session  *session.Store

	issuer credentials.Issuer
	opts   dashboard.Options

	mu    sync.Mutex
	panel *dashboard.KeyPanel

	seen atomic.Int64
}

// NewState restores the origin's language before its session.
func NewState(origin string, kv storage.KV, opts Options) *State {
	if opts.Issuer == nil {
		opts.Issuer = credentials.NewMockIssuer()
	}
	if opts.DefaultLocale == "" {
		opts.DefaultLocale = i18n.English
	}
	logger := opts.Logger.With().Str("origin", origin).Logger()

	language := i18n.NewSelector(repositories.NewPreferenceRepository(kv), opts.DefaultLocale)
	sess := session.New(repositories.NewIdentityRepository(kv), opts.Issuer, session.Options{
		SignInDelay: opts.SignInDelay,
		Clock:       opts.Clock,
		Logger:      &logger,
		Metrics:     opts.Metrics,
	})

	return &State{
		Origin:   origin,
		Language: language,
		Session:  sess,
		issuer:   opts.Issuer,
		opts: dashboard.Options{
			RegenerateDelay: opts.RegenerateDelay,
			Clock:           opts.Clock,
			Logger:          &logger,
			Metrics:         opts.Metrics,
		},
	}
}

// Dashboard returns the mounted key panel, mounting a fresh one whenever
// the signed-in identity differs from the one the panel was built for.
func (s *State) Dashboard() *dashboard.KeyPanel {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, _ := s.Session.Current()
	if s.panel == nil || s.panel.Owner() != identity.ID {
		s.panel = dashboard.Mount(s.Session, s.issuer, s.opts)
	}
	return s.panel
}

func (s *State) touch(now time.Time) {
	s.seen.Store(now.UnixNano())
}

func (s *State) lastSeen() time.Time {
	return time.Unix(0, s.seen.Load())
}

// Close drops in-memory state only; the persisted store is left as is.
func (s *State) Close() {
	s.mu.Lock()
	s.panel = nil
	s.mu.Unlock()

	s.Session.Release()
}
