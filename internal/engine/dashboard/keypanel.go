// Package dashboard owns the API key record shown on the dashboard: how it
// is seeded on mount, masked, copied and regenerated.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"keyportal/internal/engine/credentials"
	"keyportal/internal/engine/session"
	"keyportal/internal/pkg/metrics"
	"keyportal/internal/platform/models"
)

var (
	// ErrSignInRequired asks the caller to prompt for sign-in; nothing was
	// changed.
	ErrSignInRequired = errors.New("sign in required")
	ErrBusy           = errors.New("regeneration already in progress")
)

// Session is the part of the session store the panel needs.
type Session interface {
	Current() (models.Identity, bool)
	UpdateAPIKey(identityID, key string) error
}

type Clipboard interface {
	WriteText(text string) error
}

// Sample usage figures shown for a key the panel did not issue itself.
// Nothing tracks real usage.
var (
	sampleRecordID = "1"
	sampleCreated  = time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	sampleLastUsed = time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC)
	sampleRequests = int64(1247)
)

type Options struct {
	// RegenerateDelay stands in for provisioning a new key upstream.
	RegenerateDelay time.Duration
	Clock           clockwork.Clock
	Logger          *zerolog.Logger
	Metrics         metrics.Recorder
}

type KeyPanel struct {
	session Session
	issuer  credentials.Issuer
	clock   clockwork.Clock
	delay   time.Duration
	log     zerolog.Logger
	metrics metrics.Recorder

	mu           sync.Mutex
	owner        string
	record       models.APIKeyRecord
	revealed     bool
	regenerating bool
}

// Mount builds the panel for whoever is signed in right now. An identity
// without a key gets one, written back to the session. With nobody signed
// in the record has no key and the panel runs in placeholder form.
func Mount(sess Session, issuer credentials.Issuer, opts Options) *KeyPanel {
	p := &KeyPanel{
		session: sess,
		issuer:  issuer,
		clock:   opts.Clock,
		delay:   opts.RegenerateDelay,
		log:     log.Logger,
		metrics: opts.Metrics,
	}
	if p.clock == nil {
		p.clock = clockwork.NewRealClock()
	}
	if opts.Logger != nil {
		p.log = *opts.Logger
	}
	if p.metrics == nil {
		p.metrics = metrics.Nop{}
	}

	identity, ok := sess.Current()
	if !ok {
		p.record = sampleRecord("")
		return p
	}
	p.initialize(identity)
	return p
}

func (p *KeyPanel) initialize(identity models.Identity) {
	p.owner = identity.ID

	key := identity.APIKey
	if key == "" {
		key = p.issuer.APIKey()
		if err := p.session.UpdateAPIKey(identity.ID, key); err != nil {
			p.log.Warn().Err(err).Msg("failed to store synthesized api key")
		}
	}
	p.record = sampleRecord(key)
}

func sampleRecord(key string) models.APIKeyRecord {
	lastUsed := sampleLastUsed
	return models.APIKeyRecord{
		ID:       sampleRecordID,
		Key:      key,
		Created:  sampleCreated,
		LastUsed: &lastUsed,
		Requests: sampleRequests,
		Status:   models.KeyStatusActive,
	}
}

// Owner is the ID of the identity the panel was mounted for, or "" when
// mounted signed out.
func (p *KeyPanel) Owner() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.owner
}

func (p *KeyPanel) Record() models.APIKeyRecord {
	p.mu.Lock()
	defer p.mu.Unlock()

	record := p.record
	if record.LastUsed != nil {
		lastUsed := *record.LastUsed
		record.LastUsed = &lastUsed
	}
	return record
}

// Regenerate replaces the whole record with a freshly issued key and
// hands the key to the session. Only one regeneration runs at a time.
func (p *KeyPanel) Regenerate(ctx context.Context) (models.APIKeyRecord, error) {
	identity, ok := p.session.Current()
	if !ok {
		return models.APIKeyRecord{}, ErrSignInRequired
	}

	p.mu.Lock()
	if p.regenerating {
		p.mu.Unlock()
		return models.APIKeyRecord{}, ErrBusy
	}
	p.regenerating = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.regenerating = false
		p.mu.Unlock()
	}()

	select {
	case <-p.clock.After(p.delay):
	case <-ctx.Done():
		return models.APIKeyRecord{}, ctx.Err()
	}

	record := models.APIKeyRecord{
		ID:       p.issuer.RecordID(),
		Key:      p.issuer.APIKey(),
		Created:  p.clock.Now(),
		Requests: 0,
		Status:   models.KeyStatusActive,
	}
	if err := p.session.UpdateAPIKey(identity.ID, record.Key); err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) || errors.Is(err, session.ErrIdentityChanged) {
			return models.APIKeyRecord{}, ErrSignInRequired
		}
		return models.APIKeyRecord{}, fmt.Errorf("storing regenerated key: %w", err)
	}

	p.mu.Lock()
	p.record = record
	p.revealed = true
	p.mu.Unlock()

	p.metrics.RecordRegenerate()
	p.log.Info().Str("user_id", identity.UserID).Str("record_id", record.ID).Msg("api key regenerated")
	return record, nil
}

func (p *KeyPanel) Regenerating() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.regenerating
}

func (p *KeyPanel) Reveal() error {
	if _, ok := p.session.Current(); !ok {
		return ErrSignInRequired
	}
	p.mu.Lock()
	p.revealed = true
	p.mu.Unlock()
	return nil
}

func (p *KeyPanel) Mask() {
	p.mu.Lock()
	p.revealed = false
	p.mu.Unlock()
}

func (p *KeyPanel) Revealed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.revealed
}

// Display is the key as the dashboard shows it: in full when revealed,
// masked otherwise.
func (p *KeyPanel) Display() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.revealed {
		return p.record.Key
	}
	return credentials.Mask(p.record.Key)
}

// Copy writes the literal key, never the masked form, to clip.
func (p *KeyPanel) Copy(clip Clipboard) error {
	if _, ok := p.session.Current(); !ok {
		return ErrSignInRequired
	}
	p.mu.Lock()
	key := p.record.Key
	p.mu.Unlock()

	return clip.WriteText(key)
}

// CodeExamples renders the integration snippets around the current key.
func (p *KeyPanel) CodeExamples() ([]Example, error) {
	p.mu.Lock()
	key := p.record.Key
	p.mu.Unlock()

	return RenderExamples(key)
}
