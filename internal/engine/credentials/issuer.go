package credentials

import (
	crand "crypto/rand"
	"math/big"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	APIKeyPrefix       = "ak_live_"
	APIKeyFragmentSize = 13
	UserIDPrefix       = "USR_"
	UserIDSuffixSize   = 8

	keyAlphabet    = "abcdefghijklmnopqrstuvwxyz0123456789"
	userIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Issuer mints the identifiers and keys handed out at sign-in and on key
// regeneration.
type Issuer interface {
	IdentityID() string
	UserID() string
	APIKey() string
	RecordID() string
}

// MockIssuer draws from math/rand. Its output has the right shape and
// nothing else; it must not guard anything real.
type MockIssuer struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewMockIssuer() *MockIssuer {
	return NewMockIssuerWithSeed(time.Now().UnixNano())
}

// NewMockIssuerWithSeed gives a reproducible sequence, for tests.
func NewMockIssuerWithSeed(seed int64) *MockIssuer {
	return &MockIssuer{rnd: rand.New(rand.NewSource(seed))}
}

func (m *MockIssuer) IdentityID() string { return uuid.NewString() }

func (m *MockIssuer) RecordID() string { return uuid.NewString() }

func (m *MockIssuer) UserID() string {
	return UserIDPrefix + m.randomString(userIDAlphabet, UserIDSuffixSize)
}

// APIKey joins two independently drawn fragments behind the live prefix.
func (m *MockIssuer) APIKey() string {
	return APIKeyPrefix +
		m.randomString(keyAlphabet, APIKeyFragmentSize) +
		m.randomString(keyAlphabet, APIKeyFragmentSize)
}

func (m *MockIssuer) randomString(alphabet string, length int) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	b := make([]byte, length)
	for i := range b {
		b[i] = alphabet[m.rnd.Intn(len(alphabet))]
	}
	return string(b)
}

// SecureIssuer produces the same shapes as MockIssuer from crypto/rand.
type SecureIssuer struct{}

func NewSecureIssuer() *SecureIssuer {
	return &SecureIssuer{}
}

func (SecureIssuer) IdentityID() string { return uuid.NewString() }

func (SecureIssuer) RecordID() string { return uuid.NewString() }

func (SecureIssuer) UserID() string {
	return UserIDPrefix + secureString(userIDAlphabet, UserIDSuffixSize)
}

func (SecureIssuer) APIKey() string {
	return APIKeyPrefix +
		secureString(keyAlphabet, APIKeyFragmentSize) +
		secureString(keyAlphabet, APIKeyFragmentSize)
}

func secureString(alphabet string, length int) string {
	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, length)
	for i := range b {
		n, err := crand.Int(crand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is gone.
			panic("credentials: reading random source: " + err.Error())
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b)
}

// NewIssuer maps the configured issuer name to an implementation; unknown
// names fall back to the mock issuer.
func NewIssuer(name string) Issuer {
	if name == "secure" {
		return NewSecureIssuer()
	}
	return NewMockIssuer()
}
