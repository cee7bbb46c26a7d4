package repositories

import (
	"encoding/json"
	"errors"
	"fmt"

	"keyportal/internal/platform/models"
	"keyportal/internal/platform/storage"
)

const identityKey = "user"

// ErrCorruptIdentity marks a persisted identity that cannot be used.
var ErrCorruptIdentity = errors.New("persisted identity is corrupt")

// IdentityRepository stores the signed-in identity as JSON under a fixed
// key of the origin's namespace.
type IdentityRepository struct {
	kv storage.KV
}

func NewIdentityRepository(kv storage.KV) *IdentityRepository {
	return &IdentityRepository{kv: kv}
}

// Load returns (nil, nil) when no identity is stored.
func (r *IdentityRepository) Load() (*models.Identity, error) {
	raw, found, err := r.kv.Get(identityKey)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var identity models.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptIdentity, err)
	}
	if identity.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrCorruptIdentity)
	}
	if !identity.Provider.Valid() {
		return nil, fmt.Errorf("%w: unknown provider %q", ErrCorruptIdentity, identity.Provider)
	}

	return &identity, nil
}

func (r *IdentityRepository) Save(identity *models.Identity) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return err
	}
	return r.kv.Set(identityKey, string(data))
}

func (r *IdentityRepository) Clear() error {
	return r.kv.Remove(identityKey)
}
