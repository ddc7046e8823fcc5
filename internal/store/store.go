package store

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/shopease/shopease-engine/pkg/logger"
)

// Store is the write-through persistence surface shared by every stateful
// engine. One document lives under one namespaced key.
type Store interface {
	// Load returns the raw document at key. A missing key reports ok=false
	// with a nil error; only transport failures return an error.
	Load(ctx context.Context, key string) (raw []byte, ok bool, err error)
	// Save writes the document synchronously.
	Save(ctx context.Context, key string, raw []byte) error
	// Clear removes the document. Clearing an absent key is a no-op.
	Clear(ctx context.Context, key string) error
}

const (
	cartDocument     = "cart"
	wishlistDocument = "wishlist"
	sessionDocument  = "session"
)

// Keys builds namespaced document keys.
type Keys struct {
	namespace string
}

// NewKeys returns a key builder for the configured namespace.
func NewKeys(namespace string) Keys {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		namespace = "shopease"
	}
	return Keys{namespace: namespace}
}

func (k Keys) Cart() string     { return k.build(cartDocument) }
func (k Keys) Wishlist() string { return k.build(wishlistDocument) }
func (k Keys) Session() string  { return k.build(sessionDocument) }

func (k Keys) build(parts ...string) string {
	clean := []string{k.namespace}
	for _, part := range parts {
		if part == "" {
			continue
		}
		clean = append(clean, strings.TrimSpace(part))
	}
	return strings.Join(clean, ":")
}

// envelope tags every persisted document with a schema version so legacy or
// hand-edited documents degrade to defaults instead of decode panics.
type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// LoadJSON decodes the versioned document at key into dest. Missing keys,
// malformed JSON, version mismatches, and transport failures all leave dest
// untouched and report false; callers proceed with their default state.
func LoadJSON(ctx context.Context, s Store, logg *logger.Logger, key string, version int, dest any) bool {
	raw, ok, err := s.Load(ctx, key)
	if err != nil {
		if logg != nil {
			logg.Warn(logg.WithField(ctx, "document", key), "load failed, using default state")
		}
		return false
	}
	if !ok {
		return false
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Version != version {
		if logg != nil {
			logg.Warn(logg.WithField(ctx, "document", key), "malformed document, using default state")
		}
		return false
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		if logg != nil {
			logg.Warn(logg.WithField(ctx, "document", key), "malformed document body, using default state")
		}
		return false
	}
	return true
}

// SaveJSON writes value under key inside a versioned envelope.
func SaveJSON(ctx context.Context, s Store, key string, version int, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(envelope{Version: version, Data: data})
	if err != nil {
		return err
	}
	return s.Save(ctx, key, raw)
}
