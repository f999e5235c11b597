package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// BackendType represents the data backend to use
type BackendType string

const (
	// LocalBackend keeps expenses and users in key-value storage
	LocalBackend BackendType = "local"
	// RemoteBackend talks to the REST data service
	RemoteBackend BackendType = "remote"
)

// IsValid checks if the backend type is supported
func (bt BackendType) IsValid() bool {
	switch bt {
	case LocalBackend, RemoteBackend:
		return true
	default:
		return false
	}
}

// String returns the string representation of the backend type
func (bt BackendType) String() string {
	return string(bt)
}

// Config holds the settings for creating a backend
type Config struct {
	Type BackendType

	// Remote
	RemoteURL string
	Timeout   time.Duration

	// Local
	SeedSampleData bool
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Type == RemoteBackend && c.RemoteURL == "" {
		return fmt.Errorf("remote URL is required for remote backend")
	}
	return nil
}

// New creates the configured backend. kv holds the session token for
// the remote backend and all data for the local one.
func New(ctx context.Context, cfg Config, kv domain.KeyValueStore) (domain.DataBackend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case LocalBackend:
		local := NewLocal(kv)
		if cfg.SeedSampleData {
			if err := local.Seed(ctx, time.Now()); err != nil {
				return nil, fmt.Errorf("failed to seed local backend: %w", err)
			}
		}
		log.Info().Bool("seeded", cfg.SeedSampleData).Msg("Initialized local backend")
		return local, nil

	case RemoteBackend:
		remote := NewRemote(cfg.RemoteURL, cfg.Timeout, kv)
		log.Info().Str("url", cfg.RemoteURL).Dur("timeout", cfg.Timeout).Msg("Initialized remote backend")
		return remote, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}
