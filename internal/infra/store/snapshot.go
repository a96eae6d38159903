// Package store implements the entity repositories on top of a
// port.SnapshotStore. Each entity list lives under its own key and is
// rewritten in full on every mutation.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/boddenberg/lessence-studio-bfa/internal/port"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("infra/store")

// Snapshot keys, shared with the original browser client.
const (
	KeyServices      = "lessence_services"
	KeyProfessionals = "lessence_professionals"
	KeyAppointments  = "lessence_appointments"
	KeyUsers         = "lessence_users"
)

// readList decodes the list under key. found is false when the key was never written.
func readList[T any](ctx context.Context, s port.SnapshotStore, key string) (items []T, found bool, err error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	if raw == nil {
		return nil, false, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, true, fmt.Errorf("decode %s: %w", key, err)
	}
	return items, true, nil
}

// mutateList runs fn on the decoded list inside the store's atomic update and
// writes the result back. When the key is absent, seed supplies the starting list.
func mutateList[T any](ctx context.Context, s port.SnapshotStore, key string, seed func() []T, fn func([]T) ([]T, error)) error {
	return s.Update(ctx, key, func(current []byte) ([]byte, error) {
		var items []T
		if current == nil {
			if seed != nil {
				items = seed()
			}
		} else if err := json.Unmarshal(current, &items); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}

		next, err := fn(items)
		if err != nil {
			return nil, err
		}
		if next == nil {
			next = []T{}
		}
		return json.Marshal(next)
	})
}
