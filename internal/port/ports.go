// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"time"

	"github.com/boddenberg/lessence-studio-bfa/internal/domain"
)

// SnapshotStore persists whole JSON snapshots under string keys.
// Get returns (nil, nil) when the key has never been written.
type SnapshotStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error

	// Update runs fn against the current value of key and writes its result
	// atomically with respect to other Update calls on the same key.
	// If fn returns an error nothing is written.
	Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error

	Ping(ctx context.Context) error
}

// CatalogStore holds services and professionals.
type CatalogStore interface {
	ListServices(ctx context.Context) ([]domain.Service, error)
	GetService(ctx context.Context, id string) (*domain.Service, error)
	SaveService(ctx context.Context, svc domain.Service) error
	DeleteService(ctx context.Context, id string) error

	ListProfessionals(ctx context.Context) ([]domain.Professional, error)
	GetProfessional(ctx context.Context, id string) (*domain.Professional, error)
	SaveProfessional(ctx context.Context, pro domain.Professional) error
	DeleteProfessional(ctx context.Context, id string) error
}

// AppointmentStore holds appointments. Appointments are never deleted.
type AppointmentStore interface {
	ListAppointments(ctx context.Context) ([]domain.Appointment, error)

	// Reserve appends appt unless a non-cancelled appointment already holds
	// its (professional, date, time) slot, in which case it returns
	// *domain.ErrSlotTaken and writes nothing.
	Reserve(ctx context.Context, appt domain.Appointment) error

	UpdateStatus(ctx context.Context, id string, status domain.AppointmentStatus) (*domain.Appointment, error)
}

// AccountStore holds registered admin accounts.
type AccountStore interface {
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	GetAccount(ctx context.Context, username string) (*domain.Account, error)

	// CreateAccount fails with *domain.ErrConflict if the username exists.
	CreateAccount(ctx context.Context, acct domain.Account) error
	DeleteAccount(ctx context.Context, username string) error
	UpdatePassword(ctx context.Context, username, passwordHash string) error
}

// AssistantCaller invokes the external text-generation model.
type AssistantCaller interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	SetWithTTL(key string, value T, ttl time.Duration)
	// SetIfAbsent stores value only when key is missing or expired and
	// reports whether it did.
	SetIfAbsent(key string, value T, ttl time.Duration) bool
	Delete(key string)
}
