package store

import (
	"context"

	"github.com/boddenberg/lessence-studio-bfa/internal/domain"
	"github.com/boddenberg/lessence-studio-bfa/internal/port"

	"go.uber.org/zap"
)

// AccountRepository implements port.AccountStore. The users key stays absent
// until the first registration.
type AccountRepository struct {
	store  port.SnapshotStore
	logger *zap.Logger
}

// NewAccountRepository creates the repository.
func NewAccountRepository(store port.SnapshotStore, logger *zap.Logger) *AccountRepository {
	return &AccountRepository{store: store, logger: logger}
}

func (r *AccountRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	ctx, span := tracer.Start(ctx, "AccountRepository.ListAccounts")
	defer span.End()

	items, _, err := readList[domain.Account](ctx, r.store, KeyUsers)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Account{}
	}
	return items, nil
}

// GetAccount returns (nil, nil) when no account has that username.
func (r *AccountRepository) GetAccount(ctx context.Context, username string) (*domain.Account, error) {
	items, err := r.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Username == username {
			return &items[i], nil
		}
	}
	return nil, nil
}

func (r *AccountRepository) CreateAccount(ctx context.Context, acct domain.Account) error {
	ctx, span := tracer.Start(ctx, "AccountRepository.CreateAccount")
	defer span.End()

	return mutateList(ctx, r.store, KeyUsers, nil, func(items []domain.Account) ([]domain.Account, error) {
		for _, a := range items {
			if a.Username == acct.Username {
				return nil, &domain.ErrConflict{Message: "Este usuário já existe."}
			}
		}
		return append(items, acct), nil
	})
}

func (r *AccountRepository) DeleteAccount(ctx context.Context, username string) error {
	ctx, span := tracer.Start(ctx, "AccountRepository.DeleteAccount")
	defer span.End()

	return mutateList(ctx, r.store, KeyUsers, nil, func(items []domain.Account) ([]domain.Account, error) {
		out := items[:0]
		removed := false
		for _, a := range items {
			if a.Username == username {
				removed = true
				continue
			}
			out = append(out, a)
		}
		if !removed {
			return nil, &domain.ErrNotFound{Resource: "account", ID: username}
		}
		return out, nil
	})
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	ctx, span := tracer.Start(ctx, "AccountRepository.UpdatePassword")
	defer span.End()

	return mutateList(ctx, r.store, KeyUsers, nil, func(items []domain.Account) ([]domain.Account, error) {
		for i := range items {
			if items[i].Username == username {
				items[i].PasswordHash = passwordHash
				return items, nil
			}
		}
		return nil, &domain.ErrNotFound{Resource: "account", ID: username}
	})
}
