package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/boddenberg/lessence-studio-bfa/internal/domain"
	"github.com/boddenberg/lessence-studio-bfa/internal/infra/snapshot"
	"github.com/boddenberg/lessence-studio-bfa/internal/infra/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAccounts_CreateGetDelete(t *testing.T) {
	ctx := context.Background()
	repo := store.NewAccountRepository(snapshot.NewMemory(), zap.NewNop())

	missing, err := repo.GetAccount(ctx, "ana")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.CreateAccount(ctx, domain.Account{Username: "ana", PasswordHash: "h", ProfessionalID: "1"}))

	got, err := repo.GetAccount(ctx, "ana")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "1", got.ProfessionalID)

	require.NoError(t, repo.DeleteAccount(ctx, "ana"))
	list, err := repo.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAccounts_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	repo := store.NewAccountRepository(snapshot.NewMemory(), zap.NewNop())

	require.NoError(t, repo.CreateAccount(ctx, domain.Account{Username: "ana"}))
	err := repo.CreateAccount(ctx, domain.Account{Username: "ana"})

	var conflict *domain.ErrConflict
	assert.True(t, errors.As(err, &conflict))
}

func TestAccounts_UpdatePassword(t *testing.T) {
	ctx := context.Background()
	repo := store.NewAccountRepository(snapshot.NewMemory(), zap.NewNop())

	require.NoError(t, repo.CreateAccount(ctx, domain.Account{Username: "ana", PasswordHash: "old"}))
	require.NoError(t, repo.UpdatePassword(ctx, "ana", "new"))

	got, err := repo.GetAccount(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "new", got.PasswordHash)

	err = repo.UpdatePassword(ctx, "bia", "x")
	var nf *domain.ErrNotFound
	assert.True(t, errors.As(err, &nf))
}
