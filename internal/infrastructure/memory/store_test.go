package memory

import (
	"context"
	"testing"
	"time"

	"github.com/go-account-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pending(email, code string) *domain.PendingAccount {
	return &domain.PendingAccount{Email: email, Name: "Alice", OTPCode: code, OTPExpiresAt: time.Now().Add(time.Minute)}
}

func TestPromote_MovesPendingToAccount(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.PutPending(ctx, pending("a@b.com", "111111")))

	require.NoError(t, s.Promote(ctx, &domain.Account{AccountID: "1", Email: "a@b.com", Verified: true}, "111111"))

	_, err := s.GetPending(ctx, "a@b.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	a, err := s.GetAccount(ctx, "a@b.com")
	require.NoError(t, err)
	assert.True(t, a.Verified)
}

func TestPromote_CodeChanged(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.PutPending(ctx, pending("a@b.com", "222222")))

	err := s.Promote(ctx, &domain.Account{Email: "a@b.com"}, "111111")
	assert.ErrorIs(t, err, domain.ErrInvalidOTP)

	_, err = s.GetAccount(ctx, "a@b.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.GetPending(ctx, "a@b.com")
	assert.NoError(t, err)
}

func TestPromote_NoPending(t *testing.T) {
	err := NewStore().Promote(context.Background(), &domain.Account{Email: "a@b.com"}, "111111")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPutPending_ConflictWhenAccountExists(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.PutPending(ctx, pending("a@b.com", "111111")))
	require.NoError(t, s.Promote(ctx, &domain.Account{Email: "a@b.com"}, "111111"))

	err := s.PutPending(ctx, pending("a@b.com", "333333"))
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestSaveAccount_UnknownEmail(t *testing.T) {
	err := NewStore().SaveAccount(context.Background(), &domain.Account{Email: "nobody@b.com"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetAccount_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.PutPending(ctx, pending("a@b.com", "111111")))
	require.NoError(t, s.Promote(ctx, &domain.Account{Email: "a@b.com", Name: "Alice"}, "111111"))

	a, err := s.GetAccount(ctx, "a@b.com")
	require.NoError(t, err)
	a.Name = "Mallory"
	a.Challenge = &domain.Challenge{Code: "999999"}

	b, err := s.GetAccount(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", b.Name)
	assert.Nil(t, b.Challenge)
}
