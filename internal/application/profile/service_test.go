package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-account-api/internal/domain"
	"github.com/go-account-api/internal/pkg/keylock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockStore struct{ mock.Mock }

func (m *mockStore) GetAccount(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStore) SaveAccount(ctx context.Context, a *domain.Account) error {
	return m.Called(ctx, a).Error(0)
}

// --- helpers ---

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newService(st *mockStore) Service {
	return NewService(ServiceDeps{
		Store:  st,
		Locker: keylock.New(),
		Now:    func() time.Time { return fixedNow },
	})
}

func ptr[T any](v T) *T { return &v }

func alice() *domain.Account {
	return &domain.Account{AccountID: "01HX", Email: "alice@x.com", Name: "Alice", Phone: "9876543210", Verified: true}
}

// --- Me ---

func TestMe_NotFound(t *testing.T) {
	st := &mockStore{}
	st.On("GetAccount", mock.Anything, "ghost@x.com").Return(nil, domain.ErrNotFound)

	_, err := newService(st).Me(context.Background(), "Ghost@x.com")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestMe_ReturnsAccount(t *testing.T) {
	st := &mockStore{}
	st.On("GetAccount", mock.Anything, "alice@x.com").Return(alice(), nil)

	a, err := newService(st).Me(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", a.Name)
}

// --- Update ---

func TestUpdate_InvalidPhone(t *testing.T) {
	for _, phone := range []string{"12345", "5876543210", "98765432101", "98765abcde"} {
		t.Run(phone, func(t *testing.T) {
			st := &mockStore{}
			_, err := newService(st).Update(context.Background(), "alice@x.com", domain.UpdateProfileRequest{Phone: ptr(phone)})
			assert.True(t, errors.Is(err, domain.ErrValidation))
			st.AssertNotCalled(t, "GetAccount", mock.Anything, mock.Anything)
		})
	}
}

func TestUpdate_BlankFields_NoWrite(t *testing.T) {
	st := &mockStore{}
	st.On("GetAccount", mock.Anything, "alice@x.com").Return(alice(), nil)

	a, err := newService(st).Update(context.Background(), "alice@x.com", domain.UpdateProfileRequest{
		Name: ptr("  "), Phone: ptr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", a.Name)
	st.AssertNotCalled(t, "SaveAccount", mock.Anything, mock.Anything)
}

func TestUpdate_HappyPath(t *testing.T) {
	st := &mockStore{}
	st.On("GetAccount", mock.Anything, "alice@x.com").Return(alice(), nil)
	st.On("SaveAccount", mock.Anything, mock.MatchedBy(func(a *domain.Account) bool {
		return a.Email == "alice@x.com" && a.AccountID == "01HX" &&
			a.Name == "Alice B" && a.Phone == "6123456789" &&
			a.Address != nil && *a.Address == "12 Lake Road" &&
			a.UpdatedAt.Equal(fixedNow)
	})).Return(nil)

	a, err := newService(st).Update(context.Background(), "alice@x.com", domain.UpdateProfileRequest{
		Name: ptr("Alice B"), Phone: ptr("6123456789"), Address: ptr(" 12 Lake Road "),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", a.Name)
	st.AssertExpectations(t)
}

func TestUpdate_AccountMissing(t *testing.T) {
	st := &mockStore{}
	st.On("GetAccount", mock.Anything, "alice@x.com").Return(nil, domain.ErrNotFound)

	_, err := newService(st).Update(context.Background(), "alice@x.com", domain.UpdateProfileRequest{Name: ptr("Alice B")})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
