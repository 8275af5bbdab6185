package profile

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-account-api/internal/domain"
)

var phonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

type Service interface {
	Me(ctx context.Context, email string) (*domain.Account, error)
	Update(ctx context.Context, email string, req domain.UpdateProfileRequest) (*domain.Account, error)
}

type accountStore interface {
	GetAccount(ctx context.Context, email string) (*domain.Account, error)
	SaveAccount(ctx context.Context, a *domain.Account) error
}

type locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

type service struct {
	store  accountStore
	locker locker
	now    func() time.Time
}

type ServiceDeps struct {
	Store  accountStore
	Locker locker
	Now    func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{store: deps.Store, locker: deps.Locker, now: now}
}

func (s *service) Me(ctx context.Context, email string) (*domain.Account, error) {
	return s.store.GetAccount(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// Update changes name, phone and address. Blank fields are left as they are;
// email and account ID are never touched.
func (s *service) Update(ctx context.Context, email string, req domain.UpdateProfileRequest) (*domain.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name, phone, address := present(req.Name), present(req.Phone), present(req.Address)
	if phone != "" && !phonePattern.MatchString(phone) {
		return nil, domain.NewValidationError("phone must be a 10 digit number starting with 6-9")
	}

	unlock, err := s.locker.Lock(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lock account: %w", err)
	}
	defer unlock()

	a, err := s.store.GetAccount(ctx, email)
	if err != nil {
		return nil, err
	}
	if name == "" && phone == "" && address == "" {
		return a, nil
	}
	if name != "" {
		a.Name = name
	}
	if phone != "" {
		a.Phone = phone
	}
	if address != "" {
		a.Address = &address
	}
	a.UpdatedAt = s.now().UTC()
	if err := s.store.SaveAccount(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func present(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}
