package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soko-labs/storefront-backend/internal/apperr"
)

type fakeUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*User
}

func newFakeUserRepo() *fakeUserRepo { return &fakeUserRepo{byEmail: make(map[string]*User)} }

func (f *fakeUserRepo) CreateUser(_ context.Context, u *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.byEmail[u.Email]; exists {
		return apperr.Conflict("an account with this email already exists")
	}
	clone := *u
	f.byEmail[u.Email] = &clone
	return nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[email]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID.String() == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func newTestService() Service {
	return NewService(newFakeUserRepo(), testSecret, time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterRequest{
		Email:    "Vendor@Example.com",
		Password: "correct-horse",
		Name:     "  Amina  ",
		Vendor:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "vendor@example.com", u.Email, "email is normalized")
	assert.Equal(t, "Amina", u.Name)
	assert.Equal(t, RoleVendor, u.Role)
	assert.NotEqual(t, "correct-horse", u.PasswordHash)

	token, err := svc.Login(ctx, "vendor@example.com", "correct-horse")
	require.NoError(t, err)

	claims, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), claims.Subject)
	assert.Equal(t, RoleVendor, claims.Role)
}

func TestRegisterDefaultsToCustomer(t *testing.T) {
	svc := newTestService()

	u, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "shopper@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, RoleCustomer, u.Role)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	cases := []RegisterRequest{
		{Email: "", Password: "correct-horse"},
		{Email: "not-an-email", Password: "correct-horse"},
		{Email: "a@example.com", Password: "short"},
	}
	for _, req := range cases {
		_, err := svc.Register(ctx, req)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	req := RegisterRequest{Email: "dup@example.com", Password: "correct-horse"}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Register(ctx, req)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestLoginFailuresAreUniform(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "a@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	// Unknown email and wrong password must be indistinguishable.
	_, unknownErr := svc.Login(ctx, "nobody@example.com", "correct-horse")
	_, wrongErr := svc.Login(ctx, "a@example.com", "wrong-password")

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.True(t, apperr.IsKind(unknownErr, apperr.KindAuth))
	assert.True(t, apperr.IsKind(wrongErr, apperr.KindAuth))
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}
