package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"tlwd-backend/internal/domain/entity"
	"tlwd-backend/internal/service/auth"
)

/*────────────────────  インメモリスタブ  ────────────────────*/

type stubUsers struct {
	byID map[string]*entity.User
}

func (s *stubUsers) Get(_ context.Context, id string) (*entity.User, error) { return s.byID[id], nil }
func (s *stubUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range s.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}
func (s *stubUsers) Create(_ context.Context, u *entity.User) error {
	u.ID = "u" + u.Email
	s.byID[u.ID] = u
	return nil
}
func (s *stubUsers) UpdatePassword(_ context.Context, id, hash string) error {
	s.byID[id].PasswordHash = hash
	return nil
}

func newService(t *testing.T) (*auth.AuthService, *stubUsers) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	users := &stubUsers{byID: map[string]*entity.User{
		"u1": {ID: "u1", Name: "Admin", Email: "admin@tlwd.org", PasswordHash: string(hash), Role: auth.RoleAdmin},
	}}
	svc := auth.NewAuthService(users, auth.NewTokens("0123456789abcdef0123456789abcdef", time.Hour))
	svc.Cost = bcrypt.MinCost
	return svc, users
}

/*────────────────────  テスト  ────────────────────*/

func TestLogin(t *testing.T) {
	svc, _ := newService(t)

	res, err := svc.Login(context.Background(), auth.Credentials{Email: " Admin@TLWD.org ", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "u1", res.User.ID)

	claims, err := svc.Tokens.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.ID)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name  string
		creds auth.Credentials
		want  error
	}{
		{"missing password", auth.Credentials{Email: "admin@tlwd.org"}, auth.ErrMissingCredentials},
		{"missing email", auth.Credentials{Password: "x"}, auth.ErrMissingCredentials},
		{"wrong password", auth.Credentials{Email: "admin@tlwd.org", Password: "nope"}, auth.ErrInvalidCredentials},
		{"unknown user", auth.Credentials{Email: "who@tlwd.org", Password: "correct-horse"}, auth.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newService(t)
			_, err := svc.Login(context.Background(), tt.creds)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRefreshAndMe(t *testing.T) {
	svc, _ := newService(t)

	tok, err := svc.Refresh(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotEmpty(t, tok)

	_, err = svc.Me(context.Background(), "ghost")
	assert.True(t, errors.Is(err, entity.ErrNotFound))
}

func TestChangePassword(t *testing.T) {
	svc, users := newService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.ChangePassword(ctx, "u1", "wrong", "new-password-1"), auth.ErrInvalidCurrentPassword)
	assert.ErrorIs(t, svc.ChangePassword(ctx, "u1", "", "x"), auth.ErrMissingPasswords)

	err := svc.ChangePassword(ctx, "u1", "correct-horse", "short")
	var ve *entity.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Password must be at least 8 characters", ve.Message)

	require.NoError(t, svc.ChangePassword(ctx, "u1", "correct-horse", "new-password-1"))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users.byID["u1"].PasswordHash), []byte("new-password-1")))
}

func TestSeedSuperAdmin(t *testing.T) {
	svc, users := newService(t)
	ctx := context.Background()

	created, err := svc.SeedSuperAdmin(ctx, "", "root@tlwd.org", "seed-password")
	require.NoError(t, err)
	assert.True(t, created)

	u, _ := users.GetByEmail(ctx, "root@tlwd.org")
	require.NotNil(t, u)
	assert.Equal(t, auth.RoleSuperAdmin, u.Role)
	assert.Equal(t, "Super Admin", u.Name)

	created, err = svc.SeedSuperAdmin(ctx, "", "root@tlwd.org", "seed-password")
	require.NoError(t, err)
	assert.False(t, created, "existing account is left alone")

	created, err = svc.SeedSuperAdmin(ctx, "", "", "")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestIsAdminRole(t *testing.T) {
	assert.True(t, auth.IsAdminRole("admin"))
	assert.True(t, auth.IsAdminRole("super-admin"))
	assert.False(t, auth.IsAdminRole("viewer"))
	assert.False(t, auth.IsAdminRole(""))
}
