package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/document-tracking/internal/config"
	"github.com/spec-kit/document-tracking/internal/domain"
	"github.com/spec-kit/document-tracking/pkg/util/errorutil"
)

func newAuthService(f *fixture) *AuthService {
	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: 4}}
	return NewAuthService(cfg, AuthDependencies{
		UserRepo:     f.store.Users(),
		AreaRepo:     f.store.Areas(),
		EmployeeRepo: f.store.Employees(),
	})
}

func TestAuthService_EnsureAdminAndLogin(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "root", "super-secret")
	require.NoError(t, err)
	assert.True(t, created)
	created, err = svc.EnsureAdmin(ctx, "root", "super-secret")
	require.NoError(t, err)
	assert.False(t, created)
	created, err = svc.EnsureAdmin(ctx, "nobody", "")
	require.NoError(t, err)
	assert.False(t, created)

	user, token, _, err := svc.Login(ctx, "root", "super-secret")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())
	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	_, _, _, err = svc.Login(ctx, "root", "wrong")
	assertCode(t, err, "UNAUTHORIZED")
	_, _, _, err = svc.Login(ctx, "ghost", "super-secret")
	assertCode(t, err, "UNAUTHORIZED")
}

func TestAuthService_CreateUser(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	ctx := context.Background()

	input := CreateUserInput{Username: "diego", FullName: "Diego", Password: "password1", Role: domain.RoleOperator, EmployeeID: &f.empB.ID}

	_, err := svc.CreateUser(ctx, f.opA1, input)
	assertCode(t, err, errorutil.CodeForbidden)

	user, err := svc.CreateUser(ctx, f.admin, input)
	require.NoError(t, err)
	require.NotNil(t, user.AreaID)
	assert.Equal(t, f.areaB.ID, *user.AreaID, "area is taken from the employee")
	assert.NotEqual(t, "password1", user.PasswordHash)

	_, err = svc.CreateUser(ctx, f.admin, input)
	assertCode(t, err, errorutil.CodeConflict)

	mismatch := input
	mismatch.Username = "erika"
	mismatch.AreaID = &f.areaA.ID
	_, err = svc.CreateUser(ctx, f.admin, mismatch)
	assertCode(t, err, errorutil.CodeReferential)

	short := input
	short.Username = "fabio"
	short.Password = "123"
	_, err = svc.CreateUser(ctx, f.admin, short)
	assertCode(t, err, errorutil.CodeValidation)

	badRole := input
	badRole.Username = "gabi"
	badRole.Role = "Root"
	_, err = svc.CreateUser(ctx, f.admin, badRole)
	assertCode(t, err, errorutil.CodeValidation)
}
