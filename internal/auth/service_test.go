package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	pkgauth "github.com/atlasmedina/medina-backend/pkg/auth"
	"github.com/atlasmedina/medina-backend/pkg/config"
	"github.com/atlasmedina/medina-backend/pkg/db/models"
	pkgerrors "github.com/atlasmedina/medina-backend/pkg/errors"
)

type stubSessions struct {
	created []string
	revoked []string
	failing bool
}

func (s *stubSessions) Create(_ context.Context, accessID string) error {
	if s.failing {
		return assert.AnError
	}
	s.created = append(s.created, accessID)
	return nil
}

func (s *stubSessions) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "medina-test",
		ExpirationMinutes: 30,
		SessionTTLMinutes: 60,
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.AdminUser{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return conn
}

func newTestService(t *testing.T) (Service, *stubSessions) {
	t.Helper()

	sessions := &stubSessions{}
	svc, err := NewService(ServiceParams{
		UserRepo:       NewRepository(openTestDB(t)),
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
		PasswordConfig: config.PasswordConfig{},
		NewAccessID:    func() string { return "access-1" },
	})
	require.NoError(t, err)
	return svc, sessions
}

func mustRegister(t *testing.T, svc Service, email, password string) *models.AdminUser {
	t.Helper()
	user, err := svc.Register(context.Background(), RegisterRequest{Email: email, Password: password})
	require.NoError(t, err)
	return user
}

func TestRegisterAndLogin(t *testing.T) {
	svc, sessions := newTestService(t)

	user := mustRegister(t, svc, "Admin@Example.com", "s3cret-pass")
	assert.Equal(t, "admin@example.com", user.Email, "email is normalized")
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "admin@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.UserID)
	assert.Equal(t, []string{"access-1"}, sessions.created)

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "access-1", claims.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, sessions := newTestService(t)
	mustRegister(t, svc, "admin@example.com", "s3cret-pass")

	_, err := svc.Login(context.Background(), LoginRequest{Email: "admin@example.com", Password: "wrong"})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())
	assert.Equal(t, invalidCredentialsMessage, appErr.Message())
	assert.Empty(t, sessions.created)
}

func TestLoginUnknownAccountLooksLikeWrongPassword(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())
	assert.Equal(t, invalidCredentialsMessage, appErr.Message())
}

func TestLoginInactiveAccountRejected(t *testing.T) {
	sessions := &stubSessions{}
	conn := openTestDB(t)
	repo := NewRepository(conn)
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
		PasswordConfig: config.PasswordConfig{},
		NewAccessID:    func() string { return "access-1" },
	})
	require.NoError(t, err)

	user := mustRegister(t, svc, "admin@example.com", "s3cret-pass")
	require.NoError(t, conn.Model(&models.AdminUser{}).
		Where("id = ?", user.ID).
		Update("is_active", false).Error)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "admin@example.com", Password: "s3cret-pass"})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "not-an-email", Password: "s3cret-pass"})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())

	_, err = svc.Register(context.Background(), RegisterRequest{Email: "a@example.com", Password: "short"})
	appErr = pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestRegisterDuplicateEmailIsConflict(t *testing.T) {
	svc, _ := newTestService(t)
	mustRegister(t, svc, "admin@example.com", "s3cret-pass")

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "admin@example.com", Password: "s3cret-pass"})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())
}

func TestUpdateCredentialsRotatesEmailAndPassword(t *testing.T) {
	svc, _ := newTestService(t)
	user := mustRegister(t, svc, "admin@example.com", "s3cret-pass")

	updated, err := svc.UpdateCredentials(context.Background(), UpdateCredentialsRequest{
		UserID:          user.ID,
		CurrentPassword: "s3cret-pass",
		NewEmail:        "Owner@Example.com",
		NewPassword:     "brand-new-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", updated.Email, "email is normalized")

	_, err = svc.Login(context.Background(), LoginRequest{Email: "admin@example.com", Password: "s3cret-pass"})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "owner@example.com", Password: "brand-new-pass"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.UserID)
}

func TestUpdateCredentialsWrongCurrentPassword(t *testing.T) {
	svc, _ := newTestService(t)
	user := mustRegister(t, svc, "admin@example.com", "s3cret-pass")

	_, err := svc.UpdateCredentials(context.Background(), UpdateCredentialsRequest{
		UserID:          user.ID,
		CurrentPassword: "wrong",
		NewPassword:     "brand-new-pass",
	})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())
	assert.Equal(t, invalidCredentialsMessage, appErr.Message())

	_, err = svc.Login(context.Background(), LoginRequest{Email: "admin@example.com", Password: "s3cret-pass"})
	require.NoError(t, err, "old password still works")
}

func TestUpdateCredentialsValidation(t *testing.T) {
	svc, _ := newTestService(t)
	user := mustRegister(t, svc, "admin@example.com", "s3cret-pass")

	_, err := svc.UpdateCredentials(context.Background(), UpdateCredentialsRequest{
		UserID:          user.ID,
		CurrentPassword: "s3cret-pass",
	})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code(), "no change requested")

	_, err = svc.UpdateCredentials(context.Background(), UpdateCredentialsRequest{
		UserID:          user.ID,
		CurrentPassword: "s3cret-pass",
		NewEmail:        "not-an-email",
	})
	appErr = pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())

	_, err = svc.UpdateCredentials(context.Background(), UpdateCredentialsRequest{
		UserID:          user.ID,
		CurrentPassword: "s3cret-pass",
		NewPassword:     "short",
	})
	appErr = pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestUpdateCredentialsDuplicateEmailIsConflict(t *testing.T) {
	svc, _ := newTestService(t)
	mustRegister(t, svc, "taken@example.com", "s3cret-pass")
	user := mustRegister(t, svc, "admin@example.com", "s3cret-pass")

	_, err := svc.UpdateCredentials(context.Background(), UpdateCredentialsRequest{
		UserID:          user.ID,
		CurrentPassword: "s3cret-pass",
		NewEmail:        "taken@example.com",
	})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, sessions := newTestService(t)

	require.NoError(t, svc.Logout(context.Background(), "access-1"))
	assert.Equal(t, []string{"access-1"}, sessions.revoked)

	err := svc.Logout(context.Background(), "")
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())
}
