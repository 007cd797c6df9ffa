package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/atlasmedina/medina-backend/pkg/auth"
	"github.com/atlasmedina/medina-backend/pkg/config"
	"github.com/atlasmedina/medina-backend/pkg/db"
	"github.com/atlasmedina/medina-backend/pkg/db/models"
	pkgerrors "github.com/atlasmedina/medina-backend/pkg/errors"
	"github.com/atlasmedina/medina-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// MinPasswordLength applies to newly registered admin accounts.
const MinPasswordLength = 8

// LoginRequest carries admin credentials.
type LoginRequest struct {
	Email    string
	Password string
}

// LoginResponse carries the minted token together with the account summary.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
}

// RegisterRequest carries a new admin account payload.
type RegisterRequest struct {
	Email    string
	Password string
}

// UpdateCredentialsRequest carries a credentials change for the signed-in
// admin. Empty NewEmail or NewPassword leaves the respective field untouched.
type UpdateCredentialsRequest struct {
	UserID          uuid.UUID
	CurrentPassword string
	NewEmail        string
	NewPassword     string
}

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error)
	Create(ctx context.Context, user *models.AdminUser) (*models.AdminUser, error)
	UpdateCredentials(ctx context.Context, id uuid.UUID, email, passwordHash string) error
}

type sessionManager interface {
	Create(ctx context.Context, accessID string) error
	Revoke(ctx context.Context, accessID string) error
}

type accessIDSource func() string

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, accessID string) error
	Register(ctx context.Context, req RegisterRequest) (*models.AdminUser, error)
	UpdateCredentials(ctx context.Context, req UpdateCredentialsRequest) (*models.AdminUser, error)
}

type service struct {
	users       userRepository
	sessions    sessionManager
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	newAccessID accessIDSource
	now         func() time.Time
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	NewAccessID    accessIDSource
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.NewAccessID == nil {
		return nil, fmt.Errorf("access id source is required")
	}
	return &service{
		users:       params.UserRepo,
		sessions:    params.SessionManager,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		newAccessID: params.NewAccessID,
		now:         time.Now,
	}, nil
}

// Login verifies the credentials, opens a server-side session and mints the
// matching access token. Unknown accounts and bad passwords are
// indistinguishable to the caller.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up admin user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	ok, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	accessID := s.newAccessID()
	if err := s.sessions.Create(ctx, accessID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "opening session")
	}

	now := s.now()
	token, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		JTI:    accessID,
	})
	if err != nil {
		_ = s.sessions.Revoke(ctx, accessID)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting token")
	}

	return &LoginResponse{
		Token:     token,
		ExpiresAt: now.Add(time.Duration(s.jwtCfg.ExpirationMinutes) * time.Minute),
		UserID:    user.ID,
		Email:     user.Email,
	}, nil
}

// Logout revokes the server-side session behind the token.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if accessID == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoking session")
	}
	return nil
}

// Register creates an admin account. The route is only mounted outside
// production.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*models.AdminUser, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if len(req.Password) < MinPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	user, err := s.users.Create(ctx, &models.AdminUser{
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an account with this email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating admin user")
	}
	return user, nil
}

// UpdateCredentials changes the email and/or password of the signed-in admin
// once the current password checks out.
func (s *service) UpdateCredentials(ctx context.Context, req UpdateCredentialsRequest) (*models.AdminUser, error) {
	newEmail := strings.ToLower(strings.TrimSpace(req.NewEmail))
	if newEmail == "" && req.NewPassword == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a new email or a new password is required")
	}
	if newEmail != "" {
		if _, err := mail.ParseAddress(newEmail); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
		}
	}
	if req.NewPassword != "" && len(req.NewPassword) < MinPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	user, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up admin user")
	}

	ok, err := security.VerifyPassword(req.CurrentPassword, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	email := user.Email
	if newEmail != "" {
		email = newEmail
	}
	hash := user.PasswordHash
	if req.NewPassword != "" {
		hash, err = security.HashPassword(req.NewPassword, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
		}
	}

	if err := s.users.UpdateCredentials(ctx, user.ID, email, hash); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an account with this email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating admin credentials")
	}

	user.Email = email
	user.PasswordHash = hash
	return user, nil
}
