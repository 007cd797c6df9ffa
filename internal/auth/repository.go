package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atlasmedina/medina-backend/pkg/db/models"
)

// Repository wires together admin user persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByEmail loads the admin user by normalized email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var user models.AdminUser
	err := r.db.WithContext(ctx).
		First(&user, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads the admin user by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error) {
	var user models.AdminUser
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts the admin user.
func (r *Repository) Create(ctx context.Context, user *models.AdminUser) (*models.AdminUser, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateCredentials persists a changed email and password hash.
func (r *Repository) UpdateCredentials(ctx context.Context, id uuid.UUID, email, passwordHash string) error {
	return r.db.WithContext(ctx).Model(&models.AdminUser{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"email":         strings.ToLower(strings.TrimSpace(email)),
			"password_hash": passwordHash,
		}).Error
}
