package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atlasmedina/medina-backend/pkg/db"
	"github.com/atlasmedina/medina-backend/pkg/db/models"
	pkgerrors "github.com/atlasmedina/medina-backend/pkg/errors"
)

// DeleteMode controls what happens to a category's products on delete.
type DeleteMode string

const (
	// DeleteModeAbort refuses the delete while products still reference the
	// category. This is the default.
	DeleteModeAbort DeleteMode = "abort"
	// DeleteModeCascade deletes the category's products along with it.
	DeleteModeCascade DeleteMode = "cascade"
	// DeleteModeDetach keeps the products and clears their category.
	DeleteModeDetach DeleteMode = "detach"
)

// ParseDeleteMode maps the query value onto a mode, defaulting to abort.
func ParseDeleteMode(raw string) (DeleteMode, error) {
	switch DeleteMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", DeleteModeAbort:
		return DeleteModeAbort, nil
	case DeleteModeCascade:
		return DeleteModeCascade, nil
	case DeleteModeDetach:
		return DeleteModeDetach, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, "delete mode must be abort, cascade or detach")
	}
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type imageRemover interface {
	Delete(ctx context.Context, objectPaths ...string) error
}

// CategoryInput captures the payload for creating or updating a category.
type CategoryInput struct {
	Name        string
	Description *string
	IsActive    *bool
}

// Service exposes catalog category reads and back-office management.
type Service interface {
	ListStorefront(ctx context.Context) ([]models.Category, error)
	ListAdmin(ctx context.Context) ([]models.Category, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Create(ctx context.Context, input CategoryInput) (*models.Category, error)
	Update(ctx context.Context, id uuid.UUID, input CategoryInput) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID, mode DeleteMode) error
}

type service struct {
	repo   *Repository
	tx     txRunner
	images imageRemover
}

// NewService builds a category service backed by the provided stack.
func NewService(repo *Repository, tx txRunner, images imageRemover) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if images == nil {
		return nil, fmt.Errorf("image store required")
	}
	return &service{repo: repo, tx: tx, images: images}, nil
}

func (s *service) ListStorefront(ctx context.Context) ([]models.Category, error) {
	return s.repo.ListActive(ctx)
}

func (s *service) ListAdmin(ctx context.Context) ([]models.Category, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.get(ctx, id)
}

func (s *service) Create(ctx context.Context, input CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}

	category := &models.Category{
		Name:        name,
		Description: input.Description,
		IsActive:    true,
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}

	created, err := s.repo.Create(ctx, category)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a category with this name already exists")
		}
		return nil, fmt.Errorf("creating category: %w", err)
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input CategoryInput) (*models.Category, error) {
	category, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		category.Name = name
	}
	if input.Description != nil {
		category.Description = input.Description
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}

	updated, err := s.repo.Update(ctx, category)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a category with this name already exists")
		}
		return nil, fmt.Errorf("updating category: %w", err)
	}
	return updated, nil
}

// Delete removes the category according to the mode. Cascade and detach run
// inside one transaction so a partial delete can never leave orphans; image
// cleanup for cascaded products happens after commit, best effort.
func (s *service) Delete(ctx context.Context, id uuid.UUID, mode DeleteMode) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}

	var orphanImages []string

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		count, err := repo.CountProducts(ctx, id)
		if err != nil {
			return fmt.Errorf("counting category products: %w", err)
		}

		switch mode {
		case DeleteModeCascade:
			if count > 0 {
				products, err := repo.ListProducts(ctx, id)
				if err != nil {
					return fmt.Errorf("listing category products: %w", err)
				}
				for _, p := range products {
					orphanImages = append(orphanImages, p.Images...)
				}
				if err := repo.DeleteProducts(ctx, id); err != nil {
					return fmt.Errorf("deleting category products: %w", err)
				}
			}

		case DeleteModeDetach:
			if count > 0 {
				if err := repo.DetachProducts(ctx, id); err != nil {
					return fmt.Errorf("detaching category products: %w", err)
				}
			}

		default:
			if count > 0 {
				return pkgerrors.New(pkgerrors.CodeConflict, "category still has products").
					WithDetails(map[string]any{"product_count": count})
			}
		}

		return repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	if len(orphanImages) > 0 {
		_ = s.images.Delete(ctx, orphanImages...)
	}
	return nil
}

func (s *service) get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, fmt.Errorf("loading category: %w", err)
	}
	return category, nil
}
