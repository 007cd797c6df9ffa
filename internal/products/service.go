package products

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/atlasmedina/medina-backend/internal/pricing"
	"github.com/atlasmedina/medina-backend/pkg/db"
	"github.com/atlasmedina/medina-backend/pkg/db/models"
	pkgerrors "github.com/atlasmedina/medina-backend/pkg/errors"
	"github.com/atlasmedina/medina-backend/pkg/storage"
)

type imageStore interface {
	Upload(ctx context.Context, objectPath string, body io.Reader, contentType string) error
	Delete(ctx context.Context, objectPaths ...string) error
	PublicURL(objectPath string) string
}

// CreateProductInput captures the payload for a new product.
type CreateProductInput struct {
	Name         string
	Description  string
	Price        decimal.Decimal
	Promo        *string
	IsBestSeller bool
	CategoryID   *uuid.UUID
	Stock        int
	IsActive     bool
}

// UpdateProductInput captures the editable fields of a product. Nil fields
// are left unchanged.
type UpdateProductInput struct {
	Name         *string
	Description  *string
	Price        *decimal.Decimal
	Promo        *string
	ClearPromo   bool
	IsBestSeller *bool
	CategoryID   *uuid.UUID
	ClearCat     bool
	Stock        *int
	IsActive     *bool
}

// ImageUpload is one incoming product image.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// View is a product as served to clients, with resolved image URLs and the
// price after promotion.
type View struct {
	models.Product
	ImageURLs  []string        `json:"image_urls"`
	FinalPrice decimal.Decimal `json:"final_price"`
}

// Service exposes catalog reads and back-office product management.
type Service interface {
	ListStorefront(ctx context.Context, filter ListFilter) ([]View, error)
	GetStorefront(ctx context.Context, id uuid.UUID) (*View, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)

	ListAdmin(ctx context.Context) ([]View, error)
	GetAdmin(ctx context.Context, id uuid.UUID) (*View, error)
	Create(ctx context.Context, input CreateProductInput) (*View, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*View, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AttachImages(ctx context.Context, id uuid.UUID, uploads []ImageUpload) (*View, error)
	RemoveImage(ctx context.Context, id uuid.UUID, objectPath string) (*View, error)
}

type service struct {
	repo   *Repository
	images imageStore
}

// NewService builds a product service backed by the provided stack.
func NewService(repo *Repository, images imageStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if images == nil {
		return nil, fmt.Errorf("image store required")
	}
	return &service{repo: repo, images: images}, nil
}

func (s *service) ListStorefront(ctx context.Context, filter ListFilter) ([]View, error) {
	rows, err := s.repo.ListActive(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return s.views(rows), nil
}

func (s *service) GetStorefront(ctx context.Context, id uuid.UUID) (*View, error) {
	product, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	v := s.view(*product)
	return &v, nil
}

func (s *service) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	return s.repo.ListByIDs(ctx, ids)
}

func (s *service) ListAdmin(ctx context.Context) ([]View, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return s.views(rows), nil
}

func (s *service) GetAdmin(ctx context.Context, id uuid.UUID) (*View, error) {
	product, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	v := s.view(*product)
	return &v, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*View, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
	}

	product := &models.Product{
		Name:         name,
		Description:  input.Description,
		Price:        input.Price.Round(2),
		Promo:        input.Promo,
		IsBestSeller: input.IsBestSeller,
		CategoryID:   input.CategoryID,
		Images:       pq.StringArray{},
		Stock:        input.Stock,
		IsActive:     input.IsActive,
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a product with this name already exists")
		}
		return nil, fmt.Errorf("creating product: %w", err)
	}

	v := s.view(*created)
	return &v, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*View, error) {
	product, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
		}
		product.Price = input.Price.Round(2)
	}
	if input.ClearPromo {
		product.Promo = nil
	} else if input.Promo != nil {
		product.Promo = input.Promo
	}
	if input.IsBestSeller != nil {
		product.IsBestSeller = *input.IsBestSeller
	}
	if input.ClearCat {
		product.CategoryID = nil
	} else if input.CategoryID != nil {
		product.CategoryID = input.CategoryID
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
		}
		product.Stock = *input.Stock
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	// Save would try to upsert the preloaded association
	product.Category = nil

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a product with this name already exists")
		}
		return nil, fmt.Errorf("updating product: %w", err)
	}

	v := s.view(*updated)
	return &v, nil
}

// Delete removes the product and then its stored images. Image cleanup is
// best effort; a storage failure does not resurrect the row.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}

	if len(product.Images) > 0 {
		_ = s.images.Delete(ctx, product.Images...)
	}
	return nil
}

func (s *service) AttachImages(ctx context.Context, id uuid.UUID, uploads []ImageUpload) (*View, error) {
	if len(uploads) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one image is required")
	}

	product, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	for _, upload := range uploads {
		objectPath, err := storage.ObjectName(upload.Filename)
		if err != nil {
			return nil, fmt.Errorf("naming image: %w", err)
		}
		if err := s.images.Upload(ctx, objectPath, upload.Body, upload.ContentType); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "uploading image failed")
		}
		product.Images = append(product.Images, objectPath)
	}

	product.Category = nil
	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("saving product images: %w", err)
	}

	v := s.view(*updated)
	return &v, nil
}

func (s *service) RemoveImage(ctx context.Context, id uuid.UUID, objectPath string) (*View, error) {
	if objectPath == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image path is required")
	}

	product, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	kept := make(pq.StringArray, 0, len(product.Images))
	found := false
	for _, img := range product.Images {
		if img == objectPath {
			found = true
			continue
		}
		kept = append(kept, img)
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "image not found on product")
	}

	product.Images = kept
	product.Category = nil
	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("saving product images: %w", err)
	}

	_ = s.images.Delete(ctx, objectPath)

	v := s.view(*updated)
	return &v, nil
}

func (s *service) get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, fmt.Errorf("loading product: %w", err)
	}
	return product, nil
}

func (s *service) view(p models.Product) View {
	urls := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		urls = append(urls, s.images.PublicURL(img))
	}
	if len(urls) == 0 {
		urls = append(urls, s.images.PublicURL(""))
	}
	return View{
		Product:    p,
		ImageURLs:  urls,
		FinalPrice: pricing.UnitPrice(p.Price, p.Promo),
	}
}

func (s *service) views(rows []models.Product) []View {
	out := make([]View, 0, len(rows))
	for _, p := range rows {
		out = append(out, s.view(p))
	}
	return out
}
