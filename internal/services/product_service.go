package services

import (
	"context"
	"fmt"
	"log/slog"

	"orderdesk/internal/common"
	"orderdesk/internal/models"
	"orderdesk/internal/repositories"
)

// ProductService defines product catalogue operations
type ProductService interface {
	CreateProduct(ctx context.Context, input models.ProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	UpdateProduct(ctx context.Context, id int64, input models.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type productService struct {
	productRepo repositories.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(productRepo repositories.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func validateProduct(input models.ProductInput) error {
	if err := common.ValidateRequiredString(input.Name, "name"); err != nil {
		return err
	}
	return common.ValidateNonNegativeFloat(input.Price, "price")
}

func (s *productService) CreateProduct(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	if err := validateProduct(input); err != nil {
		return nil, err
	}
	product := &models.Product{Name: input.Name, Price: input.Price}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

func (s *productService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

func (s *productService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.productRepo.List(ctx)
}

// UpdateProduct changes a product's name and list price. Prices already
// snapshotted on order items are not affected.
func (s *productService) UpdateProduct(ctx context.Context, id int64, input models.ProductInput) (*models.Product, error) {
	if err := validateProduct(input); err != nil {
		return nil, err
	}
	product := &models.Product{ID: id, Name: input.Name, Price: input.Price}
	found, err := s.productRepo.Update(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	if !found {
		return nil, common.ErrNotFound
	}
	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id int64) error {
	found, err := s.productRepo.Delete(ctx, id)
	if common.IsForeignKeyViolation(err) {
		slog.InfoContext(ctx, "product still referenced by order items", "product_id", id)
		return fmt.Errorf("%w: product %d is referenced by order items", common.ErrConflict, id)
	}
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if !found {
		return common.ErrNotFound
	}
	return nil
}
