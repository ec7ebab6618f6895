package services

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// ProductService covers the admin-side product operations: create, edit,
// soft delete and stock adjustment.
type ProductService struct {
	products repository.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(products repository.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

// Create adds a product to the catalog.
func (s *ProductService) Create(req models.CreateProductRequest) (*models.Product, error) {
	if req.Name == "" {
		return nil, apperr.Validation("product name is required")
	}
	if req.Price.IsNegative() || req.Price.IsZero() {
		return nil, apperr.Validation("price must be positive")
	}
	if req.Stock < 0 {
		return nil, apperr.Validation("stock must be >= 0")
	}

	product := &models.Product{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
		Stock:       req.Stock,
	}
	if len(req.Tags) > 0 {
		raw, err := json.Marshal(req.Tags)
		if err != nil {
			return nil, apperr.Validation("invalid tags")
		}
		product.Tags = datatypes.JSON(raw)
	}
	if len(req.BoxPrices) > 0 {
		raw, err := json.Marshal(req.BoxPrices)
		if err != nil {
			return nil, apperr.Validation("invalid box prices")
		}
		product.BoxPrices = datatypes.JSON(raw)
	}

	if err := s.products.Create(product); err != nil {
		return nil, apperr.Upstream("insert product", err)
	}
	return product, nil
}

// Update applies a partial edit to a product.
func (s *ProductService) Update(id uuid.UUID, req models.UpdateProductRequest) (*models.Product, error) {
	product, err := s.products.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() || req.Price.IsZero() {
			return nil, apperr.Validation("price must be positive")
		}
		product.Price = *req.Price
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, apperr.Validation("stock must be >= 0")
		}
		product.Stock = *req.Stock
	}

	if err := s.products.Update(product); err != nil {
		return nil, apperr.Upstream("update product", err)
	}
	return product, nil
}

// Delete soft-deletes a product. It disappears from listings but stays
// resolvable for historical order references.
func (s *ProductService) Delete(id uuid.UUID) error {
	return s.products.SoftDelete(id)
}

// SetStock overwrites the stock counter.
func (s *ProductService) SetStock(id uuid.UUID, quantity int) error {
	return s.products.SetStock(id, quantity)
}
