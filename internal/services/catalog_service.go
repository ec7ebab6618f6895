package services

import (
	"github.com/google/uuid"

	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// CatalogService reads products for the storefront. No caching beyond
// "fetch fresh"; the fixture data source covers the unconfigured-backend
// case at the repository level.
type CatalogService struct {
	products repository.ProductRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(products repository.ProductRepository) *CatalogService {
	return &CatalogService{products: products}
}

// List returns catalog products, optionally filtered by category.
func (s *CatalogService) List(category string, page, limit int) ([]models.Product, int64, error) {
	return s.products.List(repository.ProductFilters{
		Category: category,
		Page:     page,
		Limit:    limit,
	})
}

// Get returns a single product.
func (s *CatalogService) Get(id uuid.UUID) (*models.Product, error) {
	return s.products.GetByID(id)
}
