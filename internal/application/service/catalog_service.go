package service

import (
	"context"

	"github.com/sangkips/investify-pos/internal/domain/entity"
	"github.com/sangkips/investify-pos/internal/domain/repository"
)

// CatalogService serves the reference data terminals cache locally
type CatalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	customerRepo repository.CustomerRepository
	supplierRepo repository.SupplierRepository
	userRepo     repository.UserRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	customerRepo repository.CustomerRepository,
	supplierRepo repository.SupplierRepository,
	userRepo repository.UserRepository,
) *CatalogService {
	return &CatalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		customerRepo: customerRepo,
		supplierRepo: supplierRepo,
		userRepo:     userRepo,
	}
}

func (s *CatalogService) Products(ctx context.Context) ([]entity.Product, error) {
	return s.productRepo.ListAll(ctx)
}

func (s *CatalogService) Categories(ctx context.Context) ([]entity.Category, error) {
	return s.categoryRepo.ListAll(ctx)
}

func (s *CatalogService) Customers(ctx context.Context) ([]entity.Customer, error) {
	return s.customerRepo.ListAll(ctx)
}

func (s *CatalogService) Suppliers(ctx context.Context) ([]entity.Supplier, error) {
	return s.supplierRepo.ListAll(ctx)
}

// Profiles lists staff profiles with their roles.
func (s *CatalogService) Profiles(ctx context.Context) ([]entity.User, error) {
	return s.userRepo.ListAll(ctx)
}
