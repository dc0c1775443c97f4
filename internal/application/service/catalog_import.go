package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sangkips/investify-pos/internal/domain/entity"
	"github.com/sangkips/investify-pos/pkg/apperror"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// CatalogSeed is the YAML document loaded at startup to stock an empty
// store. Prices are in cents.
type CatalogSeed struct {
	Categories []string `yaml:"categories"`
	Suppliers  []struct {
		Name  string `yaml:"name"`
		Phone string `yaml:"phone"`
		Email string `yaml:"email"`
	} `yaml:"suppliers"`
	Customers []struct {
		Name  string `yaml:"name"`
		Phone string `yaml:"phone"`
		Email string `yaml:"email"`
	} `yaml:"customers"`
	Products []struct {
		SKU           string `yaml:"sku"`
		Name          string `yaml:"name"`
		Category      string `yaml:"category"`
		Quantity      int    `yaml:"quantity"`
		QuantityAlert int    `yaml:"quantity_alert"`
		BuyingPrice   int64  `yaml:"buying_price"`
		SellingPrice  int64  `yaml:"selling_price"`
	} `yaml:"products"`
}

// ImportSummary counts the rows an import created.
type ImportSummary struct {
	Categories int
	Suppliers  int
	Customers  int
	Products   int
}

// ParseCatalogSeed decodes a seed document, rejecting unknown keys.
func ParseCatalogSeed(r io.Reader) (*CatalogSeed, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var seed CatalogSeed
	if err := dec.Decode(&seed); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode catalog seed: %w", err)
	}
	return &seed, nil
}

// Import creates the rows of seed that do not exist yet. Categories,
// suppliers and customers match on name, products on SKU, so importing the
// same file twice creates nothing the second time.
func (s *CatalogService) Import(ctx context.Context, seed *CatalogSeed, log *zap.Logger) (*ImportSummary, error) {
	if err := validateSeed(seed); err != nil {
		return nil, err
	}
	summary := &ImportSummary{}

	categories, err := s.categoryRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	categoryIDs := make(map[string]*entity.Category, len(categories))
	for i := range categories {
		categoryIDs[strings.ToLower(categories[i].Name)] = &categories[i]
	}
	for _, name := range seed.Categories {
		if _, ok := categoryIDs[strings.ToLower(name)]; ok {
			continue
		}
		c := &entity.Category{Name: name}
		if err := s.categoryRepo.Create(ctx, c); err != nil {
			return nil, fmt.Errorf("create category %q: %w", name, err)
		}
		categoryIDs[strings.ToLower(name)] = c
		summary.Categories++
	}

	suppliers, err := s.supplierRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	supplierNames := make(map[string]bool, len(suppliers))
	for _, sup := range suppliers {
		supplierNames[strings.ToLower(sup.Name)] = true
	}
	for _, in := range seed.Suppliers {
		if supplierNames[strings.ToLower(in.Name)] {
			continue
		}
		if err := s.supplierRepo.Create(ctx, &entity.Supplier{Name: in.Name, Phone: optional(in.Phone), Email: optional(in.Email)}); err != nil {
			return nil, fmt.Errorf("create supplier %q: %w", in.Name, err)
		}
		supplierNames[strings.ToLower(in.Name)] = true
		summary.Suppliers++
	}

	customers, err := s.customerRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	customerNames := make(map[string]bool, len(customers))
	for _, c := range customers {
		customerNames[strings.ToLower(c.Name)] = true
	}
	for _, in := range seed.Customers {
		if customerNames[strings.ToLower(in.Name)] {
			continue
		}
		if err := s.customerRepo.Create(ctx, &entity.Customer{Name: in.Name, Phone: optional(in.Phone), Email: optional(in.Email)}); err != nil {
			return nil, fmt.Errorf("create customer %q: %w", in.Name, err)
		}
		customerNames[strings.ToLower(in.Name)] = true
		summary.Customers++
	}

	products, err := s.productRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	skus := make(map[string]bool, len(products))
	for _, p := range products {
		skus[p.SKU] = true
	}
	for _, in := range seed.Products {
		if skus[in.SKU] {
			continue
		}
		p := &entity.Product{
			SKU:           in.SKU,
			Name:          in.Name,
			Quantity:      in.Quantity,
			QuantityAlert: in.QuantityAlert,
			BuyingPrice:   in.BuyingPrice,
			SellingPrice:  in.SellingPrice,
		}
		if c, ok := categoryIDs[strings.ToLower(in.Category)]; ok {
			p.CategoryID = &c.ID
		}
		if err := s.productRepo.Create(ctx, p); err != nil {
			return nil, fmt.Errorf("create product %q: %w", in.SKU, err)
		}
		skus[in.SKU] = true
		summary.Products++
	}

	log.Info("catalog imported",
		zap.Int("categories", summary.Categories),
		zap.Int("suppliers", summary.Suppliers),
		zap.Int("customers", summary.Customers),
		zap.Int("products", summary.Products),
	)
	return summary, nil
}

func validateSeed(seed *CatalogSeed) error {
	var errs []apperror.FieldError
	for i, p := range seed.Products {
		field := fmt.Sprintf("products.%d", i)
		switch {
		case strings.TrimSpace(p.SKU) == "":
			errs = append(errs, apperror.FieldError{Field: field + ".sku", Message: "is required"})
		case strings.TrimSpace(p.Name) == "":
			errs = append(errs, apperror.FieldError{Field: field + ".name", Message: "is required"})
		case p.BuyingPrice < 0 || p.SellingPrice < 0:
			errs = append(errs, apperror.FieldError{Field: field, Message: "prices must not be negative"})
		}
	}
	for i, name := range seed.Categories {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, apperror.FieldError{Field: fmt.Sprintf("categories.%d", i), Message: "is required"})
		}
	}
	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
