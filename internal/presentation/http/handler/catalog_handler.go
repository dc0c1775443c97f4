package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/investify-pos/internal/application/service"
	"github.com/sangkips/investify-pos/internal/presentation/http/dto/response"
)

// CatalogHandler serves the full reference lists terminals cache
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) Products(c *gin.Context) {
	products, err := h.catalogService.Products(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Products retrieved successfully", response.List(products, response.Product))
}

func (h *CatalogHandler) Categories(c *gin.Context) {
	categories, err := h.catalogService.Categories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Categories retrieved successfully", response.List(categories, response.Category))
}

func (h *CatalogHandler) Customers(c *gin.Context) {
	customers, err := h.catalogService.Customers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Customers retrieved successfully", response.List(customers, response.Customer))
}

func (h *CatalogHandler) Suppliers(c *gin.Context) {
	suppliers, err := h.catalogService.Suppliers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Suppliers retrieved successfully", response.List(suppliers, response.Supplier))
}

func (h *CatalogHandler) Profiles(c *gin.Context) {
	users, err := h.catalogService.Profiles(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Profiles retrieved successfully", response.List(users, response.Profile))
}
