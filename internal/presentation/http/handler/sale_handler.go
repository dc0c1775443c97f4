package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/investify-pos/internal/application/service"
	"github.com/sangkips/investify-pos/internal/contract"
	"github.com/sangkips/investify-pos/internal/domain/enum"
	"github.com/sangkips/investify-pos/internal/domain/repository"
	"github.com/sangkips/investify-pos/internal/presentation/http/dto/request"
	"github.com/sangkips/investify-pos/internal/presentation/http/dto/response"
	"github.com/sangkips/investify-pos/internal/presentation/http/middleware"
	"github.com/sangkips/investify-pos/pkg/pagination"
)

// SaleHandler handles sale-related HTTP requests
type SaleHandler struct {
	saleService *service.SaleService
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(saleService *service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// NextReceiptNumber issues a receipt number for a sale about to be created
func (h *SaleHandler) NextReceiptNumber(c *gin.Context) {
	number, err := h.saleService.NextReceiptNumber(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Receipt number issued", contract.ReceiptNumber{ReceiptNumber: number})
}

// Create stores a sale header. The Idempotency-Key header, when sent, must
// match the key in the body.
func (h *SaleHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var in contract.SaleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if header := strings.TrimSpace(c.GetHeader(middleware.IdempotencyKeyHeader)); header != "" && header != in.IdempotencyKey {
		response.BadRequest(c, "Idempotency-Key header does not match the sale")
		return
	}

	sale, created, err := h.saleService.CreateSale(c.Request.Context(), *userID, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !created {
		response.OK(c, "Sale already recorded", response.Sale(*sale))
		return
	}
	response.Created(c, "Sale created successfully", response.Sale(*sale))
}

// Get retrieves a sale by ID
func (h *SaleHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Sale retrieved successfully", response.Sale(*sale))
}

// List handles listing sales
func (h *SaleHandler) List(c *gin.Context) {
	var req request.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.SaleFilterParams{Pagination: paginationFrom(req)}
	if req.Status != "" {
		status, err := enum.ParseSaleStatus(req.Status)
		if err != nil {
			response.BadRequest(c, "Invalid status filter")
			return
		}
		params.Status = &status
	}

	result, err := h.saleService.ListSales(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, "Sales retrieved successfully", pagination.Map(result, response.Sale))
}

// UpdateStatus changes the lifecycle status of a sale
func (h *SaleHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	var req contract.SaleStatusUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	sale, err := h.saleService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Sale status updated", response.Sale(*sale))
}

// AddItems writes the lines of a sale
func (h *SaleHandler) AddItems(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	var items []contract.SaleItemInput
	if err := c.ShouldBindJSON(&items); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	created, err := h.saleService.AddItems(c.Request.Context(), id, items)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !created {
		response.OK(c, "Sale items already recorded", nil)
		return
	}
	response.Created(c, "Sale items created successfully", nil)
}

// ListItems returns the lines of a sale
func (h *SaleHandler) ListItems(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	items, err := h.saleService.ListItems(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Sale items retrieved successfully", response.List(items, response.SaleItem))
}
