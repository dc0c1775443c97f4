package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/investify-pos/internal/application/service"
	"github.com/sangkips/investify-pos/internal/contract"
	"github.com/sangkips/investify-pos/internal/presentation/http/dto/response"
)

// StockHandler handles stock adjustments
type StockHandler struct {
	stockService *service.StockService
}

// NewStockHandler creates a new stock handler
func NewStockHandler(stockService *service.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// Adjust applies a stock adjustment. A replayed reference succeeds without
// changing stock.
func (h *StockHandler) Adjust(c *gin.Context) {
	var adj contract.StockAdjustment
	if err := c.ShouldBindJSON(&adj); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	applied, err := h.stockService.Adjust(c.Request.Context(), adj)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !applied {
		response.OK(c, "Stock adjustment already applied", gin.H{"applied": false})
		return
	}
	response.Created(c, "Stock adjusted successfully", gin.H{"applied": true})
}
