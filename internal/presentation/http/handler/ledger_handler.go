package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/investify-pos/internal/application/service"
	"github.com/sangkips/investify-pos/internal/contract"
	"github.com/sangkips/investify-pos/internal/domain/enum"
	"github.com/sangkips/investify-pos/internal/domain/repository"
	"github.com/sangkips/investify-pos/internal/presentation/http/dto/request"
	"github.com/sangkips/investify-pos/internal/presentation/http/dto/response"
	"github.com/sangkips/investify-pos/pkg/pagination"
)

// LedgerHandler handles cash box entries and credit records
type LedgerHandler struct {
	ledgerService *service.LedgerService
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(ledgerService *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

func (h *LedgerHandler) PostCashEntry(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var in contract.CashEntryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	entry, created, err := h.ledgerService.PostCashEntry(c.Request.Context(), *userID, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !created {
		response.OK(c, "Cash entry already recorded", nil)
		return
	}
	response.Created(c, "Cash entry recorded", response.CashEntry(*entry))
}

func (h *LedgerHandler) ListCashEntries(c *gin.Context) {
	var req request.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.ledgerService.ListCashEntries(c.Request.Context(), paginationFrom(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, "Cash entries retrieved successfully", pagination.Map(result, response.CashEntry))
}

func (h *LedgerHandler) CreateCreditRecord(c *gin.Context) {
	var in contract.CreditRecordInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	record, created, err := h.ledgerService.CreateCreditRecord(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !created {
		response.OK(c, "Credit record already exists", response.CreditRecord(*record))
		return
	}
	response.Created(c, "Credit record created", response.CreditRecord(*record))
}

func (h *LedgerHandler) GetCreditRecord(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid credit record ID")
		return
	}

	record, err := h.ledgerService.GetCreditRecord(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Credit record retrieved successfully", response.CreditRecord(*record))
}

func (h *LedgerHandler) UpdateCreditRecord(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid credit record ID")
		return
	}

	var upd contract.CreditUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	record, err := h.ledgerService.UpdateCreditRecord(c.Request.Context(), id, upd)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Credit record updated", response.CreditRecord(*record))
}

func (h *LedgerHandler) ListCreditRecords(c *gin.Context) {
	var req request.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.CreditFilterParams{Pagination: paginationFrom(req)}
	if req.Status != "" {
		status, err := enum.ParseCreditStatus(req.Status)
		if err != nil {
			response.BadRequest(c, "Invalid status filter")
			return
		}
		params.Status = &status
	}

	result, err := h.ledgerService.ListCreditRecords(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, "Credit records retrieved successfully", pagination.Map(result, response.CreditRecord))
}
