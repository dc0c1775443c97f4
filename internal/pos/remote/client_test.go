package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/contract"
	"github.com/sangkips/investify-pos/internal/domain/enum"
	"github.com/sangkips/investify-pos/pkg/apperror"
	"github.com/sangkips/investify-pos/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeEnvelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": status < 300, "message": "ok", "data": data})
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", "secret-token", 2*time.Second, zap.NewNop())
}

func TestCreateSaleSendsTokenAndIdempotencyKey(t *testing.T) {
	var gotAuth, gotKey string
	var gotBody contract.SaleInput
	saleID := uuid.New()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/sales", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get(IdempotencyHeader)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeEnvelope(w, http.StatusCreated, contract.Sale{ID: saleID, ReceiptNumber: gotBody.ReceiptNumber, Total: gotBody.Total})
	})
	c := newTestClient(t, mux)

	in := contract.SaleInput{
		IdempotencyKey: "key-1",
		ReceiptNumber:  "RCP-20261014-0007",
		ActorID:        uuid.New(),
		Subtotal:       1000,
		TaxRate:        decimal.NewFromInt(16),
		TaxAmount:      160,
		Total:          1160,
		PaymentMethod:  enum.PaymentMethodCash,
	}
	sale, err := c.CreateSale(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "key-1", gotKey)
	assert.True(t, gotBody.TaxRate.Equal(decimal.NewFromInt(16)))
	assert.Equal(t, saleID, sale.ID)
	assert.Equal(t, int64(1160), sale.Total)
}

func TestValidationFailureIsRemoteError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/credit-records", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "Validation failed",
			"errors":  []apperror.FieldError{{Field: "customer_name", Message: "is required"}},
		})
	})
	c := newTestClient(t, mux)

	_, err := c.PostCreditRecord(context.Background(), contract.CreditRecordInput{SaleID: uuid.New()})
	require.Error(t, err)
	assert.True(t, apperror.IsRemote(err))
	assert.True(t, apperror.IsValidation(err))

	var re *apperror.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusUnprocessableEntity, re.StatusCode)
	assert.Equal(t, "postCreditRecord", re.Op)
}

func TestNoContentIsSuccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/sales/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, mux)

	assert.NoError(t, c.UpdateSaleStatus(context.Background(), uuid.New(), enum.SaleStatusVoided))
}

func TestListSalesWalksPages(t *testing.T) {
	var pages []string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/sales", func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		pages = append(pages, r.URL.Query().Get("page"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		items := []contract.Sale{{ID: uuid.New(), ReceiptNumber: "RCP-" + strconv.Itoa(page)}}
		writeEnvelope(w, http.StatusOK, pagination.NewPaginatedResult(items, pagination.NewPagination(page, 1, 3)))
	})
	c := newTestClient(t, mux)

	sales, err := c.ListSales(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, pages)
	require.Len(t, sales, 3)
	assert.Equal(t, "RCP-3", sales[2].ReceiptNumber)
}

func TestCurrentActorRequiresIdentity(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/profile", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{})
	})
	c := newTestClient(t, mux)

	_, err := c.CurrentActor(context.Background())
	assert.True(t, apperror.IsRemote(err))
}

func TestUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, "", time.Second, zap.NewNop())
	err := c.Ping(context.Background())
	require.Error(t, err)
	assert.True(t, apperror.IsRemote(err))
}
