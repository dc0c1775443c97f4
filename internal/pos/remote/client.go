package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/contract"
	"github.com/sangkips/investify-pos/internal/domain/enum"
	"github.com/sangkips/investify-pos/pkg/apperror"
	"github.com/sangkips/investify-pos/pkg/pagination"
	"go.uber.org/zap"
)

// IdempotencyHeader carries the client token for write requests.
const IdempotencyHeader = "Idempotency-Key"

// envelope mirrors the API response wrapper of the store of record.
type envelope struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Data    json.RawMessage       `json:"data"`
	Errors  []apperror.FieldError `json:"errors"`
}

// Client talks to the store of record over its JSON API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *zap.Logger
}

var _ Store = (*Client)(nil)

func NewClient(baseURL, token string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

type request struct {
	op             string
	method         string
	path           string
	query          url.Values
	body           any
	idempotencyKey string
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return apperror.NewRemoteError(r.op, err)
		}
		body = bytes.NewReader(data)
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return apperror.NewRemoteError(r.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if r.idempotencyKey != "" {
		req.Header.Set(IdempotencyHeader, r.idempotencyKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return apperror.NewRemoteError(r.op, err)
	}
	defer resp.Body.Close()
	c.log.Debug("remote call",
		zap.String("op", r.op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && err != io.EOF {
		return &apperror.RemoteError{Op: r.op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if resp.StatusCode >= 300 || (!env.Success && resp.StatusCode != http.StatusNoContent) {
		if resp.StatusCode == http.StatusUnprocessableEntity && len(env.Errors) > 0 {
			return &apperror.RemoteError{Op: r.op, StatusCode: resp.StatusCode, Message: env.Message, Err: apperror.NewValidationError(env.Errors)}
		}
		return &apperror.RemoteError{Op: r.op, StatusCode: resp.StatusCode, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &apperror.RemoteError{Op: r.op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode data: %w", err)}
		}
	}
	return nil
}

// Ping checks the health endpoint. It is what the connectivity monitor probes.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, request{op: "ping", method: http.MethodGet, path: "/health"}, nil)
}

func (c *Client) GenerateReceiptNumber(ctx context.Context) (string, error) {
	var out contract.ReceiptNumber
	err := c.do(ctx, request{op: "generateReceiptNumber", method: http.MethodPost, path: "/api/v1/receipt-numbers"}, &out)
	if err == nil && out.ReceiptNumber == "" {
		err = &apperror.RemoteError{Op: "generateReceiptNumber", Message: "empty receipt number"}
	}
	return out.ReceiptNumber, err
}

func (c *Client) CurrentActor(ctx context.Context) (contract.Profile, error) {
	var out contract.Profile
	err := c.do(ctx, request{op: "getCurrentActor", method: http.MethodGet, path: "/api/v1/profile"}, &out)
	if err == nil && out.ID == uuid.Nil {
		err = &apperror.RemoteError{Op: "getCurrentActor", Message: "no authenticated actor"}
	}
	return out, err
}

func (c *Client) CreateSale(ctx context.Context, in contract.SaleInput) (contract.Sale, error) {
	var out contract.Sale
	err := c.do(ctx, request{
		op:             "createSale",
		method:         http.MethodPost,
		path:           "/api/v1/sales",
		body:           in,
		idempotencyKey: in.IdempotencyKey,
	}, &out)
	return out, err
}

func (c *Client) CreateSaleItems(ctx context.Context, saleID uuid.UUID, items []contract.SaleItemInput) error {
	return c.do(ctx, request{
		op:     "createSaleItems",
		method: http.MethodPost,
		path:   "/api/v1/sales/" + saleID.String() + "/items",
		body:   items,
	}, nil)
}

func (c *Client) AdjustStock(ctx context.Context, adj contract.StockAdjustment) error {
	return c.do(ctx, request{
		op:             "adjustStock",
		method:         http.MethodPost,
		path:           "/api/v1/stock-adjustments",
		body:           adj,
		idempotencyKey: adj.Reference,
	}, nil)
}

func (c *Client) PostCashEntry(ctx context.Context, in contract.CashEntryInput) error {
	return c.do(ctx, request{
		op:             "postCashEntry",
		method:         http.MethodPost,
		path:           "/api/v1/cash-entries",
		body:           in,
		idempotencyKey: in.Reference,
	}, nil)
}

func (c *Client) PostCreditRecord(ctx context.Context, in contract.CreditRecordInput) (contract.CreditRecord, error) {
	var out contract.CreditRecord
	err := c.do(ctx, request{op: "postCreditRecord", method: http.MethodPost, path: "/api/v1/credit-records", body: in}, &out)
	return out, err
}

func (c *Client) GetCreditRecord(ctx context.Context, id uuid.UUID) (contract.CreditRecord, error) {
	var out contract.CreditRecord
	err := c.do(ctx, request{op: "getCreditRecord", method: http.MethodGet, path: "/api/v1/credit-records/" + id.String()}, &out)
	return out, err
}

func (c *Client) UpdateCreditRecord(ctx context.Context, id uuid.UUID, update contract.CreditUpdate) (contract.CreditRecord, error) {
	var out contract.CreditRecord
	err := c.do(ctx, request{
		op:     "updateCreditRecord",
		method: http.MethodPut,
		path:   "/api/v1/credit-records/" + id.String(),
		body:   update,
	}, &out)
	return out, err
}

func (c *Client) UpdateSaleStatus(ctx context.Context, saleID uuid.UUID, status enum.SaleStatus) error {
	return c.do(ctx, request{
		op:     "updateSaleStatus",
		method: http.MethodPut,
		path:   "/api/v1/sales/" + saleID.String() + "/status",
		body:   contract.SaleStatusUpdate{Status: status},
	}, nil)
}

func (c *Client) ListSaleItems(ctx context.Context, saleID uuid.UUID) ([]contract.SaleItem, error) {
	var out []contract.SaleItem
	err := c.do(ctx, request{op: "listSaleItems", method: http.MethodGet, path: "/api/v1/sales/" + saleID.String() + "/items"}, &out)
	return out, err
}

func (c *Client) ListProducts(ctx context.Context) ([]contract.Product, error) {
	return list[contract.Product](ctx, c, "listProducts", "/api/v1/products")
}

func (c *Client) ListCategories(ctx context.Context) ([]contract.Category, error) {
	return list[contract.Category](ctx, c, "listCategories", "/api/v1/categories")
}

func (c *Client) ListCustomers(ctx context.Context) ([]contract.Customer, error) {
	return list[contract.Customer](ctx, c, "listCustomers", "/api/v1/customers")
}

func (c *Client) ListSuppliers(ctx context.Context) ([]contract.Supplier, error) {
	return list[contract.Supplier](ctx, c, "listSuppliers", "/api/v1/suppliers")
}

func (c *Client) ListProfiles(ctx context.Context) ([]contract.Profile, error) {
	return list[contract.Profile](ctx, c, "listProfiles", "/api/v1/profiles")
}

func (c *Client) ListSales(ctx context.Context) ([]contract.Sale, error) {
	return walk[contract.Sale](ctx, c, "listSales", "/api/v1/sales")
}

func (c *Client) ListCashEntries(ctx context.Context) ([]contract.CashEntry, error) {
	return walk[contract.CashEntry](ctx, c, "listCashEntries", "/api/v1/cash-entries")
}

func (c *Client) ListCreditRecords(ctx context.Context) ([]contract.CreditRecord, error) {
	return walk[contract.CreditRecord](ctx, c, "listCreditRecords", "/api/v1/credit-records")
}

func list[T any](ctx context.Context, c *Client, op, path string) ([]T, error) {
	var out []T
	if err := c.do(ctx, request{op: op, method: http.MethodGet, path: path}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// walk fetches every page of a paginated collection.
func walk[T any](ctx context.Context, c *Client, op, path string) ([]T, error) {
	params := &pagination.PaginationParams{Page: 1, PerPage: pagination.MaxPerPage}
	var all []T
	for {
		q := url.Values{}
		params.Encode(q)
		var page pagination.PaginatedResult[T]
		if err := c.do(ctx, request{op: op, method: http.MethodGet, path: path, query: q}, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if page.Pagination == nil || !page.Pagination.HasNext {
			return all, nil
		}
		params.Page++
	}
}
