package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/contract"
	"github.com/sangkips/investify-pos/internal/domain/entity"
	"github.com/sangkips/investify-pos/internal/domain/enum"
	"github.com/sangkips/investify-pos/internal/domain/repository"
	"github.com/sangkips/investify-pos/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type ledgerFixture struct {
	st     *memStore
	svc    *LedgerService
	credit *entity.Sale
	cash   *entity.Sale
	now    time.Time
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	st := newMemStore()
	f := &ledgerFixture{
		st:  st,
		svc: NewLedgerService(fakeCashRepo{st}, fakeCreditRepo{st}, fakeSaleRepo{st}, zap.NewNop()),
		now: time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC),
	}
	f.svc.now = func() time.Time { return f.now }

	sales := fakeSaleRepo{st}
	f.credit = &entity.Sale{IdempotencyKey: "credit", ReceiptNumber: "RCP-1", PaymentMethod: enum.PaymentMethodCredit, Status: enum.SaleStatusCredit, Total: 464, CustomerName: "Wanjiru"}
	f.cash = &entity.Sale{IdempotencyKey: "cash", ReceiptNumber: "RCP-2", PaymentMethod: enum.PaymentMethodCash, Total: 464}
	_, err := sales.Create(context.Background(), f.credit)
	require.NoError(t, err)
	_, err = sales.Create(context.Background(), f.cash)
	require.NoError(t, err)
	return f
}

func (f *ledgerFixture) openCredit(t *testing.T) *entity.CreditRecord {
	t.Helper()
	rec, created, err := f.svc.CreateCreditRecord(context.Background(), contract.CreditRecordInput{
		SaleID: f.credit.ID, CustomerName: "Wanjiru", TotalOwed: 464,
	})
	require.NoError(t, err)
	require.True(t, created)
	return rec
}

func TestPostCashEntryDeduplicatesReference(t *testing.T) {
	f := newLedgerFixture(t)
	actor := uuid.New()
	in := contract.CashEntryInput{SaleID: f.cash.ID, Amount: 464, Type: enum.CashEntrySale, Reference: "cash:cash"}

	entry, created, err := f.svc.PostCashEntry(context.Background(), actor, in)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, actor, entry.ActorID)

	_, created, err = f.svc.PostCashEntry(context.Background(), actor, in)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, f.st.cash, 1)

	in.Reference = ""
	_, _, err = f.svc.PostCashEntry(context.Background(), actor, in)
	require.NoError(t, err)
	_, _, err = f.svc.PostCashEntry(context.Background(), actor, in)
	require.NoError(t, err)
	assert.Len(t, f.st.cash, 3)
}

func TestPostCashEntryRejectsUnknownSale(t *testing.T) {
	f := newLedgerFixture(t)
	_, _, err := f.svc.PostCashEntry(context.Background(), uuid.New(), contract.CashEntryInput{SaleID: uuid.New(), Amount: 1})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestCreateCreditRecordOncePerSale(t *testing.T) {
	f := newLedgerFixture(t)
	rec := f.openCredit(t)
	assert.Equal(t, int64(464), rec.Balance)
	assert.Equal(t, enum.CreditStatusPending, rec.Status)

	again, created, err := f.svc.CreateCreditRecord(context.Background(), contract.CreditRecordInput{
		SaleID: f.credit.ID, CustomerName: "Wanjiru", TotalOwed: 464,
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, rec.ID, again.ID)

	_, _, err = f.svc.CreateCreditRecord(context.Background(), contract.CreditRecordInput{
		SaleID: f.cash.ID, CustomerName: "Wanjiru", TotalOwed: 464,
	})
	assert.True(t, apperror.IsValidation(err))
}

func TestUpdateCreditRecordLifecycle(t *testing.T) {
	f := newLedgerFixture(t)
	rec := f.openCredit(t)
	ctx := context.Background()

	partial, err := f.svc.UpdateCreditRecord(ctx, rec.ID, contract.CreditUpdate{AmountPaid: 200, Balance: 264, Status: enum.CreditStatusPending})
	require.NoError(t, err)
	assert.Equal(t, int64(264), partial.Balance)
	assert.Nil(t, partial.PaidAt)

	_, err = f.svc.UpdateCreditRecord(ctx, rec.ID, contract.CreditUpdate{AmountPaid: 300, Balance: 100, Status: enum.CreditStatusPending})
	assert.True(t, apperror.IsValidation(err), "balance must match")

	_, err = f.svc.UpdateCreditRecord(ctx, rec.ID, contract.CreditUpdate{AmountPaid: 100, Balance: 364, Status: enum.CreditStatusPending})
	assert.True(t, apperror.IsValidation(err), "payments cannot be undone")

	paid, err := f.svc.UpdateCreditRecord(ctx, rec.ID, contract.CreditUpdate{AmountPaid: 500, Balance: 0, Status: enum.CreditStatusPaid})
	require.NoError(t, err)
	assert.Equal(t, enum.CreditStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, f.now, *paid.PaidAt)

	_, err = f.svc.UpdateCreditRecord(ctx, rec.ID, contract.CreditUpdate{AmountPaid: 500, Balance: 0, Status: enum.CreditStatusReturned})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already paid")
}

func TestReturnedCreditRecordIsFinal(t *testing.T) {
	f := newLedgerFixture(t)
	rec := f.openCredit(t)
	ctx := context.Background()

	returned, err := f.svc.UpdateCreditRecord(ctx, rec.ID, contract.CreditUpdate{AmountPaid: 0, Balance: 464, Status: enum.CreditStatusReturned})
	require.NoError(t, err)
	assert.Equal(t, enum.CreditStatusReturned, returned.Status)

	_, err = f.svc.UpdateCreditRecord(ctx, rec.ID, contract.CreditUpdate{AmountPaid: 464, Balance: 0, Status: enum.CreditStatusPaid})
	assert.True(t, apperror.IsValidation(err))
}

func TestListCreditRecordsFiltersStatus(t *testing.T) {
	f := newLedgerFixture(t)
	f.openCredit(t)

	paid := enum.CreditStatusPaid
	result, err := f.svc.ListCreditRecords(context.Background(), &repository.CreditFilterParams{Status: &paid})
	require.NoError(t, err)
	assert.Empty(t, result.Items)

	result, err = f.svc.ListCreditRecords(context.Background(), &repository.CreditFilterParams{})
	require.NoError(t, err)
	assert.Len(t, result.Items, 1)
	assert.Equal(t, int64(1), result.Pagination.Total)
}

func TestGetCreditRecordNotFound(t *testing.T) {
	f := newLedgerFixture(t)
	_, err := f.svc.GetCreditRecord(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
}
