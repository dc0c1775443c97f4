package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/domain/entity"
	"github.com/sangkips/investify-pos/internal/domain/enum"
	domainRepo "github.com/sangkips/investify-pos/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *gorm.DB) domainRepo.SaleRepository {
	return &saleRepository{db: db}
}

// Create skips the insert on an idempotency key conflict only. A receipt
// number collision fails with ErrConflict.
func (r *saleRepository) Create(ctx context.Context, sale *entity.Sale) (bool, error) {
	result := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "idempotency_key"}},
			DoNothing: true,
		}).
		Create(sale)
	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return false, domainRepo.ErrConflict
	}
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *saleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	var sale entity.Sale
	err := r.db.WithContext(ctx).First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sale, err
}

func (r *saleRepository) GetByIdempotencyKey(ctx context.Context, key string) (*entity.Sale, error) {
	var sale entity.Sale
	err := r.db.WithContext(ctx).First(&sale, "idempotency_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sale, err
}

func (r *saleRepository) List(ctx context.Context, params *domainRepo.SaleFilterParams) ([]entity.Sale, int64, error) {
	var sales []entity.Sale
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Sale{})
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.ActorID != nil {
		query = query.Where("actor_id = ?", *params.ActorID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order("created_at DESC, id ASC").
		Find(&sales).Error

	return sales, total, err
}

func (r *saleRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.SaleStatus) error {
	return r.db.WithContext(ctx).Model(&entity.Sale{}).
		Where("id = ?", id).
		Update("status", status).Error
}

type saleItemRepository struct {
	db *gorm.DB
}

// NewSaleItemRepository creates a new sale item repository
func NewSaleItemRepository(db *gorm.DB) domainRepo.SaleItemRepository {
	return &saleItemRepository{db: db}
}

// CreateBatch locks the sale row so two replays of the same sale cannot both
// see it without lines.
func (r *saleItemRepository) CreateBatch(ctx context.Context, saleID uuid.UUID, items []entity.SaleItem) (bool, error) {
	if len(items) == 0 {
		return false, nil
	}
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sale entity.Sale
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").First(&sale, "id = ?", saleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainRepo.ErrNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&entity.SaleItem{}).Where("sale_id = ?", saleID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		for i := range items {
			items[i].SaleID = saleID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}

func (r *saleItemRepository) GetBySaleID(ctx context.Context, saleID uuid.UUID) ([]entity.SaleItem, error) {
	var items []entity.SaleItem
	err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	return items, err
}

type receiptSequenceRepository struct {
	db *gorm.DB
}

// NewReceiptSequenceRepository creates a new receipt sequence repository
func NewReceiptSequenceRepository(db *gorm.DB) domainRepo.ReceiptSequenceRepository {
	return &receiptSequenceRepository{db: db}
}

const nextReceiptSQL = `
INSERT INTO receipt_sequences (day, last_value, updated_at)
VALUES (?, 1, NOW())
ON CONFLICT (day) DO UPDATE
SET last_value = receipt_sequences.last_value + 1, updated_at = NOW()
RETURNING last_value`

func (r *receiptSequenceRepository) Next(ctx context.Context, day string) (int64, error) {
	var value int64
	if err := r.db.WithContext(ctx).Raw(nextReceiptSQL, day).Scan(&value).Error; err != nil {
		return 0, err
	}
	return value, nil
}
