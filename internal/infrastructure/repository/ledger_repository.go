package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/domain/entity"
	domainRepo "github.com/sangkips/investify-pos/internal/domain/repository"
	"github.com/sangkips/investify-pos/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type cashBoxRepository struct {
	db *gorm.DB
}

// NewCashBoxRepository creates a new cash box repository
func NewCashBoxRepository(db *gorm.DB) domainRepo.CashBoxRepository {
	return &cashBoxRepository{db: db}
}

func (r *cashBoxRepository) Create(ctx context.Context, entry *entity.CashBoxEntry) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "reference"}},
			DoNothing: true,
		}).
		Create(entry)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *cashBoxRepository) List(ctx context.Context, params *pagination.PaginationParams) ([]entity.CashBoxEntry, int64, error) {
	var entries []entity.CashBoxEntry
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.CashBoxEntry{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("created_at DESC, id ASC").
		Find(&entries).Error

	return entries, total, err
}

type creditRecordRepository struct {
	db *gorm.DB
}

// NewCreditRecordRepository creates a new credit record repository
func NewCreditRecordRepository(db *gorm.DB) domainRepo.CreditRecordRepository {
	return &creditRecordRepository{db: db}
}

func (r *creditRecordRepository) Create(ctx context.Context, record *entity.CreditRecord) (bool, error) {
	result := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sale_id"}},
			DoNothing: true,
		}).
		Create(record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *creditRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.CreditRecord, error) {
	var record entity.CreditRecord
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &record, err
}

func (r *creditRecordRepository) GetBySaleID(ctx context.Context, saleID uuid.UUID) (*entity.CreditRecord, error) {
	var record entity.CreditRecord
	err := r.db.WithContext(ctx).First(&record, "sale_id = ?", saleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &record, err
}

func (r *creditRecordRepository) Update(ctx context.Context, record *entity.CreditRecord) error {
	return r.db.WithContext(ctx).Model(record).
		Select("amount_paid", "balance", "status", "paid_at").
		Updates(record).Error
}

func (r *creditRecordRepository) List(ctx context.Context, params *domainRepo.CreditFilterParams) ([]entity.CreditRecord, int64, error) {
	var records []entity.CreditRecord
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.CreditRecord{})
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order("created_at DESC, id ASC").
		Find(&records).Error

	return records, total, err
}
