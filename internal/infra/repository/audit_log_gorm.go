package repository

import (
	"context"

	"catalog/internal/domain/model"
	repo "catalog/internal/repository"

	"gorm.io/gorm"
)

type auditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db}
}

// 商品の変更や注文ステータスの変更と同じTxで書く
func (r *auditLogGormRepository) Create(ctx context.Context, entry model.AuditLog) error {
	return translateError(r.db.WithContext(ctx).Create(&entry).Error)
}

func (r *auditLogGormRepository) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, int64, error) {
	q := whereAudit(r.db.WithContext(ctx).Model(&model.AuditLog{}), f)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	var entries []model.AuditLog
	err := q.Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(max(f.Offset, 0)).
		Find(&entries).Error
	if err != nil {
		return nil, 0, translateError(err)
	}
	return entries, total, nil
}

func whereAudit(q *gorm.DB, f repo.AuditLogFilter) *gorm.DB {
	if f.ActorUserID != nil {
		q = q.Where("actor_user_id = ?", *f.ActorUserID)
	}
	if f.Action != nil {
		q = q.Where("action = ?", *f.Action)
	}
	if f.ResourceType != nil {
		q = q.Where("resource_type = ?", *f.ResourceType)
	}
	if f.ResourceID != nil {
		q = q.Where("resource_id = ?", *f.ResourceID)
	}
	if f.CreatedFrom != nil {
		q = q.Where("created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		q = q.Where("created_at <= ?", *f.CreatedTo)
	}
	return q
}
