package usecase

import (
	"context"
	"net/http"
	"time"

	"catalog/internal/domain/model"
	repo "catalog/internal/repository"
	"catalog/internal/validator"
)

// 監査ログの閲覧（スタッフのみ）
type AuditUsecase struct {
	logs repo.AuditLogRepository
}

func NewAuditUsecase(logs repo.AuditLogRepository) *AuditUsecase {
	return &AuditUsecase{logs: logs}
}

type ListAuditLogsInput struct {
	Page         int
	Limit        int
	ActorUserID  *int64
	Action       string
	ResourceType string
	ResourceID   string
	From         *time.Time
	To           *time.Time
}

type AuditLogListOutput struct {
	Items []model.AuditLog `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

func (u *AuditUsecase) List(ctx context.Context, caller Caller, in ListAuditLogsInput) (AuditLogListOutput, error) {
	if !caller.IsStaff {
		return AuditLogListOutput{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if in.Page < 1 {
		return AuditLogListOutput{}, &validator.ValidationError{Field: "page", Reason: "Invalid page"}
	}
	if in.Limit < 1 || in.Limit > 100 {
		return AuditLogListOutput{}, &validator.ValidationError{Field: "limit", Reason: "Invalid limit"}
	}

	f := repo.AuditLogFilter{
		ActorUserID: in.ActorUserID,
		CreatedFrom: in.From,
		CreatedTo:   in.To,
		Limit:       in.Limit,
		Offset:      (in.Page - 1) * in.Limit,
	}
	if in.Action != "" {
		a := model.AuditAction(in.Action)
		f.Action = &a
	}
	if in.ResourceType != "" {
		rt := model.AuditResourceType(in.ResourceType)
		f.ResourceType = &rt
	}
	if in.ResourceID != "" {
		id := in.ResourceID
		f.ResourceID = &id
	}

	logs, total, err := u.logs.List(ctx, f)
	if err != nil {
		return AuditLogListOutput{}, classify("list audit logs", err)
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return AuditLogListOutput{Items: logs, Total: total, Page: in.Page, Limit: in.Limit}, nil
}
