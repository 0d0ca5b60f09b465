package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/pratyek/grocery-app/internal/auth"
	"github.com/pratyek/grocery-app/internal/domain/model"
	repo "github.com/pratyek/grocery-app/internal/repository"
)

const maxAuditLimit = 200

type AuditLogOutput struct {
	ID           int64     `json:"id"`
	ActorUserID  int64     `json:"actorUserId"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resourceType"`
	ResourceID   int64     `json:"resourceId"`
	Before       string    `json:"before,omitempty"`
	After        string    `json:"after,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Empty strings and zero ids mean "any".
type ListAuditLogsInput struct {
	Action       string
	ResourceType string
	ResourceID   int64
	ActorUserID  int64
	Limit        int
	Offset       int
}

type AuditLogUsecase struct {
	logs repo.AuditLogRepository
}

func NewAuditLogUsecase(logs repo.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{logs: logs}
}

// List shows the admin trail newest first.
func (u *AuditLogUsecase) List(ctx context.Context, actor auth.Actor, in ListAuditLogsInput) ([]AuditLogOutput, error) {
	if !actor.IsAdmin() {
		return nil, NewAuthorizationError("Admin access required")
	}

	f := repo.AuditLogFilter{Limit: in.Limit, Offset: in.Offset}
	if in.Limit < 0 || in.Limit > maxAuditLimit {
		return nil, NewValidationError("limit", fmt.Sprintf("limit must be between 0 and %d", maxAuditLimit))
	}
	if in.Offset < 0 {
		return nil, NewValidationError("offset", "offset must be >= 0")
	}
	if in.Action != "" {
		a := model.AuditAction(in.Action)
		switch a {
		case model.AuditActionCreateProduct, model.AuditActionDeleteProduct, model.AuditActionUpdateOrderStatus:
		default:
			return nil, NewValidationError("action", "unknown audit action")
		}
		f.Action = &a
	}
	if in.ResourceType != "" {
		rt := model.AuditResourceType(in.ResourceType)
		if rt != model.AuditResourceProduct && rt != model.AuditResourceOrder {
			return nil, NewValidationError("resourceType", "resourceType must be product or order")
		}
		f.ResourceType = &rt
	}
	if in.ResourceID > 0 {
		f.ResourceID = &in.ResourceID
	}
	if in.ActorUserID > 0 {
		f.ActorUserID = &in.ActorUserID
	}

	logs, err := u.logs.List(ctx, f)
	if err != nil {
		return nil, NewInternalError(err)
	}
	out := make([]AuditLogOutput, 0, len(logs))
	for _, l := range logs {
		out = append(out, AuditLogOutput{
			ID:           l.ID,
			ActorUserID:  l.ActorUserID,
			Action:       string(l.Action),
			ResourceType: string(l.ResourceType),
			ResourceID:   l.ResourceID,
			Before:       l.BeforeJSON,
			After:        l.AfterJSON,
			CreatedAt:    l.CreatedAt,
		})
	}
	return out, nil
}
