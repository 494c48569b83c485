package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/noah-isme/workload-api/internal/models"
)

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type requestMetaKey struct{}

// RequestMeta is the caller's network identity recorded on audit entries.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// WithRequestMeta attaches caller metadata to ctx for audit logging.
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

func requestMetaFrom(ctx context.Context) RequestMeta {
	if meta, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return meta
	}
	return RequestMeta{IPAddress: "system", UserAgent: "workload-api"}
}

// auditTrail writes audit entries. Persistence failures are logged, never returned.
type auditTrail struct {
	repo   auditLogger
	logger *zap.Logger
}

func (a auditTrail) record(ctx context.Context, actor *models.JWTClaims, action, resource, resourceID string, oldValues, newValues interface{}) {
	if a.repo == nil {
		return
	}
	meta := requestMetaFrom(ctx)
	entry := &models.AuditLog{
		Action:    action,
		Resource:  resource,
		OldValues: a.encode(oldValues, ""),
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}
	impersonator := ""
	if actor != nil {
		userID := actor.UserID
		entry.UserID = &userID
		impersonator = actor.ImpersonatorID
	}
	entry.NewValues = a.encode(newValues, impersonator)
	if resourceID != "" {
		entry.ResourceID = &resourceID
	}
	if err := a.repo.CreateAuditLog(ctx, entry); err != nil {
		a.logger.Warn("failed to persist audit log", zap.String("action", action), zap.Error(err))
	}
}

func (a auditTrail) encode(value interface{}, impersonator string) []byte {
	if value == nil && impersonator == "" {
		return nil
	}
	if impersonator != "" {
		value = map[string]interface{}{"values": value, "impersonator_id": impersonator}
	}
	raw, err := json.Marshal(value)
	if err != nil {
		a.logger.Warn("failed to encode audit payload", zap.Error(err))
		return nil
	}
	return raw
}
