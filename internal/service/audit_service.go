package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/school-service/internal/events"
)

// AuditSink forwards audit events outside the process.
type AuditSink interface {
	Send(ctx context.Context, event events.Event) error
}

// AuditService records authentication events.
type AuditService struct {
	dispatcher events.Dispatcher
	sink       AuditSink
	logger     *zap.Logger
}

// NewAuditService creates the service. sink may be nil for log-only auditing.
func NewAuditService(dispatcher events.Dispatcher, sink AuditSink, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		dispatcher: dispatcher,
		sink:       sink,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		a.dispatcher.Subscribe(eventType, a.handle)
	}
}

func (a *AuditService) handle(ctx context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.Time("at", event.Timestamp),
	}
	if event.UserID != 0 {
		fields = append(fields, zap.Int64("user_id", event.UserID))
	}
	if event.Email != "" {
		fields = append(fields, zap.String("email", event.Email))
	}
	if event.Role != "" {
		fields = append(fields, zap.String("role", event.Role))
	}
	if event.Reason != "" {
		fields = append(fields, zap.String("reason", event.Reason))
	}
	a.logger.Info("audit", fields...)

	if a.sink == nil {
		return nil
	}
	if err := a.sink.Send(ctx, event); err != nil {
		a.logger.Warn("audit sink failed", zap.String("event_id", event.ID), zap.Error(err))
		return err
	}
	return nil
}
