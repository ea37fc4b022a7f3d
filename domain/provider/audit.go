package provider

import (
	"context"
	"log/slog"
	"time"

	"github.com/sho-platform/sho-core/pkg/logger"
)

// Audit actions recorded by the configuration service.
const (
	AuditActionSave   = "provider.config.save"
	AuditActionSwitch = "provider.config.switch"
	AuditActionClear  = "provider.config.clear"
)

// AuditRecord captures who changed which organization's provider
// configuration, to what kind, and how long the operation took.
type AuditRecord struct {
	Action    string
	OrgID     string
	ActorID   string
	ConfigID  string
	Kind      Kind
	Duration  time.Duration
	Timestamp time.Time
}

// AuditSink receives audit records. Delivery is best-effort: the service
// logs sink failures but never propagates them to the caller.
type AuditSink interface {
	Record(ctx context.Context, rec AuditRecord) error
}

type logAuditSink struct {
	log *slog.Logger
}

// NewLogAuditSink returns a sink that emits audit records as structured
// log lines.
func NewLogAuditSink(log *slog.Logger) AuditSink {
	return &logAuditSink{log: log.With(logger.Scope("provider.audit"))}
}

func (s *logAuditSink) Record(_ context.Context, rec AuditRecord) error {
	s.log.Info("provider config audit",
		"action", rec.Action,
		"orgId", rec.OrgID,
		"actorId", rec.ActorID,
		"configId", rec.ConfigID,
		"kind", string(rec.Kind),
		"durationMs", rec.Duration.Milliseconds(),
		"at", rec.Timestamp.UTC().Format(time.RFC3339),
	)
	return nil
}
