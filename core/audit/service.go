package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core"
)

type (
	Repository interface {
		CreateLogEntry(ctx context.Context, entry LogEntry, exec ...core.DBExecutor) (LogEntry, error)
		QueryLogEntries(ctx context.Context, filter Filter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]LogEntry, error)
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Log records an activity entry. Failures are logged and swallowed so audit
// trail writes never break the operation being recorded.
func (svc *Service) Log(ctx context.Context, typ, actorID, targetID, format string, args ...interface{}) {
	entry := LogEntry{
		Type:      typ,
		Message:   fmt.Sprintf(format, args...),
		ActorID:   actorID,
		TargetID:  targetID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := svc.repo.CreateLogEntry(ctx, entry); err != nil {
		svc.logger.Error("creating activity log entry", err)
	}
}

func (svc *Service) Query(ctx context.Context, filter Filter) ([]LogEntry, error) {
	return svc.repo.QueryLogEntries(ctx, filter, []core.DBOrdering{{Field: "created_at", Ascending: false}})
}
