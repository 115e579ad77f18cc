package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core"
	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/audit"
)

type logEntryRow struct {
	ID        string      `db:"id"`
	Type      string      `db:"type"`
	Message   string      `db:"message"`
	ActorID   null.String `db:"actor_id"`
	TargetID  null.String `db:"target_id"`
	CreatedAt time.Time   `db:"created_at"`
}

type auditRepository struct {
	exec core.DBExecutor
}

var _ audit.Repository = (*auditRepository)(nil) // interface compliance check

func NewAuditRepository(exec core.DBExecutor) *auditRepository {
	return &auditRepository{exec: exec}
}

func (repo auditRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo auditRepository) CreateLogEntry(ctx context.Context, entry audit.LogEntry, exec ...core.DBExecutor) (audit.LogEntry, error) {
	entry.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO activity_logs (id, type, message, actor_id, target_id, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.Type, entry.Message,
		null.NewString(entry.ActorID, entry.ActorID != ""),
		null.NewString(entry.TargetID, entry.TargetID != ""),
		entry.CreatedAt.UTC())
	if err != nil {
		return audit.LogEntry{}, errors.Wrap(err, "inserting activity log entry")
	}
	return entry, nil
}

func (repo auditRepository) QueryLogEntries(ctx context.Context, filter audit.Filter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]audit.LogEntry, error) {
	query := `SELECT id, type, message, actor_id, target_id, created_at FROM activity_logs`
	var conds []string
	var args []interface{}

	if filter.Type != "" {
		conds = append(conds, `type = ?`)
		args = append(args, filter.Type)
	}
	if filter.ActorID != "" {
		conds = append(conds, `actor_id = ?`)
		args = append(args, filter.ActorID)
	}
	if !filter.From.IsZero() {
		conds = append(conds, `created_at >= ?`)
		args = append(args, filter.From.UTC())
	}
	if !filter.To.IsZero() {
		conds = append(conds, `created_at <= ?`)
		args = append(args, filter.To.UTC())
	}
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	query += orderingClause(ordering)
	query = sqlx.Rebind(sqlx.DOLLAR, query)

	rows, err := repo.getExec(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying activity log")
	}
	defer func() { _ = rows.Close() }()

	var rws []logEntryRow
	if err = sqlx.StructScan(rows, &rws); err != nil {
		return nil, errors.Wrap(err, "querying activity log")
	}
	entries := make([]audit.LogEntry, 0, len(rws))
	for _, row := range rws {
		entries = append(entries, audit.LogEntry{
			ID:        row.ID,
			Type:      row.Type,
			Message:   row.Message,
			ActorID:   row.ActorID.String,
			TargetID:  row.TargetID.String,
			CreatedAt: row.CreatedAt,
		})
	}
	return entries, nil
}
