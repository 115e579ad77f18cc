package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core"
	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/audit"
)

type auditRepository struct {
	db *logEntryTable
}

var _ audit.Repository = (*auditRepository)(nil) // interface compliance check

func NewAuditRepository(db *DB) *auditRepository {
	return &auditRepository{db: db.logEntry}
}

func (repo *auditRepository) CreateLogEntry(ctx context.Context, entry audit.LogEntry, exec ...core.DBExecutor) (audit.LogEntry, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	entry.ID = uuid.New().String()
	repo.db.table[entry.ID] = &entry
	return entry, nil
}

func (repo *auditRepository) QueryLogEntries(ctx context.Context, filter audit.Filter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]audit.LogEntry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	entries := make([]audit.LogEntry, 0, len(repo.db.table))
	for _, entry := range repo.db.table {
		if filter.Type != "" && entry.Type != filter.Type {
			continue
		}
		if filter.ActorID != "" && entry.ActorID != filter.ActorID {
			continue
		}
		if !filter.From.IsZero() && entry.CreatedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && entry.CreatedAt.After(filter.To) {
			continue
		}
		entries = append(entries, *entry)
	}

	asc := len(ordering) == 0 || ordering[0].Ascending
	sort.Slice(entries, func(i, j int) bool {
		if asc {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[j].CreatedAt.Before(entries[i].CreatedAt)
	})
	return entries, nil
}
