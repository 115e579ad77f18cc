package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core"
	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/score"
)

type scoreRepository struct {
	db *submissionTable
}

var _ score.Repository = (*scoreRepository)(nil) // interface compliance check

func NewScoreRepository(db *DB) *scoreRepository {
	return &scoreRepository{db: db.submission}
}

func (repo *scoreRepository) CreateSubmission(ctx context.Context, sub score.Submission, exec ...core.DBExecutor) (score.Submission, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sub.ID = uuid.New().String()
	repo.db.table[sub.ID] = &sub
	return sub, nil
}

func matchesSubmission(sub score.Submission, filter *score.SubmissionFilter) bool {
	if filter == nil {
		return true
	}
	if filter.UserID != "" && sub.UserID != filter.UserID {
		return false
	}
	if filter.UserRole != "" && sub.UserRole != filter.UserRole {
		return false
	}
	if filter.CompanyName != "" && sub.CompanyName != filter.CompanyName {
		return false
	}
	if filter.CompanyNames != nil {
		var found bool
		for _, name := range filter.CompanyNames {
			if sub.CompanyName == name {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.CategoryID != "" && sub.CategoryID != filter.CategoryID {
		return false
	}
	return true
}

func (repo *scoreRepository) QuerySubmissions(ctx context.Context, filter *score.SubmissionFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]score.Submission, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	subs := make([]score.Submission, 0)
	for _, sub := range repo.db.table {
		if matchesSubmission(*sub, filter) {
			subs = append(subs, *sub)
		}
	}

	asc := true
	if len(ordering) > 0 && !ordering[0].Ascending {
		asc = false
	}
	sort.Slice(subs, func(i, j int) bool {
		if asc {
			return subs[i].CreatedAt.Before(subs[j].CreatedAt)
		}
		return subs[j].CreatedAt.Before(subs[i].CreatedAt)
	})
	return subs, nil
}

func (repo *scoreRepository) GetSubmission(ctx context.Context, id string, exec ...core.DBExecutor) (score.Submission, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if sub, ok := repo.db.table[id]; ok {
		return *sub, nil
	}
	return score.Submission{}, score.ErrNotFound
}
