package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core"
	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/survey"
)

type surveyRepository struct {
	categories *categoryTable
	segments   *segmentTable
	questions  *questionTable
	users      *userTable
}

var _ survey.Repository = (*surveyRepository)(nil) // interface compliance check

func NewSurveyRepository(db *DB) *surveyRepository {
	return &surveyRepository{
		categories: db.category,
		segments:   db.segment,
		questions:  db.question,
		users:      db.user,
	}
}

func (repo *surveyRepository) CreateCategory(ctx context.Context, cat survey.Category, exec ...core.DBExecutor) (survey.Category, error) {
	repo.categories.mutex.Lock()
	defer repo.categories.mutex.Unlock()

	cat.ID = uuid.New().String()
	repo.categories.table[cat.ID] = &cat
	return cat, nil
}

func (repo *surveyRepository) QueryCategories(ctx context.Context, exec ...core.DBExecutor) ([]survey.Category, error) {
	repo.categories.mutex.RLock()
	defer repo.categories.mutex.RUnlock()

	cats := make([]survey.Category, 0, len(repo.categories.table))
	for _, cat := range repo.categories.table {
		cats = append(cats, *cat)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return cats, nil
}

func (repo *surveyRepository) GetCategory(ctx context.Context, id string, exec ...core.DBExecutor) (survey.Category, error) {
	repo.categories.mutex.RLock()
	defer repo.categories.mutex.RUnlock()

	if cat, ok := repo.categories.table[id]; ok {
		return *cat, nil
	}
	return survey.Category{}, survey.ErrCategoryNotFound
}

func (repo *surveyRepository) UpdateCategory(ctx context.Context, cat survey.Category, exec ...core.DBExecutor) (survey.Category, error) {
	repo.categories.mutex.Lock()
	defer repo.categories.mutex.Unlock()

	if _, ok := repo.categories.table[cat.ID]; !ok {
		return survey.Category{}, survey.ErrCategoryNotFound
	}
	repo.categories.table[cat.ID] = &cat
	return cat, nil
}

func (repo *surveyRepository) DeleteCategory(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.categories.mutex.Lock()
	defer repo.categories.mutex.Unlock()
	delete(repo.categories.table, id)
	return nil
}

func (repo *surveyRepository) CountCategoryQuestions(ctx context.Context, categoryID string, exec ...core.DBExecutor) (int, error) {
	repo.questions.mutex.RLock()
	defer repo.questions.mutex.RUnlock()

	var cnt int
	for _, q := range repo.questions.table {
		if q.CategoryID == categoryID {
			cnt++
		}
	}
	return cnt, nil
}

func (repo *surveyRepository) CreateSegment(ctx context.Context, seg survey.Segment, exec ...core.DBExecutor) (survey.Segment, error) {
	repo.segments.mutex.Lock()
	defer repo.segments.mutex.Unlock()

	seg.ID = uuid.New().String()
	repo.segments.table[seg.ID] = &seg
	return seg, nil
}

func (repo *surveyRepository) QuerySegments(ctx context.Context, exec ...core.DBExecutor) ([]survey.Segment, error) {
	repo.segments.mutex.RLock()
	defer repo.segments.mutex.RUnlock()

	segs := make([]survey.Segment, 0, len(repo.segments.table))
	for _, seg := range repo.segments.table {
		segs = append(segs, *seg)
	}
	sort.Slice(segs, func(i, j int) bool { return segs[i].Name < segs[j].Name })
	return segs, nil
}

func (repo *surveyRepository) UpdateSegment(ctx context.Context, seg survey.Segment, exec ...core.DBExecutor) (survey.Segment, error) {
	repo.segments.mutex.Lock()
	defer repo.segments.mutex.Unlock()

	orig, ok := repo.segments.table[seg.ID]
	if !ok {
		return survey.Segment{}, survey.ErrSegmentNotFound
	}
	seg.CreatedAt = orig.CreatedAt
	repo.segments.table[seg.ID] = &seg
	return seg, nil
}

func (repo *surveyRepository) DeleteSegment(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.segments.mutex.Lock()
	defer repo.segments.mutex.Unlock()
	delete(repo.segments.table, id)
	return nil
}

func (repo *surveyRepository) CountSegmentCompanies(ctx context.Context, segmentID string, exec ...core.DBExecutor) (int, error) {
	repo.users.mutex.RLock()
	defer repo.users.mutex.RUnlock()

	var cnt int
	for _, usr := range repo.users.table {
		if usr.SegmentID == segmentID {
			cnt++
		}
	}
	return cnt, nil
}

func (repo *surveyRepository) CreateQuestion(ctx context.Context, q survey.Question, exec ...core.DBExecutor) (survey.Question, error) {
	repo.questions.mutex.Lock()
	defer repo.questions.mutex.Unlock()

	q.ID = uuid.New().String()
	for i := range q.Answers {
		q.Answers[i].ID = uuid.New().String()
	}
	repo.questions.table[q.ID] = &q
	return q, nil
}

func (repo *surveyRepository) QueryQuestions(ctx context.Context, filter *survey.QuestionFilter, exec ...core.DBExecutor) ([]survey.Question, error) {
	repo.questions.mutex.RLock()
	defer repo.questions.mutex.RUnlock()

	questions := make([]survey.Question, 0, len(repo.questions.table))
	for _, q := range repo.questions.table {
		if filter != nil {
			if filter.CategoryID != "" && q.CategoryID != filter.CategoryID {
				continue
			}
			if filter.TargetRole != "" && q.TargetRole != filter.TargetRole {
				continue
			}
		}
		questions = append(questions, *q)
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].CreatedAt.Before(questions[j].CreatedAt) })
	return questions, nil
}

func (repo *surveyRepository) GetQuestion(ctx context.Context, id string, exec ...core.DBExecutor) (survey.Question, error) {
	repo.questions.mutex.RLock()
	defer repo.questions.mutex.RUnlock()

	if q, ok := repo.questions.table[id]; ok {
		return *q, nil
	}
	return survey.Question{}, survey.ErrQuestionNotFound
}

func (repo *surveyRepository) UpdateQuestion(ctx context.Context, q survey.Question, exec ...core.DBExecutor) (survey.Question, error) {
	repo.questions.mutex.Lock()
	defer repo.questions.mutex.Unlock()

	if _, ok := repo.questions.table[q.ID]; !ok {
		return survey.Question{}, survey.ErrQuestionNotFound
	}
	for i := range q.Answers {
		if q.Answers[i].ID == "" {
			q.Answers[i].ID = uuid.New().String()
		}
	}
	repo.questions.table[q.ID] = &q
	return q, nil
}

func (repo *surveyRepository) DeleteQuestion(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.questions.mutex.Lock()
	defer repo.questions.mutex.Unlock()
	delete(repo.questions.table, id)
	return nil
}
