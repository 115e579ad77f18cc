package survey

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core"
)

var (
	// errors
	ErrCategoryNotFound = errors.New("category not found")
	ErrSegmentNotFound  = errors.New("segment not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrCategoryInUse    = errors.New("category still has questions")
	ErrSegmentInUse     = errors.New("segment still has companies")
)

type (
	Repository interface {
		CreateCategory(ctx context.Context, cat Category, exec ...core.DBExecutor) (Category, error)
		QueryCategories(ctx context.Context, exec ...core.DBExecutor) ([]Category, error)
		GetCategory(ctx context.Context, id string, exec ...core.DBExecutor) (Category, error)
		UpdateCategory(ctx context.Context, cat Category, exec ...core.DBExecutor) (Category, error)
		DeleteCategory(ctx context.Context, id string, exec ...core.DBExecutor) error
		CountCategoryQuestions(ctx context.Context, categoryID string, exec ...core.DBExecutor) (int, error)

		CreateSegment(ctx context.Context, seg Segment, exec ...core.DBExecutor) (Segment, error)
		QuerySegments(ctx context.Context, exec ...core.DBExecutor) ([]Segment, error)
		UpdateSegment(ctx context.Context, seg Segment, exec ...core.DBExecutor) (Segment, error)
		DeleteSegment(ctx context.Context, id string, exec ...core.DBExecutor) error
		CountSegmentCompanies(ctx context.Context, segmentID string, exec ...core.DBExecutor) (int, error)

		CreateQuestion(ctx context.Context, q Question, exec ...core.DBExecutor) (Question, error)
		// QueryQuestions applies AND operation on available QuestionFilter fields.
		QueryQuestions(ctx context.Context, filter *QuestionFilter, exec ...core.DBExecutor) ([]Question, error)
		GetQuestion(ctx context.Context, id string, exec ...core.DBExecutor) (Question, error)
		// UpdateQuestion replaces the question row and its whole answer set.
		UpdateQuestion(ctx context.Context, q Question, exec ...core.DBExecutor) (Question, error)
		DeleteQuestion(ctx context.Context, id string, exec ...core.DBExecutor) error
	}

	Service struct {
		db   core.DB
		repo Repository
	}
)

func NewService(db core.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

func (svc *Service) CreateCategory(ctx context.Context, nc NewCategory) (Category, error) {
	now := time.Now().UTC()
	return svc.repo.CreateCategory(ctx, Category{Name: nc.Name, CreatedAt: now, UpdatedAt: now})
}

func (svc *Service) QueryCategories(ctx context.Context) ([]Category, error) {
	return svc.repo.QueryCategories(ctx)
}

func (svc *Service) GetCategory(ctx context.Context, id string) (Category, error) {
	return svc.repo.GetCategory(ctx, id)
}

func (svc *Service) UpdateCategory(ctx context.Context, id string, nc NewCategory) (Category, error) {
	cat, err := svc.repo.GetCategory(ctx, id)
	if err != nil {
		return Category{}, err
	}
	cat.Name = nc.Name
	cat.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCategory(ctx, cat)
}

// DeleteCategory refuses to delete a category still referenced by questions.
func (svc *Service) DeleteCategory(ctx context.Context, id string) error {
	if _, err := svc.repo.GetCategory(ctx, id); err != nil {
		return err
	}
	cnt, err := svc.repo.CountCategoryQuestions(ctx, id)
	if err != nil {
		return errors.Wrap(err, "counting category questions")
	}
	if cnt > 0 {
		return core.NewValidationError(ErrCategoryInUse)
	}
	return svc.repo.DeleteCategory(ctx, id)
}

func (svc *Service) CreateSegment(ctx context.Context, ns NewSegment) (Segment, error) {
	now := time.Now().UTC()
	return svc.repo.CreateSegment(ctx, Segment{Name: ns.Name, CreatedAt: now, UpdatedAt: now})
}

func (svc *Service) QuerySegments(ctx context.Context) ([]Segment, error) {
	return svc.repo.QuerySegments(ctx)
}

func (svc *Service) UpdateSegment(ctx context.Context, id string, ns NewSegment) (Segment, error) {
	now := time.Now().UTC()
	return svc.repo.UpdateSegment(ctx, Segment{ID: id, Name: ns.Name, UpdatedAt: now})
}

// DeleteSegment refuses to delete a segment still referenced by companies.
func (svc *Service) DeleteSegment(ctx context.Context, id string) error {
	cnt, err := svc.repo.CountSegmentCompanies(ctx, id)
	if err != nil {
		return errors.Wrap(err, "counting segment companies")
	}
	if cnt > 0 {
		return core.NewValidationError(ErrSegmentInUse)
	}
	return svc.repo.DeleteSegment(ctx, id)
}

func (svc *Service) CreateQuestion(ctx context.Context, nq NewQuestion) (Question, error) {
	if _, err := svc.repo.GetCategory(ctx, nq.CategoryID); err != nil {
		if errors.Cause(err) == ErrCategoryNotFound {
			return Question{}, core.NewValidationError(
				err, core.FieldError{Field: "category_id", Error: err.Error()})
		}
		return Question{}, errors.Wrap(err, "finding category")
	}

	now := time.Now().UTC()
	q := Question{
		CategoryID: nq.CategoryID,
		Text:       nq.Text,
		TargetRole: nq.TargetRole,
		Answers:    make([]AnswerOption, 0, len(nq.Answers)),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, a := range nq.Answers {
		q.Answers = append(q.Answers, AnswerOption{Text: a.Text, Score: a.Score})
	}
	return svc.repo.CreateQuestion(ctx, q)
}

func (svc *Service) QueryQuestions(ctx context.Context, filter *QuestionFilter) ([]Question, error) {
	if filter != nil && filter.IsEmpty() {
		filter = nil
	}
	return svc.repo.QueryQuestions(ctx, filter)
}

func (svc *Service) GetQuestion(ctx context.Context, id string) (Question, error) {
	return svc.repo.GetQuestion(ctx, id)
}

// UpdateQuestion replaces the question's text, target role and answer set wholesale.
func (svc *Service) UpdateQuestion(ctx context.Context, id string, uq UpdateQuestion) (Question, error) {
	q, err := svc.repo.GetQuestion(ctx, id)
	if err != nil {
		return Question{}, err
	}

	q.Text = uq.Text
	q.TargetRole = uq.TargetRole
	q.Answers = make([]AnswerOption, 0, len(uq.Answers))
	for _, a := range uq.Answers {
		q.Answers = append(q.Answers, AnswerOption{Text: a.Text, Score: a.Score})
	}
	q.UpdatedAt = time.Now().UTC()

	return svc.repo.UpdateQuestion(ctx, q)
}

func (svc *Service) DeleteQuestion(ctx context.Context, id string) error {
	if _, err := svc.repo.GetQuestion(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteQuestion(ctx, id)
}
