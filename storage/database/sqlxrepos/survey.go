package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core"
	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/survey"
)

type refRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type questionRow struct {
	ID         string    `db:"id"`
	CategoryID string    `db:"category_id"`
	Text       string    `db:"text"`
	TargetRole string    `db:"target_role"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type answerOptionRow struct {
	ID         string `db:"id"`
	QuestionID string `db:"question_id"`
	Text       string `db:"text"`
	Score      int    `db:"score"`
}

type surveyRepository struct {
	exec core.DBExecutor
}

var _ survey.Repository = (*surveyRepository)(nil) // interface compliance check

func NewSurveyRepository(exec core.DBExecutor) *surveyRepository {
	return &surveyRepository{exec: exec}
}

func (repo surveyRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo surveyRepository) selectRefs(ctx context.Context, exe core.DBExecutor, query string, args ...interface{}) ([]refRow, error) {
	rows, err := exe.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var rws []refRow
	if err = sqlx.StructScan(rows, &rws); err != nil {
		return nil, err
	}
	return rws, nil
}

func (repo surveyRepository) CreateCategory(ctx context.Context, cat survey.Category, exec ...core.DBExecutor) (survey.Category, error) {
	cat.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO categories (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		cat.ID, cat.Name, cat.CreatedAt.UTC(), cat.UpdatedAt.UTC())
	if err != nil {
		return survey.Category{}, errors.Wrap(err, "inserting category")
	}
	return cat, nil
}

func (repo surveyRepository) QueryCategories(ctx context.Context, exec ...core.DBExecutor) ([]survey.Category, error) {
	rws, err := repo.selectRefs(ctx, repo.getExec(exec),
		`SELECT id, name, created_at, updated_at FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "querying categories")
	}
	cats := make([]survey.Category, 0, len(rws))
	for _, row := range rws {
		cats = append(cats, survey.Category{ID: row.ID, Name: row.Name, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt})
	}
	return cats, nil
}

func (repo surveyRepository) GetCategory(ctx context.Context, id string, exec ...core.DBExecutor) (survey.Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return survey.Category{}, survey.ErrCategoryNotFound
	}
	rws, err := repo.selectRefs(ctx, repo.getExec(exec),
		`SELECT id, name, created_at, updated_at FROM categories WHERE id = $1`, id)
	if err != nil {
		return survey.Category{}, errors.Wrap(err, "finding category")
	}
	if len(rws) == 0 {
		return survey.Category{}, survey.ErrCategoryNotFound
	}
	row := rws[0]
	return survey.Category{ID: row.ID, Name: row.Name, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt}, nil
}

func (repo surveyRepository) UpdateCategory(ctx context.Context, cat survey.Category, exec ...core.DBExecutor) (survey.Category, error) {
	_, err := repo.getExec(exec).ExecContext(ctx,
		`UPDATE categories SET name = $2, updated_at = $3 WHERE id = $1`,
		cat.ID, cat.Name, cat.UpdatedAt.UTC())
	if err != nil {
		return survey.Category{}, errors.Wrap(err, "updating category")
	}
	return cat, nil
}

func (repo surveyRepository) DeleteCategory(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if _, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting category")
	}
	return nil
}

func (repo surveyRepository) CountCategoryQuestions(ctx context.Context, categoryID string, exec ...core.DBExecutor) (int, error) {
	var cnt int
	err := repo.getExec(exec).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM questions WHERE category_id = $1`, categoryID).Scan(&cnt)
	if err != nil {
		return 0, errors.Wrap(err, "counting category questions")
	}
	return cnt, nil
}

func (repo surveyRepository) CreateSegment(ctx context.Context, seg survey.Segment, exec ...core.DBExecutor) (survey.Segment, error) {
	seg.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO segments (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		seg.ID, seg.Name, seg.CreatedAt.UTC(), seg.UpdatedAt.UTC())
	if err != nil {
		return survey.Segment{}, errors.Wrap(err, "inserting segment")
	}
	return seg, nil
}

func (repo surveyRepository) QuerySegments(ctx context.Context, exec ...core.DBExecutor) ([]survey.Segment, error) {
	rws, err := repo.selectRefs(ctx, repo.getExec(exec),
		`SELECT id, name, created_at, updated_at FROM segments ORDER BY name ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "querying segments")
	}
	segs := make([]survey.Segment, 0, len(rws))
	for _, row := range rws {
		segs = append(segs, survey.Segment{ID: row.ID, Name: row.Name, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt})
	}
	return segs, nil
}

func (repo surveyRepository) UpdateSegment(ctx context.Context, seg survey.Segment, exec ...core.DBExecutor) (survey.Segment, error) {
	_, err := repo.getExec(exec).ExecContext(ctx,
		`UPDATE segments SET name = $2, updated_at = $3 WHERE id = $1`,
		seg.ID, seg.Name, seg.UpdatedAt.UTC())
	if err != nil {
		return survey.Segment{}, errors.Wrap(err, "updating segment")
	}
	return seg, nil
}

func (repo surveyRepository) DeleteSegment(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if _, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM segments WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting segment")
	}
	return nil
}

func (repo surveyRepository) CountSegmentCompanies(ctx context.Context, segmentID string, exec ...core.DBExecutor) (int, error) {
	var cnt int
	err := repo.getExec(exec).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE segment_id = $1`, segmentID).Scan(&cnt)
	if err != nil {
		return 0, errors.Wrap(err, "counting segment companies")
	}
	return cnt, nil
}

func (repo surveyRepository) CreateQuestion(ctx context.Context, q survey.Question, exec ...core.DBExecutor) (survey.Question, error) {
	q.ID = uuid.New().String()

	err := runInTx(ctx, repo.getExec(exec), func(exe core.DBExecutor) error {
		_, err := exe.ExecContext(ctx,
			`INSERT INTO questions (id, category_id, text, target_role, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
			q.ID, q.CategoryID, q.Text, q.TargetRole, q.CreatedAt.UTC(), q.UpdatedAt.UTC())
		if err != nil {
			return errors.Wrap(err, "inserting question")
		}
		return repo.insertAnswers(ctx, exe, &q)
	})
	if err != nil {
		return survey.Question{}, err
	}
	return q, nil
}

func (repo surveyRepository) insertAnswers(ctx context.Context, exe core.DBExecutor, q *survey.Question) error {
	for i := range q.Answers {
		q.Answers[i].ID = uuid.New().String()
		_, err := exe.ExecContext(ctx,
			`INSERT INTO answer_options (id, question_id, text, score) VALUES ($1, $2, $3, $4)`,
			q.Answers[i].ID, q.ID, q.Answers[i].Text, q.Answers[i].Score)
		if err != nil {
			return errors.Wrap(err, "inserting answer option")
		}
	}
	return nil
}

// runInTx runs fn inside a transaction when exe can open one; explicitly
// passed executors (already a transaction) are used as-is.
func runInTx(ctx context.Context, exe core.DBExecutor, fn func(core.DBExecutor) error) error {
	db, ok := exe.(core.DB)
	if !ok {
		return fn(exe)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

func (repo surveyRepository) QueryQuestions(ctx context.Context, filter *survey.QuestionFilter, exec ...core.DBExecutor) ([]survey.Question, error) {
	exe := repo.getExec(exec)

	query := `SELECT id, category_id, text, target_role, created_at, updated_at FROM questions`
	var conds []string
	var args []interface{}
	if filter != nil {
		if filter.CategoryID != "" {
			conds = append(conds, `category_id = ?`)
			args = append(args, filter.CategoryID)
		}
		if filter.TargetRole != "" {
			conds = append(conds, `target_role = ?`)
			args = append(args, filter.TargetRole)
		}
	}
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	query += ` ORDER BY created_at ASC`
	query = sqlx.Rebind(sqlx.DOLLAR, query)

	rows, err := exe.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}
	defer func() { _ = rows.Close() }()

	var rws []questionRow
	if err = sqlx.StructScan(rows, &rws); err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}

	questions := make([]survey.Question, 0, len(rws))
	for _, row := range rws {
		questions = append(questions, survey.Question{
			ID:         row.ID,
			CategoryID: row.CategoryID,
			Text:       row.Text,
			TargetRole: row.TargetRole,
			CreatedAt:  row.CreatedAt,
			UpdatedAt:  row.UpdatedAt,
		})
	}
	if err = repo.loadAnswers(ctx, exe, questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (repo surveyRepository) loadAnswers(ctx context.Context, exe core.DBExecutor, questions []survey.Question) error {
	if len(questions) == 0 {
		return nil
	}
	ids := make([]string, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	query, args, err := sqlx.In(`SELECT id, question_id, text, score FROM answer_options WHERE question_id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "querying answer options")
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)

	rows, err := exe.QueryContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "querying answer options")
	}
	defer func() { _ = rows.Close() }()

	var rws []answerOptionRow
	if err = sqlx.StructScan(rows, &rws); err != nil {
		return errors.Wrap(err, "querying answer options")
	}

	byQuestion := make(map[string][]survey.AnswerOption, len(questions))
	for _, row := range rws {
		byQuestion[row.QuestionID] = append(byQuestion[row.QuestionID], survey.AnswerOption{
			ID:    row.ID,
			Text:  row.Text,
			Score: row.Score,
		})
	}
	for i := range questions {
		questions[i].Answers = byQuestion[questions[i].ID]
	}
	return nil
}

func (repo surveyRepository) GetQuestion(ctx context.Context, id string, exec ...core.DBExecutor) (survey.Question, error) {
	if _, err := uuid.Parse(id); err != nil {
		return survey.Question{}, survey.ErrQuestionNotFound
	}
	exe := repo.getExec(exec)

	rows, err := exe.QueryContext(ctx,
		`SELECT id, category_id, text, target_role, created_at, updated_at FROM questions WHERE id = $1`, id)
	if err != nil {
		return survey.Question{}, errors.Wrap(err, "finding question")
	}
	defer func() { _ = rows.Close() }()

	var rws []questionRow
	if err = sqlx.StructScan(rows, &rws); err != nil {
		return survey.Question{}, errors.Wrap(err, "finding question")
	}
	if len(rws) == 0 {
		return survey.Question{}, survey.ErrQuestionNotFound
	}

	row := rws[0]
	questions := []survey.Question{{
		ID:         row.ID,
		CategoryID: row.CategoryID,
		Text:       row.Text,
		TargetRole: row.TargetRole,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}}
	if err = repo.loadAnswers(ctx, exe, questions); err != nil {
		return survey.Question{}, err
	}
	return questions[0], nil
}

func (repo surveyRepository) UpdateQuestion(ctx context.Context, q survey.Question, exec ...core.DBExecutor) (survey.Question, error) {
	// the answer set is replaced wholesale; the transaction keeps the old
	// answers when any insert fails
	err := runInTx(ctx, repo.getExec(exec), func(exe core.DBExecutor) error {
		_, err := exe.ExecContext(ctx,
			`UPDATE questions SET category_id = $2, text = $3, target_role = $4, updated_at = $5 WHERE id = $1`,
			q.ID, q.CategoryID, q.Text, q.TargetRole, q.UpdatedAt.UTC())
		if err != nil {
			return errors.Wrap(err, "updating question")
		}
		if _, err = exe.ExecContext(ctx, `DELETE FROM answer_options WHERE question_id = $1`, q.ID); err != nil {
			return errors.Wrap(err, "replacing answer options")
		}
		return repo.insertAnswers(ctx, exe, &q)
	})
	if err != nil {
		return survey.Question{}, err
	}
	return q, nil
}

func (repo surveyRepository) DeleteQuestion(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if _, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting question")
	}
	return nil
}
