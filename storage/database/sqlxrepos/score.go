package sqlxrepos

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core"
	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/score"
)

const submissionCols = `id, user_id, user_name, user_role, company_name, category_id, category_name,
answers, total_score, max_score, detailed_answers, photo_url, phone, created_at`

type submissionRow struct {
	ID              string    `db:"id"`
	UserID          string    `db:"user_id"`
	UserName        string    `db:"user_name"`
	UserRole        string    `db:"user_role"`
	CompanyName     string    `db:"company_name"`
	CategoryID      string    `db:"category_id"`
	CategoryName    string    `db:"category_name"`
	Answers         []byte    `db:"answers"`
	TotalScore      int       `db:"total_score"`
	MaxScore        int       `db:"max_score"`
	DetailedAnswers string    `db:"detailed_answers"`
	PhotoURL        string    `db:"photo_url"`
	Phone           string    `db:"phone"`
	CreatedAt       time.Time `db:"created_at"`
}

type scoreRepository struct {
	exec core.DBExecutor
}

var _ score.Repository = (*scoreRepository)(nil) // interface compliance check

func NewScoreRepository(exec core.DBExecutor) *scoreRepository {
	return &scoreRepository{exec: exec}
}

func (repo scoreRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo scoreRepository) unpack(row submissionRow) (score.Submission, error) {
	sub := score.Submission{
		ID:              row.ID,
		UserID:          row.UserID,
		UserName:        row.UserName,
		UserRole:        row.UserRole,
		CompanyName:     row.CompanyName,
		CategoryID:      row.CategoryID,
		CategoryName:    row.CategoryName,
		TotalScore:      row.TotalScore,
		MaxScore:        row.MaxScore,
		DetailedAnswers: row.DetailedAnswers,
		PhotoURL:        row.PhotoURL,
		Phone:           row.Phone,
		CreatedAt:       row.CreatedAt,
	}
	if len(row.Answers) > 0 {
		if err := json.Unmarshal(row.Answers, &sub.Answers); err != nil {
			return score.Submission{}, errors.Wrap(err, "decoding submission answers")
		}
	}
	return sub, nil
}

func (repo scoreRepository) selectSubmissions(ctx context.Context, exe core.DBExecutor, query string, args ...interface{}) ([]score.Submission, error) {
	rows, err := exe.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var rws []submissionRow
	if err = sqlx.StructScan(rows, &rws); err != nil {
		return nil, err
	}
	subs := make([]score.Submission, 0, len(rws))
	for _, row := range rws {
		sub, err := repo.unpack(row)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

func (repo scoreRepository) CreateSubmission(ctx context.Context, sub score.Submission, exec ...core.DBExecutor) (score.Submission, error) {
	sub.ID = uuid.New().String()

	answers, err := json.Marshal(sub.Answers)
	if err != nil {
		return score.Submission{}, errors.Wrap(err, "encoding submission answers")
	}
	query := `INSERT INTO submissions (` + submissionCols + `) VALUES
($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err = repo.getExec(exec).ExecContext(ctx, query,
		sub.ID, sub.UserID, sub.UserName, sub.UserRole, sub.CompanyName, sub.CategoryID,
		sub.CategoryName, answers, sub.TotalScore, sub.MaxScore, sub.DetailedAnswers,
		sub.PhotoURL, sub.Phone, sub.CreatedAt.UTC())
	if err != nil {
		return score.Submission{}, errors.Wrap(err, "inserting submission")
	}
	return sub, nil
}

func (repo scoreRepository) QuerySubmissions(ctx context.Context, filter *score.SubmissionFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]score.Submission, error) {
	query := `SELECT ` + submissionCols + ` FROM submissions`
	var conds []string
	var args []interface{}

	if filter != nil {
		if filter.UserID != "" {
			conds = append(conds, `user_id = ?`)
			args = append(args, filter.UserID)
		}
		if filter.UserRole != "" {
			conds = append(conds, `user_role = ?`)
			args = append(args, filter.UserRole)
		}
		if filter.CompanyName != "" {
			conds = append(conds, `company_name = ?`)
			args = append(args, filter.CompanyName)
		}
		if filter.CompanyNames != nil {
			if len(filter.CompanyNames) == 0 {
				// a manager with an empty company set sees nothing
				conds = append(conds, `FALSE`)
			} else {
				conds = append(conds, `company_name IN (?)`)
				args = append(args, filter.CompanyNames)
			}
		}
		if filter.CategoryID != "" {
			conds = append(conds, `category_id = ?`)
			args = append(args, filter.CategoryID)
		}
	}
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	query += orderingClause(ordering)

	query, expanded, err := sqlx.In(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)

	subs, err := repo.selectSubmissions(ctx, repo.getExec(exec), query, expanded...)
	if err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	return subs, nil
}

func (repo scoreRepository) GetSubmission(ctx context.Context, id string, exec ...core.DBExecutor) (score.Submission, error) {
	if _, err := uuid.Parse(id); err != nil {
		return score.Submission{}, score.ErrNotFound
	}
	subs, err := repo.selectSubmissions(ctx, repo.getExec(exec),
		`SELECT `+submissionCols+` FROM submissions WHERE id = $1`, id)
	if err != nil {
		return score.Submission{}, errors.Wrap(err, "finding submission")
	}
	if len(subs) == 0 {
		return score.Submission{}, score.ErrNotFound
	}
	return subs[0], nil
}
