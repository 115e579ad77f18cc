package score

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core"
	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/survey"
	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("submission not found")
)

type (
	Repository interface {
		CreateSubmission(ctx context.Context, sub Submission, exec ...core.DBExecutor) (Submission, error)
		// QuerySubmissions applies AND operation on available SubmissionFilter fields.
		QuerySubmissions(ctx context.Context, filter *SubmissionFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Submission, error)
		GetSubmission(ctx context.Context, id string, exec ...core.DBExecutor) (Submission, error)
	}

	Service struct {
		db         core.DB
		repo       Repository
		usrRepo    user.Repository
		surveyRepo survey.Repository
	}
)

func NewService(db core.DB, repo Repository, usrRepo user.Repository, surveyRepo survey.Repository) *Service {
	return &Service{
		db:         db,
		repo:       repo,
		usrRepo:    usrRepo,
		surveyRepo: surveyRepo,
	}
}

// RenderDetailedAnswers serializes structured pairs into the newest of the
// historical text formats: "Pergunta:"/"Resposta:" blocks joined by blank lines.
func RenderDetailedAnswers(pairs []ParsedAnswer) string {
	blocks := make([]string, 0, len(pairs))
	for _, pa := range pairs {
		blocks = append(blocks, fmt.Sprintf("Pergunta: %s\nResposta: %s", pa.QuestionText, pa.SelectedAnswerText))
	}
	return strings.Join(blocks, "\n\n")
}

// Create records a new submission for the acting user. Scores arrive already
// computed by the questionnaire client; the service only denormalizes the
// author/category info and renders the detailed-answers text.
func (svc *Service) Create(ctx context.Context, actor user.User, ns NewSubmission) (Submission, error) {
	cat, err := svc.surveyRepo.GetCategory(ctx, ns.CategoryID)
	if err != nil {
		if errors.Cause(err) == survey.ErrCategoryNotFound {
			return Submission{}, core.NewValidationError(
				err, core.FieldError{Field: "category_id", Error: err.Error()})
		}
		return Submission{}, errors.Wrap(err, "finding category")
	}

	sub := Submission{
		UserID:          actor.ID,
		UserName:        actor.Name,
		UserRole:        actor.Role,
		CompanyName:     actor.CompanyName,
		CategoryID:      cat.ID,
		CategoryName:    cat.Name,
		Answers:         ns.Answers,
		TotalScore:      ns.TotalScore,
		MaxScore:        ns.MaxScore,
		DetailedAnswers: RenderDetailedAnswers(ns.DetailedAnswers),
		PhotoURL:        actor.PhotoURL,
		Phone:           actor.Phone,
		CreatedAt:       time.Now().UTC(),
	}
	return svc.repo.CreateSubmission(ctx, sub)
}

// Query lists submissions visible to the actor: admins see everything, a
// company account its own company, a group its managed set, an employee only
// their own.
func (svc *Service) Query(ctx context.Context, actor user.User, filter *SubmissionFilter) ([]Submission, error) {
	if filter == nil {
		filter = &SubmissionFilter{}
	}
	switch {
	case actor.IsAdmin():
		// unrestricted
	case actor.IsCompany():
		filter.CompanyName = actor.CompanyName
	case actor.IsGroup():
		filter.CompanyNames = actor.ManagedCompanies
	default:
		filter.UserID = actor.ID
	}
	if filter.IsEmpty() {
		filter = nil
	}

	ordering := []core.DBOrdering{{Field: "created_at", Ascending: false}}
	return svc.repo.QuerySubmissions(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Submission, error) {
	return svc.repo.GetSubmission(ctx, id)
}

// CompareRequest selects the entities and mode for a comparison run.
type CompareRequest struct {
	Mode        string      `json:"mode" validate:"required,oneof=companies employees"`
	SelectedIDs []string    `json:"selected_ids" validate:"required,min=1"`
	Filter      ScopeFilter `json:"filter"`
}

func (cr *CompareRequest) Validate(validate *validator.Validate) error {
	cr.Mode = core.CleanString(cr.Mode, true /* lower */)
	return validate.Struct(cr)
}

// Compare resolves the actor's visible entities and aggregates the current
// submission snapshot into a side-by-side comparison.
func (svc *Service) Compare(ctx context.Context, actor user.User, req CompareRequest) (*AggregationResult, error) {
	companies, err := svc.usrRepo.QueryUsers(ctx, &user.QueryFilter{Role: user.RoleCompany, Status: user.StatusApproved}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying companies")
	}
	employees, err := svc.usrRepo.QueryUsers(ctx, &user.QueryFilter{Role: user.RoleEmployee, Status: user.StatusApproved}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying employees")
	}

	entities := ResolveEntities(actor, companies, employees, req.Mode, req.Filter)

	// the submission source matches the author role of the compared entities
	authorRole := user.RoleCompany
	if req.Mode == ModeEmployees {
		authorRole = user.RoleEmployee
	}
	subFilter := &SubmissionFilter{UserRole: authorRole}
	if actor.IsGroup() {
		subFilter.CompanyNames = actor.ManagedCompanies
	}
	submissions, err := svc.repo.QuerySubmissions(ctx, subFilter, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}

	categories, err := svc.surveyRepo.QueryCategories(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying categories")
	}
	questions, err := svc.surveyRepo.QueryQuestions(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}

	return Aggregate(req.SelectedIDs, req.Mode, entities, submissions, categories, questions), nil
}
