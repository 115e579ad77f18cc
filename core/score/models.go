package score

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core"
)

// Comparison modes
const (
	ModeCompanies = "companies"
	ModeEmployees = "employees"
)

// NoAnswerText is the answer-matrix marker for a question an entity never answered.
const NoAnswerText = "Não respondeu"

type (
	AnswerScore struct {
		QuestionID string `json:"question_id"`
		Score      int    `json:"score"`
	}

	// Submission is one completed questionnaire pass by one user in one
	// category at one point in time. Append-only, never edited.
	Submission struct {
		ID              string        `json:"id"`
		UserID          string        `json:"user_id"`
		UserName        string        `json:"user_name"`
		UserRole        string        `json:"user_role"`
		CompanyName     string        `json:"company_name"`
		CategoryID      string        `json:"category_id"`
		CategoryName    string        `json:"category_name"`
		Answers         []AnswerScore `json:"answers"`
		TotalScore      int           `json:"total_score"`
		MaxScore        int           `json:"max_score"`
		DetailedAnswers string        `json:"detailed_answers,omitempty"`
		PhotoURL        string        `json:"photo_url,omitempty"`
		Phone           string        `json:"phone,omitempty"`
		CreatedAt       time.Time     `json:"created_at"` // UTC
	}

	// ParsedAnswer is one normalized (question, chosen answer) pair
	// reconstructed from a submission's detailed-answers record.
	ParsedAnswer struct {
		QuestionText       string `json:"questionText"`
		SelectedAnswerText string `json:"selectedAnswerText"`
	}

	// DetailedAnswers is the tagged variant a submission's answer log arrives
	// in: either an already-structured pair list or a free-text blob in one of
	// the historical formats.
	DetailedAnswers struct {
		Pairs []ParsedAnswer
		Text  string
	}

	// Entity is one comparison target: a company (keyed by company name) or an
	// employee (keyed by the (name, company name) pair).
	Entity struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		CompanyName string `json:"company_name"`
		DisplayName string `json:"display_name"`
		PhotoURL    string `json:"photo_url,omitempty"`
	}

	EntityScore struct {
		EntityName string  `json:"entity_name"`
		Percentage float64 `json:"percentage"`
		PhotoURL   string  `json:"photo_url,omitempty"`
	}

	EntityAnswer struct {
		EntityName string `json:"entity_name"`
		AnswerText string `json:"answer_text"`
	}

	QuestionAnswers struct {
		QuestionText    string         `json:"question_text"`
		AnswersByEntity []EntityAnswer `json:"answers_by_entity"`
	}

	// AggregationResult is ephemeral: rebuilt per request, never mutated in place.
	AggregationResult struct {
		Overall            []EntityScore                `json:"overall"`
		PerCategory        map[string][]EntityScore     `json:"per_category"`
		PerQuestionAnswers map[string][]QuestionAnswers `json:"per_question_answers"`
	}
)

// NewSubmission contains information needed to record a new Submission.
type NewSubmission struct {
	CategoryID      string         `json:"category_id" validate:"required"`
	Answers         []AnswerScore  `json:"answers" validate:"required,min=1"`
	TotalScore      int            `json:"total_score" validate:"min=0"`
	MaxScore        int            `json:"max_score" validate:"min=0,gtefield=TotalScore"`
	DetailedAnswers []ParsedAnswer `json:"detailed_answers"`
}

func (ns *NewSubmission) Validate(validate *validator.Validate) error {
	ns.CategoryID = core.CleanString(ns.CategoryID)
	return validate.Struct(ns)
}

// SubmissionFilter narrows submission listings. Fields are ANDed together.
type SubmissionFilter struct {
	UserID       string   `query:"user_id"`
	UserRole     string   `query:"user_role"`
	CompanyName  string   `query:"company_name"`
	CompanyNames []string `query:"-"`
	CategoryID   string   `query:"category_id"`
}

func (sf *SubmissionFilter) IsEmpty() bool {
	return sf.UserID == "" && sf.UserRole == "" && sf.CompanyName == "" &&
		sf.CompanyNames == nil && sf.CategoryID == ""
}

func (sf *SubmissionFilter) Clean() {
	sf.UserID = core.CleanString(sf.UserID)
	sf.UserRole = core.CleanString(sf.UserRole, true /* lower */)
	sf.CompanyName = core.CleanString(sf.CompanyName)
	sf.CategoryID = core.CleanString(sf.CategoryID)
}
