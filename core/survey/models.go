package survey

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core"
)

// Question target roles
const (
	TargetCompany  = "company"
	TargetEmployee = "employee"
)

type (
	// Category is administrator-managed reference data questions hang off of.
	Category struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		CreatedAt time.Time `json:"created_at"` // UTC
		UpdatedAt time.Time `json:"updated_at"` // UTC
	}

	// Segment is the market segment a company registers under.
	Segment struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		CreatedAt time.Time `json:"created_at"` // UTC
		UpdatedAt time.Time `json:"updated_at"` // UTC
	}

	AnswerOption struct {
		ID    string `json:"id"`
		Text  string `json:"text"`
		Score int    `json:"score"`
	}

	Question struct {
		ID         string         `json:"id"`
		CategoryID string         `json:"category_id"`
		Text       string         `json:"text"`
		TargetRole string         `json:"target_role"`
		Answers    []AnswerOption `json:"answers"`
		CreatedAt  time.Time      `json:"created_at"` // UTC
		UpdatedAt  time.Time      `json:"updated_at"` // UTC
	}
)

type NewCategory struct {
	Name string `json:"name" validate:"required"`
}

func (nc *NewCategory) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

type NewSegment struct {
	Name string `json:"name" validate:"required"`
}

func (ns *NewSegment) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	return validate.Struct(ns)
}

type NewAnswerOption struct {
	Text  string `json:"text" validate:"required"`
	Score int    `json:"score"`
}

type NewQuestion struct {
	CategoryID string            `json:"category_id" validate:"required"`
	Text       string            `json:"text" validate:"required"`
	TargetRole string            `json:"target_role" validate:"required,oneof=company employee"`
	Answers    []NewAnswerOption `json:"answers" validate:"required,min=1,dive"`
}

func (nq *NewQuestion) Validate(validate *validator.Validate) error {
	nq.Text = core.CleanString(nq.Text)
	nq.TargetRole = core.CleanString(nq.TargetRole, true /* lower */)
	for i := range nq.Answers {
		nq.Answers[i].Text = core.CleanString(nq.Answers[i].Text)
	}
	return validate.Struct(nq)
}

// UpdateQuestion replaces the question text and its whole answer set.
type UpdateQuestion struct {
	Text       string            `json:"text" validate:"required"`
	TargetRole string            `json:"target_role" validate:"required,oneof=company employee"`
	Answers    []NewAnswerOption `json:"answers" validate:"required,min=1,dive"`
}

func (uq *UpdateQuestion) Validate(validate *validator.Validate) error {
	uq.Text = core.CleanString(uq.Text)
	uq.TargetRole = core.CleanString(uq.TargetRole, true /* lower */)
	for i := range uq.Answers {
		uq.Answers[i].Text = core.CleanString(uq.Answers[i].Text)
	}
	return validate.Struct(uq)
}

// QuestionFilter narrows question listings. Fields are ANDed together.
type QuestionFilter struct {
	CategoryID string `query:"category_id"`
	TargetRole string `query:"target_role"`
}

func (qf *QuestionFilter) IsEmpty() bool {
	return qf.CategoryID == "" && qf.TargetRole == ""
}

func (qf *QuestionFilter) Clean() {
	qf.CategoryID = core.CleanString(qf.CategoryID)
	qf.TargetRole = core.CleanString(qf.TargetRole, true /* lower */)
}
