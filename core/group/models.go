package group

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core"
)

type (
	// Responsible is the user account that logs in for the group.
	Responsible struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	// Group is a set of companies compared together on one dashboard.
	Group struct {
		ID          string      `json:"id"`
		Name        string      `json:"name"`
		Responsible Responsible `json:"responsible"`
		Companies   []string    `json:"companies"`
		CreatedAt   time.Time   `json:"created_at"` // UTC
		UpdatedAt   time.Time   `json:"updated_at"` // UTC
	}
)

// NewGroup contains information needed to create a new Group along with its
// responsible user account.
type NewGroup struct {
	Name             string   `json:"name" validate:"required"`
	ResponsibleName  string   `json:"responsible_name" validate:"required"`
	ResponsibleEmail string   `json:"responsible_email" validate:"required,email"`
	Password         string   `json:"password" validate:"required"`
	PasswordConfirm  string   `json:"password_confirm" validate:"required,eqfield=Password"`
	Companies        []string `json:"companies"`
}

func (ng *NewGroup) Validate(validate *validator.Validate) error {
	ng.Name = core.CleanString(ng.Name)
	ng.ResponsibleName = core.CleanString(ng.ResponsibleName)
	ng.ResponsibleEmail = core.CleanString(ng.ResponsibleEmail, true /* lower */)
	return validate.Struct(ng)
}

// UpdateGroup renames a group and replaces its member companies.
type UpdateGroup struct {
	Name      string   `json:"name" validate:"required"`
	Companies []string `json:"companies"`
}

func (ug *UpdateGroup) Validate(validate *validator.Validate) error {
	ug.Name = core.CleanString(ug.Name)
	return validate.Struct(ug)
}
