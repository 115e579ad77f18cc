package user

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core"
)

// Roles
const (
	RoleAdmin    = "admin"
	RoleCompany  = "company"
	RoleEmployee = "employee"
	RoleGroup    = "group"
)

// Registration statuses
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

var (
	AllRoles    = []string{RoleAdmin, RoleCompany, RoleEmployee, RoleGroup}
	AllStatuses = []string{StatusPending, StatusApproved, StatusRejected}

	Roles = []Role{
		{Name: "Empresa", Value: RoleCompany},
		{Name: "Colaborador", Value: RoleEmployee},
		{Name: "Grupo", Value: RoleGroup},
		{Name: "Administrador", Value: RoleAdmin},
	}

	companyCodeSanitizeRegex = regexp.MustCompile(`[^A-Z0-9]`)
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone,omitempty"`
	Role             string    `json:"role"`
	CompanyName      string    `json:"company_name,omitempty"`
	CompanyCode      string    `json:"company_code,omitempty"`
	Position         string    `json:"position,omitempty"`
	SegmentID        string    `json:"segment_id,omitempty"`
	State            string    `json:"state,omitempty"`
	City             string    `json:"city,omitempty"`
	District         string    `json:"district,omitempty"`
	BirthDate        string    `json:"birth_date,omitempty"`
	PhotoURL         string    `json:"photo_url,omitempty"`
	Status           string    `json:"status"`
	IsActive         *bool     `json:"is_active"`
	ManagedCompanies []string  `json:"managed_companies,omitempty"`
	PasswordHash     []byte    `json:"-"`
	CreatedAt        time.Time `json:"created_at"` // UTC
	UpdatedAt        time.Time `json:"updated_at"` // UTC
	LastLogin        time.Time `json:"last_login"` // UTC
	ApprovedAt       time.Time `json:"approved_at,omitempty"`
	ApprovedByID     string    `json:"approved_by_id,omitempty"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) SetActive(active bool) { u.IsActive = &active }

func (u *User) IsAdmin() bool    { return u.Role == RoleAdmin }
func (u *User) IsCompany() bool  { return u.Role == RoleCompany }
func (u *User) IsEmployee() bool { return u.Role == RoleEmployee }
func (u *User) IsGroup() bool    { return u.Role == RoleGroup }

func (u *User) IsApproved() bool { return u.Status == StatusApproved }

// DisplayName is the name shown in comparison dashboards.
// Employees are not globally unique by name so theirs carries the company.
func (u *User) DisplayName() string {
	if u.IsEmployee() && u.CompanyName != "" {
		return fmt.Sprintf("%s (%s)", u.Name, u.CompanyName)
	}
	return u.Name
}

// GenerateCompanyCode derives a join code from the company name and a timestamp,
// e.g. "Auto Center Silva" -> "SITAUTOCENT1234".
func GenerateCompanyCode(companyName string, now time.Time) string {
	sanitized := companyCodeSanitizeRegex.ReplaceAllString(strings.ToUpper(companyName), "")
	if len(sanitized) > 8 {
		sanitized = sanitized[:8]
	}
	ts := fmt.Sprintf("%d", now.UnixMilli())
	return "SIT" + sanitized + ts[len(ts)-4:]
}

// NewCompany contains information needed to register a new company account.
type NewCompany struct {
	Name            string `json:"name" validate:"required"`
	CompanyName     string `json:"company_name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	SegmentID       string `json:"segment_id"`
	State           string `json:"state"`
	City            string `json:"city"`
	District        string `json:"district"`
	BirthDate       string `json:"birth_date"`
	PhotoURL        string `json:"photo_url"`
}

func (nc *NewCompany) Validate(validate *validator.Validate, svc Service) error {
	nc.Name = core.CleanString(nc.Name)
	nc.CompanyName = core.CleanString(nc.CompanyName)
	nc.Email = core.CleanString(nc.Email, true /* lower */)

	if err := validate.Struct(nc); err != nil {
		return err
	}
	return svc.CheckUniqueness(nc.Email)
}

// NewEmployee contains information needed to register a new employee account.
// The employee joins an existing company via its company code.
type NewEmployee struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	CompanyCode     string `json:"company_code" validate:"required,company_code"`
	Position        string `json:"position"`
	PhotoURL        string `json:"photo_url"`
}

func (ne *NewEmployee) Validate(validate *validator.Validate, svc Service) error {
	ne.Name = core.CleanString(ne.Name)
	ne.Email = core.CleanString(ne.Email, true /* lower */)
	ne.CompanyCode = strings.ToUpper(core.CleanString(ne.CompanyCode))

	if err := validate.Struct(ne); err != nil {
		return err
	}
	return svc.CheckUniqueness(ne.Email)
}

// NewAdmin contains information needed to create a new administrator.
type NewAdmin struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (na *NewAdmin) Validate(validate *validator.Validate, svc Service) error {
	na.Name = core.CleanString(na.Name)
	na.Email = core.CleanString(na.Email, true /* lower */)

	if err := validate.Struct(na); err != nil {
		return err
	}
	return svc.CheckUniqueness(na.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name             string   `json:"name"`
	Email            string   `json:"email" validate:"omitempty,email"`
	Phone            string   `json:"phone"`
	Position         string   `json:"position"`
	PhotoURL         string   `json:"photo_url"`
	IsActive         *bool    `json:"is_active"`
	ManagedCompanies []string `json:"managed_companies"`
	Password         string   `json:"password" validate:"omitempty"`
	PasswordConfirm  string   `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Validate(origUsr User, validate *validator.Validate, svc Service) error {
	name := core.CleanString(uu.Name)
	if name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}

	email := core.CleanString(uu.Email, true /* lower */)
	if email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	if err := validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckUniqueness(uu.Email, origUsr)
}

type ChangeUserPassword struct {
	OldPassword     string `json:"old_password" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (cp ChangeUserPassword) Validate(validate *validator.Validate) error {
	return validate.Struct(cp)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error {
	return validate.Struct(rp)
}

// GetFilter selects a single User by one of its unique keys.
type GetFilter struct {
	ID          string
	Email       string
	CompanyCode string
}

// QueryFilter narrows user listings. Fields are ANDed together.
type QueryFilter struct {
	Search      string    `query:"search"`
	Role        string    `query:"role"`
	Status      string    `query:"status"`
	CompanyName string    `query:"company_name"`
	IsActive    *bool     `query:"is_active"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Role == "" && qf.Status == "" && qf.CompanyName == "" &&
		qf.IsActive == nil && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Role = core.CleanString(qf.Role, true /* lower */)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.CompanyName = core.CleanString(qf.CompanyName)
}
