package user

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core"
)

var (
	// errors
	ErrNotFound       = errors.New("user not found")
	ErrUserExists     = errors.New("a user with this email already exists")
	ErrCompanyUnknown = errors.New("no company matches this code")
	ErrNotApproved    = errors.New("account pending approval")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers []User, exec ...core.DBExecutor) error
		CreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		// QueryUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of Name, Email or CompanyName.
		QueryUsers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]User, error)
		GetUser(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (User, error)
		UpdateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		UpdateOrCreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		DeleteUsersByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
		DeleteUsersByCompanyName(ctx context.Context, companyName string, exec ...core.DBExecutor) (int, error)
	}

	Service interface {
		CheckUniqueness(email string, exclUsers ...User) error
		RegisterCompany(ctx context.Context, nc NewCompany) (User, error)
		RegisterEmployee(ctx context.Context, ne NewEmployee) (User, error)
		CreateAdmin(ctx context.Context, na NewAdmin) (User, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		GetByCompanyCode(ctx context.Context, code string) (User, error)
		Approve(ctx context.Context, id string, approver User) (User, error)
		Reject(ctx context.Context, id string, approver User) (User, error)
		Update(ctx context.Context, id string, uu UpdateUser) (User, error)
		SetLastLogin(ctx context.Context, usr User) (User, error)
		ChangePassword(ctx context.Context, usr User, cp ChangeUserPassword) error
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, rp ResetUserPassword) error
		Delete(ctx context.Context, ids ...string) error
		DeleteCompany(ctx context.Context, id string) error
	}

	service struct {
		db      core.DB
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(db core.DB, repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	initTokenGenerator(conf)
	return &service{
		db:      db,
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *service) CheckUniqueness(email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, exclUsers); err != nil {
		if errors.Cause(err) == ErrUserExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) RegisterCompany(ctx context.Context, nc NewCompany) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Name:        nc.Name,
		Email:       nc.Email,
		Phone:       nc.Phone,
		Role:        RoleCompany,
		CompanyName: nc.CompanyName,
		CompanyCode: GenerateCompanyCode(nc.CompanyName, now),
		SegmentID:   nc.SegmentID,
		State:       nc.State,
		City:        nc.City,
		District:    nc.District,
		BirthDate:   nc.BirthDate,
		PhotoURL:    nc.PhotoURL,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	usr.SetActive(true)
	if err := usr.SetPassword(nc.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}

	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "creating company user")
	}
	svc.sendRegistrationReceivedMail(usr)
	return usr, nil
}

func (svc *service) RegisterEmployee(ctx context.Context, ne NewEmployee) (User, error) {
	company, err := svc.repo.GetUser(ctx, GetFilter{CompanyCode: ne.CompanyCode})
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, core.NewValidationError(
				ErrCompanyUnknown, core.FieldError{Field: "company_code", Error: ErrCompanyUnknown.Error()})
		}
		return User{}, errors.Wrap(err, "finding company by code")
	}

	now := time.Now().UTC()
	usr := User{
		Name:        ne.Name,
		Email:       ne.Email,
		Phone:       ne.Phone,
		Role:        RoleEmployee,
		CompanyName: company.CompanyName,
		CompanyCode: company.CompanyCode,
		Position:    ne.Position,
		PhotoURL:    ne.PhotoURL,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	usr.SetActive(true)
	if err = usr.SetPassword(ne.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}

	usr, err = svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "creating employee user")
	}
	svc.sendRegistrationReceivedMail(usr)
	return usr, nil
}

func (svc *service) CreateAdmin(ctx context.Context, na NewAdmin) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Name:      na.Name,
		Email:     na.Email,
		Phone:     na.Phone,
		Role:      RoleAdmin,
		Status:    StatusApproved,
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr.SetActive(true)
	if err := usr.SetPassword(na.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error) {
	if filter != nil && filter.IsEmpty() {
		filter = nil
	}
	return svc.repo.QueryUsers(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *service) GetByCompanyCode(ctx context.Context, code string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{CompanyCode: core.CleanString(code)})
}

func (svc *service) Approve(ctx context.Context, id string, approver User) (User, error) {
	usr, err := svc.repo.GetUser(ctx, GetFilter{ID: id})
	if err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	usr.Status = StatusApproved
	usr.ApprovedAt = now
	usr.ApprovedByID = approver.ID
	usr.UpdatedAt = now
	usr.SetActive(true)

	usr, err = svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "approving user")
	}
	svc.sendApprovalMail(usr)
	return usr, nil
}

func (svc *service) Reject(ctx context.Context, id string, approver User) (User, error) {
	usr, err := svc.repo.GetUser(ctx, GetFilter{ID: id})
	if err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	usr.Status = StatusRejected
	usr.ApprovedAt = now
	usr.ApprovedByID = approver.ID
	usr.UpdatedAt = now
	usr.SetActive(false)

	usr, err = svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "rejecting user")
	}
	svc.sendRejectionMail(usr)
	return usr, nil
}

func (svc *service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	usr, err := svc.repo.GetUser(ctx, GetFilter{ID: id})
	if err != nil {
		return User{}, err
	}

	usr.Name = uu.Name
	usr.Email = uu.Email
	if uu.Phone != "" {
		usr.Phone = uu.Phone
	}
	if uu.Position != "" {
		usr.Position = uu.Position
	}
	if uu.PhotoURL != "" {
		usr.PhotoURL = uu.PhotoURL
	}
	if uu.IsActive != nil {
		usr.IsActive = uu.IsActive
	}
	if uu.ManagedCompanies != nil {
		usr.ManagedCompanies = uu.ManagedCompanies
	}
	if uu.Password != "" {
		if err = usr.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "setting password")
		}
	}
	usr.UpdatedAt = time.Now().UTC()

	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *service) ChangePassword(ctx context.Context, usr User, cp ChangeUserPassword) error {
	if err := usr.CheckPassword(cp.OldPassword); err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "old_password", Error: "wrong password"})
	}
	if err := usr.SetPassword(cp.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err := svc.repo.UpdateUser(ctx, usr)
	return errors.Wrap(err, "updating user")
}

func (svc *service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	go svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *service) ResetPassword(ctx context.Context, rp ResetUserPassword) error {
	uid, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "uid", Error: "invalid value"})
	}
	usr, err := svc.repo.GetUser(ctx, GetFilter{ID: uid})
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return core.NewValidationError(err, core.FieldError{Field: "uid", Error: "invalid value"})
		}
		return err
	}
	if err = verifyToken(usr, rp.Token); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "token", Error: "invalid value"})
	}
	if err = usr.SetPassword(rp.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(ctx, usr)
	return errors.Wrap(err, "updating user")
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteUsersByID(ctx, ids)
	return err
}

// DeleteCompany removes a company account along with all of its employees.
func (svc *service) DeleteCompany(ctx context.Context, id string) error {
	usr, err := svc.repo.GetUser(ctx, GetFilter{ID: id})
	if err != nil {
		return err
	}
	if !usr.IsCompany() {
		return ErrNotFound
	}
	if _, err = svc.repo.DeleteUsersByCompanyName(ctx, usr.CompanyName); err != nil {
		return errors.Wrap(err, "deleting company users")
	}
	return nil
}

// mails

func (svc *service) sendRegistrationReceivedMail(usr User) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Cadastro recebido",
		TemplateName: "registration-received",
		TemplateData: struct{ Name string }{usr.Name},
	})
}

func (svc *service) sendApprovalMail(usr User) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Cadastro aprovado",
		TemplateName: "account-approved",
		TemplateData: struct{ Name, CompanyCode string }{usr.Name, usr.CompanyCode},
	})
}

func (svc *service) sendRejectionMail(usr User) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Cadastro não aprovado",
		TemplateName: "account-rejected",
		TemplateData: struct{ Name string }{usr.Name},
	})
}

func (svc *service) sendPasswordResetMail(usr User) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Redefinição de senha",
		TemplateName: "password-reset",
		TemplateData: struct {
			Name string
			Link string
		}{
			Name: usr.Name,
			Link: fmt.Sprintf("%s/password-reset/%s/%s", svc.conf.FrontendBaseURL, EncodeUID(usr), MakeToken(usr)),
		},
	})
}
