package group

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core"
	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("group not found")
)

type (
	Repository interface {
		CreateGroup(ctx context.Context, grp Group, exec ...core.DBExecutor) (Group, error)
		QueryGroups(ctx context.Context, exec ...core.DBExecutor) ([]Group, error)
		GetGroup(ctx context.Context, id string, exec ...core.DBExecutor) (Group, error)
		// UpdateGroup replaces the group row and its whole member set.
		UpdateGroup(ctx context.Context, grp Group, exec ...core.DBExecutor) (Group, error)
		DeleteGroup(ctx context.Context, id string, exec ...core.DBExecutor) error
	}

	Service struct {
		db      core.DB
		repo    Repository
		usrRepo user.Repository
	}
)

func NewService(db core.DB, repo Repository, usrRepo user.Repository) *Service {
	return &Service{db: db, repo: repo, usrRepo: usrRepo}
}

// Create creates the group along with its responsible login account. The
// responsible account carries the group's member companies as its managed set.
func (svc *Service) Create(ctx context.Context, ng NewGroup) (Group, error) {
	now := time.Now().UTC()

	responsible := user.User{
		Name:             ng.ResponsibleName,
		Email:            ng.ResponsibleEmail,
		Role:             user.RoleGroup,
		Status:           user.StatusApproved,
		ManagedCompanies: ng.Companies,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	responsible.SetActive(true)
	if err := responsible.SetPassword(ng.Password); err != nil {
		return Group{}, errors.Wrap(err, "setting password")
	}
	responsible, err := svc.usrRepo.CreateUser(ctx, responsible)
	if err != nil {
		return Group{}, errors.Wrap(err, "creating responsible user")
	}

	grp := Group{
		Name: ng.Name,
		Responsible: Responsible{
			ID:    responsible.ID,
			Name:  responsible.Name,
			Email: responsible.Email,
		},
		Companies: ng.Companies,
		CreatedAt: now,
		UpdatedAt: now,
	}
	grp, err = svc.repo.CreateGroup(ctx, grp)
	if err != nil {
		return Group{}, errors.Wrap(err, "creating group")
	}
	return grp, nil
}

func (svc *Service) Query(ctx context.Context) ([]Group, error) {
	return svc.repo.QueryGroups(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Group, error) {
	return svc.repo.GetGroup(ctx, id)
}

// Update renames the group and replaces its member companies, keeping the
// responsible account's managed set in sync.
func (svc *Service) Update(ctx context.Context, id string, ug UpdateGroup) (Group, error) {
	grp, err := svc.repo.GetGroup(ctx, id)
	if err != nil {
		return Group{}, err
	}

	grp.Name = ug.Name
	if ug.Companies != nil {
		grp.Companies = ug.Companies
	}
	grp.UpdatedAt = time.Now().UTC()

	grp, err = svc.repo.UpdateGroup(ctx, grp)
	if err != nil {
		return Group{}, errors.Wrap(err, "updating group")
	}
	if err = svc.syncResponsible(ctx, grp); err != nil {
		return Group{}, err
	}
	return grp, nil
}

// AddCompany adds a company to the group's member set.
func (svc *Service) AddCompany(ctx context.Context, id, companyName string) (Group, error) {
	grp, err := svc.repo.GetGroup(ctx, id)
	if err != nil {
		return Group{}, err
	}
	for _, name := range grp.Companies {
		if name == companyName {
			return grp, nil
		}
	}
	grp.Companies = append(grp.Companies, companyName)
	grp.UpdatedAt = time.Now().UTC()

	grp, err = svc.repo.UpdateGroup(ctx, grp)
	if err != nil {
		return Group{}, errors.Wrap(err, "updating group")
	}
	if err = svc.syncResponsible(ctx, grp); err != nil {
		return Group{}, err
	}
	return grp, nil
}

// RemoveCompany removes a company from the group's member set.
func (svc *Service) RemoveCompany(ctx context.Context, id, companyName string) (Group, error) {
	grp, err := svc.repo.GetGroup(ctx, id)
	if err != nil {
		return Group{}, err
	}
	companies := make([]string, 0, len(grp.Companies))
	for _, name := range grp.Companies {
		if name != companyName {
			companies = append(companies, name)
		}
	}
	grp.Companies = companies
	grp.UpdatedAt = time.Now().UTC()

	grp, err = svc.repo.UpdateGroup(ctx, grp)
	if err != nil {
		return Group{}, errors.Wrap(err, "updating group")
	}
	if err = svc.syncResponsible(ctx, grp); err != nil {
		return Group{}, err
	}
	return grp, nil
}

// Delete removes the group and cascades its responsible login account.
func (svc *Service) Delete(ctx context.Context, id string) error {
	grp, err := svc.repo.GetGroup(ctx, id)
	if err != nil {
		return err
	}
	if err = svc.repo.DeleteGroup(ctx, id); err != nil {
		return errors.Wrap(err, "deleting group")
	}
	if grp.Responsible.ID != "" {
		if _, err = svc.usrRepo.DeleteUsersByID(ctx, []string{grp.Responsible.ID}); err != nil {
			return errors.Wrap(err, "deleting responsible user")
		}
	}
	return nil
}

func (svc *Service) syncResponsible(ctx context.Context, grp Group) error {
	if grp.Responsible.ID == "" {
		return nil
	}
	responsible, err := svc.usrRepo.GetUser(ctx, user.GetFilter{ID: grp.Responsible.ID})
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return nil
		}
		return errors.Wrap(err, "finding responsible user")
	}
	responsible.ManagedCompanies = grp.Companies
	responsible.UpdatedAt = time.Now().UTC()
	if _, err = svc.usrRepo.UpdateUser(ctx, responsible); err != nil {
		return errors.Wrap(err, "updating responsible user")
	}
	return nil
}
