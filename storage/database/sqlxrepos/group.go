package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core"
	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/group"
)

const groupCols = `g.id, g.name, g.responsible_id, g.companies, g.created_at, g.updated_at,
COALESCE(u.name, '') AS responsible_name, COALESCE(u.email, '') AS responsible_email`

const groupFrom = ` FROM groups g LEFT JOIN users u ON u.id = g.responsible_id`

type groupRow struct {
	ID               string         `db:"id"`
	Name             string         `db:"name"`
	ResponsibleID    null.String    `db:"responsible_id"`
	ResponsibleName  string         `db:"responsible_name"`
	ResponsibleEmail string         `db:"responsible_email"`
	Companies        pq.StringArray `db:"companies"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

type groupRepository struct {
	exec core.DBExecutor
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(exec core.DBExecutor) *groupRepository {
	return &groupRepository{exec: exec}
}

func (repo groupRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo groupRepository) unpack(row groupRow) group.Group {
	return group.Group{
		ID:   row.ID,
		Name: row.Name,
		Responsible: group.Responsible{
			ID:    row.ResponsibleID.String,
			Name:  row.ResponsibleName,
			Email: row.ResponsibleEmail,
		},
		Companies: row.Companies,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func (repo groupRepository) selectGroups(ctx context.Context, exe core.DBExecutor, query string, args ...interface{}) ([]group.Group, error) {
	rows, err := exe.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var rws []groupRow
	if err = sqlx.StructScan(rows, &rws); err != nil {
		return nil, err
	}
	groups := make([]group.Group, 0, len(rws))
	for _, row := range rws {
		groups = append(groups, repo.unpack(row))
	}
	return groups, nil
}

func (repo groupRepository) CreateGroup(ctx context.Context, grp group.Group, exec ...core.DBExecutor) (group.Group, error) {
	grp.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO groups (id, name, responsible_id, companies, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		grp.ID, grp.Name, null.NewString(grp.Responsible.ID, grp.Responsible.ID != ""),
		pq.StringArray(grp.Companies), grp.CreatedAt.UTC(), grp.UpdatedAt.UTC())
	if err != nil {
		return group.Group{}, errors.Wrap(err, "inserting group")
	}
	return grp, nil
}

func (repo groupRepository) QueryGroups(ctx context.Context, exec ...core.DBExecutor) ([]group.Group, error) {
	groups, err := repo.selectGroups(ctx, repo.getExec(exec),
		`SELECT `+groupCols+groupFrom+` ORDER BY g.name ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "querying groups")
	}
	return groups, nil
}

func (repo groupRepository) GetGroup(ctx context.Context, id string, exec ...core.DBExecutor) (group.Group, error) {
	if _, err := uuid.Parse(id); err != nil {
		return group.Group{}, group.ErrNotFound
	}
	groups, err := repo.selectGroups(ctx, repo.getExec(exec),
		`SELECT `+groupCols+groupFrom+` WHERE g.id = $1`, id)
	if err != nil {
		return group.Group{}, errors.Wrap(err, "finding group")
	}
	if len(groups) == 0 {
		return group.Group{}, group.ErrNotFound
	}
	return groups[0], nil
}

func (repo groupRepository) UpdateGroup(ctx context.Context, grp group.Group, exec ...core.DBExecutor) (group.Group, error) {
	_, err := repo.getExec(exec).ExecContext(ctx,
		`UPDATE groups SET name = $2, companies = $3, updated_at = $4 WHERE id = $1`,
		grp.ID, grp.Name, pq.StringArray(grp.Companies), grp.UpdatedAt.UTC())
	if err != nil {
		return group.Group{}, errors.Wrap(err, "updating group")
	}
	return grp, nil
}

func (repo groupRepository) DeleteGroup(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if _, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting group")
	}
	return nil
}
