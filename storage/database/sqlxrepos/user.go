package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core"
	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/user"
)

const userCols = `id, name, email, phone, role, company_name, company_code, position, segment_id,
state, city, district, birth_date, photo_url, status, is_active, managed_companies, password_hash,
created_at, updated_at, last_login, approved_at, approved_by_id`

type userRow struct {
	ID               string         `db:"id"`
	Name             string         `db:"name"`
	Email            string         `db:"email"`
	Phone            string         `db:"phone"`
	Role             string         `db:"role"`
	CompanyName      string         `db:"company_name"`
	CompanyCode      string         `db:"company_code"`
	Position         string         `db:"position"`
	SegmentID        null.String    `db:"segment_id"`
	State            string         `db:"state"`
	City             string         `db:"city"`
	District         string         `db:"district"`
	BirthDate        string         `db:"birth_date"`
	PhotoURL         string         `db:"photo_url"`
	Status           string         `db:"status"`
	IsActive         null.Bool      `db:"is_active"`
	ManagedCompanies pq.StringArray `db:"managed_companies"`
	PasswordHash     []byte         `db:"password_hash"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
	LastLogin        null.Time      `db:"last_login"`
	ApprovedAt       null.Time      `db:"approved_at"`
	ApprovedByID     null.String    `db:"approved_by_id"`
}

type userRepository struct {
	exec core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{exec: exec}
}

func (repo userRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo userRepository) pack(usr user.User) userRow {
	return userRow{
		ID:               usr.ID,
		Name:             usr.Name,
		Email:            usr.Email,
		Phone:            usr.Phone,
		Role:             usr.Role,
		CompanyName:      usr.CompanyName,
		CompanyCode:      usr.CompanyCode,
		Position:         usr.Position,
		SegmentID:        null.NewString(usr.SegmentID, usr.SegmentID != ""),
		State:            usr.State,
		City:             usr.City,
		District:         usr.District,
		BirthDate:        usr.BirthDate,
		PhotoURL:         usr.PhotoURL,
		Status:           usr.Status,
		IsActive:         null.BoolFromPtr(usr.IsActive),
		ManagedCompanies: pq.StringArray(usr.ManagedCompanies),
		PasswordHash:     usr.PasswordHash,
		CreatedAt:        usr.CreatedAt.UTC(),
		UpdatedAt:        usr.UpdatedAt.UTC(),
		LastLogin:        null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
		ApprovedAt:       null.NewTime(usr.ApprovedAt.UTC(), !usr.ApprovedAt.IsZero()),
		ApprovedByID:     null.NewString(usr.ApprovedByID, usr.ApprovedByID != ""),
	}
}

func (repo userRepository) unpack(row userRow) user.User {
	return user.User{
		ID:               row.ID,
		Name:             row.Name,
		Email:            row.Email,
		Phone:            row.Phone,
		Role:             row.Role,
		CompanyName:      row.CompanyName,
		CompanyCode:      row.CompanyCode,
		Position:         row.Position,
		SegmentID:        row.SegmentID.String,
		State:            row.State,
		City:             row.City,
		District:         row.District,
		BirthDate:        row.BirthDate,
		PhotoURL:         row.PhotoURL,
		Status:           row.Status,
		IsActive:         row.IsActive.Ptr(),
		ManagedCompanies: row.ManagedCompanies,
		PasswordHash:     row.PasswordHash,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
		LastLogin:        row.LastLogin.Time,
		ApprovedAt:       row.ApprovedAt.Time,
		ApprovedByID:     row.ApprovedByID.String,
	}
}

func (repo userRepository) selectUsers(ctx context.Context, exe core.DBExecutor, query string, args ...interface{}) ([]user.User, error) {
	rows, err := exe.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var rws []userRow
	if err = sqlx.StructScan(rows, &rws); err != nil {
		return nil, err
	}
	users := make([]user.User, 0, len(rws))
	for _, row := range rws {
		users = append(users, repo.unpack(row))
	}
	return users, nil
}

func (repo userRepository) getUser(ctx context.Context, exe core.DBExecutor, query string, args ...interface{}) (user.User, error) {
	users, err := repo.selectUsers(ctx, exe, query, args...)
	if err != nil {
		return user.User{}, err
	}
	if len(users) == 0 {
		return user.User{}, sql.ErrNoRows
	}
	return users[0], nil
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func trapNoRowsErr(err error, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers []user.User, exec ...core.DBExecutor) error {
	query := `SELECT COUNT(*) FROM users WHERE LOWER(email) = LOWER(?)`
	args := []interface{}{email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		query += ` AND id NOT IN (?)`
		args = append(args, ids)
	}
	query, expanded, err := sqlx.In(query, args...)
	if err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)

	var count int
	if err = repo.getExec(exec).QueryRowContext(ctx, query, expanded...).Scan(&count); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	if count > 0 {
		return user.ErrUserExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	usr.ID = uuid.New().String()
	row := repo.pack(usr)

	query := fmt.Sprintf(`INSERT INTO users (%s) VALUES
($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`, userCols)
	_, err := repo.getExec(exec).ExecContext(ctx, query,
		row.ID, row.Name, row.Email, row.Phone, row.Role, row.CompanyName, row.CompanyCode,
		row.Position, row.SegmentID, row.State, row.City, row.District, row.BirthDate,
		row.PhotoURL, row.Status, row.IsActive, row.ManagedCompanies, row.PasswordHash,
		row.CreatedAt, row.UpdatedAt, row.LastLogin, row.ApprovedAt, row.ApprovedByID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return repo.unpack(row), nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]user.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users`, userCols)
	var conds []string
	var args []interface{}

	if filter != nil {
		// users with Name, Email or CompanyName matching the search keyword
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			conds = append(conds, `(name ILIKE ? OR email ILIKE ? OR company_name ILIKE ?)`)
			args = append(args, val, val, val)
		}
		if filter.Role != "" {
			conds = append(conds, `role = ?`)
			args = append(args, filter.Role)
		}
		if filter.Status != "" {
			conds = append(conds, `status = ?`)
			args = append(args, filter.Status)
		}
		if filter.CompanyName != "" {
			conds = append(conds, `company_name = ?`)
			args = append(args, filter.CompanyName)
		}
		if filter.IsActive != nil {
			conds = append(conds, `is_active = ?`)
			args = append(args, *filter.IsActive)
		}
		if !filter.CreatedFrom.IsZero() {
			conds = append(conds, `created_at >= ?`)
			args = append(args, filter.CreatedFrom.UTC())
		}
		if !filter.CreatedTo.IsZero() {
			conds = append(conds, `created_at <= ?`)
			args = append(args, filter.CreatedTo.UTC())
		}
	}
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	query += orderingClause(ordering)
	query = sqlx.Rebind(sqlx.DOLLAR, query)

	users, err := repo.selectUsers(ctx, repo.getExec(exec), query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return users, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	exe := repo.getExec(exec)

	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return user.User{}, user.ErrNotFound
		}
		usr, err := repo.getUser(ctx, exe, fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userCols), filter.ID)
		if err != nil {
			return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "finding user by ID")
		}
		return usr, nil
	case filter.Email != "":
		usr, err := repo.getUser(ctx, exe, fmt.Sprintf(`SELECT %s FROM users WHERE LOWER(email) = LOWER($1)`, userCols), filter.Email)
		if err != nil {
			return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "finding user by email")
		}
		return usr, nil
	case filter.CompanyCode != "":
		usr, err := repo.getUser(ctx, exe, fmt.Sprintf(`SELECT %s FROM users WHERE company_code = $1`, userCols), filter.CompanyCode)
		if err != nil {
			return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "finding user by company code")
		}
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	row := repo.pack(usr)

	query := `UPDATE users SET name = $2, email = $3, phone = $4, role = $5, company_name = $6,
company_code = $7, position = $8, segment_id = $9, state = $10, city = $11, district = $12,
birth_date = $13, photo_url = $14, status = $15, is_active = $16, managed_companies = $17,
password_hash = $18, updated_at = $19, last_login = $20, approved_at = $21, approved_by_id = $22
WHERE id = $1`
	_, err := repo.getExec(exec).ExecContext(ctx, query,
		row.ID, row.Name, row.Email, row.Phone, row.Role, row.CompanyName, row.CompanyCode,
		row.Position, row.SegmentID, row.State, row.City, row.District, row.BirthDate,
		row.PhotoURL, row.Status, row.IsActive, row.ManagedCompanies, row.PasswordHash,
		row.UpdatedAt, row.LastLogin, row.ApprovedAt, row.ApprovedByID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return repo.unpack(row), nil
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	if usr.ID == "" {
		return repo.CreateUser(ctx, usr, exec...)
	}
	return repo.UpdateUser(ctx, usr, exec...)
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`DELETE FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)

	res, err := repo.getExec(exec).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	return int(cnt), nil
}

func (repo userRepository) DeleteUsersByCompanyName(ctx context.Context, companyName string, exec ...core.DBExecutor) (int, error) {
	res, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM users WHERE company_name = $1`, companyName)
	if err != nil {
		return 0, errors.Wrap(err, "deleting company users")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting company users")
	}
	return int(cnt), nil
}

func orderingClause(ordering []core.DBOrdering) string {
	if len(ordering) == 0 {
		return ""
	}
	orderList := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		orderList = append(orderList, ord.String())
	}
	return ` ORDER BY ` + strings.Join(orderList, ", ")
}
