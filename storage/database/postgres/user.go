package postgresdb

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/preskool/core/user"
)

type (
	userRepository struct {
		db *sqlx.DB
	}

	userRow struct {
		ID           int            `db:"id"`
		Name         string         `db:"name"`
		Username     string         `db:"username"`
		Email        string         `db:"email"`
		IsActive     bool           `db:"is_active"`
		Roles        pq.StringArray `db:"roles"`
		PasswordHash []byte         `db:"password_hash"`
		CreatedAt    time.Time      `db:"created_at"`
		LastLogin    null.Time      `db:"last_login"`
	}
)

func (row userRow) user() user.User {
	return user.User{
		ID:           row.ID,
		Name:         row.Name,
		Username:     row.Username,
		Email:        row.Email,
		IsActive:     row.IsActive,
		Roles:        []string(row.Roles),
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
		LastLogin:    row.LastLogin.Time,
	}
}

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(username, email string) error {
	var row struct {
		Username string `db:"username"`
		Email    string `db:"email"`
	}
	err := repo.db.Get(&row, `
		SELECT username, email FROM users
		WHERE ($1 <> '' AND username = $1) OR ($2 <> '' AND email = $2)
		LIMIT 1`, username, email)
	switch {
	case err == sql.ErrNoRows:
		return nil
	case err != nil:
		return errors.Wrap(err, "checking uniqueness")
	case username != "" && row.Username == username:
		return user.ErrUsernameExists
	default:
		return user.ErrEmailExists
	}
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	row := userRow{
		Name:         usr.Name,
		Username:     usr.Username,
		Email:        usr.Email,
		IsActive:     usr.IsActive,
		Roles:        pq.StringArray(usr.Roles),
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt,
	}
	if row.Roles == nil {
		row.Roles = pq.StringArray{}
	}
	q := `
		INSERT INTO users (name, username, email, is_active, roles, password_hash, created_at)
		VALUES (:name, :username, :email, :is_active, :roles, :password_hash, :created_at)
		RETURNING id`
	stmt, err := repo.db.PrepareNamed(q)
	if err != nil {
		return user.User{}, errors.Wrap(err, "preparing insert")
	}
	defer func() { _ = stmt.Close() }()

	if err = stmt.Get(&usr.ID, row); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) getOne(q string, args ...interface{}) (user.User, error) {
	var row userRow
	if err := repo.db.Get(&row, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user")
	}
	return row.user(), nil
}

func (repo *userRepository) GetUserByID(id int) (user.User, error) {
	return repo.getOne(`SELECT * FROM users WHERE id = $1`, id)
}

func (repo *userRepository) GetUserByUsernameOrEmail(username string) (user.User, error) {
	return repo.getOne(`SELECT * FROM users WHERE username = $1 OR email = $1 LIMIT 1`, username)
}

func (repo *userRepository) SetLastLogin(id int, at time.Time) error {
	res, err := repo.db.Exec(`UPDATE users SET last_login = $2 WHERE id = $1`, id, at)
	if err != nil {
		return errors.Wrap(err, "setting last_login")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo *userRepository) SetPassword(id int, hash []byte) error {
	res, err := repo.db.Exec(`UPDATE users SET password_hash = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return errors.Wrap(err, "setting password_hash")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.ErrNotFound
	}
	return nil
}
