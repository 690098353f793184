package users

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"mechsathi/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Create(ctx context.Context, name, email, phone string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (name, email, phone)
		VALUES (?, ?, ?)
	`, strings.TrimSpace(name), strings.TrimSpace(strings.ToLower(email)), strings.TrimSpace(phone))
	if err != nil {
		// duplicate email lands here via the UNIQUE constraint
		return 0, fmt.Errorf("create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, name, email, phone, created_at
		FROM users
		WHERE LOWER(email) = ?
	`, email)
	return scanUser(row)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, name, email, phone, created_at
		FROM users
		WHERE id = ?
	`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var phone sql.NullString
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &phone, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.Phone = phone.String
	return &u, nil
}

// ProfileUpdate carries the only fields a user may change. Nil means
// "leave as is". Keeping the set closed avoids building update statements
// from arbitrary caller-supplied column names.
type ProfileUpdate struct {
	Name  *string
	Email *string
	Phone *string
}

// UpdateProfile applies the non-nil fields. An empty update is a no-op,
// not an error.
func (r *Repo) UpdateProfile(ctx context.Context, id int64, upd ProfileUpdate) error {
	var set []string
	var args []any

	if upd.Name != nil {
		set = append(set, "name = ?")
		args = append(args, strings.TrimSpace(*upd.Name))
	}
	if upd.Email != nil {
		set = append(set, "email = ?")
		args = append(args, strings.TrimSpace(strings.ToLower(*upd.Email)))
	}
	if upd.Phone != nil {
		set = append(set, "phone = ?")
		args = append(args, strings.TrimSpace(*upd.Phone))
	}
	if len(set) == 0 {
		return nil
	}

	args = append(args, id)
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET `+strings.Join(set, ", ")+`
		WHERE id = ?
	`, args...)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update profile rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update profile: user not found")
	}
	return nil
}
