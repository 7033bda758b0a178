package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/school-teachers-api/internal/models"
)

const pqUniqueViolation = "23505"

// IsUniqueViolation reports whether err stems from a UNIQUE constraint.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

// UserRepository provides database access for user accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// FindByUsername returns a user by username. sql.ErrNoRows is returned unwrapped.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	const query = `SELECT id, firstname, lastname, username, password, afm, father_name, father_lastname, mother_name, mother_lastname, date_of_birth, gender, role, is_active, created_at, updated_at FROM users WHERE username = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return &user, nil
}

// ExistsByAfm checks whether an account already uses the tax id.
func (r *UserRepository) ExistsByAfm(ctx context.Context, exec sqlx.ExtContext, afm string) (bool, error) {
	return r.exists(ctx, exec, "SELECT 1 FROM users WHERE afm = $1 LIMIT 1", afm, "check user afm")
}

// ExistsByUsername checks whether an account already uses the username.
func (r *UserRepository) ExistsByUsername(ctx context.Context, exec sqlx.ExtContext, username string) (bool, error) {
	return r.exists(ctx, exec, "SELECT 1 FROM users WHERE username = $1 LIMIT 1", username, "check user username")
}

func (r *UserRepository) exists(ctx context.Context, exec sqlx.ExtContext, query, arg, op string) (bool, error) {
	var found int
	if err := sqlx.GetContext(ctx, r.exec(exec), &found, query, arg); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Insert stores a new account and sets its generated id.
func (r *UserRepository) Insert(ctx context.Context, exec sqlx.ExtContext, user *models.User) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	const query = `INSERT INTO users (firstname, lastname, username, password, afm, father_name, father_lastname, mother_name, mother_lastname, date_of_birth, gender, role, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15) RETURNING id`
	row := r.exec(exec).QueryRowxContext(ctx, query,
		user.Firstname, user.Lastname, user.Username, user.PasswordHash, user.Afm,
		user.FatherName, user.FatherLastname, user.MotherName, user.MotherLastname,
		user.DateOfBirth, user.Gender, user.Role, user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
	if err := row.Scan(&user.ID); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// CreateAuditLog records an audit entry.
func (r *UserRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (username, action, resource, resource_id, new_values, ip_address, user_agent, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	row := r.db.QueryRowxContext(ctx, query, log.Username, log.Action, log.Resource, log.ResourceID, log.NewValues, log.IPAddress, log.UserAgent, log.CreatedAt)
	if err := row.Scan(&log.ID); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
