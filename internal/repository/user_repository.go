package repository

import (
	"context"
	"errors"
	"fmt"
	"shop-service/internal/models"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

type userRepo struct {
	db DBTX
}

var validate = validator.New()

func NewUserRepository(db DBTX) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = models.RoleUser
	}

	if err := validate.Struct(u); err != nil {
		var validationErr validator.ValidationErrors
		if errors.As(err, &validationErr) {
			switch validationErr[0].Field() {
			case "Email":
				return fmt.Errorf("%w: invalid email format", ErrInvalidInput)
			case "Name":
				return fmt.Errorf("%w: name must be at most 150 characters", ErrInvalidInput)
			case "PasswordHash":
				return fmt.Errorf("%w: password required", ErrInvalidInput)
			}
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	sql := `
		INSERT INTO users (
			user_id,
			email,
			name,
			password_hash,
			role,
			created_at,
			updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	now := time.Now().UTC()
	u.UserID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := r.db.Exec(ctx, sql,
		u.UserID,
		u.Email,
		u.Name,
		u.PasswordHash,
		string(u.Role),
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: email already in use", ErrDuplicate)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

const userColumns = `
		user_id,
		email,
		name,
		password_hash,
		role,
		created_at,
		updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	var name pgtype.Text
	var role string

	err := row.Scan(
		&u.UserID,
		&u.Email,
		&name,
		&u.PasswordHash,
		&role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.Name = textPtr(name)
	u.Role = models.UserRole(role)
	return &u, nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	sql := `SELECT` + userColumns + `
		FROM users WHERE user_id = $1
	`

	user, err := scanUser(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user with id %s: %w", id, err)
	}

	return user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("%w: email cannot be empty", ErrInvalidInput)
	}

	sql := `SELECT` + userColumns + `
		FROM users WHERE email = $1
	`

	user, err := scanUser(r.db.QueryRow(ctx, sql, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}
