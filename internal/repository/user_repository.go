package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"tasktrack/internal/model"
)

var (
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrDuplicateEmail    = errors.New("duplicate email")
)

const (
	mysqlDuplicateEntry     = 1062
	postgresUniqueViolation = "23505"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts the user in a single statement. A concurrent registration
// for the same username or email loses on the unique index and comes back as
// ErrDuplicateUsername or ErrDuplicateEmail.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if dup := translateUniqueViolation(err); dup != nil {
			return dup
		}
		return fmt.Errorf("create user failed: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by username failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by id failed: %w", err)
	}
	return &user, nil
}

func translateUniqueViolation(err error) error {
	key, ok := uniqueViolationKey(err)
	if !ok {
		return nil
	}
	switch {
	case strings.HasSuffix(key, "username"):
		return ErrDuplicateUsername
	case strings.HasSuffix(key, "email"):
		return ErrDuplicateEmail
	}
	return nil
}

// uniqueViolationKey returns the index or column named by a unique
// constraint failure for each supported driver.
func uniqueViolationKey(err error) (string, bool) {
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		if myErr.Number != mysqlDuplicateEntry {
			return "", false
		}
		// Duplicate entry 'alice' for key 'users.idx_users_username'
		idx := strings.LastIndex(myErr.Message, "for key ")
		if idx < 0 {
			return "", true
		}
		return strings.Trim(myErr.Message[idx+len("for key "):], "'`\" "), true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != postgresUniqueViolation {
			return "", false
		}
		return pgErr.ConstraintName, true
	}

	// sqlite: "UNIQUE constraint failed: users.username (2067)"
	const marker = "UNIQUE constraint failed: "
	msg := err.Error()
	idx := strings.Index(msg, marker)
	if idx < 0 {
		return "", false
	}
	key := msg[idx+len(marker):]
	if end := strings.IndexAny(key, " ,"); end >= 0 {
		key = key[:end]
	}
	return key, true
}
