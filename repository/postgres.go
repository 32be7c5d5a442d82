package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"civicconnect-be/models"
)

// PostgresStore is the gorm-backed alternative to MongoStore. The *gorm.DB
// must be opened with TranslateError so unique violations surface as
// gorm.ErrDuplicatedKey.
type PostgresStore struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewPostgresStore(db *gorm.DB, timeout time.Duration) *PostgresStore {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &PostgresStore{db: db, timeout: timeout}
}

// Migrate creates or updates the users, profiles and issues tables.
func (s *PostgresStore) Migrate() error {
	if err := s.db.AutoMigrate(&models.User{}, &models.Profile{}, &models.Issue{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// DB exposes the underlying handle for tests that need to truncate tables.
func (s *PostgresStore) DB() *gorm.DB {
	return s.db
}

func (s *PostgresStore) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// --- Issues ---

func (s *PostgresStore) ListAll(ctx context.Context) ([]models.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	issues := make([]models.Issue, 0)
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&issues).Error; err != nil {
		return nil, fmt.Errorf("find issues: %w", err)
	}
	return issues, nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, userID string) ([]models.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	issues := make([]models.Issue, 0)
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&issues).Error
	if err != nil {
		return nil, fmt.Errorf("find issues: %w", err)
	}
	return issues, nil
}

func (s *PostgresStore) Insert(ctx context.Context, issue *models.Issue) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Microsecond)
	issue.ID = uuid.NewString()
	issue.CreatedAt = now
	issue.UpdatedAt = now

	if err := s.db.WithContext(ctx).Create(issue).Error; err != nil {
		return fmt.Errorf("insert issue: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, id string, update models.IssueUpdate) (*models.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	changes := map[string]any{
		"assigned_to": update.AssignedTo,
		"updated_at":  time.Now().UTC().Truncate(time.Microsecond),
	}
	if update.Status != nil {
		changes["status"] = *update.Status
	}
	if update.Priority != nil {
		changes["priority"] = *update.Priority
	}

	var issue models.Issue
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Issue{}).Where("id = ?", id).Updates(changes)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrIssueNotFound
		}
		return tx.First(&issue, "id = ?", id).Error
	})
	if err != nil {
		if errors.Is(err, ErrIssueNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update issue: %w", err)
	}
	return &issue, nil
}

// --- Profiles ---

func (s *PostgresStore) GetRole(ctx context.Context, userID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var profile models.Profile
	if err := s.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrProfileNotFound
		}
		return "", fmt.Errorf("find profile: %w", err)
	}
	return profile.Role, nil
}

func (s *PostgresStore) CreateProfile(ctx context.Context, profile *models.Profile) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(profile).Error; err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// --- Users ---

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, "email = ?", email)
}

func (s *PostgresStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.findUser(ctx, "id = ?", id)
}

func (s *PostgresStore) findUser(ctx context.Context, query string, arg any) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var user models.User
	if err := s.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}
