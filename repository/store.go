package repository

import (
	"context"
	"errors"

	"civicconnect-be/models"
)

//go:generate mockgen -source=store.go -destination=mock_repository/mock_store.go

var (
	ErrIssueNotFound   = errors.New("issue not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrEmailTaken      = errors.New("user with this email already exists")
)

// IssueStore is the single mutable collection of issues. List methods return
// issues ordered by created_at, newest first.
type IssueStore interface {
	ListAll(ctx context.Context) ([]models.Issue, error)
	ListByOwner(ctx context.Context, userID string) ([]models.Issue, error)
	// Insert assigns ID and CreatedAt on issue before persisting it.
	Insert(ctx context.Context, issue *models.Issue) error
	// Update applies update to the issue with the given id and returns the
	// stored result. There is no version check: the last writer wins.
	Update(ctx context.Context, id string, update models.IssueUpdate) (*models.Issue, error)
}

// ProfileStore holds role claims.
type ProfileStore interface {
	GetRole(ctx context.Context, userID string) (string, error)
	CreateProfile(ctx context.Context, profile *models.Profile) error
}

// UserStore holds identities and their password hashes.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
}

// Store is everything the API needs from one backing database.
type Store interface {
	IssueStore
	ProfileStore
	UserStore
	Close(ctx context.Context) error
}

var (
	_ Store = (*MongoStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
