// Package store defines the persistence boundary and its PostgreSQL and
// in-memory implementations.
package store

import (
	"context"

	"ecoChallengeAPI/internal/apperr"
	"ecoChallengeAPI/internal/leaderboard"
	"ecoChallengeAPI/internal/progress"
	"ecoChallengeAPI/internal/types/category"
	"ecoChallengeAPI/internal/types/challenge"
	"ecoChallengeAPI/internal/user"
)

var (
	ErrCategoryNotFound  = apperr.New(apperr.KindNotFound, "Category not found")
	ErrChallengeNotFound = apperr.New(apperr.KindNotFound, "Challenge not found")
	ErrUserNotFound      = apperr.New(apperr.KindNotFound, "User not found")
	ErrDuplicateUser     = apperr.New(apperr.KindConflict, "userName or email already in use")
)

type CatalogStore interface {
	ListCategories(ctx context.Context) ([]category.Category, error)
	GetCategory(ctx context.Context, id int64) (*category.Category, error)
	ListChallenges(ctx context.Context) ([]challenge.Challenge, error)
	ListChallengesByCategory(ctx context.Context, categoryID int64) ([]challenge.Challenge, error)
	GetChallenge(ctx context.Context, id int64) (*challenge.Challenge, error)
	SeedCatalog(ctx context.Context, categories []category.Category, challenges []challenge.Challenge) error
}

type AccountStore interface {
	CreateUser(ctx context.Context, u *user.User) (*user.User, error)
	GetUserByID(ctx context.Context, id int64) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	ListUsers(ctx context.Context) ([]*user.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// UpdateFunc receives a private copy of the user's records and returns the
// collection to persist. Returning an error aborts without writing.
type UpdateFunc func(records []progress.Record) ([]progress.Record, error)

type ProgressStore interface {
	// UpdateProgress runs fn as one atomic read-modify-write over every
	// record of the user and persists only the records that changed.
	UpdateProgress(ctx context.Context, userID int64, fn UpdateFunc) ([]progress.Record, error)
	Leaderboard(ctx context.Context, limit int) (*leaderboard.Leaderboard, error)
}

type Store interface {
	CatalogStore
	AccountStore
	ProgressStore
	Ping(ctx context.Context) error
	Close()
}

func cloneRecords(records []progress.Record) []progress.Record {
	out := make([]progress.Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
