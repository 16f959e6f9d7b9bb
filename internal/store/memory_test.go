package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecoChallengeAPI/internal/catalog"
	"ecoChallengeAPI/internal/progress"
	"ecoChallengeAPI/internal/user"
)

func newUser(t *testing.T, s *MemoryStore, name string) *user.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), &user.User{
		FirstName:    "Test",
		LastName:     "User",
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return u
}

func TestMemoryCatalog(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.SeedCatalog(ctx, catalog.Categories(), catalog.Challenges()))
	require.NoError(t, s.SeedCatalog(ctx, catalog.Categories(), catalog.Challenges()))

	categories, err := s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, len(catalog.Categories()))
	assert.Equal(t, int64(1), categories[0].ID)

	challenges, err := s.ListChallenges(ctx)
	require.NoError(t, err)
	assert.Len(t, challenges, len(catalog.Challenges()))

	byCategory, err := s.ListChallengesByCategory(ctx, 2)
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, int64(2), byCategory[0].ID)

	_, err = s.GetChallenge(ctx, 999)
	assert.True(t, errors.Is(err, ErrChallengeNotFound))
	_, err = s.GetCategory(ctx, 999)
	assert.True(t, errors.Is(err, ErrCategoryNotFound))
}

func TestMemoryUsersUnique(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	first := newUser(t, s, "alice")
	assert.Equal(t, int64(1), first.ID)

	_, err := s.CreateUser(ctx, &user.User{Username: "alice", Email: "other@example.com"})
	assert.True(t, errors.Is(err, ErrDuplicateUser))

	_, err = s.CreateUser(ctx, &user.User{Username: "bob", Email: "ALICE@example.com"})
	assert.True(t, errors.Is(err, ErrDuplicateUser))

	found, err := s.GetUserByEmail(ctx, "Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)

	require.NoError(t, s.DeleteUser(ctx, first.ID))
	assert.True(t, errors.Is(s.DeleteUser(ctx, first.ID), ErrUserNotFound))
}

func TestMemoryUpdateProgressUnknownUser(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.UpdateProgress(context.Background(), 42, func(r []progress.Record) ([]progress.Record, error) {
		t.Fatal("update must not run for an unknown user")
		return r, nil
	})
	assert.True(t, errors.Is(err, ErrUserNotFound))
}

func TestMemoryUpdateProgressAbortsOnError(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	u := newUser(t, s, "carol")

	_, err := s.UpdateProgress(ctx, u.ID, func(r []progress.Record) ([]progress.Record, error) {
		return append(r, progress.Record{ChallengeID: 1}), nil
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = s.UpdateProgress(ctx, u.ID, func(r []progress.Record) ([]progress.Record, error) {
		r[0].Points = 100
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	records, err := s.UpdateProgress(ctx, u.ID, func(r []progress.Record) ([]progress.Record, error) { return r, nil })
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 0, records[0].Points)
}

func TestMemoryUpdateProgressSerializesPerUser(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	u := newUser(t, s, "dave")

	_, err := s.UpdateProgress(ctx, u.ID, func(r []progress.Record) ([]progress.Record, error) {
		return append(r, progress.Record{ChallengeID: 1}), nil
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.UpdateProgress(ctx, u.ID, func(r []progress.Record) ([]progress.Record, error) {
				r[0].Points++
				return r, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	records, err := s.UpdateProgress(ctx, u.ID, func(r []progress.Record) ([]progress.Record, error) { return r, nil })
	require.NoError(t, err)
	assert.Equal(t, 50, records[0].Points)
}

func TestMemoryLeaderboard(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	a := newUser(t, s, "erin")
	b := newUser(t, s, "frank")
	c := newUser(t, s, "grace")

	set := func(id int64, records ...progress.Record) {
		_, err := s.UpdateProgress(ctx, id, func([]progress.Record) ([]progress.Record, error) { return records, nil })
		require.NoError(t, err)
	}
	set(a.ID, progress.Record{ChallengeID: 1, Points: 11, Status: progress.StatusCompleted})
	set(b.ID, progress.Record{ChallengeID: 1, Points: 5}, progress.Record{ChallengeID: 2, Points: 6})
	set(c.ID, progress.Record{ChallengeID: 2, Points: 1})

	board, err := s.Leaderboard(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, board.TotalUsers)
	require.Len(t, board.Entries, 3)
	assert.Equal(t, a.ID, board.Entries[0].UserID)
	assert.Equal(t, 1, board.Entries[0].CompletedChallenges)
	assert.Equal(t, 1, board.Entries[1].Rank, "ties share a rank")
	assert.Equal(t, 3, board.Entries[2].Rank)

	board, err = s.Leaderboard(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, board.Entries, 1)
}
