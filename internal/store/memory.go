package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"ecoChallengeAPI/internal/leaderboard"
	"ecoChallengeAPI/internal/progress"
	"ecoChallengeAPI/internal/types/category"
	"ecoChallengeAPI/internal/types/challenge"
	"ecoChallengeAPI/internal/user"
)

// MemoryStore keeps everything in process. Used for local runs without a
// database and by tests.
type MemoryStore struct {
	mu         sync.RWMutex
	categories map[int64]category.Category
	challenges map[int64]challenge.Challenge
	users      map[int64]*user.User
	progress   map[int64][]progress.Record
	userLocks  map[int64]*sync.Mutex
	nextUserID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		categories: make(map[int64]category.Category),
		challenges: make(map[int64]challenge.Challenge),
		users:      make(map[int64]*user.User),
		progress:   make(map[int64][]progress.Record),
		userLocks:  make(map[int64]*sync.Mutex),
	}
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

func (m *MemoryStore) Close() {}

func (m *MemoryStore) SeedCatalog(ctx context.Context, categories []category.Category, challenges []challenge.Challenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range categories {
		if _, ok := m.categories[c.ID]; !ok {
			m.categories[c.ID] = c
		}
	}
	for _, c := range challenges {
		if _, ok := m.challenges[c.ID]; !ok {
			if c.CreatedAt.IsZero() {
				c.CreatedAt = time.Now().UTC()
			}
			m.challenges[c.ID] = c
		}
	}
	return nil
}

func (m *MemoryStore) ListCategories(ctx context.Context) ([]category.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]category.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) GetCategory(ctx context.Context, id int64) (*category.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, ErrCategoryNotFound
	}
	return &c, nil
}

func (m *MemoryStore) ListChallenges(ctx context.Context) ([]challenge.Challenge, error) {
	return m.filterChallenges(func(challenge.Challenge) bool { return true }), nil
}

func (m *MemoryStore) ListChallengesByCategory(ctx context.Context, categoryID int64) ([]challenge.Challenge, error) {
	return m.filterChallenges(func(c challenge.Challenge) bool { return c.CategoryID == categoryID }), nil
}

func (m *MemoryStore) filterChallenges(keep func(challenge.Challenge) bool) []challenge.Challenge {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]challenge.Challenge, 0, len(m.challenges))
	for _, c := range m.challenges {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *MemoryStore) GetChallenge(ctx context.Context, id int64) (*challenge.Challenge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.challenges[id]
	if !ok {
		return nil, ErrChallengeNotFound
	}
	return &c, nil
}

func (m *MemoryStore) CreateUser(ctx context.Context, u *user.User) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username || strings.EqualFold(existing.Email, u.Email) {
			return nil, ErrDuplicateUser
		}
	}
	m.nextUserID++
	created := *u
	created.ID = m.nextUserID
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now
	m.users[created.ID] = &created
	out := created
	return &out, nil
}

func (m *MemoryStore) GetUserByID(ctx context.Context, id int64) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			out := *u
			return &out, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MemoryStore) ListUsers(ctx context.Context) ([]*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*user.User, 0, len(m.users))
	for _, u := range m.users {
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) DeleteUser(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(m.users, id)
	delete(m.progress, id)
	return nil
}

func (m *MemoryStore) userLock(userID int64) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		m.userLocks[userID] = l
	}
	return l
}

func (m *MemoryStore) UpdateProgress(ctx context.Context, userID int64, fn UpdateFunc) ([]progress.Record, error) {
	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	m.mu.RLock()
	_, exists := m.users[userID]
	before := cloneRecords(m.progress[userID])
	m.mu.RUnlock()
	if !exists {
		return nil, ErrUserNotFound
	}

	after, err := fn(cloneRecords(before))
	if err != nil {
		return nil, err
	}

	upserts, deletes := progress.Diff(before, after)
	if len(upserts) > 0 || len(deletes) > 0 {
		m.mu.Lock()
		if _, ok := m.users[userID]; !ok {
			m.mu.Unlock()
			return nil, ErrUserNotFound
		}
		m.progress[userID] = cloneRecords(after)
		m.mu.Unlock()
	}
	return cloneRecords(after), nil
}

func (m *MemoryStore) Leaderboard(ctx context.Context, limit int) (*leaderboard.Leaderboard, error) {
	m.mu.RLock()
	entries := make([]*leaderboard.LeaderboardEntry, 0, len(m.users))
	for id, u := range m.users {
		e := &leaderboard.LeaderboardEntry{UserID: id, Username: u.Username}
		for _, r := range m.progress[id] {
			e.Points += r.Points
			if r.Status == progress.StatusCompleted {
				e.CompletedChallenges++
			}
		}
		entries = append(entries, e)
	}
	total := len(m.users)
	m.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].UserID < entries[j].UserID
	})
	for i, e := range entries {
		e.Rank = i + 1
		if i > 0 && entries[i-1].Points == e.Points {
			e.Rank = entries[i-1].Rank
		}
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return &leaderboard.Leaderboard{Entries: entries, TotalUsers: total}, nil
}
