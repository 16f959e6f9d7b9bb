package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"ecoChallengeAPI/internal/leaderboard"
	"ecoChallengeAPI/internal/progress"
	"ecoChallengeAPI/internal/types/category"
	"ecoChallengeAPI/internal/types/challenge"
	"ecoChallengeAPI/internal/user"
)

const uniqueViolation = "23505"

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error { return s.db.Ping(ctx) }

func (s *PostgresStore) Close() { s.db.Close() }

func (s *PostgresStore) SeedCatalog(ctx context.Context, categories []category.Category, challenges []challenge.Challenge) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, c := range categories {
		_, err := tx.Exec(ctx, `
			INSERT INTO categories (id, name)
			VALUES ($1, $2)
			ON CONFLICT (id) DO NOTHING
		`, c.ID, c.Name)
		if err != nil {
			return fmt.Errorf("failed to seed category %d: %w", c.ID, err)
		}
	}

	for _, c := range challenges {
		_, err := tx.Exec(ctx, `
			INSERT INTO challenges (id, category_id, title, tagline, description, days, card_image, daily_tasks, unique_tasks)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO NOTHING
		`, c.ID, c.CategoryID, c.Title, c.Tagline, c.Description, c.Days, c.CardImage, c.DailyTasks, c.UniqueTasks)
		if err != nil {
			return fmt.Errorf("failed to seed challenge %d: %w", c.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListCategories(ctx context.Context) ([]category.Category, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []category.Category{}
	for rows.Next() {
		var c category.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *PostgresStore) GetCategory(ctx context.Context, id int64) (*category.Category, error) {
	var c category.Category
	err := s.db.QueryRow(ctx, `SELECT id, name FROM categories WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

const challengeColumns = `id, category_id, title, tagline, description, days, card_image, daily_tasks, unique_tasks, created_at`

func scanChallenge(row pgx.Row) (*challenge.Challenge, error) {
	var c challenge.Challenge
	err := row.Scan(
		&c.ID,
		&c.CategoryID,
		&c.Title,
		&c.Tagline,
		&c.Description,
		&c.Days,
		&c.CardImage,
		&c.DailyTasks,
		&c.UniqueTasks,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresStore) queryChallenges(ctx context.Context, query string, args ...any) ([]challenge.Challenge, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query challenges: %w", err)
	}
	defer rows.Close()

	challenges := []challenge.Challenge{}
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, err
		}
		challenges = append(challenges, *c)
	}
	return challenges, rows.Err()
}

func (s *PostgresStore) ListChallenges(ctx context.Context) ([]challenge.Challenge, error) {
	return s.queryChallenges(ctx, `SELECT `+challengeColumns+` FROM challenges ORDER BY id`)
}

func (s *PostgresStore) ListChallengesByCategory(ctx context.Context, categoryID int64) ([]challenge.Challenge, error) {
	return s.queryChallenges(ctx, `SELECT `+challengeColumns+` FROM challenges WHERE category_id = $1 ORDER BY id`, categoryID)
}

func (s *PostgresStore) GetChallenge(ctx context.Context, id int64) (*challenge.Challenge, error) {
	c, err := scanChallenge(s.db.QueryRow(ctx, `SELECT `+challengeColumns+` FROM challenges WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}
	return c, nil
}

const userColumns = `id, first_name, last_name, username, email, password_hash, created_at, updated_at`

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, u *user.User) (*user.User, error) {
	query := `
	INSERT INTO users (first_name, last_name, username, email, password_hash)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING ` + userColumns

	created, err := scanUser(s.db.QueryRow(ctx, query, u.FirstName, u.LastName, u.Username, u.Email, u.PasswordHash))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id int64) (*user.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = $1`, strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]*user.User, error) {
	rows, err := s.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []*user.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *PostgresStore) DeleteUser(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateProgress(ctx context.Context, userID int64, fn UpdateFunc) ([]progress.Record, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// The user row lock serializes every progress write for this user.
	var locked int64
	err = tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}

	before, err := loadProgress(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	after, err := fn(cloneRecords(before))
	if err != nil {
		return nil, err
	}

	upserts, deletes := progress.Diff(before, after)
	if len(upserts) == 0 && len(deletes) == 0 {
		return after, nil
	}

	for _, challengeID := range deletes {
		_, err := tx.Exec(ctx, `DELETE FROM challenge_progress WHERE user_id = $1 AND challenge_id = $2`, userID, challengeID)
		if err != nil {
			return nil, fmt.Errorf("failed to delete progress: %w", err)
		}
	}

	for _, r := range upserts {
		_, err := tx.Exec(ctx, `
			INSERT INTO challenge_progress (
				user_id, challenge_id, started_at, status,
				daily_completed_tasks, unique_completed_tasks, last_daily_reset_date, points, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
			ON CONFLICT (user_id, challenge_id) DO UPDATE SET
				status = EXCLUDED.status,
				daily_completed_tasks = EXCLUDED.daily_completed_tasks,
				unique_completed_tasks = EXCLUDED.unique_completed_tasks,
				last_daily_reset_date = EXCLUDED.last_daily_reset_date,
				points = EXCLUDED.points,
				updated_at = NOW()
		`,
			userID,
			r.ChallengeID,
			r.StartedAt,
			string(r.Status),
			r.DailyCompletedTaskIDs,
			r.UniqueCompletedTaskIDs,
			r.LastDailyResetDate,
			r.Points,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to save progress: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return after, nil
}

func loadProgress(ctx context.Context, tx pgx.Tx, userID int64) ([]progress.Record, error) {
	rows, err := tx.Query(ctx, `
		SELECT challenge_id, started_at, status, daily_completed_tasks, unique_completed_tasks, last_daily_reset_date, points
		FROM challenge_progress
		WHERE user_id = $1
		ORDER BY started_at, challenge_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}
	defer rows.Close()

	records := []progress.Record{}
	for rows.Next() {
		var r progress.Record
		var status string
		err := rows.Scan(
			&r.ChallengeID,
			&r.StartedAt,
			&status,
			&r.DailyCompletedTaskIDs,
			&r.UniqueCompletedTaskIDs,
			&r.LastDailyResetDate,
			&r.Points,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		r.Status = progress.Status(status)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read progress: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) Leaderboard(ctx context.Context, limit int) (*leaderboard.Leaderboard, error) {
	query := `
	SELECT
		u.id,
		u.username,
		COALESCE(SUM(p.points), 0) AS points,
		COUNT(p.challenge_id) FILTER (WHERE p.status = 'Completed') AS completed_challenges,
		RANK() OVER (ORDER BY COALESCE(SUM(p.points), 0) DESC) AS rank
	FROM users u
	LEFT JOIN challenge_progress p ON p.user_id = u.id
	GROUP BY u.id, u.username
	ORDER BY points DESC, u.id
	LIMIT $1
	`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	board := &leaderboard.Leaderboard{Entries: []*leaderboard.LeaderboardEntry{}}
	for rows.Next() {
		var e leaderboard.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.Points, &e.CompletedChallenges, &e.Rank); err != nil {
			return nil, err
		}
		board.Entries = append(board.Entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&board.TotalUsers); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	return board, nil
}
