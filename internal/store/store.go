package store

import (
	"context"                     // Request-scoped cancellation
	"errors"                      // Sentinel errors
	"fmt"                         // Error wrapping
	"leaderboard/internal/domain" // Importing domain models
	"time"                        // Activity window

	"gorm.io/gorm" // GORM ORM library
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUsernameTaken   = errors.New("username already exists")
	ErrNegativeBalance = errors.New("point balance would become negative")
)

// Page selects a window of a listing; a zero Size means everything
type Page struct {
	Number int // 1-based page number
	Size   int // Items per page
}

// paginate applies the page window to a query
func paginate(p Page) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.Size <= 0 {
			return db
		}
		number := p.Number
		if number < 1 {
			number = 1
		}
		return db.Offset((number - 1) * p.Size).Limit(p.Size)
	}
}

// Store persists users, contributions and login logs through GORM
type Store struct {
	db *gorm.DB
}

// New wraps an open GORM handle
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreateUser inserts a user, failing with ErrUsernameTaken on a duplicate username
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("username = ?", user.Username).Count(&n).Error; err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if n > 0 {
		return ErrUsernameTaken
	}
	// The unique index still decides when two registrations race past the check
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindUserByUsername returns the live user record
func (s *Store) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// AppendLoginLog records a login event
func (s *Store) AppendLoginLog(ctx context.Context, entry *domain.LoginLog) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("append login log: %w", err)
	}
	return nil
}

// RecordContribution appends the contribution and increments the owner's balance
// in one transaction. The increment is evaluated by the database, and the
// balance is never allowed below zero.
func (s *Store) RecordContribution(ctx context.Context, c *domain.Contribution) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := incrementPoints(tx, c.Username, c.Points) // Single UPDATE, no read
		if res.Error != nil {
			return fmt.Errorf("increment points: %w", res.Error) // Rollback
		}
		if res.RowsAffected == 0 {
			// Either the user is gone or the delta would go below zero
			var n int64
			if err := tx.Model(&domain.User{}).Where("username = ?", c.Username).Count(&n).Error; err != nil {
				return fmt.Errorf("check user: %w", err)
			}
			if n == 0 {
				return ErrUserNotFound
			}
			return ErrNegativeBalance
		}
		if err := tx.Create(c).Error; err != nil {
			return fmt.Errorf("insert contribution: %w", err) // Rollback
		}
		return nil // Commit transaction
	})
}

// incrementPoints adds delta to the balance inside the database, only when the
// result stays non-negative
func incrementPoints(tx *gorm.DB, username string, delta int64) *gorm.DB {
	return tx.Model(&domain.User{}).
		Where("username = ? AND points + ? >= 0", username, delta).
		Update("points", gorm.Expr("points + ?", delta))
}

// ListUsersByPoints returns every user, highest balance first, ties by username
func (s *Store) ListUsersByPoints(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := s.db.WithContext(ctx).Order("points desc").Order("username asc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list leaderboard: %w", err)
	}
	return users, nil
}

// ListUsers returns users in creation order
func (s *Store) ListUsers(ctx context.Context, p Page) ([]domain.User, error) {
	var users []domain.User
	if err := s.db.WithContext(ctx).Scopes(paginate(p)).Order("id asc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// ListContributions returns a user's contributions, newest first
func (s *Store) ListContributions(ctx context.Context, username string) ([]domain.Contribution, error) {
	var out []domain.Contribution
	if err := s.db.WithContext(ctx).
		Where("username = ?", username).
		Order("timestamp desc").Order("id desc").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list contributions: %w", err)
	}
	return out, nil
}

// ListLoginLogs returns login events, newest first
func (s *Store) ListLoginLogs(ctx context.Context, p Page) ([]domain.LoginLog, error) {
	var out []domain.LoginLog
	if err := s.db.WithContext(ctx).Scopes(paginate(p)).Order("timestamp desc").Order("id desc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list login logs: %w", err)
	}
	return out, nil
}

// RecalculatePoints rebuilds every balance from the contribution log and
// returns the number of users updated
func (s *Store) RecalculatePoints(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Exec(
		"UPDATE users SET points = COALESCE((SELECT SUM(c.points) FROM contributions c WHERE c.username = users.username), 0)",
	)
	if res.Error != nil {
		return 0, fmt.Errorf("recalculate points: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Stats counts users, contributions and the distinct users that logged in
// since the given time
func (s *Store) Stats(ctx context.Context, since time.Time) (domain.Stats, error) {
	var st domain.Stats
	db := s.db.WithContext(ctx)
	if err := db.Model(&domain.User{}).Count(&st.TotalUsers).Error; err != nil {
		return st, fmt.Errorf("count users: %w", err)
	}
	if err := db.Model(&domain.Contribution{}).Count(&st.TotalContributions).Error; err != nil {
		return st, fmt.Errorf("count contributions: %w", err)
	}
	if err := db.Model(&domain.LoginLog{}).
		Where("timestamp >= ?", since).
		Distinct("username").
		Count(&st.ActiveUsers).Error; err != nil {
		return st, fmt.Errorf("count active users: %w", err)
	}
	st.ActiveSince = since
	return st, nil
}
