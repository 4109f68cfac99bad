package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hirehub/hirehub-server/internal/store"
)

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// NewWithSetup creates a new SQLite store and runs a setup function after
// the schema is applied. Useful for tests to seed data.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	s, err := New(dbPath)
	if err != nil {
		return nil, err
	}

	if setup != nil {
		if err := setup(s.db); err != nil {
			s.db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== UserStore implementation ====

// CreateUser creates a new user with hashed password.
func (s *SQLiteStore) CreateUser(ctx context.Context, username, email, phone, passwordHash string) (*store.User, error) {
	query := `
		INSERT INTO users (username, email, phone, password_hash)
		VALUES (?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, username, email, phone, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

func (s *SQLiteStore) scanUser(row *sql.Row, what string) (*store.User, error) {
	var user store.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", what, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query %s: %w", what, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*store.User, error) {
	query := `
		SELECT id, username, email, phone, password_hash, created_at
		FROM users
		WHERE id = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id), "user")
}

// GetUserByUsername retrieves a user by username.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*store.User, error) {
	query := `
		SELECT id, username, email, phone, password_hash, created_at
		FROM users
		WHERE username = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, username), "user")
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	query := `
		SELECT id, username, email, phone, password_hash, created_at
		FROM users
		WHERE email = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, email), "user")
}

// UpdateUserPassword replaces the stored password hash.
func (s *SQLiteStore) UpdateUserPassword(ctx context.Context, userID int64, passwordHash string) error {
	query := `UPDATE users SET password_hash = ? WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user: %w", store.ErrNotFound)
	}
	return nil
}

// ==== ProfileStore implementation ====

// CreateFreelancerProfile creates a freelancer profile for a user.
func (s *SQLiteStore) CreateFreelancerProfile(ctx context.Context, userID int64, bio string) error {
	query := `INSERT INTO freelancer_profiles (user_id, bio) VALUES (?, ?)`
	if _, err := s.db.ExecContext(ctx, query, userID, bio); err != nil {
		return fmt.Errorf("insert freelancer profile: %w", err)
	}
	return nil
}

// CreateClientProfile creates a client profile for a user.
func (s *SQLiteStore) CreateClientProfile(ctx context.Context, userID int64) error {
	query := `INSERT INTO client_profiles (user_id) VALUES (?)`
	if _, err := s.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("insert client profile: %w", err)
	}
	return nil
}

// GetFreelancerProfile retrieves a freelancer profile with skills.
func (s *SQLiteStore) GetFreelancerProfile(ctx context.Context, userID int64) (*store.FreelancerProfile, error) {
	query := `SELECT user_id, bio, rating FROM freelancer_profiles WHERE user_id = ?`
	var p store.FreelancerProfile
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&p.UserID, &p.Bio, &p.Rating)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("freelancer profile: %w", store.ErrNotFound)
		}
		return nil, fmt.Errorf("query freelancer profile: %w", err)
	}

	skillQuery := `
		SELECT sk.id, sk.name, sk.category_id
		FROM skills sk
		JOIN freelancer_skills fs ON fs.skill_id = sk.id
		WHERE fs.user_id = ?
		ORDER BY sk.name ASC
	`
	rows, err := s.db.QueryContext(ctx, skillQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("query freelancer skills: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sk store.Skill
		if err := rows.Scan(&sk.ID, &sk.Name, &sk.CategoryID); err != nil {
			return nil, fmt.Errorf("scan skill: %w", err)
		}
		p.Skills = append(p.Skills, sk)
	}

	return &p, rows.Err()
}

// GetClientProfile retrieves a client profile with preferred categories.
func (s *SQLiteStore) GetClientProfile(ctx context.Context, userID int64) (*store.ClientProfile, error) {
	query := `SELECT user_id FROM client_profiles WHERE user_id = ?`
	var p store.ClientProfile
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&p.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("client profile: %w", store.ErrNotFound)
		}
		return nil, fmt.Errorf("query client profile: %w", err)
	}

	catQuery := `
		SELECT c.id, c.name, c.description
		FROM categories c
		JOIN client_categories cc ON cc.category_id = c.id
		WHERE cc.user_id = ?
		ORDER BY c.name ASC
	`
	rows, err := s.db.QueryContext(ctx, catQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("query client categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c store.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		p.Categories = append(p.Categories, c)
	}

	return &p, rows.Err()
}

// UpdateFreelancerBio updates the freelancer's bio text.
func (s *SQLiteStore) UpdateFreelancerBio(ctx context.Context, userID int64, bio string) error {
	query := `UPDATE freelancer_profiles SET bio = ? WHERE user_id = ?`
	result, err := s.db.ExecContext(ctx, query, bio, userID)
	if err != nil {
		return fmt.Errorf("update freelancer bio: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("freelancer profile: %w", store.ErrNotFound)
	}
	return nil
}

// SetFreelancerSkills replaces the freelancer's skill set.
func (s *SQLiteStore) SetFreelancerSkills(ctx context.Context, userID int64, skillIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM freelancer_skills WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear freelancer skills: %w", err)
	}
	for _, skillID := range skillIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO freelancer_skills (user_id, skill_id) VALUES (?, ?)`,
			userID, skillID); err != nil {
			return fmt.Errorf("insert freelancer skill: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// SetClientCategories replaces the client's preferred categories.
func (s *SQLiteStore) SetClientCategories(ctx context.Context, userID int64, categoryIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM client_categories WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear client categories: %w", err)
	}
	for _, categoryID := range categoryIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO client_categories (user_id, category_id) VALUES (?, ?)`,
			userID, categoryID); err != nil {
			return fmt.Errorf("insert client category: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// IsFreelancer reports whether the user has a freelancer profile.
func (s *SQLiteStore) IsFreelancer(ctx context.Context, userID int64) (bool, error) {
	return s.profileExists(ctx, `SELECT 1 FROM freelancer_profiles WHERE user_id = ?`, userID)
}

// IsClient reports whether the user has a client profile.
func (s *SQLiteStore) IsClient(ctx context.Context, userID int64) (bool, error) {
	return s.profileExists(ctx, `SELECT 1 FROM client_profiles WHERE user_id = ?`, userID)
}

func (s *SQLiteStore) profileExists(ctx context.Context, query string, userID int64) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("query profile: %w", err)
	}
	return true, nil
}

// Ensure SQLiteStore implements store.Store
var _ store.Store = (*SQLiteStore)(nil)
