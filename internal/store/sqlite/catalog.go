package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hirehub/hirehub-server/internal/store"
)

// ==== CatalogStore implementation ====

// CreateCategory creates a category, returning the existing one on name conflict.
func (s *SQLiteStore) CreateCategory(ctx context.Context, name, description string) (*store.Category, error) {
	query := `
		INSERT INTO categories (name, description)
		VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET description = excluded.description
	`
	if _, err := s.db.ExecContext(ctx, query, name, description); err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}

	var c store.Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description FROM categories WHERE name = ?`, name,
	).Scan(&c.ID, &c.Name, &c.Description)
	if err != nil {
		return nil, fmt.Errorf("query category: %w", err)
	}
	return &c, nil
}

// CreateSkill creates a skill under a category, returning the existing one on name conflict.
func (s *SQLiteStore) CreateSkill(ctx context.Context, name string, categoryID int64) (*store.Skill, error) {
	query := `
		INSERT INTO skills (name, category_id)
		VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET category_id = excluded.category_id
	`
	if _, err := s.db.ExecContext(ctx, query, name, categoryID); err != nil {
		return nil, fmt.Errorf("insert skill: %w", err)
	}

	var sk store.Skill
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, category_id FROM skills WHERE name = ?`, name,
	).Scan(&sk.ID, &sk.Name, &sk.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("query skill: %w", err)
	}
	return &sk, nil
}

// ListCategories lists all categories with their skills.
func (s *SQLiteStore) ListCategories(ctx context.Context) ([]*store.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []*store.Category
	byID := make(map[int64]*store.Category)
	for rows.Next() {
		var c store.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, &c)
		byID[c.ID] = &c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	skillRows, err := s.db.QueryContext(ctx,
		`SELECT id, name, category_id FROM skills ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query skills: %w", err)
	}
	defer skillRows.Close()

	for skillRows.Next() {
		var sk store.Skill
		if err := skillRows.Scan(&sk.ID, &sk.Name, &sk.CategoryID); err != nil {
			return nil, fmt.Errorf("scan skill: %w", err)
		}
		if c, ok := byID[sk.CategoryID]; ok {
			c.Skills = append(c.Skills, sk)
		}
	}

	return categories, skillRows.Err()
}

// GetSkillsByNames resolves skill names to records; unknown names are skipped.
func (s *SQLiteStore) GetSkillsByNames(ctx context.Context, names []string) ([]store.Skill, error) {
	if len(names) == 0 {
		return nil, nil
	}

	query := `SELECT id, name, category_id FROM skills WHERE name IN (` + placeholders(len(names)) + `)`
	rows, err := s.db.QueryContext(ctx, query, stringArgs(names)...)
	if err != nil {
		return nil, fmt.Errorf("query skills: %w", err)
	}
	defer rows.Close()

	var skills []store.Skill
	for rows.Next() {
		var sk store.Skill
		if err := rows.Scan(&sk.ID, &sk.Name, &sk.CategoryID); err != nil {
			return nil, fmt.Errorf("scan skill: %w", err)
		}
		skills = append(skills, sk)
	}

	return skills, rows.Err()
}

// CreateService creates a service and links it to the given categories.
func (s *SQLiteStore) CreateService(ctx context.Context, svc *store.Service, categoryIDs []int64) (*store.Service, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO services (freelancer_id, title, description, price, is_active) VALUES (?, ?, ?, ?, 1)`,
		svc.FreelancerID, svc.Title, svc.Description, svc.Price)
	if err != nil {
		return nil, fmt.Errorf("insert service: %w", err)
	}

	serviceID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	for _, categoryID := range categoryIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO service_categories (service_id, category_id) VALUES (?, ?)`,
			serviceID, categoryID); err != nil {
			return nil, fmt.Errorf("link service category: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return s.GetServiceByID(ctx, serviceID)
}

// GetServiceByID retrieves a service with its categories.
func (s *SQLiteStore) GetServiceByID(ctx context.Context, id int64) (*store.Service, error) {
	query := `
		SELECT id, freelancer_id, title, description, price, is_active
		FROM services
		WHERE id = ?
	`
	var svc store.Service
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&svc.ID,
		&svc.FreelancerID,
		&svc.Title,
		&svc.Description,
		&svc.Price,
		&svc.IsActive,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("service: %w", store.ErrNotFound)
		}
		return nil, fmt.Errorf("query service: %w", err)
	}

	if err := s.attachServiceCategories(ctx, &svc); err != nil {
		return nil, err
	}

	return &svc, nil
}

// UpdateService updates mutable service fields.
func (s *SQLiteStore) UpdateService(ctx context.Context, svc *store.Service) error {
	query := `
		UPDATE services
		SET title = ?, description = ?, price = ?, is_active = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query, svc.Title, svc.Description, svc.Price, svc.IsActive, svc.ID)
	if err != nil {
		return fmt.Errorf("update service: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("service: %w", store.ErrNotFound)
	}
	return nil
}

// ListServices lists all active services.
func (s *SQLiteStore) ListServices(ctx context.Context) ([]*store.Service, error) {
	query := `
		SELECT id, freelancer_id, title, description, price, is_active
		FROM services
		WHERE is_active = 1
		ORDER BY id ASC
	`
	return s.queryServices(ctx, query)
}

// ListServicesForFreelancer lists all of a freelancer's services, active or not.
func (s *SQLiteStore) ListServicesForFreelancer(ctx context.Context, freelancerID int64) ([]*store.Service, error) {
	query := `
		SELECT id, freelancer_id, title, description, price, is_active
		FROM services
		WHERE freelancer_id = ?
		ORDER BY id ASC
	`
	return s.queryServices(ctx, query, freelancerID)
}

// SearchServicesByCategories lists active services linked to any of the named categories.
func (s *SQLiteStore) SearchServicesByCategories(ctx context.Context, names []string) ([]*store.Service, error) {
	if len(names) == 0 {
		return nil, nil
	}
	query := `
		SELECT DISTINCT sv.id, sv.freelancer_id, sv.title, sv.description, sv.price, sv.is_active
		FROM services sv
		JOIN service_categories sc ON sc.service_id = sv.id
		JOIN categories c ON c.id = sc.category_id
		WHERE sv.is_active = 1 AND c.name IN (` + placeholders(len(names)) + `)
		ORDER BY sv.id ASC
	`
	return s.queryServices(ctx, query, stringArgs(names)...)
}

// SearchServicesBySkills lists active services whose freelancer has any of the named skills.
func (s *SQLiteStore) SearchServicesBySkills(ctx context.Context, names []string) ([]*store.Service, error) {
	if len(names) == 0 {
		return nil, nil
	}
	query := `
		SELECT DISTINCT sv.id, sv.freelancer_id, sv.title, sv.description, sv.price, sv.is_active
		FROM services sv
		JOIN freelancer_skills fs ON fs.user_id = sv.freelancer_id
		JOIN skills sk ON sk.id = fs.skill_id
		WHERE sv.is_active = 1 AND sk.name IN (` + placeholders(len(names)) + `)
		ORDER BY sv.id ASC
	`
	return s.queryServices(ctx, query, stringArgs(names)...)
}

func (s *SQLiteStore) queryServices(ctx context.Context, query string, args ...any) ([]*store.Service, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query services: %w", err)
	}
	defer rows.Close()

	var services []*store.Service
	for rows.Next() {
		var svc store.Service
		if err := rows.Scan(&svc.ID, &svc.FreelancerID, &svc.Title, &svc.Description, &svc.Price, &svc.IsActive); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, &svc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, svc := range services {
		if err := s.attachServiceCategories(ctx, svc); err != nil {
			return nil, err
		}
	}

	return services, nil
}

func (s *SQLiteStore) attachServiceCategories(ctx context.Context, svc *store.Service) error {
	query := `
		SELECT c.id, c.name, c.description
		FROM categories c
		JOIN service_categories sc ON sc.category_id = c.id
		WHERE sc.service_id = ?
		ORDER BY c.name ASC
	`
	rows, err := s.db.QueryContext(ctx, query, svc.ID)
	if err != nil {
		return fmt.Errorf("query service categories: %w", err)
	}
	defer rows.Close()

	svc.Categories = nil
	for rows.Next() {
		var c store.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return fmt.Errorf("scan category: %w", err)
		}
		svc.Categories = append(svc.Categories, c)
	}

	return rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
