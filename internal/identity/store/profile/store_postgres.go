package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"chemconsole/internal/identity/models"
	"chemconsole/internal/sentinel"
)

// PostgresStore persists profiles in PostgreSQL. App access is stored as a
// JSON array; unparseable values degrade to nil so the resolver substitutes
// role defaults instead of failing the lookup.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed profile store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, p *models.Profile) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("profile id is required: %w", sentinel.ErrInvalidData)
	}
	access, err := json.Marshal(p.AppAccess)
	if err != nil {
		return fmt.Errorf("marshal app access: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, email, first_name, last_name, role, company_id, app_access, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			email      = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name  = EXCLUDED.last_name,
			role       = EXCLUDED.role,
			company_id = EXCLUDED.company_id,
			app_access = EXCLUDED.app_access,
			status     = EXCLUDED.status,
			updated_at = now()`,
		p.ID, p.Email, p.FirstName, p.LastName, p.Role, p.CompanyID, access, string(p.Status),
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindActiveByID(ctx context.Context, id string) (*models.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, first_name, last_name, role, company_id, app_access, status, created_at, updated_at
		FROM profiles
		WHERE id = $1 AND status = 'active'`, id)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find profile by id: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) List(ctx context.Context, filter Filter) ([]*models.Profile, error) {
	query := `
		SELECT id, email, first_name, last_name, role, company_id, app_access, status, created_at, updated_at
		FROM profiles
		WHERE status = 'active'`
	args := []any{}
	if filter.CompanyID != nil {
		args = append(args, *filter.CompanyID)
		query += fmt.Sprintf(" AND company_id = $%d", len(args))
	}
	if filter.Role != "" {
		args = append(args, filter.Role)
		query += fmt.Sprintf(" AND role = $%d", len(args))
	}
	query += " ORDER BY email"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE profiles SET status = 'deleted', updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("profile not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	var (
		p      models.Profile
		status string
		access []byte
	)
	if err := row.Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.Role,
		&p.CompanyID, &access, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Status = models.ProfileStatus(status)
	if len(access) > 0 {
		// Unparseable app access is treated as absent; the resolver will
		// substitute role defaults.
		_ = json.Unmarshal(access, &p.AppAccess)
	}
	return &p, nil
}
