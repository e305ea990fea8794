package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnmate/learnmate-backend/internal/model"
)

const profileColumns = `id, email, first_name, last_name, role, created_at, updated_at`

// ProfileRepository handles profile data access.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// GetByID retrieves a profile by its user ID.
func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	p := &model.Profile{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id,
	).Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.Role, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List retrieves a page of profiles plus the total matching count.
func (r *ProfileRepository) List(ctx context.Context, f model.ProfileFilter) ([]model.Profile, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	if f.Role != "" {
		args = append(args, f.Role)
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)", n, n, n))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM profiles WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.PerPage, (f.Page-1)*f.PerPage)
	query := fmt.Sprintf(
		`SELECT %s FROM profiles WHERE %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		profileColumns, cond, len(args)-1, len(args),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	profiles := []model.Profile{}
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.Role, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		profiles = append(profiles, p)
	}
	return profiles, total, rows.Err()
}

// Create inserts a new profile.
func (r *ProfileRepository) Create(ctx context.Context, p *model.Profile) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO profiles (id, email, first_name, last_name, role)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`,
		p.ID, p.Email, p.FirstName, p.LastName, p.Role,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

// Update modifies names and role of an existing profile.
func (r *ProfileRepository) Update(ctx context.Context, p *model.Profile) error {
	return r.pool.QueryRow(ctx,
		`UPDATE profiles SET first_name = $1, last_name = $2, role = $3, updated_at = NOW()
		 WHERE id = $4
		 RETURNING updated_at`,
		p.FirstName, p.LastName, p.Role, p.ID,
	).Scan(&p.UpdatedAt)
}
