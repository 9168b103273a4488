package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geoattend/attendance-backend-go/internal/domain/policy"
	"github.com/geoattend/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type policyRepository struct {
	db *database.DB
}

func NewPolicyRepository(db *database.DB) policy.Repository {
	return &policyRepository{db: db}
}

const policyColumns = `id, title, content, category, created_by, created_at, updated_at`

func scanPolicy(row pgx.Row) (policy.Policy, error) {
	var p policy.Policy
	err := row.Scan(&p.ID, &p.Title, &p.Content, &p.Category, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// Create implements policy.Repository.
func (r *policyRepository) Create(ctx context.Context, p policy.Policy) (policy.Policy, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO policies (title, content, category, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query, p.Title, p.Content, p.Category, p.CreatedBy).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return policy.Policy{}, fmt.Errorf("failed to create policy: %w", err)
	}

	return p, nil
}

// GetByID implements policy.Repository.
func (r *policyRepository) GetByID(ctx context.Context, id string) (policy.Policy, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + policyColumns + ` FROM policies WHERE id = $1`

	p, err := scanPolicy(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return policy.Policy{}, policy.ErrPolicyNotFound
		}
		return policy.Policy{}, fmt.Errorf("failed to get policy: %w", err)
	}

	return p, nil
}

// List implements policy.Repository.
func (r *policyRepository) List(ctx context.Context) ([]policy.Policy, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + policyColumns + ` FROM policies ORDER BY created_at DESC`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}
	defer rows.Close()

	var policies []policy.Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan policy: %w", err)
		}
		policies = append(policies, p)
	}

	return policies, rows.Err()
}

// Update implements policy.Repository.
func (r *policyRepository) Update(ctx context.Context, req policy.UpdatePolicyRequest) (policy.Policy, error) {
	q := GetQuerier(ctx, r.db)

	sets := []string{"updated_at = NOW()"}
	var args []interface{}
	argIdx := 1

	if req.Title != nil {
		sets = append(sets, fmt.Sprintf("title = $%d", argIdx))
		args = append(args, *req.Title)
		argIdx++
	}
	if req.Content != nil {
		sets = append(sets, fmt.Sprintf("content = $%d", argIdx))
		args = append(args, *req.Content)
		argIdx++
	}
	if req.Category != nil {
		sets = append(sets, fmt.Sprintf("category = $%d", argIdx))
		args = append(args, *req.Category)
		argIdx++
	}

	args = append(args, req.ID)

	query := fmt.Sprintf(`
		UPDATE policies
		SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(sets, ", "), argIdx, policyColumns)

	p, err := scanPolicy(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return policy.Policy{}, policy.ErrPolicyNotFound
		}
		return policy.Policy{}, fmt.Errorf("failed to update policy: %w", err)
	}

	return p, nil
}

// Delete implements policy.Repository.
func (r *policyRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM policies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete policy: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return policy.ErrPolicyNotFound
	}

	return nil
}
