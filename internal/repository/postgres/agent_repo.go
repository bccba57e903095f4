// internal/repository/postgres/agent_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadscope-service/internal/domain/agent"
	xerrors "leadscope-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AgentRepository struct {
	db *pgxpool.Pool
}

func NewAgentRepository(db *pgxpool.Pool) *AgentRepository {
	return &AgentRepository{db: db}
}

func (r *AgentRepository) Create(ctx context.Context, a *agent.Agent) error {
	query := `
		INSERT INTO agents (email, password_hash, display_name, is_active, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		a.Email, a.PasswordHash, a.DisplayName, a.IsActive, a.Notes,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return xerrors.ErrConflict
		}
		return fmt.Errorf("failed to create agent: %w", err)
	}
	return nil
}

func (r *AgentRepository) FindByEmail(ctx context.Context, email string) (*agent.Agent, error) {
	query := `
		SELECT id, email, password_hash, display_name, is_active,
		       last_login_at, created_at, updated_at, deleted_at, notes
		FROM agents
		WHERE lower(email) = lower($1) AND deleted_at IS NULL
	`
	return r.scanOne(r.db.QueryRow(ctx, query, email))
}

func (r *AgentRepository) FindByID(ctx context.Context, id int64) (*agent.Agent, error) {
	query := `
		SELECT id, email, password_hash, display_name, is_active,
		       last_login_at, created_at, updated_at, deleted_at, notes
		FROM agents
		WHERE id = $1 AND deleted_at IS NULL
	`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *AgentRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE agents SET last_login_at = $2, updated_at = now() WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

func (r *AgentRepository) scanOne(row pgx.Row) (*agent.Agent, error) {
	var a agent.Agent
	err := row.Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.DisplayName, &a.IsActive,
		&a.LastLoginAt, &a.CreatedAt, &a.UpdatedAt, &a.DeletedAt, &a.Notes,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan agent: %w", err)
	}
	return &a, nil
}
