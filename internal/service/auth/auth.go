// internal/service/auth/auth.go
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leadscope-service/internal/domain/agent"
	xerrors "leadscope-service/internal/pkg/errors"
	"leadscope-service/internal/pkg/jwt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AgentStore is the persistence surface the auth service needs.
type AgentStore interface {
	Create(ctx context.Context, a *agent.Agent) error
	FindByEmail(ctx context.Context, email string) (*agent.Agent, error)
	FindByID(ctx context.Context, id int64) (*agent.Agent, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}

type AuthService struct {
	agents    AgentStore
	generator *jwt.Generator
	verifier  *jwt.Verifier
	logger    *zap.Logger
}

func NewAuthService(agents AgentStore, generator *jwt.Generator, verifier *jwt.Verifier, logger *zap.Logger) *AuthService {
	return &AuthService{
		agents:    agents,
		generator: generator,
		verifier:  verifier,
		logger:    logger,
	}
}

// Register creates a new agent account.
func (s *AuthService) Register(ctx context.Context, req *agent.RegisterRequest) (*agent.Agent, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.agents.FindByEmail(ctx, email)
	if err != nil && !xerrors.Is(err, xerrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check agent existence: %w", err)
	}
	if existing != nil {
		return nil, xerrors.ErrConflict
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	a := &agent.Agent{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  strings.TrimSpace(req.DisplayName),
		IsActive:     true,
	}
	if err := s.agents.Create(ctx, a); err != nil {
		s.logger.Error("failed to create agent", zap.Error(err))
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	s.logger.Info("agent registered", zap.Int64("agent_id", a.ID), zap.String("email", a.Email))
	return a, nil
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, req *agent.LoginRequest) (*agent.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	a, err := s.agents.FindByEmail(ctx, email)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrUnauthorized
		}
		return nil, err
	}
	if !a.IsActive {
		return nil, xerrors.ErrForbidden
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.Password)); err != nil {
		return nil, xerrors.ErrUnauthorized
	}

	token, err := s.generator.Generate(a.ID, a.DisplayName)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	now := time.Now()
	if err := s.agents.UpdateLastLogin(ctx, a.ID, now); err != nil {
		s.logger.Warn("failed to record last login", zap.Int64("agent_id", a.ID), zap.Error(err))
	}
	a.LastLoginAt.Time = now
	a.LastLoginAt.Valid = true

	return &agent.LoginResponse{Token: token, Agent: a}, nil
}

// ValidateToken verifies an access token and returns its claims.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*jwt.Claims, error) {
	return s.verifier.Verify(token)
}

// GetAgent loads an agent by id.
func (s *AuthService) GetAgent(ctx context.Context, id int64) (*agent.Agent, error) {
	return s.agents.FindByID(ctx, id)
}
