// internal/domain/agent/entity.go
package agent

import (
	"database/sql"
	"time"
)

type Agent struct {
	ID           int64          `json:"id" db:"id"`
	Email        string         `json:"email" db:"email"`
	PasswordHash string         `json:"-" db:"password_hash"`
	DisplayName  string         `json:"display_name" db:"display_name"`
	IsActive     bool           `json:"is_active" db:"is_active"`
	LastLoginAt  sql.NullTime   `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
	DeletedAt    sql.NullTime   `json:"deleted_at,omitempty" db:"deleted_at"`
	Notes        sql.NullString `json:"notes,omitempty" db:"notes"`
}

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email,max=255"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	DisplayName string `json:"display_name" binding:"required,max=255"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Agent *Agent `json:"agent"`
}
