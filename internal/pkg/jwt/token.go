// internal/pkg/jwt/token.go
package jwt

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

type Config struct {
	PrivPath string
	PubPath  string
	Issuer   string
	Audience string
	TTL      time.Duration
	KID      string
}

// Claims carried by an agent access token.
type Claims struct {
	AgentID     int64  `json:"agent_id"`
	DisplayName string `json:"display_name,omitempty"`
	jwt.RegisteredClaims
}

type Generator struct {
	priv     *rsa.PrivateKey
	issuer   string
	audience string
	kid      string
	TTL      time.Duration
}

func NewGenerator(priv *rsa.PrivateKey, cfg Config) *Generator {
	return &Generator{
		priv:     priv,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		kid:      cfg.KID,
		TTL:      cfg.TTL,
	}
}

// Generate issues a signed access token for an agent.
func (g *Generator) Generate(agentID int64, displayName string) (string, error) {
	now := time.Now()
	claims := &Claims{
		AgentID:     agentID,
		DisplayName: displayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ulid.Make().String(),
			Issuer:    g.issuer,
			Audience:  jwt.ClaimStrings{g.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.TTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = g.kid

	signed, err := token.SignedString(g.priv)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

type Verifier struct {
	pub      *rsa.PublicKey
	issuer   string
	audience string
}

func NewVerifier(pub *rsa.PublicKey, cfg Config) *Verifier {
	return &Verifier{pub: pub, issuer: cfg.Issuer, audience: cfg.Audience}
}

// Verify parses and validates an access token, returning its claims.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.pub, nil
	},
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
