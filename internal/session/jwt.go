package session

import (
	"context"
	"fmt"
	"time"

	"sondalog-backend/internal/access"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Claims struct {
	Kind access.Kind `json:"kind"`
	jwt.RegisteredClaims
}

// Manager emite e valida os tokens de sessão. O token carrega só o tipo e o
// ID do principal; o registro é recarregado do banco a cada requisição.
type Manager struct {
	secret  []byte
	ttl     time.Duration
	revoker Revoker
	now     func() time.Time
}

func NewManager(secret string, ttl time.Duration, revoker Revoker) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, revoker: revoker, now: time.Now}
}

func (m *Manager) Issue(p access.Principal) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := &Claims{
		Kind: p.Kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   p.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (m *Manager) Parse(ctx context.Context, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de assinatura inválido")
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("token inválido ou expirado")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return nil, fmt.Errorf("token sem identificação")
	}

	revoked, err := m.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("lista de revogação indisponível: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("sessão encerrada")
	}
	return claims, nil
}

// Revoke encerra a sessão até o vencimento natural do token.
func (m *Manager) Revoke(ctx context.Context, claims *Claims) error {
	until := m.now().Add(m.ttl)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	return m.revoker.Revoke(ctx, claims.ID, until)
}

// Reissue emite um token para o principal atualizado e encerra o anterior.
// Usado quando o próprio usuário da sessão troca de login.
func (m *Manager) Reissue(ctx context.Context, old *Claims, p access.Principal) (string, time.Time, error) {
	token, exp, err := m.Issue(p)
	if err != nil {
		return "", time.Time{}, err
	}
	if old != nil {
		if err := m.Revoke(ctx, old); err != nil {
			return "", time.Time{}, err
		}
	}
	return token, exp, nil
}
