package myjwt

import (
	"context"
	"errors"
	"strings"
	"time"

	"NotifyLink/internal/config"
	"NotifyLink/pkg/util"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptyKey       = errors.New("jwt key is empty")
	ErrMissingToken   = errors.New("missing token")
	ErrInvalidToken   = errors.New("invalid token")
	ErrMissingSubject = errors.New("token has no subject claim")
	ErrRevokedToken   = errors.New("token has been revoked")
)

type CustomClaims struct {
	Uuid     string `json:"uuid"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// SubjectID 优先取 uuid，兼容只签发了 sub 的令牌
func (c *CustomClaims) SubjectID() string {
	if c == nil {
		return ""
	}
	if s := strings.TrimSpace(c.Uuid); s != "" {
		return s
	}
	return strings.TrimSpace(c.Subject)
}

// RevocationStore 已注销令牌的查询与登记
type RevocationStore interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

// Manager 负责签发与校验令牌，同时实现身份校验器
type Manager struct {
	key         []byte
	issuer      string
	expire      time.Duration
	revocations RevocationStore
	now         func() time.Time
}

func NewManager(conf config.JwtConfig, revocations RevocationStore) *Manager {
	expireHours := conf.ExpireHours
	if expireHours <= 0 {
		expireHours = 24
	}
	return &Manager{
		key:         []byte(conf.Key),
		issuer:      conf.Issuer,
		expire:      time.Duration(expireHours) * time.Hour,
		revocations: revocations,
		now:         time.Now,
	}
}

func (m *Manager) GenerateToken(uuid string, username string) (string, error) {
	if len(m.key) == 0 {
		return "", ErrEmptyKey
	}

	now := m.now()
	claims := CustomClaims{
		Uuid:     uuid,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        util.GenerateTokenID(),
			Subject:   uuid,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expire)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.key)
}

func (m *Manager) ParseToken(tokenString string) (*CustomClaims, error) {
	if len(m.key) == 0 {
		return nil, ErrEmptyKey
	}
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrMissingToken
	}

	opts := []jwt.ParserOption{jwt.WithTimeFunc(m.now)}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.key, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Verify 校验令牌并返回主体 ID；吊销检查需要访问 Redis，受 ctx 约束
func (m *Manager) Verify(ctx context.Context, tokenString string) (*CustomClaims, error) {
	claims, err := m.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.SubjectID() == "" {
		return nil, ErrMissingSubject
	}
	if m.revocations != nil && claims.ID != "" {
		revoked, err := m.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrRevokedToken
		}
	}
	return claims, nil
}

// Revoke 注销令牌直到其自然过期
func (m *Manager) Revoke(ctx context.Context, claims *CustomClaims) error {
	if m.revocations == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if left := claims.ExpiresAt.Sub(m.now()); left > 0 {
			ttl = left
		}
	}
	return m.revocations.Revoke(ctx, claims.ID, ttl)
}
