package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type Claims struct {
	jwt.RegisteredClaims
	Type string `json:"typ"`
}

// UserID returns the subject as a user id.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}

type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// Manager signs and verifies the access / refresh credential pair.
type Manager struct {
	cfg Config
}

func NewManager(cfg Config) *Manager {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 24 * time.Hour
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 180 * 24 * time.Hour
	}
	return &Manager{cfg: cfg}
}

func NewManagerFromViper() *Manager {
	return NewManager(Config{
		AccessSecret:  viper.GetString("security.access_secret"),
		RefreshSecret: viper.GetString("security.refresh_secret"),
		AccessTTL:     viper.GetDuration("security.access_ttl"),
		RefreshTTL:    viper.GetDuration("security.refresh_ttl"),
		Issuer:        "sharelearner",
	})
}

func (m *Manager) AccessTTL() time.Duration {
	return m.cfg.AccessTTL
}

func (m *Manager) RefreshTTL() time.Duration {
	return m.cfg.RefreshTTL
}

func (m *Manager) IssueTokenPair(userID uint) (access string, refresh string, err error) {
	if access, err = m.IssueAccessToken(userID); err != nil {
		return
	}
	refresh, err = m.sign(userID, TokenTypeRefresh, m.cfg.RefreshSecret, m.cfg.RefreshTTL)
	return
}

func (m *Manager) IssueAccessToken(userID uint) (string, error) {
	return m.sign(userID, TokenTypeAccess, m.cfg.AccessSecret, m.cfg.AccessTTL)
}

func (m *Manager) ParseAccessToken(token string) (*Claims, error) {
	return m.parse(token, TokenTypeAccess, m.cfg.AccessSecret)
}

func (m *Manager) ParseRefreshToken(token string) (*Claims, error) {
	return m.parse(token, TokenTypeRefresh, m.cfg.RefreshSecret)
}

func (m *Manager) sign(userID uint, typ, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.cfg.Issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Type: typ,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (m *Manager) parse(token, typ, secret string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Type != typ {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
