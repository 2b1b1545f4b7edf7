package exts

import (
	"errors"
	"strings"

	"github.com/dasamritendu619/sharelearner-server/pkg/internal/auth"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/models"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
	RefreshTokenHeader = "X-Refresh-Token"

	principalKey = "principal"
)

type Principal struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Avatar   string `json:"avatar"`
}

// Authenticator resolves the request principal from the access token.
type Authenticator struct {
	db     *gorm.DB
	tokens *auth.Manager
}

func NewAuthenticator(db *gorm.DB, tokens *auth.Manager) *Authenticator {
	return &Authenticator{db: db, tokens: tokens}
}

func AccessTokenOf(c *fiber.Ctx) string {
	if token := c.Cookies(AccessTokenCookie); token != "" && token != "null" {
		return token
	}
	header := c.Get(fiber.HeaderAuthorization)
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func RefreshTokenOf(c *fiber.Ctx) string {
	if token := c.Cookies(RefreshTokenCookie); token != "" && token != "null" {
		return token
	}
	return strings.TrimSpace(c.Get(RefreshTokenHeader))
}

func (a *Authenticator) resolve(c *fiber.Ctx) (Principal, error) {
	token := AccessTokenOf(c)
	if token == "" {
		return Principal{}, services.UnauthorizedError("unauthorized request")
	}
	claims, err := a.tokens.ParseAccessToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return Principal{}, services.TokenExpiredError("token expired")
		}
		return Principal{}, services.UnauthorizedError("unauthorized request")
	}
	id, err := claims.UserID()
	if err != nil {
		return Principal{}, services.UnauthorizedError("unauthorized request")
	}

	var user models.User
	if err := a.db.WithContext(c.UserContext()).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Principal{}, services.UnauthorizedError("unauthorized request")
		}
		return Principal{}, services.InternalError(err, "unable to load user")
	}
	// Signed out everywhere
	if len(user.RefreshTokens) == 0 {
		return Principal{}, services.UnauthorizedError("unauthorized request")
	}

	return Principal{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		Avatar:   user.Avatar,
	}, nil
}

// Require rejects requests without a valid principal.
func (a *Authenticator) Require() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := a.resolve(c)
		if err != nil {
			return err
		}
		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// Optional attaches the principal when there is one and lets anonymous requests through.
func (a *Authenticator) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if principal, err := a.resolve(c); err == nil {
			c.Locals(principalKey, principal)
		} else if services.IsKind(err, services.KindInternal) {
			return err
		}
		return c.Next()
	}
}

func GetPrincipal(c *fiber.Ctx) (Principal, bool) {
	principal, ok := c.Locals(principalKey).(Principal)
	return principal, ok
}

// ViewerOf returns the principal's id or nil for anonymous requests.
func ViewerOf(c *fiber.Ctx) *uint {
	if principal, ok := GetPrincipal(c); ok {
		return &principal.ID
	}
	return nil
}
