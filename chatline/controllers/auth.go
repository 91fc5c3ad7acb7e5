// chatline/controllers/auth.go
package controllers

import (
	"context"
	"errors"
	"time"

	"chatline/chatline/auth"
	"chatline/chatline/config"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// AccountDirectory is what the login collaborator needs from account
// storage: the binary credential check plus the avatar listing.
type AccountDirectory interface {
	auth.Verifier
	Accounts() []auth.Account
}

type AuthController struct {
	dir AccountDirectory
	cfg config.Config
}

func NewAuthController(dir AccountDirectory, cfg config.Config) *AuthController {
	return &AuthController{dir: dir, cfg: cfg}
}

func (c *AuthController) Login(ctx context.Context, username, password string) (string, error) {
	if !c.dir.Verify(username, password) {
		return "", ErrInvalidCredentials
	}
	claims := jwt.MapClaims{
		"username": username,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(c.cfg.JWTSecret))
}

// Users lists known accounts (username + avatar) for the chat page.
func (c *AuthController) Users() []auth.Account {
	return c.dir.Accounts()
}
