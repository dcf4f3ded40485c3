package context

import (
	"storehub/internal/domain/entity"

	"github.com/labstack/echo/v4"
)

const (
	// KeySession is the key for the parsed session token in echo.Context.
	KeySession ContextKey = "session"

	// KeyPrincipal is the key for the resolved principal in echo.Context.
	KeyPrincipal ContextKey = "principal"
)

// SetAuth stores the authenticated session and its freshly resolved principal.
func SetAuth(c echo.Context, session *entity.Session, principal *entity.Principal) {
	c.Set(string(KeySession), session)
	c.Set(string(KeyPrincipal), principal)
}

// GetSession returns the session set by the authentication middleware.
func GetSession(c echo.Context) (*entity.Session, bool) {
	session, ok := c.Get(string(KeySession)).(*entity.Session)

	return session, ok && session != nil
}

// GetPrincipal returns the principal set by the authentication middleware.
func GetPrincipal(c echo.Context) (*entity.Principal, bool) {
	principal, ok := c.Get(string(KeyPrincipal)).(*entity.Principal)

	return principal, ok && principal != nil
}
