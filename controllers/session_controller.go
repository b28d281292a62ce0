package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yashrajoria/storefront/auth"
	apperrors "github.com/yashrajoria/storefront/errors"
	"github.com/yashrajoria/storefront/logger"
)

// SessionCookie writes and expires the cookie holding the session token.
type SessionCookie struct {
	Name   string
	Secure bool
}

func (sc SessionCookie) Set(c *gin.Context, token string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     sc.Name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   sc.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if !expires.IsZero() {
		cookie.Expires = expires
		cookie.MaxAge = int(time.Until(expires).Seconds())
		if cookie.MaxAge <= 0 {
			cookie.MaxAge = -1
		}
	}
	http.SetCookie(c.Writer, cookie)
}

func (sc SessionCookie) Expire(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sc.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sc.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

type SessionController struct {
	cookie    SessionCookie
	resolver  *auth.Resolver
	loginPath string
	log       *zap.Logger
}

func NewSessionController(cookie SessionCookie, resolver *auth.Resolver, loginPath string, log *zap.Logger) *SessionController {
	return &SessionController{cookie: cookie, resolver: resolver, loginPath: loginPath, log: log}
}

type sessionRequest struct {
	Token string `json:"token" form:"token"`
}

// Login stores the token issued by the backend's /auth/login in the session
// cookie. The cookie expires with the token when the token carries exp.
func (sc *SessionController) Login(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(apperrors.Wrap(apperrors.ErrInvalidInput, err))
		return
	}
	token := strings.TrimSpace(req.Token)
	if token == "" {
		_ = c.Error(apperrors.New(http.StatusBadRequest, "token is required", nil))
		return
	}

	var expires time.Time
	claims, err := sc.resolver.Claims(token)
	if err != nil {
		logger.For(c, sc.log).Debug("storing token that does not resolve to a user", zap.Error(err))
	} else if claims.ExpiresAt != 0 {
		expires = time.Unix(claims.ExpiresAt, 0)
	}

	sc.cookie.Set(c, token, expires)
	c.JSON(http.StatusOK, gin.H{"user_id": claims.UserID})
}

// Logout drops the session cookie and sends the browser to the login page.
// The cart record is kept.
func (sc *SessionController) Logout(c *gin.Context) {
	sc.cookie.Expire(c)
	c.Redirect(http.StatusSeeOther, sc.loginPath)
}

// Health reports liveness.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
