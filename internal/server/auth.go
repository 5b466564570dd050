package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallledger/arview/internal/qbo"
	"go.uber.org/zap"
)

const (
	stateCookie       = "qbo_oauth_state"
	stateCookieMaxAge = 600
)

// Connect starts the QuickBooks consent flow: mints a CSRF state, stores
// it in a short-lived cookie, and redirects to the consent page.
func (s *Server) Connect(c *gin.Context) {
	state, err := qbo.NewState()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	secure := !strings.HasPrefix(s.cfg.QBO.RedirectURI, "http://")
	c.SetCookie(stateCookie, state, stateCookieMaxAge, "/", "", secure, true)
	c.Redirect(http.StatusFound, s.oauth.AuthCodeURL(state))
}

// OAuth2Redirect is the consent callback: verifies the state against the
// cookie, exchanges the code, and stores the connection.
func (s *Server) OAuth2Redirect(c *gin.Context) {
	state := strings.TrimSpace(c.Query("state"))
	expected, err := c.Cookie(stateCookie)
	if err != nil || state == "" || state != expected {
		AbortWithError(c, qbo.ErrInvalidState)
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", false, true)

	code := strings.TrimSpace(c.Query("code"))
	realmID := strings.TrimSpace(c.Query("realmId"))
	if code == "" || realmID == "" {
		AbortWithError(c, newValidationError("code", "required", "code and realmId are required"))
		return
	}

	token, err := s.oauth.Exchange(c.Request.Context(), code)
	if err != nil {
		s.log.Warn("code exchange failed", zap.Error(err))
		AbortWithError(c, err)
		return
	}
	s.tokens.Connect(realmID, token)

	if frontend := strings.TrimSpace(s.cfg.FrontendBaseURL); frontend != "" {
		c.Redirect(http.StatusFound, frontend+"?connected=1")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "connected", "realmId": realmID})
}

// Connected reports the current connection state.
func (s *Server) Connected(c *gin.Context) {
	if !s.tokens.Connected() {
		c.JSON(http.StatusOK, gin.H{"status": "disconnected"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "connected",
		"realmId": s.tokens.RealmID(),
	})
}
