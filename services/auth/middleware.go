package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/cinebuzz/discovery/models"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/webtor-io/lazymap"
)

const (
	sessionContextKey = "auth.session"
	errorContextKey   = "auth.error"
)

// Middleware resolves bearer tokens of incoming requests into sessions.
type Middleware struct {
	cl    *Client
	users *lazymap.LazyMap[*models.User]
}

func NewMiddleware(cl *Client) *Middleware {
	return &Middleware{
		cl: cl,
		users: lazymap.New[*models.User](&lazymap.Config{
			Expire:      time.Minute,
			ErrorExpire: 5 * time.Second,
			StoreErrors: true,
		}),
	}
}

func (s *Middleware) RegisterHandler(r *gin.Engine) {
	r.Use(s.resolve)
}

func bearer(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

func (s *Middleware) resolve(c *gin.Context) {
	token := bearer(c)
	if token == "" {
		c.Next()
		return
	}
	if TokenExpired(token) {
		c.Set(errorContextKey, ErrTokenExpired)
		c.Next()
		return
	}
	u, err := s.users.Get(token, func() (*models.User, error) {
		return s.cl.Me(c.Request.Context(), token)
	})
	if err != nil {
		if !errors.Is(err, ErrUnauthorized) && !errors.Is(err, ErrTokenExpired) {
			log.WithError(err).Warn("failed to resolve session")
		}
		c.Set(errorContextKey, err)
		c.Next()
		return
	}
	SetSession(c, &Session{Token: token, User: *u})
	c.Next()
}

// SetSession attaches sess to the request.
func SetSession(c *gin.Context, sess *Session) {
	c.Set(sessionContextKey, sess)
}

// GetSessionFromContext returns nil for anonymous requests.
func GetSessionFromContext(c *gin.Context) *Session {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*Session)
	return sess
}

// GetUserFromContext returns nil for anonymous requests.
func GetUserFromContext(c *gin.Context) *models.User {
	sess := GetSessionFromContext(c)
	if !sess.HasAuth() {
		return nil
	}
	return &sess.User
}

// HasAuth stops requests without a valid session.
func HasAuth(c *gin.Context) {
	if GetSessionFromContext(c).HasAuth() {
		c.Next()
		return
	}
	msg := ErrUnauthorized.Error()
	if v, ok := c.Get(errorContextKey); ok {
		if err, ok := v.(error); ok && errors.Is(err, ErrTokenExpired) {
			msg = ErrTokenExpired.Error()
		}
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
