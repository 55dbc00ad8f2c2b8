package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cinebuzz/discovery/models"
	"github.com/cinebuzz/discovery/services/store"
	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

const sessionKey = "session"

// Session is the signed-in user together with the bearer token issued for them.
type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (s *Session) HasAuth() bool {
	return s != nil && s.Token != "" && s.User.ID != ""
}

// TokenExpired reports whether token carries an exp claim in the past.
// The signature is not verified, that is up to the auth backend.
func TokenExpired(token string) bool {
	return tokenExpiredAt(token, time.Now())
}

func tokenExpiredAt(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return false
	}
	return !claims.VerifyExpiresAt(now.Unix(), false)
}

// SessionStore keeps the current session of a command line client.
type SessionStore struct {
	b store.Backend
}

func NewSessionStore(b store.Backend) *SessionStore {
	return &SessionStore{b: b}
}

// Get returns nil when nobody is signed in.
func (s *SessionStore) Get(ctx context.Context) (*Session, error) {
	data, err := s.b.Load(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, errors.Wrap(err, "failed to decode session")
	}
	return &sess, nil
}

func (s *SessionStore) Set(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(err, "failed to encode session")
	}
	return s.b.Save(ctx, sessionKey, data)
}

func (s *SessionStore) Clear(ctx context.Context) error {
	return s.b.Save(ctx, sessionKey, []byte("null"))
}
