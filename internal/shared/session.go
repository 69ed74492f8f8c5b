package shared

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionManager resolves opaque session tokens to hosts. Tokens are issued by
// the account service and stored in Redis; this process only reads and renews them.
type SessionManager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
	now        func() time.Time
}

// Session identifies the authenticated host of a request.
type Session struct {
	Token    string
	HostID   uuid.UUID
	IssuedAt time.Time
}

type sessionPayload struct {
	HostID   string    `json:"host_id"`
	IssuedAt time.Time `json:"issued_at"`
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, cookieName string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		client:     client,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		now:        time.Now,
	}
}

// Issue stores a fresh token for hostID.
func (sm *SessionManager) Issue(ctx context.Context, hostID uuid.UUID) (*Session, error) {
	if hostID == uuid.Nil {
		return nil, errors.New("shared: host id required")
	}
	token, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("shared: generate token: %w", err)
	}
	sess := &Session{Token: token.String(), HostID: hostID, IssuedAt: sm.now().UTC()}
	data, err := json.Marshal(sessionPayload{HostID: hostID.String(), IssuedAt: sess.IssuedAt})
	if err != nil {
		return nil, err
	}
	if err := sm.client.Set(ctx, sm.redisKey(sess.Token), data, sm.ttl).Err(); err != nil {
		return nil, fmt.Errorf("shared: store session: %w", err)
	}
	return sess, nil
}

// Load resolves the request token, sliding its expiry. ErrNoSession is
// returned when the request carries no token or the token is unknown.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	token := sm.tokenFromRequest(r)
	if token == "" {
		return nil, ErrNoSession
	}

	payload, err := sm.client.GetEx(ctx, sm.redisKey(token), sm.ttl).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		return nil, err
	}

	var stored sessionPayload
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, fmt.Errorf("shared: decode session: %w", err)
	}
	hostID, err := uuid.Parse(stored.HostID)
	if err != nil {
		return nil, fmt.Errorf("shared: decode session host: %w", err)
	}
	return &Session{Token: token, HostID: hostID, IssuedAt: stored.IssuedAt}, nil
}

// Revoke deletes a token. Unknown tokens are ignored.
func (sm *SessionManager) Revoke(ctx context.Context, token string) error {
	if err := sm.client.Del(ctx, sm.redisKey(token)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

// SetCookie writes the session cookie for browser clients.
func (sm *SessionManager) SetCookie(w http.ResponseWriter, sess *Session) {
	if sess == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  sm.now().Add(sm.ttl),
	})
}

// TTL exposes the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// CookieName returns the cookie identifier used for sessions.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

// tokenFromRequest prefers an Authorization bearer token over the cookie.
func (sm *SessionManager) tokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(sm.cookieName); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}

func (sm *SessionManager) redisKey(token string) string {
	return "session:" + token
}
