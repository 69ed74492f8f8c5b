package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "tempest_session", time.Hour, false), mr
}

func TestIssueAndLoadBearerToken(t *testing.T) {
	sm, mr := newTestManager(t)
	ctx := context.Background()
	host := uuid.New()

	sess, err := sm.Issue(ctx, host)
	require.NoError(t, err)
	assert.True(t, mr.Exists("session:"+sess.Token))

	req := httptest.NewRequest(http.MethodGet, "/host/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	loaded, err := sm.Load(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, host, loaded.HostID)
	assert.Equal(t, sess.Token, loaded.Token)
}

func TestLoadFromCookieSlidesExpiry(t *testing.T) {
	sm, mr := newTestManager(t)
	ctx := context.Background()
	sess, err := sm.Issue(ctx, uuid.New())
	require.NoError(t, err)

	mr.FastForward(50 * time.Minute)
	req := httptest.NewRequest(http.MethodGet, "/host/calendar", nil)
	req.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: sess.Token})
	_, err = sm.Load(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, time.Hour, mr.TTL("session:"+sess.Token))
}

func TestLoadWithoutOrUnknownToken(t *testing.T) {
	sm, _ := newTestManager(t)
	ctx := context.Background()

	_, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.ErrorIs(t, err, ErrNoSession)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+uuid.NewString())
	_, err = sm.Load(ctx, req)
	require.ErrorIs(t, err, ErrNoSession)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	_, err = sm.Load(ctx, req)
	require.ErrorIs(t, err, ErrNoSession)
}

func TestRevokeRemovesSession(t *testing.T) {
	sm, mr := newTestManager(t)
	ctx := context.Background()
	sess, err := sm.Issue(ctx, uuid.New())
	require.NoError(t, err)

	require.NoError(t, sm.Revoke(ctx, sess.Token))
	assert.False(t, mr.Exists("session:"+sess.Token))
	require.NoError(t, sm.Revoke(ctx, sess.Token))
}

func TestSetCookieAndContext(t *testing.T) {
	sm, _ := newTestManager(t)
	sess := &Session{Token: "abc", HostID: uuid.New()}

	rr := httptest.NewRecorder()
	sm.SetCookie(rr, sess)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "abc", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	_, ok := HostFromContext(context.Background())
	assert.False(t, ok)
	host, ok := HostFromContext(ContextWithSession(context.Background(), sess))
	assert.True(t, ok)
	assert.Equal(t, sess.HostID, host)
}

func TestAcquireLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	ctx := context.Background()
	key := ExportLockKey(uuid.New(), "month")

	release, err := AcquireLock(ctx, client, key, time.Minute)
	require.NoError(t, err)
	_, err = AcquireLock(ctx, client, key, time.Minute)
	require.ErrorIs(t, err, ErrExportInProgress)

	release(ctx)
	release, err = AcquireLock(ctx, client, key, time.Minute)
	require.NoError(t, err)
	release(ctx)
}
