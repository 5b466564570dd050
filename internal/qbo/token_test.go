package qbo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/smallledger/arview/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, tokenURL string) (*TokenStore, *clock.FakeClock) {
	t.Helper()
	fake := clock.NewFakeClock(testNow)
	oauth := &OAuth{conf: &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
	}}
	return NewTokenStore(oauth, fake, zap.NewNop()), fake
}

func tokenEndpoint(t *testing.T, status int, body string) (*httptest.Server, *int) {
	t.Helper()
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestAccessTokenNotConnected(t *testing.T) {
	store, _ := newTestStore(t, "http://127.0.0.1:0")

	_, _, err := store.AccessToken(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.False(t, store.Connected())
	assert.Empty(t, store.RealmID())
}

func TestAccessTokenValidSkipsRefresh(t *testing.T) {
	srv, hits := tokenEndpoint(t, http.StatusOK, `{}`)
	store, _ := newTestStore(t, srv.URL)

	store.Connect("realm-1", &oauth2.Token{
		AccessToken: "current",
		Expiry:      testNow.Add(time.Hour),
	})

	access, realmID, err := store.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "current", access)
	assert.Equal(t, "realm-1", realmID)
	assert.Zero(t, *hits, "a token valid beyond the skew must not refresh")
}

func TestAccessTokenRefreshesNearExpiry(t *testing.T) {
	srv, hits := tokenEndpoint(t, http.StatusOK,
		`{"access_token":"fresh","refresh_token":"r2","token_type":"bearer","expires_in":3600}`)
	store, _ := newTestStore(t, srv.URL)

	// 10s of validity left is inside the 30s skew.
	store.Connect("realm-1", &oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "r1",
		Expiry:       testNow.Add(10 * time.Second),
	})

	access, realmID, err := store.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", access)
	assert.Equal(t, "realm-1", realmID)
	assert.Equal(t, 1, *hits)
}

func TestAccessTokenRefreshRejected(t *testing.T) {
	srv, _ := tokenEndpoint(t, http.StatusBadRequest, `{"error":"invalid_grant"}`)
	store, _ := newTestStore(t, srv.URL)

	store.Connect("realm-1", &oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "revoked",
		Expiry:       testNow.Add(-time.Minute),
	})

	_, _, err := store.AccessToken(context.Background())
	assert.ErrorIs(t, err, ErrReauthorize)
}

func TestAccessTokenWithoutRefreshTokenNeedsReauth(t *testing.T) {
	store, _ := newTestStore(t, "http://127.0.0.1:0")

	store.Connect("realm-1", &oauth2.Token{
		AccessToken: "stale",
		Expiry:      testNow.Add(-time.Minute),
	})

	_, _, err := store.AccessToken(context.Background())
	assert.ErrorIs(t, err, ErrReauthorize)
}

func TestZeroExpiryTokenIsAlwaysValid(t *testing.T) {
	store, _ := newTestStore(t, "http://127.0.0.1:0")

	store.Connect("realm-1", &oauth2.Token{AccessToken: "eternal"})

	access, _, err := store.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "eternal", access)
}

func TestNewState(t *testing.T) {
	a, err := NewState()
	require.NoError(t, err)
	b, err := NewState()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.GreaterOrEqual(t, len(a), 32)
}
