package qbo

import (
	"context"
	"sync"
	"time"

	"github.com/smallledger/arview/internal/clock"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// refreshSkew is how close to expiry a token may get before a call
// proactively refreshes it.
const refreshSkew = 30 * time.Second

// Connection is the credential state for one connected QuickBooks company.
type Connection struct {
	RealmID string
	Token   *oauth2.Token
}

// TokenStore holds the single active QuickBooks connection. Reads and
// refreshes are serialized so concurrent requests never race a refresh
// against each other.
type TokenStore struct {
	mu    sync.Mutex
	conn  *Connection
	oauth *OAuth
	clock clock.Clock
	log   *zap.Logger
}

func NewTokenStore(oauth *OAuth, c clock.Clock, log *zap.Logger) *TokenStore {
	return &TokenStore{
		oauth: oauth,
		clock: c,
		log:   log.Named("qbo.tokens"),
	}
}

// Connect replaces the stored connection after a successful code exchange.
func (s *TokenStore) Connect(realmID string, token *oauth2.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn = &Connection{RealmID: realmID, Token: token}
	s.log.Info("quickbooks company connected", zap.String("realm_id", realmID))
}

// Connected reports whether a company has completed the OAuth2 flow.
func (s *TokenStore) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// RealmID returns the connected company's realm id, or "" when not
// connected.
func (s *TokenStore) RealmID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return ""
	}
	return s.conn.RealmID
}

// AccessToken returns a currently valid access token plus the realm id,
// refreshing first when the stored token expires within refreshSkew. A
// rejected refresh surfaces as ErrReauthorize.
func (s *TokenStore) AccessToken(ctx context.Context) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return "", "", ErrNotConnected
	}
	if s.validFor(s.conn.Token, refreshSkew) {
		return s.conn.Token.AccessToken, s.conn.RealmID, nil
	}

	refreshed, err := s.oauth.Refresh(ctx, s.conn.Token)
	if err != nil {
		s.log.Warn("token refresh rejected", zap.Error(err))
		return "", "", ErrReauthorize
	}
	s.conn.Token = refreshed
	s.log.Info("access token refreshed",
		zap.Time("expiry", refreshed.Expiry))
	return refreshed.AccessToken, s.conn.RealmID, nil
}

func (s *TokenStore) validFor(t *oauth2.Token, skew time.Duration) bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	if t.Expiry.IsZero() {
		return true
	}
	return s.clock.Now().Add(skew).Before(t.Expiry)
}
