package qbo

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/smallledger/arview/internal/config"
	"golang.org/x/oauth2"
)

const stateSize = 32

// intuitEndpoint is the OAuth2 endpoint pair shared by sandbox and
// production; only the API base URL differs between environments.
var intuitEndpoint = oauth2.Endpoint{
	AuthURL:  "https://appcenter.intuit.com/connect/oauth2",
	TokenURL: "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer",
}

// OAuth drives the QuickBooks authorization-code flow.
type OAuth struct {
	conf *oauth2.Config
}

func NewOAuth(cfg config.Config) *OAuth {
	return &OAuth{
		conf: &oauth2.Config{
			ClientID:     cfg.QBO.ClientID,
			ClientSecret: cfg.QBO.ClientSecret,
			RedirectURL:  cfg.QBO.RedirectURI,
			Endpoint:     intuitEndpoint,
			Scopes:       []string{"com.intuit.quickbooks.accounting"},
		},
	}
}

// AuthCodeURL builds the consent URL carrying the CSRF state.
func (o *OAuth) AuthCodeURL(state string) string {
	return o.conf.AuthCodeURL(state)
}

// Exchange trades the authorization code for a token pair.
func (o *OAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := o.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange: %v", ErrUpstream, err)
	}
	return token, nil
}

// Refresh trades the refresh token for a fresh token pair. Unlike
// oauth2.TokenSource this always hits the token endpoint, so callers
// decide the skew policy themselves.
func (o *OAuth) Refresh(ctx context.Context, current *oauth2.Token) (*oauth2.Token, error) {
	if current == nil || current.RefreshToken == "" {
		return nil, ErrReauthorize
	}
	stale := &oauth2.Token{RefreshToken: current.RefreshToken}
	refreshed, err := o.conf.TokenSource(ctx, stale).Token()
	if err != nil {
		return nil, err
	}
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = current.RefreshToken
	}
	return refreshed, nil
}

// NewState mints a random CSRF state for the consent redirect.
func NewState() (string, error) {
	buf := make([]byte, stateSize)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
