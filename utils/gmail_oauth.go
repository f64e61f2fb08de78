// Package utils provides credential helpers for the Google APIs the email
// agent talks to: an installed-app OAuth2 flow with on-disk token persistence,
// and service-account JWT-bearer token sources for server-side deployments.
package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GmailAuthenticator manages the installed-app OAuth2 dance for Gmail: it
// holds the client configuration read from a Google credentials.json, loads
// and saves the user token, and hands out auto-refreshing token sources.
type GmailAuthenticator struct {
	config    *oauth2.Config
	tokenFile string
}

// NewGmailAuthenticator reads an OAuth2 client configuration from
// credentialsFile (the credentials.json downloaded from the Google Cloud
// console). tokenFile is where the user token is persisted between runs.
func NewGmailAuthenticator(credentialsFile, tokenFile string, scopes ...string) (*GmailAuthenticator, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}
	cfg, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parsing credentials file: %w", err)
	}
	return &GmailAuthenticator{config: cfg, tokenFile: tokenFile}, nil
}

// AuthCodeURL returns the consent-page URL to send the user to when no stored
// token exists yet.
func (g *GmailAuthenticator) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token and persists it.
func (g *GmailAuthenticator) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	if err := g.saveToken(tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// TokenSource returns an auto-refreshing token source seeded from the stored
// token. Refreshed tokens are written back to the token file. It fails when
// no token has been stored yet; run the Exchange flow first.
func (g *GmailAuthenticator) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	tok, err := g.loadToken()
	if err != nil {
		return nil, fmt.Errorf("no stored Gmail token (run the authorization flow first): %w", err)
	}
	return &savingTokenSource{
		inner: g.config.TokenSource(ctx, tok),
		auth:  g,
		last:  tok.AccessToken,
	}, nil
}

func (g *GmailAuthenticator) loadToken() (*oauth2.Token, error) {
	b, err := os.ReadFile(g.tokenFile)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("parsing stored token: %w", err)
	}
	return &tok, nil
}

func (g *GmailAuthenticator) saveToken(tok *oauth2.Token) error {
	if dir := filepath.Dir(g.tokenFile); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating token directory: %w", err)
		}
	}
	b, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	if err := os.WriteFile(g.tokenFile, b, 0o600); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	return nil
}

// savingTokenSource persists tokens back to disk whenever the inner source
// refreshes.
type savingTokenSource struct {
	inner oauth2.TokenSource
	auth  *GmailAuthenticator
	last  string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.inner.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := s.auth.saveToken(tok); err != nil {
			return nil, err
		}
	}
	return tok, nil
}
