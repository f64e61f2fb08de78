// utils/service_account.go
// -------------------------
// Service-account authentication for Google APIs without an interactive user:
// a signed JWT assertion is exchanged at the token endpoint for a short-lived
// access token. Supports both the JSON key format and the legacy PKCS#12
// (.p12) keys Google issued for older service accounts.
package utils

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/pkcs12"
	"golang.org/x/oauth2"
)

const defaultTokenURL = "https://oauth2.googleapis.com/token"

// ServiceAccount holds the identity and signing key of a Google service
// account.
type ServiceAccount struct {
	Email      string
	PrivateKey *rsa.PrivateKey
	TokenURL   string
	Scopes     []string
	// Subject, if set, is the user to impersonate (domain-wide delegation).
	Subject string

	client *http.Client
}

// serviceAccountKey mirrors the JSON key file Google issues.
type serviceAccountKey struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// LoadServiceAccountJSON parses a Google service-account JSON key.
func LoadServiceAccountJSON(data []byte, scopes ...string) (*ServiceAccount, error) {
	var key serviceAccountKey
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, fmt.Errorf("parsing service account key: %w", err)
	}
	if key.ClientEmail == "" || key.PrivateKey == "" {
		return nil, fmt.Errorf("service account key is missing client_email or private_key")
	}

	block, _ := pem.Decode([]byte(key.PrivateKey))
	if block == nil {
		return nil, fmt.Errorf("private_key is not PEM encoded")
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	rsaKey, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is not RSA")
	}

	tokenURL := key.TokenURI
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}
	return &ServiceAccount{
		Email:      key.ClientEmail,
		PrivateKey: rsaKey,
		TokenURL:   tokenURL,
		Scopes:     scopes,
		client:     &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// LoadServiceAccountPKCS12 builds a ServiceAccount from a legacy .p12 key.
// Google issued these with the password "notasecret".
func LoadServiceAccountPKCS12(email string, p12 []byte, password string, scopes ...string) (*ServiceAccount, error) {
	if email == "" {
		return nil, fmt.Errorf("service account email is required")
	}
	priv, _, err := pkcs12.Decode(p12, password)
	if err != nil {
		return nil, fmt.Errorf("decoding PKCS#12 key: %w", err)
	}
	rsaKey, ok := priv.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("PKCS#12 key is not RSA")
	}
	return &ServiceAccount{
		Email:      email,
		PrivateKey: rsaKey,
		TokenURL:   defaultTokenURL,
		Scopes:     scopes,
		client:     &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Assertion builds the signed JWT-bearer assertion for the token exchange,
// valid for one hour from now.
func (s *ServiceAccount) Assertion(now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"iss":   s.Email,
		"scope": strings.Join(s.Scopes, " "),
		"aud":   s.TokenURL,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
	if s.Subject != "" {
		claims["sub"] = s.Subject
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(s.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("signing assertion: %w", err)
	}
	return signed, nil
}

// Token exchanges a fresh assertion for an access token.
func (s *ServiceAccount) Token(ctx context.Context) (*oauth2.Token, error) {
	assertion, err := s.Assertion(time.Now())
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("grant_type", "urn:ietf:params:oauth:grant-type:jwt-bearer")
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := s.client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tr struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("parsing token response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("token endpoint returned no access token")
	}

	return &oauth2.Token{
		AccessToken: tr.AccessToken,
		TokenType:   tr.TokenType,
		Expiry:      time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}, nil
}

// TokenSource returns a caching token source that re-exchanges an assertion
// whenever the current token expires.
func (s *ServiceAccount) TokenSource(ctx context.Context) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, serviceAccountSource{ctx: ctx, sa: s})
}

type serviceAccountSource struct {
	ctx context.Context
	sa  *ServiceAccount
}

func (s serviceAccountSource) Token() (*oauth2.Token, error) {
	return s.sa.Token(s.ctx)
}
