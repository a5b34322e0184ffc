package googleauth

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

const (
	// DefaultTokenURL is Google's OAuth2 token endpoint. It is also the
	// audience of the assertion.
	DefaultTokenURL = "https://oauth2.googleapis.com/token"
	// MessagingScope grants access to the FCM HTTP v1 API.
	MessagingScope = "https://www.googleapis.com/auth/firebase.messaging"

	jwtBearerGrant = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	tokenLifetime  = time.Hour
)

var pemArmor = regexp.MustCompile(`-----[^-]+-----`)

// Minter exchanges a self-signed service account assertion for a bearer token.
type Minter struct {
	account    *ServiceAccount
	tokenURL   string
	httpClient *http.Client
	now        func() time.Time
}

type Option func(*Minter)

// WithTokenURL overrides the token endpoint (and the assertion audience).
func WithTokenURL(u string) Option {
	return func(m *Minter) {
		if u != "" {
			m.tokenURL = u
		}
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(m *Minter) { m.httpClient = c }
}

func WithClock(now func() time.Time) Option {
	return func(m *Minter) { m.now = now }
}

func NewMinter(account *ServiceAccount, opts ...Option) *Minter {
	m := &Minter{
		account:    account,
		tokenURL:   DefaultTokenURL,
		httpClient: http.DefaultClient,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Mint signs a fresh assertion and exchanges it for an access token valid
// for one hour. It performs exactly one HTTP request and never retries.
func (m *Minter) Mint(ctx context.Context) (*oauth2.Token, error) {
	key, err := parsePrivateKey(m.account.PrivateKey)
	if err != nil {
		return nil, &CredentialError{Op: "parse key", Err: err}
	}

	iat := m.now().Unix()
	assertion, err := m.signAssertion(key, iat)
	if err != nil {
		return nil, &CredentialError{Op: "sign", Err: err}
	}

	form := url.Values{}
	form.Set("grant_type", jwtBearerGrant)
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &CredentialError{Op: "exchange", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, &CredentialError{Op: "exchange", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &CredentialError{Op: "exchange", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &CredentialError{
			Op:  "exchange",
			Err: fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, &CredentialError{Op: "decode", Err: err}
	}
	if tr.AccessToken == "" {
		return nil, &CredentialError{Op: "decode", Err: errors.New("response has no access_token")}
	}

	tokenType := tr.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &oauth2.Token{
		AccessToken: tr.AccessToken,
		TokenType:   tokenType,
		Expiry:      time.Unix(iat, 0).Add(tokenLifetime),
	}, nil
}

func (m *Minter) signAssertion(key *rsa.PrivateKey, iat int64) (string, error) {
	claims := jwt.MapClaims{
		"iss":   m.account.ClientEmail,
		"aud":   m.tokenURL,
		"scope": MessagingScope,
		"iat":   iat,
		"exp":   iat + int64(tokenLifetime/time.Second),
	}
	// NewWithClaims emits the fixed {"alg":"RS256","typ":"JWT"} header.
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
}

// parsePrivateKey accepts the PEM-armored PKCS#8 key from a service account
// file. Armor lines and line breaks (real or JSON-escaped) are dropped and
// the remainder is read as standard base64.
func parsePrivateKey(pemKey string) (*rsa.PrivateKey, error) {
	stripped := pemArmor.ReplaceAllString(pemKey, "")
	stripped = strings.ReplaceAll(stripped, `\n`, "")
	stripped = strings.Join(strings.Fields(stripped), "")
	if stripped == "" {
		return nil, errors.New("empty private key")
	}

	der, err := base64.StdEncoding.DecodeString(stripped)
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("parse PKCS#8 key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is %T, want RSA", parsed)
	}
	return key, nil
}
