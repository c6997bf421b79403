// Copyright (c) 2025, StatusKit Authors.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/statuskit/statuskit/pkg/errors"
)

const (
	// defaultTokenURL is the token exchange endpoint used when no
	// override is configured.
	defaultTokenURL = "https://oauth2.googleapis.com/token"

	grantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"

	// assertionLifetime bounds the signed assertion validity.
	assertionLifetime = time.Hour

	// refreshSkew forces a refresh when a memoized token is within
	// this window of its expiry.
	refreshSkew = time.Minute
)

// ErrMissingCredentials reports that the signed-credential triple is
// not fully configured. It is distinct from transient exchange
// failures so callers can degrade to "unknown" instead of "degraded".
var ErrMissingCredentials = apperrors.New(apperrors.ErrCodeConfiguration,
	"monitoring credentials not configured")

// ServiceAccount is the signed-credential triple plus optional
// endpoint override.
type ServiceAccount struct {
	ProjectID   string
	ClientEmail string
	PrivateKey  string
	TokenURL    string
}

// Token is a short-lived bearer credential for one scope set.
type Token struct {
	AccessToken string
	Expiry      time.Time
}

// valid reports whether the token is usable, leaving headroom so a
// token is refreshed before it expires mid-request.
func (t *Token) valid(now time.Time) bool {
	return t != nil && t.AccessToken != "" && now.Add(refreshSkew).Before(t.Expiry)
}

// TokenSource issues bearer tokens for a scope set. Implemented by
// Client; collectors depend on this interface so tests can substitute
// fakes.
type TokenSource interface {
	Token(ctx context.Context, scopes ...string) (*Token, error)
}

// call is one in-flight or completed authorization round-trip. The
// in-flight call itself is memoized, not only its result, so
// concurrent requests for the same scope signature share a single
// exchange.
type call struct {
	done chan struct{}
	tok  *Token
	err  error
}

// Client exchanges signed assertions for bearer tokens, memoizing one
// authorization per distinct scope signature.
type Client struct {
	account    ServiceAccount
	httpClient *http.Client
	now        func() time.Time

	mu    sync.Mutex
	calls map[string]*call
}

// NewClient creates a credential client for the given service account.
// The account may be incomplete; Token then fails with
// ErrMissingCredentials.
func NewClient(account ServiceAccount, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		account:    account,
		httpClient: httpClient,
		now:        time.Now,
		calls:      make(map[string]*call),
	}
}

// Signature canonicalizes a scope set: sorted, de-duplicated,
// space-joined. Two requests with the same scopes in any order share
// one memoized authorization.
func Signature(scopes []string) string {
	seen := make(map[string]struct{}, len(scopes))
	uniq := make([]string, 0, len(scopes))
	for _, s := range scopes {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		uniq = append(uniq, s)
	}
	sort.Strings(uniq)
	return strings.Join(uniq, " ")
}

// Token returns a bearer token covering the given scopes, reusing an
// unexpired memoized token or joining an in-flight exchange when one
// exists for the same scope signature.
func (c *Client) Token(ctx context.Context, scopes ...string) (*Token, error) {
	if c.account.ClientEmail == "" || c.account.PrivateKey == "" || c.account.ProjectID == "" {
		return nil, ErrMissingCredentials
	}

	sig := Signature(scopes)

	for {
		c.mu.Lock()
		cl, ok := c.calls[sig]
		if !ok {
			cl = &call{done: make(chan struct{})}
			c.calls[sig] = cl
			c.mu.Unlock()

			cl.tok, cl.err = c.exchange(ctx, sig)
			if cl.err != nil {
				// Failed exchanges are not memoized; the next caller
				// retries from scratch.
				c.mu.Lock()
				delete(c.calls, sig)
				c.mu.Unlock()
			}
			close(cl.done)
			return cl.tok, cl.err
		}
		c.mu.Unlock()

		select {
		case <-cl.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		if cl.err == nil && cl.tok.valid(c.now()) {
			return cl.tok, nil
		}

		// The memoized token expired; evict it and loop to start a
		// fresh exchange. A concurrent eviction of the same call is
		// benign, costing at most one redundant round-trip.
		c.mu.Lock()
		if c.calls[sig] == cl {
			delete(c.calls, sig)
		}
		c.mu.Unlock()
	}
}

// exchange signs a scope-bound assertion and trades it for a bearer
// token.
func (c *Client) exchange(ctx context.Context, scopeSignature string) (*Token, error) {
	tokenURL := c.account.TokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}

	assertion, err := c.signAssertion(scopeSignature, tokenURL)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeConfiguration, "failed to sign credential assertion", err)
	}

	form := url.Values{
		"grant_type": {grantType},
		"assertion":  {assertion},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to build token request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeUpstream, "token exchange failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeUpstream, "failed to read token response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeUpstream,
			fmt.Sprintf("token endpoint returned status %d", resp.StatusCode),
			map[string]any{"body": truncate(string(body), 256)})
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeUpstream, "malformed token response", err)
	}
	if payload.AccessToken == "" {
		return nil, apperrors.New(apperrors.ErrCodeUpstream, "token response missing access_token")
	}

	expiry := c.now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	slog.Debug("authorized monitoring scope set",
		slog.String("scopes", scopeSignature),
		slog.Time("expiry", expiry))

	return &Token{AccessToken: payload.AccessToken, Expiry: expiry}, nil
}

// signAssertion builds the RS256 JWT assertion for a scope signature.
func (c *Client) signAssertion(scopeSignature, audience string) (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(c.account.PrivateKey))
	if err != nil {
		return "", fmt.Errorf("failed to parse private key: %w", err)
	}

	now := c.now()
	claims := jwt.MapClaims{
		"iss":   c.account.ClientEmail,
		"scope": scopeSignature,
		"aud":   audience,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionLifetime).Unix(),
	}

	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
