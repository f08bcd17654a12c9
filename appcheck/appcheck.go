// Copyright 2025 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package appcheck contains functions for obtaining App Check tokens that attest the
// calling app's identity to other Firebase services.
package appcheck

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/firebase/firebase-client-go/internal"
)

const defaultEndpoint = "https://firebaseappcheck.googleapis.com/v1"

// debugTokenEnvName holds the debug secret when no explicit secret is installed.
const debugTokenEnvName = "FIREBASE_APPCHECK_DEBUG_TOKEN"

// tokenRefreshBuffer is how long before expiry a cached token is considered stale.
const tokenRefreshBuffer = 5 * time.Minute

var clock internal.Clock = &internal.SystemClock{}

// Token is an App Check token together with its expiry time.
type Token struct {
	Token  string
	Expiry time.Time
}

// Provider obtains fresh App Check tokens. Implementations must be safe for
// concurrent use.
type Provider interface {
	Token(ctx context.Context) (*Token, error)
}

// Client is the interface for the App Check service.
//
// A Client caches the most recently obtained token, and refreshes it through the
// installed Provider shortly before it expires. Before a provider is installed,
// requesting a token is an error.
type Client struct {
	// To enable testing against arbitrary endpoints.
	endpoint   string
	httpClient *internal.HTTPClient
	projectID  string
	appID      string

	mutex    sync.Mutex
	provider Provider
	cached   *Token
}

// NewClient creates a new instance of the App Check Client.
//
// This function can only be invoked from within the SDK. Client applications should
// access the App Check service through firebase.App.
func NewClient(ctx context.Context, c *internal.AppCheckConfig) (*Client, error) {
	if c.ProjectID == "" {
		return nil, errors.New("project ID is required to access App Check")
	}
	if c.AppID == "" {
		return nil, errors.New("app ID is required to access App Check")
	}

	hc, _, err := internal.NewHTTPClient(ctx, c.Opts...)
	if err != nil {
		return nil, err
	}
	hc.CreateErrFn = internal.NewFirebaseErrorOnePlatform
	hc.Opts = []internal.HTTPOption{
		internal.WithHeader("X-Firebase-Client", fmt.Sprintf("fire-go-client/%s", c.Version)),
	}
	if c.APIKey != "" {
		hc.Opts = append(hc.Opts, internal.WithQueryParam("key", c.APIKey))
	}

	return &Client{
		endpoint:   defaultEndpoint,
		httpClient: hc,
		projectID:  c.ProjectID,
		appID:      c.AppID,
	}, nil
}

// InstallProvider installs the given token provider on this client. Subsequent
// service requests made through the owning App attach tokens from this provider.
func (c *Client) InstallProvider(p Provider) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.provider = p
	c.cached = nil
}

// InstallDebugProvider installs a provider that exchanges the given debug secret for
// App Check tokens. If secret is empty, the FIREBASE_APPCHECK_DEBUG_TOKEN environment
// variable is consulted instead.
func (c *Client) InstallDebugProvider(secret string) error {
	if secret == "" {
		secret = os.Getenv(debugTokenEnvName)
	}
	if secret == "" {
		return errors.New("appcheck: a debug secret is required to install the debug provider")
	}
	c.InstallProvider(&debugProvider{client: c, secret: secret})
	return nil
}

// Token returns a valid App Check token, fetching a fresh one from the installed
// provider when the cached token is missing or about to expire.
func (c *Client) Token(ctx context.Context) (*Token, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.provider == nil {
		return nil, errors.New("appcheck: no token provider is installed")
	}
	if c.cached != nil && clock.Now().Add(tokenRefreshBuffer).Before(c.cached.Expiry) {
		return c.cached, nil
	}

	token, err := c.provider.Token(ctx)
	if err != nil {
		return nil, err
	}
	c.cached = token
	return token, nil
}

// AppCheckToken returns the raw token string to attach to an outgoing service
// request. It implements the token provider interface consumed by the other service
// clients in this SDK.
func (c *Client) AppCheckToken(ctx context.Context) (string, error) {
	token, err := c.Token(ctx)
	if err != nil {
		return "", err
	}
	return token.Token, nil
}

// debugProvider exchanges a pre-registered debug secret for App Check tokens. It is
// intended for local development and CI environments where no attestation provider
// is available.
type debugProvider struct {
	client *Client
	secret string
}

func (p *debugProvider) Token(ctx context.Context) (*Token, error) {
	url := fmt.Sprintf("%s/projects/%s/apps/%s:exchangeDebugToken",
		p.client.endpoint, p.client.projectID, p.client.appID)
	req := &internal.Request{
		Method: http.MethodPost,
		URL:    url,
		Body:   internal.NewJSONEntity(map[string]string{"debugToken": p.secret}),
	}

	var result struct {
		Token string `json:"token"`
		TTL   string `json:"ttl"`
	}
	if _, err := p.client.httpClient.DoAndUnmarshal(ctx, req, &result); err != nil {
		return nil, err
	}
	if result.Token == "" {
		return nil, errors.New("appcheck: backend returned an empty token")
	}

	return &Token{
		Token:  result.Token,
		Expiry: tokenExpiry(result.Token, result.TTL),
	}, nil
}

// tokenExpiry determines when the given token expires, preferring the exp claim of
// the token payload and falling back to the TTL reported alongside it. The token
// signature is deliberately not verified here: clients only relay App Check tokens,
// verification happens on the receiving backend.
func tokenExpiry(token, ttl string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err == nil {
		if claims.ExpiresAt != nil {
			return claims.ExpiresAt.Time
		}
	}

	if seconds, err := strconv.ParseFloat(strings.TrimSuffix(ttl, "s"), 64); err == nil {
		return clock.Now().Add(time.Duration(seconds * float64(time.Second)))
	}
	return clock.Now().Add(time.Hour)
}
