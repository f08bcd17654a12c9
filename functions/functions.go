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

// Package functions contains functions for invoking callable Cloud Functions
// deployed to a Firebase project.
package functions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/firebase/firebase-client-go/internal"
)

const appCheckHeader = "X-Firebase-AppCheck"

// Client invokes callable Cloud Functions in a single region or behind a single
// custom domain.
//
// Clients are bound to the region or domain they were created for. Use the owning
// firebase.App to obtain clients for other regions.
type Client struct {
	endpoint       string
	httpClient     *internal.HTTPClient
	projectID      string
	region         string
	appCheckTokens internal.AppCheckTokenProvider
}

// NewClient creates a new instance of the Cloud Functions Client.
//
// This function can only be invoked from within the SDK. Client applications should
// access the Functions service through firebase.App.
func NewClient(ctx context.Context, c *internal.FunctionsConfig) (*Client, error) {
	if c.ProjectID == "" {
		return nil, errors.New("project ID is required to access Cloud Functions")
	}
	if c.Region == "" && c.CustomDomain == "" {
		return nil, errors.New("a region or custom domain is required to access Cloud Functions")
	}

	hc, _, err := internal.NewHTTPClient(ctx, c.Opts...)
	if err != nil {
		return nil, err
	}
	hc.CreateErrFn = handleFunctionsError
	hc.Opts = []internal.HTTPOption{
		internal.WithHeader("X-Firebase-Client", fmt.Sprintf("fire-go-client/%s", c.Version)),
	}

	return &Client{
		endpoint:       resolveEndpoint(c),
		httpClient:     hc,
		projectID:      c.ProjectID,
		region:         c.Region,
		appCheckTokens: c.AppCheckTokens,
	}, nil
}

// resolveEndpoint determines the base URL for callable function invocations.
//
// A region that looks like a URL is treated as a custom domain. The emulator host,
// when set, overrides both.
func resolveEndpoint(c *internal.FunctionsConfig) string {
	if c.EmulatorHost != "" {
		return fmt.Sprintf("http://%s/%s/%s", c.EmulatorHost, c.ProjectID, c.Region)
	}
	if c.CustomDomain != "" {
		return strings.TrimSuffix(c.CustomDomain, "/")
	}
	if strings.Contains(c.Region, "://") {
		return strings.TrimSuffix(c.Region, "/")
	}
	return fmt.Sprintf("https://%s-%s.cloudfunctions.net", c.Region, c.ProjectID)
}

// HTTPSCallable returns a reference to the callable function with the given name.
func (c *Client) HTTPSCallable(name string) *HTTPSCallable {
	return &HTTPSCallable{
		client: c,
		url:    fmt.Sprintf("%s/%s", c.endpoint, name),
	}
}

// HTTPSCallableFromURL returns a reference to the callable function at the given URL.
func (c *Client) HTTPSCallableFromURL(url string) *HTTPSCallable {
	return &HTTPSCallable{
		client: c,
		url:    url,
	}
}

// HTTPSCallable is a reference to a single callable function.
type HTTPSCallable struct {
	client *Client
	url    string
}

// URL returns the URL this callable reference points to.
func (f *HTTPSCallable) URL() string {
	return f.url
}

// Call invokes the function with the given data, and returns its result.
//
// The data is wrapped in the callable protocol envelope and serialized as JSON.
// Errors reported by the function resolve to *internal.FirebaseError values carrying
// the canonical error code declared by the function.
func (f *HTTPSCallable) Call(ctx context.Context, data interface{}) (*Result, error) {
	body := map[string]interface{}{"data": data}
	req := &internal.Request{
		Method: http.MethodPost,
		URL:    f.url,
		Body:   internal.NewJSONEntity(body),
	}
	if f.client.appCheckTokens != nil {
		token, err := f.client.appCheckTokens.AppCheckToken(ctx)
		if err == nil && token != "" {
			req.Opts = append(req.Opts, internal.WithHeader(appCheckHeader, token))
		}
	}

	var parsed struct {
		Data   json.RawMessage `json:"data"`
		Result json.RawMessage `json:"result"`
	}
	if _, err := f.client.httpClient.DoAndUnmarshal(ctx, req, &parsed); err != nil {
		return nil, err
	}

	// Some older function runtimes report the payload under "result".
	raw := parsed.Data
	if raw == nil {
		raw = parsed.Result
	}
	if raw == nil {
		return nil, &internal.FirebaseError{
			ErrorCode: internal.Internal,
			String:    "functions: response is missing data field",
			Ext:       make(map[string]interface{}),
		}
	}
	return &Result{raw: raw}, nil
}

// Result is the result of a callable function invocation.
type Result struct {
	raw json.RawMessage
}

// Data returns the result payload decoded into generic JSON values.
func (r *Result) Data() interface{} {
	var v interface{}
	json.Unmarshal(r.raw, &v)
	return v
}

// Unmarshal decodes the result payload into the given value.
func (r *Result) Unmarshal(v interface{}) error {
	return json.Unmarshal(r.raw, v)
}

// handleFunctionsError constructs an error from a callable protocol error response.
//
// The callable protocol reports errors as {"error": {"message", "status", "details"}}
// where status is a canonical error code string. Responses without a parseable error
// payload fall back to the HTTP status code mapping.
func handleFunctionsError(resp *internal.Response) error {
	base := internal.NewFirebaseError(resp).(*internal.FirebaseError)

	var payload struct {
		Error struct {
			Message string      `json:"message"`
			Status  string      `json:"status"`
			Details interface{} `json:"details"`
		} `json:"error"`
	}
	json.Unmarshal(resp.Body, &payload) // ignore any json parse errors at this level
	if payload.Error.Status != "" {
		base.ErrorCode = internal.ErrorCode(payload.Error.Status)
	}
	if payload.Error.Message != "" {
		base.String = payload.Error.Message
	}
	if payload.Error.Details != nil {
		base.Ext["details"] = payload.Error.Details
	}
	return base
}
