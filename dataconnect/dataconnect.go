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

// Package dataconnect contains functions for executing queries and mutations against
// a Firebase Data Connect service.
package dataconnect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/firebase/firebase-client-go/internal"
)

const (
	defaultEndpoint = "https://firebasedataconnect.googleapis.com/v1"

	appCheckHeader = "X-Firebase-AppCheck"
)

// ConnectorConfig identifies a single Data Connect connector. It is an
// equality-comparable value, and serves as the instance cache key on firebase.App.
type ConnectorConfig struct {
	Connector string
	Location  string
	ServiceID string
}

// Validate checks that all fields of the configuration are populated.
func (c ConnectorConfig) Validate() error {
	if c.Connector == "" {
		return errors.New("dataconnect: connector name must not be empty")
	}
	if c.Location == "" {
		return errors.New("dataconnect: location must not be empty")
	}
	if c.ServiceID == "" {
		return errors.New("dataconnect: service ID must not be empty")
	}
	return nil
}

func (c ConnectorConfig) String() string {
	return fmt.Sprintf("%s/%s/%s", c.Location, c.ServiceID, c.Connector)
}

// Client executes queries and mutations against a single Data Connect connector.
//
// Queries and mutations are the operations declared in the connector's GraphQL
// schema; the client addresses them by operation name and passes variables as a
// JSON-serializable value.
type Client struct {
	// To enable testing against arbitrary endpoints.
	endpoint       string
	httpClient     *internal.HTTPClient
	projectID      string
	config         ConnectorConfig
	appCheckTokens internal.AppCheckTokenProvider
}

// NewClient creates a new instance of the Data Connect Client.
//
// This function can only be invoked from within the SDK. Client applications should
// access the Data Connect service through firebase.App.
func NewClient(ctx context.Context, c *internal.DataConnectConfig) (*Client, error) {
	if c.ProjectID == "" {
		return nil, errors.New("project ID is required to access Data Connect")
	}
	config := ConnectorConfig{
		Connector: c.Connector,
		Location:  c.Location,
		ServiceID: c.ServiceID,
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	hc, _, err := internal.NewHTTPClient(ctx, c.Opts...)
	if err != nil {
		return nil, err
	}
	hc.CreateErrFn = internal.NewFirebaseErrorOnePlatform
	hc.Opts = []internal.HTTPOption{
		internal.WithHeader("X-Firebase-Client", fmt.Sprintf("fire-go-client/%s", c.Version)),
	}

	endpoint := defaultEndpoint
	if c.EmulatorHost != "" {
		endpoint = fmt.Sprintf("http://%s/v1", c.EmulatorHost)
	}

	return &Client{
		endpoint:       endpoint,
		httpClient:     hc,
		projectID:      c.ProjectID,
		config:         config,
		appCheckTokens: c.AppCheckTokens,
	}, nil
}

// ConnectorConfig returns the connector configuration this client was created with.
func (c *Client) ConnectorConfig() ConnectorConfig {
	return c.config
}

// ExecuteQuery executes the named query with the given variables, and unmarshals the
// response data into result. A nil result discards the response data.
//
// Variables must serialize to a JSON object, or be nil for operations without
// variables.
func (c *Client) ExecuteQuery(ctx context.Context, operationName string, variables, result interface{}) error {
	return c.execute(ctx, "executeQuery", operationName, variables, result)
}

// ExecuteMutation executes the named mutation with the given variables, and
// unmarshals the response data into result. A nil result discards the response data.
func (c *Client) ExecuteMutation(ctx context.Context, operationName string, variables, result interface{}) error {
	return c.execute(ctx, "executeMutation", operationName, variables, result)
}

type operationRequest struct {
	OperationName string      `json:"operationName"`
	Variables     interface{} `json:"variables,omitempty"`
}

type operationResponse struct {
	Data   json.RawMessage  `json:"data,omitempty"`
	Errors []operationError `json:"errors,omitempty"`
}

type operationError struct {
	Message string        `json:"message"`
	Path    []interface{} `json:"path,omitempty"`
}

func (c *Client) execute(ctx context.Context, kind, operationName string, variables, result interface{}) error {
	if operationName == "" {
		return errors.New("dataconnect: operation name must not be empty")
	}

	url := fmt.Sprintf(
		"%s/projects/%s/locations/%s/services/%s/connectors/%s:%s",
		c.endpoint, c.projectID, c.config.Location, c.config.ServiceID, c.config.Connector, kind)
	req := &internal.Request{
		Method: http.MethodPost,
		URL:    url,
		Body:   internal.NewJSONEntity(&operationRequest{OperationName: operationName, Variables: variables}),
	}
	if c.appCheckTokens != nil {
		if token, err := c.appCheckTokens.AppCheckToken(ctx); err == nil && token != "" {
			req.Opts = append(req.Opts, internal.WithHeader(appCheckHeader, token))
		}
	}

	var resp operationResponse
	if _, err := c.httpClient.DoAndUnmarshal(ctx, req, &resp); err != nil {
		return err
	}
	if len(resp.Errors) > 0 {
		return newOperationError(operationName, resp.Errors)
	}

	if result != nil && resp.Data != nil {
		if err := json.Unmarshal(resp.Data, result); err != nil {
			return fmt.Errorf("dataconnect: error while parsing response data: %v", err)
		}
	}
	return nil
}

// newOperationError folds the GraphQL error entries of a response into a single
// platform error.
func newOperationError(operationName string, errs []operationError) error {
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		if len(e.Path) > 0 {
			segments := make([]string, 0, len(e.Path))
			for _, p := range e.Path {
				segments = append(segments, fmt.Sprintf("%v", p))
			}
			messages = append(messages, fmt.Sprintf("%s: %s", strings.Join(segments, "."), e.Message))
		} else {
			messages = append(messages, e.Message)
		}
	}

	return &internal.FirebaseError{
		ErrorCode: internal.InvalidArgument,
		String:    fmt.Sprintf("dataconnect: operation %q failed: %s", operationName, strings.Join(messages, "; ")),
		Ext:       make(map[string]interface{}),
	}
}
