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

// Package vertexai contains functions for generating content with the Vertex AI
// Gemini models available to a Firebase project.
package vertexai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"

	"github.com/firebase/firebase-client-go/internal"
)

const (
	defaultEndpoint = "https://firebasevertexai.googleapis.com/v1beta"

	apiKeyHeader   = "x-goog-api-key"
	appCheckHeader = "X-Firebase-AppCheck"
)

// Client is the interface for the Vertex AI service in a single location.
type Client struct {
	// To enable testing against arbitrary endpoints.
	endpoint       string
	httpClient     *internal.HTTPClient
	projectID      string
	location       string
	appCheckTokens internal.AppCheckTokenProvider
}

// NewClient creates a new instance of the Vertex AI Client.
//
// This function can only be invoked from within the SDK. Client applications should
// access the Vertex AI service through firebase.App.
func NewClient(ctx context.Context, c *internal.VertexAIConfig) (*Client, error) {
	if c.ProjectID == "" {
		return nil, errors.New("project ID is required to access Vertex AI")
	}
	if c.APIKey == "" {
		return nil, errors.New("API key is required to access Vertex AI")
	}
	if c.Location == "" {
		return nil, errors.New("location is required to access Vertex AI")
	}

	hc, _, err := internal.NewHTTPClient(ctx, c.Opts...)
	if err != nil {
		return nil, err
	}
	hc.CreateErrFn = internal.NewFirebaseErrorOnePlatform

	goVersion := strings.TrimPrefix(runtime.Version(), "go")
	hc.Opts = []internal.HTTPOption{
		internal.WithHeader(apiKeyHeader, c.APIKey),
		internal.WithHeader("X-Firebase-Client", fmt.Sprintf("fire-go-client/%s", c.Version)),
		internal.WithHeader("x-goog-api-client", fmt.Sprintf("gl-go/%s fire/%s", goVersion, c.Version)),
	}
	if c.AppID != "" {
		hc.Opts = append(hc.Opts, internal.WithHeader("X-Firebase-AppId", c.AppID))
	}

	return &Client{
		endpoint:       defaultEndpoint,
		httpClient:     hc,
		projectID:      c.ProjectID,
		location:       c.Location,
		appCheckTokens: c.AppCheckTokens,
	}, nil
}

// GenerativeModel returns a handle for making generate content requests against the
// named model, e.g. "gemini-2.0-flash".
func (c *Client) GenerativeModel(name string) *GenerativeModel {
	return &GenerativeModel{
		client: c,
		name:   name,
	}
}

// GenerativeModel is a handle for a single generative model. The configuration
// fields may be set before the first request, and must not be mutated afterwards.
type GenerativeModel struct {
	client *Client
	name   string

	GenerationConfig  *GenerationConfig
	SafetySettings    []*SafetySetting
	SystemInstruction *Content
}

// GenerationConfig are the model parameters applied to generate content requests.
type GenerationConfig struct {
	Temperature     *float32 `json:"temperature,omitempty"`
	TopP            *float32 `json:"topP,omitempty"`
	TopK            *int32   `json:"topK,omitempty"`
	CandidateCount  *int32   `json:"candidateCount,omitempty"`
	MaxOutputTokens *int32   `json:"maxOutputTokens,omitempty"`
	StopSequences   []string `json:"stopSequences,omitempty"`
}

// SafetySetting adjusts the blocking threshold for one harm category.
type SafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// Name returns the model name this handle points to.
func (m *GenerativeModel) Name() string {
	return m.name
}

// GenerateContent asks the model to generate a response for the given parts, which
// are combined into a single user turn.
func (m *GenerativeModel) GenerateContent(ctx context.Context, parts ...*Part) (*GenerateContentResponse, error) {
	if len(parts) == 0 {
		return nil, errors.New("at least one content part is required")
	}
	content := &Content{Role: "user", Parts: parts}
	return m.generate(ctx, []*Content{content})
}

// CountTokens returns the number of tokens the given parts consume for this model.
func (m *GenerativeModel) CountTokens(ctx context.Context, parts ...*Part) (*CountTokensResponse, error) {
	if len(parts) == 0 {
		return nil, errors.New("at least one content part is required")
	}

	body := &generateContentRequest{
		Contents: outgoingContents([]*Content{{Role: "user", Parts: parts}}),
	}
	req := &internal.Request{
		Method: http.MethodPost,
		URL:    m.client.modelURL(m.name, "countTokens"),
		Body:   internal.NewJSONEntity(body),
		Opts:   m.client.requestOpts(ctx),
	}

	var result CountTokensResponse
	if _, err := m.client.httpClient.DoAndUnmarshal(ctx, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CountTokensResponse is the response from a count tokens request.
type CountTokensResponse struct {
	TotalTokens             int32 `json:"totalTokens"`
	TotalBillableCharacters int32 `json:"totalBillableCharacters"`
}

func (m *GenerativeModel) generate(ctx context.Context, contents []*Content) (*GenerateContentResponse, error) {
	body := &generateContentRequest{
		Contents:         outgoingContents(contents),
		GenerationConfig: m.GenerationConfig,
		SafetySettings:   m.SafetySettings,
	}
	if m.SystemInstruction != nil {
		si := outgoingContents([]*Content{m.SystemInstruction})
		body.SystemInstruction = si[0]
	}

	req := &internal.Request{
		Method: http.MethodPost,
		URL:    m.client.modelURL(m.name, "generateContent"),
		Body:   internal.NewJSONEntity(body),
		Opts:   m.client.requestOpts(ctx),
	}

	var wire wireGenerateContentResponse
	if _, err := m.client.httpClient.DoAndUnmarshal(ctx, req, &wire); err != nil {
		return nil, err
	}
	return wire.toPublic()
}

func (c *Client) modelURL(model, operation string) string {
	return fmt.Sprintf(
		"%s/projects/%s/locations/%s/publishers/google/models/%s:%s",
		c.endpoint, c.projectID, c.location, model, operation)
}

func (c *Client) requestOpts(ctx context.Context) []internal.HTTPOption {
	var opts []internal.HTTPOption
	if c.appCheckTokens != nil {
		if token, err := c.appCheckTokens.AppCheckToken(ctx); err == nil && token != "" {
			opts = append(opts, internal.WithHeader(appCheckHeader, token))
		}
	}
	return opts
}

type generateContentRequest struct {
	Contents          []*wireContent    `json:"contents"`
	SystemInstruction *wireContent      `json:"systemInstruction,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
	SafetySettings    []*SafetySetting  `json:"safetySettings,omitempty"`
}

// outgoingContents maps public contents to their wire shape for serialization.
func outgoingContents(contents []*Content) []*wireContent {
	wc := make([]*wireContent, 0, len(contents))
	for _, c := range contents {
		parts := make([]*wirePart, 0, len(c.Parts))
		for _, p := range c.Parts {
			wp := &wirePart{Text: p.Text}
			if p.InlineData != nil {
				wp.InlineData = &wireBlob{
					MIMEType: p.InlineData.MIMEType,
					Data:     base64Encode(p.InlineData.Data),
				}
			}
			parts = append(parts, wp)
		}
		wc = append(wc, &wireContent{Role: c.Role, Parts: parts})
	}
	return wc
}
