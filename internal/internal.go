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

// Package internal contains functionality that is only accessible from within the SDK.
package internal

import (
	"context"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

// AppCheckTokenProvider supplies App Check tokens to be attached to outgoing
// service requests. Providers must be safe for concurrent use.
type AppCheckTokenProvider interface {
	AppCheckToken(ctx context.Context) (string, error)
}

// FunctionsConfig represents the configuration of the Cloud Functions service.
type FunctionsConfig struct {
	Opts           []option.ClientOption
	ProjectID      string
	Region         string
	CustomDomain   string
	EmulatorHost   string
	AppCheckTokens AppCheckTokenProvider
	Version        string
}

// VertexAIConfig represents the configuration of the Vertex AI service.
type VertexAIConfig struct {
	Opts           []option.ClientOption
	ProjectID      string
	APIKey         string
	AppID          string
	Location       string
	AppCheckTokens AppCheckTokenProvider
	Version        string
}

// DataConnectConfig represents the configuration of the Data Connect service.
type DataConnectConfig struct {
	Opts           []option.ClientOption
	ProjectID      string
	Connector      string
	Location       string
	ServiceID      string
	EmulatorHost   string
	AppCheckTokens AppCheckTokenProvider
	Version        string
}

// AppCheckConfig represents the configuration of the App Check service.
type AppCheckConfig struct {
	Opts      []option.ClientOption
	ProjectID string
	APIKey    string
	AppID     string
	Version   string
}

// StorageConfig represents the configuration of the Cloud Storage service.
type StorageConfig struct {
	Opts   []option.ClientOption
	Bucket string
}

// MockTokenSource is a TokenSource implementation that can be used for testing.
type MockTokenSource struct {
	AccessToken string
}

// Token returns the test token associated with the TokenSource.
func (ts *MockTokenSource) Token() (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: ts.AccessToken}, nil
}

// Clock is used to query the current local time.
type Clock interface {
	Now() time.Time
}

// SystemClock returns the current system time.
type SystemClock struct{}

// Now returns the current system time by calling time.Now().
func (s *SystemClock) Now() time.Time {
	return time.Now()
}

// MockClock can be used to mock current time during tests.
type MockClock struct {
	Timestamp time.Time
}

// Now returns the timestamp set in the MockClock.
func (m *MockClock) Now() time.Time {
	return m.Timestamp
}
