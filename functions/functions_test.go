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

package functions

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"google.golang.org/api/option"

	"github.com/firebase/firebase-client-go/internal"
)

var testOpts = []option.ClientOption{
	option.WithTokenSource(&internal.MockTokenSource{AccessToken: "test-token"}),
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(context.Background(), &internal.FunctionsConfig{
		Opts:      testOpts,
		ProjectID: "test-project",
		Region:    server.URL,
		Version:   "1.0.0",
	})
	if err != nil {
		t.Fatal(err)
	}
	return client
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(context.Background(), &internal.FunctionsConfig{Region: "us-central1"}); err == nil {
		t.Errorf("NewClient() without project = nil; want error")
	}
	if _, err := NewClient(context.Background(), &internal.FunctionsConfig{ProjectID: "p"}); err == nil {
		t.Errorf("NewClient() without region = nil; want error")
	}
}

func TestResolveEndpoint(t *testing.T) {
	cases := []struct {
		name string
		conf *internal.FunctionsConfig
		want string
	}{
		{
			name: "region",
			conf: &internal.FunctionsConfig{ProjectID: "test-project", Region: "us-central1"},
			want: "https://us-central1-test-project.cloudfunctions.net",
		},
		{
			name: "custom domain",
			conf: &internal.FunctionsConfig{ProjectID: "test-project", CustomDomain: "https://api.example.com/"},
			want: "https://api.example.com",
		},
		{
			name: "region given as URL",
			conf: &internal.FunctionsConfig{ProjectID: "test-project", Region: "https://api.example.com"},
			want: "https://api.example.com",
		},
		{
			name: "emulator",
			conf: &internal.FunctionsConfig{
				ProjectID:    "test-project",
				Region:       "us-central1",
				EmulatorHost: "localhost:5001",
			},
			want: "http://localhost:5001/test-project/us-central1",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := resolveEndpoint(tc.conf); got != tc.want {
				t.Errorf("resolveEndpoint() = %q; want: %q", got, tc.want)
			}
		})
	}
}

func TestCall(t *testing.T) {
	var gotReq *http.Request
	var gotBody []byte
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r
		gotBody, _ = ioutil.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"message": "ok", "count": 2}}`))
	}))

	result, err := client.HTTPSCallable("addMessage").Call(context.Background(), map[string]string{"text": "hi"})
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]interface{}{"message": "ok", "count": float64(2)}
	if !reflect.DeepEqual(result.Data(), want) {
		t.Errorf("Data() = %v; want: %v", result.Data(), want)
	}

	var typed struct {
		Message string `json:"message"`
		Count   int    `json:"count"`
	}
	if err := result.Unmarshal(&typed); err != nil {
		t.Fatal(err)
	}
	if typed.Message != "ok" || typed.Count != 2 {
		t.Errorf("Unmarshal() = %+v; want: {ok 2}", typed)
	}

	if gotReq.URL.Path != "/addMessage" {
		t.Errorf("request path = %q; want: %q", gotReq.URL.Path, "/addMessage")
	}
	var body map[string]interface{}
	if err := json.Unmarshal(gotBody, &body); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(body, map[string]interface{}{"data": map[string]interface{}{"text": "hi"}}) {
		t.Errorf("request body = %v; want data envelope", body)
	}
}

func TestCallResultField(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": "legacy"}`))
	}))

	result, err := client.HTTPSCallable("legacyFn").Call(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Data() != "legacy" {
		t.Errorf("Data() = %v; want: %q", result.Data(), "legacy")
	}
}

func TestCallError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{
			"error": {
				"message": "quota exceeded",
				"status": "RESOURCE_EXHAUSTED",
				"details": {"limit": 100}
			}
		}`))
	}))

	_, err := client.HTTPSCallable("busyFn").Call(context.Background(), nil)
	if err == nil {
		t.Fatal("Call() = nil; want error")
	}
	if !internal.HasPlatformErrorCode(err, internal.ResourceExhausted) {
		t.Errorf("error code = %v; want: %v", err, internal.ResourceExhausted)
	}
	if err.Error() != "quota exceeded" {
		t.Errorf("Error() = %q; want: %q", err.Error(), "quota exceeded")
	}

	fe := err.(*internal.FirebaseError)
	details, ok := fe.Ext["details"].(map[string]interface{})
	if !ok || details["limit"] != float64(100) {
		t.Errorf("details = %v; want: {limit: 100}", fe.Ext["details"])
	}
}

func TestCallErrorWithoutPayload(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("unavailable"))
	}))
	// Disable retries for this case, the default config retries 503s.
	client.httpClient.RetryConfig = nil

	_, err := client.HTTPSCallable("fn").Call(context.Background(), nil)
	if err == nil {
		t.Fatal("Call() = nil; want error")
	}
	if !internal.HasPlatformErrorCode(err, internal.Unavailable) {
		t.Errorf("error code = %v; want: %v", err, internal.Unavailable)
	}
}

func TestCallMissingData(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	_, err := client.HTTPSCallable("emptyFn").Call(context.Background(), nil)
	if err == nil {
		t.Fatal("Call() = nil; want error")
	}
	if !internal.HasPlatformErrorCode(err, internal.Internal) {
		t.Errorf("error code = %v; want: %v", err, internal.Internal)
	}
}

func TestCallAppCheckHeader(t *testing.T) {
	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Firebase-AppCheck")
		w.Write([]byte(`{"data": null}`))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), &internal.FunctionsConfig{
		Opts:           testOpts,
		ProjectID:      "test-project",
		Region:         server.URL,
		AppCheckTokens: &staticTokenProvider{token: "app-check-token"},
		Version:        "1.0.0",
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := client.HTTPSCallable("fn").Call(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if gotHeader != "app-check-token" {
		t.Errorf("X-Firebase-AppCheck = %q; want: %q", gotHeader, "app-check-token")
	}
}

func TestHTTPSCallableFromURL(t *testing.T) {
	client, err := NewClient(context.Background(), &internal.FunctionsConfig{
		Opts:      testOpts,
		ProjectID: "test-project",
		Region:    "us-central1",
		Version:   "1.0.0",
	})
	if err != nil {
		t.Fatal(err)
	}

	callable := client.HTTPSCallableFromURL("https://api.example.com/fn")
	if callable.URL() != "https://api.example.com/fn" {
		t.Errorf("URL() = %q; want: %q", callable.URL(), "https://api.example.com/fn")
	}

	callable = client.HTTPSCallable("fn")
	want := "https://us-central1-test-project.cloudfunctions.net/fn"
	if callable.URL() != want {
		t.Errorf("URL() = %q; want: %q", callable.URL(), want)
	}
}

type staticTokenProvider struct {
	token string
}

func (p *staticTokenProvider) AppCheckToken(ctx context.Context) (string, error) {
	return p.token, nil
}
