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

package firebase

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"google.golang.org/api/option"

	"github.com/firebase/firebase-client-go/dataconnect"
	"github.com/firebase/firebase-client-go/internal"
)

var testOpts = []option.ClientOption{
	option.WithTokenSource(&internal.MockTokenSource{AccessToken: "test-token"}),
}

func TestMain(m *testing.M) {
	// This isolates the tests from a possibility that the default config env
	// variable is set to a valid file containing the wanted default config,
	// but the test is not expecting it.
	configOld := overwriteEnv(firebaseEnvName, "")
	defer reinstateEnv(firebaseEnvName, configOld)
	os.Exit(m.Run())
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := NewApp(context.Background(), &Config{
		ProjectID: "test-project",
		APIKey:    "test-api-key",
		AppID:     "1:1234567890:go:abc123",
	}, testOpts...)
	if err != nil {
		t.Fatal(err)
	}
	return app
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t)
	if app.projectID != "test-project" {
		t.Errorf("Project ID: %q; want: %q", app.projectID, "test-project")
	}
	if app.apiKey != "test-api-key" {
		t.Errorf("API key: %q; want: %q", app.apiKey, "test-api-key")
	}
}

func TestNewAppNoProjectID(t *testing.T) {
	gcloudOld := overwriteEnv("GCLOUD_PROJECT", "")
	defer reinstateEnv("GCLOUD_PROJECT", gcloudOld)

	if _, err := NewApp(context.Background(), nil); err == nil {
		t.Errorf("NewApp() = nil; want error")
	}
}

func TestNewAppProjectIDFromEnv(t *testing.T) {
	gcloudOld := overwriteEnv("GCLOUD_PROJECT", "env-project")
	defer reinstateEnv("GCLOUD_PROJECT", gcloudOld)

	app, err := NewApp(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if app.projectID != "env-project" {
		t.Errorf("Project ID: %q; want: %q", app.projectID, "env-project")
	}
}

func TestConfigFromEnvFile(t *testing.T) {
	conf := `{
		"projectId": "file-project",
		"apiKey": "file-api-key",
		"appId": "1:1234567890:go:def456",
		"storageBucket": "file-project.appspot.com"
	}`
	confFile := filepath.Join(t.TempDir(), "firebase_config.json")
	if err := ioutil.WriteFile(confFile, []byte(conf), 0644); err != nil {
		t.Fatal(err)
	}
	configOld := overwriteEnv(firebaseEnvName, confFile)
	defer reinstateEnv(firebaseEnvName, configOld)

	app, err := NewApp(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if app.projectID != "file-project" {
		t.Errorf("Project ID: %q; want: %q", app.projectID, "file-project")
	}
	if app.storageBucket != "file-project.appspot.com" {
		t.Errorf("Bucket: %q; want: %q", app.storageBucket, "file-project.appspot.com")
	}
}

func TestConfigFromEnvFileOverrides(t *testing.T) {
	conf := `{"projectId": "file-project", "apiKey": "file-api-key"}`
	confFile := filepath.Join(t.TempDir(), "firebase_config.json")
	if err := ioutil.WriteFile(confFile, []byte(conf), 0644); err != nil {
		t.Fatal(err)
	}
	configOld := overwriteEnv(firebaseEnvName, confFile)
	defer reinstateEnv(firebaseEnvName, configOld)

	app, err := NewApp(context.Background(), &Config{ProjectID: "explicit-project"})
	if err != nil {
		t.Fatal(err)
	}
	if app.projectID != "explicit-project" {
		t.Errorf("Project ID: %q; want: %q", app.projectID, "explicit-project")
	}
	if app.apiKey != "file-api-key" {
		t.Errorf("API key: %q; want: %q", app.apiKey, "file-api-key")
	}
}

func TestConfigFromEnvFileUnknownField(t *testing.T) {
	conf := `{"projectId": "file-project", "databaseAddress": "not-a-thing"}`
	confFile := filepath.Join(t.TempDir(), "firebase_config.json")
	if err := ioutil.WriteFile(confFile, []byte(conf), 0644); err != nil {
		t.Fatal(err)
	}
	configOld := overwriteEnv(firebaseEnvName, confFile)
	defer reinstateEnv(firebaseEnvName, configOld)

	if _, err := NewApp(context.Background(), nil); err == nil {
		t.Errorf("NewApp() = nil; want error")
	}
}

func TestServiceInstanceCaching(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	c1, err := app.Functions(ctx, "us-central1")
	if err != nil {
		t.Fatal(err)
	}
	c2, err := app.Functions(ctx, "us-central1")
	if err != nil {
		t.Fatal(err)
	}
	if c1 != c2 {
		t.Errorf("Functions() returned distinct instances for the same region")
	}

	c3, err := app.Functions(ctx, "europe-west1")
	if err != nil {
		t.Fatal(err)
	}
	if c1 == c3 {
		t.Errorf("Functions() returned the same instance for distinct regions")
	}
}

func TestServiceConstructedOncePerKey(t *testing.T) {
	app := newTestApp(t)

	var constructions int
	const callers = 50
	results := make([]interface{}, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := app.service("test/shared-key", func() (interface{}, error) {
				constructions++
				return &struct{ id int }{id: constructions}, nil
			})
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = s
		}(i)
	}
	wg.Wait()

	if constructions != 1 {
		t.Errorf("constructions = %d; want: 1", constructions)
	}
	for i := 1; i < callers; i++ {
		if results[i] != results[0] {
			t.Fatalf("caller %d received a distinct instance", i)
		}
	}
}

func TestServiceConstructionErrorNotCached(t *testing.T) {
	app := newTestApp(t)

	calls := 0
	fail := func() (interface{}, error) {
		calls++
		return nil, os.ErrInvalid
	}
	if _, err := app.service("test/failing-key", fail); err == nil {
		t.Fatal("service() = nil; want error")
	}
	if _, err := app.service("test/failing-key", fail); err == nil {
		t.Fatal("service() = nil; want error")
	}
	if calls != 2 {
		t.Errorf("constructor calls = %d; want: 2", calls)
	}
}

func TestCloseEvictsInstances(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	c1, err := app.Functions(ctx, "us-central1")
	if err != nil {
		t.Fatal(err)
	}
	if err := app.Close(); err != nil {
		t.Fatal(err)
	}

	c2, err := app.Functions(ctx, "us-central1")
	if err != nil {
		t.Fatal(err)
	}
	if c1 == c2 {
		t.Errorf("Functions() returned the evicted instance after Close()")
	}
}

func TestDataConnectInstanceCaching(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	config := dataconnect.ConnectorConfig{
		Connector: "movies",
		Location:  "us-central1",
		ServiceID: "my-service",
	}

	c1, err := app.DataConnect(ctx, config)
	if err != nil {
		t.Fatal(err)
	}
	c2, err := app.DataConnect(ctx, config)
	if err != nil {
		t.Fatal(err)
	}
	if c1 != c2 {
		t.Errorf("DataConnect() returned distinct instances for the same config")
	}
}

func TestDataConnectConnectorConflict(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	if _, err := app.DataConnect(ctx, dataconnect.ConnectorConfig{
		Connector: "movies",
		Location:  "us-central1",
		ServiceID: "my-service",
	}); err != nil {
		t.Fatal(err)
	}

	_, err := app.DataConnect(ctx, dataconnect.ConnectorConfig{
		Connector: "books",
		Location:  "us-central1",
		ServiceID: "my-service",
	})
	if err == nil {
		t.Errorf("DataConnect() = nil; want conflict error")
	}
}

func TestDataConnectInvalidConfig(t *testing.T) {
	app := newTestApp(t)
	if _, err := app.DataConnect(context.Background(), dataconnect.ConnectorConfig{}); err == nil {
		t.Errorf("DataConnect() = nil; want error")
	}
}

func TestVertexAIRequiresAPIKey(t *testing.T) {
	app, err := NewApp(context.Background(), &Config{ProjectID: "test-project"}, testOpts...)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := app.VertexAI(context.Background(), ""); err == nil {
		t.Errorf("VertexAI() = nil; want error")
	}
}

func TestAppCheckRequiresAppID(t *testing.T) {
	app, err := NewApp(context.Background(), &Config{ProjectID: "test-project"}, testOpts...)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := app.AppCheck(context.Background()); err == nil {
		t.Errorf("AppCheck() = nil; want error")
	}
}

func overwriteEnv(varName, newVal string) string {
	oldVal := os.Getenv(varName)
	if newVal == "" {
		if err := os.Unsetenv(varName); err != nil {
			panic(err)
		}
	} else if err := os.Setenv(varName, newVal); err != nil {
		panic(err)
	}
	return oldVal
}

func reinstateEnv(varName, oldVal string) {
	if len(oldVal) > 0 {
		os.Setenv(varName, oldVal)
	} else {
		os.Unsetenv(varName)
	}
}
