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

// Package firebase is the entry point to the Firebase SDK for Go clients. It provides
// functionality for initializing App instances, which serve as the central entities that
// provide access to the various other Firebase services exposed from the SDK.
package firebase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"sync"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"github.com/firebase/firebase-client-go/appcheck"
	"github.com/firebase/firebase-client-go/dataconnect"
	"github.com/firebase/firebase-client-go/functions"
	"github.com/firebase/firebase-client-go/internal"
	"github.com/firebase/firebase-client-go/storage"
	"github.com/firebase/firebase-client-go/vertexai"
)

// Version of the Firebase SDK for Go clients.
const Version = "1.0.0"

// DefaultRegion is the region used for service instances created without an
// explicit region or location.
const DefaultRegion = "us-central1"

// firebaseEnvName is the name of the environment variable with the Config.
const firebaseEnvName = "FIREBASE_CONFIG"

// An App holds configuration and state common to all Firebase services that are exposed
// from the SDK.
//
// Service instances obtained through an App are cached per key (region, location or
// connector configuration) for its lifetime. An App must not be copied after first use.
type App struct {
	projectID     string
	apiKey        string
	appID         string
	storageBucket string
	opts          []option.ClientOption

	// mutex guards services and appCheck. It is held across the whole
	// lookup-or-create critical section so that concurrent callers observe
	// exactly one instance per key.
	mutex    sync.Mutex
	services map[string]interface{}
	appCheck *appcheck.Client
}

// Config represents the configuration used to initialize an App.
type Config struct {
	ProjectID     string `json:"projectId"`
	APIKey        string `json:"apiKey"`
	AppID         string `json:"appId"`
	StorageBucket string `json:"storageBucket"`
}

// NewApp creates a new App from the provided config and client options.
//
// Fields missing from the config are populated from the JSON file pointed to by the
// FIREBASE_CONFIG environment variable, when that variable is set. NewApp returns an
// error if no project ID can be determined.
func NewApp(ctx context.Context, config *Config, opts ...option.ClientOption) (*App, error) {
	if config == nil {
		config = &Config{}
	}
	config, err := amendConfigWithDefaults(config)
	if err != nil {
		return nil, err
	}

	pid := config.ProjectID
	if pid == "" {
		pid = os.Getenv("GCLOUD_PROJECT")
	}
	if pid == "" {
		return nil, errors.New("project ID is required to initialize an App")
	}

	return &App{
		projectID:     pid,
		apiKey:        config.APIKey,
		appID:         config.AppID,
		storageBucket: config.StorageBucket,
		opts:          opts,
		services:      make(map[string]interface{}),
	}, nil
}

// Functions returns the functions.Client instance for the given region or custom domain.
//
// Passing an empty string selects the default region. The returned client is created on
// the first call for a given region, and subsequent calls with the same region return
// the same instance.
func (a *App) Functions(ctx context.Context, regionOrCustomDomain string) (*functions.Client, error) {
	if regionOrCustomDomain == "" {
		regionOrCustomDomain = DefaultRegion
	}
	s, err := a.service("functions/"+regionOrCustomDomain, func() (interface{}, error) {
		conf := &internal.FunctionsConfig{
			Opts:           a.opts,
			ProjectID:      a.projectID,
			Region:         regionOrCustomDomain,
			EmulatorHost:   os.Getenv("FIREBASE_FUNCTIONS_EMULATOR_HOST"),
			AppCheckTokens: a.appCheckTokens(),
			Version:        Version,
		}
		return functions.NewClient(ctx, conf)
	})
	if err != nil {
		return nil, err
	}
	return s.(*functions.Client), nil
}

// VertexAI returns the vertexai.Client instance for the given location.
//
// Passing an empty string selects the default location. The returned client is created
// on the first call for a given location, and subsequent calls with the same location
// return the same instance.
func (a *App) VertexAI(ctx context.Context, location string) (*vertexai.Client, error) {
	if location == "" {
		location = DefaultRegion
	}
	s, err := a.service("vertexai/"+location, func() (interface{}, error) {
		conf := &internal.VertexAIConfig{
			Opts:           a.opts,
			ProjectID:      a.projectID,
			APIKey:         a.apiKey,
			AppID:          a.appID,
			Location:       location,
			AppCheckTokens: a.appCheckTokens(),
			Version:        Version,
		}
		return vertexai.NewClient(ctx, conf)
	})
	if err != nil {
		return nil, err
	}
	return s.(*vertexai.Client), nil
}

// DataConnect returns the dataconnect.Client instance for the given connector
// configuration.
//
// Instances are keyed by the (location, service) pair of the configuration. Requesting
// an already cached instance with a different connector for the same key is a usage
// error, and is reported as such instead of silently returning the mismatched instance.
func (a *App) DataConnect(ctx context.Context, config dataconnect.ConnectorConfig) (*dataconnect.Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	s, err := a.service("dataconnect/"+config.Location+"/"+config.ServiceID, func() (interface{}, error) {
		conf := &internal.DataConnectConfig{
			Opts:           a.opts,
			ProjectID:      a.projectID,
			Connector:      config.Connector,
			Location:       config.Location,
			ServiceID:      config.ServiceID,
			EmulatorHost:   os.Getenv("FIREBASE_DATA_CONNECT_EMULATOR_HOST"),
			AppCheckTokens: a.appCheckTokens(),
			Version:        Version,
		}
		return dataconnect.NewClient(ctx, conf)
	})
	if err != nil {
		return nil, err
	}
	client := s.(*dataconnect.Client)
	if client.ConnectorConfig() != config {
		return nil, fmt.Errorf(
			"dataconnect: service %q in %q is already initialized with connector %q",
			config.ServiceID, config.Location, client.ConnectorConfig().Connector)
	}
	return client, nil
}

// AppCheck returns the appcheck.Client instance associated with this App.
//
// A token provider must be installed on the returned client before App Check tokens are
// attached to outgoing service requests. Only service instances created after this call
// attach App Check tokens; obtain the App Check client before the other services.
func (a *App) AppCheck(ctx context.Context) (*appcheck.Client, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	if a.appCheck == nil {
		conf := &internal.AppCheckConfig{
			Opts:      a.opts,
			ProjectID: a.projectID,
			APIKey:    a.apiKey,
			AppID:     a.appID,
			Version:   Version,
		}
		client, err := appcheck.NewClient(ctx, conf)
		if err != nil {
			return nil, err
		}
		a.appCheck = client
	}
	return a.appCheck, nil
}

// Storage returns the storage.Client instance associated with this App.
func (a *App) Storage(ctx context.Context) (*storage.Client, error) {
	s, err := a.service("storage", func() (interface{}, error) {
		conf := &internal.StorageConfig{
			Opts:   a.opts,
			Bucket: a.storageBucket,
		}
		return storage.NewClient(ctx, conf)
	})
	if err != nil {
		return nil, err
	}
	return s.(*storage.Client), nil
}

// Firestore returns a new firestore.Client instance from the
// https://godoc.org/cloud.google.com/go/firestore package.
func (a *App) Firestore(ctx context.Context) (*firestore.Client, error) {
	s, err := a.service("firestore", func() (interface{}, error) {
		return firestore.NewClient(ctx, a.projectID, a.opts...)
	})
	if err != nil {
		return nil, err
	}
	return s.(*firestore.Client), nil
}

// Close evicts all service instances cached on this App, closing the ones that hold
// network resources. The App remains usable: a subsequent service accessor call
// constructs a fresh instance for its key. Using a previously returned service
// instance after Close is undefined.
func (a *App) Close() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	var firstErr error
	for _, s := range a.services {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	a.services = make(map[string]interface{})
	a.appCheck = nil
	return firstErr
}

// service returns the instance identified by the given key. If the instance does not
// exist yet, the provided function is invoked to create a new one. The lock is held for
// the duration of the lookup-or-create, so fn must not block indefinitely.
func (a *App) service(key string, fn func() (interface{}, error)) (interface{}, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	s, ok := a.services[key]
	if !ok {
		var err error
		s, err = fn()
		if err != nil {
			return nil, err
		}
		a.services[key] = s
	}
	return s, nil
}

// appCheckTokens returns the provider used to attach App Check tokens to service
// requests, or nil when App Check is not in use. Callers must hold a.mutex.
func (a *App) appCheckTokens() internal.AppCheckTokenProvider {
	if a.appCheck == nil {
		return nil
	}
	return a.appCheck
}

// amendConfigWithDefaults reads the default config file, defined by the FIREBASE_CONFIG
// env variable, and uses those values where the config is missing values.
func amendConfigWithDefaults(config *Config) (*Config, error) {
	confFileName := os.Getenv(firebaseEnvName)
	if confFileName == "" {
		return config, nil
	}
	dat, err := ioutil.ReadFile(confFileName)
	if err != nil {
		return nil, err
	}

	var jsonData map[string]json.RawMessage
	if err := json.Unmarshal(dat, &jsonData); err != nil {
		return nil, err
	}
	for k := range jsonData {
		if _, ok := validConfigFieldNames[k]; !ok {
			return nil, fmt.Errorf("unexpected field %q in JSON config file", k)
		}
	}

	fbc := &Config{}
	if err := json.Unmarshal(dat, fbc); err != nil {
		return nil, err
	}
	if config.ProjectID != "" {
		fbc.ProjectID = config.ProjectID
	}
	if config.APIKey != "" {
		fbc.APIKey = config.APIKey
	}
	if config.AppID != "" {
		fbc.AppID = config.AppID
	}
	if config.StorageBucket != "" {
		fbc.StorageBucket = config.StorageBucket
	}
	return fbc, nil
}

var validConfigFieldNames = map[string]bool{
	"projectId":     true,
	"apiKey":        true,
	"appId":         true,
	"storageBucket": true,
}
