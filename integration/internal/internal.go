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

// Package internal contains utilities for running integration tests.
package internal

import (
	"context"
	"encoding/json"
	"io/ioutil"

	firebase "github.com/firebase/firebase-client-go"
)

const configPath = "../testdata/integration_config.json"

// NewTestApp creates a new App instance for integration tests.
//
// NewTestApp looks for a Firebase config file named integration_config.json
// in the testdata directory. The file must contain the project ID, API key
// and app ID of a test project.
func NewTestApp(ctx context.Context) (*firebase.App, error) {
	config, err := testConfig()
	if err != nil {
		return nil, err
	}
	return firebase.NewApp(ctx, config)
}

// ProjectID fetches the project ID of the test project.
func ProjectID() (string, error) {
	config, err := testConfig()
	if err != nil {
		return "", err
	}
	return config.ProjectID, nil
}

func testConfig() (*firebase.Config, error) {
	b, err := ioutil.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var config firebase.Config
	if err := json.Unmarshal(b, &config); err != nil {
		return nil, err
	}
	return &config, nil
}
