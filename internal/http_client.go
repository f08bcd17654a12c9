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

package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"math"
	"net/http"
	"strconv"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/transport"
)

var clock Clock = &SystemClock{}

// RetryConfig specifies how the HTTPClient should retry failing HTTP requests.
//
// A request is never retried more than MaxRetries times. If CheckForRetry is nil, all network
// errors, and all 400+ HTTP status codes are retried. If an HTTP error response contains the
// Retry-After header, it is always respected. Otherwise retries are delayed with exponential
// backoff. Set ExpBackoffFactor to 0 to disable exponential backoff, and retry immediately
// after each error.
type RetryConfig struct {
	MaxRetries       int
	CheckForRetry    func(*http.Response, error) bool
	ExpBackoffFactor float64
}

func (rc *RetryConfig) retryEligible(retryAttempts int, resp *http.Response, err error) bool {
	if retryAttempts >= rc.MaxRetries {
		return false
	}
	if rc.CheckForRetry == nil {
		return err != nil || resp.StatusCode >= 400
	}
	return rc.CheckForRetry(resp, err)
}

func (rc *RetryConfig) retryDelay(retryAttempts int, resp *http.Response) time.Duration {
	serverRecommendedDelay := parseRetryAfterHeader(resp)
	clientEstimatedDelay := estimateDelayForAttempt(retryAttempts, rc.ExpBackoffFactor)
	if serverRecommendedDelay > clientEstimatedDelay {
		return serverRecommendedDelay
	}
	return clientEstimatedDelay
}

func parseRetryAfterHeader(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	retryAfterHeader := resp.Header.Get("retry-after")
	if retryAfterHeader == "" {
		return 0
	}
	delayInSeconds, err := strconv.ParseInt(retryAfterHeader, 10, 64)
	if err != nil {
		timestamp, err := http.ParseTime(retryAfterHeader)
		if err == nil {
			return timestamp.Sub(clock.Now())
		}
	}
	return time.Duration(delayInSeconds) * time.Second
}

func estimateDelayForAttempt(retryAttempts int, factor float64) time.Duration {
	if retryAttempts == 0 {
		return 0
	}
	delayInSeconds := int64(math.Pow(2, float64(retryAttempts)) * factor)
	return time.Duration(delayInSeconds) * time.Second
}

// defaultRetryConfig retries HTTP requests on all low-level network errors, as well as HTTP 500
// and 503 responses. It retries up to 4 times with exponential backoff.
var defaultRetryConfig = RetryConfig{
	MaxRetries: 4,
	CheckForRetry: func(resp *http.Response, err error) bool {
		return err != nil || resp.StatusCode == http.StatusInternalServerError ||
			resp.StatusCode == http.StatusServiceUnavailable
	},
	ExpBackoffFactor: 0.5,
}

// SuccessFn is a function that checks if a Response indicates success.
type SuccessFn func(r *Response) bool

// CreateErrFn is a function that creates an error from a given Response.
type CreateErrFn func(r *Response) error

// HasSuccessStatus returns true if the response status code is in the 2xx range.
func HasSuccessStatus(r *Response) bool {
	return r.Status >= http.StatusOK && r.Status < http.StatusNotModified
}

// HTTPClient is a convenient API to make HTTP calls.
//
// This API handles some of the repetitive tasks such as entity serialization and deserialization
// involved in making HTTP calls. It provides a convenient mechanism to set headers and query
// parameters on outgoing requests, while enforcing that an explicit context is used per request.
// Responses returned by HTTPClient can be easily parsed as JSON, and provide a simple mechanism to
// configure retries.
type HTTPClient struct {
	Client      *http.Client
	RetryConfig *RetryConfig
	CreateErrFn CreateErrFn
	SuccessFn   SuccessFn
	Opts        []HTTPOption
}

// NewHTTPClient creates a new HTTPClient using the provided client options and the default
// RetryConfig.
//
// NewHTTPClient returns the created HTTPClient along with the target endpoint URL. The endpoint
// is only useful when the client options specify a custom endpoint for a service.
func NewHTTPClient(ctx context.Context, opts ...option.ClientOption) (*HTTPClient, string, error) {
	hc, endpoint, err := transport.NewHTTPClient(ctx, opts...)
	if err != nil {
		return nil, "", err
	}
	client := &HTTPClient{
		Client:      hc,
		RetryConfig: &defaultRetryConfig,
	}
	return client, endpoint, nil
}

// Do executes the given Request, and returns a Response.
//
// If a RetryConfig is specified on the client, Do attempts to retry failing requests.
func (c *HTTPClient) Do(ctx context.Context, req *Request) (*Response, error) {
	var result *attemptResult
	var err error

	for retryAttempt := 0; ; retryAttempt++ {
		result, err = c.attempt(ctx, req, retryAttempt)
		if err != nil {
			return nil, err
		}
		if !result.Retry {
			break
		}
		if err = result.waitForRetry(ctx); err != nil {
			return nil, err
		}
	}
	return result.handleResponse()
}

// DoAndUnmarshal behaves similar to Do, but additionally attempts to unmarshal the response
// payload into the given pointer.
//
// Unmarshal takes place only if the response does not represent an error (as determined by
// the Do function) and v is not nil. If the unmarshal fails, an error is returned even if the
// original response indicated success.
func (c *HTTPClient) DoAndUnmarshal(ctx context.Context, req *Request, v interface{}) (*Response, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	if v != nil {
		if err := json.Unmarshal(resp.Body, v); err != nil {
			return nil, fmt.Errorf("error while parsing response: %v", err)
		}
	}
	return resp, nil
}

func (c *HTTPClient) attempt(ctx context.Context, req *Request, retryAttempt int) (*attemptResult, error) {
	hr, err := req.buildHTTPRequest(c.Opts)
	if err != nil {
		return nil, err
	}

	resp, err := c.Client.Do(hr.WithContext(ctx))
	result := &attemptResult{
		Resp:        resp,
		Err:         err,
		CreateErrFn: c.CreateErrFn,
		SuccessFn:   c.SuccessFn,
	}

	// If a RetryConfig is available, always consult it to determine if the request should be
	// retried or not.
	if c.RetryConfig != nil {
		result.Retry = c.RetryConfig.retryEligible(retryAttempt, resp, err)
		if result.Retry {
			result.RetryAfter = c.RetryConfig.retryDelay(retryAttempt, resp)
		}
	}
	return result, nil
}

type attemptResult struct {
	Resp        *http.Response
	Err         error
	Retry       bool
	RetryAfter  time.Duration
	CreateErrFn CreateErrFn
	SuccessFn   SuccessFn
}

func (r *attemptResult) waitForRetry(ctx context.Context) error {
	if r.Resp != nil {
		r.Resp.Body.Close()
	}
	if r.RetryAfter > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(r.RetryAfter):
		}
	}
	return ctx.Err()
}

func (r *attemptResult) handleResponse() (*Response, error) {
	if r.Err != nil {
		return nil, newFirebaseErrorTransport(r.Err)
	}

	resp, err := newResponse(r.Resp)
	if err != nil {
		return nil, err
	}

	success := r.SuccessFn
	if success == nil {
		success = HasSuccessStatus
	}
	if success(resp) {
		return resp, nil
	}

	createErr := r.CreateErrFn
	if createErr == nil {
		createErr = NewFirebaseError
	}
	return nil, createErr(resp)
}

// Request contains all the parameters required to construct an outgoing HTTP request.
type Request struct {
	Method string
	URL    string
	Body   HTTPEntity
	Opts   []HTTPOption
}

func (r *Request) buildHTTPRequest(opts []HTTPOption) (*http.Request, error) {
	var data io.Reader
	if r.Body != nil {
		b, err := r.Body.Bytes()
		if err != nil {
			return nil, err
		}
		data = bytes.NewBuffer(b)
	}

	req, err := http.NewRequest(r.Method, r.URL, data)
	if err != nil {
		return nil, err
	}

	if r.Body != nil {
		req.Header.Set("Content-Type", r.Body.Mime())
	}
	for _, o := range opts {
		o(req)
	}
	for _, o := range r.Opts {
		o(req)
	}
	return req, nil
}

// HTTPEntity represents a payload that can be included in an outgoing HTTP request.
type HTTPEntity interface {
	Bytes() ([]byte, error)
	Mime() string
}

type jsonEntity struct {
	Val interface{}
}

// NewJSONEntity creates a new HTTPEntity that will be serialized into JSON.
func NewJSONEntity(v interface{}) HTTPEntity {
	return &jsonEntity{Val: v}
}

func (e *jsonEntity) Bytes() ([]byte, error) {
	return json.Marshal(e.Val)
}

func (e *jsonEntity) Mime() string {
	return "application/json"
}

// Response contains information extracted from an HTTP response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
	resp   *http.Response
}

func newResponse(resp *http.Response) (*Response, error) {
	defer resp.Body.Close()
	b, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{
		Status: resp.StatusCode,
		Body:   b,
		Header: resp.Header,
		resp:   resp,
	}, nil
}

// LowLevelResponse returns the underlying http.Response of this Response.
//
// The body of the returned http.Response is already consumed and closed.
func (r *Response) LowLevelResponse() *http.Response {
	return r.resp
}

// HTTPOption is an additional parameter that can be specified to customize an outgoing request.
type HTTPOption func(*http.Request)

// WithHeader creates an HTTPOption that will set an HTTP header on the request.
func WithHeader(key, value string) HTTPOption {
	return func(r *http.Request) {
		r.Header.Set(key, value)
	}
}

// WithQueryParam creates an HTTPOption that will set a query parameter on the request.
func WithQueryParam(key, value string) HTTPOption {
	return func(r *http.Request) {
		q := r.URL.Query()
		q.Add(key, value)
		r.URL.RawQuery = q.Encode()
	}
}

// WithQueryParams creates an HTTPOption that will set all the entries of qp as query parameters
// on the request.
func WithQueryParams(qp map[string]string) HTTPOption {
	return func(r *http.Request) {
		q := r.URL.Query()
		for k, v := range qp {
			q.Add(k, v)
		}
		r.URL.RawQuery = q.Encode()
	}
}
