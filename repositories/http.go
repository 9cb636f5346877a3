/*
Copyright 2021 KML Ares-Operator Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bombsimon/logrusr"
	"github.com/go-logr/logr"
	"github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/client-go/util/flowcontrol"

	gradientv1 "gradient-sdk/api/v1"
	"gradient-sdk/conf"
)

var _ Interface = &HTTPRepository{}

// Options: HTTPRepository options
type Options struct {
	APIKey  string
	Hosts   conf.HostsConfig
	Rest    conf.RestConfig
	Client  *http.Client
	Log     logr.Logger
	Limiter flowcontrol.RateLimiter
}

type OptionFunc func(opts *Options)

func WithHTTPClient(c *http.Client) OptionFunc {
	return func(opts *Options) {
		opts.Client = c
	}
}

func WithLogger(log logr.Logger) OptionFunc {
	return func(opts *Options) {
		opts.Log = log
	}
}

func WithRateLimiter(limiter flowcontrol.RateLimiter) OptionFunc {
	return func(opts *Options) {
		opts.Limiter = limiter
	}
}

// HTTPRepository talks to the experiments service over HTTP
type HTTPRepository struct {
	opts    Options
	client  *http.Client
	limiter flowcontrol.RateLimiter
	log     logr.Logger
}

// NewHTTPRepository: create a repository from configuration
func NewHTTPRepository(config *conf.Configuration, optFuncs ...OptionFunc) *HTTPRepository {
	opts := Options{
		APIKey: config.APIKey,
		Hosts:  config.Hosts,
		Rest:   config.GetRestConfig(),
	}
	for _, f := range optFuncs {
		f(&opts)
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.Rest.Timeout}
	}
	if opts.Log == nil {
		opts.Log = logrusr.NewLogger(logrus.StandardLogger())
	}
	if opts.Limiter == nil {
		opts.Limiter = flowcontrol.NewTokenBucketRateLimiter(opts.Rest.QPS, opts.Rest.Burst)
	}
	return &HTTPRepository{
		opts:    opts,
		client:  opts.Client,
		limiter: opts.Limiter,
		log:     opts.Log.WithName("repository"),
	}
}

func (r *HTTPRepository) apiHost(useVPC bool) string {
	if useVPC {
		return r.opts.Hosts.VPC
	}
	return r.opts.Hosts.API
}

// do: send one request and decode the response body into out when given
func (r *HTTPRepository) do(ctx context.Context, method, host, path string, query url.Values, body, out interface{}) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	var reader io.Reader
	if body != nil {
		content, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(content)
	}
	u := strings.TrimRight(host, "/") + path
	if len(query) > 0 {
		u = u + "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set(APIKeyHeader, r.opts.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	content, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: failed to read response: %w", method, path, err)
	}
	r.log.V(1).Info("request finished", "method", method, "path", path,
		"status", resp.StatusCode, "duration", time.Since(start).String())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(req, resp.StatusCode, content)
	}
	if out == nil || len(bytes.TrimSpace(content)) == 0 {
		return nil
	}
	if err := json.Unmarshal(content, out); err != nil {
		return fmt.Errorf("%s %s: failed to decode response: %w", method, path, err)
	}
	return nil
}

type handleResponse struct {
	Handle string `json:"handle"`
}

// Create: submit a new experiment; returns the server issued handle
func (r *HTTPRepository) Create(ctx context.Context, e gradientv1.Experiment, mode SubmitMode, useVPC bool) (string, error) {
	path, err := SubmitPath(e, mode)
	if err != nil {
		return "", err
	}
	resp := handleResponse{}
	if err := r.do(ctx, http.MethodPost, r.apiHost(useVPC), path, nil, e, &resp); err != nil {
		return "", err
	}
	if len(resp.Handle) == 0 {
		return "", fmt.Errorf("POST %s: response carries no experiment handle", path)
	}
	r.log.Info("experiment submitted", "handle", resp.Handle, "mode", mode, "type", e.GetExperimentType().String())
	return resp.Handle, nil
}

func (r *HTTPRepository) Start(ctx context.Context, experimentID string, useVPC bool) error {
	return r.do(ctx, http.MethodPut, r.apiHost(useVPC), StartPath(experimentID), nil, nil, nil)
}

func (r *HTTPRepository) Stop(ctx context.Context, experimentID string, useVPC bool) error {
	return r.do(ctx, http.MethodPut, r.apiHost(useVPC), StopPath(experimentID), nil, nil, nil)
}

type listResponse struct {
	ExperimentList []json.RawMessage `json:"experimentList"`
	Total          int               `json:"total"`
}

func listQuery(filter gradientv1.ListFilter) url.Values {
	query := url.Values{}
	for _, id := range filter.ProjectIDs {
		query.Add("projectHandle", id)
	}
	if filter.Offset > 0 {
		query.Set("offset", strconv.Itoa(filter.Offset))
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}
	for _, tag := range sets.NewString(filter.Tags...).List() {
		query.Add("tag", tag)
	}
	return query
}

// List: experiments matching filter; meta is nil unless filter.GetMeta is set
func (r *HTTPRepository) List(ctx context.Context, filter gradientv1.ListFilter) ([]gradientv1.Experiment, *gradientv1.ListMeta, error) {
	resp := listResponse{}
	if err := r.do(ctx, http.MethodGet, r.apiHost(false), ExperimentsPath, listQuery(filter), nil, &resp); err != nil {
		return nil, nil, err
	}
	experiments := make([]gradientv1.Experiment, 0, len(resp.ExperimentList))
	for i, raw := range resp.ExperimentList {
		e, err := gradientv1.DecodeExperiment(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("experimentList[%d]: %w", i, err)
		}
		experiments = append(experiments, e)
	}
	if !filter.GetMeta {
		return experiments, nil, nil
	}
	meta := &gradientv1.ListMeta{TotalItems: resp.Total, Filter: filter}
	return experiments, meta, nil
}

type getResponse struct {
	Data json.RawMessage `json:"data"`
}

func (r *HTTPRepository) Get(ctx context.Context, experimentID string) (gradientv1.Experiment, error) {
	resp := getResponse{}
	if err := r.do(ctx, http.MethodGet, r.apiHost(false), ExperimentPath(experimentID), nil, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("experiment %s: empty response", experimentID)
	}
	return gradientv1.DecodeExperiment(resp.Data)
}

func (r *HTTPRepository) ListLogs(ctx context.Context, experimentID string, line, limit int) ([]gradientv1.LogRow, error) {
	query := url.Values{}
	query.Set("experimentId", experimentID)
	query.Set("line", strconv.Itoa(line))
	query.Set("limit", strconv.Itoa(limit))
	rows := []gradientv1.LogRow{}
	if err := r.do(ctx, http.MethodGet, r.opts.Hosts.Logs, LogsPath, query, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *HTTPRepository) Delete(ctx context.Context, experimentID string) error {
	return r.do(ctx, http.MethodDelete, r.apiHost(false), ExperimentPath(experimentID), nil, nil, nil)
}
