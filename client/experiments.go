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

package client

import (
	"context"
	"time"

	"github.com/bombsimon/logrusr"
	"github.com/go-logr/logr"
	"github.com/sirupsen/logrus"

	gradientv1 "gradient-sdk/api/v1"
	"gradient-sdk/conf"
	"gradient-sdk/repositories"
)

// ExperimentsClient builds experiment definitions and forwards them to a repository
type ExperimentsClient struct {
	repository   repositories.Interface
	log          logr.Logger
	pollInterval time.Duration
}

type ClientOptionFunc func(c *ExperimentsClient)

func WithLogger(log logr.Logger) ClientOptionFunc {
	return func(c *ExperimentsClient) {
		c.log = log
	}
}

func WithPollInterval(d time.Duration) ClientOptionFunc {
	return func(c *ExperimentsClient) {
		c.pollInterval = d
	}
}

// NewExperimentsClient: create a client on top of an existing repository
func NewExperimentsClient(repository repositories.Interface, opts ...ClientOptionFunc) *ExperimentsClient {
	c := &ExperimentsClient{
		repository:   repository,
		pollInterval: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logrusr.NewLogger(logrus.StandardLogger())
	}
	c.log = c.log.WithName("experiments")
	return c
}

// NewExperimentsClientFromConfig: create a client talking HTTP to the configured hosts
func NewExperimentsClientFromConfig(config *conf.Configuration, log logr.Logger) *ExperimentsClient {
	repository := repositories.NewHTTPRepository(config, repositories.WithLogger(log))
	return NewExperimentsClient(repository, WithLogger(log), WithPollInterval(config.Logs.PollInterval))
}

// Submit: hand a built experiment to the repository
func (c *ExperimentsClient) Submit(ctx context.Context, e gradientv1.Experiment, mode repositories.SubmitMode, useVPC bool) (string, error) {
	if err := mode.Validate(); err != nil {
		return "", err
	}
	c.log.V(1).Info("submitting experiment", "mode", mode, "type", e.GetExperimentType().String(),
		"project", e.GetSpec().ProjectID, "nodes", gradientv1.GetTotalCount(e))
	return c.repository.Create(ctx, e, mode, useVPC)
}

func (c *ExperimentsClient) SubmitSingleNode(ctx context.Context, params *SingleNodeParams, mode repositories.SubmitMode) (string, error) {
	e, err := BuildSingleNode(params)
	if err != nil {
		return "", err
	}
	return c.Submit(ctx, e, mode, params.UseVPC)
}

func (c *ExperimentsClient) SubmitMultiNode(ctx context.Context, params *MultiNodeParams, mode repositories.SubmitMode) (string, error) {
	e, err := BuildMultiNode(params)
	if err != nil {
		return "", err
	}
	return c.Submit(ctx, e, mode, params.UseVPC)
}

func (c *ExperimentsClient) SubmitMpiMultiNode(ctx context.Context, params *MpiMultiNodeParams, mode repositories.SubmitMode) (string, error) {
	e, err := BuildMpiMultiNode(params)
	if err != nil {
		return "", err
	}
	return c.Submit(ctx, e, mode, params.UseVPC)
}

// CreateSingleNode: create a single node experiment without starting it
func (c *ExperimentsClient) CreateSingleNode(ctx context.Context, params *SingleNodeParams) (string, error) {
	return c.SubmitSingleNode(ctx, params, repositories.SubmitCreate)
}

// RunSingleNode: create and start a single node experiment
func (c *ExperimentsClient) RunSingleNode(ctx context.Context, params *SingleNodeParams) (string, error) {
	return c.SubmitSingleNode(ctx, params, repositories.SubmitRun)
}

func (c *ExperimentsClient) CreateMultiNode(ctx context.Context, params *MultiNodeParams) (string, error) {
	return c.SubmitMultiNode(ctx, params, repositories.SubmitCreate)
}

func (c *ExperimentsClient) RunMultiNode(ctx context.Context, params *MultiNodeParams) (string, error) {
	return c.SubmitMultiNode(ctx, params, repositories.SubmitRun)
}

func (c *ExperimentsClient) CreateMpiMultiNode(ctx context.Context, params *MpiMultiNodeParams) (string, error) {
	return c.SubmitMpiMultiNode(ctx, params, repositories.SubmitCreate)
}

func (c *ExperimentsClient) RunMpiMultiNode(ctx context.Context, params *MpiMultiNodeParams) (string, error) {
	return c.SubmitMpiMultiNode(ctx, params, repositories.SubmitRun)
}

// Start: start an existing experiment that has not run
func (c *ExperimentsClient) Start(ctx context.Context, experimentID string, useVPC bool) error {
	return c.repository.Start(ctx, experimentID, useVPC)
}

// Stop: stop a running experiment
func (c *ExperimentsClient) Stop(ctx context.Context, experimentID string, useVPC bool) error {
	return c.repository.Stop(ctx, experimentID, useVPC)
}

// List: experiments matching filter; meta is only returned when filter.GetMeta is set
func (c *ExperimentsClient) List(ctx context.Context, filter gradientv1.ListFilter) ([]gradientv1.Experiment, *gradientv1.ListMeta, error) {
	return c.repository.List(ctx, filter)
}

func (c *ExperimentsClient) Get(ctx context.Context, experimentID string) (gradientv1.Experiment, error) {
	return c.repository.Get(ctx, experimentID)
}

// Logs: one page of log rows starting at line
func (c *ExperimentsClient) Logs(ctx context.Context, experimentID string, line, limit int) ([]gradientv1.LogRow, error) {
	if limit <= 0 {
		limit = gradientv1.DefaultLogsLimit
	}
	return c.repository.ListLogs(ctx, experimentID, line, limit)
}

// YieldLogs: iterator polling for new rows until the log stream ends
func (c *ExperimentsClient) YieldLogs(experimentID string, line, limit int) *repositories.LogIterator {
	return repositories.NewLogIterator(c.repository, experimentID, line, limit, c.pollInterval)
}

func (c *ExperimentsClient) Delete(ctx context.Context, experimentID string) error {
	return c.repository.Delete(ctx, experimentID)
}
