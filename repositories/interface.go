package repositories

import (
	"context"
	"fmt"

	gradientv1 "gradient-sdk/api/v1"
)

// SubmitMode selects whether a new experiment is only created or also started
type SubmitMode string

const (
	SubmitCreate SubmitMode = "create"
	SubmitRun    SubmitMode = "run"
)

func (m SubmitMode) Validate() error {
	if m != SubmitCreate && m != SubmitRun {
		return fmt.Errorf("unsupported submit mode: %q", m)
	}
	return nil
}

// Interface is the boundary between the experiments client and the remote service
type Interface interface {
	Create(ctx context.Context, e gradientv1.Experiment, mode SubmitMode, useVPC bool) (string, error)
	Start(ctx context.Context, experimentID string, useVPC bool) error
	Stop(ctx context.Context, experimentID string, useVPC bool) error
	List(ctx context.Context, filter gradientv1.ListFilter) ([]gradientv1.Experiment, *gradientv1.ListMeta, error)
	Get(ctx context.Context, experimentID string) (gradientv1.Experiment, error)
	ListLogs(ctx context.Context, experimentID string, line, limit int) ([]gradientv1.LogRow, error)
	Delete(ctx context.Context, experimentID string) error
}

// LogLister is the part of Interface needed to follow logs
type LogLister interface {
	ListLogs(ctx context.Context, experimentID string, line, limit int) ([]gradientv1.LogRow, error)
}
