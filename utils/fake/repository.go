package fake

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-logr/logr"

	gradientv1 "gradient-sdk/api/v1"
	"gradient-sdk/repositories"
)

var _ repositories.Interface = &FakeRepository{}

// Call: one recorded invocation of FakeRepository
type Call struct {
	Method       string
	ExperimentID string
	Experiment   gradientv1.Experiment
	Mode         repositories.SubmitMode
	UseVPC       bool
	Filter       gradientv1.ListFilter
	Line         int
	Limit        int
}

// FakeRepository is used as a fake during tests
type FakeRepository struct {
	sync.Mutex
	Log   logr.Logger
	Calls []Call

	// Err is returned by every method when set
	Err         error
	Handle      string
	Experiments map[string]gradientv1.Experiment
	// LogPages are returned one per ListLogs call; the last page repeats
	LogPages [][]gradientv1.LogRow
}

func NewFakeRepository(log logr.Logger) *FakeRepository {
	return &FakeRepository{
		Log:         log,
		Handle:      "esfake",
		Experiments: map[string]gradientv1.Experiment{},
	}
}

func (f *FakeRepository) record(c Call) {
	f.Lock()
	defer f.Unlock()
	f.Calls = append(f.Calls, c)
	f.Log.Info(fmt.Sprintf("%s %s", c.Method, c.ExperimentID))
}

func (f *FakeRepository) Create(ctx context.Context, e gradientv1.Experiment, mode repositories.SubmitMode, useVPC bool) (string, error) {
	f.record(Call{Method: "Create", Experiment: e, Mode: mode, UseVPC: useVPC})
	if f.Err != nil {
		return "", f.Err
	}
	f.Lock()
	f.Experiments[f.Handle] = e
	f.Unlock()
	return f.Handle, nil
}

func (f *FakeRepository) Start(ctx context.Context, experimentID string, useVPC bool) error {
	f.record(Call{Method: "Start", ExperimentID: experimentID, UseVPC: useVPC})
	return f.Err
}

func (f *FakeRepository) Stop(ctx context.Context, experimentID string, useVPC bool) error {
	f.record(Call{Method: "Stop", ExperimentID: experimentID, UseVPC: useVPC})
	return f.Err
}

func (f *FakeRepository) List(ctx context.Context, filter gradientv1.ListFilter) ([]gradientv1.Experiment, *gradientv1.ListMeta, error) {
	f.record(Call{Method: "List", Filter: filter})
	if f.Err != nil {
		return nil, nil, f.Err
	}
	f.Lock()
	defer f.Unlock()
	result := []gradientv1.Experiment{}
	for _, e := range f.Experiments {
		result = append(result, e)
	}
	if !filter.GetMeta {
		return result, nil, nil
	}
	return result, &gradientv1.ListMeta{TotalItems: len(result), Filter: filter}, nil
}

func (f *FakeRepository) Get(ctx context.Context, experimentID string) (gradientv1.Experiment, error) {
	f.record(Call{Method: "Get", ExperimentID: experimentID})
	if f.Err != nil {
		return nil, f.Err
	}
	f.Lock()
	defer f.Unlock()
	e, ok := f.Experiments[experimentID]
	if !ok {
		return nil, fmt.Errorf("experiment %s not found", experimentID)
	}
	return e, nil
}

func (f *FakeRepository) ListLogs(ctx context.Context, experimentID string, line, limit int) ([]gradientv1.LogRow, error) {
	f.record(Call{Method: "ListLogs", ExperimentID: experimentID, Line: line, Limit: limit})
	if f.Err != nil {
		return nil, f.Err
	}
	f.Lock()
	defer f.Unlock()
	if len(f.LogPages) == 0 {
		return nil, nil
	}
	page := f.LogPages[0]
	if len(f.LogPages) > 1 {
		f.LogPages = f.LogPages[1:]
	}
	return page, nil
}

func (f *FakeRepository) Delete(ctx context.Context, experimentID string) error {
	f.record(Call{Method: "Delete", ExperimentID: experimentID})
	return f.Err
}

// CallsOf: recorded calls of one method, in order
func (f *FakeRepository) CallsOf(method string) []Call {
	f.Lock()
	defer f.Unlock()
	result := []Call{}
	for _, c := range f.Calls {
		if c.Method == method {
			result = append(result, c)
		}
	}
	return result
}
