package mockapi

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kubeflow/common/pkg/util"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/client-go/tools/cache"

	gradientv1 "gradient-sdk/api/v1"
	"gradient-sdk/mockapi/server"
	"gradient-sdk/repositories"
	"gradient-sdk/utils"
)

// Interface: experiment storage behind the mock service
type Interface interface {
	Create(e gradientv1.Experiment, mode repositories.SubmitMode) (string, error)
	Get(handle string) (gradientv1.Experiment, error)
	List(filter gradientv1.ListFilter) ([]gradientv1.Experiment, int, error)
	SetState(handle string, state gradientv1.ExperimentState) error
	AppendLogs(handle string, messages ...string) error
	Logs(handle string, line, limit int) ([]gradientv1.LogRow, error)
	Delete(handle string) error
}

var _ Interface = &MemoryStore{}

type record struct {
	seq        int64
	experiment gradientv1.Experiment
	logs       []gradientv1.LogRow
}

// MemoryStore keeps experiments in a thread safe store; writers are serialized by lock
type MemoryStore struct {
	lock  sync.Mutex
	seq   int64
	store cache.ThreadSafeStore
	now   func() time.Time
}

const projectIndex = "project"

func indexByProject(obj interface{}) ([]string, error) {
	return []string{obj.(*record).experiment.GetSpec().ProjectID}, nil
}

func recordKey(obj interface{}) string {
	return obj.(*record).experiment.GetSpec().Handle
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		store: utils.NewIndexedStore(cache.Indexers{projectIndex: indexByProject}),
		now:   time.Now,
	}
}

func newHandle() string {
	return "es" + strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}

func notFound(handle string) error {
	return server.NewServiceError(NotFound, "experiment %s not found", handle)
}

func (s *MemoryStore) get(handle string) (*record, error) {
	item, ok := s.store.Get(handle)
	if !ok {
		return nil, notFound(handle)
	}
	return item.(*record), nil
}

// Create: store a copy of e under a new handle; SubmitRun also starts it
func (s *MemoryStore) Create(e gradientv1.Experiment, mode repositories.SubmitMode) (string, error) {
	if err := mode.Validate(); err != nil {
		return "", server.NewServiceError(InvalidParam, err)
	}
	stored, err := copyExperiment(e)
	if err != nil {
		return "", err
	}
	handle := newHandle()
	spec := stored.GetSpec()
	spec.Handle = handle
	spec.State = gradientv1.ExperimentStateCreated

	s.lock.Lock()
	defer s.lock.Unlock()
	s.seq++
	r := &record{seq: s.seq, experiment: stored}
	if mode == repositories.SubmitRun {
		s.start(handle, r)
	}
	s.store.Add(handle, r)
	util.LoggerForKey(handle).Infof("succeeded to create experiment: mode=%s, type=%v", mode, stored.GetExperimentType())
	return handle, nil
}

func (s *MemoryStore) Get(handle string) (gradientv1.Experiment, error) {
	r, err := s.get(handle)
	if err != nil {
		return nil, err
	}
	return copyExperiment(r.experiment)
}

// List: experiments in creation order; the total ignores offset and limit
func (s *MemoryStore) List(filter gradientv1.ListFilter) ([]gradientv1.Experiment, int, error) {
	items := s.store.List()
	if len(filter.ProjectIDs) > 0 {
		var err error
		if items, err = utils.ListByIndexValues(s.store, recordKey, projectIndex, filter.ProjectIDs...); err != nil {
			return nil, 0, err
		}
	}
	tags := sets.NewString(filter.Tags...)
	records := []*record{}
	for _, item := range items {
		r := item.(*record)
		if tags.Len() > 0 && !tags.HasAny(r.experiment.GetSpec().Tags...) {
			continue
		}
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].seq < records[j].seq })

	total := len(records)
	if filter.Offset > 0 {
		if filter.Offset >= len(records) {
			records = nil
		} else {
			records = records[filter.Offset:]
		}
	}
	if filter.Limit > 0 && filter.Limit < len(records) {
		records = records[:filter.Limit]
	}
	result := make([]gradientv1.Experiment, 0, len(records))
	for _, r := range records {
		e, err := copyExperiment(r.experiment)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, e)
	}
	return result, total, nil
}

// SetState: running appends a start row, stopped closes the log stream
func (s *MemoryStore) SetState(handle string, state gradientv1.ExperimentState) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	r, err := s.get(handle)
	if err != nil {
		return err
	}
	current := r.experiment.GetSpec().State
	next := *r
	next.experiment, err = copyExperiment(r.experiment)
	if err != nil {
		return err
	}
	switch state {
	case gradientv1.ExperimentStateRunning:
		if current == gradientv1.ExperimentStateRunning {
			return server.NewServiceError(Conflict, "experiment %s is already running", handle)
		}
		s.start(handle, &next)
	case gradientv1.ExperimentStateStopped:
		if current != gradientv1.ExperimentStateRunning {
			return server.NewServiceError(Conflict, "experiment %s is not running: %v", handle, current)
		}
		next.experiment.GetSpec().State = state
		next.logs = appendRows(next.logs, s.now(), "experiment stopped", gradientv1.LogsEOFMessage)
	default:
		return server.NewServiceError(InvalidParam, "unsupported state: %d", int(state))
	}
	s.store.Update(handle, &next)
	util.LoggerForKey(handle).Infof("experiment state changed: %v -> %v", current, state)
	return nil
}

func (s *MemoryStore) start(handle string, r *record) {
	r.experiment.GetSpec().State = gradientv1.ExperimentStateRunning
	r.logs = appendRows(r.logs, s.now(), fmt.Sprintf("experiment %s started", handle))
}

func (s *MemoryStore) AppendLogs(handle string, messages ...string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	r, err := s.get(handle)
	if err != nil {
		return err
	}
	next := *r
	next.logs = appendRows(r.logs, s.now(), messages...)
	s.store.Update(handle, &next)
	return nil
}

// Logs: rows with a line number of at least line, at most limit of them
func (s *MemoryStore) Logs(handle string, line, limit int) ([]gradientv1.LogRow, error) {
	r, err := s.get(handle)
	if err != nil {
		return nil, err
	}
	result := []gradientv1.LogRow{}
	for _, row := range r.logs {
		if row.Line < line {
			continue
		}
		if limit > 0 && len(result) >= limit {
			break
		}
		result = append(result, row)
	}
	return result, nil
}

func (s *MemoryStore) Delete(handle string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	log := util.LoggerForKey(handle)
	if _, ok := s.store.Get(handle); !ok {
		return notFound(handle)
	}
	s.store.Delete(handle)
	log.Infof("succeeded to delete experiment: <%s>", handle)
	return nil
}

// appendRows: line numbers start at 1 and grow by one per row
func appendRows(rows []gradientv1.LogRow, now time.Time, messages ...string) []gradientv1.LogRow {
	result := make([]gradientv1.LogRow, len(rows), len(rows)+len(messages))
	copy(result, rows)
	for _, msg := range messages {
		result = append(result, gradientv1.LogRow{Line: len(result) + 1, Timestamp: now.UTC(), Message: msg})
	}
	return result
}

// copyExperiment: deep copy through the wire encoding
func copyExperiment(e gradientv1.Experiment) (gradientv1.Experiment, error) {
	content := gradientv1.Json(e)
	return gradientv1.DecodeExperiment([]byte(content))
}
