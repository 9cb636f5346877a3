package repositories

import (
	"context"
	"io"
	"sort"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	gradientv1 "gradient-sdk/api/v1"
)

// LogIterator lazily follows the log of one experiment.
// Rows are returned in increasing line order; Next returns io.EOF once the
// end-of-stream marker is read.
type LogIterator struct {
	lister       LogLister
	experimentID string
	line         int
	limit        int
	pollInterval time.Duration

	buffer []gradientv1.LogRow
	done   bool
}

func NewLogIterator(lister LogLister, experimentID string, line, limit int, pollInterval time.Duration) *LogIterator {
	if limit <= 0 {
		limit = gradientv1.DefaultLogsLimit
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &LogIterator{
		lister:       lister,
		experimentID: experimentID,
		line:         line,
		limit:        limit,
		pollInterval: pollInterval,
	}
}

// Line: number of the next row to fetch
func (it *LogIterator) Line() int {
	return it.line
}

// poll: fetch rows starting at it.line, dropping rows already returned
func (it *LogIterator) poll(ctx context.Context) (bool, error) {
	rows, err := it.lister.ListLogs(ctx, it.experimentID, it.line, it.limit)
	if err != nil {
		return false, err
	}
	fresh := make([]gradientv1.LogRow, 0, len(rows))
	for _, row := range rows {
		if row.Line >= it.line {
			fresh = append(fresh, row)
		}
	}
	sort.SliceStable(fresh, func(i, j int) bool { return fresh[i].Line < fresh[j].Line })
	it.buffer = fresh
	return len(fresh) > 0, nil
}

// Next blocks until a new row is available, the stream ends or ctx is done.
func (it *LogIterator) Next(ctx context.Context) (*gradientv1.LogRow, error) {
	if it.done {
		return nil, io.EOF
	}
	var row gradientv1.LogRow
	for {
		if len(it.buffer) == 0 {
			err := wait.PollImmediateUntil(it.pollInterval, func() (bool, error) {
				return it.poll(ctx)
			}, ctx.Done())
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				return nil, err
			}
		}
		row = it.buffer[0]
		it.buffer = it.buffer[1:]
		// a page may repeat a line number
		if row.Line >= it.line {
			break
		}
	}
	it.line = row.Line + 1
	if row.IsEOF() {
		it.done = true
		it.buffer = nil
		return nil, io.EOF
	}
	return &row, nil
}
