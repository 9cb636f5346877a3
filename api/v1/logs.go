package v1

import "time"

// LogRow: one line of experiment output
type LogRow struct {
	Line      int       `json:"line"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// IsEOF: whether the row terminates the log stream
func (r LogRow) IsEOF() bool {
	return r.Message == LogsEOFMessage
}

// ListFilter selects experiments; tags match with OR semantics
type ListFilter struct {
	ProjectIDs []string `json:"projectIds,omitempty"`
	Offset     int      `json:"offset,omitempty"`
	Limit      int      `json:"limit,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	GetMeta    bool     `json:"getMeta,omitempty"`
}

// ListMeta is only populated when ListFilter.GetMeta is set
type ListMeta struct {
	TotalItems int        `json:"totalItems"`
	Filter     ListFilter `json:"filter"`
}
