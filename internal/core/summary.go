package core

// summary.go folds row outcomes into a batch summary.
//
// Counts do not depend on the order outcomes arrive in. The sample lists
// keep the first rows seen, so a caller that stops early still gets a
// usable preview; only the counts need the whole table.

import (
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/recipientcsv/internal/recipient"
)

// Defaults for the sample lists kept on a Summary.
const (
	DefaultMaxErrorSamples = 20
	DefaultMaxInitialRows  = 10
)

// RowReport is a row as shown in a report.
type RowReport struct {
	Row       int                 `json:"row"`
	Record    int                 `json:"record"`
	Values    []string            `json:"values"`
	Flags     RowFlags            `json:"flags"`
	Errors    []*recipient.Error  `json:"errors,omitempty"`
	Recipient *ValidatedRecipient `json:"recipient,omitempty"`
}

func newRowReport(o *Outcome) RowReport {
	return RowReport{
		Row:       o.Row.Number,
		Record:    o.Row.Record,
		Values:    o.Row.Cells(),
		Flags:     o.Flags(),
		Errors:    o.Errors,
		Recipient: o.Recipient,
	}
}

// Summary describes a whole batch.
type Summary struct {
	BatchID uuid.UUID `json:"batch_id"`
	Channel Channel   `json:"channel"`
	Headers []string  `json:"headers"`

	// TotalRows counts non-empty data rows read, including rows past the
	// row limit that were not validated.
	TotalRows   int `json:"total_rows"`
	ValidRows   int `json:"valid_rows"`
	InvalidRows int `json:"invalid_rows"`

	ErrorCounts map[recipient.Kind]int `json:"error_counts,omitempty"`
	BatchErrors []*recipient.Error     `json:"batch_errors,omitempty"`

	Reconciliation

	DuplicateRecipients int               `json:"duplicate_recipients"`
	DuplicateSamples    []DuplicateSample `json:"duplicate_samples,omitempty"`

	TooManyRows         bool `json:"too_many_rows"`
	MoreRowsThanCanSend bool `json:"more_rows_than_can_send"`

	// TimedOut means the processing budget ran out. The summary covers
	// only the rows read before then and must not be treated as final.
	TimedOut bool `json:"timed_out"`

	// Complete is set once every row has been read without a timeout or
	// read failure.
	Complete bool `json:"complete"`

	ErrorSamples []RowReport `json:"error_samples,omitempty"`
	InitialRows  []RowReport `json:"initial_rows,omitempty"`

	Elapsed time.Duration `json:"elapsed_ns"`
}

// HasErrors reports whether anything stops the batch being sent as is.
func (s *Summary) HasErrors() bool {
	return s.MissingContactColumn ||
		len(s.MissingRequired) > 0 ||
		len(s.DuplicateRecipientHeaders) > 0 ||
		s.TooManyRows ||
		s.MoreRowsThanCanSend ||
		s.TimedOut ||
		s.InvalidRows > 0
}

// Aggregator builds a Summary one outcome at a time.
type Aggregator struct {
	summary    Summary
	maxErrors  int
	maxInitial int
}

// NewAggregator returns an aggregator for a batch. Non-positive sample
// sizes use the defaults.
func NewAggregator(batchID uuid.UUID, ch Channel, maxErrorSamples, maxInitialRows int) *Aggregator {
	if maxErrorSamples <= 0 {
		maxErrorSamples = DefaultMaxErrorSamples
	}
	if maxInitialRows <= 0 {
		maxInitialRows = DefaultMaxInitialRows
	}
	return &Aggregator{
		summary: Summary{
			BatchID:     batchID,
			Channel:     ch,
			ErrorCounts: make(map[recipient.Kind]int),
		},
		maxErrors:  maxErrorSamples,
		maxInitial: maxInitialRows,
	}
}

// Add folds one outcome into the summary.
func (a *Aggregator) Add(o *Outcome) {
	s := &a.summary
	s.TotalRows++
	if o.Valid() {
		s.ValidRows++
	} else {
		s.InvalidRows++
		for _, e := range o.Errors {
			s.ErrorCounts[e.Kind]++
		}
		if len(s.ErrorSamples) < a.maxErrors {
			s.ErrorSamples = append(s.ErrorSamples, newRowReport(o))
		}
	}
	if len(s.InitialRows) < a.maxInitial {
		s.InitialRows = append(s.InitialRows, newRowReport(o))
	}
}

// AddSkipped counts a row that was read but not validated.
func (a *Aggregator) AddSkipped() {
	a.summary.TotalRows++
}

// AddBatchError records a table-level error once.
func (a *Aggregator) AddBatchError(err *recipient.Error) {
	for _, e := range a.summary.BatchErrors {
		if e.Kind == err.Kind && e.Column == err.Column {
			return
		}
	}
	a.summary.BatchErrors = append(a.summary.BatchErrors, err)
	a.summary.ErrorCounts[err.Kind]++
}

// Summary returns a copy of the summary so far.
func (a *Aggregator) Summary() Summary {
	s := a.summary
	s.ErrorCounts = maps.Clone(a.summary.ErrorCounts)
	s.BatchErrors = append([]*recipient.Error(nil), a.summary.BatchErrors...)
	s.ErrorSamples = append([]RowReport(nil), a.summary.ErrorSamples...)
	s.InitialRows = append([]RowReport(nil), a.summary.InitialRows...)
	s.DuplicateSamples = append([]DuplicateSample(nil), a.summary.DuplicateSamples...)
	return s
}
