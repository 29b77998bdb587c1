package core

// processor.go implements the streaming table processor.
//
// The processor reads the header when it is created, reconciles it against
// the template and then yields one Outcome per non-empty data row, in file
// order, as the caller pulls them. Memory use does not grow with the number
// of rows. The sequence can be consumed once; the caller must reopen the
// source to read it again.
//
// Time is checked between rows. Once the budget has passed the processor
// stops reading and marks the summary as timed out; a single slow row is
// never interrupted.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/recipientcsv/internal/columns"
	"github.com/JonMunkholm/recipientcsv/internal/recipient"
)

// DefaultMaxRows is the largest table that is validated row by row.
const DefaultMaxRows = 100_000

// DefaultChunkSize is how many rows a parallel processor reads between
// validation rounds.
const DefaultChunkSize = 256

var (
	// ErrNoHeader is returned when the source has no header record.
	ErrNoHeader = errors.New("file has no header row")

	// ErrExhausted is reported by Err when a consumed sequence is iterated
	// again.
	ErrExhausted = errors.New("rows already consumed, reopen the source to read them again")
)

// Observer is notified as a batch is processed. Calls come from the
// goroutine that pulls rows.
type Observer interface {
	RowProcessed(ch Channel, o *Outcome)
	BatchFinished(s *Summary)
}

// NoBudget lets a Processor read for as long as the table lasts.
const NoBudget time.Duration = -1

// Options configures a Processor.
type Options struct {
	Template  *Template
	Policy    Policy
	AllowList *AllowList // nil allows every recipient

	// Budget bounds the wall-clock time spent reading rows, measured from
	// the first pull. A zero budget is already spent, so no rows are read.
	// Use NoBudget for no limit.
	Budget time.Duration

	MaxRows           int // 0 uses DefaultMaxRows
	RemainingMessages int // 0 means no quota
	MaxErrorSamples   int
	MaxInitialRows    int

	// Workers above 1 validate rows in parallel chunks. Output order is
	// unchanged.
	Workers   int
	ChunkSize int

	BatchID  uuid.UUID // zero generates one
	Clock    func() time.Time
	Observer Observer
	Logger   *slog.Logger
}

// Processor streams outcomes for one table. It is not safe for concurrent
// use.
type Processor struct {
	src       Source
	opts      Options
	validator *rowValidator
	agg       *Aggregator
	dups      *duplicateTracker
	log       *slog.Logger

	records int // records read, header included
	rows    int // non-empty data rows read

	started  time.Time
	pending  []*Outcome
	err      error
	done     bool
	finished bool
	timedOut bool
	ranged   bool
	reranged bool
}

// NewProcessor reads the header from src and prepares to stream rows.
func NewProcessor(src Source, opts Options) (*Processor, error) {
	if opts.Template == nil {
		return nil, errors.New("processor: template is required")
	}
	if err := opts.Template.Validate(); err != nil {
		return nil, fmt.Errorf("processor: %w", err)
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = DefaultMaxRows
	}
	if opts.MaxErrorSamples <= 0 {
		opts.MaxErrorSamples = DefaultMaxErrorSamples
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.BatchID == uuid.Nil {
		opts.BatchID = uuid.New()
	}

	header, err := src.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = append([]string(nil), header...)

	idx := columns.NewIndex(header)
	schema, rec := Reconcile(opts.Template, idx)

	p := &Processor{
		src:  src,
		opts: opts,
		validator: &rowValidator{
			template: opts.Template,
			schema:   schema,
			rec:      rec,
			policy:   opts.Policy,
		},
		agg:     NewAggregator(opts.BatchID, opts.Template.Channel, opts.MaxErrorSamples, opts.MaxInitialRows),
		dups:    newDuplicateTracker(opts.MaxErrorSamples),
		log:     opts.Logger.With("batch_id", opts.BatchID.String(), "channel", string(opts.Template.Channel)),
		records: 1,
	}
	p.agg.summary.Headers = header
	p.agg.summary.Reconciliation = rec
	for _, e := range rec.Errors() {
		p.agg.AddBatchError(e)
	}

	p.log.Info("batch started",
		"columns", len(header),
		"missing_required", len(rec.MissingRequired),
		"workers", opts.Workers,
	)

	if rec.MissingContactColumn {
		p.log.Warn("batch has no recipient column")
		p.finish()
	}
	return p, nil
}

// Reconciliation returns the header check made when the processor was
// created.
func (p *Processor) Reconciliation() Reconciliation {
	return p.validator.rec
}

// Schema returns the column schema for the table.
func (p *Processor) Schema() *Schema {
	return p.validator.schema
}

// Next returns the next outcome. It returns false when the rows are
// exhausted, the budget has run out or reading failed; check Err to tell
// them apart.
func (p *Processor) Next() (*Outcome, bool) {
	for len(p.pending) == 0 {
		if p.done {
			return nil, false
		}
		if p.opts.Workers > 1 {
			p.fillParallel()
		} else {
			p.fillOne()
		}
	}
	o := p.pending[0]
	p.pending[0] = nil
	p.pending = p.pending[1:]
	return o, true
}

// Err returns the read failure that stopped iteration, or ErrExhausted
// after a consumed sequence was ranged over again.
func (p *Processor) Err() error {
	if p.err == nil && p.reranged {
		return ErrExhausted
	}
	return p.err
}

// Exhausted reports whether the sequence has been consumed.
func (p *Processor) Exhausted() bool {
	return p.done && len(p.pending) == 0
}

// Outcomes returns the outcomes as a single-use sequence. Ranging over it a
// second time yields nothing and sets Err to ErrExhausted.
func (p *Processor) Outcomes() iter.Seq[*Outcome] {
	return func(yield func(*Outcome) bool) {
		if p.ranged && p.Exhausted() {
			p.reranged = true
			return
		}
		p.ranged = true
		for {
			o, ok := p.Next()
			if !ok || !yield(o) {
				return
			}
		}
	}
}

// Run consumes every remaining row and returns the summary. It stops early
// with the context's error when ctx is cancelled.
func (p *Processor) Run(ctx context.Context) (Summary, error) {
	for {
		if err := ctx.Err(); err != nil {
			return p.Summary(), err
		}
		if _, ok := p.Next(); !ok {
			break
		}
	}
	return p.Summary(), p.Err()
}

// Summary returns the batch summary so far. It is final once Next has
// returned false.
func (p *Processor) Summary() Summary {
	s := p.agg.Summary()
	s.DuplicateRecipients = p.dups.repeats
	s.DuplicateSamples = append([]DuplicateSample(nil), p.dups.samples...)
	s.TooManyRows = s.TotalRows > p.opts.MaxRows
	s.MoreRowsThanCanSend = p.opts.RemainingMessages > 0 && s.TotalRows > p.opts.RemainingMessages
	s.TimedOut = p.timedOut
	s.Complete = p.done && !p.timedOut && p.err == nil
	if !p.started.IsZero() {
		s.Elapsed = p.opts.Clock().Sub(p.started)
	}
	return s
}

// pull reads the next non-empty row. It returns nil when reading should
// stop.
func (p *Processor) pull() *Row {
	for {
		if p.started.IsZero() {
			p.started = p.opts.Clock()
		}
		if p.overBudget() {
			p.timeout()
			return nil
		}

		record, err := p.src.Read()
		if errors.Is(err, io.EOF) {
			p.finish()
			return nil
		}
		p.records++
		if err != nil {
			p.err = fmt.Errorf("read row %d: %w", p.records, err)
			p.log.Error("batch read failed", "error", err, "record", p.records)
			p.finish()
			return nil
		}

		row := newRow(p.validator.schema, record, p.rows+1, p.records)
		if row == nil {
			continue
		}
		p.rows++
		if p.rows > p.opts.MaxRows {
			p.agg.AddSkipped()
			continue
		}
		return row
	}
}

func (p *Processor) overBudget() bool {
	if p.opts.Budget < 0 {
		return false
	}
	return p.opts.Budget == 0 || p.opts.Clock().Sub(p.started) >= p.opts.Budget
}

func (p *Processor) fillOne() {
	row := p.pull()
	if row == nil {
		return
	}
	p.reduce(p.validator.validate(row))
}

func (p *Processor) fillParallel() {
	rows := make([]*Row, 0, p.opts.ChunkSize)
	for len(rows) < p.opts.ChunkSize {
		row := p.pull()
		if row == nil {
			break
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return
	}
	for _, o := range validateParallel(p.validator, rows, p.opts.Workers) {
		p.reduce(o)
	}
}

// reduce applies the cross-row checks in row order and queues the outcome.
func (p *Processor) reduce(o *Outcome) {
	if o.contact != "" && p.validator.schema.Channel != ChannelLetter && !p.opts.AllowList.Allows(o.contact) {
		col := p.validator.schema.Channel.RecipientColumns()[0]
		o.Errors = append(o.Errors, recipient.New(recipient.RowNotOnAllowList).InColumn(o.Row.columnName(col)))
		o.Recipient = nil
	}
	p.dups.observe(o.contact, o.Row.Number)

	p.agg.Add(o)
	if p.opts.Observer != nil {
		p.opts.Observer.RowProcessed(p.validator.schema.Channel, o)
	}
	p.log.Debug("row checked", "row", o.Row.Number, "errors", len(o.Errors))
	p.pending = append(p.pending, o)
}

func (p *Processor) timeout() {
	p.timedOut = true
	p.agg.AddBatchError(recipient.Newf(recipient.ProcessTimedOut, "after %d rows", p.rows))
	p.log.Warn("batch timed out", "rows", p.rows, "budget", p.opts.Budget)
	p.finish()
}

// finish marks the sequence consumed and reports the batch once.
func (p *Processor) finish() {
	p.done = true
	if p.finished {
		return
	}
	p.finished = true

	if p.rows > p.opts.MaxRows {
		p.agg.AddBatchError(&recipient.Error{Kind: recipient.RowTooManyRows, Limit: p.opts.MaxRows, Actual: p.rows})
	}

	s := p.Summary()
	p.log.Info("batch finished",
		"rows", s.TotalRows,
		"valid", s.ValidRows,
		"invalid", s.InvalidRows,
		"timed_out", s.TimedOut,
		"elapsed", s.Elapsed,
	)
	if p.opts.Observer != nil {
		p.opts.Observer.BatchFinished(&s)
	}
}
