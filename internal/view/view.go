// Package view implements the transactions dashboard view: one load per
// mount, a single state commit, and rendering as a pure function of state.
package view

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"sync"
	"time"

	"gofinances/internal/api"
	"gofinances/internal/core"
	"gofinances/internal/log"
)

// Templates executed by the render functions.
const (
	TemplateName     = "transactions_view"
	PageTemplateName = "dashboard_page"
)

var (
	ErrAlreadyMounted = errors.New("view already mounted")
	ErrNotMounted     = errors.New("view not mounted")
)

// Phase describes where the view is in its lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Result is the outcome of one load: either a dashboard or an error.
type Result struct {
	Dashboard core.Dashboard
	Err       error
}

// OK reports whether the load succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// State is what the view renders.
type State struct {
	Phase     Phase
	Dashboard core.Dashboard
	Err       error
	LoadedAt  time.Time
}

// Load fetches and transforms the data set. It never panics on bad input;
// every failure is returned in the Result.
func Load(ctx context.Context, reader api.TransactionsReader, f *core.Formatter) Result {
	resp, err := reader.Transactions(ctx)
	if err != nil {
		return Result{Err: fmt.Errorf("fetch transactions: %w", err)}
	}
	d, err := core.Present(resp, f)
	if err != nil {
		return Result{Err: fmt.Errorf("format transactions: %w", err)}
	}
	return Result{Dashboard: d}
}

// TransactionsView owns the state of one dashboard screen.
type TransactionsView struct {
	reader    api.TransactionsReader
	formatter *core.Formatter
	logger    *log.Logger
	now       func() time.Time

	mu         sync.Mutex
	state      State
	mounted    bool
	generation uint64
	fetches    int
}

// New returns an unmounted view.
func New(reader api.TransactionsReader, formatter *core.Formatter, logger *log.Logger) *TransactionsView {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &TransactionsView{
		reader:    reader,
		formatter: formatter,
		logger:    logger.WithComponent(log.ComponentView),
		now:       time.Now,
	}
}

// Mount triggers exactly one load and commits its result. The commit is
// dropped when the view was unmounted, or remounted, or ctx was cancelled
// while the request was in flight. Mount returns the load error, which is
// also kept in the state for rendering.
func (v *TransactionsView) Mount(ctx context.Context) error {
	v.mu.Lock()
	if v.mounted {
		v.mu.Unlock()
		return ErrAlreadyMounted
	}
	v.mounted = true
	v.generation++
	gen := v.generation
	v.fetches++
	v.state = State{Phase: PhaseLoading}
	v.mu.Unlock()

	res := Load(ctx, v.reader, v.formatter)

	if !v.commit(ctx, gen, res) {
		v.logger.DebugContext(ctx, "Discarded load result for dead view",
			log.FieldGeneration, gen,
			log.FieldOperation, log.OpCommit)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrNotMounted
	}

	if res.Err != nil {
		log.LogError(ctx, v.logger, "Transactions load failed", res.Err, ErrorType(res.Err), log.OpLoad)
		return res.Err
	}
	b := res.Dashboard.Balance
	v.logger.InfoContext(ctx, "Transactions loaded", log.NewFields().
		WithOperation(log.OpLoad).
		WithCount(len(res.Dashboard.Transactions)).
		ToSlice()...)
	v.logger.DebugContext(ctx, "Formatted balance", "income", b.Income, "outcome", b.Outcome, "total", b.Total)
	return nil
}

// commit replaces the state in one assignment if gen is still live.
func (v *TransactionsView) commit(ctx context.Context, gen uint64, res Result) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted || gen != v.generation || ctx.Err() != nil {
		return false
	}
	next := State{LoadedAt: v.now()}
	if res.Err != nil {
		next.Phase = PhaseFailed
		next.Err = res.Err
	} else {
		next.Phase = PhaseReady
		next.Dashboard = res.Dashboard
	}
	v.state = next
	return true
}

// Unmount ends the view's lifetime; pending loads will not commit.
func (v *TransactionsView) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mounted = false
}

// Mounted reports whether the view is live.
func (v *TransactionsView) Mounted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mounted
}

// State returns a snapshot of the current state.
func (v *TransactionsView) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.state
	s.Dashboard.Transactions = append([]core.DisplayTransaction(nil), v.state.Dashboard.Transactions...)
	return s
}

// Fetches returns how many loads this view has issued.
func (v *TransactionsView) Fetches() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fetches
}

// Render executes the view fragment over the current state.
func (v *TransactionsView) Render(w io.Writer, t *template.Template) error {
	return Render(w, t, v.State())
}

// RenderPage executes the full page, header included.
func (v *TransactionsView) RenderPage(w io.Writer, t *template.Template) error {
	return RenderPage(w, t, v.State())
}

// Render is the pure rendering step for the view fragment.
func Render(w io.Writer, t *template.Template, s State) error {
	return execute(w, t, TemplateName, s)
}

// RenderPage is the pure rendering step for the full page.
func RenderPage(w io.Writer, t *template.Template, s State) error {
	return execute(w, t, PageTemplateName, s)
}

func execute(w io.Writer, t *template.Template, name string, s State) error {
	if t == nil {
		return errors.New("templates not loaded")
	}
	if err := t.ExecuteTemplate(w, name, NewModel(s)); err != nil {
		return fmt.Errorf("execute %s: %w", name, err)
	}
	return nil
}
