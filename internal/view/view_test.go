package view

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gofinances/internal/api"
	"gofinances/internal/core"
	"gofinances/internal/log"
	appweb "gofinances/web"
)

type fakeReader struct {
	mu    sync.Mutex
	resp  core.Response
	err   error
	calls int32
	gate  chan struct{}
}

func (f *fakeReader) Transactions(ctx context.Context) (core.Response, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return core.Response{}, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resp, f.err
}

func (f *fakeReader) set(resp core.Response, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resp, f.err = resp, err
}

func quietLogger() *log.Logger {
	return log.New(log.Config{Level: slog.LevelError, Output: io.Discard})
}

func testTemplates(t *testing.T) *template.Template {
	t.Helper()
	tmpl, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	return tmpl
}

func formatter() *core.Formatter {
	return core.MustFormatter(core.DefaultFormatterConfig())
}

func tx(id string, kind core.Kind, value float64, created string) core.RawTransaction {
	return core.RawTransaction{
		ID:        id,
		Title:     "title-" + id,
		Value:     value,
		Type:      kind,
		Category:  core.Category{Title: "cat-" + id},
		CreatedAt: created,
	}
}

func sample() core.Response {
	return core.Response{
		Transactions: []core.RawTransaction{
			tx("t1", core.Income, 5000, "2021-03-15T00:00:00.000Z"),
			tx("t2", core.Outcome, 1500, "2021-03-16T00:00:00.000Z"),
			tx("t3", core.Outcome, 500, "2021-03-17T00:00:00.000Z"),
		},
		Balance: core.Balance{Income: 5000, Outcome: 2000, Total: 3000},
	}
}

// waitForFetch blocks until the reader has been called.
func waitForFetch(t *testing.T, r *fakeReader) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&r.calls) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("fetch never started")
		}
		time.Sleep(time.Millisecond)
	}
}

var rowRe = regexp.MustCompile(`<tr data-id="([^"]+)">`)

func rowIDs(html string) []string {
	var ids []string
	for _, m := range rowRe.FindAllStringSubmatch(html, -1) {
		ids = append(ids, m[1])
	}
	return ids
}

func testIDValue(html, id string) string {
	re := regexp.MustCompile(`data-testid="` + regexp.QuoteMeta(id) + `">([^<]*)</h1>`)
	m := re.FindStringSubmatch(html)
	if m == nil {
		return "<missing>"
	}
	return m[1]
}

func renderString(t *testing.T, v *TransactionsView) string {
	t.Helper()
	var buf bytes.Buffer
	if err := v.Render(&buf, testTemplates(t)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func TestMountRendersRowsInOrder(t *testing.T) {
	reader := &fakeReader{resp: sample()}
	v := New(reader, formatter(), quietLogger())

	if err := v.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if atomic.LoadInt32(&reader.calls) != 1 {
		t.Fatalf("expected one fetch, got %d", reader.calls)
	}

	html := renderString(t, v)
	got := rowIDs(html)
	want := []string{"t1", "t2", "t3"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("row ids = %v, want %v", got, want)
	}
}

func TestValueSignByKind(t *testing.T) {
	reader := &fakeReader{resp: sample()}
	v := New(reader, formatter(), quietLogger())
	if err := v.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	html := renderString(t, v)

	if !strings.Contains(html, `<td class="income">R$ 5.000,00</td>`) {
		t.Fatalf("income cell not rendered unsigned:\n%s", html)
	}
	if !strings.Contains(html, `<td class="outcome">- R$ 1.500,00</td>`) {
		t.Fatalf("outcome cell not rendered with minus sign:\n%s", html)
	}
}

func TestDateCell(t *testing.T) {
	reader := &fakeReader{resp: core.Response{
		Transactions: []core.RawTransaction{tx("d", core.Income, 1, "2021-03-15T00:00:00.000Z")},
	}}
	v := New(reader, formatter(), quietLogger())
	if err := v.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if !strings.Contains(renderString(t, v), "<td>15/03/2021</td>") {
		t.Fatalf("date cell missing")
	}
}

func TestBalanceCardsMapping(t *testing.T) {
	reader := &fakeReader{resp: sample()}
	v := New(reader, formatter(), quietLogger())
	if err := v.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	html := renderString(t, v)
	f := formatter()
	for id, want := range map[string]string{
		TestIDIncome:  f.Currency(5000),
		TestIDOutcome: f.Currency(2000),
		TestIDTotal:   f.Currency(3000),
	} {
		if got := testIDValue(html, id); got != want {
			t.Fatalf("%s = %q, want %q", id, got, want)
		}
	}
}

func TestEmptyResponseStillRendersCards(t *testing.T) {
	reader := &fakeReader{resp: core.Response{Transactions: []core.RawTransaction{}}}
	v := New(reader, formatter(), quietLogger())
	if err := v.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	html := renderString(t, v)
	if n := len(rowIDs(html)); n != 0 {
		t.Fatalf("expected zero rows, got %d", n)
	}
	for _, id := range []string{TestIDIncome, TestIDOutcome, TestIDTotal} {
		if got := testIDValue(html, id); got != "R$ 0,00" {
			t.Fatalf("%s = %q, want R$ 0,00", id, got)
		}
	}
}

func TestRemountReplacesState(t *testing.T) {
	reader := &fakeReader{resp: sample()}
	v := New(reader, formatter(), quietLogger())
	if err := v.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if err := v.Mount(context.Background()); !errors.Is(err, ErrAlreadyMounted) {
		t.Fatalf("expected ErrAlreadyMounted, got %v", err)
	}
	v.Unmount()

	reader.set(core.Response{
		Transactions: []core.RawTransaction{tx("n1", core.Income, 10, "2022-01-01")},
		Balance:      core.Balance{Income: 10, Total: 10},
	}, nil)
	if err := v.Mount(context.Background()); err != nil {
		t.Fatalf("remount: %v", err)
	}
	if atomic.LoadInt32(&reader.calls) != 2 || v.Fetches() != 2 {
		t.Fatalf("expected two fetches in total, got reader=%d view=%d", reader.calls, v.Fetches())
	}
	if ids := rowIDs(renderString(t, v)); len(ids) != 1 || ids[0] != "n1" {
		t.Fatalf("rows accumulated across mounts: %v", ids)
	}
}

func TestLoadFailureRendersErrorState(t *testing.T) {
	reader := &fakeReader{err: api.ErrUnavailable}
	v := New(reader, formatter(), quietLogger())

	err := v.Mount(context.Background())
	if !errors.Is(err, api.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	s := v.State()
	if s.Phase != PhaseFailed || s.Err == nil {
		t.Fatalf("unexpected state: %+v", s)
	}
	html := renderString(t, v)
	if !strings.Contains(html, `data-testid="load-error"`) {
		t.Fatalf("error banner missing")
	}
	if n := len(rowIDs(html)); n != 0 {
		t.Fatalf("expected empty table, got %d rows", n)
	}
	if got := testIDValue(html, TestIDTotal); got != "" {
		t.Fatalf("expected empty total card, got %q", got)
	}
}

func TestFormattingFailureIsAllOrNothing(t *testing.T) {
	resp := sample()
	resp.Transactions[2].CreatedAt = "not a date"
	v := New(&fakeReader{resp: resp}, formatter(), quietLogger())

	if err := v.Mount(context.Background()); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	if s := v.State(); len(s.Dashboard.Transactions) != 0 {
		t.Fatalf("partial state committed: %d rows", len(s.Dashboard.Transactions))
	}
}

func TestUnmountBeforeResponseSkipsCommit(t *testing.T) {
	reader := &fakeReader{resp: sample(), gate: make(chan struct{})}
	v := New(reader, formatter(), quietLogger())

	done := make(chan error, 1)
	go func() { done <- v.Mount(context.Background()) }()

	waitForFetch(t, reader)
	v.Unmount()
	close(reader.gate)

	if err := <-done; !errors.Is(err, ErrNotMounted) {
		t.Fatalf("expected ErrNotMounted, got %v", err)
	}
	if s := v.State(); s.Phase != PhaseLoading || len(s.Dashboard.Transactions) != 0 {
		t.Fatalf("dead view was written: %+v", s)
	}
}

func TestCancelledContextSkipsCommit(t *testing.T) {
	reader := &fakeReader{resp: sample(), gate: make(chan struct{})}
	v := New(reader, formatter(), quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- v.Mount(ctx) }()
	waitForFetch(t, reader)
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if s := v.State(); s.Phase == PhaseReady || s.Phase == PhaseFailed {
		t.Fatalf("cancelled load committed: %v", s.Phase)
	}
}

func TestRenderWithoutTemplates(t *testing.T) {
	if err := Render(io.Discard, nil, State{}); err == nil {
		t.Fatalf("expected error for nil templates")
	}
}

func TestRenderPageIncludesHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderPage(&buf, testTemplates(t), State{}); err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	html := buf.String()
	if !strings.Contains(html, `class="header"`) || !strings.Contains(html, `id="transactions-view"`) {
		t.Fatalf("page missing header or view")
	}
}

func TestUserMessageAndErrorType(t *testing.T) {
	cases := []struct {
		err     error
		errType string
	}{
		{api.ErrUnavailable, log.ErrorTypeNetwork},
		{&api.StatusError{StatusCode: 502}, log.ErrorTypeUpstream},
		{api.ErrMalformed, log.ErrorTypeMalformed},
		{core.ErrInvalidDate, log.ErrorTypeFormat},
		{context.Canceled, log.ErrorTypeCanceled},
		{errors.New("other"), log.ErrorTypeInternal},
	}
	for _, tc := range cases {
		if got := ErrorType(tc.err); got != tc.errType {
			t.Fatalf("ErrorType(%v) = %q, want %q", tc.err, got, tc.errType)
		}
		if UserMessage(tc.err) == "" {
			t.Fatalf("UserMessage(%v) is empty", tc.err)
		}
	}
	if UserMessage(nil) != "" {
		t.Fatalf("UserMessage(nil) should be empty")
	}
}
