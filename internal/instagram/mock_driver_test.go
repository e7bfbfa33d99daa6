package instagram

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xkilldash9x/igcomment/internal/browser"
)

// mockDriver records every call as "Method arg" and answers from canned data.
type mockDriver struct {
	mu sync.Mutex

	calls    []string
	location string
	counts   map[string]int
	// errs is keyed by the recorded call, e.g. "Click main".
	errs map[string]error
	// blocked calls hang until their context is done, like a chromedp query
	// for a node that never renders.
	blocked   map[string]bool
	dismissed int
}

var _ browser.Driver = (*mockDriver)(nil)

func newMockDriver(location string) *mockDriver {
	return &mockDriver{
		location: location,
		counts:   map[string]int{},
		errs:     map[string]error{},
		blocked:  map[string]bool{},
	}
}

func (m *mockDriver) record(call string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
	return m.errs[call]
}

// recordBlocking records call and, when it is blocked, waits for ctx.
func (m *mockDriver) recordBlocking(ctx context.Context, call string) error {
	if err := m.record(call); err != nil {
		return err
	}
	m.mu.Lock()
	block := m.blocked[call]
	m.mu.Unlock()
	if !block {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockDriver) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockDriver) Navigate(_ context.Context, url string) error {
	return m.record("Navigate " + url)
}

func (m *mockDriver) Location(_ context.Context) (string, error) {
	return m.location, m.record("Location")
}

func (m *mockDriver) Count(_ context.Context, selector string) (int, error) {
	err := m.record("Count " + selector)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[selector], err
}

func (m *mockDriver) WaitReady(_ context.Context, selector string) error {
	return m.record("WaitReady " + selector)
}

func (m *mockDriver) WaitVisible(_ context.Context, selector string) error {
	return m.record("WaitVisible " + selector)
}

func (m *mockDriver) Clear(ctx context.Context, selector string) error {
	return m.recordBlocking(ctx, "Clear "+selector)
}

func (m *mockDriver) Click(_ context.Context, selector string) error {
	return m.record("Click " + selector)
}

func (m *mockDriver) ScrollIntoView(_ context.Context, selector string) error {
	return m.record("ScrollIntoView " + selector)
}

func (m *mockDriver) Type(ctx context.Context, selector, text string) error {
	return m.recordBlocking(ctx, fmt.Sprintf("Type %s %s", selector, text))
}

func (m *mockDriver) PressEnter(ctx context.Context, selector string) error {
	return m.recordBlocking(ctx, "PressEnter "+selector)
}

func (m *mockDriver) Evaluate(_ context.Context, script string, res interface{}) error {
	name := "script"
	switch script {
	case dismissScript:
		name = "dismiss"
	case fmt.Sprintf(scrollScript, 400):
		name = "scroll"
	}
	if err := m.record("Evaluate " + name); err != nil {
		return err
	}
	switch out := res.(type) {
	case *int:
		*out = m.dismissed
	case *bool:
		*out = true
	}
	return nil
}

// Sleep records the duration and yields briefly so polling loops observe
// their deadlines without burning the real wait time.
func (m *mockDriver) Sleep(ctx context.Context, d time.Duration) error {
	if err := m.record("Sleep " + d.String()); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Millisecond):
		return ctx.Err()
	}
}
