// internal/browser/session.go
package browser

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Session is one running browser with a single tab.
type Session struct {
	id     string
	spec   LaunchSpec
	ctx    context.Context
	driver Driver
	logger *zap.Logger

	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// NewSession wraps an already started tab. Close calls cancelTab before
// cancelAlloc; either may be nil.
func NewSession(ctx context.Context, id string, spec LaunchSpec, driver Driver, logger *zap.Logger, cancelTab, cancelAlloc context.CancelFunc) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		id:          id,
		spec:        spec,
		ctx:         ctx,
		driver:      driver,
		logger:      logger,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
	}
}

// ID returns the unique identifier for the session.
func (s *Session) ID() string { return s.id }

// Spec reports how the browser was actually launched.
func (s *Session) Spec() LaunchSpec { return s.spec }

// Context returns the tab context. Driver calls must use it or a child of it.
func (s *Session) Context() context.Context {
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

// Driver returns the driver bound to the session's tab.
func (s *Session) Driver() Driver { return s.driver }

// Close shuts the tab and the browser process. It is safe to call more than once.
func (s *Session) Close() {
	start := time.Now()
	if s.cancelTab != nil {
		s.cancelTab()
		s.cancelTab = nil
	}
	if s.cancelAlloc != nil {
		// Blocks until the process has exited and any temporary profile is removed.
		s.cancelAlloc()
		s.cancelAlloc = nil
	}
	if s.logger == nil {
		return
	}
	s.logger.Debug("Browser session closed", zap.String("session_id", s.id), zap.Duration("took", time.Since(start)))
}
