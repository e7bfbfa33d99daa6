// internal/browser/launcher.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/igcomment/internal/browser/stealth"
	"github.com/xkilldash9x/igcomment/internal/config"
	"github.com/xkilldash9x/igcomment/internal/humanoid"
)

// ErrLaunchFailed is returned when no launch attempt produced a usable browser.
var ErrLaunchFailed = errors.New("browser could not be launched")

const (
	msgRetryVisible   = "Chrome failed to start headless; retrying with a visible browser window."
	msgRetryNoProfile = "Chrome failed to start with the persistent profile; retrying without it."
)

// Guidance is printed when every launch attempt has failed.
const Guidance = `Chrome could not be started. Things to check:
  - Chrome or Chromium is installed (set browser.exec_path if it is not on PATH).
  - No other Chrome instance is using the same CHROME_USER_DATA_DIR.
  - Set CHROME_USER_DATA_DIR=none to run without a persistent profile.
  - On a server without a display, keep CHROME_HEADLESS=true.`

// bootFailureMarkers identify errors from a browser that never came up, as
// opposed to one that started and then misbehaved.
var bootFailureMarkers = []string{
	"chrome failed to start",
	"devtoolsactiveport",
	"crashed",
	"websocket url timeout",
}

// Attempt is one step of the launch fallback chain.
type Attempt struct {
	Spec LaunchSpec
	// Message is printed before the attempt runs. Empty for the first attempt.
	Message string
}

// LaunchPlan returns the ordered launch attempts for the requested settings.
func LaunchPlan(requested LaunchSpec) []Attempt {
	plan := []Attempt{{Spec: requested}}
	if requested.Headless {
		plan = append(plan, Attempt{
			Spec:    LaunchSpec{Headless: false, UserDataDir: requested.UserDataDir},
			Message: msgRetryVisible,
		})
	}
	if requested.UserDataDir != "" {
		plan = append(plan, Attempt{
			Spec:    LaunchSpec{Headless: false},
			Message: msgRetryNoProfile,
		})
	}
	return plan
}

// IsBootFailure reports whether err means the browser process never became usable.
func IsBootFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range bootFailureMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// StartFunc starts one browser for spec.
type StartFunc func(ctx context.Context, spec LaunchSpec) (*Session, error)

// Launcher runs the launch fallback chain.
type Launcher struct {
	cfg    config.BrowserConfig
	logger *zap.Logger
	out    io.Writer
	start  StartFunc
}

// LauncherOption configures a Launcher.
type LauncherOption func(*Launcher)

// WithStartFunc replaces the Chrome starter, mainly for tests.
func WithStartFunc(fn StartFunc) LauncherOption {
	return func(l *Launcher) { l.start = fn }
}

// NewLauncher creates a Launcher. Fallback messages and guidance go to out.
func NewLauncher(cfg config.BrowserConfig, logger *zap.Logger, out io.Writer, opts ...LauncherOption) *Launcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	l := &Launcher{
		cfg:    cfg,
		logger: logger.Named("launcher"),
		out:    out,
	}
	l.start = l.startChrome
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Launch starts a browser for requested, falling back through LaunchPlan on
// boot failures. Any other error ends the chain immediately.
func (l *Launcher) Launch(ctx context.Context, requested LaunchSpec) (*Session, error) {
	var lastErr error
	for i, attempt := range LaunchPlan(requested) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if attempt.Message != "" {
			fmt.Fprintln(l.out, attempt.Message)
		}

		l.logger.Info("Launching browser",
			zap.Int("attempt", i+1),
			zap.Bool("headless", attempt.Spec.Headless),
			zap.Bool("persistent_profile", attempt.Spec.UserDataDir != ""),
		)

		session, err := l.start(ctx, attempt.Spec)
		if err == nil {
			l.logger.Info("Browser launched successfully and is responsive.", zap.String("session_id", session.ID()))
			return session, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !IsBootFailure(err) {
			l.logger.Error("Browser launch failed", zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrLaunchFailed, err)
		}
		l.logger.Warn("Browser failed to boot", zap.Int("attempt", i+1), zap.Error(err))
	}

	fmt.Fprintln(l.out, Guidance)
	return nil, fmt.Errorf("%w: %w", ErrLaunchFailed, lastErr)
}

// startChrome allocates a Chrome process for spec and verifies it responds.
func (l *Launcher) startChrome(ctx context.Context, spec LaunchSpec) (*Session, error) {
	opts := AllocatorOptions(spec, l.cfg)
	opts = append(opts, chromedp.WSURLReadTimeout(l.cfg.LaunchTimeout))
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)

	ctxOpts := []chromedp.ContextOption{
		chromedp.WithLogf(l.logger.Sugar().Debugf),
		chromedp.WithErrorf(l.logger.Sugar().Debugf),
	}
	if l.cfg.Debug {
		ctxOpts = append(ctxOpts, chromedp.WithDebugf(l.logger.Sugar().Debugf))
	}
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, ctxOpts...)

	fail := func(err error) (*Session, error) {
		cancelTab()
		cancelAlloc()
		return nil, err
	}

	// The first Run allocates the browser, so it must not carry a deadline
	// that would later tear the process down.
	if err := chromedp.Run(tabCtx); err != nil {
		return fail(fmt.Errorf("failed to allocate browser: %w", err))
	}

	if l.cfg.Stealth {
		if err := chromedp.Run(tabCtx, stealth.Apply(stealth.DefaultPersona, l.logger)); err != nil {
			return fail(fmt.Errorf("failed to apply stealth persona: %w", err))
		}
	}

	verifyCtx, cancelVerify := context.WithTimeout(tabCtx, l.cfg.LaunchTimeout)
	defer cancelVerify()
	if err := chromedp.Run(verifyCtx, chromedp.Navigate("about:blank")); err != nil {
		return fail(fmt.Errorf("browser failed to start or respond: %w", err))
	}

	var typist *humanoid.Humanoid
	if l.cfg.Humanoid.Enabled {
		typist = humanoid.New(l.cfg.Humanoid, l.logger, nil)
	}

	id := uuid.NewString()
	return NewSession(tabCtx, id, spec, NewCDPDriver(typist), l.logger.With(zap.String("session_id", id)), cancelTab, cancelAlloc), nil
}
