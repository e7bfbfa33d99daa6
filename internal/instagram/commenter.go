// Package instagram drives the Instagram web UI: log in, open the first post
// of a profile and leave a comment on it.
package instagram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/igcomment/internal/browser"
	"github.com/xkilldash9x/igcomment/internal/config"
	"github.com/xkilldash9x/igcomment/internal/observability"
)

// pollInterval is how often polled conditions are re-checked.
const pollInterval = 250 * time.Millisecond

// Step names as they appear in logs and the report.
const (
	StepLogin         = "login"
	StepOpenFirstPost = "open_first_post"
	StepLeaveComment  = "leave_comment"
)

// Commenter runs the comment flow against a browser.Driver.
type Commenter struct {
	driver  browser.Driver
	cfg     config.AutomationConfig
	logger  *zap.Logger
	limiter *rate.Limiter
}

// NewCommenter creates a Commenter. Page actions are paced to
// cfg.ActionsPerSecond.
func NewCommenter(driver browser.Driver, cfg config.AutomationConfig, logger *zap.Logger) *Commenter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Commenter{
		driver:  driver,
		cfg:     cfg,
		logger:  logger.Named("commenter"),
		limiter: rate.NewLimiter(rate.Limit(cfg.ActionsPerSecond), 1),
	}
}

// Run logs in, opens the first post on the account's profile and comments on
// it. The returned report is complete whether or not err is nil.
func (c *Commenter) Run(ctx context.Context, acct *config.Account) (*Report, error) {
	report := NewReport()
	report.ProfileURL = acct.ProfileURL
	report.CommentLength = len([]rune(acct.Comment))
	report.Headless = acct.Headless

	logger := c.logger.With(zap.String("run_id", report.RunID))
	logger.Info("Starting comment run",
		zap.String("username", acct.Username),
		observability.Secret("password", acct.Password),
		zap.String("profile_url", acct.ProfileURL),
		zap.Int("comment_length", report.CommentLength),
	)

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{StepLogin, func(ctx context.Context) error { return c.Login(ctx, acct.Username, acct.Password) }},
		{StepOpenFirstPost, func(ctx context.Context) error { return c.OpenFirstPost(ctx, acct.ProfileURL) }},
		{StepLeaveComment, func(ctx context.Context) error { return c.LeaveComment(ctx, acct.Comment) }},
	}

	for _, step := range steps {
		started := time.Now()
		err := step.fn(ctx)
		report.AddStep(step.name, started, err)
		if err != nil {
			err = fmt.Errorf("%s: %w", step.name, err)
			report.Finish(err)
			logger.Error("Step failed",
				zap.String("step", step.name),
				zap.String("error_code", string(report.ErrorCode)),
				zap.Error(err),
			)
			return report, err
		}
		logger.Info("Step completed", zap.String("step", step.name), zap.Duration("took", time.Since(started)))
	}

	report.Finish(nil)
	logger.Info("Comment run finished")
	return report, nil
}

// Login opens the login page and submits the credentials unless the browser
// profile is already signed in.
func (c *Commenter) Login(ctx context.Context, username, password string) error {
	if err := c.pace(ctx); err != nil {
		return err
	}
	if err := c.driver.Navigate(ctx, LoginURL); err != nil {
		return fmt.Errorf("failed to open login page: %w", err)
	}

	var onLoginPage bool
	err := c.poll(ctx, c.cfg.PageTimeout, "login page", func(ctx context.Context) (bool, error) {
		loc, err := c.driver.Location(ctx)
		if err != nil {
			return false, err
		}
		if !strings.Contains(loc, loginPathMarker) {
			onLoginPage = false
			return true, nil
		}
		n, err := c.driver.Count(ctx, selUsername)
		if err != nil {
			return false, err
		}
		onLoginPage = n > 0
		return onLoginPage, nil
	})
	if err != nil {
		return err
	}

	if !onLoginPage {
		c.logger.Info("Already authenticated; skipping credential entry.")
		return c.waitForFeed(ctx, false)
	}

	c.logger.Info("Submitting credentials", zap.String("username", username), observability.Secret("password", password))
	err = c.withTimeout(ctx, c.cfg.PageTimeout, func(ctx context.Context) error {
		if err := c.fill(ctx, selUsername, username); err != nil {
			return fmt.Errorf("failed to enter username: %w", err)
		}
		if err := c.fill(ctx, selPassword, password); err != nil {
			return fmt.Errorf("failed to enter password: %w", err)
		}
		if err := c.pace(ctx); err != nil {
			return err
		}
		if err := c.driver.PressEnter(ctx, selPassword); err != nil {
			return fmt.Errorf("failed to submit login form: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return c.waitForFeed(ctx, c.cfg.DismissInterstitials)
}

// waitForFeed waits for the explore link that marks a signed-in page,
// optionally clearing "Not now" dialogs while it waits.
func (c *Commenter) waitForFeed(ctx context.Context, dismiss bool) error {
	return c.poll(ctx, c.cfg.PageTimeout, "signed-in navigation", func(ctx context.Context) (bool, error) {
		if dismiss {
			c.dismissInterstitials(ctx)
		}
		n, err := c.driver.Count(ctx, selExploreLink)
		return n > 0, err
	})
}

// OpenFirstPost opens profileURL and clicks the first post link it can find,
// scrolling down between rounds.
func (c *Commenter) OpenFirstPost(ctx context.Context, profileURL string) error {
	if err := c.pace(ctx); err != nil {
		return err
	}
	if err := c.driver.Navigate(ctx, profileURL); err != nil {
		return fmt.Errorf("failed to open profile: %w", err)
	}
	if err := c.withTimeout(ctx, c.cfg.PageTimeout, func(ctx context.Context) error {
		return c.driver.WaitReady(ctx, selMain)
	}); err != nil {
		return fmt.Errorf("profile page did not load: %w", err)
	}
	if c.cfg.DismissInterstitials {
		c.dismissInterstitials(ctx)
	}

	for round := 1; round <= c.cfg.ScrollRounds; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, sel := range PostSelectors {
			if c.tryOpenPost(ctx, sel) {
				c.logger.Info("Opened first post", zap.String("selector", sel), zap.Int("round", round))
				return nil
			}
		}

		c.logger.Debug("No clickable post yet; scrolling", zap.Int("round", round))
		var ok bool
		if err := c.driver.Evaluate(ctx, fmt.Sprintf(scrollScript, c.cfg.ScrollStep), &ok); err != nil {
			c.logger.Debug("Scroll failed", zap.Error(err))
		}
		if err := c.driver.Sleep(ctx, c.cfg.ScrollPause); err != nil {
			return err
		}
	}
	return ErrNoPosts
}

// tryOpenPost clicks the first match of sel. Any failure means "try the next
// selector", so errors are only logged.
func (c *Commenter) tryOpenPost(ctx context.Context, sel string) bool {
	n, err := c.driver.Count(ctx, sel)
	if err != nil || n == 0 {
		return false
	}
	err = c.withTimeout(ctx, c.cfg.ClickTimeout, func(ctx context.Context) error {
		if err := c.driver.ScrollIntoView(ctx, sel); err != nil {
			return err
		}
		if err := c.driver.WaitVisible(ctx, sel); err != nil {
			return err
		}
		if err := c.pace(ctx); err != nil {
			return err
		}
		return c.driver.Click(ctx, sel)
	})
	if err != nil {
		c.logger.Debug("Post link not clickable", zap.String("selector", sel), zap.Error(err))
		return false
	}
	return true
}

// LeaveComment types text into the open post's comment box and submits it.
func (c *Commenter) LeaveComment(ctx context.Context, text string) error {
	err := c.withTimeout(ctx, c.cfg.PageTimeout, func(ctx context.Context) error {
		if err := c.driver.WaitReady(ctx, selCommentBox); err != nil {
			return fmt.Errorf("comment box did not appear: %w", err)
		}
		if err := c.pace(ctx); err != nil {
			return err
		}
		if err := c.driver.Click(ctx, selCommentBox); err != nil {
			return fmt.Errorf("failed to focus comment box: %w", err)
		}
		// Clicking re-renders the box, so wait for it again.
		if err := c.driver.WaitVisible(ctx, selCommentBox); err != nil {
			return fmt.Errorf("comment box is not usable: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.logger.Info("Typing comment", zap.Int("comment_length", len([]rune(text))))
	if err := c.driver.Type(ctx, selCommentBox, text); err != nil {
		return fmt.Errorf("failed to type comment: %w", err)
	}
	if err := c.pace(ctx); err != nil {
		return err
	}
	if err := c.driver.PressEnter(ctx, selCommentBox); err != nil {
		return fmt.Errorf("failed to submit comment: %w", err)
	}

	// Let the post request finish before the browser is closed.
	return c.driver.Sleep(ctx, c.cfg.SettleDelay)
}

// fill clears selector and types value into it.
func (c *Commenter) fill(ctx context.Context, selector, value string) error {
	if err := c.pace(ctx); err != nil {
		return err
	}
	if err := c.driver.Clear(ctx, selector); err != nil {
		return err
	}
	return c.driver.Type(ctx, selector, value)
}

// dismissInterstitials clicks away "Not now" dialogs. Best effort.
func (c *Commenter) dismissInterstitials(ctx context.Context) {
	var clicked int
	if err := c.driver.Evaluate(ctx, dismissScript, &clicked); err != nil {
		c.logger.Debug("Interstitial dismissal failed", zap.Error(err))
		return
	}
	if clicked > 0 {
		c.logger.Info("Dismissed interstitial dialog", zap.Int("buttons", clicked))
	}
}

// pace blocks until the rate limiter admits the next page action.
func (c *Commenter) pace(ctx context.Context) error {
	return c.limiter.Wait(ctx)
}

// withTimeout runs fn under a child context bounded by d.
func (c *Commenter) withTimeout(ctx context.Context, d time.Duration, fn func(context.Context) error) error {
	tctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return fn(tctx)
}

// poll re-checks cond until it reports true or timeout elapses. Errors from
// cond are treated as "not yet" and the last one is kept for the timeout error.
func (c *Commenter) poll(ctx context.Context, timeout time.Duration, what string, cond func(context.Context) (bool, error)) error {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastErr error
	for {
		done, err := cond(tctx)
		if err == nil && done {
			return nil
		}
		if err != nil {
			lastErr = err
		}

		if err := c.driver.Sleep(tctx, pollInterval); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if lastErr != nil {
				return fmt.Errorf("timed out waiting for %s (last error: %v): %w", what, lastErr, context.DeadlineExceeded)
			}
			return fmt.Errorf("timed out waiting for %s: %w", what, context.DeadlineExceeded)
		}
	}
}
