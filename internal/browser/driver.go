// internal/browser/driver.go
package browser

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/xkilldash9x/igcomment/internal/humanoid"
)

// Driver is the browser-control surface used by the automation. Every
// selector is a CSS selector and refers to the first matching element.
//
// Contexts passed to a Driver must derive from the owning Session's Context.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	// Location returns the current page URL.
	Location(ctx context.Context) (string, error)
	// Count returns the number of elements matching selector without waiting.
	Count(ctx context.Context, selector string) (int, error)
	WaitReady(ctx context.Context, selector string) error
	WaitVisible(ctx context.Context, selector string) error
	Clear(ctx context.Context, selector string) error
	Click(ctx context.Context, selector string) error
	ScrollIntoView(ctx context.Context, selector string) error
	Type(ctx context.Context, selector, text string) error
	PressEnter(ctx context.Context, selector string) error
	// Evaluate runs script in the page and decodes its result into res
	// (which may be nil).
	Evaluate(ctx context.Context, script string, res interface{}) error
	Sleep(ctx context.Context, d time.Duration) error
}

// CDPDriver implements Driver over chromedp.
type CDPDriver struct {
	// typist is nil when keys are sent in one burst.
	typist *humanoid.Humanoid
}

var _ Driver = (*CDPDriver)(nil)

// NewCDPDriver returns a driver. A non-nil typist paces Type rune by rune.
func NewCDPDriver(typist *humanoid.Humanoid) *CDPDriver {
	return &CDPDriver{typist: typist}
}

func (d *CDPDriver) Navigate(ctx context.Context, url string) error {
	return chromedp.Run(ctx, chromedp.Navigate(url))
}

func (d *CDPDriver) Location(ctx context.Context) (string, error) {
	var loc string
	err := chromedp.Run(ctx, chromedp.Location(&loc))
	return loc, err
}

func (d *CDPDriver) Count(ctx context.Context, selector string) (int, error) {
	var nodes []*cdp.Node
	err := chromedp.Run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	return len(nodes), err
}

func (d *CDPDriver) WaitReady(ctx context.Context, selector string) error {
	return chromedp.Run(ctx, chromedp.WaitReady(selector, chromedp.ByQuery))
}

func (d *CDPDriver) WaitVisible(ctx context.Context, selector string) error {
	return chromedp.Run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (d *CDPDriver) Clear(ctx context.Context, selector string) error {
	return chromedp.Run(ctx, chromedp.SetValue(selector, "", chromedp.ByQuery))
}

func (d *CDPDriver) Click(ctx context.Context, selector string) error {
	return chromedp.Run(ctx, chromedp.Click(selector, chromedp.ByQuery))
}

func (d *CDPDriver) ScrollIntoView(ctx context.Context, selector string) error {
	return chromedp.Run(ctx, chromedp.ScrollIntoView(selector, chromedp.ByQuery))
}

func (d *CDPDriver) Type(ctx context.Context, selector, text string) error {
	if d.typist != nil {
		return d.typist.Type(ctx, d, selector, text)
	}
	return d.SendKeys(ctx, selector, text)
}

// SendKeys delivers keys to selector in one dispatch. It lets the humanoid
// typist drive this driver.
func (d *CDPDriver) SendKeys(ctx context.Context, selector, keys string) error {
	return chromedp.Run(ctx, chromedp.SendKeys(selector, keys, chromedp.ByQuery))
}

func (d *CDPDriver) PressEnter(ctx context.Context, selector string) error {
	return d.SendKeys(ctx, selector, kb.Enter)
}

func (d *CDPDriver) Evaluate(ctx context.Context, script string, res interface{}) error {
	return chromedp.Run(ctx, chromedp.Evaluate(script, res))
}

func (d *CDPDriver) Sleep(ctx context.Context, dur time.Duration) error {
	return chromedp.Sleep(dur).Do(ctx)
}
