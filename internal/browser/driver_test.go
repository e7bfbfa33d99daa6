package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/igcomment/internal/config"
)

const testPage = `<!doctype html>
<html><body>
<main>
  <input id="name" value="prefilled">
  <ul><li>a</li><li>b</li><li>c</li></ul>
  <button id="go" onclick="document.body.dataset.clicked='yes'">Go</button>
</main>
</body></html>`

// requireChrome skips unless browser integration tests were requested and a
// Chrome binary is available.
func requireChrome(t *testing.T) {
	t.Helper()
	if os.Getenv("IGCOMMENT_CHROME_TESTS") == "" {
		t.Skip("set IGCOMMENT_CHROME_TESTS=1 to run browser integration tests")
	}
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser"} {
		if _, err := exec.LookPath(name); err == nil {
			return
		}
	}
	t.Skip("no Chrome or Chromium binary on PATH")
}

func TestCDPDriverIntegration(t *testing.T) {
	requireChrome(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testPage)
	}))
	defer server.Close()

	cfg := config.NewDefaultConfig().Browser()
	cfg.Humanoid.Enabled = false
	launcher := NewLauncher(cfg, zaptest.NewLogger(t), nil)

	session, err := launcher.Launch(context.Background(), LaunchSpec{Headless: true})
	require.NoError(t, err)
	defer session.Close()

	ctx, cancel := context.WithTimeout(session.Context(), 30*time.Second)
	defer cancel()
	d := session.Driver()

	require.NoError(t, d.Navigate(ctx, server.URL))
	require.NoError(t, d.WaitReady(ctx, "main"))

	loc, err := d.Location(ctx)
	require.NoError(t, err)
	assert.Contains(t, loc, server.URL)

	n, err := d.Count(ctx, "li")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = d.Count(ctx, "article")
	require.NoError(t, err)
	assert.Zero(t, n, "Count must not wait for missing elements")

	require.NoError(t, d.Clear(ctx, "#name"))
	require.NoError(t, d.Type(ctx, "#name", "hello"))
	var value string
	require.NoError(t, d.Evaluate(ctx, `document.querySelector('#name').value`, &value))
	assert.Equal(t, "hello", value)

	require.NoError(t, d.ScrollIntoView(ctx, "#go"))
	require.NoError(t, d.WaitVisible(ctx, "#go"))
	require.NoError(t, d.Click(ctx, "#go"))
	var clicked string
	require.NoError(t, d.Evaluate(ctx, `document.body.dataset.clicked || ''`, &clicked))
	assert.Equal(t, "yes", clicked)

	var webdriver bool
	require.NoError(t, d.Evaluate(ctx, `navigator.webdriver === true`, &webdriver))
	assert.False(t, webdriver, "stealth script hides navigator.webdriver")
}
