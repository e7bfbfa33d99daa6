package browser

import (
	"testing"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/igcomment/internal/config"
)

func TestFlags(t *testing.T) {
	cfg := config.NewDefaultConfig().Browser()

	t.Run("Headless with profile", func(t *testing.T) {
		flags := Flags(LaunchSpec{Headless: true, UserDataDir: "/tmp/profile"}, cfg)

		assert.Equal(t, "new", flags["headless"])
		assert.Equal(t, false, flags["enable-automation"])
		assert.Equal(t, "AutomationControlled", flags["disable-blink-features"])
		assert.Equal(t, "1920,1080", flags["window-size"])
		assert.Equal(t, true, flags["disable-gpu"])
		assert.Equal(t, true, flags["no-sandbox"])
		assert.Equal(t, true, flags["disable-dev-shm-usage"])
		assert.Equal(t, "/tmp/profile", flags["user-data-dir"])
		assert.NotContains(t, flags, "hide-scrollbars")
	})

	t.Run("Visible without profile", func(t *testing.T) {
		flags := Flags(LaunchSpec{Headless: false}, cfg)

		assert.Equal(t, false, flags["headless"])
		assert.Equal(t, false, flags["hide-scrollbars"])
		assert.Equal(t, false, flags["mute-audio"])
		assert.NotContains(t, flags, "user-data-dir")
	})

	t.Run("Config args and window size", func(t *testing.T) {
		custom := cfg
		custom.WindowWidth, custom.WindowHeight = 1280, 720
		custom.Args = []string{"--lang=en-US", "disable-extensions", "--"}

		flags := Flags(LaunchSpec{}, custom)

		assert.Equal(t, "1280,720", flags["window-size"])
		assert.Equal(t, "en-US", flags["lang"])
		assert.Equal(t, true, flags["disable-extensions"])
		assert.NotContains(t, flags, "")
	})

	t.Run("Zero window size falls back to default", func(t *testing.T) {
		flags := Flags(LaunchSpec{}, config.BrowserConfig{})
		assert.Equal(t, "1920,1080", flags["window-size"])
	})
}

func TestAllocatorOptions(t *testing.T) {
	cfg := config.NewDefaultConfig().Browser()
	spec := LaunchSpec{Headless: true, UserDataDir: "/tmp/profile"}

	opts := AllocatorOptions(spec, cfg)
	base := len(chromedp.DefaultExecAllocatorOptions) + len(Flags(spec, cfg))
	assert.Len(t, opts, base)

	cfg.ExecPath = "/usr/bin/chromium"
	assert.Len(t, AllocatorOptions(spec, cfg), base+1, "exec path adds one option")
}
