// internal/browser/options.go
package browser

import (
	"sort"
	"strconv"
	"strings"

	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/igcomment/internal/config"
)

// LaunchSpec is the per-attempt part of a browser launch.
type LaunchSpec struct {
	Headless bool
	// UserDataDir is empty for a temporary profile.
	UserDataDir string
}

// Flags returns the Chrome command-line flags for a launch attempt, keyed by
// flag name without the leading "--". A false value removes a flag that the
// chromedp defaults would otherwise set.
func Flags(spec LaunchSpec, cfg config.BrowserConfig) map[string]interface{} {
	width, height := cfg.WindowWidth, cfg.WindowHeight
	if width <= 0 || height <= 0 {
		width, height = 1920, 1080
	}

	flags := map[string]interface{}{
		"enable-automation":      false,
		"disable-gpu":            true,
		"window-size":            formatSize(width, height),
		"no-sandbox":             true,
		"disable-dev-shm-usage":  true,
		"disable-blink-features": "AutomationControlled",
	}

	if spec.Headless {
		flags["headless"] = "new"
	} else {
		flags["headless"] = false
		flags["hide-scrollbars"] = false
		flags["mute-audio"] = false
	}

	if spec.UserDataDir != "" {
		flags["user-data-dir"] = spec.UserDataDir
	}

	// Extra flags from the config file, with or without a leading "--".
	for _, arg := range cfg.Args {
		parts := strings.SplitN(arg, "=", 2)
		name := strings.TrimPrefix(parts[0], "--")
		if name == "" {
			continue
		}
		if len(parts) == 2 {
			flags[name] = parts[1]
		} else {
			flags[name] = true
		}
	}
	return flags
}

// AllocatorOptions translates a launch attempt and the browser config into
// chromedp allocator options, layered over chromedp's defaults.
func AllocatorOptions(spec LaunchSpec, cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)

	flags := Flags(spec, cfg)
	names := make([]string, 0, len(flags))
	for name := range flags {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		opts = append(opts, chromedp.Flag(name, flags[name]))
	}

	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	return opts
}

func formatSize(width, height int) string {
	return strconv.Itoa(width) + "," + strconv.Itoa(height)
}
