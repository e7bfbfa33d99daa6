// Package stealth hides the most obvious automation markers of a
// chromedp-controlled Chrome from the pages it loads.
package stealth

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

//go:embed evasions.js
var evasionsTemplate string

// Persona is the set of browser characteristics presented to pages.
type Persona struct {
	Languages []string
}

// DefaultPersona matches an ordinary English-language desktop install.
var DefaultPersona = Persona{Languages: []string{"en-US", "en"}}

// Script renders the evasion script for p.
func Script(p Persona) string {
	langs := p.Languages
	if langs == nil {
		langs = []string{}
	}
	encoded, err := json.Marshal(langs)
	if err != nil {
		encoded = []byte("[]")
	}
	return strings.Replace(evasionsTemplate, "__LANGUAGES__", string(encoded), 1)
}

// AcceptLanguage builds the Accept-Language header for p, or "" when p has no
// languages.
func AcceptLanguage(p Persona) string {
	if len(p.Languages) == 0 {
		return ""
	}
	parts := []string{p.Languages[0]}
	for i, lang := range p.Languages[1:] {
		q := 0.9 - float64(i)*0.1
		if q < 0.1 {
			q = 0.1
		}
		parts = append(parts, fmt.Sprintf("%s;q=%.1f", lang, q))
	}
	return strings.Join(parts, ",")
}

// Apply returns the CDP actions that install the persona on the current
// target. They must run before the first navigation.
func Apply(p Persona, logger *zap.Logger) chromedp.Tasks {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("Applying browser stealth persona", zap.Strings("languages", p.Languages))

	tasks := chromedp.Tasks{
		// AddScriptToEvaluateOnNewDocument returns an identifier as well as an
		// error, so it needs wrapping to satisfy chromedp.Action.
		chromedp.ActionFunc(func(ctx context.Context) error {
			if _, err := page.AddScriptToEvaluateOnNewDocument(Script(p)).Do(ctx); err != nil {
				return fmt.Errorf("failed to inject evasions script: %w", err)
			}
			return nil
		}),
	}

	if header := AcceptLanguage(p); header != "" {
		tasks = append(tasks, network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": header}))
	}
	return tasks
}
