package humanoid

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Common English n-grams are typed faster than arbitrary pairs.
var commonNgrams = map[string]bool{
	"th": true, "he": true, "in": true, "er": true, "an": true, "re": true,
	"es": true, "on": true, "st": true, "nt": true,
	"the": true, "and": true, "ing": true, "ion": true, "tio": true,
}

// Type sends text to selector one rune at a time, with an inter-key pause
// before each rune and a hold time after it.
func (h *Humanoid) Type(ctx context.Context, exec Executor, selector, text string) error {
	runes := []rune(text)
	h.logger.Debug("Typing", zap.Int("runes", len(runes)))

	for i, r := range runes {
		if i > 0 {
			if err := exec.Sleep(ctx, h.keyPause(runes, i)); err != nil {
				return err
			}
		}
		if err := exec.SendKeys(ctx, selector, string(r)); err != nil {
			return fmt.Errorf("humanoid: failed to send key %d of %d: %w", i+1, len(runes), err)
		}
		if err := exec.Sleep(ctx, h.keyHoldDuration()); err != nil {
			return err
		}
	}
	return nil
}

// keyHoldDuration is how long a key stays down, never below KeyHoldMinMs.
func (h *Humanoid) keyHoldDuration() time.Duration {
	delay := h.normal(h.cfg.KeyHoldMeanMs, h.cfg.KeyHoldStdDevMs)
	delay = math.Max(delay, h.cfg.KeyHoldMinMs)
	return time.Duration(delay * float64(time.Millisecond))
}

// keyPause is the flight time between the previous key and runes[index].
func (h *Humanoid) keyPause(runes []rune, index int) time.Duration {
	mean, stdDev, minDelay := 70.0, 28.0, 35.0
	factor := ngramFactor(runes, index)

	delay := h.normal(mean*factor, stdDev)
	delay = math.Max(delay, minDelay*factor)
	return time.Duration(delay * float64(time.Millisecond))
}

// ngramFactor speeds up the pause when runes[index] completes a common
// trigram (0.55) or digram (0.7).
func ngramFactor(runes []rune, index int) float64 {
	if index <= 0 || index >= len(runes) {
		return 1.0
	}
	if index >= 2 && commonNgrams[strings.ToLower(string(runes[index-2:index+1]))] {
		return 0.55
	}
	if commonNgrams[strings.ToLower(string(runes[index-1:index+1]))] {
		return 0.7
	}
	return 1.0
}
