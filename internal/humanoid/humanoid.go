// Package humanoid paces keyboard input the way a person types, so that
// credentials and comments do not arrive as a single synthetic burst.
package humanoid

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/igcomment/internal/config"
)

// Executor is the browser surface the typist drives.
type Executor interface {
	// SendKeys delivers keys to the element matched by selector.
	SendKeys(ctx context.Context, selector, keys string) error
	// Sleep pauses execution, respecting context cancellation.
	Sleep(ctx context.Context, d time.Duration) error
}

// Humanoid holds the timing model and its random source.
type Humanoid struct {
	cfg    config.HumanoidConfig
	logger *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Humanoid. A nil rng is replaced with a time-seeded one.
func New(cfg config.HumanoidConfig, logger *zap.Logger, rng *rand.Rand) *Humanoid {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Humanoid{
		cfg:    cfg,
		logger: logger.Named("humanoid"),
		rng:    rng,
	}
}

// normal draws from N(mean, stdDev) under the lock.
func (h *Humanoid) normal(mean, stdDev float64) float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rng.NormFloat64()*stdDev + mean
}
