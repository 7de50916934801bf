// Package enclave provides the in-process reference implementation of the
// trusted evaluation contract. It runs the same decision logic as the
// authoritative engine, but strictly behind the serialized boundary: the
// provider sees only the JSON payloads it is handed, never the caller's
// live objects.
package enclave

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"veridian-hq/callisto/pkg/decision"
	"veridian-hq/callisto/pkg/hierarchy"
	"veridian-hq/callisto/pkg/tiered"
)

// Config configures a Provider.
type Config struct {
	// InitDelay simulates the cold-start cost of bringing up an isolated
	// runtime. Paid once, on Init or the first Evaluate.
	InitDelay time.Duration

	// Logger receives lifecycle logs. Default: slog.Default.
	Logger *slog.Logger
}

// Provider evaluates decisions behind the serialized trusted boundary.
// Safe for concurrent use after initialization.
type Provider struct {
	mu          sync.Mutex
	initialized bool
	closed      bool
	initDelay   time.Duration
	logger      *slog.Logger
}

// New creates an uninitialized Provider. The first evaluation (or an
// explicit Init) pays the cold-start cost.
func New(cfg Config) *Provider {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		initDelay: cfg.InitDelay,
		logger:    logger,
	}
}

// Init brings the provider up. Idempotent; Evaluate calls it implicitly
// on first use.
func (p *Provider) Init(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initLocked(ctx)
}

func (p *Provider) initLocked(ctx context.Context) error {
	if p.closed {
		return fmt.Errorf("provider is closed")
	}
	if p.initialized {
		return nil
	}
	if p.initDelay > 0 {
		timer := time.NewTimer(p.initDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	p.initialized = true
	p.logger.Info("trusted provider initialized", "cold_start", p.initDelay)
	return nil
}

// Ready reports whether the provider is initialized and not closed.
func (p *Provider) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized && !p.closed
}

// Evaluate deserializes the input triple, runs the decision logic, and
// returns the result string per the trusted contract. Inputs that cannot
// be deserialized or evaluated yield tiered.TrustedResultError; the
// caller falls through to the authoritative tier.
func (p *Provider) Evaluate(ctx context.Context, serializedRequest, serializedPreference, serializedHierarchy []byte) (string, error) {
	p.mu.Lock()
	if err := p.initLocked(ctx); err != nil {
		p.mu.Unlock()
		return "", err
	}
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	var req decision.AccessRequest
	if err := json.Unmarshal(serializedRequest, &req); err != nil {
		p.logger.Debug("trusted boundary rejected request payload", "error", err)
		return tiered.TrustedResultError, nil
	}

	var pref decision.Preference
	if err := json.Unmarshal(serializedPreference, &pref); err != nil {
		p.logger.Debug("trusted boundary rejected preference payload", "error", err)
		return tiered.TrustedResultError, nil
	}

	var wire tiered.SerializedHierarchy
	if err := json.Unmarshal(serializedHierarchy, &wire); err != nil {
		p.logger.Debug("trusted boundary rejected hierarchy payload", "error", err)
		return tiered.TrustedResultError, nil
	}
	h, err := hierarchy.New(wire.Attributes, wire.Purposes)
	if err != nil {
		p.logger.Debug("trusted boundary rejected hierarchy", "error", err)
		return tiered.TrustedResultError, nil
	}

	dec, err := decision.Evaluate(&req, &pref, h)
	if err != nil {
		return tiered.TrustedResultError, nil
	}
	return string(dec), nil
}

// Close tears the provider down. Further evaluations fail.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.initialized = false
	p.logger.Info("trusted provider closed")
	return nil
}

var _ tiered.TrustedEvaluationAdapter = (*Provider)(nil)
