package tiered

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"veridian-hq/callisto/pkg/cache"
	"veridian-hq/callisto/pkg/decision"
	"veridian-hq/callisto/pkg/hierarchy"
	"veridian-hq/callisto/pkg/telemetry/metrics"
)

// Resolution path labels, used in metrics and outcomes.
const (
	PathLocalCache         = "local_cache"
	PathTrusted            = "trusted"
	PathAuthoritativeCache = "authoritative_cache"
	PathAuthoritative      = "authoritative"
)

// DefaultTrustedTimeout bounds a single trusted-provider attempt.
const DefaultTrustedTimeout = 2 * time.Second

// Outcome is a resolved decision together with how it was resolved.
type Outcome struct {
	// Decision is the resolved Grant or Deny.
	Decision decision.Decision

	// Path names the tier that produced the decision.
	Path string

	// CacheHit is true when the decision came from either cache tier.
	CacheHit bool

	// UsingTrustedExec is true when the trusted provider produced the
	// decision.
	UsingTrustedExec bool

	// PolicyVersion is the hierarchy version the decision was resolved
	// under.
	PolicyVersion string

	// Fingerprint is the cache key the input triple hashed to.
	Fingerprint decision.Fingerprint

	// Latency is the wall-clock duration of the whole resolution.
	Latency time.Duration
}

// Config configures an Evaluator.
type Config struct {
	// Local is the first cache tier consulted. Required.
	Local *cache.DecisionCache

	// Authoritative is the cache tier in front of the authoritative
	// engine. Required.
	Authoritative *cache.DecisionCache

	// Registry supplies the current hierarchy and policy version. Required.
	Registry *hierarchy.Registry

	// Trusted is the optional trusted execution provider. When nil, or
	// not Ready, the trusted tier is skipped.
	Trusted TrustedEvaluationAdapter

	// TrustedTimeout bounds a single trusted attempt.
	// Default: DefaultTrustedTimeout.
	TrustedTimeout time.Duration

	// Delay injects per-hop latency below the local tier. Default: NoDelay.
	Delay DelayProvider

	// SingleFlight coalesces concurrent resolutions of the same
	// fingerprint below the local tier.
	SingleFlight bool

	// Logger receives tier-transition logs. Default: slog.Default.
	Logger *slog.Logger

	// Metrics receives evaluation counters and durations. Optional.
	Metrics *metrics.EvaluationMetrics

	// Tracer produces a span per evaluation. Default: the global tracer.
	Tracer trace.Tracer
}

// Evaluator walks the tier chain for each evaluation. Safe for
// concurrent use.
type Evaluator struct {
	local          *cache.DecisionCache
	authoritative  *cache.DecisionCache
	registry       *hierarchy.Registry
	trusted        TrustedEvaluationAdapter
	trustedTimeout time.Duration
	delay          DelayProvider
	singleFlight   bool
	group          singleflight.Group
	logger         *slog.Logger
	metrics        *metrics.EvaluationMetrics
	tracer         trace.Tracer
}

// New creates an Evaluator.
func New(cfg Config) (*Evaluator, error) {
	if cfg.Local == nil || cfg.Authoritative == nil {
		return nil, fmt.Errorf("both cache tiers are required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("hierarchy registry is required")
	}
	if cfg.TrustedTimeout <= 0 {
		cfg.TrustedTimeout = DefaultTrustedTimeout
	}
	if cfg.Delay == nil {
		cfg.Delay = NoDelay{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer("callisto/tiered")
	}

	return &Evaluator{
		local:          cfg.Local,
		authoritative:  cfg.Authoritative,
		registry:       cfg.Registry,
		trusted:        cfg.Trusted,
		trustedTimeout: cfg.TrustedTimeout,
		delay:          cfg.Delay,
		singleFlight:   cfg.SingleFlight,
		logger:         cfg.Logger,
		metrics:        cfg.Metrics,
		tracer:         cfg.Tracer,
	}, nil
}

// Evaluate resolves a decision for the given request and preference,
// walking the tier chain. subjectID tags cache entries for targeted
// invalidation.
//
// Malformed inputs return an error matching decision.ErrMalformedInput
// and are never cached. A tier outage below the caches returns an error
// matching ErrEvaluationUnavailable.
func (e *Evaluator) Evaluate(ctx context.Context, subjectID string, req *decision.AccessRequest, pref *decision.Preference) (*Outcome, error) {
	start := time.Now()

	ctx, span := e.tracer.Start(ctx, "tiered.evaluate")
	defer span.End()

	h, version, err := e.registry.Current()
	if err != nil {
		e.recordError("no_hierarchy")
		return nil, &UnavailableError{Cause: err}
	}

	fp, err := decision.ComputeFingerprint(req, pref, version)
	if err != nil {
		e.recordError("malformed_input")
		return nil, err
	}

	// The subject's retention bound is the freshness window for cached
	// decisions derived from their preference.
	ttl := time.Duration(pref.RetentionSeconds) * time.Second

	if dec, ok := e.local.Lookup(fp, ttl); ok {
		return e.finish(span, start, fp, version, &Outcome{
			Decision: dec,
			Path:     PathLocalCache,
			CacheHit: true,
		}), nil
	}

	resolve := func() (any, error) {
		return e.resolveBelowLocal(ctx, subjectID, fp, version, ttl, req, pref, h)
	}

	var resolved any
	if e.singleFlight {
		resolved, err, _ = e.group.Do(string(fp), resolve)
	} else {
		resolved, err = resolve()
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// Coalesced callers share the resolved value; each finishes its own
	// copy.
	out := *resolved.(*Outcome)
	return e.finish(span, start, fp, version, &out), nil
}

// resolveBelowLocal walks the tiers past the local cache: trusted
// provider, authoritative cache, authoritative engine.
func (e *Evaluator) resolveBelowLocal(ctx context.Context, subjectID string, fp decision.Fingerprint, version string, ttl time.Duration, req *decision.AccessRequest, pref *decision.Preference, h *hierarchy.Hierarchy) (*Outcome, error) {
	if err := e.delay.Wait(ctx); err != nil {
		return nil, &UnavailableError{Cause: err}
	}

	if e.trusted != nil && e.trusted.Ready() {
		dec, err := e.evaluateTrusted(ctx, req, pref, h)
		if err == nil {
			e.cacheBack(fp, dec, subjectID, version, ttl, e.local)
			return &Outcome{
				Decision:         dec,
				Path:             PathTrusted,
				UsingTrustedExec: true,
			}, nil
		}
		e.logger.Warn("trusted evaluation failed, falling through",
			"error", err,
			"fingerprint", string(fp))
		if e.metrics != nil {
			e.metrics.RecordTrustedFailure()
		}
	}

	if dec, ok := e.authoritative.Lookup(fp, ttl); ok {
		e.cacheBack(fp, dec, subjectID, version, ttl, e.local)
		return &Outcome{
			Decision: dec,
			Path:     PathAuthoritativeCache,
			CacheHit: true,
		}, nil
	}

	if err := e.delay.Wait(ctx); err != nil {
		return nil, &UnavailableError{Cause: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &UnavailableError{Cause: err}
	}

	dec, err := decision.Evaluate(req, pref, h)
	if err != nil {
		if errors.Is(err, decision.ErrMalformedInput) {
			e.recordError("malformed_input")
			return nil, err
		}
		e.recordError("authoritative_failure")
		return nil, &UnavailableError{Cause: err}
	}

	e.cacheBack(fp, dec, subjectID, version, ttl, e.authoritative, e.local)
	return &Outcome{
		Decision: dec,
		Path:     PathAuthoritative,
	}, nil
}

// evaluateTrusted runs one bounded attempt against the trusted provider.
func (e *Evaluator) evaluateTrusted(ctx context.Context, req *decision.AccessRequest, pref *decision.Preference, h *hierarchy.Hierarchy) (decision.Decision, error) {
	serializedRequest, serializedPreference, serializedHierarchy, err := MarshalInputs(req, pref, h)
	if err != nil {
		return "", &TrustedEvaluationError{Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, e.trustedTimeout)
	defer cancel()

	result, err := e.trusted.Evaluate(ctx, serializedRequest, serializedPreference, serializedHierarchy)
	if err != nil {
		return "", &TrustedEvaluationError{Cause: err}
	}

	switch result {
	case TrustedResultGrant:
		return decision.Grant, nil
	case TrustedResultDeny:
		return decision.Deny, nil
	default:
		return "", &TrustedEvaluationError{Result: result}
	}
}

// cacheBack stores a resolved decision into the given tiers. Store
// failures are logged, not surfaced: a decision that could not be cached
// is still a valid decision.
func (e *Evaluator) cacheBack(fp decision.Fingerprint, dec decision.Decision, subjectID, version string, ttl time.Duration, tiers ...*cache.DecisionCache) {
	if ttl <= 0 {
		return
	}
	for _, tier := range tiers {
		if err := tier.Store(fp, dec, subjectID, version, ttl); err != nil {
			e.logger.Warn("failed to cache decision",
				"tier", tier.Tier(),
				"error", err)
		}
	}
}

func (e *Evaluator) finish(span trace.Span, start time.Time, fp decision.Fingerprint, version string, out *Outcome) *Outcome {
	out.Fingerprint = fp
	out.PolicyVersion = version
	out.Latency = time.Since(start)

	span.SetAttributes(
		attribute.String("callisto.decision", string(out.Decision)),
		attribute.String("callisto.path", out.Path),
		attribute.Bool("callisto.cache_hit", out.CacheHit),
		attribute.Bool("callisto.trusted_exec", out.UsingTrustedExec),
		attribute.String("callisto.policy_version", version),
	)
	if e.metrics != nil {
		e.metrics.RecordEvaluation(string(out.Decision), out.Path, out.Latency)
	}

	e.logger.Debug("evaluation resolved",
		"decision", string(out.Decision),
		"path", out.Path,
		"cache_hit", out.CacheHit,
		"trusted_exec", out.UsingTrustedExec,
		"latency", out.Latency)
	return out
}

func (e *Evaluator) recordError(reason string) {
	if e.metrics != nil {
		e.metrics.RecordError(reason)
	}
}
