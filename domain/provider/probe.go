package provider

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sho-platform/sho-core/internal/config"
	"github.com/sho-platform/sho-core/pkg/dataprovider"
	"github.com/sho-platform/sho-core/pkg/logger"
)

const defaultProbeTimeout = 10 * time.Second

// Probe checks that a candidate configuration can actually reach its
// backend. The provider built for the probe is transient and never cached.
type Probe interface {
	Run(ctx context.Context, cfg Config) (time.Duration, error)
}

type connectionProbe struct {
	factory Factory
	timeout time.Duration
	log     *slog.Logger
}

func NewProbe(cfg *config.Config, factory Factory, log *slog.Logger) Probe {
	timeout := cfg.Provider.TestTimeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &connectionProbe{
		factory: factory,
		timeout: timeout,
		log:     log.With(logger.Scope("provider.probe")),
	}
}

// Run builds a transient provider and pings the backend once. On failure
// it returns a ConnectionTestError carrying the probe latency and, when
// the backend answered with one, an HTTP status code. A kind that cannot
// be built surfaces its ProviderInitError unchanged.
func (p *connectionProbe) Run(ctx context.Context, cfg Config) (time.Duration, error) {
	prov, err := p.factory.Build(cfg)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	err = prov.Ping(ctx)
	elapsed := time.Since(start)
	if err != nil {
		p.log.Warn("connection probe failed",
			"kind", string(cfg.Kind),
			"elapsedMs", elapsed.Milliseconds(),
			logger.Error(err))
		return elapsed, probeError(cfg.Kind, elapsed, err)
	}

	p.log.Debug("connection probe succeeded",
		"kind", string(cfg.Kind),
		"elapsedMs", elapsed.Milliseconds())
	return elapsed, nil
}

func probeError(kind Kind, elapsed time.Duration, err error) error {
	out := &ConnectionTestError{Kind: kind, Elapsed: elapsed, Cause: err}

	var unauthorized *dataprovider.UnauthorizedError
	var rateLimited *dataprovider.RateLimitError
	var server *dataprovider.ServerError
	var network *dataprovider.NetworkError
	switch {
	case errors.As(err, &unauthorized):
		out.Reason = "backend rejected credentials: " + unauthorized.Reason
		out.StatusCode = 401
	case errors.As(err, &rateLimited):
		out.Reason = "backend is rate limiting requests"
		out.StatusCode = 429
	case errors.As(err, &server):
		out.Reason = server.Message
		out.StatusCode = server.Status
	case errors.As(err, &network):
		out.Reason = "backend is unreachable: " + network.Error()
	default:
		out.Reason = err.Error()
	}
	return out
}
