package actor

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/aviate-labs/agent-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/payment-frontend/internal/errors"
)

const (
	// DefaultHost is the local replica started by the SDK.
	DefaultHost = "http://127.0.0.1:4943"

	// DefaultTimeout bounds a single replica request.
	DefaultTimeout = 30 * time.Second

	tracerName = "payment-frontend/actor"
)

// CallObserver receives one notification per replica request.
// kind is "status", "query" or "call".
type CallObserver interface {
	ObserveCall(kind, method string, d time.Duration, err error)
}

// AgentConfig configures an Agent.
type AgentConfig struct {
	// Host is the replica or boundary node base URL (default: DefaultHost).
	Host string

	// Timeout bounds each request (default: DefaultTimeout).
	Timeout time.Duration

	// FetchRootKey fetches the replica's root key before the first canister
	// request. Only local replicas need it; mainnet keys are built in.
	FetchRootKey bool

	// Logger is used for request diagnostics. Default: slog.Default().
	Logger *slog.Logger

	// Tracer overrides the OpenTelemetry tracer.
	// Default: the global provider's "payment-frontend/actor" tracer.
	Tracer trace.Tracer

	// Observer, if set, is notified of every request.
	Observer CallObserver
}

// RequestKind selects how a method is invoked.
type RequestKind string

const (
	// Query methods are answered by a single replica and cannot change state.
	Query RequestKind = "query"

	// Update methods go through consensus and may change canister state.
	Update RequestKind = "call"
)

// Transport carries actor requests to the replica. *Agent implements it.
type Transport interface {
	// Host returns the replica base URL.
	Host() string

	// Status checks that the replica answers its status endpoint.
	Status(ctx context.Context) error

	// Request invokes method with Candid-encoded args and decodes the reply
	// into results, which must be pointers.
	Request(ctx context.Context, kind RequestKind, canister Principal, method string, args, results []any) error
}

// Agent performs replica requests on behalf of actors using the IC agent.
// It is safe for concurrent use.
type Agent struct {
	host         *url.URL
	timeout      time.Duration
	fetchRootKey bool
	logger       *slog.Logger
	tracer       trace.Tracer
	observer     CallObserver

	mu sync.Mutex
	ic *agent.Agent
}

// NewAgent creates an Agent. It does not contact the replica; the IC agent
// is created on the first canister request.
func NewAgent(config AgentConfig) (*Agent, error) {
	if config.Host == "" {
		config.Host = DefaultHost
	}
	host, err := url.Parse(config.Host)
	if err != nil || host.Scheme == "" || host.Host == "" {
		return nil, errors.New("E015").WithDetailf("invalid replica host %q", config.Host)
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Tracer == nil {
		config.Tracer = otel.Tracer(tracerName)
	}
	return &Agent{
		host:         host,
		timeout:      config.Timeout,
		fetchRootKey: config.FetchRootKey,
		logger:       config.Logger.With("component", "agent"),
		tracer:       config.Tracer,
		observer:     config.Observer,
	}, nil
}

// Host returns the replica base URL.
func (a *Agent) Host() string {
	return strings.TrimRight(a.host.String(), "/")
}

// Status fetches the replica status document.
func (a *Agent) Status(ctx context.Context) error {
	ctx, span := a.tracer.Start(ctx, "actor.status",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("actor.host", a.Host())),
	)
	defer span.End()

	start := time.Now()
	err := a.run(ctx, func() error {
		_, err := agent.NewClient(agent.WithHostURL(a.host)).Status()
		return err
	})
	if err != nil {
		err = errors.FromError(err, "E015").WithDetailf("GET %s/api/v2/status", a.Host())
	}
	a.finish(span, "status", "", start, err)
	return err
}

// Request invokes a canister method.
func (a *Agent) Request(ctx context.Context, kind RequestKind, canister Principal, method string, args, results []any) error {
	ctx, span := a.tracer.Start(ctx, "actor."+string(kind),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("actor.host", a.Host()),
			attribute.String("actor.canister_id", canister.String()),
			attribute.String("actor.method", method),
		),
	)
	defer span.End()

	start := time.Now()
	err := a.request(ctx, kind, canister, method, args, results)
	a.finish(span, string(kind), method, start, err)
	return err
}

func (a *Agent) request(ctx context.Context, kind RequestKind, canister Principal, method string, args, results []any) error {
	ic, err := a.icAgent(ctx)
	if err != nil {
		return err
	}
	if args == nil {
		args = []any{}
	}

	err = a.run(ctx, func() error {
		if kind == Update {
			return ic.Call(canister, method, args, results)
		}
		return ic.Query(canister, method, args, results)
	})
	if err != nil {
		return errors.FromError(err, "E013").WithDetailf("%s %s", kind, method)
	}
	return nil
}

// icAgent returns the IC agent, creating it on first use. Creation fetches
// the root key when configured, so a failure is retried next time.
func (a *Agent) icAgent(ctx context.Context) (*agent.Agent, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ic != nil {
		return a.ic, nil
	}

	var ic *agent.Agent
	err := a.run(ctx, func() error {
		var err error
		ic, err = agent.New(agent.Config{
			ClientConfig: []agent.ClientOption{agent.WithHostURL(a.host)},
			FetchRootKey: a.fetchRootKey,
		})
		return err
	})
	if err != nil {
		return nil, errors.FromError(err, "E015").WithDetailf("create agent for %s", a.Host())
	}
	a.ic = ic
	return ic, nil
}

// run calls fn, giving up when ctx is done or the request timeout passes.
// The IC agent has no context support, so fn may outlive a cancelled run.
func (a *Agent) run(ctx context.Context, fn func() error) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return errors.New("E015").Wrap(ctx.Err())
	}
}

func (a *Agent) finish(span trace.Span, kind, method string, start time.Time, err error) {
	d := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.logger.Debug("replica request failed", "kind", kind, "method", method, "duration", d, "error", err)
	} else {
		a.logger.Debug("replica request", "kind", kind, "method", method, "duration", d)
	}
	if a.observer != nil {
		a.observer.ObserveCall(kind, method, d, err)
	}
}
