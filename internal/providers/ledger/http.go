package ledger

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/tracing"
)

// HTTPConfig configures an HTTPGateway
type HTTPConfig struct {
	Endpoint     string
	NetworkID    string
	Token        string
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	RateLimit    float64 // requests per second, 0 = unlimited
	Metrics      *monitoring.Metrics
}

// HTTPGateway anchors through a remote JSON service:
//
//	POST {endpoint}/v1/anchors        AnchorRequest -> Receipt
//	GET  {endpoint}/v1/anchors/{tx}   -> Receipt
type HTTPGateway struct {
	resty   *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
	network string
	metrics *monitoring.Metrics
}

type errorBody struct {
	Error string `json:"error"`
}

// NewHTTPGateway creates a gateway with retries, a circuit breaker and an
// optional client-side rate limit
func NewHTTPGateway(cfg HTTPConfig) (*HTTPGateway, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("ledger endpoint is required")
	}
	if _, err := url.ParseRequestURI(cfg.Endpoint); err != nil {
		return nil, fmt.Errorf("invalid ledger endpoint: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryWaitMin <= 0 {
		cfg.RetryWaitMin = 500 * time.Millisecond
	}
	if cfg.RetryWaitMax <= 0 {
		cfg.RetryWaitMax = 5 * time.Second
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Logger = nil
	// hand non-2xx responses back to resty instead of an error
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := resty.NewWithClient(retryClient.StandardClient()).
		SetBaseURL(strings.TrimRight(cfg.Endpoint, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", "AgentRegistry-Ledger/1.0").
		SetHeader("Content-Type", "application/json")
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}

	breaker := resilience.New("ledger-gateway", resilience.Settings{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5 ||
				(counts.Requests >= 20 && float64(counts.TotalFailures)/float64(counts.Requests) > 0.5)
		},
		// 4xx responses do not trip the breaker
		IsSuccessful: func(err error) bool {
			var gerr *GatewayError
			if errors.As(err, &gerr) && gerr.StatusCode >= 400 && gerr.StatusCode < 500 {
				return true
			}
			return err == nil
		},
	})

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &HTTPGateway{
		resty:   client,
		limiter: limiter,
		breaker: breaker,
		network: cfg.NetworkID,
		metrics: cfg.Metrics,
	}, nil
}

// Anchor posts req to the remote ledger
func (g *HTTPGateway) Anchor(ctx context.Context, req AnchorRequest) (Receipt, error) {
	if err := validate(req); err != nil {
		return Receipt{}, &GatewayError{Op: "anchor", StatusCode: http.StatusBadRequest, Err: err}
	}
	if req.NetworkID == "" {
		req.NetworkID = g.network
	}
	return g.do(ctx, "anchor", func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(req).Post("/v1/anchors")
	})
}

// Status fetches the receipt for txHash
func (g *HTTPGateway) Status(ctx context.Context, txHash string) (Receipt, error) {
	if txHash == "" {
		return Receipt{}, &GatewayError{Op: "status", StatusCode: http.StatusBadRequest, Err: ErrUnknownTx}
	}
	return g.do(ctx, "status", func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("tx", txHash).Get("/v1/anchors/{tx}")
	})
}

// BreakerState reports the circuit breaker state
func (g *HTTPGateway) BreakerState() resilience.State {
	return g.breaker.State()
}

func (g *HTTPGateway) do(ctx context.Context, op string, send func(*resty.Request) (*resty.Response, error)) (Receipt, error) {
	timer := monitoring.NewTimer(g.metrics, op)

	if err := g.limiter.Wait(ctx); err != nil {
		timer.Stop("rate_limited")
		return Receipt{}, &GatewayError{Op: op, Err: fmt.Errorf("rate limit error: %w", err)}
	}

	receipt, err := resilience.Call(g.breaker, func() (Receipt, error) {
		var out Receipt
		var failure errorBody

		r := g.resty.R().SetContext(ctx).SetResult(&out).SetError(&failure)
		tracing.InjectTraceContext(ctx, func(k, v string) { r.SetHeader(k, v) })

		resp, err := send(r)
		if err != nil {
			return Receipt{}, &GatewayError{Op: op, Err: err}
		}
		if resp.IsError() {
			return Receipt{}, statusError(op, resp.StatusCode(), failure.Error)
		}
		return out, nil
	})

	switch {
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrTooManyRequests):
		timer.Stop("circuit_open")
		return Receipt{}, &GatewayError{Op: op, StatusCode: http.StatusServiceUnavailable, Err: err}
	case err != nil:
		timer.Stop("error")
		return Receipt{}, err
	}
	timer.Stop("ok")
	return receipt, nil
}

func statusError(op string, code int, message string) error {
	var err error
	switch {
	case code == http.StatusNotFound:
		err = ErrUnknownTx
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		err = ErrInvalidRequest
	default:
		err = errors.New(http.StatusText(code))
	}
	if message != "" {
		err = fmt.Errorf("%w: %s", err, message)
	}
	return &GatewayError{Op: op, StatusCode: code, Err: err}
}
