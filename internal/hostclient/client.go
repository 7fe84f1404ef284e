package hostclient

import (
	"context"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v53/github"
	"github.com/rs/zerolog"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/prabasiva/greport/internal/ratelimit"
)

const (
	perPage        = 100
	maxRetries     = 5
	backoffFloor   = 1 * time.Second
	backoffCeil    = 60 * time.Second
	jitterFraction = 0.2
)

// Credential is the opaque bearer token plus endpoints the Credential
// Registry resolves for an owner (§4.1). The registry never logs or
// returns the token itself; only Client receives it.
type Credential struct {
	ID      string // stable key the rate limiter registry partitions on
	Token   string
	BaseURL string // REST API base, e.g. https://api.github.com
}

// Client is a rate-limited, retrying, paginated REST+GraphQL client for one
// credential. The Sync Coordinator holds one Client per credential for the
// duration of a sync run.
type Client struct {
	rest    *github.Client
	graphql *githubv4.Client
	limiter *ratelimit.Limiter
	log     zerolog.Logger
	cred    Credential
}

// New builds a Client for a single credential, wiring its requests through
// limiter for per-credential pacing (§4.2 rate-limit policy) and log for
// wire-level tracing, a separate stratum from the domain logger (§ Ambient
// stack).
func New(cred Credential, limiter *ratelimit.Limiter, log zerolog.Logger) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cred.Token})
	httpClient := oauth2.NewClient(context.Background(), ts)

	rest := github.NewClient(httpClient)
	if cred.BaseURL != "" && cred.BaseURL != "https://api.github.com" {
		if u, err := rest.BaseURL.Parse(cred.BaseURL + "/"); err == nil {
			rest.BaseURL = u
		}
	}

	graphqlURL := "https://api.github.com/graphql"
	if cred.BaseURL != "" && cred.BaseURL != "https://api.github.com" {
		graphqlURL = strings.TrimSuffix(cred.BaseURL, "/") + "/graphql"
	}

	return &Client{
		rest:    rest,
		graphql: githubv4.NewEnterpriseClient(graphqlURL, httpClient),
		limiter: limiter,
		log:     log.With().Str("credential", cred.ID).Logger(),
		cred:    cred,
	}
}

// Viewer identifies the authenticated user for the credential, used by the
// Credential Registry's validate() (§4.1).
type Viewer struct {
	Login string
	ID    int64
}

// GetViewer fetches the identity behind the client's credential.
func (c *Client) GetViewer(ctx context.Context) (Viewer, error) {
	var out Viewer
	err := c.do(ctx, "get_viewer", func(ctx context.Context) (*github.Response, error) {
		user, resp, err := c.rest.Users.Get(ctx, "")
		if err != nil {
			return resp, err
		}
		out = Viewer{Login: user.GetLogin(), ID: user.GetID()}
		return resp, nil
	})
	return out, err
}

// do runs a single REST operation with retry/backoff and rate-limit
// observation (§4.2), translating the terminal outcome into an *Error.
func (c *Client) do(ctx context.Context, op string, call func(ctx context.Context) (*github.Response, error)) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return &Error{Kind: KindTransport, Op: op, Err: err}
		}

		resp, err := call(ctx)
		if resp != nil && resp.Response != nil {
			c.limiter.Observe(resp.Response.Header)
			c.log.Debug().
				Str("op", op).
				Int("attempt", attempt+1).
				Int("status", resp.StatusCode).
				Msg("host request")
		}

		if err == nil {
			return nil
		}

		classified := classify(op, err, resp)
		lastErr = classified

		if !retryable(classified) || attempt == maxRetries {
			return classified
		}

		wait := backoff(attempt, classified)
		c.log.Warn().Str("op", op).Int("attempt", attempt+1).Dur("wait", wait).Msg("retrying host request")
		select {
		case <-ctx.Done():
			return &Error{Kind: KindTransport, Op: op, Err: ctx.Err()}
		case <-time.After(wait):
		}
	}
	return lastErr
}

// classify maps a go-github error into the §4.2 failure taxonomy.
func classify(op string, err error, resp *github.Response) *Error {
	if resp == nil || resp.Response == nil {
		return &Error{Kind: KindTransport, Op: op, Err: err}
	}

	status := resp.StatusCode
	switch status {
	case http.StatusUnauthorized:
		return &Error{Kind: KindUnauthorized, Status: status, Op: op, Err: err}
	case http.StatusNotFound:
		return &Error{Kind: KindNotFound, Status: status, Op: op, Err: err}
	case http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimited, Status: status, Op: op, RetryAfter: retryAfterSeconds(resp), Err: err}
	case http.StatusForbidden:
		if isSecondaryRateLimit(resp) {
			return &Error{Kind: KindRateLimited, Status: status, Op: op, RetryAfter: retryAfterSeconds(resp), Err: err}
		}
		return &Error{Kind: KindUnauthorized, Status: status, Op: op, Err: err}
	}

	if status >= 500 {
		return &Error{Kind: KindHostError, Status: status, Op: op, Err: err}
	}
	return &Error{Kind: KindHostError, Status: status, Op: op, Err: err}
}

func isSecondaryRateLimit(resp *github.Response) bool {
	if resp == nil || resp.Response == nil {
		return false
	}
	if resp.Response.Header.Get("Retry-After") != "" {
		return true
	}
	return resp.Rate.Remaining == 0
}

func retryAfterSeconds(resp *github.Response) int {
	if resp == nil || resp.Response == nil {
		return int(backoffFloor.Seconds())
	}
	if v := resp.Response.Header.Get("Retry-After"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			return int(d.Seconds())
		}
	}
	if until := time.Until(resp.Rate.Reset.Time); until > 0 {
		return int(until.Seconds())
	}
	return int(backoffFloor.Seconds())
}

// retryable reports whether classified is safe to retry per §4.2: 5xx,
// connection errors, and rate-limit kinds; everything else (4xx other than
// 403-secondary/429) is terminal.
func retryable(e *Error) bool {
	switch e.Kind {
	case KindTransport, KindRateLimited:
		return true
	case KindHostError:
		return e.Status >= 500
	default:
		return false
	}
}

// backoff computes the next sleep duration: exponential from backoffFloor,
// capped at backoffCeil, ±20% jitter (§4.2). A rate-limited response's
// explicit RetryAfter takes precedence when present.
func backoff(attempt int, e *Error) time.Duration {
	if e.Kind == KindRateLimited && e.RetryAfter > 0 {
		return time.Duration(e.RetryAfter) * time.Second
	}
	base := float64(backoffFloor) * math.Pow(2, float64(attempt))
	if base > float64(backoffCeil) {
		base = float64(backoffCeil)
	}
	delta := base * jitterFraction
	jittered := base + (rand.Float64()*2-1)*delta
	return time.Duration(jittered)
}
