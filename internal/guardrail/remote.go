package guardrail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"
	"github.com/tidwall/gjson"

	"github.com/mwill20/MultiAgent-SOC/internal/action"
)

// ErrMalformedResponse means a remote guardrail reply was missing
// required keys.
var ErrMalformedResponse = xerrors.New("guardrail: remote response missing required keys")

const (
	// DescriptorPath is the well-known discovery URL served by a
	// remote guardrail deployment.
	DescriptorPath = "/.well-known/agent.json"

	defaultValidatePath = "/v1/validate"

	httpTimeout   = 15 * time.Second
	maxTries      = 4
	maxBodyBytes  = 64 * 1024
	discoveryTime = 5 * time.Second
)

// Remote reaches an out-of-process validator over HTTP, carrying the
// Request/Response JSON shapes verbatim. The transport retries on
// server errors with bounded exponential backoff; a negative verdict
// is never retried.
type Remote struct {
	validateURL string
	token       string
	client      *http.Client
	logger      log.Logger
}

// NewRemote discovers and wraps a remote validator rooted at baseURL.
// Discovery failures fall back to the default validate path; actual
// unreachability surfaces on Validate.
func NewRemote(ctx context.Context, baseURL, token string, logger log.Logger) *Remote {
	if logger == nil {
		logger = log.Nop()
	}
	r := &Remote{
		validateURL: baseURL + defaultValidatePath,
		token:       token,
		client:      &http.Client{Timeout: httpTimeout},
		logger:      logger,
	}
	if path := r.discoverValidatePath(ctx, baseURL); path != "" {
		r.validateURL = baseURL + path
	}
	return r
}

// discoverValidatePath fetches the well-known descriptor and returns
// the advertised validate endpoint path, or "" to use the default.
func (r *Remote) discoverValidatePath(ctx context.Context, baseURL string) string {
	dctx, cancel := context.WithTimeout(ctx, discoveryTime)
	defer cancel()

	req, err := http.NewRequestWithContext(dctx, http.MethodGet, baseURL+DescriptorPath, nil)
	if err != nil {
		return ""
	}
	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Warn(ctx, "guardrail descriptor fetch failed, using default endpoint", "error", err)
		return ""
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return ""
	}
	return gjson.GetBytes(body, "endpoints.validate").String()
}

// Validate posts the request to the remote validator and decodes its
// verdict. Missing required keys in the reply are a malformed-response
// error, not a verdict.
func (r *Remote) Validate(ctx context.Context, req *Request) (*Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("guardrail: marshal request: %w", err)
	}

	operation := func() (*Response, error) {
		return r.post(ctx, payload)
	}

	resp, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(maxTries),
	)
	if err != nil {
		return nil, err
	}
	resp.NormalizedAction = action.Normalize(string(resp.NormalizedAction))
	return resp, nil
}

func (r *Remote) post(ctx context.Context, payload []byte) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.validateURL, bytes.NewReader(payload))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("guardrail: create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+r.token)
	}

	httpResp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("guardrail: post: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("guardrail: read response: %w", err)
	}

	switch {
	case httpResp.StatusCode == http.StatusOK:
		// fall through to decode
	case httpResp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("guardrail: remote status %d: %s", httpResp.StatusCode, body)
	default:
		return nil, backoff.Permanent(fmt.Errorf("guardrail: remote status %d: %s", httpResp.StatusCode, body))
	}

	return decodeResponse(body)
}

// decodeResponse parses a remote verdict, requiring the allow,
// normalized_action, and rationale keys.
func decodeResponse(body []byte) (*Response, error) {
	parsed := gjson.ParseBytes(body)
	allow := parsed.Get("allow")
	normalized := parsed.Get("normalized_action")
	rationale := parsed.Get("rationale")
	if !allow.Exists() || !normalized.Exists() || !rationale.Exists() {
		return nil, backoff.Permanent(fmt.Errorf("%w: got %s", ErrMalformedResponse, body))
	}
	return &Response{
		Allow:            allow.Bool(),
		NormalizedAction: action.Action(normalized.String()),
		Rationale:        rationale.String(),
	}, nil
}
