package submission

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// ErrEndpointRequired is returned when an HTTPSubmitter has no URL.
var ErrEndpointRequired = errors.New("submission: endpoint URL required")

// StatusError reports a non-2xx response from the endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("submission: endpoint responded %d", e.StatusCode)
	}
	return fmt.Sprintf("submission: endpoint responded %d: %s", e.StatusCode, e.Body)
}

// Payload is the JSON body posted by HTTPSubmitter.
type Payload struct {
	ID          string            `json:"id"`
	Form        string            `json:"form,omitempty"`
	SubmittedAt time.Time         `json:"submittedAt"`
	Values      schema.FormValues `json:"values"`
}

// HTTPSubmitter posts submissions as JSON to an endpoint.
type HTTPSubmitter struct {
	endpoint string
	form     string
	client   *http.Client
	headers  http.Header
	logger   zerolog.Logger
	ids      IDGenerator
	clock    Clock
}

// HTTPOption configures an HTTPSubmitter.
type HTTPOption func(*HTTPSubmitter)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *HTTPSubmitter) {
		if client != nil {
			s.client = client
		}
	}
}

// WithHeader adds a request header.
func WithHeader(key, value string) HTTPOption {
	return func(s *HTTPSubmitter) {
		s.headers.Add(key, value)
	}
}

// WithHTTPLogger sets the logger.
func WithHTTPLogger(logger zerolog.Logger) HTTPOption {
	return func(s *HTTPSubmitter) {
		s.logger = logger
	}
}

// WithHTTPFormName sets the form name sent in the payload.
func WithHTTPFormName(name string) HTTPOption {
	return func(s *HTTPSubmitter) {
		s.form = name
	}
}

// WithHTTPIDs overrides the id generator.
func WithHTTPIDs(ids IDGenerator) HTTPOption {
	return func(s *HTTPSubmitter) {
		if ids != nil {
			s.ids = ids
		}
	}
}

// WithHTTPClock overrides the clock.
func WithHTTPClock(clock Clock) HTTPOption {
	return func(s *HTTPSubmitter) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewHTTPSubmitter returns a submitter posting to endpoint.
func NewHTTPSubmitter(endpoint string, options ...HTTPOption) (*HTTPSubmitter, error) {
	if endpoint == "" {
		return nil, ErrEndpointRequired
	}
	s := &HTTPSubmitter{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		headers:  make(http.Header),
		logger:   zerolog.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s, nil
}

// Submit implements Submitter.
func (s *HTTPSubmitter) Submit(ctx context.Context, values schema.FormValues) (Receipt, error) {
	receipt := newReceipt("http", s.ids, s.clock)
	body, err := json.Marshal(Payload{
		ID:          receipt.ID,
		Form:        s.form,
		SubmittedAt: receipt.SubmittedAt,
		Values:      values,
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("submission: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return Receipt{}, fmt.Errorf("submission: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, vals := range s.headers {
		for _, v := range vals {
			req.Header.Add(key, v)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error().Err(err).Str("endpoint", s.endpoint).Msg("submission request failed")
		return Receipt{}, fmt.Errorf("submission: post %s: %w", s.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Receipt{}, &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
	}
	s.logger.Debug().Str("submission_id", receipt.ID).Int("status", resp.StatusCode).Msg("submission delivered")
	return receipt, nil
}
