package exercises

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/darwinyusef/termsim/internal/retry"
	"github.com/darwinyusef/termsim/pkg/termsim"
)

const maxDocumentSize = 4 << 20

// HTTPSource fetches exercises from a server exposing the /api/exercises
// endpoints, such as `termsim serve`.
type HTTPSource struct {
	base   *url.URL
	client *http.Client
	exec   *retry.Executor
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) { s.client = c }
}

// WithRetry replaces the retry executor.
func WithRetry(e *retry.Executor) HTTPOption {
	return func(s *HTTPSource) { s.exec = e }
}

// NewHTTPSource returns a source rooted at baseURL.
func NewHTTPSource(baseURL string, opts ...HTTPOption) (*HTTPSource, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: exercises url %q must be an http(s) URL", termsim.ErrInvalidConfig, baseURL)
	}
	s := &HTTPSource{
		base:   u,
		client: &http.Client{},
		exec:   retry.NewExecutor(retry.NewHTTPClassifier(), retry.NewExponentialBackoff(termsim.DefaultRetryMaxAttempts)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Get fetches /api/exercises/{id}.
func (s *HTTPSource) Get(ctx context.Context, id string) (*termsim.Exercise, error) {
	data, err := s.fetch(ctx, "/api/exercises/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, notFound(err, id)
	}
	return Decode(id+".json", data)
}

// Find fetches /api/exercise with the query as parameters.
func (s *HTTPSource) Find(ctx context.Context, q termsim.ExerciseQuery) (*termsim.Exercise, error) {
	if q.Topic == "" {
		return nil, ErrTopicRequired
	}
	params := url.Values{"topic": {q.Topic}}
	if q.Level != 0 {
		params.Set("level", strconv.Itoa(q.Level))
	}
	if q.Seed != "" {
		params.Set("seed", q.Seed)
	}
	if q.User != "" {
		params.Set("user", q.User)
	}

	data, err := s.fetch(ctx, "/api/exercise", params)
	if err != nil {
		return nil, notFound(err, "topic "+q.Topic)
	}
	return Decode(q.Topic+".json", data)
}

// List fetches /api/exercises.
func (s *HTTPSource) List(ctx context.Context) ([]termsim.ExerciseSummary, error) {
	data, err := s.fetch(ctx, "/api/exercises", nil)
	if err != nil {
		return nil, err
	}
	var out []termsim.ExerciseSummary
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode exercise list: %w", err)
	}
	return out, nil
}

func (s *HTTPSource) fetch(ctx context.Context, p string, params url.Values) ([]byte, error) {
	u := *s.base
	u.Path = strings.TrimRight(u.Path, "/") + p
	u.RawQuery = params.Encode()

	return retry.Do(ctx, s.exec, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, &retry.StatusError{Code: resp.StatusCode, Body: errorMessage(body)}
		}
		return body, nil
	})
}

// errorMessage extracts the "error" field the exercise server sends with
// failures, falling back to the raw body.
func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(body))
}

func notFound(err error, what string) error {
	var statusErr *retry.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.Code {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", termsim.ErrExerciseNotFound, what)
		case http.StatusBadRequest:
			return fmt.Errorf("%w: %s", ErrTopicRequired, statusErr.Body)
		}
	}
	return fmt.Errorf("fetch exercise %s: %w", what, err)
}
