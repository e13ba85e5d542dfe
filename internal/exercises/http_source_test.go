package exercises

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/darwinyusef/termsim/internal/retry"
	"github.com/darwinyusef/termsim/pkg/termsim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var flaky atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/exercises", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]termsim.ExerciseSummary{{ID: "remote", Title: "Remote"}})
	})
	mux.HandleFunc("GET /api/exercises/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case "remote":
			_, _ = w.Write([]byte(`{"exercise":{"id":"remote","title":"Remote","steps":[{"instruction":"x","points":1,"validation":{"type":"command_exact","expected_command":"ls"}}]}}`))
		case "flaky":
			if flaky.Add(1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(`{"exercise":{"id":"flaky","steps":[]}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Exercise not found"}`))
		}
	})
	mux.HandleFunc("GET /api/exercise", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("topic") == "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Topic parameter is required"}`))
			return
		}
		if q.Get("topic") != "linux" || q.Get("level") != "2" || q.Get("user") != "ana" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"exercise":{"id":"found","steps":[]}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &flaky
}

func newTestSource(t *testing.T, srv *httptest.Server) *HTTPSource {
	t.Helper()
	exec := retry.NewExecutor(retry.NewHTTPClassifier(), retry.NewExponentialBackoff(2, retry.WithInitialDelay(time.Millisecond), retry.WithJitter(0)))
	src, err := NewHTTPSource(srv.URL+"/", WithHTTPClient(srv.Client()), WithRetry(exec))
	require.NoError(t, err)
	return src
}

func TestHTTPSource_Get(t *testing.T) {
	srv, _ := fakeServer(t)
	src := newTestSource(t, srv)

	ex, err := src.Get(context.Background(), "remote")
	require.NoError(t, err)
	assert.Equal(t, "Remote", ex.Title)
	assert.Len(t, ex.Steps, 1)

	_, err = src.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, termsim.ErrExerciseNotFound)
}

func TestHTTPSource_GetRetriesGatewayErrors(t *testing.T) {
	srv, flaky := fakeServer(t)
	src := newTestSource(t, srv)

	ex, err := src.Get(context.Background(), "flaky")
	require.NoError(t, err)
	assert.Equal(t, "flaky", ex.ID)
	assert.EqualValues(t, 2, flaky.Load())
}

func TestHTTPSource_Find(t *testing.T) {
	srv, _ := fakeServer(t)
	src := newTestSource(t, srv)

	ex, err := src.Find(context.Background(), termsim.ExerciseQuery{Topic: "linux", Level: 2, User: "ana"})
	require.NoError(t, err)
	assert.Equal(t, "found", ex.ID)

	_, err = src.Find(context.Background(), termsim.ExerciseQuery{Topic: "go"})
	assert.ErrorIs(t, err, termsim.ErrExerciseNotFound)

	_, err = src.Find(context.Background(), termsim.ExerciseQuery{})
	assert.ErrorIs(t, err, ErrTopicRequired)
}

func TestHTTPSource_List(t *testing.T) {
	srv, _ := fakeServer(t)
	list, err := newTestSource(t, srv).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []termsim.ExerciseSummary{{ID: "remote", Title: "Remote"}}, list)
}

func TestNewHTTPSource_RejectsBadURL(t *testing.T) {
	_, err := NewHTTPSource("not a url")
	assert.ErrorIs(t, err, termsim.ErrInvalidConfig)
}
