package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/UnknownOlympus/athena/internal/client"
	"github.com/UnknownOlympus/athena/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRoundTripper helps to imitate errors on transport level
type mockRoundTripper struct {
	RoundTripFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if m.RoundTripFunc == nil {
		return nil, errors.New("RoundTripFunc not set")
	}
	return m.RoundTripFunc(req)
}

func newAPI(t *testing.T, handler http.HandlerFunc) (*client.API, *metrics.Metrics) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	m := metrics.NewMetrics(prometheus.NewRegistry())
	return client.NewAPI(slog.New(slog.DiscardHandler), srv.Client(), srv.URL+"/", m), m
}

func TestAPI_Do_HeadersAndBody(t *testing.T) {
	t.Parallel()

	api, m := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/qualifications", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Go", body["skill"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":7,"skill":"Go"}`))
	})

	data, err := api.Do(t.Context(), http.MethodPost, "/qualifications", map[string]string{"skill": "Go"}, "secret")

	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"skill":"Go"}`, string(data))
	assert.InDelta(t, 1, testutil.ToFloat64(m.Requests.WithLabelValues("POST", "qualifications", "201")), 0)
}

func TestAPI_Do_AnonymousOmitsAuthorization(t *testing.T) {
	t.Parallel()

	api, _ := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		_, present := r.Header["Authorization"]
		assert.False(t, present, "Authorization header must be omitted without a token")
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Empty(t, body)
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := api.Do(t.Context(), http.MethodGet, "/employees", nil, "")

	require.NoError(t, err)
}

func TestAPI_Do_NonSuccessCarriesRawBody(t *testing.T) {
	t.Parallel()

	api, m := newAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("postcode must have 5 digits"))
	})

	_, err := api.Do(t.Context(), http.MethodPut, "/employees/1", map[string]string{}, "")

	require.Error(t, err)
	require.ErrorIs(t, err, client.ErrRequestFailed)

	var apiErr *client.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "postcode must have 5 digits", apiErr.Body)
	assert.Equal(t, "postcode must have 5 digits", err.Error())
	assert.Equal(t, http.StatusBadRequest, client.StatusCode(err))
	assert.InDelta(t, 1, testutil.ToFloat64(m.Requests.WithLabelValues("PUT", "employees", "400")), 0)
}

func TestAPI_Do_NonSuccessWithoutBody(t *testing.T) {
	t.Parallel()

	api, _ := newAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := api.Do(t.Context(), http.MethodDelete, "/employees/9", nil, "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status code: 404")
}

func TestAPI_Do_NetworkFailureIsNormalized(t *testing.T) {
	t.Parallel()

	httpClient := &http.Client{Transport: &mockRoundTripper{
		RoundTripFunc: func(_ *http.Request) (*http.Response, error) {
			return nil, errors.New("simulated network error")
		},
	}}
	m := metrics.NewMetrics(prometheus.NewRegistry())
	api := client.NewAPI(slog.New(slog.DiscardHandler), httpClient, "http://example.com", m)

	_, err := api.Do(t.Context(), http.MethodGet, "/employees", nil, "token")

	require.ErrorIs(t, err, client.ErrRequestFailed)
	var apiErr *client.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, apiErr.Status)
	assert.Contains(t, err.Error(), "simulated network error")
	assert.Zero(t, client.StatusCode(err))
	assert.InDelta(t, 1, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "employees", "error")), 0)
}

func TestAPI_Do_ContextCanceled(t *testing.T) {
	t.Parallel()

	api, _ := newAPI(t, func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("The server handler should not be called if the context is canceled before the request")
	})

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := api.Do(ctx, http.MethodGet, "/employees", nil, "")

	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, err, client.ErrRequestFailed)
}

func TestAPI_Do_BodyReadError(t *testing.T) {
	t.Parallel()

	httpClient := &http.Client{Transport: &mockRoundTripper{
		RoundTripFunc: func(_ *http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(&errorReader{}), Header: make(http.Header)}, nil
		},
	}}
	api := client.NewAPI(slog.New(slog.DiscardHandler), httpClient, "http://example.com", nil)

	_, err := api.Do(t.Context(), http.MethodGet, "/employees", nil, "")

	require.Error(t, err)
	assert.Equal(t, "GET /employees: status code: 200: simulated read error", err.Error())
	assert.Equal(t, http.StatusOK, client.StatusCode(err))
	require.ErrorIs(t, err, client.ErrRequestFailed)
}

type errorReader struct{}

func (er *errorReader) Read(_ []byte) (int, error) {
	return 0, errors.New("simulated read error")
}

func TestAPI_Ping(t *testing.T) {
	t.Parallel()

	t.Run("reachable", func(t *testing.T) {
		api, _ := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodHead, r.Method)
			w.WriteHeader(http.StatusUnauthorized)
		})
		require.NoError(t, api.Ping(t.Context()))
	})

	t.Run("server error", func(t *testing.T) {
		api, _ := newAPI(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		err := api.Ping(t.Context())
		require.Error(t, err)
		assert.Equal(t, http.StatusBadGateway, client.StatusCode(err))
	})

	t.Run("unreachable", func(t *testing.T) {
		api := client.NewAPI(slog.New(slog.DiscardHandler), &http.Client{}, "http://invalid url", nil)
		require.Error(t, api.Ping(t.Context()))
	})
}

func TestResource(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"/employees":                   "employees",
		"/employees/12/qualifications": "employees",
		"/qualifications/3/employees":  "qualifications",
		"/qualifications?x=1":          "qualifications",
		"":                             "root",
		"/":                            "root",
	}

	for path, want := range tests {
		assert.Equal(t, want, client.Resource(path), path)
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	type rec struct {
		Skill string `json:"skill"`
	}

	got, err := client.Decode[rec]([]byte(`{"skill":"Go"}`))
	require.NoError(t, err)
	assert.Equal(t, rec{Skill: "Go"}, got)

	empty, err := client.Decode[[]rec](nil)
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = client.Decode[rec]([]byte(`not json`))
	require.ErrorContains(t, err, "failed to decode response body")
	require.ErrorIs(t, err, client.ErrDecode)
}
