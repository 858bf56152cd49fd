package client_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/UnknownOlympus/athena/internal/client"
)

func TestCreateHTTPClient(t *testing.T) {
	var logBuf bytes.Buffer // buffer for log capturing
	testLogger := slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{
		Level: slog.LevelDebug, // Level debug needed, for CheckRedirect message capturing
	}))

	t.Run("client properties", func(t *testing.T) {
		client := client.CreateHTTPClient(testLogger, 3*time.Second)

		if client.Timeout != 3*time.Second {
			t.Errorf("client.Timeout = %v, expected 3s", client.Timeout)
		}

		if client.CheckRedirect == nil {
			t.Error("client.CheckRedirect must be set and must not be nil")
		}
	})

	t.Run("CheckRedirect behavior - redirection and logging", func(t *testing.T) {
		logBuf.Reset()

		finalPath := "/final-destination"
		redirectPath := "/redirect-here"

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case redirectPath:
				http.Redirect(w, r, finalPath, http.StatusFound)
			case finalPath:
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("Endpoint successfully reached"))
			default:
				http.NotFound(w, r)
			}
		}))
		defer server.Close()

		client := client.CreateHTTPClient(testLogger, 0)

		resp, err := client.Get(server.URL + redirectPath)
		if err != nil {
			t.Fatalf("client.Get failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected status OK (200) after redirect, but received %d", resp.StatusCode)
		}
		if resp.Request.URL.Path != finalPath {
			t.Errorf("Expected request final path %s, but received %s", finalPath, resp.Request.URL.Path)
		}

		loggedOutput := logBuf.String()
		if !strings.Contains(loggedOutput, "Redirected to URL") {
			t.Errorf("The log output does not contain the redirect message. Log:\n%s", loggedOutput)
		}
		if !strings.Contains(loggedOutput, "URL="+server.URL+finalPath) {
			t.Errorf("The log output does not contain the final URL. Log:\n%s", loggedOutput)
		}
	})
}
