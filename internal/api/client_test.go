package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/go-storefront-client/internal/config"
)

func newClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.APIConfig{BaseURL: srv.URL, Timeout: 5 * time.Second},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_ServerMessageSurfacedVerbatim(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"not found"}`))
	}))

	_, err := c.Products(context.Background())
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "not found", apiErr.Message)
}

func TestClient_StatusFallbackWhenNoMessage(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{}`))
	}))

	_, err := c.Products(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "HTTP 500", apiErr.Message)
}

func TestClient_NonJSONResponse(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>\n  <body>tunnel   warning page</body>\n</html>"))
	}))

	_, err := c.Products(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusOK, apiErr.Status)
	assert.Contains(t, apiErr.Message, "non-JSON response")
	// Snippet is whitespace-collapsed for logging.
	assert.Equal(t, "<html> <body>tunnel warning page</body> </html>", apiErr.Snippet)
}

func TestClient_MalformedJSON(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id": 1,`))
	}))

	_, err := c.Products(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "malformed JSON")
}

func TestClient_MalformedJSONOnErrorStatus(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{{{not json`))
	}))

	_, err := c.Products(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Contains(t, apiErr.Message, "malformed JSON")
}

func TestClient_MalformedJSONOnDiscardedPayload(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{{{not json`))
	}))

	err := c.Register(context.Background(), RegisterRequest{Email: "ana@example.com"})
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "malformed JSON")
}

func TestClient_SnippetTruncatesOnRuneBoundary(t *testing.T) {
	// 199 ASCII bytes followed by multi-byte runes straddling the 200-byte
	// truncation point.
	body := strings.Repeat("a", 199) + "ééé"
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(body))
	}))

	_, err := c.Products(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, utf8.ValidString(apiErr.Snippet))
	assert.LessOrEqual(t, len(apiErr.Snippet), 200)
	assert.Equal(t, strings.Repeat("a", 199), apiErr.Snippet)
}

func TestClient_BearerPrefixing(t *testing.T) {
	var got []string
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))

	_, err := c.Orders(context.Background(), "abc123")
	require.NoError(t, err)
	_, err = c.Orders(context.Background(), "Bearer abc123")
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer abc123", "Bearer abc123"}, got)
}

func TestClient_ProductByID_DirectEndpoint(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/products/5", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":5,"name":"Optik R6","price":"899.00"}`))
	})
	c := newClient(t, mux)

	p, err := c.ProductByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Optik R6", p.Name)
}

func TestClient_ProductByID_FallsBackToList(t *testing.T) {
	mux := http.NewServeMux()
	listCalls := 0
	mux.HandleFunc("/products/5", func(w http.ResponseWriter, r *http.Request) {
		// Backend without a single-item endpoint.
		http.NotFound(w, r)
	})
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		listCalls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":4,"name":"Pulse ANC"},{"id":5,"name":"Optik R6"}]`))
	})
	c := newClient(t, mux)

	p, err := c.ProductByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Optik R6", p.Name)
	assert.Equal(t, 1, listCalls)

	_, err = c.ProductByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestClient_TunnelBypassHeaderSent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("ngrok-skip-browser-warning")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	c := New(config.APIConfig{
		BaseURL:            srv.URL,
		Timeout:            5 * time.Second,
		TunnelBypassHeader: "ngrok-skip-browser-warning: true",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := c.Products(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "true", got)
}

func TestClient_EmptySuccessBodyIsAccepted(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
	}))

	err := c.Register(context.Background(), RegisterRequest{Email: "ana@example.com"})
	assert.NoError(t, err)
}
