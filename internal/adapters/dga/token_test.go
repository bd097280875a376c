package dga

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dga_gateway/internal/failure"
)

func testConfig(t *testing.T, srv *httptest.Server) Config {
	t.Helper()
	c, err := ContractFor("v1")
	require.NoError(t, err)
	return Config{
		AuthURL:        srv.URL + "/auth/validate",
		DataURL:        srv.URL + "/deproc",
		NotifyURL:      srv.URL + "/notify",
		AgentID:        "agent-1",
		ConsumerKey:    "ckey",
		ConsumerSecret: "s3cr3t&x",
		Contract:       c,
	}
}

func TestTokenClientObtainToken(t *testing.T) {
	var gotQuery, gotKey, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("Consumer-Key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":"tok-lower","Token":"tok-upper"}`))
	}))
	defer srv.Close()

	c := NewTokenClient(testConfig(t, srv), srv.Client(), nil)
	tok, err := c.ObtainToken(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "tok-lower", tok)
	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "ckey", gotKey)
	assert.Contains(t, gotQuery, "AgentID=agent-1")
	assert.Contains(t, gotQuery, "ConsumerSecret=s3cr3t%26x")
}

func TestTokenClientFailures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		forbidden bool
	}{
		{"forbidden", http.StatusForbidden, `{"Message":"IP not allowed"}`, true},
		{"server error", http.StatusInternalServerError, `oops`, false},
		{"missing token", http.StatusOK, `{"Message":"ok"}`, false},
		{"non json success", http.StatusOK, `<html></html>`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewTokenClient(testConfig(t, srv), srv.Client(), nil).ObtainToken(context.Background())
			require.Error(t, err)

			f, ok := failure.As(err)
			require.True(t, ok)
			assert.Equal(t, failure.KindAuth, f.Kind)
			assert.Equal(t, tt.status, f.Status)
			assert.Equal(t, tt.forbidden, f.Forbidden())
			assert.NotNil(t, f.Body)
		})
	}
}

func TestTokenClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	cfg := testConfig(t, srv)
	srv.Close()

	_, err := NewTokenClient(cfg, nil, nil).ObtainToken(context.Background())
	require.Error(t, err)
	assert.Equal(t, failure.KindAuth, failure.KindOf(err))

	f, _ := failure.As(err)
	assert.Equal(t, 0, f.Status)
	assert.Equal(t, http.StatusInternalServerError, f.HTTPStatus())
}
