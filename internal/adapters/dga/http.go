package dga

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultTimeout = 10 * time.Second

	headerConsumerKey = "Consumer-Key"
	headerToken       = "Token"

	maxBodyBytes = 1 << 20
)

// Config is everything the DGA clients need; nothing is read from the
// environment inside this package.
type Config struct {
	AuthURL   string
	DataURL   string
	NotifyURL string

	AgentID        string
	ConsumerKey    string
	ConsumerSecret string

	Contract Contract
	Timeout  time.Duration
}

// Observer receives per-call latency; metrics.Metrics implements it.
type Observer interface {
	ObserveUpstream(call, outcome string, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveUpstream(string, string, time.Duration) {}

// NewHTTPClient returns a client bounded by the configured timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

type exchange struct {
	status int
	raw    []byte
}

func (e exchange) ok() bool {
	return e.status >= 200 && e.status < 300
}

func newJSONRequest(ctx context.Context, method, url string, body any) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// roundTrip performs exactly one request; there is no retry.
func roundTrip(cli *http.Client, req *http.Request) (exchange, error) {
	resp, err := cli.Do(req)
	if err != nil {
		return exchange{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return exchange{status: resp.StatusCode}, fmt.Errorf("read response body: %w", err)
	}
	return exchange{status: resp.StatusCode, raw: raw}, nil
}

// decodeObject parses a JSON object keeping numbers exact.
func decodeObject(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("response body is not a JSON object")
	}
	return m, nil
}

func decodeAny(raw []byte) any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return string(raw)
	}
	return v
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func mask(s string) string {
	if len(s) <= 6 {
		return "***"
	}
	return s[:3] + "***" + s[len(s)-3:]
}
