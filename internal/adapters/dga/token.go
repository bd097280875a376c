package dga

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"time"

	"dga_gateway/internal/failure"
)

// TokenClient obtains short-lived bearer tokens from the DGA auth service
// using the static agent credentials.
type TokenClient struct {
	cfg      Config
	http     *http.Client
	observer Observer
}

func NewTokenClient(cfg Config, cli *http.Client, obs Observer) *TokenClient {
	if cli == nil {
		cli = NewHTTPClient(cfg.Timeout)
	}
	if obs == nil {
		obs = nopObserver{}
	}
	return &TokenClient{cfg: cfg, http: cli, observer: obs}
}

func (c *TokenClient) AgentID() string { return c.cfg.AgentID }

func (c *TokenClient) ObtainToken(ctx context.Context) (token string, err error) {
	start := time.Now()
	defer func() { c.observer.ObserveUpstream("validate", outcome(err), time.Since(start)) }()

	u, err := url.Parse(c.cfg.AuthURL)
	if err != nil || c.cfg.AuthURL == "" {
		return "", failure.Upstream(failure.KindAuth, 0, nil, "invalid auth URL", err)
	}
	q := u.Query()
	q.Set("ConsumerSecret", c.cfg.ConsumerSecret)
	q.Set("AgentID", c.cfg.AgentID)
	u.RawQuery = q.Encode()

	req, err := newJSONRequest(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", failure.Upstream(failure.KindAuth, 0, nil, "build validate request", err)
	}
	req.Header.Set(headerConsumerKey, c.cfg.ConsumerKey)

	log.Printf("[DGA][VALIDATE][START] agent=%q", c.cfg.AgentID)
	ex, err := roundTrip(c.http, req)
	if err != nil {
		log.Printf("[DGA][VALIDATE][ERR] transport: %v", err)
		return "", failure.Upstream(failure.KindAuth, ex.status, ex.raw, "validate request failed", err)
	}
	if !ex.ok() {
		log.Printf("[DGA][VALIDATE][ERR] status=%d", ex.status)
		return "", failure.Upstream(failure.KindAuth, ex.status, ex.raw, "Validate API failed.", nil)
	}

	body, derr := decodeObject(ex.raw)
	if derr == nil {
		token = c.cfg.Contract.Token(body)
	}
	if token == "" {
		log.Printf("[DGA][VALIDATE][ERR] token not found status=%d", ex.status)
		return "", failure.Upstream(failure.KindAuth, ex.status, ex.raw, "Token not found in Validate response", derr)
	}

	log.Printf("[DGA][VALIDATE][OK] token=%s", mask(token))
	return token, nil
}
