package dga

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"dga_gateway/internal/failure"
	"dga_gateway/internal/models"
)

// CitizenClient exchanges a bearer token and the caller's appId/mToken for
// the citizen's demographic record ("deproc").
type CitizenClient struct {
	cfg      Config
	http     *http.Client
	observer Observer
}

func NewCitizenClient(cfg Config, cli *http.Client, obs Observer) *CitizenClient {
	if cli == nil {
		cli = NewHTTPClient(cfg.Timeout)
	}
	if obs == nil {
		obs = nopObserver{}
	}
	return &CitizenClient{cfg: cfg, http: cli, observer: obs}
}

func (c *CitizenClient) Retrieve(ctx context.Context, token, appID, mToken string) (models.CitizenRecord, error) {
	token, appID, mToken = strings.TrimSpace(token), strings.TrimSpace(appID), strings.TrimSpace(mToken)
	if token == "" || appID == "" || mToken == "" {
		return models.CitizenRecord{}, failure.Validation("Missing appId, mToken or token")
	}

	start := time.Now()
	rec, err := c.retrieve(ctx, token, appID, mToken)
	c.observer.ObserveUpstream("deproc", outcome(err), time.Since(start))
	return rec, err
}

func (c *CitizenClient) retrieve(ctx context.Context, token, appID, mToken string) (models.CitizenRecord, error) {
	req, err := newJSONRequest(ctx, http.MethodPost, c.cfg.DataURL, c.cfg.Contract.RetrieveBody(appID, mToken))
	if err != nil {
		return models.CitizenRecord{}, failure.Upstream(failure.KindRetrieve, 0, nil, "build deproc request", err)
	}
	req.Header.Set(headerConsumerKey, c.cfg.ConsumerKey)
	req.Header.Set(headerToken, token)

	log.Printf("[DGA][DEPROC][START] app_id=%q contract=%s", appID, c.cfg.Contract.Version)
	ex, err := roundTrip(c.http, req)
	if err != nil {
		log.Printf("[DGA][DEPROC][ERR] transport: %v", err)
		return models.CitizenRecord{}, failure.Upstream(failure.KindRetrieve, ex.status, ex.raw, "Deproc request failed", err)
	}

	body, derr := decodeObject(ex.raw)
	code, hasCode := 0, false
	if derr == nil {
		code, hasCode = c.cfg.Contract.StatusCode(body)
	}
	if !ex.ok() || !hasCode || code != c.cfg.Contract.SuccessCode {
		log.Printf("[DGA][DEPROC][ERR] status=%d message_code=%d", ex.status, code)
		return models.CitizenRecord{}, failure.Upstream(failure.KindRetrieve, ex.status, ex.raw,
			"Deproc API failed or returned non-200 code.", derr)
	}

	payload := c.cfg.Contract.Payload(body)
	obj, ok := payload.(map[string]any)
	if !ok {
		return models.CitizenRecord{}, schemaFailure(ex.status, payload, "citizen payload is not an object")
	}

	rec, missing := c.cfg.Contract.Citizen(obj)
	if len(missing) > 0 {
		names := make([]string, len(missing))
		for i, f := range missing {
			names[i] = string(f)
		}
		log.Printf("[DGA][DEPROC][ERR] payload missing fields=%v", names)
		return models.CitizenRecord{}, schemaFailure(ex.status, obj,
			"Unexpected data structure or missing required fields: "+strings.Join(names, ", "))
	}

	log.Printf("[DGA][DEPROC][OK] user_id=%q", rec.UserID)
	return rec, nil
}

// schemaFailure reports the raw payload so integrators can see what the
// provider actually sent.
func schemaFailure(status int, payload any, msg string) *failure.Failure {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = []byte(fmt.Sprintf("%q", fmt.Sprint(payload)))
	}
	return failure.Upstream(failure.KindSchema, status, raw, msg, nil)
}
