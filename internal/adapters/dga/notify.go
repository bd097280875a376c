package dga

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"dga_gateway/internal/failure"
	"dga_gateway/internal/models"
)

// DefaultNotificationMessage is sent when the caller gives no message.
const DefaultNotificationMessage = "ทดสอบข้อความ"

type notifyItem struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type notifyBody struct {
	AppID        string       `json:"appId"`
	Data         []notifyItem `json:"data"`
	SendDateTime *string      `json:"sendDateTime"`
}

// NotifyClient pushes a message to a citizen through the DGA notification
// service, using a token obtained earlier by the caller.
type NotifyClient struct {
	cfg      Config
	http     *http.Client
	observer Observer
}

func NewNotifyClient(cfg Config, cli *http.Client, obs Observer) *NotifyClient {
	if cli == nil {
		cli = NewHTTPClient(cfg.Timeout)
	}
	if obs == nil {
		obs = nopObserver{}
	}
	return &NotifyClient{cfg: cfg, http: cli, observer: obs}
}

// Notify returns the provider's decoded response body on success.
func (c *NotifyClient) Notify(ctx context.Context, n models.Notification) (result any, err error) {
	n.Token, n.AppID, n.UserID = strings.TrimSpace(n.Token), strings.TrimSpace(n.AppID), strings.TrimSpace(n.UserID)
	if n.AppID == "" || n.UserID == "" || n.Token == "" {
		return nil, failure.Validation("Missing appId, userId, or token")
	}

	start := time.Now()
	defer func() { c.observer.ObserveUpstream("notification", outcome(err), time.Since(start)) }()

	msg := n.Message
	if strings.TrimSpace(msg) == "" {
		msg = DefaultNotificationMessage
	}
	sendAt := n.SendDateTime
	if sendAt != nil && strings.TrimSpace(*sendAt) == "" {
		sendAt = nil
	}

	body := notifyBody{
		AppID:        n.AppID,
		Data:         []notifyItem{{Message: msg, UserID: n.UserID}},
		SendDateTime: sendAt,
	}

	req, err := newJSONRequest(ctx, http.MethodPost, c.cfg.NotifyURL, body)
	if err != nil {
		return nil, failure.Upstream(failure.KindNotify, 0, nil, "build notification request", err)
	}
	req.Header.Set(headerConsumerKey, c.cfg.ConsumerKey)
	req.Header.Set(headerToken, n.Token)

	log.Printf("[DGA][NOTI][START] app_id=%q user_id=%q scheduled=%t", n.AppID, n.UserID, sendAt != nil)
	ex, err := roundTrip(c.http, req)
	if err != nil {
		log.Printf("[DGA][NOTI][ERR] transport: %v", err)
		return nil, failure.Upstream(failure.KindNotify, ex.status, ex.raw, "notification request failed", err)
	}
	if !ex.ok() {
		log.Printf("[DGA][NOTI][ERR] status=%d", ex.status)
		return nil, failure.Upstream(failure.KindNotify, ex.status, ex.raw, "notification rejected by provider", nil)
	}

	log.Printf("[DGA][NOTI][OK] status=%d", ex.status)
	return decodeAny(ex.raw), nil
}
