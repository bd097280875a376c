package handlers

import (
	"net/http"

	"dga_gateway/internal/failure"
	"dga_gateway/internal/models"
)

const (
	notifyOKMessage   = "ส่ง Notification สำเร็จ"
	notifyFailMessage = "เกิดข้อผิดพลาดในการส่ง Notification"
)

type notificationRequest struct {
	AppID        string  `json:"appId"`
	UserID       string  `json:"userId"`
	Token        string  `json:"token"`
	Message      string  `json:"message,omitempty"`
	SendDateTime *string `json:"sendDateTime,omitempty"`
}

func (h *Handlers) Notification(w http.ResponseWriter, r *http.Request) {
	var req notificationRequest
	if err := decode(w, r, &req); err != nil {
		h.Logger.Printf("[NOTIFY][REQ][ERR] bad JSON: %v", err)
		h.JSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "bad JSON: " + err.Error()})
		return
	}

	result, err := h.Pipeline.Notify(r.Context(), models.Notification{
		Token:        req.Token,
		AppID:        req.AppID,
		UserID:       req.UserID,
		Message:      req.Message,
		SendDateTime: req.SendDateTime,
	})
	if err != nil {
		h.Logger.Printf("[NOTIFY][ERR] user_id=%q %v", req.UserID, err)
		message, detail := notifyFailMessage, any(err.Error())
		if f, ok := failure.As(err); ok {
			if f.Kind == failure.KindValidation {
				message = f.Message
			}
			if f.Body != nil {
				detail = f.Body
			}
		}
		h.JSON(w, statusOf(err), map[string]any{
			"success": false,
			"message": message,
			"error":   detail,
		})
		return
	}

	h.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": notifyOKMessage,
		"result":  result,
	})
}
