package handlers

import (
	"net/http"

	"dga_gateway/internal/failure"
	"dga_gateway/internal/services/pipeline"
)

const forbiddenMessage = "DGA rejected the credentials (403). Check the consumer key, consumer secret, agent id and the IP allow-list."

// Validate obtains a bearer token from the DGA auth service.
func (h *Handlers) Validate(w http.ResponseWriter, r *http.Request) {
	token, source, err := h.Pipeline.ObtainToken(r.Context())
	if err != nil {
		h.Logger.Printf("[VALIDATE][ERR] %v", err)
		status, message, detail := http.StatusInternalServerError, pipelineMessage(err), any(err.Error())
		if f, ok := failure.As(err); ok {
			status = f.HTTPStatus()
			if f.Forbidden() {
				message = forbiddenMessage
			}
			if f.Body != nil {
				detail = f.Body
			}
		}
		h.JSON(w, status, map[string]any{
			"success": false,
			"message": message,
			"error":   detail,
		})
		return
	}

	h.Logger.Printf("[VALIDATE][OK] source=%s", source)
	h.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   token,
		"agentId": h.AgentID,
	})
}

func pipelineMessage(err error) string {
	if f, ok := failure.As(err); ok && f.Message != "" {
		return f.Message
	}
	return pipeline.GeneralMessage
}
