package handlers

import "net/http"

// EnvConfig exposes the non-secret DGA identifiers for front-end diagnostics.
func (h *Handlers) EnvConfig(w http.ResponseWriter, _ *http.Request) {
	h.JSON(w, http.StatusOK, map[string]string{
		"AGENT_ID":     h.AgentID,
		"CONSUMER_KEY": h.ConsumerKey,
	})
}
