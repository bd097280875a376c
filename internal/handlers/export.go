package handlers

import (
	"net/http"
	"strconv"

	"dga_gateway/internal/services/export"
)

func (h *Handlers) ExportCitizens(w http.ResponseWriter, r *http.Request) {
	if h.Export == nil {
		h.JSON(w, http.StatusServiceUnavailable, map[string]any{"success": false, "message": "export is disabled"})
		return
	}

	var limit int64
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			h.JSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	res, err := h.Export.Export(r.Context(), export.Request{Limit: limit})
	if err != nil {
		h.Logger.Printf("[EXPORT][ERR] %v", err)
		h.JSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "export failed", "error": err.Error()})
		return
	}

	h.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"path":    res.Path,
		"rows":    res.Rows,
	})
}
