package handlers

import (
	"net/http"

	"dga_gateway/internal/failure"
	"dga_gateway/internal/services/pipeline"
)

const (
	loginOKMessage        = "ดึงข้อมูลผู้ใช้สำเร็จและบันทึก DB แล้ว"
	loginNotStoredMessage = "ดึงข้อมูลผู้ใช้สำเร็จ แต่บันทึก DB ไม่สำเร็จ"
)

type loginRequest struct {
	AppID  string `json:"appId"`
	MToken string `json:"mToken"`
	Token  string `json:"token,omitempty"`
}

// Login exchanges an mToken for the citizen record and stores it.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		h.Logger.Printf("[LOGIN][REQ][ERR] bad JSON: %v", err)
		h.JSON(w, http.StatusBadRequest, map[string]any{
			"step":    pipeline.StageRetrieve,
			"ok":      false,
			"message": "bad JSON: " + err.Error(),
		})
		return
	}

	res := h.Pipeline.Login(r.Context(), pipeline.LoginInput{
		AppID:  req.AppID,
		MToken: req.MToken,
		Token:  req.Token,
	})
	if !res.Success {
		h.JSON(w, statusOf(res.Err), failureBody(res))
		return
	}

	message := loginOKMessage
	if !res.Persisted {
		message = loginNotStoredMessage
	}
	h.JSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   message,
		"user":      res.User,
		"persisted": res.Persisted,
	})
}

func failureBody(res pipeline.Result) map[string]any {
	body := map[string]any{
		"step":    res.Stage,
		"ok":      false,
		"message": pipelineMessage(res.Err),
	}
	f, ok := failure.As(res.Err)
	if ok && f.Body != nil {
		body["body"] = f.Body
	}
	if res.Stage == pipeline.StageGeneral && res.Err != nil {
		body["error"] = res.Err.Error()
	}
	return body
}

func statusOf(err error) int {
	if f, ok := failure.As(err); ok {
		return f.HTTPStatus()
	}
	return http.StatusInternalServerError
}
