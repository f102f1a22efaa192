package utils

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorBody 错误响应的JSON结构
type ErrorBody struct {
	Error           string `json:"error"`
	Redirect        string `json:"redirect,omitempty"`
	UpgradeRequired bool   `json:"upgradeRequired,omitempty"`
}

// RespondJSON 发送JSON响应
func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("failed to encode response", "status", status, "error", err)
	}
}

// RespondError 发送错误响应
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorBody{Error: message})
}

// RespondRedirect 发送带跳转地址的错误响应
func RespondRedirect(w http.ResponseWriter, status int, message, redirect string) {
	RespondJSON(w, status, ErrorBody{Error: message, Redirect: redirect})
}

// DecodeJSON 解析JSON请求体，拒绝未知字段
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
