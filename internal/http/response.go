package http

import (
	"net/http"

	"nahio/backend/internal/httpjson"
)

// OK writes the success envelope with the payload merged in.
func OK(w http.ResponseWriter, status int, payload map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	httpjson.Write(w, status, body)
}

func Fail(w http.ResponseWriter, status int, msg string) {
	httpjson.Write(w, status, map[string]any{"success": false, "error": msg})
}
