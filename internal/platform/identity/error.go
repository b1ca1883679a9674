package identity

import (
	"encoding/json"
	"net/http"
	"time"
)

type errorBody struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error:     message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
