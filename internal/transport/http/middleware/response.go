package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type errorBody struct {
	Error string `json:"error"`
}

// writeUnauthorized rejects a request with a Bearer challenge and the same
// {"error": ...} body the handlers use.
func writeUnauthorized(w http.ResponseWriter, bearerError, msg string) {
	challenge := `Bearer realm="account"`
	if bearerError != "" {
		challenge += fmt.Sprintf(`, error=%q`, bearerError)
	}
	w.Header().Set("WWW-Authenticate", challenge)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(errorBody{Error: msg})
}
