package mw

import (
	"encoding/json"
	"net/http"
)

// writeMessage writes a {"message": ...} JSON body.
func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
