package http

import (
	"encoding/json"
	stdhttp "net/http"
)

// HealthHandler reports liveness. It answers before any dependency is
// consulted so a wedged process is distinguishable from a slow database.
func HealthHandler(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(stdhttp.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "service": "checkout"})
}
