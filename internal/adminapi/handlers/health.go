package handlers

import "net/http"

// Health reports basic liveness; the process is up if this handles.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
