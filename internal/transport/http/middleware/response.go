package middleware

import (
	"encoding/json"
	"net/http"
)

// AccessDeniedView is the view name rendered when the principal's role
// does not permit a page.
const AccessDeniedView = "access-denied"

// writeJSONError writes a JSON-encoded error response with the correct Content-Type.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// WriteAccessDenied renders the access-denied view.
func WriteAccessDenied(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{"view": AccessDeniedView, "error": msg})
}
