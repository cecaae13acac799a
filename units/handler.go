package units

import (
	"encoding/json"
	"net/http"
)

// AliasesHandler serves GET /api/units/aliases.
func AliasesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Aliases())
	}
}
