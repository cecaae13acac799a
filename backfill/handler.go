package backfill

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"inbound/apperrors"
	"inbound/appctx"
)

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// ProjectHandler serves POST /api/backfill/project.
func ProjectHandler(envs appctx.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSONError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		env := envs.FromRequest(r)
		summary, err := ProjectFromPOMaster(r.Context(), env)
		if err != nil {
			env.Log().Error("project backfill failed", zap.Error(err))
			writeJSONError(w, err.Error(), apperrors.HTTPStatus(err))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(summary)
	}
}
