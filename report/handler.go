package report

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

// GenerateHandler serves POST /api/reports/verification.
func GenerateHandler(envs appctx.Factory, svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSONError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		env := envs.FromRequest(r)
		res, err := svc.Generate(r.Context(), env, req)
		if err != nil {
			env.Log().Error("report failed", zap.Error(err))
			writeJSONError(w, err.Error(), apperrors.HTTPStatus(err))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(res)
	}
}
