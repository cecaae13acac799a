package verification

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"inbound/apperrors"
	"inbound/appctx"
	"inbound/model"
	"inbound/resolver"
)

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// GetSkidHandler serves GET /api/skids/{id}.
func GetSkidHandler(envs appctx.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeJSONError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		env := envs.FromRequest(r)
		skidID := r.PathValue("id")
		if skidID == "" {
			skidID = strings.TrimPrefix(r.URL.Path, "/api/skids/")
		}
		info, err := resolver.ResolveSkidInfo(r.Context(), env, skidID)
		if err != nil {
			env.Log().Warn("skid lookup failed", zap.String("skid_id", skidID), zap.Error(err))
			writeJSONError(w, err.Error(), apperrors.HTTPStatus(err))
			return
		}
		writeJSON(w, info)
	}
}

// GetItemDetailsHandler serves GET /api/items?sku=&fbpn=.
func GetItemDetailsHandler(envs appctx.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeJSONError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		env := envs.FromRequest(r)
		q := r.URL.Query()
		details, err := resolver.ResolveItemDetails(r.Context(), env, q.Get("sku"), q.Get("fbpn"))
		if err != nil {
			env.Log().Error("item lookup failed", zap.Error(err))
			writeJSONError(w, err.Error(), apperrors.HTTPStatus(err))
			return
		}
		writeJSON(w, details)
	}
}

// RecordHandler serves POST /api/verifications.
func RecordHandler(envs appctx.Factory, rec *Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSONError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		var payload model.VerificationPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSONError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		env := envs.FromRequest(r)
		res, err := rec.Record(r.Context(), env, payload)
		if err != nil {
			env.Log().Error("verification failed", zap.String("skid_id", payload.SkidID), zap.Error(err))
			writeJSONError(w, err.Error(), apperrors.HTTPStatus(err))
			return
		}
		writeJSON(w, res)
	}
}
