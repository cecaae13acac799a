package label

import (
	"encoding/json"
	"net/http"

	"inbound/appctx"
	"inbound/model"
)

type renderRequest struct {
	Boxes []model.Box `json:"boxes"`
}

// RenderHandler serves POST /api/labels. The body is {"boxes": [...]};
// render failures come back as 200 with success=false.
func RenderHandler(envs appctx.Factory, svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		var req renderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"message": "invalid request body: " + err.Error()})
			return
		}
		env := envs.FromRequest(r)
		res := svc.RenderBoxLabels(r.Context(), env, req.Boxes)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(res)
	}
}
