package main

import (
	"net/http"
	"strings"

	"inbound/backfill"
	"inbound/label"
	"inbound/loader"
	"inbound/report"
	"inbound/units"
	"inbound/verification"
)

func SetupRoutes(mux *http.ServeMux, a *app) {
	mux.HandleFunc("GET /api/skids/{id}", verification.GetSkidHandler(a.envs))
	mux.HandleFunc("GET /api/items", verification.GetItemDetailsHandler(a.envs))
	mux.HandleFunc("POST /api/verifications", verification.RecordHandler(a.envs, a.recorder))

	mux.HandleFunc("POST /api/labels", label.RenderHandler(a.envs, a.labels))
	mux.HandleFunc("POST /api/reports/verification", report.GenerateHandler(a.envs, a.reports))

	mux.HandleFunc("POST /api/backfill/project", backfill.ProjectHandler(a.envs))
	mux.HandleFunc("POST /api/import", loader.UploadHandler(a.envs))

	mux.HandleFunc("GET /api/units/aliases", units.AliasesHandler())

	mux.HandleFunc("/api/config", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			GetConfigHandler()(w, r)
		case http.MethodPost:
			SaveConfigHandler()(w, r)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	// Rendered labels and reports, when they are kept on local disk.
	base := strings.Trim(a.cfg.Storage.BaseURL, "/")
	if strings.EqualFold(a.cfg.Storage.Provider, "local") && base != "" && !strings.Contains(base, "://") {
		prefix := "/" + base + "/"
		mux.Handle(prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(a.cfg.Storage.LocalRoot))))
	}
}
