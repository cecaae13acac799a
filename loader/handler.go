package loader

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"inbound/appctx"
	"inbound/model"
)

// ImportableTables are the tables CSV uploads may target.
var ImportableTables = map[string]bool{
	model.TableSkids:      true,
	model.TableStaging:    true,
	model.TableMasterLog:  true,
	model.TableItemMaster: true,
	model.TablePOMaster:   true,
}

func respondJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// UploadHandler serves POST /api/import: multipart "file" parts, a "table"
// field and an optional "encoding" field.
func UploadHandler(envs appctx.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondJSONError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			respondJSONError(w, "File upload error: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer r.MultipartForm.RemoveAll()

		table := r.FormValue("table")
		if !ImportableTables[table] {
			respondJSONError(w, "table cannot be imported: "+table, http.StatusBadRequest)
			return
		}
		encoding := r.FormValue("encoding")
		env := envs.FromRequest(r)

		var results []Summary
		for _, fileHeader := range r.MultipartForm.File["file"] {
			file, err := fileHeader.Open()
			if err != nil {
				respondJSONError(w, "open "+fileHeader.Filename+": "+err.Error(), http.StatusBadRequest)
				return
			}
			summary, err := Load(r.Context(), env, file, table, encoding)
			file.Close()
			if err != nil {
				env.Log().Error("csv import failed", zap.String("file", fileHeader.Filename), zap.Error(err))
				respondJSONError(w, fileHeader.Filename+": "+err.Error(), http.StatusInternalServerError)
				return
			}
			results = append(results, summary)
		}
		if len(results) == 0 {
			respondJSONError(w, "no file uploaded", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"results": results})
	}
}
