package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"go.uber.org/zap"

	"inbound/config"
)

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// GetConfigHandler returns the current config. Credentials are never
// serialized.
func GetConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := config.GetConfig()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(cfg)
	}
}

// SaveConfigHandler validates and persists a new config. Changes apply on
// the next start.
func SaveConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var newCfg config.Config
		if err := json.NewDecoder(r.Body).Decode(&newCfg); err != nil {
			writeJSONError(w, "invalid request body", http.StatusBadRequest)
			return
		}

		if err := newCfg.Validate(); err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if newCfg.Storage.Provider == "local" {
			if err := validateFolderPath(newCfg.Storage.LocalRoot); err != nil {
				writeJSONError(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		if newCfg.UOMAliasFile != "" {
			if _, err := os.Stat(newCfg.UOMAliasFile); err != nil {
				writeJSONError(w, "UOM alias file not found: "+newCfg.UOMAliasFile, http.StatusBadRequest)
				return
			}
		}

		if err := config.SaveConfig(newCfg); err != nil {
			if logger != nil {
				logger.Error("saving config failed", zap.Error(err))
			}
			writeJSONError(w, "failed to save config", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Config saved. Restart to apply."})
	}
}

func validateFolderPath(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.New("folder not found: " + path)
		}
		return errors.New("could not check folder: " + path)
	}
	if !info.IsDir() {
		return errors.New("path is not a folder: " + path)
	}
	return nil
}
