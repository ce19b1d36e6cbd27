package webui

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// dashboardHandler serves the rider dashboard files from ./dashboard.
// Only whitelisted extensions are served and path traversal is rejected.
func (webUI *WebUI) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	fileName := filepath.Base(r.PathValue("file"))

	ext := strings.ToLower(filepath.Ext(fileName))
	allowedExtensions := map[string]bool{
		".html": true, ".css": true, ".js": true,
		".png": true, ".jpg": true, ".jpeg": true, ".svg": true,
		".ico": true,
	}
	if !allowedExtensions[ext] {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	if strings.Contains(fileName, "..") || strings.ContainsAny(fileName, `/\`) {
		http.Error(w, "Invalid file name", http.StatusBadRequest)
		return
	}

	filePath := filepath.Join(".", "dashboard", fileName)

	// Verify the resolved path is still within the dashboard directory
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	dashboardDir, err := filepath.Abs("./dashboard")
	if err != nil {
		http.Error(w, "Internal configuration error", http.StatusInternalServerError)
		return
	}
	rel, err := filepath.Rel(dashboardDir, absPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		slog.Warn("potential path traversal attempt blocked", "path", absPath)
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	stat, err := os.Stat(absPath)
	if err != nil || stat.IsDir() {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	http.ServeFile(w, r, absPath)
}
