package httpx

import (
	"fmt"
	"net/http"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteExport streams a spreadsheet blob as a browser download.
func WriteExport(w http.ResponseWriter, filename, contentType string, blob []byte) {
	if contentType == "" {
		contentType = xlsxContentType
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob)
}
