package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"airtraffic/statboard/internal/common"
	"airtraffic/statboard/internal/constants"
	"airtraffic/statboard/internal/frames"

	"github.com/go-gota/gota/dataframe"
)

// exportFormat returns the requested download format, "" for JSON.
func exportFormat(r *http.Request) (string, error) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	switch format {
	case "", "json":
		return "", nil
	case frames.FormatCSV, frames.FormatXLSX:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported format %q, expected csv or xlsx", format)
	}
}

// writeExport streams df as a file download. The body is buffered so an
// encoding failure can still be reported as JSON.
func writeExport(w http.ResponseWriter, initTime time.Time, df dataframe.DataFrame, name, format string) {
	var buf bytes.Buffer
	var err error
	contentType := frames.ContentTypeCSV
	switch format {
	case frames.FormatXLSX:
		contentType = frames.ContentTypeXLSX
		err = frames.WriteXLSX(&buf, df, name)
	default:
		err = frames.WriteCSV(&buf, df)
	}
	if err != nil {
		common.RespondError(w, initTime, err, constants.ErrCodeExportFailed, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+"."+format))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
