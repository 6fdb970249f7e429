package http

import (
	"log/slog"
	"net/http"

	"fintrack/internal/export"
	"fintrack/internal/period"
	"fintrack/internal/services"
)

// handleReport serves GET /api/report. Query parameters:
// granularity=week|month|year|custom (defaults to week, meaning the current
// week), value (week reference date, YYYY-MM, or YYYY), start/end for
// custom ranges.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing X-Owner-ID header"})
		return
	}

	res, err := s.reportForRequest(r, owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleReportExport serves GET /api/report/export?format=csv|json|pdf.
// It shares the report pipeline (and cache) with handleReport.
func (s *Server) handleReportExport(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing X-Owner-ID header"})
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = export.FormatJSON
	}

	res, err := s.reportForRequest(r, owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	data, contentType, err := export.Render(format, res)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="report.`+format+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.ErrorContext(r.Context(), "Failed to write export", "error", err, "format", format)
	}
}

// reportForRequest parses the period query parameters and returns the
// evaluated report, consulting the per-owner cache first.
func (s *Server) reportForRequest(r *http.Request, owner string) (res services.ReportResult, err error) {
	q := r.URL.Query()
	granularity := q.Get("granularity")
	value := q.Get("value")
	start := q.Get("start")
	end := q.Get("end")
	if granularity == "" {
		granularity = string(period.Week)
	}

	spec, err := period.ParseSpec(granularity, value, start, end)
	if err != nil {
		return res, err
	}

	key := s.reportCacheKey(owner, granularity, value, start, end)
	if cached, ok := s.reportCache.Get(key); ok {
		slog.DebugContext(r.Context(), "Report cache hit", "owner", owner)
		return cached, nil
	}

	res, err = s.reports.Generate(r.Context(), owner, spec)
	if err != nil {
		return res, err
	}

	s.reportCache.Set(key, res)
	return res, nil
}
