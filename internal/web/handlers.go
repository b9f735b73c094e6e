package web

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/LinkSort/internal/core"
	"github.com/JonMunkholm/LinkSort/internal/export"
	"github.com/JonMunkholm/LinkSort/internal/history"
	"github.com/JonMunkholm/LinkSort/internal/logging"
	"github.com/JonMunkholm/LinkSort/internal/render"
	"github.com/JonMunkholm/LinkSort/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

const (
	// multipartMemory is how much of an upload is buffered in memory before
	// spilling to a temp file.
	multipartMemory = 8 << 20

	// multipartOverhead allows for form boundaries and headers on top of the file.
	multipartOverhead = 1 << 20
)

// reportResponse is the JSON shape of a processed report.
type reportResponse struct {
	ReportID  string                `json:"report_id"`
	FileName  string                `json:"file_name"`
	Kind      string                `json:"kind"`
	CreatedAt time.Time             `json:"created_at"`
	Counts    map[core.Platform]int `json:"counts"`
	Total     int                   `json:"total"`
	Rows      []core.Row            `json:"rows"`
}

func newReportResponse(rep *core.Report) reportResponse {
	return reportResponse{
		ReportID:  rep.ID,
		FileName:  rep.FileName,
		Kind:      rep.Kind.String(),
		CreatedAt: rep.CreatedAt,
		Counts:    rep.Result.Counts(),
		Total:     rep.Result.Total(),
		Rows:      rep.Result.Rows(),
	}
}

// handlePage renders the upload form and the session's current report.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, nil)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, errMsg *core.UserMessage) {
	data := templates.PageData{
		Error:       errMsg,
		MaxFileSize: s.cfg.Upload.MaxFileSize,
		History:     s.history != nil,
	}
	if rep, err := s.service.Current(core.SessionIDFromContext(r.Context())); err == nil {
		data.Report = rep
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.Page(data).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "error", err)
	}
}

// handleUpload runs the pipeline on the posted file and redirects back to the
// page. Unsupported files leave the page unchanged.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, kind, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	defer file.Close()

	sid := core.SessionIDFromContext(r.Context())
	if _, err := s.service.ProcessKind(r.Context(), sid, header.Filename, kind, file); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleReset drops the session's report so a new file can be uploaded.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.service.Reset(core.SessionIDFromContext(r.Context()))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleExport downloads the session's current report.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	rep, err := s.service.Current(core.SessionIDFromContext(r.Context()))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	s.writeExport(w, r, format, rep.Result)
}

// handleProcess is the JSON variant of handleUpload.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	file, header, kind, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	defer file.Close()

	sid := core.SessionIDFromContext(r.Context())
	rep, err := s.service.ProcessKind(r.Context(), sid, header.Filename, kind, file)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if rep == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, r, http.StatusOK, newReportResponse(rep))
}

// handleReport returns the session's current report as JSON.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.service.Current(core.SessionIDFromContext(r.Context()))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, r, http.StatusOK, newReportResponse(rep))
}

// handleRederive reads a rendered table from the request body and returns it
// encoded in the requested format.
func (s *Server) handleRederive(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	body := http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)
	rows, err := render.ParseTable(body)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	s.writeExport(w, r, format, core.ResultFromRows(rows))
}

// handleHistory lists recent processing runs.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.respondError(w, r, history.ErrDisabled, http.StatusNotFound)
		return
	}

	limit := parseIntParam(r, "limit", s.cfg.Database.HistoryLimit)
	if limit > s.cfg.Database.HistoryLimit {
		limit = s.cfg.Database.HistoryLimit
	}

	entries, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"entries": entries})
}

// handleHealth reports liveness and upload capacity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	hist := "disabled"
	if s.history != nil {
		hist = "ok"
		if err := s.history.Ping(r.Context()); err != nil {
			logging.FromContext(r.Context()).Warn("history ping failed", "error", err)
			hist = "unavailable"
		}
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.service.Sessions(),
		"uploads":  s.service.UploadLimiterStatus(),
		"history":  hist,
	})
}

// readUpload parses the multipart form and returns the "file" part with its
// Kind. The caller closes the file.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, core.Kind, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, nil, core.KindUnsupported, err
		}
		return nil, nil, core.KindUnsupported, fmt.Errorf("%w: %w", errInvalidForm, err)
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, core.KindUnsupported, errNoFile
	}
	if err != nil {
		return nil, nil, core.KindUnsupported, fmt.Errorf("%w: %w", errInvalidForm, err)
	}
	if header.Size > maxSize {
		file.Close()
		return nil, nil, core.KindUnsupported, &http.MaxBytesError{Limit: maxSize}
	}

	return file, header, uploadKind(header), nil
}

// uploadKind resolves the Kind from the part's declared Content-Type. Only a
// missing or generic binary type falls back to the file extension.
func uploadKind(header *multipart.FileHeader) core.Kind {
	ct := header.Header.Get("Content-Type")
	if kind := core.KindFromMediaType(ct); kind != core.KindUnsupported {
		return kind
	}

	mt, _, err := mime.ParseMediaType(ct)
	if ct == "" || (err == nil && mt == "application/octet-stream") {
		return core.KindFromFilename(header.Filename)
	}
	return core.KindUnsupported
}

// writeExport encodes res into memory first so encoder failures still produce
// a proper error response.
func (s *Server) writeExport(w http.ResponseWriter, r *http.Request, format export.Format, res *core.Result) {
	var buf bytes.Buffer
	opts := export.ReportOptions{Title: s.cfg.Export.ReportTitle}
	if err := export.Write(&buf, format, res, opts); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": format.FileName()}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logging.FromContext(r.Context()).Warn("export write interrupted", "format", format, "error", err)
	}
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
