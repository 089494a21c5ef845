package web

// handlers_files.go serves the HTML pages: the upload form, the per-file
// panels and the cleaning actions. Every action re-renders the file's panel.

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/DataSweeper/internal/core"
	"github.com/JonMunkholm/DataSweeper/internal/web/templates"
)

const pageTitle = "DataSweeper"

// handleIndex renders the upload page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, pageTitle, s.uploadForm())
}

// handleUploadForm ingests a batch and renders one panel per file.
// Rejected files are shown inline; they do not fail the batch.
func (s *Server) handleUploadForm(w http.ResponseWriter, r *http.Request) {
	defer cleanupMultipart(r)

	uploads, err := s.parseUploads(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	results, err := s.service.IngestBatch(r.Context(), uploads)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	body := []templ.Component{s.uploadForm()}
	for _, res := range results {
		if res.Err != nil {
			msg := core.MapError(res.Err)
			body = append(body, templates.FileError(res.FileName, msg.Message, msg.Action, msg.Code))
			continue
		}
		body = append(body, templates.FilePanel(templates.Panel{Snapshot: res.Snapshot}))
	}

	s.renderPage(w, r, http.StatusOK, pageTitle, body...)
}

// handleFilePage renders one file's panel. ?chart=1 shows the bar chart.
func (s *Server) handleFilePage(w http.ResponseWriter, r *http.Request) {
	s.renderFile(w, r, "")
}

// handleDedupeForm removes duplicate rows.
func (s *Server) handleDedupeForm(w http.ResponseWriter, r *http.Request) {
	removed, err := s.service.RemoveDuplicates(r.Context(), sessionID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.renderFile(w, r, fmt.Sprintf("Removed %d duplicate rows.", removed))
}

// handleFillForm fills missing numeric values with column means.
func (s *Server) handleFillForm(w http.ResponseWriter, r *http.Request) {
	report, err := s.service.FillMissing(r.Context(), sessionID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	notice := fmt.Sprintf("Filled %d missing values.", report.Total())
	if len(report.Skipped) > 0 {
		notice += " Columns with no values were left empty: " + strings.Join(report.Skipped, ", ") + "."
	}
	s.renderFile(w, r, notice)
}

// handleColumnsForm sets the column selection from checked boxes.
// Submitting with nothing checked selects no columns.
func (s *Server) handleColumnsForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: invalid form: %w", core.ErrInvalidRequest, err))
		return
	}

	req := columnsRequest{Columns: r.PostForm["columns"]}
	if err := s.validate.Struct(req); err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.service.SelectColumns(r.Context(), sessionID(r), req.Columns); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.renderFile(w, r, fmt.Sprintf("Showing %d columns.", len(req.Columns)))
}

// renderFile renders the page of the session in the URL with an optional notice.
func (s *Server) renderFile(w http.ResponseWriter, r *http.Request, notice string) {
	id := sessionID(r)

	snap, err := s.service.Snapshot(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	panel := templates.Panel{Snapshot: snap, Notice: notice}
	if r.URL.Query().Get("chart") == "1" {
		chart, err := s.service.Chart(r.Context(), id)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		panel.Chart = &chart
	}

	s.renderPage(w, r, http.StatusOK, snap.FileName+" | "+pageTitle, s.uploadForm(), templates.FilePanel(panel))
}
