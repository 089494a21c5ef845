package web

// handlers_api.go serves the JSON API under /api. Responses use go-chi/render;
// errors go through respondError and carry a support code.

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"

	"github.com/JonMunkholm/DataSweeper/internal/core"
	"github.com/JonMunkholm/DataSweeper/internal/table"
)

// fileResult is one file of an upload response.
type fileResult struct {
	FileName string         `json:"file_name"`
	Snapshot *core.Snapshot `json:"snapshot,omitempty"`
	Error    *ErrorResponse `json:"error,omitempty"`
}

type uploadResponse struct {
	Files []fileResult `json:"files"`
}

type dedupeResponse struct {
	RowsRemoved int            `json:"rows_removed"`
	Snapshot    *core.Snapshot `json:"snapshot"`
}

type fillResponse struct {
	Report   table.FillReport `json:"report"`
	Snapshot *core.Snapshot   `json:"snapshot"`
}

// handleAPIUpload ingests a multipart batch. It answers 201 when at least one
// file was accepted; otherwise the status of the first failure.
func (s *Server) handleAPIUpload(w http.ResponseWriter, r *http.Request) {
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

	resp := uploadResponse{Files: make([]fileResult, len(results))}
	status := 0
	for i, res := range results {
		resp.Files[i] = fileResult{FileName: res.FileName, Snapshot: res.Snapshot}
		if res.Err != nil {
			er := newErrorResponse(core.MapError(res.Err))
			resp.Files[i].Error = &er
			if status == 0 {
				status = statusFor(res.Err)
			}
			continue
		}
		status = http.StatusCreated
	}

	render.Status(r, status)
	render.JSON(w, r, resp)
}

// handleAPISnapshot returns the session state.
func (s *Server) handleAPISnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.Snapshot(r.Context(), sessionID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, snap)
}

// handleAPIDedupe removes duplicate rows.
func (s *Server) handleAPIDedupe(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	removed, err := s.service.RemoveDuplicates(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	snap, err := s.service.Snapshot(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, dedupeResponse{RowsRemoved: removed, Snapshot: snap})
}

// handleAPIFill fills missing numeric values.
func (s *Server) handleAPIFill(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	report, err := s.service.FillMissing(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	snap, err := s.service.Snapshot(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, fillResponse{Report: report, Snapshot: snap})
}

// handleAPIColumns replaces the column selection.
func (s *Server) handleAPIColumns(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)

	var req columnsRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		if isTooLarge(err) {
			s.respondError(w, r, err)
			return
		}
		s.respondError(w, r, fmt.Errorf("%w: invalid JSON body: %w", core.ErrInvalidRequest, err))
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.respondError(w, r, err)
		return
	}

	id := sessionID(r)
	if err := s.service.SelectColumns(r.Context(), id, req.Columns); err != nil {
		s.respondError(w, r, err)
		return
	}

	snap, err := s.service.Snapshot(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, snap)
}

// handleAPIChart returns bar chart data of the projected table.
func (s *Server) handleAPIChart(w http.ResponseWriter, r *http.Request) {
	chart, err := s.service.Chart(r.Context(), sessionID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, chart)
}

// handleAPIDiscard drops a session.
func (s *Server) handleAPIDiscard(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Discard(r.Context(), sessionID(r)); err != nil {
		s.respondError(w, r, err)
		return
	}
	render.NoContent(w, r)
}
