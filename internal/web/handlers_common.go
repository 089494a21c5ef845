package web

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/DataSweeper/internal/codec"
	"github.com/JonMunkholm/DataSweeper/internal/core"
	"github.com/JonMunkholm/DataSweeper/internal/logging"
	"github.com/JonMunkholm/DataSweeper/internal/web/templates"
)

const (
	// multipartMemory is how much of a multipart body is kept in memory;
	// the rest spills to temporary files.
	multipartMemory = 32 << 20

	// maxFormBody bounds non-upload request bodies.
	maxFormBody = 1 << 20

	// uploadField is the multipart field carrying files.
	uploadField = "files"
)

// sessionID returns the {id} URL parameter.
func sessionID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// isTooLarge reports whether err came from http.MaxBytesReader.
func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large")
}

// parseUploads reads a multipart upload and returns one core.Upload per file.
func (s *Server) parseUploads(w http.ResponseWriter, r *http.Request) ([]core.Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isTooLarge(err) {
			return nil, fmt.Errorf("file too large: %w", err)
		}
		return nil, fmt.Errorf("%w: invalid multipart form: %w", core.ErrInvalidRequest, err)
	}

	headers := r.MultipartForm.File[uploadField]
	uploads := make([]core.Upload, 0, len(headers))
	for _, fh := range headers {
		uploads = append(uploads, core.Upload{
			Name: filepath.Base(fh.Filename),
			Open: openPart(fh),
		})
	}
	return uploads, nil
}

func openPart(fh *multipart.FileHeader) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		return f, nil
	}
}

// cleanupMultipart removes temporary files left by ParseMultipartForm.
func cleanupMultipart(r *http.Request) {
	if r.MultipartForm == nil {
		return
	}
	if err := r.MultipartForm.RemoveAll(); err != nil {
		logging.FromContext(r.Context()).Warn("remove multipart temp files", "error", err)
	}
}

// renderPage writes a full HTML page.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, title string, body ...templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.Page(title, body...).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "error", err)
	}
}

func (s *Server) uploadForm() templ.Component {
	return templates.UploadForm(s.cfg.Upload.MaxFiles, s.cfg.Upload.MaxFileSize)
}

// handleDownload serves the projected table of a session as a file.
// Shared by the page and API routes.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	req := exportRequest{Format: r.URL.Query().Get("format")}
	if err := s.validate.Struct(req); err != nil {
		s.respondError(w, r, err)
		return
	}

	format, err := codec.ParseFormat(req.Format)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	artifact, err := s.service.Export(r.Context(), sessionID(r), format)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", artifact.MIMEType)
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": artifact.FileName}))
	http.ServeContent(w, r, artifact.FileName, time.Time{}, artifact.Data)
}
