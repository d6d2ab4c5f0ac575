package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/tooncsv/internal/pipeline"
	"github.com/dgallion1/tooncsv/internal/source"
	"github.com/dgallion1/tooncsv/internal/toon"
)

const defaultUploadName = "input.toon"

type convertResponse struct {
	Tables      map[string]string `json:"tables"`
	Diagnostics []toon.Diagnostic `json:"diagnostics"`
}

// handleConvert parses one document synchronously and returns the tables
// inline. The body is either a multipart form with a "file" part or the raw
// document, named by the filename query parameter.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	filename, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	conv, err := pipeline.Convert(s.orchestrator.Sources(), filename, data)
	if err != nil {
		s.convertError(w, filename, err)
		return
	}

	diags := conv.Doc.Diagnostics
	if diags == nil {
		diags = []toon.Diagnostic{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(convertResponse{Tables: conv.CSVs, Diagnostics: diags})
}

// readUpload returns the uploaded document. It writes the error response
// itself and reports false when the request is unusable.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var (
		filename string
		body     io.Reader
	)
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
			return "", nil, false
		}
		defer r.MultipartForm.RemoveAll()
		file, header, err := r.FormFile("file")
		if err != nil {
			jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
			return "", nil, false
		}
		defer file.Close()
		filename = header.Filename
		body = file
	} else {
		filename = r.URL.Query().Get("filename")
		if filename == "" {
			filename = defaultUploadName
		}
		body = r.Body
	}

	filename = sanitizeFilename(filename)
	if !source.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return "", nil, false
	}

	data, ok := s.readLimited(w, body)
	if !ok {
		return "", nil, false
	}
	return filename, data, true
}

func (s *Server) readLimited(w http.ResponseWriter, body io.Reader) ([]byte, bool) {
	data, err := io.ReadAll(io.LimitReader(body, s.cfg.MaxUploadBytes+1))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return nil, false
		}
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return nil, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return nil, false
	}
	return data, true
}

func (s *Server) convertError(w http.ResponseWriter, filename string, err error) {
	if !pipeline.IsInputError(err) {
		s.log.Error("conversion failed", "filename", filename, "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.log.Warn("rejected input", "filename", filename, "error", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	json.NewEncoder(w).Encode(map[string]any{
		"error": err.Error(),
		"line":  pipeline.ErrorLine(err),
	})
}

// formBool reads an optional boolean form or query value.
func formBool(r *http.Request, key string, fallback bool) bool {
	if v := r.FormValue(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
