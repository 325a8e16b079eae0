package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/oratohq/orato/internal/parser"
	"github.com/oratohq/orato/internal/registry"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleUpload accepts a multipart file upload, ingests it and returns the
// document id. Re-uploading a file with the same name reuses its id, so the
// index records are overwritten rather than duplicated.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading upload")
		return
	}

	name := filepath.Base(header.Filename)
	docID := uuid.NewString()
	if existing, err := s.registry.FindByFilename(name); err == nil {
		docID = existing.ID
	}

	stats, err := s.ingestor.IngestReader(r.Context(), bytes.NewReader(data), int64(len(data)), name, docID)
	switch {
	case errors.Is(err, parser.ErrUnsupportedFormat):
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
		return
	case errors.Is(err, parser.ErrParse):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		log.Printf("server: ingest %s: %v", name, err)
		writeError(w, http.StatusInternalServerError, "ingestion failed")
		return
	}

	doc := registry.Document{
		ID:         docID,
		Filename:   name,
		Owner:      r.FormValue("owner"),
		Collection: s.cfg.Collection,
		Chunks:     stats.Chunks,
	}
	if err := s.registry.Upsert(doc); err != nil {
		log.Printf("server: register %s: %v", name, err)
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":        docID,
		"filename":  name,
		"slides":    stats.Slides,
		"documents": stats.Documents,
		"chunks":    stats.Chunks,
	})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, _ *http.Request) {
	docs, err := s.registry.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing documents")
		return
	}

	type docJSON struct {
		ID        string `json:"id"`
		Filename  string `json:"filename"`
		Owner     string `json:"owner,omitempty"`
		Chunks    int    `json:"chunks"`
		CreatedAt string `json:"created_at"`
	}
	out := make([]docJSON, len(docs))
	for i, d := range docs {
		out[i] = docJSON{
			ID:        d.ID,
			Filename:  d.Filename,
			Owner:     d.Owner,
			Chunks:    d.Chunks,
			CreatedAt: d.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type queryRequest struct {
	Query string `json:"query"`
}

// handleQuery answers a free-text query. A no-match outcome is a normal
// 200 response with match=false, distinct from a 5xx retrieval failure.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		writeError(w, http.StatusBadRequest, "body must be {\"query\": \"...\"}")
		return
	}

	result, err := s.queries.Retrieve(r.Context(), req.Query)
	if err != nil {
		log.Printf("server: query %q: %v", req.Query, err)
		writeError(w, http.StatusInternalServerError, "retrieval failed")
		return
	}
	if result == nil {
		writeJSON(w, http.StatusOK, map[string]any{"match": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"match":  true,
		"result": result,
	})
}

// handleSpeechPush delivers a JSON payload to a connected websocket client,
// mirroring what an external speech channel would do.
func (s *Server) handleSpeechPush(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")

	var payload json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "body must be valid JSON")
		return
	}

	if err := s.hub.Send(clientID, payload); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}
