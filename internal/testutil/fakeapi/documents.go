package fakeapi

import (
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/triply/internal/models"
)

const maxUploadSize = 10 << 20

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		renderFields(w, map[string][]string{"file": {"No file was submitted."}})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		renderFields(w, map[string][]string{"file": {"No file was submitted."}})
		return
	}
	defer file.Close() // nolint:errcheck

	size, err := io.Copy(io.Discard, file)
	if err != nil {
		renderDetail(w, "Failed to read file", http.StatusBadRequest)
		return
	}

	doc := models.Document{
		ID:           models.ID(uuid.NewString()),
		Trip:         models.ID(r.FormValue("trip")),
		Title:        r.FormValue("title"),
		DocumentType: r.FormValue("document_type"),
		Description:  r.FormValue("description"),
		File:         "/media/documents/" + header.Filename,
		FileSize:     size,
		UploadedAt:   time.Now().UTC(),
	}

	jsonWithStatus(w, doc, http.StatusCreated)
}
