package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/nkiryanov/triply/internal/models"
	"github.com/nkiryanov/triply/internal/validate"
)

const documentsPrefix = "/api/v1/documents/"

type DocumentsClient struct {
	c *Client
}

func (d *DocumentsClient) List(ctx context.Context, trip models.ID) (models.Page[models.Document], error) {
	var page models.Page[models.Document]
	err := d.c.doJSON(ctx, http.MethodGet, documentsPrefix, filter("trip", trip), nil, &page)
	return page, err
}

// Upload sends document as multipart form
// Body is fully buffered so it can be replayed after token refresh
func (d *DocumentsClient) Upload(ctx context.Context, in models.DocumentUpload) (models.Document, error) {
	var doc models.Document
	if err := validate.Struct(in); err != nil {
		return doc, err
	}
	if in.DocumentType == "" {
		in.DocumentType = "other"
	}

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	fields := [][2]string{
		{"trip", in.Trip.String()},
		{"title", in.Title},
		{"document_type", in.DocumentType},
	}
	if in.Description != "" {
		fields = append(fields, [2]string{"description", in.Description})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return doc, fmt.Errorf("error while writing form. Err: %w", err)
		}
	}

	part, err := w.CreateFormFile("file", in.FileName)
	if err != nil {
		return doc, fmt.Errorf("error while writing form. Err: %w", err)
	}
	if _, err := part.Write(in.Content); err != nil {
		return doc, fmt.Errorf("error while writing form. Err: %w", err)
	}
	if err := w.Close(); err != nil {
		return doc, fmt.Errorf("error while writing form. Err: %w", err)
	}

	req, err := d.c.newRequest(ctx, http.MethodPost, documentsPrefix, nil, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return doc, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	err = d.c.send(req, &doc)
	return doc, err
}

// DeleteFile removes the stored file together with the document
func (d *DocumentsClient) DeleteFile(ctx context.Context, id models.ID) error {
	return d.c.doJSON(ctx, http.MethodDelete, idPath(documentsPrefix, id, "delete_file"), nil, nil, nil)
}
