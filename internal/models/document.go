package models

import (
	"time"
)

type Document struct {
	ID           ID        `json:"id"`
	Trip         ID        `json:"trip,omitempty"`
	Title        string    `json:"title"`
	DocumentType string    `json:"document_type"`
	File         string    `json:"file"`
	Description  string    `json:"description,omitempty"`
	FileSize     int64     `json:"file_size"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

type DocumentUpload struct {
	Trip         ID     `validate:"required"`
	Title        string `validate:"required,max=200"`
	DocumentType string `validate:"omitempty,oneof=passport visa ticket booking insurance other"`
	Description  string
	FileName     string `validate:"required"`
	Content      []byte `validate:"required,min=1"`
}
