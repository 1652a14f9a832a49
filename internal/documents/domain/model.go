package domain

import (
	"errors"
	"time"
)

var (
	ErrNotFound            = errors.New("document not found")
	ErrFileRequired        = errors.New("a PDF file is required")
	ErrSubmissionsDisabled = errors.New("document submissions are disabled")
)

// Document is a published supporting PDF. DocumentLink holds the stored
// upload filename.
type Document struct {
	ID           string    `json:"document_id"`
	Category     string    `json:"category"`
	Heading      string    `json:"heading"`
	SubHeading   string    `json:"sub_heading"`
	Agency       string    `json:"agency"`
	DocumentSize string    `json:"document_size"`
	DocumentLink string    `json:"document_link"`
	CreatedAt    time.Time `json:"created_at"`
}

type PendingDocument struct {
	ID             string    `json:"document_id"`
	Category       string    `json:"category"`
	Heading        string    `json:"heading"`
	SubHeading     string    `json:"sub_heading"`
	Agency         string    `json:"agency"`
	DocumentSize   string    `json:"document_size"`
	DocumentLink   string    `json:"document_link"`
	SubmitterEmail string    `json:"submitter_email"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// Metadata is the editable part of a document.
type Metadata struct {
	Category   string
	Heading    string
	SubHeading string
	Agency     string
}

// File points a document at a stored upload.
type File struct {
	Link string
	Size string
}
