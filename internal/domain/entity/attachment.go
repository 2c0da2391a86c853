package entity

import "time"

// Attachment is file metadata carried inside the letter row.
type Attachment struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type,omitempty"`
	Size       int64  `json:"size,omitempty"`
	URL        string `json:"url,omitempty"`
	UploadedAt string `json:"uploadedAt,omitempty"`
}

// Signature is an image signature applied to an approved letter.
type Signature struct {
	ID               string    `json:"id"`
	SignedBy         UserRef   `json:"signedBy"`
	SignatureDataURL string    `json:"signatureDataUrl"`
	SignedAt         time.Time `json:"signedAt"`
}
