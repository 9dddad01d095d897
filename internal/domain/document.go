package domain

import "time"

// DocumentStatus refleja el avance del pipeline de ingesta externo.
type DocumentStatus string

const (
	DocumentPending    DocumentStatus = "PENDING"
	DocumentProcessing DocumentStatus = "PROCESSING"
	DocumentReady      DocumentStatus = "READY"
	DocumentFailed     DocumentStatus = "FAILED"
)

// Terminal indica si el documento ya no va a cambiar de estado.
func (s DocumentStatus) Terminal() bool {
	return s == DocumentReady || s == DocumentFailed
}

func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentPending, DocumentProcessing, DocumentReady, DocumentFailed:
		return true
	}
	return false
}

type Document struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	Name       string         `json:"name"`
	Status     DocumentStatus `json:"status"`
	PageCount  int            `json:"page_count,omitempty"`
	FailReason string         `json:"fail_reason,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
