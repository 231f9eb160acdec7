// Package models defines core data structures for documents, summaries, and compliance reports.
package models

// ExtractedDocument is the normalized text of one uploaded file. It is never persisted.
type ExtractedDocument struct {
	SourceName string `json:"source_name"`
	MIMEHint   string `json:"mime_hint,omitempty"`
	Text       string `json:"text"`
	SizeBytes  int64  `json:"size_bytes"`
}

// Chunk is a bounded slice of document text sent to the provider as one unit.
type Chunk struct {
	Index     int    `json:"index"`
	Text      string `json:"text"`
	SizeBound int    `json:"size_bound"`
}

// ChatMessage is one turn of a chatbot conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
