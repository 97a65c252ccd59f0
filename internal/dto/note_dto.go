package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateNoteRequest struct {
	Title    string `json:"title" form:"title" validate:"required"`
	Content  string `json:"content" form:"content"`
	Category string `json:"category" form:"category" validate:"omitempty,oneof=travail personnel urgent"`
}

// UpdateNoteRequest carries a partial update: zero-value Title and Category
// and nil Content leave the stored fields untouched.
type UpdateNoteRequest struct {
	Title    string  `json:"title" form:"title"`
	Content  *string `json:"content" form:"content"`
	Category string  `json:"category" form:"category" validate:"omitempty,oneof=travail personnel urgent"`
}

type ListNotesQuery struct {
	Search   string `query:"search"`
	Category string `query:"category" validate:"omitempty,oneof=all travail personnel urgent"`
	From     string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To       string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	Sort     string `query:"sort" validate:"omitempty,oneof=latest oldest category"`
	Page     int    `query:"page"`
	Limit    int    `query:"limit"`
}

type AttachmentResponse struct {
	Filename   string `json:"filename"`
	StoredName string `json:"storedName"`
	Url        string `json:"url"`
	MimeType   string `json:"mimetype"`
	Size       int64  `json:"size"`
}

type NoteResponse struct {
	Id         uuid.UUID           `json:"id"`
	Title      string              `json:"title"`
	Content    string              `json:"content"`
	Category   string              `json:"category"`
	Attachment *AttachmentResponse `json:"attachment,omitempty"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

type NoteEnvelope struct {
	Note *NoteResponse `json:"note"`
}

type ListNotesMeta struct {
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"hasMore"`
}

type ListNotesResponse struct {
	Notes []*NoteResponse `json:"notes"`
	Meta  ListNotesMeta   `json:"meta"`
}

type CategoryCounts struct {
	Travail   int `json:"travail"`
	Personnel int `json:"personnel"`
	Urgent    int `json:"urgent"`
}

type NoteStatsResponse struct {
	TotalNotes      int            `json:"totalNotes"`
	Categories      CategoryCounts `json:"categories"`
	WithAttachments int            `json:"withAttachments"`
	LastUpdated     *time.Time     `json:"lastUpdated"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
