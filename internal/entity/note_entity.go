package entity

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
	Id         uuid.UUID
	OwnerId    string
	Title      string
	Content    string
	Category   string
	Attachment *Attachment
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Attachment is the single optional blob reference a note carries. StoredName
// identifies the blob in storage and is never reused.
type Attachment struct {
	OriginalName string
	StoredName   string
	Url          string
	MimeType     string
	SizeBytes    int64
}
