package dto

// RetireAttachmentMessage asks the janitor to delete a blob that is no longer
// referenced by any note.
type RetireAttachmentMessage struct {
	StoredName string `json:"stored_name"`
}
