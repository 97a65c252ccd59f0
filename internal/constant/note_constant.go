package constant

const (
	CategoryTravail   = "travail"
	CategoryPersonnel = "personnel"
	CategoryUrgent    = "urgent"

	// CategoryAll is the list-filter sentinel meaning "no category filter".
	// It is never a valid category on a note.
	CategoryAll = "all"

	DefaultCategory = CategoryPersonnel

	SortLatest   = "latest"
	SortOldest   = "oldest"
	SortCategory = "category"

	DefaultSort = SortLatest

	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 50

	MaxAttachmentSizeBytes = 5 * 1024 * 1024
)

var Categories = []string{CategoryTravail, CategoryPersonnel, CategoryUrgent}

var AllowedAttachmentMimeTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"application/pdf",
}

func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
