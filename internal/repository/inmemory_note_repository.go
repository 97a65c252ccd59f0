package repository

import (
	"context"
	"regexp"
	"sort"
	"sync"

	"github.com/google/uuid"

	"notes-app-be/internal/constant"
	"notes-app-be/internal/entity"
	"notes-app-be/internal/pkg/serverutils"
	"notes-app-be/pkg/database"
)

// InMemoryNoteRepository implements INoteRepository with the same listing and
// statistics semantics as the SQL repository. It backs the test suites and is
// usable for local runs without a database.
type InMemoryNoteRepository struct {
	mu    sync.RWMutex
	notes map[uuid.UUID]*entity.Note
}

func NewInMemoryNoteRepository() *InMemoryNoteRepository {
	return &InMemoryNoteRepository{notes: make(map[uuid.UUID]*entity.Note)}
}

// UsingTx returns the repository itself: the in-memory store has no
// transactions, each operation is atomic under the lock.
func (r *InMemoryNoteRepository) UsingTx(ctx context.Context, tx database.DatabaseQueryer) INoteRepository {
	return r
}

func (r *InMemoryNoteRepository) Create(ctx context.Context, note *entity.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notes[note.Id] = cloneNote(note)
	return nil
}

func (r *InMemoryNoteRepository) GetById(ctx context.Context, ownerId string, id uuid.UUID) (*entity.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	note, ok := r.notes[id]
	if !ok || note.OwnerId != ownerId {
		return nil, serverutils.ErrNotFound
	}
	return cloneNote(note), nil
}

func (r *InMemoryNoteRepository) Update(ctx context.Context, note *entity.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.notes[note.Id]
	if !ok || existing.OwnerId != note.OwnerId {
		return serverutils.ErrNotFound
	}
	r.notes[note.Id] = cloneNote(note)
	return nil
}

func (r *InMemoryNoteRepository) DeleteById(ctx context.Context, ownerId string, id uuid.UUID) (*entity.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	note, ok := r.notes[id]
	if !ok || note.OwnerId != ownerId {
		return nil, serverutils.ErrNotFound
	}
	delete(r.notes, id)
	return note, nil
}

func (r *InMemoryNoteRepository) List(ctx context.Context, ownerId string, filter ListNotesFilter) (*ListNotesResult, error) {
	filter.Normalize()

	var searchRe *regexp.Regexp
	if filter.Search != "" {
		// QuoteMeta keeps the term a literal substring, matching the SQL
		// repository's escaped ILIKE.
		searchRe = regexp.MustCompile("(?i)" + regexp.QuoteMeta(filter.Search))
	}

	r.mu.RLock()
	matched := make([]*entity.Note, 0)
	for _, note := range r.notes {
		if note.OwnerId != ownerId {
			continue
		}
		if searchRe != nil && !searchRe.MatchString(note.Title) && !searchRe.MatchString(note.Content) {
			continue
		}
		if filter.Category != "" && filter.Category != constant.CategoryAll && note.Category != filter.Category {
			continue
		}
		if filter.From != nil && note.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && note.CreatedAt.After(*filter.To) {
			continue
		}
		matched = append(matched, cloneNote(note))
	}
	r.mu.RUnlock()

	switch filter.Sort {
	case constant.SortOldest:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		})
	case constant.SortCategory:
		sort.SliceStable(matched, func(i, j int) bool {
			if matched[i].Category != matched[j].Category {
				return matched[i].Category < matched[j].Category
			}
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		})
	default:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		})
	}

	total := len(matched)
	start := filter.Offset()
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}

	return &ListNotesResult{Items: matched[start:end], Total: total}, nil
}

func (r *InMemoryNoteRepository) Statistics(ctx context.Context, ownerId string) (*NoteStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats NoteStats
	for _, note := range r.notes {
		if note.OwnerId != ownerId {
			continue
		}
		stats.TotalNotes++
		switch note.Category {
		case constant.CategoryTravail:
			stats.Travail++
		case constant.CategoryPersonnel:
			stats.Personnel++
		case constant.CategoryUrgent:
			stats.Urgent++
		}
		if note.Attachment != nil && note.Attachment.Url != "" {
			stats.WithAttachments++
		}
		if stats.LastUpdated == nil || note.UpdatedAt.After(*stats.LastUpdated) {
			updated := note.UpdatedAt
			stats.LastUpdated = &updated
		}
	}

	return &stats, nil
}

func cloneNote(note *entity.Note) *entity.Note {
	clone := *note
	if note.Attachment != nil {
		attachment := *note.Attachment
		clone.Attachment = &attachment
	}
	return &clone
}
