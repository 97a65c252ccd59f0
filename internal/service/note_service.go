package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"notes-app-be/internal/constant"
	"notes-app-be/internal/dto"
	"notes-app-be/internal/entity"
	"notes-app-be/internal/pkg/serverutils"
	"notes-app-be/internal/repository"
	"notes-app-be/pkg/blobstore"
	"notes-app-be/pkg/sanitizer"
)

type INoteService interface {
	Create(ctx context.Context, ownerId string, req *dto.CreateNoteRequest, file *blobstore.IncomingFile) (*dto.NoteResponse, error)
	Show(ctx context.Context, ownerId string, id uuid.UUID) (*dto.NoteResponse, error)
	List(ctx context.Context, ownerId string, query *dto.ListNotesQuery) (*dto.ListNotesResponse, error)
	Update(ctx context.Context, ownerId string, id uuid.UUID, req *dto.UpdateNoteRequest, file *blobstore.IncomingFile) (*dto.NoteResponse, error)
	Delete(ctx context.Context, ownerId string, id uuid.UUID) error
	Statistics(ctx context.Context, ownerId string) (*dto.NoteStatsResponse, error)
}

type noteService struct {
	noteRepository   repository.INoteRepository
	store            blobstore.Store
	sanitizer        *sanitizer.Sanitizer
	publisherService IPublisherService
	log              zerolog.Logger
}

func NewNoteService(
	noteRepository repository.INoteRepository,
	store blobstore.Store,
	sanitizer *sanitizer.Sanitizer,
	publisherService IPublisherService,
	log zerolog.Logger,
) INoteService {
	return &noteService{
		noteRepository:   noteRepository,
		store:            store,
		sanitizer:        sanitizer,
		publisherService: publisherService,
		log:              log,
	}
}

func (s *noteService) Create(ctx context.Context, ownerId string, req *dto.CreateNoteRequest, file *blobstore.IncomingFile) (*dto.NoteResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, serverutils.ErrBadRequest
	}

	category := req.Category
	if category == "" {
		category = constant.DefaultCategory
	}
	if !constant.IsValidCategory(category) {
		return nil, serverutils.ErrBadRequest
	}

	// The attachment is stored before the note so the record never references
	// a blob that does not exist.
	var ref *blobstore.AttachmentRef
	if file != nil {
		stored, err := s.store.Store(ctx, *file)
		if err != nil {
			return nil, err
		}
		ref = stored
	}

	now := time.Now()
	note := &entity.Note{
		Id:        uuid.New(),
		OwnerId:   ownerId,
		Title:     title,
		Content:   s.sanitizer.Sanitize(req.Content),
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ref != nil {
		note.Attachment = toAttachmentEntity(ref)
	}

	if err := s.noteRepository.Create(ctx, note); err != nil {
		// The database write is the durability boundary. If it fails, the
		// just-stored blob is unreachable, so retire it before returning.
		if ref != nil {
			s.retireNow(ctx, ref.StoredName)
		}
		return nil, err
	}

	return toNoteResponse(note), nil
}

func (s *noteService) Show(ctx context.Context, ownerId string, id uuid.UUID) (*dto.NoteResponse, error) {
	note, err := s.noteRepository.GetById(ctx, ownerId, id)
	if err != nil {
		return nil, err
	}
	return toNoteResponse(note), nil
}

func (s *noteService) List(ctx context.Context, ownerId string, query *dto.ListNotesQuery) (*dto.ListNotesResponse, error) {
	filter := repository.ListNotesFilter{
		Search:   query.Search,
		Category: query.Category,
		Sort:     query.Sort,
		Page:     query.Page,
		Limit:    query.Limit,
	}

	if query.From != "" {
		from, err := time.Parse("2006-01-02", query.From)
		if err != nil {
			return nil, serverutils.ErrBadRequest
		}
		filter.From = &from
	}
	if query.To != "" {
		to, err := time.Parse("2006-01-02", query.To)
		if err != nil {
			return nil, serverutils.ErrBadRequest
		}
		filter.To = &to
	}

	filter.Normalize()

	result, err := s.noteRepository.List(ctx, ownerId, filter)
	if err != nil {
		return nil, err
	}

	notes := make([]*dto.NoteResponse, 0, len(result.Items))
	for _, note := range result.Items {
		notes = append(notes, toNoteResponse(note))
	}

	return &dto.ListNotesResponse{
		Notes: notes,
		Meta: dto.ListNotesMeta{
			Total:   result.Total,
			Page:    filter.Page,
			Limit:   filter.Limit,
			HasMore: result.HasMore(filter),
		},
	}, nil
}

func (s *noteService) Update(ctx context.Context, ownerId string, id uuid.UUID, req *dto.UpdateNoteRequest, file *blobstore.IncomingFile) (*dto.NoteResponse, error) {
	note, err := s.noteRepository.GetById(ctx, ownerId, id)
	if err != nil {
		return nil, err
	}

	// Store the new blob first, persist the reference, and only then retire
	// the old one. There is never a moment where neither copy is retrievable.
	var newRef *blobstore.AttachmentRef
	var previousStoredName string
	if file != nil {
		stored, err := s.store.Store(ctx, *file)
		if err != nil {
			return nil, err
		}
		newRef = stored

		if note.Attachment != nil {
			previousStoredName = note.Attachment.StoredName
		}
		note.Attachment = toAttachmentEntity(newRef)
	}

	if title := strings.TrimSpace(req.Title); title != "" {
		note.Title = title
	}
	if req.Content != nil {
		note.Content = s.sanitizer.Sanitize(*req.Content)
	}
	if req.Category != "" {
		if !constant.IsValidCategory(req.Category) {
			return nil, serverutils.ErrBadRequest
		}
		note.Category = req.Category
	}
	note.UpdatedAt = time.Now()

	if err := s.noteRepository.Update(ctx, note); err != nil {
		if newRef != nil {
			s.retireNow(ctx, newRef.StoredName)
		}
		return nil, err
	}

	if previousStoredName != "" {
		s.publishRetirement(ctx, previousStoredName)
	}

	return toNoteResponse(note), nil
}

func (s *noteService) Delete(ctx context.Context, ownerId string, id uuid.UUID) error {
	note, err := s.noteRepository.DeleteById(ctx, ownerId, id)
	if err != nil {
		return err
	}

	if note.Attachment != nil {
		s.publishRetirement(ctx, note.Attachment.StoredName)
	}

	return nil
}

func (s *noteService) Statistics(ctx context.Context, ownerId string) (*dto.NoteStatsResponse, error) {
	stats, err := s.noteRepository.Statistics(ctx, ownerId)
	if err != nil {
		return nil, err
	}

	return &dto.NoteStatsResponse{
		TotalNotes: stats.TotalNotes,
		Categories: dto.CategoryCounts{
			Travail:   stats.Travail,
			Personnel: stats.Personnel,
			Urgent:    stats.Urgent,
		},
		WithAttachments: stats.WithAttachments,
		LastUpdated:     stats.LastUpdated,
	}, nil
}

// publishRetirement hands a no-longer-referenced blob to the janitor.
// Retirement is best effort: a failure here is logged, never returned, since
// the database record has already changed.
func (s *noteService) publishRetirement(ctx context.Context, storedName string) {
	payload, err := json.Marshal(dto.RetireAttachmentMessage{StoredName: storedName})
	if err != nil {
		s.log.Error().Err(err).Str("stored_name", storedName).Msg("failed to marshal retirement message")
		return
	}

	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.log.Error().Err(err).Str("stored_name", storedName).Msg("failed to publish attachment retirement")
	}
}

// retireNow deletes a blob synchronously on the error path, before the error
// propagates, so a failed database write cannot leak an orphan blob.
func (s *noteService) retireNow(ctx context.Context, storedName string) {
	if err := s.store.Retire(ctx, storedName); err != nil {
		s.log.Error().Err(err).Str("stored_name", storedName).Msg("failed to retire orphaned attachment")
	}
}

func toAttachmentEntity(ref *blobstore.AttachmentRef) *entity.Attachment {
	return &entity.Attachment{
		OriginalName: ref.OriginalName,
		StoredName:   ref.StoredName,
		Url:          ref.Url,
		MimeType:     ref.MimeType,
		SizeBytes:    ref.SizeBytes,
	}
}

func toNoteResponse(note *entity.Note) *dto.NoteResponse {
	res := &dto.NoteResponse{
		Id:        note.Id,
		Title:     note.Title,
		Content:   note.Content,
		Category:  note.Category,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
	if note.Attachment != nil {
		res.Attachment = &dto.AttachmentResponse{
			Filename:   note.Attachment.OriginalName,
			StoredName: note.Attachment.StoredName,
			Url:        note.Attachment.Url,
			MimeType:   note.Attachment.MimeType,
			Size:       note.Attachment.SizeBytes,
		}
	}
	return res
}
