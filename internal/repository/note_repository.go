package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"notes-app-be/internal/constant"
	"notes-app-be/internal/entity"
	"notes-app-be/internal/pkg/serverutils"
	"notes-app-be/pkg/database"
)

// ListNotesFilter is the owner-scoped listing query. Search is always a
// literal substring, never a pattern.
type ListNotesFilter struct {
	Search   string
	Category string
	From     *time.Time
	To       *time.Time
	Sort     string
	Page     int
	Limit    int
}

// Normalize clamps page and limit instead of rejecting them and falls back to
// the default sort for unknown keys.
func (f *ListNotesFilter) Normalize() {
	if f.Page < 1 {
		f.Page = constant.DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = constant.DefaultLimit
	}
	if f.Limit > constant.MaxLimit {
		f.Limit = constant.MaxLimit
	}
	switch f.Sort {
	case constant.SortLatest, constant.SortOldest, constant.SortCategory:
	default:
		f.Sort = constant.DefaultSort
	}
}

func (f ListNotesFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type ListNotesResult struct {
	Items []*entity.Note
	Total int
}

func (r ListNotesResult) HasMore(f ListNotesFilter) bool {
	return f.Offset()+len(r.Items) < r.Total
}

type NoteStats struct {
	TotalNotes      int
	Travail         int
	Personnel       int
	Urgent          int
	WithAttachments int
	LastUpdated     *time.Time
}

type INoteRepository interface {
	UsingTx(ctx context.Context, tx database.DatabaseQueryer) INoteRepository
	Create(ctx context.Context, note *entity.Note) error
	GetById(ctx context.Context, ownerId string, id uuid.UUID) (*entity.Note, error)
	Update(ctx context.Context, note *entity.Note) error
	DeleteById(ctx context.Context, ownerId string, id uuid.UUID) (*entity.Note, error)
	List(ctx context.Context, ownerId string, filter ListNotesFilter) (*ListNotesResult, error)
	Statistics(ctx context.Context, ownerId string) (*NoteStats, error)
}

type noteRepository struct {
	db database.DatabaseQueryer
}

func NewNoteRepository(db *pgxpool.Pool) INoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) UsingTx(ctx context.Context, tx database.DatabaseQueryer) INoteRepository {
	return &noteRepository{db: tx}
}

const noteColumns = `id, owner_id, title, content, category,
	attachment_original_name, attachment_stored_name, attachment_url,
	attachment_mime_type, attachment_size_bytes, created_at, updated_at`

func (r *noteRepository) Create(ctx context.Context, note *entity.Note) error {
	var origName, storedName, url, mimeType *string
	var sizeBytes *int64
	if note.Attachment != nil {
		origName = &note.Attachment.OriginalName
		storedName = &note.Attachment.StoredName
		url = &note.Attachment.Url
		mimeType = &note.Attachment.MimeType
		sizeBytes = &note.Attachment.SizeBytes
	}

	_, err := r.db.Exec(
		ctx,
		`INSERT INTO note (`+noteColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		note.Id,
		note.OwnerId,
		note.Title,
		note.Content,
		note.Category,
		origName,
		storedName,
		url,
		mimeType,
		sizeBytes,
		note.CreatedAt,
		note.UpdatedAt,
	)
	return err
}

func (r *noteRepository) GetById(ctx context.Context, ownerId string, id uuid.UUID) (*entity.Note, error) {
	row := r.db.QueryRow(
		ctx,
		`SELECT `+noteColumns+` FROM note WHERE id = $1 AND owner_id = $2`,
		id,
		ownerId,
	)

	note, err := scanNote(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, serverutils.ErrNotFound
		}
		return nil, err
	}
	return note, nil
}

func (r *noteRepository) Update(ctx context.Context, note *entity.Note) error {
	var origName, storedName, url, mimeType *string
	var sizeBytes *int64
	if note.Attachment != nil {
		origName = &note.Attachment.OriginalName
		storedName = &note.Attachment.StoredName
		url = &note.Attachment.Url
		mimeType = &note.Attachment.MimeType
		sizeBytes = &note.Attachment.SizeBytes
	}

	tag, err := r.db.Exec(
		ctx,
		`UPDATE note
		 SET title = $3, content = $4, category = $5,
		     attachment_original_name = $6, attachment_stored_name = $7,
		     attachment_url = $8, attachment_mime_type = $9,
		     attachment_size_bytes = $10, updated_at = $11
		 WHERE id = $1 AND owner_id = $2`,
		note.Id,
		note.OwnerId,
		note.Title,
		note.Content,
		note.Category,
		origName,
		storedName,
		url,
		mimeType,
		sizeBytes,
		note.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return serverutils.ErrNotFound
	}
	return nil
}

func (r *noteRepository) DeleteById(ctx context.Context, ownerId string, id uuid.UUID) (*entity.Note, error) {
	row := r.db.QueryRow(
		ctx,
		`DELETE FROM note WHERE id = $1 AND owner_id = $2 RETURNING `+noteColumns,
		id,
		ownerId,
	)

	note, err := scanNote(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, serverutils.ErrNotFound
		}
		return nil, err
	}
	return note, nil
}

func (r *noteRepository) List(ctx context.Context, ownerId string, filter ListNotesFilter) (*ListNotesResult, error) {
	filter.Normalize()
	selectSQL, countSQL, args := buildListQuery(ownerId, filter)

	var total int
	if err := r.db.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, selectSQL, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*entity.Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, note)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &ListNotesResult{Items: items, Total: total}, nil
}

func (r *noteRepository) Statistics(ctx context.Context, ownerId string) (*NoteStats, error) {
	row := r.db.QueryRow(
		ctx,
		`SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE category = 'travail'),
			COUNT(*) FILTER (WHERE category = 'personnel'),
			COUNT(*) FILTER (WHERE category = 'urgent'),
			COUNT(*) FILTER (WHERE attachment_url IS NOT NULL),
			MAX(updated_at)
		 FROM note WHERE owner_id = $1`,
		ownerId,
	)

	var stats NoteStats
	err := row.Scan(
		&stats.TotalNotes,
		&stats.Travail,
		&stats.Personnel,
		&stats.Urgent,
		&stats.WithAttachments,
		&stats.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func scanNote(row pgx.Row) (*entity.Note, error) {
	var n entity.Note
	var origName, storedName, url, mimeType *string
	var sizeBytes *int64

	err := row.Scan(
		&n.Id,
		&n.OwnerId,
		&n.Title,
		&n.Content,
		&n.Category,
		&origName,
		&storedName,
		&url,
		&mimeType,
		&sizeBytes,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if storedName != nil {
		n.Attachment = &entity.Attachment{
			StoredName: *storedName,
		}
		if origName != nil {
			n.Attachment.OriginalName = *origName
		}
		if url != nil {
			n.Attachment.Url = *url
		}
		if mimeType != nil {
			n.Attachment.MimeType = *mimeType
		}
		if sizeBytes != nil {
			n.Attachment.SizeBytes = *sizeBytes
		}
	}

	return &n, nil
}
