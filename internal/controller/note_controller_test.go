package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notes-app-be/internal/auth"
	"notes-app-be/internal/constant"
	"notes-app-be/internal/dto"
	"notes-app-be/internal/pkg/serverutils"
	"notes-app-be/internal/repository"
	"notes-app-be/internal/service"
	"notes-app-be/pkg/blobstore"
	"notes-app-be/pkg/sanitizer"
)

const testSecret = "controller-test-secret"

var pngBytes = append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 64)...)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	store, err := blobstore.NewDiskStore(t.TempDir(), "/uploads", blobstore.Limits{
		AllowedMimeTypes: constant.AllowedAttachmentMimeTypes,
		MaxSizeBytes:     constant.MaxAttachmentSizeBytes,
	})
	require.NoError(t, err)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { pubSub.Close() })

	svc := service.NewNoteService(
		repository.NewInMemoryNoteRepository(),
		store,
		sanitizer.New(),
		service.NewPublisherService("attachment.retire", pubSub),
		zerolog.Nop(),
	)

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(zerolog.Nop()))
	NewNoteController(svc, auth.NewMiddleware(testSecret)).RegisterRoutes(app.Group("/api"))
	return app
}

func bearerFor(t *testing.T, ownerId string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": ownerId,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(t *testing.T, app *fiber.App, method, target, ownerId string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	req.Header.Set(fiber.HeaderAuthorization, bearerFor(t, ownerId))

	res, err := app.Test(req, -1)
	require.NoError(t, err)
	return res
}

func decodeBody[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	defer res.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return out
}

func createNote(t *testing.T, app *fiber.App, ownerId string, req dto.CreateNoteRequest) *dto.NoteResponse {
	t.Helper()
	res := doJSON(t, app, http.MethodPost, "/api/v1/notes", ownerId, req)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	envelope := decodeBody[dto.NoteEnvelope](t, res)
	require.NotNil(t, envelope.Note)
	return envelope.Note
}

func TestCreateNoteEndpoint(t *testing.T) {
	app := newTestApp(t)

	note := createNote(t, app, "owner-a", dto.CreateNoteRequest{
		Title:   "  Courses  ",
		Content: "<p>lait</p><script>x</script>",
	})

	assert.Equal(t, "Courses", note.Title)
	assert.Equal(t, constant.CategoryPersonnel, note.Category)
	assert.NotContains(t, note.Content, "script")
	assert.Nil(t, note.Attachment)
}

func TestCreateNoteValidation(t *testing.T) {
	app := newTestApp(t)

	res := doJSON(t, app, http.MethodPost, "/api/v1/notes", "owner-a", dto.CreateNoteRequest{
		Content: "sans titre",
	})
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = doJSON(t, app, http.MethodPost, "/api/v1/notes", "owner-a", dto.CreateNoteRequest{
		Title:    "Titre",
		Category: "inconnu",
	})
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestCreateNoteRequiresAuth(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notes", nil)
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestCreateNoteWithMultipartAttachment(t *testing.T) {
	app := newTestApp(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("title", "Avec fichier"))
	require.NoError(t, writer.WriteField("category", constant.CategoryTravail))
	part, err := writer.CreateFormFile("attachment", "facture.png")
	require.NoError(t, err)
	_, err = part.Write(pngBytes)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notes", &body)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, bearerFor(t, "owner-a"))

	res, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, res.StatusCode)

	envelope := decodeBody[dto.NoteEnvelope](t, res)
	require.NotNil(t, envelope.Note.Attachment)
	assert.Equal(t, "facture.png", envelope.Note.Attachment.Filename)
	assert.Equal(t, "image/png", envelope.Note.Attachment.MimeType)
	assert.Equal(t, int64(len(pngBytes)), envelope.Note.Attachment.Size)
	assert.Equal(t, "/uploads/"+envelope.Note.Attachment.StoredName, envelope.Note.Attachment.Url)
}

func TestUnsupportedAttachmentType(t *testing.T) {
	app := newTestApp(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("title", "Mauvais type"))
	part, err := writer.CreateFormFile("attachment", "virus.exe")
	require.NoError(t, err)
	_, err = part.Write([]byte("MZ some executable payload here"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notes", &body)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, bearerFor(t, "owner-a"))

	res, err := app.Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, res.StatusCode)
}

func TestShowAndListEndpoints(t *testing.T) {
	app := newTestApp(t)

	created := createNote(t, app, "owner-a", dto.CreateNoteRequest{Title: "Visible", Category: constant.CategoryUrgent})
	_ = createNote(t, app, "owner-a", dto.CreateNoteRequest{Title: "Autre"})

	res := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/notes/%s", created.Id), "owner-a", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	envelope := decodeBody[dto.NoteEnvelope](t, res)
	assert.Equal(t, created.Id, envelope.Note.Id)

	res = doJSON(t, app, http.MethodGet, "/api/v1/notes?category=urgent", "owner-a", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	list := decodeBody[dto.ListNotesResponse](t, res)
	require.Len(t, list.Notes, 1)
	assert.Equal(t, created.Id, list.Notes[0].Id)
	assert.Equal(t, 1, list.Meta.Total)
	assert.Equal(t, 1, list.Meta.Page)
	assert.Equal(t, constant.DefaultLimit, list.Meta.Limit)
	assert.False(t, list.Meta.HasMore)
}

func TestListPaginationMeta(t *testing.T) {
	app := newTestApp(t)

	for i := 0; i < 5; i++ {
		_ = createNote(t, app, "owner-a", dto.CreateNoteRequest{Title: fmt.Sprintf("Note %d", i)})
	}

	res := doJSON(t, app, http.MethodGet, "/api/v1/notes?limit=2&page=2", "owner-a", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	list := decodeBody[dto.ListNotesResponse](t, res)
	assert.Len(t, list.Notes, 2)
	assert.Equal(t, 5, list.Meta.Total)
	assert.Equal(t, 2, list.Meta.Page)
	assert.Equal(t, 2, list.Meta.Limit)
	assert.True(t, list.Meta.HasMore)
}

func TestListRejectsUnknownSort(t *testing.T) {
	app := newTestApp(t)

	res := doJSON(t, app, http.MethodGet, "/api/v1/notes?sort=alphabetical", "owner-a", nil)
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestUpdateEndpoint(t *testing.T) {
	app := newTestApp(t)

	created := createNote(t, app, "owner-a", dto.CreateNoteRequest{Title: "Avant", Content: "<p>v1</p>"})

	content := "<p>v2</p>"
	res := doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/v1/notes/%s", created.Id), "owner-a", dto.UpdateNoteRequest{
		Content:  &content,
		Category: constant.CategoryUrgent,
	})
	require.Equal(t, http.StatusOK, res.StatusCode)

	envelope := decodeBody[dto.NoteEnvelope](t, res)
	assert.Equal(t, "Avant", envelope.Note.Title)
	assert.Equal(t, "<p>v2</p>", envelope.Note.Content)
	assert.Equal(t, constant.CategoryUrgent, envelope.Note.Category)
}

func TestDeleteEndpoint(t *testing.T) {
	app := newTestApp(t)

	created := createNote(t, app, "owner-a", dto.CreateNoteRequest{Title: "À supprimer"})

	res := doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/notes/%s", created.Id), "owner-a", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	msg := decodeBody[dto.MessageResponse](t, res)
	assert.Equal(t, "Note supprimée", msg.Message)

	res = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/notes/%s", created.Id), "owner-a", nil)
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestCrossOwnerAccessIsNotFound(t *testing.T) {
	app := newTestApp(t)

	created := createNote(t, app, "owner-a", dto.CreateNoteRequest{Title: "Privée"})

	for _, req := range []struct {
		method string
		body   any
	}{
		{http.MethodGet, nil},
		{http.MethodPut, dto.UpdateNoteRequest{Title: "Volée"}},
		{http.MethodDelete, nil},
	} {
		res := doJSON(t, app, req.method, fmt.Sprintf("/api/v1/notes/%s", created.Id), "owner-b", req.body)
		defer res.Body.Close()
		assert.Equalf(t, http.StatusNotFound, res.StatusCode, "%s as another owner", req.method)
	}
}

func TestMalformedIdIsNotFound(t *testing.T) {
	app := newTestApp(t)

	res := doJSON(t, app, http.MethodGet, "/api/v1/notes/not-a-uuid", "owner-a", nil)
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	body := decodeBody[dto.MessageResponse](t, res)
	assert.Equal(t, "Note non trouvée", body.Message)
}

func TestStatsEndpoint(t *testing.T) {
	app := newTestApp(t)

	_ = createNote(t, app, "owner-a", dto.CreateNoteRequest{Title: "w1", Category: constant.CategoryTravail})
	_ = createNote(t, app, "owner-a", dto.CreateNoteRequest{Title: "p1"})
	_ = createNote(t, app, "owner-b", dto.CreateNoteRequest{Title: "autre propriétaire"})

	res := doJSON(t, app, http.MethodGet, "/api/v1/notes/stats", "owner-a", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	stats := decodeBody[dto.NoteStatsResponse](t, res)
	assert.Equal(t, 2, stats.TotalNotes)
	assert.Equal(t, dto.CategoryCounts{Travail: 1, Personnel: 1, Urgent: 0}, stats.Categories)
	assert.Equal(t, 0, stats.WithAttachments)
	require.NotNil(t, stats.LastUpdated)
}
