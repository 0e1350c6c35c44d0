package handlers

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studymate-backend/internal/logger"
	"studymate-backend/internal/models"
	"studymate-backend/internal/services"
)

type recordingTutor struct {
	question string
	material string
	err      error
}

func (t *recordingTutor) Answer(ctx context.Context, question, material string) (string, error) {
	t.question = question
	t.material = material
	if t.err != nil {
		return "", t.err
	}
	return "Because of gravity.", nil
}

func tutorRoutes(tutor services.Tutor, rec *memRecorder) http.Handler {
	h := NewTutorHandler(tutor, services.NewMaterialExtractor(), rec, logger.Discard())
	return asUser(testUser, func(r chi.Router) {
		r.Post("/api/ai-tutor/ask", h.Ask)
		r.Post("/api/ai-tutor/pdf", h.AskWithMaterial)
	})
}

func TestTutorAsk_Placeholder(t *testing.T) {
	rec := &memRecorder{}
	h := tutorRoutes(services.PlaceholderTutor{}, rec)

	rr := doJSON(t, h, http.MethodPost, "/api/ai-tutor/ask", `{"question":"What is photosynthesis?"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var got models.TutorAnswer
	decodeBody(t, rr, &got)
	assert.Equal(t, "What is photosynthesis?", got.Question)
	assert.Equal(t, services.PlaceholderAnswer, got.Answer)
	assert.False(t, got.Timestamp.IsZero())

	require.Len(t, rec.entries, 1)
	assert.Equal(t, models.ActivityTutorAsk, rec.entries[0].activityType)
	assert.Equal(t, "Asked tutor: What is photosynthesis?...", rec.entries[0].description)
}

func TestTutorAsk_Validation(t *testing.T) {
	rec := &memRecorder{}
	h := tutorRoutes(services.PlaceholderTutor{}, rec)

	rr := doJSON(t, h, http.MethodPost, "/api/ai-tutor/ask", `{"question":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, rec.entries)
}

func TestTutorAsk_TutorFailure(t *testing.T) {
	rec := &memRecorder{}
	h := tutorRoutes(&recordingTutor{err: errors.New("quota exceeded")}, rec)

	rr := doJSON(t, h, http.MethodPost, "/api/ai-tutor/ask", `{"question":"Why?"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "quota")
	assert.Empty(t, rec.entries)
}

func TestTutorDescription(t *testing.T) {
	long := strings.Repeat("ab", 40)
	assert.Equal(t, "Asked tutor: "+long[:50]+"...", tutorDescription(long))
	assert.Equal(t, "Asked tutor: ¿Qué?...", tutorDescription("¿Qué?"))
}

func multipartRequest(t *testing.T, filename string, content []byte, question string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.WriteField("question", question))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/ai-tutor/pdf", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestTutorAskWithMaterial(t *testing.T) {
	rec := &memRecorder{}
	tutor := &recordingTutor{}
	h := tutorRoutes(tutor, rec)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, multipartRequest(t, "notes.txt", []byte("Objects fall at 9.8 m/s^2.\n"), "Why do apples fall?"))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var got models.TutorAnswer
	decodeBody(t, rr, &got)
	assert.Equal(t, "Because of gravity.", got.Answer)
	assert.Equal(t, "Objects fall at 9.8 m/s^2.", tutor.material)
	assert.Equal(t, "Why do apples fall?", tutor.question)
	assert.Len(t, rec.entries, 1)
}

func TestTutorAskWithMaterial_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  []byte
		question string
		field    string
	}{
		{"no file", "", nil, "q", "file"},
		{"unsupported type", "photo.png", []byte{0x89, 'P', 'N', 'G'}, "q", "file"},
		{"unreadable pdf", "broken.pdf", []byte("not really a pdf"), "q", "file"},
		{"missing question", "notes.txt", []byte("content"), "", "question"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := &memRecorder{}
			h := tutorRoutes(&recordingTutor{}, rec)

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, multipartRequest(t, tc.filename, tc.content, tc.question))

			require.Equal(t, http.StatusBadRequest, rr.Code)
			var resp models.ErrorResponse
			decodeBody(t, rr, &resp)
			assert.Contains(t, resp.Error.Fields, tc.field)
			assert.Empty(t, rec.entries)
		})
	}
}
