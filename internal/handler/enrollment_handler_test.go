package handler_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/willow-go-api/internal/dto"
	"github.com/noah-isme/willow-go-api/internal/handler"
	"github.com/noah-isme/willow-go-api/internal/models"
	"github.com/noah-isme/willow-go-api/internal/service"
)

func newEnrollmentApp(enrollments stubEnrollmentService, rewards stubRewardService) *fiber.App {
	app := fiber.New()
	h := handler.NewEnrollmentHandler(enrollments, rewards, zerolog.Nop())
	h.Register(app.Group("/api/v1/enrollments"))
	return app
}

func TestEnrollmentHandlerComplete(t *testing.T) {
	completed := dto.EnrollmentResponse{ID: 3, Status: models.EnrollmentStatusCompleted, ScoreInQuest: 80}
	app := newEnrollmentApp(stubEnrollmentService{}, stubRewardService{enrollment: completed})

	payload := []byte(`{"score": 80}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/enrollments/3/complete", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestEnrollmentHandlerCompleteConflict(t *testing.T) {
	app := newEnrollmentApp(stubEnrollmentService{}, stubRewardService{err: service.ErrEnrollmentClosed})

	payload := []byte(`{"score": 80}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/enrollments/3/complete", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestEnrollmentHandlerBulkEnrollTargetMissing(t *testing.T) {
	app := newEnrollmentApp(stubEnrollmentService{}, stubRewardService{err: service.ErrBulkTargetMissing})

	payload := []byte(`{"quest_id": 1}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/enrollments/bulk-enroll", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEnrollmentHandlerListRequiresQuestID(t *testing.T) {
	app := newEnrollmentApp(stubEnrollmentService{}, stubRewardService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/enrollments", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
