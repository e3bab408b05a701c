package create

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/danengatsby/poesisverse/internal/models"
)

// MockService реализует интерфейс create.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, req models.DummyPoem) (int, error) {
	args := m.Called(ctx, req)
	return args.Int(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestCreateHandler(t *testing.T) {
	validBody := `{"title":"Парус","author":"М.Ю. Лермонтов","content":"Белеет парус одинокой","image_url":"https://example.com/img.jpg","is_premium":true}`

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное создание",
			body: validBody,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(p models.DummyPoem) bool {
					return p.Title == "Парус" && p.IsPremium
				})).Return(42, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"id":42`,
		},
		{
			name:           "отсутствует обязательное поле",
			body:           `{"title":"Парус"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `required`,
		},
		{
			name: "название занято",
			body: validBody,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, mock.Anything).Return(0, models.ErrTitleTaken)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `poem title already taken`,
		},
		{
			name:           "невалидный JSON",
			body:           `not json`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `invalid request body`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(newNoopLogger(), mockService)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/poems", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockService.AssertExpectations(t)
		})
	}
}
