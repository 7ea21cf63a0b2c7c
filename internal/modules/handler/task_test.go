package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/custodian-app/upkeep/internal/modules/model"
	"github.com/custodian-app/upkeep/internal/modules/serializer"
	"github.com/custodian-app/upkeep/internal/modules/service"
)

// MockTaskService is a mock implementation of service.TaskService
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) ListForAsset(ctx context.Context, userID, assetID uuid.UUID) (*service.TaskListOutput, error) {
	args := m.Called(ctx, userID, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TaskListOutput), args.Error(1)
}

func (m *MockTaskService) GetForAsset(ctx context.Context, userID, assetID, taskID uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, userID, assetID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskService) Generate(ctx context.Context, userID, assetID uuid.UUID, prompt string) (*service.GenerateResult, error) {
	args := m.Called(ctx, userID, assetID, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GenerateResult), args.Error(1)
}

func setupTaskRouter(svc service.TaskService, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", userID) })

	h := NewTaskHandler(svc)
	r.GET("/api/v1/assets/:asset_id/tasks", h.ListTasks)
	r.POST("/api/v1/assets/:asset_id/tasks/generate", h.GenerateTasks)
	return r
}

func TestTaskHandler_ListTasks(t *testing.T) {
	userID, assetID := uuid.New(), uuid.New()
	svc := new(MockTaskService)
	svc.On("ListForAsset", mock.Anything, userID, assetID).Return(&service.TaskListOutput{
		AssetID:     assetID,
		TasksStatus: model.TasksStatusReady,
		Tasks:       []model.Task{{ID: uuid.New(), Name: "Inspect"}},
	}, nil)

	r := setupTaskRouter(svc, userID)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/assets/"+assetID.String()+"/tasks", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp serializer.Response
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, model.TasksStatusReady, data["tasks_status"])
}

func TestTaskHandler_ListTasks_NotFound(t *testing.T) {
	userID, assetID := uuid.New(), uuid.New()
	svc := new(MockTaskService)
	svc.On("ListForAsset", mock.Anything, userID, assetID).Return(nil, service.ErrNotFound)

	r := setupTaskRouter(svc, userID)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/assets/"+assetID.String()+"/tasks", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskHandler_ListTasks_BadAssetID(t *testing.T) {
	svc := new(MockTaskService)
	r := setupTaskRouter(svc, uuid.New())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/assets/not-a-uuid/tasks", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "ListForAsset")
}

func TestTaskHandler_GenerateTasks(t *testing.T) {
	userID, assetID := uuid.New(), uuid.New()

	tests := []struct {
		name           string
		setup          func(*MockTaskService)
		body           string
		expectedStatus int
	}{
		{
			name: "generated",
			setup: func(m *MockTaskService) {
				m.On("Generate", mock.Anything, userID, assetID, "focus on winter").
					Return(&service.GenerateResult{
						Source:      service.SourceGenerated,
						TasksStatus: model.TasksStatusReady,
						Tasks:       []model.Task{{Name: "Inspect"}},
					}, nil)
			},
			body:           `{"prompt":"focus on winter"}`,
			expectedStatus: http.StatusOK,
		},
		{
			name: "in progress",
			setup: func(m *MockTaskService) {
				m.On("Generate", mock.Anything, userID, assetID, "").
					Return(nil, service.ErrGenerationInProgress)
			},
			expectedStatus: http.StatusAccepted,
		},
		{
			name: "asset not found",
			setup: func(m *MockTaskService) {
				m.On("Generate", mock.Anything, userID, assetID, "").
					Return(nil, service.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "generation failed",
			setup: func(m *MockTaskService) {
				m.On("Generate", mock.Anything, userID, assetID, "").
					Return(nil, service.ErrGeneration)
			},
			expectedStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockTaskService)
			tt.setup(svc)
			r := setupTaskRouter(svc, userID)

			var body *bytes.Buffer
			if tt.body != "" {
				body = bytes.NewBufferString(tt.body)
			} else {
				body = bytes.NewBuffer(nil)
			}
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost,
				"/api/v1/assets/"+assetID.String()+"/tasks/generate", body)
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
