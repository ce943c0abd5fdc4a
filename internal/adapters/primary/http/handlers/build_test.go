package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fxdian/ungoogled-chromium/internal/adapters/primary/http/dto"
	"github.com/fxdian/ungoogled-chromium/internal/core/domain"
	"github.com/fxdian/ungoogled-chromium/internal/core/services"
	"github.com/fxdian/ungoogled-chromium/internal/testutil"
)

func newTestRouter(builds *testutil.MockBuildRepo, patchSets *testutil.MockPatchSetRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := New(
		services.NewBuildService(builds, patchSets),
		services.NewPatchSetService(patchSets, builds),
		nil, // no in-process pipeline in handler tests
		nil,
	)
	router := gin.New()
	h.RegisterRoutes(router.Group("/api/v1/build-service"))
	return router
}

func TestGetBuild(t *testing.T) {
	builds := new(testutil.MockBuildRepo)
	router := newTestRouter(builds, new(testutil.MockPatchSetRepo))

	id := uuid.New()
	builds.On("GetByID", mock.Anything, id).Return(&domain.Build{
		ID:              id,
		ChromiumVersion: "120.0.6099.199",
		Status:          domain.BuildStatusSucceeded,
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/build-service/builds/"+id.String(), nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.BuildResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, id, resp.ID)
	assert.Equal(t, "SUCCEEDED", resp.Status)
}

func TestGetBuild_InvalidID(t *testing.T) {
	router := newTestRouter(new(testutil.MockBuildRepo), new(testutil.MockPatchSetRepo))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/build-service/builds/not-a-uuid", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetBuild_NotFound(t *testing.T) {
	builds := new(testutil.MockBuildRepo)
	router := newTestRouter(builds, new(testutil.MockPatchSetRepo))

	id := uuid.New()
	builds.On("GetByID", mock.Anything, id).Return(nil, domain.ErrBuildNotFound)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/build-service/builds/"+id.String(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListBuilds(t *testing.T) {
	builds := new(testutil.MockBuildRepo)
	router := newTestRouter(builds, new(testutil.MockPatchSetRepo))

	builds.On("List", mock.Anything, mock.Anything).Return([]*domain.Build{
		{ID: uuid.New(), Status: domain.BuildStatusPending},
		{ID: uuid.New(), Status: domain.BuildStatusFailed},
	}, 2, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/build-service/builds?status=PENDING", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.ListBuildsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Len(t, resp.Items, 2)
}

func TestCancelBuild_Terminal(t *testing.T) {
	builds := new(testutil.MockBuildRepo)
	router := newTestRouter(builds, new(testutil.MockPatchSetRepo))

	id := uuid.New()
	builds.On("GetByID", mock.Anything, id).Return(&domain.Build{
		ID: id, Status: domain.BuildStatusFailed,
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/build-service/builds/"+id.String()+"/cancel", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestValidatePatchSet(t *testing.T) {
	builds := new(testutil.MockBuildRepo)
	patchSets := new(testutil.MockPatchSetRepo)
	router := newTestRouter(builds, patchSets)

	id := uuid.New()
	patchSets.On("GetByID", mock.Anything, id).Return(&domain.PatchSet{
		ID: id,
		Patches: []domain.Patch{
			{Position: 1, FileName: "bad.patch", Body: "not a diff\n"},
		},
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/build-service/patchsets/"+id.String()+"/validate", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.ValidatePatchSetResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	require.Len(t, resp.Results, 1)
	assert.False(t, resp.Results[0].Valid)
}
