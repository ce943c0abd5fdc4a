package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fxdian/ungoogled-chromium/internal/core/domain"
	"github.com/fxdian/ungoogled-chromium/internal/testutil"
)

const goodDiff = "From: Someone <someone@example.com>\n" +
	"Subject: [PATCH] Drop the promo branch\n" +
	"\n" +
	"--- a/startup.cc\n" +
	"+++ b/startup.cc\n" +
	"@@ -1,2 +1,2 @@\n" +
	" int main() {\n" +
	"-  return promo();\n" +
	"+  return 0;\n"

func TestPatchSetService_Create(t *testing.T) {
	repo := new(testutil.MockPatchSetRepo)
	builds := new(testutil.MockBuildRepo)
	svc := NewPatchSetService(repo, builds)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.PatchSet")).Return(nil)
	repo.On("GetByID", mock.Anything, mock.AnythingOfType("uuid.UUID")).
		Return(&domain.PatchSet{Name: "core"}, nil)

	set, err := svc.Create(context.Background(), "core", "", []PatchInput{
		{FileName: "disable-promo.patch", Body: goodDiff},
	})
	assert.NoError(t, err)
	assert.Equal(t, "core", set.Name)

	created := repo.Calls[0].Arguments.Get(1).(*domain.PatchSet)
	assert.Equal(t, 1, created.Patches[0].Position)
	assert.Equal(t, "Drop the promo branch", created.Patches[0].Subject)
	assert.Equal(t, "Someone <someone@example.com>", created.Patches[0].Author)
}

func TestPatchSetService_Create_EmptyName(t *testing.T) {
	svc := NewPatchSetService(new(testutil.MockPatchSetRepo), new(testutil.MockBuildRepo))

	_, err := svc.Create(context.Background(), "", "", []PatchInput{{FileName: "a.patch", Body: goodDiff}})
	assert.ErrorIs(t, err, domain.ErrInvalidPatchSetName)
}

func TestPatchSetService_Create_EmptySeries(t *testing.T) {
	svc := NewPatchSetService(new(testutil.MockPatchSetRepo), new(testutil.MockBuildRepo))

	_, err := svc.Create(context.Background(), "core", "", nil)
	assert.ErrorIs(t, err, domain.ErrEmptyPatchSeries)
}

func TestPatchSetService_Create_MalformedPatch(t *testing.T) {
	repo := new(testutil.MockPatchSetRepo)
	svc := NewPatchSetService(repo, new(testutil.MockBuildRepo))

	_, err := svc.Create(context.Background(), "core", "", []PatchInput{
		{FileName: "bad.patch", Body: "this is not a diff\n"},
	})
	assert.ErrorIs(t, err, domain.ErrMalformedPatch)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPatchSetService_Delete_InUse(t *testing.T) {
	repo := new(testutil.MockPatchSetRepo)
	builds := new(testutil.MockBuildRepo)
	svc := NewPatchSetService(repo, builds)

	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(&domain.PatchSet{ID: id}, nil)
	builds.On("CountUnfinishedByPatchSet", mock.Anything, id).Return(2, nil)

	err := svc.Delete(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrPatchSetInUse)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestPatchSetService_Delete(t *testing.T) {
	repo := new(testutil.MockPatchSetRepo)
	builds := new(testutil.MockBuildRepo)
	svc := NewPatchSetService(repo, builds)

	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(&domain.PatchSet{ID: id}, nil)
	builds.On("CountUnfinishedByPatchSet", mock.Anything, id).Return(0, nil)
	repo.On("Delete", mock.Anything, id).Return(nil)

	assert.NoError(t, svc.Delete(context.Background(), id))
	repo.AssertExpectations(t)
}

func TestPatchSetService_Validate(t *testing.T) {
	repo := new(testutil.MockPatchSetRepo)
	svc := NewPatchSetService(repo, new(testutil.MockBuildRepo))

	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(&domain.PatchSet{
		ID: id,
		Patches: []domain.Patch{
			{Position: 1, FileName: "good.patch", Body: goodDiff},
			{Position: 2, FileName: "bad.patch", Body: "garbage\n"},
		},
	}, nil)

	results, err := svc.Validate(context.Background(), id)
	assert.NoError(t, err)
	assert.Len(t, results, 2)
	assert.True(t, results[0].Valid)
	assert.Equal(t, 1, results[0].Files)
	assert.False(t, results[1].Valid)
	assert.NotEmpty(t, results[1].Error)
}
