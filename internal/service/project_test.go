package service

import (
	"fmt"
	"testing"

	"storyframe-ai/internal/dto"
	"storyframe-ai/internal/types"
	apperrors "storyframe-ai/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetProject(t *testing.T) {
	setupTestDB(t)
	svc, _, _, _, _ := newTestService()
	user := createTestUser(t, "alice")

	project, err := svc.CreateProject(user.Id, dto.CreateProjectReq{
		Name:        "科普短片",
		Description: "关于海洋的科普视频",
	})
	require.NoError(t, err)
	assert.Equal(t, types.ProjectStatusDraft, project.Status)

	got, err := svc.GetProject(project.Id, user.Id)
	require.NoError(t, err)
	assert.Equal(t, "科普短片", got.Name)
}

func TestGetProjectOwnership(t *testing.T) {
	setupTestDB(t)
	svc, _, _, _, _ := newTestService()
	owner := createTestUser(t, "alice")
	other := createTestUser(t, "bob")

	project, err := svc.CreateProject(owner.Id, dto.CreateProjectReq{Name: "私有项目"})
	require.NoError(t, err)

	_, err = svc.GetProject(project.Id, other.Id)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestListProjectsPagination(t *testing.T) {
	setupTestDB(t)
	svc, _, _, _, _ := newTestService()
	user := createTestUser(t, "alice")

	for i := 0; i < 12; i++ {
		_, err := svc.CreateProject(user.Id, dto.CreateProjectReq{Name: fmt.Sprintf("项目%d", i)})
		require.NoError(t, err)
	}

	res, err := svc.ListProjects(user.Id, dto.ListProjectsReq{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(12), res.Total)
	assert.Len(t, res.Projects.([]types.Project), 10)

	res, err = svc.ListProjects(user.Id, dto.ListProjectsReq{Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, res.Projects.([]types.Project), 2)

	// 缺省分页参数
	res, err = svc.ListProjects(user.Id, dto.ListProjectsReq{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, defaultPageSize, res.PageSize)
}

func TestUpdateProjectSkipsZeroValues(t *testing.T) {
	setupTestDB(t)
	svc, _, _, _, _ := newTestService()
	user := createTestUser(t, "alice")

	project, err := svc.CreateProject(user.Id, dto.CreateProjectReq{
		Name:        "原名称",
		Description: "原描述",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateProject(project.Id, user.Id, dto.UpdateProjectReq{
		Name:       "新名称",
		ImageModel: "nano-banana",
	})
	require.NoError(t, err)
	assert.Equal(t, "新名称", updated.Name)
	assert.Equal(t, "原描述", updated.Description)
	assert.Equal(t, "nano-banana", updated.ImageModel)
}

func TestUpdateProjectRejectsUnknownImageModel(t *testing.T) {
	setupTestDB(t)
	svc, _, _, _, _ := newTestService()
	user := createTestUser(t, "alice")

	project, err := svc.CreateProject(user.Id, dto.CreateProjectReq{Name: "项目"})
	require.NoError(t, err)

	_, err = svc.UpdateProject(project.Id, user.Id, dto.UpdateProjectReq{ImageModel: "no-such-model"})
	assert.True(t, apperrors.Is(err, apperrors.CodeModelNotFound))
}

func TestDeleteProject(t *testing.T) {
	setupTestDB(t)
	svc, _, _, _, _ := newTestService()
	user := createTestUser(t, "alice")

	project, err := svc.CreateProject(user.Id, dto.CreateProjectReq{Name: "待删除"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProject(project.Id, user.Id))

	_, err = svc.GetProject(project.Id, user.Id)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}
