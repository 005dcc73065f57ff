package service

import (
	"context"
	"testing"

	"storyframe-ai/internal/dto"
	"storyframe-ai/internal/storage"
	"storyframe-ai/internal/types"
	apperrors "storyframe-ai/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKeyframesCreatesRowsInOrder(t *testing.T) {
	setupTestDB(t)
	svc, _, _, _, dispatch := newTestService()
	user := createTestUser(t, "alice")
	project := createTestProject(t, user.Id)
	script := createTestScript(t, project.Id)

	keyframes, err := svc.GenerateKeyframes(user.Id, dto.GenerateKeyframesReq{
		ScriptId: script.Id,
		Model:    "nano-banana",
	})
	require.NoError(t, err)
	require.Len(t, keyframes, 4)

	// 合成首帧排第一位，提示词取开场画面描述
	assert.Equal(t, "segment_0_first_frame", keyframes[0].SegmentId)
	assert.Contains(t, keyframes[0].Prompt, "实验室里")
	assert.Equal(t, "segment_0", keyframes[1].SegmentId)
	assert.Equal(t, "segment_1", keyframes[2].SegmentId)
	assert.Equal(t, "segment_2", keyframes[3].SegmentId)
	for _, kf := range keyframes {
		assert.Equal(t, types.KeyframeStatusGenerating, kf.Status)
	}

	assert.Equal(t, []int64{script.Id}, dispatch.keyframeBatches)
	assert.Equal(t, "nano-banana", dispatch.lastModel)

	updated, err := storage.GetProject(project.Id, user.Id)
	require.NoError(t, err)
	assert.Equal(t, types.ProjectStatusKeyframesGenerating, updated.Status)
	assert.Equal(t, "nano-banana", updated.ImageModel)
}

func TestGenerateKeyframesReplacesOldRows(t *testing.T) {
	setupTestDB(t)
	svc, _, _, _, _ := newTestService()
	user := createTestUser(t, "alice")
	project := createTestProject(t, user.Id)
	script := createTestScript(t, project.Id)

	_, err := svc.GenerateKeyframes(user.Id, dto.GenerateKeyframesReq{ScriptId: script.Id})
	require.NoError(t, err)
	_, err = svc.GenerateKeyframes(user.Id, dto.GenerateKeyframesReq{ScriptId: script.Id})
	require.NoError(t, err)

	keyframes, err := storage.GetKeyframesByScript(script.Id)
	require.NoError(t, err)
	assert.Len(t, keyframes, 4)
}

func TestGenerateKeyframesRejectsUnknownModel(t *testing.T) {
	setupTestDB(t)
	svc, _, _, _, _ := newTestService()
	user := createTestUser(t, "alice")
	project := createTestProject(t, user.Id)
	script := createTestScript(t, project.Id)

	_, err := svc.GenerateKeyframes(user.Id, dto.GenerateKeyframesReq{
		ScriptId: script.Id,
		Model:    "no-such-model",
	})
	assert.True(t, apperrors.Is(err, apperrors.CodeModelNotFound))
}

func TestGenerateKeyframesRejectsUnsupportedRatio(t *testing.T) {
	setupTestDB(t)
	svc, _, _, _, _ := newTestService()
	user := createTestUser(t, "alice")
	project := createTestProject(t, user.Id)
	script := createTestScript(t, project.Id)

	// sora-image 只支持 auto/1:1/3:2/2:3
	_, err := svc.GenerateKeyframes(user.Id, dto.GenerateKeyframesReq{
		ScriptId:    script.Id,
		Model:       "sora-image",
		AspectRatio: "21:9",
	})
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidParams))
}

func TestGenerateKeyframesOwnership(t *testing.T) {
	setupTestDB(t)
	svc, _, _, _, _ := newTestService()
	owner := createTestUser(t, "alice")
	other := createTestUser(t, "bob")
	project := createTestProject(t, owner.Id)
	script := createTestScript(t, project.Id)

	_, err := svc.GenerateKeyframes(other.Id, dto.GenerateKeyframesReq{ScriptId: script.Id})
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestRunKeyframeBatchChainsReference(t *testing.T) {
	setupTestDB(t)
	svc, imageGen, _, _, _ := newTestService()
	user := createTestUser(t, "alice")
	project := createTestProject(t, user.Id)
	script := createTestScript(t, project.Id)

	_, err := svc.GenerateKeyframes(user.Id, dto.GenerateKeyframesReq{ScriptId: script.Id, Model: "nano-banana"})
	require.NoError(t, err)

	svc.RunKeyframeBatch(context.Background(), script.Id, "nano-banana", "16:9", "")

	require.Len(t, imageGen.requests, 4)
	// 第一帧无参考图，之后每帧引用上一帧的存储URL
	assert.Empty(t, imageGen.requests[0].ReferenceImageUrl)
	keyframes, err := storage.GetKeyframesByScript(script.Id)
	require.NoError(t, err)
	for i := 1; i < 4; i++ {
		assert.Equal(t, keyframes[i-1].ImageUrl, imageGen.requests[i].ReferenceImageUrl)
	}
	for _, kf := range keyframes {
		assert.Equal(t, types.KeyframeStatusCompleted, kf.Status)
		assert.Contains(t, kf.ImageUrl, "bucket.example.com/keyframes/")
	}

	updated, err := storage.GetProject(project.Id, user.Id)
	require.NoError(t, err)
	assert.Equal(t, types.ProjectStatusKeyframesCompleted, updated.Status)
}

func TestRunKeyframeBatchContinuesPastFailure(t *testing.T) {
	setupTestDB(t)
	svc, imageGen, _, _, _ := newTestService()
	user := createTestUser(t, "alice")
	project := createTestProject(t, user.Id)
	script := createTestScript(t, project.Id)

	_, err := svc.GenerateKeyframes(user.Id, dto.GenerateKeyframesReq{ScriptId: script.Id, Model: "nano-banana"})
	require.NoError(t, err)

	keyframes, err := storage.GetKeyframesByScript(script.Id)
	require.NoError(t, err)
	imageGen.failOn[keyframes[1].Prompt] = apperrors.ErrKeyframeGenFailed

	svc.RunKeyframeBatch(context.Background(), script.Id, "nano-banana", "16:9", "")

	keyframes, err = storage.GetKeyframesByScript(script.Id)
	require.NoError(t, err)
	assert.Equal(t, types.KeyframeStatusCompleted, keyframes[0].Status)
	assert.Equal(t, types.KeyframeStatusFailed, keyframes[1].Status)
	assert.NotEmpty(t, keyframes[1].ErrorMessage)
	assert.Equal(t, types.KeyframeStatusCompleted, keyframes[2].Status)
	assert.Equal(t, types.KeyframeStatusCompleted, keyframes[3].Status)

	// 失败帧不推进参考图，第三帧仍引用首帧
	require.Len(t, imageGen.requests, 4)
	assert.Equal(t, keyframes[0].ImageUrl, imageGen.requests[2].ReferenceImageUrl)

	// 有失败帧时项目状态不推进
	updated, err := storage.GetProject(project.Id, user.Id)
	require.NoError(t, err)
	assert.Equal(t, types.ProjectStatusKeyframesGenerating, updated.Status)
}

func TestRunKeyframeBatchSkipsReferenceForSoraImage(t *testing.T) {
	setupTestDB(t)
	svc, imageGen, _, _, _ := newTestService()
	user := createTestUser(t, "alice")
	project := createTestProject(t, user.Id)
	script := createTestScript(t, project.Id)

	_, err := svc.GenerateKeyframes(user.Id, dto.GenerateKeyframesReq{
		ScriptId:    script.Id,
		Model:       "sora-image",
		AspectRatio: "3:2",
	})
	require.NoError(t, err)

	svc.RunKeyframeBatch(context.Background(), script.Id, "sora-image", "3:2", "")

	require.Len(t, imageGen.requests, 4)
	for _, req := range imageGen.requests {
		assert.Empty(t, req.ReferenceImageUrl)
	}
}

func TestRunKeyframeRegenerateHasNoReference(t *testing.T) {
	setupTestDB(t)
	svc, imageGen, _, _, _ := newTestService()
	user := createTestUser(t, "alice")
	project := createTestProject(t, user.Id)
	script := createTestScript(t, project.Id)

	kf := &types.Keyframe{
		ScriptId:  script.Id,
		SegmentId: "segment_1",
		Prompt:    "重新生成的画面",
		Status:    types.KeyframeStatusGenerating,
	}
	require.NoError(t, storage.CreateKeyframes([]*types.Keyframe{kf}))

	svc.RunKeyframeRegenerate(context.Background(), kf.Id, "nano-banana", "16:9", "")

	require.Len(t, imageGen.requests, 1)
	assert.Empty(t, imageGen.requests[0].ReferenceImageUrl)

	saved, err := storage.GetKeyframe(kf.Id)
	require.NoError(t, err)
	assert.Equal(t, types.KeyframeStatusCompleted, saved.Status)
}

func TestRegenerateKeyframeDispatches(t *testing.T) {
	setupTestDB(t)
	svc, _, _, _, dispatch := newTestService()
	user := createTestUser(t, "alice")
	project := createTestProject(t, user.Id)
	project.ImageModel = "nano-banana"
	project.AspectRatio = "16:9"
	require.NoError(t, storage.SaveProject(project))
	script := createTestScript(t, project.Id)

	kf := &types.Keyframe{
		ScriptId:  script.Id,
		SegmentId: "segment_0",
		Prompt:    "画面",
		Status:    types.KeyframeStatusFailed,
	}
	require.NoError(t, storage.CreateKeyframes([]*types.Keyframe{kf}))

	updated, err := svc.RegenerateKeyframe(kf.Id, user.Id)
	require.NoError(t, err)
	assert.Equal(t, types.KeyframeStatusGenerating, updated.Status)
	assert.Empty(t, updated.ErrorMessage)
	assert.Equal(t, []int64{kf.Id}, dispatch.keyframeSingles)
	assert.Equal(t, "nano-banana", dispatch.lastModel)
}

func TestUpdateKeyframePrompt(t *testing.T) {
	setupTestDB(t)
	svc, _, _, _, _ := newTestService()
	user := createTestUser(t, "alice")
	project := createTestProject(t, user.Id)
	script := createTestScript(t, project.Id)

	kf := &types.Keyframe{ScriptId: script.Id, SegmentId: "segment_0", Prompt: "旧提示词"}
	require.NoError(t, storage.CreateKeyframes([]*types.Keyframe{kf}))

	updated, err := svc.UpdateKeyframePrompt(kf.Id, user.Id, "新提示词")
	require.NoError(t, err)
	assert.Equal(t, "新提示词", updated.Prompt)
}

func TestUploadKeyframeImage(t *testing.T) {
	setupTestDB(t)
	svc, _, _, store, _ := newTestService()
	user := createTestUser(t, "alice")
	project := createTestProject(t, user.Id)
	script := createTestScript(t, project.Id)

	kf := &types.Keyframe{
		ScriptId:  script.Id,
		SegmentId: "segment_0",
		Status:    types.KeyframeStatusFailed,
	}
	require.NoError(t, storage.CreateKeyframes([]*types.Keyframe{kf}))

	updated, err := svc.UploadKeyframeImage(context.Background(), kf.Id, user.Id,
		[]byte("fake image"), "custom.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, types.KeyframeStatusCompleted, updated.Status)
	assert.Equal(t, store.storedUrl("keyframes", "custom.png"), updated.ImageUrl)
}
