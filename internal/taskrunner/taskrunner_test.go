package taskrunner

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"storyframe-ai/internal/service"
	"storyframe-ai/internal/storage"
	"storyframe-ai/internal/types"
	"storyframe-ai/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	log.Logger = zap.NewNop()
}

func setupTestDB(t *testing.T) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&types.Keyframe{}, &types.Script{}, &types.Project{}))

	old := storage.DB
	storage.DB = db
	t.Cleanup(func() { storage.DB = old })
}

type stubImageGen struct{}

func (stubImageGen) GenerateImage(ctx context.Context, req types.ImageGenerationRequest) (string, error) {
	return "https://provider.example.com/tmp/image.jpg", nil
}

type stubStore struct{}

func (stubStore) Upload(ctx context.Context, data []byte, filename, category, contentType string) (*types.UploadResult, error) {
	url := fmt.Sprintf("https://bucket.example.com/%s/%s", category, filename)
	return &types.UploadResult{ObjectKey: category + "/" + filename, Url: url, Size: int64(len(data))}, nil
}

func (s stubStore) UploadFromUrl(ctx context.Context, srcUrl, filename, category string) (*types.UploadResult, error) {
	return s.Upload(ctx, nil, filename, category, "")
}

func (stubStore) Download(ctx context.Context, url string) ([]byte, error) {
	return []byte("data"), nil
}

func newStubService() *service.Service {
	return &service.Service{
		GrsaiImage: stubImageGen{},
		Jimeng:     stubImageGen{},
		Oss:        stubStore{},
	}
}

func TestSubmitValidation(t *testing.T) {
	runner := New(newStubService(), DefaultConfig())
	defer runner.Close()

	assert.Error(t, runner.SubmitKeyframeBatch(0, "nano-banana", "16:9", ""))
	assert.Error(t, runner.SubmitKeyframeRegenerate(0, "nano-banana", "16:9", ""))
	assert.Error(t, runner.SubmitVideoBatch(0))
	assert.Error(t, runner.SubmitVideoRegenerate(0))
}

func TestSubmitAfterClose(t *testing.T) {
	runner := New(newStubService(), DefaultConfig())
	runner.Close()

	assert.ErrorIs(t, runner.SubmitVideoBatch(1), ErrRunnerStopped)
}

func TestCloseIdempotent(t *testing.T) {
	runner := New(newStubService(), DefaultConfig())
	runner.Close()
	runner.Close()
}

func TestRunnerExecutesKeyframeRegenerate(t *testing.T) {
	setupTestDB(t)

	kf := &types.Keyframe{
		ScriptId:  1,
		SegmentId: "segment_0",
		Prompt:    "画面",
		Status:    types.KeyframeStatusGenerating,
	}
	require.NoError(t, storage.CreateKeyframes([]*types.Keyframe{kf}))

	runner := New(newStubService(), Config{QueueSize: 4, Concurrency: 1})
	defer runner.Close()

	require.NoError(t, runner.SubmitKeyframeRegenerate(kf.Id, "nano-banana", "16:9", ""))

	assert.Eventually(t, func() bool {
		saved, err := storage.GetKeyframe(kf.Id)
		return err == nil && saved.Status == types.KeyframeStatusCompleted
	}, 3*time.Second, 20*time.Millisecond)
}
