package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"storyframe-ai/config"
	"storyframe-ai/internal/storage"
	"storyframe-ai/internal/types"
	"storyframe-ai/log"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	log.Logger = zap.NewNop()
	config.Conf.Auth.JwtSecretKey = "test-secret"
	config.Conf.Auth.JwtExpireHours = 24
}

func setupTestDB(t *testing.T) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&types.User{},
		&types.Project{},
		&types.Script{},
		&types.Keyframe{},
		&types.VideoSegment{},
		&types.File{},
	))

	old := storage.DB
	storage.DB = db
	t.Cleanup(func() { storage.DB = old })
}

// fakeLlm returns canned script content.
type fakeLlm struct {
	content string
	err     error
}

func (f *fakeLlm) GenerateScript(ctx context.Context, inspiration, style string, totalDuration, segmentDuration int, model string) (string, error) {
	return f.content, f.err
}

func (f *fakeLlm) OptimizeScript(ctx context.Context, scriptContent, creativeDescription, model string) (string, error) {
	return f.content, f.err
}

// fakeImageGen records every request and fails on prompts listed in failOn.
type fakeImageGen struct {
	mu       sync.Mutex
	requests []types.ImageGenerationRequest
	failOn   map[string]error
	calls    int
}

func (f *fakeImageGen) GenerateImage(ctx context.Context, req types.ImageGenerationRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	f.calls++
	if err, ok := f.failOn[req.Prompt]; ok {
		return "", err
	}
	return fmt.Sprintf("https://provider.example.com/tmp/image_%d.jpg", f.calls), nil
}

// fakeVideoGen fails once the call counter reaches failAtCall (1-based).
type fakeVideoGen struct {
	mu         sync.Mutex
	requests   []types.VideoGenerationRequest
	failAtCall int
	failErr    error
	calls      int
}

func (f *fakeVideoGen) GenerateVideo(ctx context.Context, req types.VideoGenerationRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	f.calls++
	if f.failAtCall > 0 && f.calls >= f.failAtCall {
		return "", f.failErr
	}
	return fmt.Sprintf("https://provider.example.com/tmp/video_%d.mp4", f.calls), nil
}

// fakeStore maps uploads to deterministic URLs and serves downloads from
// an in-memory object table.
type fakeStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	uploaded []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (f *fakeStore) storedUrl(category, filename string) string {
	return fmt.Sprintf("https://bucket.example.com/%s/%s", category, filename)
}

func (f *fakeStore) Upload(ctx context.Context, data []byte, filename, category, contentType string) (*types.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	url := f.storedUrl(category, filename)
	f.objects[url] = data
	f.uploaded = append(f.uploaded, url)
	return &types.UploadResult{
		ObjectKey: category + "/" + filename,
		Url:       url,
		Size:      int64(len(data)),
	}, nil
}

func (f *fakeStore) UploadFromUrl(ctx context.Context, srcUrl, filename, category string) (*types.UploadResult, error) {
	return f.Upload(ctx, []byte("content from "+srcUrl), filename, category, "")
}

func (f *fakeStore) Download(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[url]
	if !ok {
		return nil, fmt.Errorf("object not found: %s", url)
	}
	return data, nil
}

// dispatchRecorder records submissions without executing anything, keeping
// background work out of tests.
type dispatchRecorder struct {
	keyframeBatches    []int64
	keyframeSingles    []int64
	videoBatches       []int64
	videoSingles       []int64
	lastModel          string
	lastAspectRatio    string
	lastQuality        string
}

func (d *dispatchRecorder) SubmitKeyframeBatch(scriptId int64, model, aspectRatio, quality string) error {
	d.keyframeBatches = append(d.keyframeBatches, scriptId)
	d.lastModel, d.lastAspectRatio, d.lastQuality = model, aspectRatio, quality
	return nil
}

func (d *dispatchRecorder) SubmitKeyframeRegenerate(keyframeId int64, model, aspectRatio, quality string) error {
	d.keyframeSingles = append(d.keyframeSingles, keyframeId)
	d.lastModel, d.lastAspectRatio, d.lastQuality = model, aspectRatio, quality
	return nil
}

func (d *dispatchRecorder) SubmitVideoBatch(scriptId int64) error {
	d.videoBatches = append(d.videoBatches, scriptId)
	return nil
}

func (d *dispatchRecorder) SubmitVideoRegenerate(segmentId int64) error {
	d.videoSingles = append(d.videoSingles, segmentId)
	return nil
}

func newTestService() (*Service, *fakeImageGen, *fakeVideoGen, *fakeStore, *dispatchRecorder) {
	imageGen := &fakeImageGen{failOn: map[string]error{}}
	videoGen := &fakeVideoGen{}
	store := newFakeStore()
	dispatch := &dispatchRecorder{}
	svc := &Service{
		Llm:          &fakeLlm{},
		GrsaiImage:   imageGen,
		Jimeng:       imageGen,
		VideoGen:     videoGen,
		Oss:          store,
		OssUrlExpire: func() int64 { return 0 },
		Dispatch:     dispatch,
	}
	return svc, imageGen, videoGen, store, dispatch
}

func createTestUser(t *testing.T, username string) *types.User {
	t.Helper()
	user := &types.User{
		Username:       username,
		Email:          username + "@example.com",
		HashedPassword: "x",
		IsActive:       true,
	}
	require.NoError(t, storage.CreateUser(user))
	return user
}

func createTestProject(t *testing.T, userId int64) *types.Project {
	t.Helper()
	project := &types.Project{Name: "测试项目", UserId: userId, Status: types.ProjectStatusDraft}
	require.NoError(t, storage.CreateProject(project))
	return project
}

const testScriptContent = `第0帧：实验室里，一位科学家凝视着发光的屏幕

(0:00 - 0:06) 深夜的实验室，数据在屏幕上不断跳动

(0:06 - 0:12) 科学家突然发现了异常的信号波形

(0:12 - 0:18) 她把波形放大，一个清晰的规律浮现出来`

func createTestScript(t *testing.T, projectId int64) *types.Script {
	t.Helper()
	script := &types.Script{
		ProjectId:       projectId,
		Content:         testScriptContent,
		Style:           "storytelling",
		TotalDuration:   18,
		SegmentDuration: 6,
	}
	require.NoError(t, storage.CreateScript(script))
	return script
}
