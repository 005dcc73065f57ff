package taskrunner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"storyframe-ai/internal/service"
	"storyframe-ai/log"
)

const (
	defaultQueueSize   = 128
	defaultConcurrency = 2
)

var (
	ErrRunnerStopped = errors.New("task runner stopped")
	ErrQueueFull     = errors.New("task queue is full")
)

// Config controls in-process task runner behavior.
type Config struct {
	QueueSize   int
	Concurrency int
}

// DefaultConfig returns a single-node-friendly default config.
func DefaultConfig() Config {
	return Config{
		QueueSize:   defaultQueueSize,
		Concurrency: defaultConcurrency,
	}
}

// KeyframeBatchPayload contains keyframe batch enqueue data.
type KeyframeBatchPayload struct {
	ScriptId    int64  `json:"script_id"`
	Model       string `json:"model"`
	AspectRatio string `json:"aspect_ratio"`
	Quality     string `json:"quality,omitempty"`
}

// KeyframeRegeneratePayload contains single keyframe regeneration data.
type KeyframeRegeneratePayload struct {
	KeyframeId  int64  `json:"keyframe_id"`
	Model       string `json:"model"`
	AspectRatio string `json:"aspect_ratio"`
	Quality     string `json:"quality,omitempty"`
}

// VideoBatchPayload contains video batch enqueue data.
type VideoBatchPayload struct {
	ScriptId int64 `json:"script_id"`
}

// VideoRegeneratePayload contains single video segment regeneration data.
type VideoRegeneratePayload struct {
	SegmentId int64 `json:"segment_id"`
}

type queuedTaskType uint8

const (
	queuedKeyframeBatch queuedTaskType = iota + 1
	queuedKeyframeRegenerate
	queuedVideoBatch
	queuedVideoRegenerate
)

type queuedTask struct {
	taskType           queuedTaskType
	keyframeBatch      KeyframeBatchPayload
	keyframeRegenerate KeyframeRegeneratePayload
	videoBatch         VideoBatchPayload
	videoRegenerate    VideoRegeneratePayload
}

// Runner executes queued generation jobs with in-memory workers. It
// implements service.Dispatcher for the memory queue mode.
type Runner struct {
	service *service.Service
	config  Config

	queue  chan queuedTask
	ctx    context.Context
	cancel context.CancelFunc

	workerWg sync.WaitGroup
	closed   atomic.Bool
}

// New creates and starts a task runner.
func New(svc *service.Service, cfg Config) *Runner {
	if svc == nil {
		svc = service.NewService()
	}

	cfg = normalizeConfig(cfg)
	ctx, cancel := context.WithCancel(context.Background())

	runner := &Runner{
		service: svc,
		config:  cfg,
		queue:   make(chan queuedTask, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	for i := 0; i < cfg.Concurrency; i++ {
		runner.workerWg.Add(1)
		go runner.worker(i + 1)
	}

	return runner
}

func normalizeConfig(cfg Config) Config {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return cfg
}

// SubmitKeyframeBatch queues a full keyframe generation run for a script.
func (r *Runner) SubmitKeyframeBatch(scriptId int64, model, aspectRatio, quality string) error {
	if scriptId <= 0 {
		return errors.New("keyframe batch script id is required")
	}

	return r.submit(queuedTask{
		taskType: queuedKeyframeBatch,
		keyframeBatch: KeyframeBatchPayload{
			ScriptId:    scriptId,
			Model:       model,
			AspectRatio: aspectRatio,
			Quality:     quality,
		},
	}, scriptId, "keyframe_batch")
}

// SubmitKeyframeRegenerate queues a single keyframe regeneration.
func (r *Runner) SubmitKeyframeRegenerate(keyframeId int64, model, aspectRatio, quality string) error {
	if keyframeId <= 0 {
		return errors.New("keyframe id is required")
	}

	return r.submit(queuedTask{
		taskType: queuedKeyframeRegenerate,
		keyframeRegenerate: KeyframeRegeneratePayload{
			KeyframeId:  keyframeId,
			Model:       model,
			AspectRatio: aspectRatio,
			Quality:     quality,
		},
	}, keyframeId, "keyframe_regenerate")
}

// SubmitVideoBatch queues a full video generation run for a script.
func (r *Runner) SubmitVideoBatch(scriptId int64) error {
	if scriptId <= 0 {
		return errors.New("video batch script id is required")
	}

	return r.submit(queuedTask{
		taskType:   queuedVideoBatch,
		videoBatch: VideoBatchPayload{ScriptId: scriptId},
	}, scriptId, "video_batch")
}

// SubmitVideoRegenerate queues a single video segment regeneration.
func (r *Runner) SubmitVideoRegenerate(segmentId int64) error {
	if segmentId <= 0 {
		return errors.New("video segment id is required")
	}

	return r.submit(queuedTask{
		taskType:        queuedVideoRegenerate,
		videoRegenerate: VideoRegeneratePayload{SegmentId: segmentId},
	}, segmentId, "video_regenerate")
}

func (r *Runner) submit(task queuedTask, entityId int64, taskType string) error {
	if r.closed.Load() {
		return ErrRunnerStopped
	}

	select {
	case <-r.ctx.Done():
		return ErrRunnerStopped
	case r.queue <- task:
		log.GetLogger().Info("[TaskRunner] task submitted",
			zap.Int64("entity_id", entityId),
			zap.String("task_type", taskType))
		return nil
	default:
		return ErrQueueFull
	}
}

func (r *Runner) worker(workerID int) {
	defer r.workerWg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		default:
		}

		select {
		case <-r.ctx.Done():
			return
		case task := <-r.queue:
			r.processTask(workerID, task)
		}
	}
}

func (r *Runner) processTask(workerID int, task queuedTask) {
	var entityId int64
	var taskType string

	switch task.taskType {
	case queuedKeyframeBatch:
		p := task.keyframeBatch
		entityId = p.ScriptId
		taskType = "keyframe_batch"
		r.service.RunKeyframeBatch(r.ctx, p.ScriptId, p.Model, p.AspectRatio, p.Quality)
	case queuedKeyframeRegenerate:
		p := task.keyframeRegenerate
		entityId = p.KeyframeId
		taskType = "keyframe_regenerate"
		r.service.RunKeyframeRegenerate(r.ctx, p.KeyframeId, p.Model, p.AspectRatio, p.Quality)
	case queuedVideoBatch:
		entityId = task.videoBatch.ScriptId
		taskType = "video_batch"
		r.service.RunVideoBatch(r.ctx, task.videoBatch.ScriptId)
	case queuedVideoRegenerate:
		entityId = task.videoRegenerate.SegmentId
		taskType = "video_regenerate"
		r.service.RunVideoRegenerate(r.ctx, task.videoRegenerate.SegmentId)
	default:
		log.GetLogger().Error("[TaskRunner] task failed",
			zap.Int("worker_id", workerID),
			zap.Error(fmt.Errorf("unsupported task type: %d", task.taskType)))
		return
	}

	log.GetLogger().Info("[TaskRunner] task completed",
		zap.Int("worker_id", workerID),
		zap.Int64("entity_id", entityId),
		zap.String("task_type", taskType))
}

// Close stops workers and rejects new tasks.
func (r *Runner) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}

	r.cancel()
	r.workerWg.Wait()
}

// Pending returns the number of queued tasks waiting for workers.
func (r *Runner) Pending() int {
	return len(r.queue)
}
