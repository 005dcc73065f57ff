// Package queue provides background task processing using Asynq.
// It supports reliable task queueing with retry logic and persistence.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"storyframe-ai/log"
)

// Task type names
const (
	TypeKeyframeBatch      = "keyframe:batch"
	TypeKeyframeRegenerate = "keyframe:regenerate"
	TypeVideoBatch         = "video:batch"
	TypeVideoRegenerate    = "video:regenerate"
)

// KeyframeBatchPayload contains the data for a keyframe batch task
type KeyframeBatchPayload struct {
	ScriptId    int64  `json:"script_id"`
	Model       string `json:"model"`
	AspectRatio string `json:"aspect_ratio"`
	Quality     string `json:"quality,omitempty"`
}

// KeyframeRegeneratePayload contains the data for a single keyframe regeneration
type KeyframeRegeneratePayload struct {
	KeyframeId  int64  `json:"keyframe_id"`
	Model       string `json:"model"`
	AspectRatio string `json:"aspect_ratio"`
	Quality     string `json:"quality,omitempty"`
}

// VideoBatchPayload contains the data for a video batch task
type VideoBatchPayload struct {
	ScriptId int64 `json:"script_id"`
}

// VideoRegeneratePayload contains the data for a single video segment regeneration
type VideoRegeneratePayload struct {
	SegmentId int64 `json:"segment_id"`
}

// QueueConfig holds Redis configuration for Asynq
type QueueConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Concurrency   int
}

// Queue manages task enqueueing and processing.
// It implements service.Dispatcher for the redis queue mode.
type Queue struct {
	client *asynq.Client
	server *asynq.Server
	config QueueConfig
}

// DefaultConfig returns default queue configuration
func DefaultConfig() QueueConfig {
	return QueueConfig{
		RedisAddr:   "localhost:6379",
		RedisDB:     0,
		Concurrency: 3,
	}
}

// NewQueue creates a new Queue instance
func NewQueue(cfg QueueConfig) *Queue {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	client := asynq.NewClient(redisOpt)

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			RetryDelayFunc: func(n int, e error, t *asynq.Task) time.Duration {
				// Exponential backoff: 10s, 20s, 40s, 80s, ...
				return time.Duration(10<<uint(n)) * time.Second
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.GetLogger().Error("Task failed",
					zap.String("type", task.Type()),
					zap.ByteString("payload", task.Payload()),
					zap.Error(err))
			}),
		},
	)

	return &Queue{
		client: client,
		server: server,
		config: cfg,
	}
}

func (q *Queue) enqueue(taskType string, payload any, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	task := asynq.NewTask(taskType, data, opts...)
	info, err := q.client.Enqueue(task)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	log.GetLogger().Info("Task enqueued",
		zap.String("type", taskType),
		zap.String("queue_id", info.ID),
		zap.String("queue", info.Queue))

	return nil
}

// SubmitKeyframeBatch adds a keyframe batch task to the queue.
// Batches are not retried: partially generated frames are regenerated
// individually instead.
func (q *Queue) SubmitKeyframeBatch(scriptId int64, model, aspectRatio, quality string) error {
	return q.enqueue(TypeKeyframeBatch,
		KeyframeBatchPayload{ScriptId: scriptId, Model: model, AspectRatio: aspectRatio, Quality: quality},
		asynq.MaxRetry(0),
		asynq.Timeout(30*time.Minute),
		asynq.Queue("default"),
	)
}

// SubmitKeyframeRegenerate adds a single keyframe regeneration to the queue
func (q *Queue) SubmitKeyframeRegenerate(keyframeId int64, model, aspectRatio, quality string) error {
	return q.enqueue(TypeKeyframeRegenerate,
		KeyframeRegeneratePayload{KeyframeId: keyframeId, Model: model, AspectRatio: aspectRatio, Quality: quality},
		asynq.MaxRetry(0),
		asynq.Timeout(10*time.Minute),
		asynq.Queue("default"),
	)
}

// SubmitVideoBatch adds a video batch task to the queue
func (q *Queue) SubmitVideoBatch(scriptId int64) error {
	return q.enqueue(TypeVideoBatch,
		VideoBatchPayload{ScriptId: scriptId},
		asynq.MaxRetry(0),
		asynq.Timeout(60*time.Minute),
		asynq.Queue("default"),
	)
}

// SubmitVideoRegenerate adds a single video segment regeneration to the queue
func (q *Queue) SubmitVideoRegenerate(segmentId int64) error {
	return q.enqueue(TypeVideoRegenerate,
		VideoRegeneratePayload{SegmentId: segmentId},
		asynq.MaxRetry(0),
		asynq.Timeout(15*time.Minute),
		asynq.Queue("default"),
	)
}

// Close gracefully shuts down the queue
func (q *Queue) Close() error {
	if err := q.client.Close(); err != nil {
		return err
	}
	q.server.Shutdown()
	return nil
}

// Client returns the underlying Asynq client for advanced usage
func (q *Queue) Client() *asynq.Client {
	return q.client
}

// Server returns the underlying Asynq server for advanced usage
func (q *Queue) Server() *asynq.Server {
	return q.server
}
