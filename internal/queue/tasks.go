// Package queue provides task handlers for Asynq background processing.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"storyframe-ai/internal/service"
	"storyframe-ai/log"
)

// TaskHandlers provides handlers for different task types
type TaskHandlers struct {
	service *service.Service
}

// NewTaskHandlers creates a new TaskHandlers instance
func NewTaskHandlers(svc *service.Service) *TaskHandlers {
	return &TaskHandlers{service: svc}
}

// HandleKeyframeBatch processes a full keyframe generation run
func (h *TaskHandlers) HandleKeyframeBatch(ctx context.Context, t *asynq.Task) error {
	var payload KeyframeBatchPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	log.GetLogger().Info("[Queue] Processing keyframe batch",
		zap.Int64("script_id", payload.ScriptId),
		zap.String("model", payload.Model))

	// Per-frame failures are recorded on the rows themselves, the batch
	// run itself does not fail.
	h.service.RunKeyframeBatch(ctx, payload.ScriptId, payload.Model, payload.AspectRatio, payload.Quality)

	log.GetLogger().Info("[Queue] Keyframe batch completed",
		zap.Int64("script_id", payload.ScriptId))
	return nil
}

// HandleKeyframeRegenerate processes a single keyframe regeneration
func (h *TaskHandlers) HandleKeyframeRegenerate(ctx context.Context, t *asynq.Task) error {
	var payload KeyframeRegeneratePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	log.GetLogger().Info("[Queue] Processing keyframe regeneration",
		zap.Int64("keyframe_id", payload.KeyframeId))

	h.service.RunKeyframeRegenerate(ctx, payload.KeyframeId, payload.Model, payload.AspectRatio, payload.Quality)
	return nil
}

// HandleVideoBatch processes a full video generation run
func (h *TaskHandlers) HandleVideoBatch(ctx context.Context, t *asynq.Task) error {
	var payload VideoBatchPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	log.GetLogger().Info("[Queue] Processing video batch",
		zap.Int64("script_id", payload.ScriptId))

	h.service.RunVideoBatch(ctx, payload.ScriptId)

	log.GetLogger().Info("[Queue] Video batch completed",
		zap.Int64("script_id", payload.ScriptId))
	return nil
}

// HandleVideoRegenerate processes a single video segment regeneration
func (h *TaskHandlers) HandleVideoRegenerate(ctx context.Context, t *asynq.Task) error {
	var payload VideoRegeneratePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	log.GetLogger().Info("[Queue] Processing video regeneration",
		zap.Int64("segment_id", payload.SegmentId))

	h.service.RunVideoRegenerate(ctx, payload.SegmentId)
	return nil
}

// RegisterHandlers registers all task handlers with the Asynq server mux
func (h *TaskHandlers) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeKeyframeBatch, h.HandleKeyframeBatch)
	mux.HandleFunc(TypeKeyframeRegenerate, h.HandleKeyframeRegenerate)
	mux.HandleFunc(TypeVideoBatch, h.HandleVideoBatch)
	mux.HandleFunc(TypeVideoRegenerate, h.HandleVideoRegenerate)
}

// StartWorker starts the Asynq worker with registered handlers
func StartWorker(q *Queue, svc *service.Service) error {
	handlers := NewTaskHandlers(svc)

	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	log.GetLogger().Info("[Queue] Starting worker",
		zap.String("redis_addr", q.config.RedisAddr),
		zap.Int("concurrency", q.config.Concurrency))

	return q.server.Run(mux)
}
