package service

import (
	"context"

	"storyframe-ai/internal/storage"
	"storyframe-ai/internal/types"
	"storyframe-ai/internal/watcher"
	"storyframe-ai/log"

	"go.uber.org/zap"
)

// watchKeyframeBatch polls the batch rows until every keyframe reaches a
// terminal state, then closes out the project status. Used when batches run
// on external queue workers, which may die without flipping the project.
func (s *Service) watchKeyframeBatch(scriptId, projectId int64) {
	w := watcher.New(watcher.DefaultInterval, func(ctx context.Context) ([]watcher.Item, error) {
		keyframes, err := storage.GetKeyframesByScript(scriptId)
		if err != nil {
			return nil, err
		}
		items := make([]watcher.Item, len(keyframes))
		for i, kf := range keyframes {
			items[i] = watcher.Item{Id: kf.Id, Status: string(kf.Status)}
		}
		return items, nil
	})
	w.OnUpdate(func(items []watcher.Item) {
		for _, item := range items {
			if item.Status != string(types.KeyframeStatusCompleted) {
				return
			}
		}
		if err := storage.UpdateProjectStatus(projectId, types.ProjectStatusKeyframesCompleted); err != nil {
			log.GetLogger().Warn("更新项目状态失败", zap.Int64("project_id", projectId), zap.Error(err))
		}
	})
	w.Start(context.Background())
}

// watchVideoBatch is the video counterpart of watchKeyframeBatch.
func (s *Service) watchVideoBatch(scriptId, projectId int64) {
	w := watcher.New(watcher.DefaultInterval, func(ctx context.Context) ([]watcher.Item, error) {
		segments, err := storage.GetVideoSegmentsByScript(scriptId)
		if err != nil {
			return nil, err
		}
		items := make([]watcher.Item, len(segments))
		for i, seg := range segments {
			items[i] = watcher.Item{Id: seg.Id, Status: string(seg.Status)}
		}
		return items, nil
	})
	w.OnUpdate(func(items []watcher.Item) {
		for _, item := range items {
			if item.Status != string(types.VideoStatusCompleted) {
				return
			}
		}
		if err := storage.UpdateProjectStatus(projectId, types.ProjectStatusCompleted); err != nil {
			log.GetLogger().Warn("更新项目状态失败", zap.Int64("project_id", projectId), zap.Error(err))
		}
	})
	w.Start(context.Background())
}
