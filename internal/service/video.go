package service

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"time"

	"storyframe-ai/internal/dto"
	"storyframe-ai/internal/storage"
	"storyframe-ai/internal/types"
	"storyframe-ai/log"
	apperrors "storyframe-ai/pkg/errors"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultVideoModel = "veo3-fast"

	// 每段视频固定6秒，与脚本分段时长保持一致
	videoSegmentDuration = 6

	videoCategory  = "videos"
	exportCategory = "exports"

	batchHaltedMessage = "批次中止：前序片段生成失败 Batch halted by earlier segment failure"
)

// lastFrameSuffix 收尾帧关键帧的段落ID后缀，不参与视频配对
const lastFrameSuffix = "_last_frame"

func isChainKeyframe(segmentId string) bool {
	if len(segmentId) > len(types.FirstFrameSuffix) &&
		segmentId[len(segmentId)-len(types.FirstFrameSuffix):] == types.FirstFrameSuffix {
		return false
	}
	if len(segmentId) > len(lastFrameSuffix) &&
		segmentId[len(segmentId)-len(lastFrameSuffix):] == lastFrameSuffix {
		return false
	}
	return true
}

// GenerateVideos 按首尾帧链式配对创建全部视频片段任务并启动批次。
// 第0段用合成首帧到第一个段落帧，之后每段用前一段落帧到本段落帧，
// 提示词固定取目标段落的旁白原文。
func (s *Service) GenerateVideos(userId int64, req dto.GenerateVideosReq) ([]types.VideoSegment, error) {
	script, err := s.GetScript(req.ScriptId, userId)
	if err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = defaultVideoModel
	}
	info, ok := s.videoModel(model)
	if !ok {
		return nil, apperrors.ErrModelNotFound
	}
	aspectRatio := req.AspectRatio
	if aspectRatio == "" {
		aspectRatio = defaultAspectRatio
	}
	if !lo.Contains(info.AspectRatios, aspectRatio) {
		return nil, apperrors.WrapWithDetail(apperrors.CodeInvalidParams,
			"参数错误 Invalid parameters",
			fmt.Sprintf("模型 %s 不支持比例 %s", model, aspectRatio), nil)
	}

	completed, err := storage.GetCompletedKeyframesByScript(script.Id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "查询关键帧失败 Query keyframes failed", err)
	}
	if len(completed) == 0 {
		return nil, apperrors.ErrKeyframesPending
	}

	firstFrame, hasFirst := lo.Find(completed, func(k types.Keyframe) bool {
		return k.IsSyntheticFirstFrame()
	})
	chain := lo.Filter(completed, func(k types.Keyframe, _ int) bool {
		return isChainKeyframe(k.SegmentId)
	})
	if len(chain) == 0 {
		return nil, apperrors.ErrKeyframesPending
	}
	if !hasFirst {
		return nil, apperrors.ErrMissingFirstFrame
	}

	segments := make([]*types.VideoSegment, 0, len(chain))
	for i, kf := range chain {
		firstUrl := firstFrame.ImageUrl
		if i > 0 {
			firstUrl = chain[i-1].ImageUrl
		}
		segments = append(segments, &types.VideoSegment{
			ScriptId:      script.Id,
			SegmentIndex:  i,
			FirstFrameUrl: firstUrl,
			LastFrameUrl:  kf.ImageUrl,
			Prompt:        kf.Prompt,
			Model:         model,
			AspectRatio:   aspectRatio,
			Status:        types.VideoStatusPending,
			Duration:      videoSegmentDuration,
		})
	}

	if err := storage.DeleteVideoSegmentsByScript(script.Id); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "清理旧视频片段失败 Delete old video segments failed", err)
	}
	if err := storage.CreateVideoSegments(segments); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "创建视频片段失败 Create video segments failed", err)
	}

	if err := storage.UpdateProjectStatus(script.ProjectId, types.ProjectStatusVideoGenerating); err != nil {
		log.GetLogger().Warn("更新项目状态失败", zap.Int64("project_id", script.ProjectId), zap.Error(err))
	}

	s.dispatchVideoBatch(script.Id)
	if s.WatchBatches {
		s.watchVideoBatch(script.Id, script.ProjectId)
	}

	log.GetLogger().Info("视频批次已提交",
		zap.Int64("script_id", script.Id),
		zap.String("model", model),
		zap.Int("count", len(segments)))
	return lo.Map(segments, func(v *types.VideoSegment, _ int) types.VideoSegment { return *v }), nil
}

func (s *Service) dispatchVideoBatch(scriptId int64) {
	if s.Dispatch != nil {
		err := s.Dispatch.SubmitVideoBatch(scriptId)
		if err == nil {
			return
		}
		log.GetLogger().Error("提交视频批次失败，降级为本地执行", zap.Int64("script_id", scriptId), zap.Error(err))
	}
	go s.RunVideoBatch(context.Background(), scriptId)
}

// RunVideoBatch 按段落顺序生成视频。任何一段失败即中止批次，剩余待生成
// 片段统一标记失败；已完成片段不受影响。
func (s *Service) RunVideoBatch(ctx context.Context, scriptId int64) {
	segments, err := storage.GetVideoSegmentsByScript(scriptId)
	if err != nil {
		log.GetLogger().Error("加载视频片段失败", zap.Int64("script_id", scriptId), zap.Error(err))
		return
	}

	halted := false
	for i := range segments {
		seg := &segments[i]
		if seg.Status != types.VideoStatusPending {
			continue
		}
		if halted {
			seg.Status = types.VideoStatusFailed
			seg.ErrorMessage = batchHaltedMessage
			if err := storage.SaveVideoSegment(seg); err != nil {
				log.GetLogger().Error("保存视频片段状态失败", zap.Int64("segment_id", seg.Id), zap.Error(err))
			}
			continue
		}

		seg.Status = types.VideoStatusGenerating
		seg.ErrorMessage = ""
		if err := storage.SaveVideoSegment(seg); err != nil {
			log.GetLogger().Error("保存视频片段状态失败", zap.Int64("segment_id", seg.Id), zap.Error(err))
			continue
		}

		if err := s.generateVideoSegment(ctx, seg); err != nil {
			log.GetLogger().Error("视频片段生成失败",
				zap.Int64("segment_id", seg.Id),
				zap.Int("segment_index", seg.SegmentIndex),
				zap.Error(err))
			seg.Status = types.VideoStatusFailed
			seg.ErrorMessage = apperrors.GetMessage(err)
			if saveErr := storage.SaveVideoSegment(seg); saveErr != nil {
				log.GetLogger().Error("保存视频片段状态失败", zap.Int64("segment_id", seg.Id), zap.Error(saveErr))
			}
			halted = true
			continue
		}
		if err := storage.SaveVideoSegment(seg); err != nil {
			log.GetLogger().Error("保存视频片段失败", zap.Int64("segment_id", seg.Id), zap.Error(err))
		}
	}

	allCompleted := lo.EveryBy(segments, func(v types.VideoSegment) bool {
		return v.Status == types.VideoStatusCompleted
	})
	if allCompleted {
		if script, err := storage.GetScript(scriptId); err == nil {
			if err := storage.UpdateProjectStatus(script.ProjectId, types.ProjectStatusCompleted); err != nil {
				log.GetLogger().Warn("更新项目状态失败", zap.Int64("project_id", script.ProjectId), zap.Error(err))
			}
		}
	}
	log.GetLogger().Info("视频批次结束",
		zap.Int64("script_id", scriptId),
		zap.Bool("all_completed", allCompleted),
		zap.Bool("halted", halted))
}

// generateVideoSegment calls the provider and re-uploads the temporary URL
// to durable storage, mutating seg to completed on success.
func (s *Service) generateVideoSegment(ctx context.Context, seg *types.VideoSegment) error {
	tempUrl, err := s.VideoGen.GenerateVideo(ctx, types.VideoGenerationRequest{
		Model:         seg.Model,
		Prompt:        seg.Prompt,
		FirstFrameUrl: seg.FirstFrameUrl,
		LastFrameUrl:  seg.LastFrameUrl,
		AspectRatio:   seg.AspectRatio,
		Duration:      seg.Duration,
	})
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("video_segment_%d_%d.mp4", seg.Id, time.Now().Unix())
	result, err := s.Oss.UploadFromUrl(ctx, tempUrl, filename, videoCategory)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeOSSError, "视频存储失败 Store video failed", err)
	}

	seg.VideoUrl = result.Url
	seg.Status = types.VideoStatusCompleted
	seg.ErrorMessage = ""
	return nil
}

// RunVideoRegenerate 重新生成单个视频片段，沿用该片段记录的首尾帧与提示词
func (s *Service) RunVideoRegenerate(ctx context.Context, segmentId int64) {
	seg, err := storage.GetVideoSegment(segmentId)
	if err != nil {
		log.GetLogger().Error("加载视频片段失败", zap.Int64("segment_id", segmentId), zap.Error(err))
		return
	}

	if err := s.generateVideoSegment(ctx, seg); err != nil {
		log.GetLogger().Error("视频片段重新生成失败", zap.Int64("segment_id", seg.Id), zap.Error(err))
		seg.Status = types.VideoStatusFailed
		seg.ErrorMessage = apperrors.GetMessage(err)
	}
	if err := storage.SaveVideoSegment(seg); err != nil {
		log.GetLogger().Error("保存视频片段失败", zap.Int64("segment_id", seg.Id), zap.Error(err))
	}
}

func (s *Service) getVideoSegmentOwned(segmentId, userId int64) (*types.VideoSegment, error) {
	seg, err := storage.GetVideoSegment(segmentId)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(apperrors.CodeDBError, "查询视频片段失败 Query video segment failed", err)
	}
	if _, err := s.GetScript(seg.ScriptId, userId); err != nil {
		return nil, err
	}
	return seg, nil
}

// RegenerateVideoSegment 把单个片段置回生成中并提交后台任务
func (s *Service) RegenerateVideoSegment(segmentId, userId int64) (*types.VideoSegment, error) {
	seg, err := s.getVideoSegmentOwned(segmentId, userId)
	if err != nil {
		return nil, err
	}

	seg.Status = types.VideoStatusGenerating
	seg.ErrorMessage = ""
	if err := storage.SaveVideoSegment(seg); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "更新视频片段失败 Update video segment failed", err)
	}

	if s.Dispatch != nil {
		err := s.Dispatch.SubmitVideoRegenerate(seg.Id)
		if err == nil {
			return seg, nil
		}
		log.GetLogger().Error("提交视频重新生成失败，降级为本地执行", zap.Int64("segment_id", seg.Id), zap.Error(err))
	}
	go s.RunVideoRegenerate(context.Background(), seg.Id)
	return seg, nil
}

// ListVideoSegments 查询脚本的全部视频片段
func (s *Service) ListVideoSegments(scriptId, userId int64) ([]types.VideoSegment, error) {
	if _, err := s.GetScript(scriptId, userId); err != nil {
		return nil, err
	}
	segments, err := storage.GetVideoSegmentsByScript(scriptId)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "查询视频片段失败 Query video segments failed", err)
	}
	return segments, nil
}

// ExportVideos 把脚本全部已完成片段打包为zip上传，返回下载地址。
// 任何片段未完成时拒绝导出。
func (s *Service) ExportVideos(ctx context.Context, userId int64, req dto.ExportVideosReq) (*dto.ExportVideosResData, error) {
	script, err := s.GetScript(req.ScriptId, userId)
	if err != nil {
		return nil, err
	}

	segments, err := storage.GetVideoSegmentsByScript(script.Id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "查询视频片段失败 Query video segments failed", err)
	}
	if len(segments) == 0 {
		return nil, apperrors.ErrExportIncomplete
	}
	for _, seg := range segments {
		if seg.Status != types.VideoStatusCompleted {
			return nil, apperrors.ErrExportIncomplete
		}
	}

	// 并发下载，按段落顺序保序
	contents := make([][]byte, len(segments))
	g, gctx := errgroup.WithContext(ctx)
	for i, seg := range segments {
		i, seg := i, seg
		g.Go(func() error {
			data, err := s.Oss.Download(gctx, seg.VideoUrl)
			if err != nil {
				return apperrors.WrapWithDetail(apperrors.CodeExportFailed,
					"导出失败 Export failed",
					fmt.Sprintf("下载片段 %d 失败", seg.SegmentIndex), err)
			}
			contents[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i, seg := range segments {
		w, err := zw.Create(fmt.Sprintf("segment_%d.mp4", seg.SegmentIndex))
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeExportFailed, "导出失败 Export failed", err)
		}
		if _, err := w.Write(contents[i]); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeExportFailed, "导出失败 Export failed", err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeExportFailed, "导出失败 Export failed", err)
	}

	filename := fmt.Sprintf("videos_script_%d_%d.zip", script.Id, time.Now().Unix())
	result, err := s.Oss.Upload(ctx, buf.Bytes(), filename, exportCategory, "application/zip")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeOSSError, "导出文件上传失败 Upload export failed", err)
	}

	log.GetLogger().Info("视频导出成功",
		zap.Int64("script_id", script.Id),
		zap.Int("file_count", len(segments)),
		zap.Int("zip_size", buf.Len()))
	return &dto.ExportVideosResData{
		DownloadUrl: result.Url,
		ExpiresIn:   s.OssUrlExpire(),
		FileCount:   len(segments),
	}, nil
}
