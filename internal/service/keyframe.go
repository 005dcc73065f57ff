package service

import (
	"context"
	"fmt"
	"time"

	"storyframe-ai/internal/dto"
	"storyframe-ai/internal/storage"
	"storyframe-ai/internal/types"
	"storyframe-ai/log"
	apperrors "storyframe-ai/pkg/errors"
	"storyframe-ai/pkg/scriptparse"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	defaultImageModel  = "jimeng_t2i_v40"
	defaultAspectRatio = "16:9"
	defaultQuality     = "2K"

	// 超过该时长仍在生成中的关键帧视为僵尸任务
	keyframeStaleTimeout = 5 * time.Minute

	keyframeCategory = "keyframes"
)

// resolveImageConfig merges request overrides with the project's saved image
// model config and validates against the model catalog.
func (s *Service) resolveImageConfig(project *types.Project, model, aspectRatio, quality string) (string, string, string, error) {
	if model == "" {
		model = project.ImageModel
	}
	if model == "" {
		model = defaultImageModel
	}
	info, ok := s.imageModel(model)
	if !ok {
		return "", "", "", apperrors.ErrModelNotFound
	}

	if aspectRatio == "" {
		aspectRatio = project.AspectRatio
	}
	if aspectRatio == "" {
		aspectRatio = defaultAspectRatio
	}
	if !lo.Contains(info.AspectRatios, aspectRatio) {
		return "", "", "", apperrors.WrapWithDetail(apperrors.CodeInvalidParams,
			"参数错误 Invalid parameters",
			fmt.Sprintf("模型 %s 不支持比例 %s", model, aspectRatio), nil)
	}

	if len(info.Qualities) == 0 {
		quality = ""
	} else {
		if quality == "" {
			quality = project.Quality
		}
		if quality == "" {
			quality = defaultQuality
		}
		if !lo.Contains(info.Qualities, quality) {
			return "", "", "", apperrors.WrapWithDetail(apperrors.CodeInvalidParams,
				"参数错误 Invalid parameters",
				fmt.Sprintf("模型 %s 不支持清晰度 %s", model, quality), nil)
		}
	}
	return model, aspectRatio, quality, nil
}

// GenerateKeyframes 为脚本全部分段创建关键帧任务并启动后台批次。开场帧
// 段落会额外生成一个合成首帧，排在批次第一位。
func (s *Service) GenerateKeyframes(userId int64, req dto.GenerateKeyframesReq) ([]types.Keyframe, error) {
	script, err := s.GetScript(req.ScriptId, userId)
	if err != nil {
		return nil, err
	}
	project, err := s.GetProject(script.ProjectId, userId)
	if err != nil {
		return nil, err
	}

	model, aspectRatio, quality, err := s.resolveImageConfig(project, req.Model, req.AspectRatio, req.Quality)
	if err != nil {
		return nil, err
	}

	parsed := scriptparse.Parse(script.Content, script.SegmentDuration)
	narration := scriptparse.Narration(parsed)
	if len(narration) == 0 {
		return nil, apperrors.WrapWithDetail(apperrors.CodeScriptParseFailed,
			"脚本解析失败 Script parse failed", "未识别到任何旁白分段", nil)
	}

	var keyframes []*types.Keyframe
	if frame0, ok := scriptparse.Frame0(parsed); ok {
		keyframes = append(keyframes, &types.Keyframe{
			ScriptId:  script.Id,
			SegmentId: narration[0].Id + types.FirstFrameSuffix,
			Prompt:    frame0.Content,
			Status:    types.KeyframeStatusGenerating,
		})
	}
	for _, seg := range narration {
		keyframes = append(keyframes, &types.Keyframe{
			ScriptId:  script.Id,
			SegmentId: seg.Id,
			Prompt:    seg.Content,
			Status:    types.KeyframeStatusGenerating,
		})
	}

	if err := storage.DeleteKeyframesByScript(script.Id); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "清理旧关键帧失败 Delete old keyframes failed", err)
	}
	if err := storage.CreateKeyframes(keyframes); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "创建关键帧失败 Create keyframes failed", err)
	}

	// 记住本次的模型配置，重新生成单帧时沿用
	project.ImageModel = model
	project.AspectRatio = aspectRatio
	project.Quality = quality
	project.Status = types.ProjectStatusKeyframesGenerating
	if err := storage.SaveProject(project); err != nil {
		log.GetLogger().Warn("保存项目模型配置失败", zap.Int64("project_id", project.Id), zap.Error(err))
	}

	s.dispatchKeyframeBatch(script.Id, model, aspectRatio, quality)
	if s.WatchBatches {
		s.watchKeyframeBatch(script.Id, project.Id)
	}

	log.GetLogger().Info("关键帧批次已提交",
		zap.Int64("script_id", script.Id),
		zap.String("model", model),
		zap.Int("count", len(keyframes)))
	return lo.Map(keyframes, func(k *types.Keyframe, _ int) types.Keyframe { return *k }), nil
}

func (s *Service) dispatchKeyframeBatch(scriptId int64, model, aspectRatio, quality string) {
	if s.Dispatch != nil {
		err := s.Dispatch.SubmitKeyframeBatch(scriptId, model, aspectRatio, quality)
		if err == nil {
			return
		}
		log.GetLogger().Error("提交关键帧批次失败，降级为本地执行", zap.Int64("script_id", scriptId), zap.Error(err))
	}
	go s.RunKeyframeBatch(context.Background(), scriptId, model, aspectRatio, quality)
}

// RunKeyframeBatch 顺序生成脚本的全部关键帧。每一帧把上一帧的存储URL作为
// 参考图传入以保持画面一致性；某一帧失败不阻断后续，参考图维持在最近一次
// 成功的帧上。
func (s *Service) RunKeyframeBatch(ctx context.Context, scriptId int64, model, aspectRatio, quality string) {
	keyframes, err := storage.GetKeyframesByScript(scriptId)
	if err != nil {
		log.GetLogger().Error("加载关键帧失败", zap.Int64("script_id", scriptId), zap.Error(err))
		return
	}

	info, _ := s.imageModel(model)
	gen := s.imageGeneratorFor(model)

	referenceUrl := ""
	for i := range keyframes {
		kf := &keyframes[i]
		if kf.Status != types.KeyframeStatusGenerating {
			continue
		}

		req := types.ImageGenerationRequest{
			Prompt:      kf.Prompt,
			Model:       model,
			AspectRatio: aspectRatio,
			Quality:     quality,
		}
		if info.SupportsReference {
			req.ReferenceImageUrl = referenceUrl
		}

		ossUrl, err := s.generateAndStoreImage(ctx, gen, req, kf.Id)
		if err != nil {
			log.GetLogger().Error("关键帧生成失败",
				zap.Int64("keyframe_id", kf.Id),
				zap.String("segment_id", kf.SegmentId),
				zap.Error(err))
			kf.Status = types.KeyframeStatusFailed
			kf.ErrorMessage = apperrors.GetMessage(err)
			if saveErr := storage.SaveKeyframe(kf); saveErr != nil {
				log.GetLogger().Error("保存关键帧状态失败", zap.Int64("keyframe_id", kf.Id), zap.Error(saveErr))
			}
			continue
		}

		kf.ImageUrl = ossUrl
		kf.Status = types.KeyframeStatusCompleted
		kf.ErrorMessage = ""
		if err := storage.SaveKeyframe(kf); err != nil {
			log.GetLogger().Error("保存关键帧失败", zap.Int64("keyframe_id", kf.Id), zap.Error(err))
			continue
		}
		referenceUrl = ossUrl
	}

	allCompleted := lo.EveryBy(keyframes, func(k types.Keyframe) bool {
		return k.Status == types.KeyframeStatusCompleted
	})
	if allCompleted {
		if script, err := storage.GetScript(scriptId); err == nil {
			if err := storage.UpdateProjectStatus(script.ProjectId, types.ProjectStatusKeyframesCompleted); err != nil {
				log.GetLogger().Warn("更新项目状态失败", zap.Int64("project_id", script.ProjectId), zap.Error(err))
			}
		}
	}
	log.GetLogger().Info("关键帧批次结束",
		zap.Int64("script_id", scriptId),
		zap.Bool("all_completed", allCompleted))
}

// generateAndStoreImage calls the provider and re-uploads the temporary URL
// to durable storage.
func (s *Service) generateAndStoreImage(ctx context.Context, gen types.ImageGenerator, req types.ImageGenerationRequest, keyframeId int64) (string, error) {
	tempUrl, err := gen.GenerateImage(ctx, req)
	if err != nil {
		return "", err
	}
	result, err := s.Oss.UploadFromUrl(ctx, tempUrl, fmt.Sprintf("keyframe_%d.jpg", keyframeId), keyframeCategory)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeOSSError, "关键帧存储失败 Store keyframe failed", err)
	}
	return result.Url, nil
}

// RunKeyframeRegenerate 重新生成单个关键帧，不携带参考图
func (s *Service) RunKeyframeRegenerate(ctx context.Context, keyframeId int64, model, aspectRatio, quality string) {
	kf, err := storage.GetKeyframe(keyframeId)
	if err != nil {
		log.GetLogger().Error("加载关键帧失败", zap.Int64("keyframe_id", keyframeId), zap.Error(err))
		return
	}

	req := types.ImageGenerationRequest{
		Prompt:      kf.Prompt,
		Model:       model,
		AspectRatio: aspectRatio,
		Quality:     quality,
	}
	ossUrl, err := s.generateAndStoreImage(ctx, s.imageGeneratorFor(model), req, kf.Id)
	if err != nil {
		log.GetLogger().Error("关键帧重新生成失败", zap.Int64("keyframe_id", kf.Id), zap.Error(err))
		kf.Status = types.KeyframeStatusFailed
		kf.ErrorMessage = apperrors.GetMessage(err)
	} else {
		kf.ImageUrl = ossUrl
		kf.Status = types.KeyframeStatusCompleted
		kf.ErrorMessage = ""
	}
	if err := storage.SaveKeyframe(kf); err != nil {
		log.GetLogger().Error("保存关键帧失败", zap.Int64("keyframe_id", kf.Id), zap.Error(err))
	}
}

// ListKeyframes 查询脚本的全部关键帧，先把僵尸任务标记为失败
func (s *Service) ListKeyframes(scriptId, userId int64) ([]types.Keyframe, error) {
	if _, err := s.GetScript(scriptId, userId); err != nil {
		return nil, err
	}
	if n, err := storage.MarkStaleKeyframes(keyframeStaleTimeout); err != nil {
		log.GetLogger().Warn("标记超时关键帧失败", zap.Error(err))
	} else if n > 0 {
		log.GetLogger().Info("标记超时关键帧", zap.Int64("count", n))
	}

	keyframes, err := storage.GetKeyframesByScript(scriptId)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "查询关键帧失败 Query keyframes failed", err)
	}
	return keyframes, nil
}

func (s *Service) getKeyframeOwned(keyframeId, userId int64) (*types.Keyframe, error) {
	kf, err := storage.GetKeyframe(keyframeId)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(apperrors.CodeDBError, "查询关键帧失败 Query keyframe failed", err)
	}
	if _, err := s.GetScript(kf.ScriptId, userId); err != nil {
		return nil, err
	}
	return kf, nil
}

// RegenerateKeyframe 把单帧置回生成中并提交后台任务
func (s *Service) RegenerateKeyframe(keyframeId, userId int64) (*types.Keyframe, error) {
	kf, err := s.getKeyframeOwned(keyframeId, userId)
	if err != nil {
		return nil, err
	}
	script, err := storage.GetScript(kf.ScriptId)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "查询脚本失败 Query script failed", err)
	}
	project, err := s.GetProject(script.ProjectId, userId)
	if err != nil {
		return nil, err
	}
	model, aspectRatio, quality, err := s.resolveImageConfig(project, "", "", "")
	if err != nil {
		return nil, err
	}

	kf.Status = types.KeyframeStatusGenerating
	kf.ErrorMessage = ""
	if err := storage.SaveKeyframe(kf); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "更新关键帧失败 Update keyframe failed", err)
	}

	if s.Dispatch != nil {
		if err := s.Dispatch.SubmitKeyframeRegenerate(kf.Id, model, aspectRatio, quality); err == nil {
			return kf, nil
		}
		log.GetLogger().Error("提交关键帧重新生成失败，降级为本地执行", zap.Int64("keyframe_id", kf.Id), zap.Error(err))
	}
	go s.RunKeyframeRegenerate(context.Background(), kf.Id, model, aspectRatio, quality)
	return kf, nil
}

// UpdateKeyframePrompt 修改关键帧提示词，不触发重新生成
func (s *Service) UpdateKeyframePrompt(keyframeId, userId int64, prompt string) (*types.Keyframe, error) {
	kf, err := s.getKeyframeOwned(keyframeId, userId)
	if err != nil {
		return nil, err
	}
	kf.Prompt = prompt
	if err := storage.SaveKeyframe(kf); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "更新关键帧失败 Update keyframe failed", err)
	}
	return kf, nil
}

// UploadKeyframeImage 用户自备图片直接替换关键帧
func (s *Service) UploadKeyframeImage(ctx context.Context, keyframeId, userId int64, data []byte, filename, contentType string) (*types.Keyframe, error) {
	kf, err := s.getKeyframeOwned(keyframeId, userId)
	if err != nil {
		return nil, err
	}

	result, err := s.Oss.Upload(ctx, data, filename, keyframeCategory, contentType)
	if err != nil {
		return nil, err
	}

	kf.ImageUrl = result.Url
	kf.Status = types.KeyframeStatusCompleted
	kf.ErrorMessage = ""
	if err := storage.SaveKeyframe(kf); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "更新关键帧失败 Update keyframe failed", err)
	}
	return kf, nil
}
