package service

import (
	"context"

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
	defaultScriptStyle     = "storytelling"
	defaultScriptModel     = "deepseek-chat"
	defaultTotalDuration   = 30
	defaultSegmentDuration = 6
)

// GenerateScript 根据创意简介生成带时间标注的脚本并分段入库
func (s *Service) GenerateScript(ctx context.Context, userId int64, req dto.GenerateScriptReq) (*types.Script, error) {
	if _, err := s.GetProject(req.ProjectId, userId); err != nil {
		return nil, err
	}

	style := req.Style
	if style == "" {
		style = defaultScriptStyle
	}
	model := req.Model
	if model == "" {
		model = defaultScriptModel
	}
	totalDuration := req.TotalDuration
	if totalDuration <= 0 {
		totalDuration = defaultTotalDuration
	}
	segmentDuration := req.SegmentDuration
	if segmentDuration <= 0 {
		segmentDuration = defaultSegmentDuration
	}
	if totalDuration < segmentDuration {
		return nil, apperrors.WrapWithDetail(apperrors.CodeInvalidParams,
			"参数错误 Invalid parameters", "总时长不能小于分段时长", nil)
	}

	content, err := s.Llm.GenerateScript(ctx, req.Inspiration, s.scriptStyleDescription(style),
		totalDuration, segmentDuration, model)
	if err != nil {
		return nil, err
	}
	if content == "" {
		return nil, apperrors.ErrScriptEmpty
	}

	segments := scriptparse.Parse(content, segmentDuration)
	narration := scriptparse.Narration(segments)
	if len(narration) == 0 {
		return nil, apperrors.WrapWithDetail(apperrors.CodeScriptParseFailed,
			"脚本解析失败 Script parse failed", "未识别到任何旁白分段", nil)
	}

	script := &types.Script{
		ProjectId:       req.ProjectId,
		Content:         content,
		Style:           style,
		TotalDuration:   totalDuration,
		SegmentDuration: segmentDuration,
		Segments:        toScriptSegments(narration),
	}
	if err := storage.CreateScript(script); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "保存脚本失败 Save script failed", err)
	}

	if err := storage.UpdateProjectStatus(req.ProjectId, types.ProjectStatusScriptGenerated); err != nil {
		log.GetLogger().Warn("更新项目状态失败", zap.Int64("project_id", req.ProjectId), zap.Error(err))
	}

	log.GetLogger().Info("脚本生成成功",
		zap.Int64("script_id", script.Id),
		zap.Int64("project_id", req.ProjectId),
		zap.String("model", model),
		zap.Int("segments", len(narration)))
	return script, nil
}

// GetScript 查询脚本，经项目归属校验
func (s *Service) GetScript(scriptId, userId int64) (*types.Script, error) {
	script, err := storage.GetScript(scriptId)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(apperrors.CodeDBError, "查询脚本失败 Query script failed", err)
	}
	if _, err := s.GetProject(script.ProjectId, userId); err != nil {
		return nil, err
	}
	return script, nil
}

// UpdateScript 手动修改脚本。只改内容时按内容重新分段；显式给出分段则以
// 分段为准。
func (s *Service) UpdateScript(scriptId, userId int64, req dto.UpdateScriptReq) (*types.Script, error) {
	script, err := s.GetScript(scriptId, userId)
	if err != nil {
		return nil, err
	}
	if req.Content == "" && len(req.Segments) == 0 {
		return nil, apperrors.ErrInvalidParams
	}

	if req.Content != "" {
		script.Content = req.Content
		if len(req.Segments) == 0 {
			narration := scriptparse.Narration(scriptparse.Parse(req.Content, script.SegmentDuration))
			script.Segments = toScriptSegments(narration)
		}
	}
	if len(req.Segments) > 0 {
		script.Segments = req.Segments
	}

	if err := storage.SaveScript(script); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "更新脚本失败 Update script failed", err)
	}
	return script, nil
}

// OptimizeScript 按新的创意描述优化现有脚本，保留时间标注结构
func (s *Service) OptimizeScript(ctx context.Context, scriptId, userId int64, req dto.OptimizeScriptReq) (*types.Script, error) {
	script, err := s.GetScript(scriptId, userId)
	if err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = defaultScriptModel
	}
	optimized, err := s.Llm.OptimizeScript(ctx, script.Content, req.Description, model)
	if err != nil {
		return nil, err
	}
	if optimized == "" {
		return nil, apperrors.ErrScriptEmpty
	}

	script.Content = optimized
	script.OptimizedContent = optimized
	script.Segments = toScriptSegments(scriptparse.Narration(scriptparse.Parse(optimized, script.SegmentDuration)))

	if err := storage.SaveScript(script); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "保存脚本失败 Save script failed", err)
	}
	log.GetLogger().Info("脚本优化成功", zap.Int64("script_id", script.Id), zap.String("model", model))
	return script, nil
}

func toScriptSegments(segments []scriptparse.Segment) []types.ScriptSegment {
	return lo.Map(segments, func(seg scriptparse.Segment, _ int) types.ScriptSegment {
		return types.ScriptSegment{
			Id:        seg.Id,
			TimeStart: seg.TimeStart,
			TimeEnd:   seg.TimeEnd,
			Content:   seg.Content,
		}
	})
}
