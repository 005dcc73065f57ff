package dto

import "storyframe-ai/internal/types"

// GenerateScriptReq 根据创意简介生成脚本
type GenerateScriptReq struct {
	ProjectId       int64  `json:"project_id" binding:"required"`
	Inspiration     string `json:"inspiration" binding:"required"`
	Style           string `json:"style"`            // storytelling / visual_animation
	TotalDuration   int    `json:"total_duration"`   // Seconds, default 30
	SegmentDuration int    `json:"segment_duration"` // Seconds, default 6
	Model           string `json:"model"`            // deepseek-chat / qwen-plus
}

// UpdateScriptReq 手动修改脚本内容或分段
type UpdateScriptReq struct {
	Content  string                `json:"content"`
	Segments []types.ScriptSegment `json:"segments"`
}

// OptimizeScriptReq 按创意描述重新优化脚本
type OptimizeScriptReq struct {
	Description string `json:"description" binding:"required"`
	Model       string `json:"model"`
}

// ScriptModelInfo LLM模型目录项
type ScriptModelInfo struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Provider    string `json:"provider"`
	Description string `json:"description"`
}

// ScriptStyleInfo 脚本风格目录项
type ScriptStyleInfo struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
