package dto

// GenerateKeyframesReq 为脚本的全部分段生成关键帧
type GenerateKeyframesReq struct {
	ScriptId    int64  `json:"script_id" binding:"required"`
	Model       string `json:"model"`        // jimeng_t2i_v40 / nano-banana / nano-banana-fast / sora-image
	AspectRatio string `json:"aspect_ratio"` // 16:9 / 9:16 / 1:1
	Quality     string `json:"quality"`      // 1K / 2K / 4K（仅即梦支持）
}

// UpdateKeyframeReq 修改关键帧提示词
type UpdateKeyframeReq struct {
	Prompt string `json:"prompt" binding:"required"`
}

// ImageModelInfo 图像模型目录项
type ImageModelInfo struct {
	Id                string   `json:"id"`
	Name              string   `json:"name"`
	Provider          string   `json:"provider"`
	Description       string   `json:"description"`
	AspectRatios      []string `json:"aspect_ratios"`
	Qualities         []string `json:"qualities,omitempty"`
	SupportsReference bool     `json:"supports_reference"`
}
