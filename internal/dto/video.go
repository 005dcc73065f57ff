package dto

// GenerateVideosReq 按首尾帧链式生成全部视频片段
type GenerateVideosReq struct {
	ScriptId    int64  `json:"script_id" binding:"required"`
	Model       string `json:"model"`        // veo3-fast / veo3-pro / veo3.1-fast / veo3.1-pro / sora-2
	AspectRatio string `json:"aspect_ratio"` // 16:9 / 9:16
}

// ExportVideosReq 导出脚本全部已完成片段为zip
type ExportVideosReq struct {
	ScriptId int64 `json:"script_id" binding:"required"`
}

type ExportVideosResData struct {
	DownloadUrl string `json:"download_url"`
	ExpiresIn   int64  `json:"expires_in"` // Seconds, 0 for permanent public URL
	FileCount   int    `json:"file_count"`
}

// VideoModelInfo 视频模型目录项
type VideoModelInfo struct {
	Id                string   `json:"id"`
	Name              string   `json:"name"`
	Provider          string   `json:"provider"`
	Description       string   `json:"description"`
	AspectRatios      []string `json:"aspect_ratios"`
	SupportsLastFrame bool     `json:"supports_last_frame"`
}
