package types

import "time"

type VideoStatus string

const (
	VideoStatusPending    VideoStatus = "pending"
	VideoStatusGenerating VideoStatus = "generating"
	VideoStatusCompleted  VideoStatus = "completed"
	VideoStatusFailed     VideoStatus = "failed"
)

func (s VideoStatus) IsTerminal() bool {
	return s == VideoStatusCompleted || s == VideoStatusFailed
}

type VideoSegment struct {
	Id       int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	ScriptId int64 `json:"script_id" gorm:"index;not null"`
	// 段落索引，从0开始
	SegmentIndex  int    `json:"segment_index" gorm:"not null"`
	FirstFrameUrl string `json:"first_frame_url" gorm:"size:500"`
	LastFrameUrl  string `json:"last_frame_url" gorm:"size:500"`
	// 提示词固定取自目标段落的原文，不可编辑
	Prompt       string      `json:"prompt" gorm:"type:text"`
	VideoUrl     string      `json:"video_url" gorm:"size:500"`
	Model        string      `json:"model" gorm:"size:50"`
	AspectRatio  string      `json:"aspect_ratio" gorm:"size:20"`
	Status       VideoStatus `json:"status" gorm:"size:20;default:pending"`
	Duration     float64     `json:"duration" gorm:"not null;default:6"`
	TaskId       string      `json:"task_id" gorm:"size:200"`
	ErrorMessage string      `json:"error_message" gorm:"type:text"`

	CreateTime time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdateTime time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (VideoSegment) TableName() string {
	return "video_segments"
}
