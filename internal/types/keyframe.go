package types

import "time"

type KeyframeStatus string

const (
	KeyframeStatusPending    KeyframeStatus = "pending"
	KeyframeStatusGenerating KeyframeStatus = "generating"
	KeyframeStatusCompleted  KeyframeStatus = "completed"
	KeyframeStatusFailed     KeyframeStatus = "failed"
)

func (s KeyframeStatus) IsTerminal() bool {
	return s == KeyframeStatusCompleted || s == KeyframeStatusFailed
}

const FirstFrameSuffix = "_first_frame"

type Keyframe struct {
	Id       int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	ScriptId int64 `json:"script_id" gorm:"index;not null"`
	// 脚本段落ID，如 segment_0；开场帧为 segment_0_first_frame
	SegmentId    string         `json:"segment_id" gorm:"size:100;not null"`
	ImageUrl     string         `json:"image_url" gorm:"size:500"`
	Prompt       string         `json:"prompt" gorm:"type:text"`
	Status       KeyframeStatus `json:"status" gorm:"size:20;default:pending"`
	ErrorMessage string         `json:"error_message" gorm:"type:text"`

	CreateTime time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdateTime time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Keyframe) TableName() string {
	return "keyframes"
}

// IsSyntheticFirstFrame reports whether this keyframe is the opening frame
// created from the script's frame-0 paragraph rather than a narration segment.
func (k Keyframe) IsSyntheticFirstFrame() bool {
	return len(k.SegmentId) > len(FirstFrameSuffix) &&
		k.SegmentId[len(k.SegmentId)-len(FirstFrameSuffix):] == FirstFrameSuffix
}
