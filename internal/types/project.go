package types

import "time"

type ProjectStatus string

const (
	ProjectStatusDraft               ProjectStatus = "draft"
	ProjectStatusScriptGenerated     ProjectStatus = "script_generated"
	ProjectStatusKeyframesGenerating ProjectStatus = "keyframes_generating"
	ProjectStatusKeyframesCompleted  ProjectStatus = "keyframes_completed"
	ProjectStatusVideoGenerating     ProjectStatus = "video_generating"
	ProjectStatusCompleted           ProjectStatus = "completed"
)

type Project struct {
	Id          int64         `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string        `json:"name" gorm:"size:200;not null"`
	Description string        `json:"description" gorm:"type:text"`
	Status      ProjectStatus `json:"status" gorm:"size:50;default:draft"`
	UserId      int64         `json:"user_id" gorm:"index;not null"`
	// 对话内容（创意沟通记录）
	ConversationContent string `json:"conversation_content" gorm:"type:text"`
	// 图像模型配置
	ImageModel  string `json:"image_model" gorm:"size:100"`
	AspectRatio string `json:"aspect_ratio" gorm:"size:50"`
	Quality     string `json:"quality" gorm:"size:50"`

	CreateTime time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdateTime time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Scripts []Script `json:"scripts,omitempty" gorm:"foreignKey:ProjectId;constraint:OnDelete:CASCADE"`
}

func (Project) TableName() string {
	return "projects"
}
