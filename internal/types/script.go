package types

import "time"

// ScriptSegment is one timed slice of the narration script.
type ScriptSegment struct {
	Id        string  `json:"id"`
	TimeStart float64 `json:"time_start"`
	TimeEnd   float64 `json:"time_end"`
	Content   string  `json:"content"`
	Scene     string  `json:"scene,omitempty"`
	Presenter string  `json:"presenter,omitempty"`
	Subtitle  string  `json:"subtitle,omitempty"`
}

type Script struct {
	Id        int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	ProjectId int64  `json:"project_id" gorm:"index;not null"`
	Content   string `json:"content" gorm:"type:text;not null"`
	Style     string `json:"style" gorm:"size:50"`
	// 时长均以秒计
	TotalDuration    int             `json:"total_duration"`
	SegmentDuration  int             `json:"segment_duration"`
	Segments         []ScriptSegment `json:"segments" gorm:"serializer:json"`
	OptimizedContent string          `json:"optimized_content" gorm:"type:text"`

	CreateTime time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdateTime time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Keyframes     []Keyframe     `json:"keyframes,omitempty" gorm:"foreignKey:ScriptId;constraint:OnDelete:CASCADE"`
	VideoSegments []VideoSegment `json:"video_segments,omitempty" gorm:"foreignKey:ScriptId;constraint:OnDelete:CASCADE"`
}

func (Script) TableName() string {
	return "scripts"
}
