package types

import "time"

type File struct {
	Id               int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Filename         string `json:"filename" gorm:"size:255;not null"`
	OriginalFilename string `json:"original_filename" gorm:"size:255;not null"`
	ObjectKey        string `json:"object_key" gorm:"size:500;not null"`
	FileUrl          string `json:"file_url" gorm:"size:500"`
	FileSize         int64  `json:"file_size" gorm:"not null"`
	MimeType         string `json:"mime_type" gorm:"size:100;not null"`
	// image / video / document
	FileType   string    `json:"file_type" gorm:"size:50;not null"`
	UploadedBy int64     `json:"uploaded_by"`
	CreateTime time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (File) TableName() string {
	return "files"
}
