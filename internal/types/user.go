package types

import "time"

type User struct {
	Id             int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Username       string    `json:"username" gorm:"size:50;uniqueIndex;not null"`
	Email          string    `json:"email" gorm:"size:100;uniqueIndex;not null"`
	HashedPassword string    `json:"-" gorm:"size:255;not null"`
	Avatar         string    `json:"avatar" gorm:"size:500"`
	IsActive       bool      `json:"is_active" gorm:"default:true"`
	CreateTime     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdateTime     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
