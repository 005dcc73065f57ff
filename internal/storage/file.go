package storage

import (
	"errors"

	"storyframe-ai/internal/types"
)

func CreateFile(file *types.File) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Create(file).Error
}

func GetFile(fileId int64) (*types.File, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var file types.File
	if err := DB.First(&file, fileId).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func ListFiles(userId int64, limit int) ([]types.File, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var files []types.File
	err := DB.Where("uploaded_by = ?", userId).
		Order("create_time desc").
		Limit(limit).
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

func DeleteFile(fileId int64) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Delete(&types.File{}, fileId).Error
}
