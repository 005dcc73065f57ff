package storage

import (
	"errors"

	"storyframe-ai/internal/types"
)

func CreateScript(script *types.Script) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Create(script).Error
}

func GetScript(scriptId int64) (*types.Script, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var script types.Script
	if err := DB.First(&script, scriptId).Error; err != nil {
		return nil, err
	}
	return &script, nil
}

func GetScriptInProject(scriptId, projectId int64) (*types.Script, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var script types.Script
	err := DB.Where("id = ? AND project_id = ?", scriptId, projectId).First(&script).Error
	if err != nil {
		return nil, err
	}
	return &script, nil
}

func SaveScript(script *types.Script) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Save(script).Error
}
