package storage

import (
	"errors"

	"storyframe-ai/internal/types"
)

func CreateProject(project *types.Project) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Create(project).Error
}

func GetProject(projectId, userId int64) (*types.Project, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var project types.Project
	err := DB.Preload("Scripts").
		Where("id = ? AND user_id = ?", projectId, userId).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func ListProjects(userId int64, offset, limit int) ([]types.Project, int64, error) {
	if DB == nil {
		return nil, 0, errors.New("database not initialized")
	}
	var total int64
	if err := DB.Model(&types.Project{}).Where("user_id = ?", userId).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var projects []types.Project
	err := DB.Where("user_id = ?", userId).
		Order("update_time desc").
		Offset(offset).Limit(limit).
		Find(&projects).Error
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

func ListRecentProjects(userId int64, limit int) ([]types.Project, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var projects []types.Project
	err := DB.Where("user_id = ?", userId).
		Order("update_time desc").
		Limit(limit).
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func SaveProject(project *types.Project) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Save(project).Error
}

func UpdateProjectStatus(projectId int64, status types.ProjectStatus) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Model(&types.Project{}).
		Where("id = ?", projectId).
		Update("status", status).Error
}

// DeleteProject removes the project and cascades to scripts, keyframes and
// video segments.
func DeleteProject(projectId, userId int64) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	var scriptIds []int64
	if err := DB.Model(&types.Script{}).
		Where("project_id = ?", projectId).
		Pluck("id", &scriptIds).Error; err != nil {
		return err
	}
	if len(scriptIds) > 0 {
		if err := DB.Where("script_id IN ?", scriptIds).Delete(&types.Keyframe{}).Error; err != nil {
			return err
		}
		if err := DB.Where("script_id IN ?", scriptIds).Delete(&types.VideoSegment{}).Error; err != nil {
			return err
		}
		if err := DB.Where("id IN ?", scriptIds).Delete(&types.Script{}).Error; err != nil {
			return err
		}
	}
	return DB.Where("id = ? AND user_id = ?", projectId, userId).Delete(&types.Project{}).Error
}
