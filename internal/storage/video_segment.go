package storage

import (
	"errors"

	"storyframe-ai/internal/types"
)

func CreateVideoSegments(segments []*types.VideoSegment) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Create(segments).Error
}

func GetVideoSegment(segmentId int64) (*types.VideoSegment, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var segment types.VideoSegment
	if err := DB.First(&segment, segmentId).Error; err != nil {
		return nil, err
	}
	return &segment, nil
}

func GetVideoSegmentsByScript(scriptId int64) ([]types.VideoSegment, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var segments []types.VideoSegment
	err := DB.Where("script_id = ?", scriptId).
		Order("segment_index").
		Find(&segments).Error
	if err != nil {
		return nil, err
	}
	return segments, nil
}

func GetCompletedVideoSegmentsByScript(scriptId int64) ([]types.VideoSegment, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var segments []types.VideoSegment
	err := DB.Where("script_id = ? AND status = ?", scriptId, types.VideoStatusCompleted).
		Order("segment_index").
		Find(&segments).Error
	if err != nil {
		return nil, err
	}
	return segments, nil
}

func SaveVideoSegment(segment *types.VideoSegment) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Save(segment).Error
}

func DeleteVideoSegmentsByScript(scriptId int64) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Where("script_id = ?", scriptId).Delete(&types.VideoSegment{}).Error
}

// MarkStaleGenerations marks all "generating" keyframes and video segments as
// failed. Called on server startup to clean up rows orphaned by a restart,
// since in-flight remote tasks cannot be resumed.
func MarkStaleGenerations() (int64, error) {
	if DB == nil {
		return 0, errors.New("database not initialized")
	}
	kf := DB.Model(&types.Keyframe{}).
		Where("status = ?", types.KeyframeStatusGenerating).
		Updates(map[string]interface{}{
			"status":        types.KeyframeStatusFailed,
			"error_message": "服务重启，任务被中断 Task interrupted by server restart",
		})
	if kf.Error != nil {
		return 0, kf.Error
	}
	vs := DB.Model(&types.VideoSegment{}).
		Where("status = ?", types.VideoStatusGenerating).
		Updates(map[string]interface{}{
			"status":        types.VideoStatusFailed,
			"error_message": "服务重启，任务被中断 Task interrupted by server restart",
		})
	if vs.Error != nil {
		return 0, vs.Error
	}
	return kf.RowsAffected + vs.RowsAffected, nil
}
