package storage

import (
	"errors"
	"time"

	"storyframe-ai/internal/types"
)

func CreateKeyframes(keyframes []*types.Keyframe) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Create(keyframes).Error
}

func GetKeyframe(keyframeId int64) (*types.Keyframe, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var keyframe types.Keyframe
	if err := DB.First(&keyframe, keyframeId).Error; err != nil {
		return nil, err
	}
	return &keyframe, nil
}

// GetKeyframesByScript returns the script's keyframes in creation order, the
// same order they were generated in.
func GetKeyframesByScript(scriptId int64) ([]types.Keyframe, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var keyframes []types.Keyframe
	err := DB.Where("script_id = ?", scriptId).
		Order("create_time, id").
		Find(&keyframes).Error
	if err != nil {
		return nil, err
	}
	return keyframes, nil
}

func GetCompletedKeyframesByScript(scriptId int64) ([]types.Keyframe, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var keyframes []types.Keyframe
	err := DB.Where("script_id = ? AND status = ?", scriptId, types.KeyframeStatusCompleted).
		Order("segment_id").
		Find(&keyframes).Error
	if err != nil {
		return nil, err
	}
	return keyframes, nil
}

func SaveKeyframe(keyframe *types.Keyframe) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Save(keyframe).Error
}

func DeleteKeyframesByScript(scriptId int64) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Where("script_id = ?", scriptId).Delete(&types.Keyframe{}).Error
}

// MarkStaleKeyframes flips "generating" keyframes that have not been touched
// within the timeout to "failed", so clients stop polling on zombie rows.
func MarkStaleKeyframes(timeout time.Duration) (int64, error) {
	if DB == nil {
		return 0, errors.New("database not initialized")
	}
	cutoff := time.Now().Add(-timeout)
	result := DB.Model(&types.Keyframe{}).
		Where("status = ? AND update_time < ?", types.KeyframeStatusGenerating, cutoff).
		Updates(map[string]interface{}{
			"status":        types.KeyframeStatusFailed,
			"error_message": "生成超时，请重新生成关键帧 Generation timed out, please regenerate",
		})
	return result.RowsAffected, result.Error
}
