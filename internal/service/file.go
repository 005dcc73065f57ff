package service

import (
	"context"
	"path"
	"strings"

	"storyframe-ai/internal/dto"
	"storyframe-ai/internal/storage"
	"storyframe-ai/internal/types"
	"storyframe-ai/log"
	apperrors "storyframe-ai/pkg/errors"

	"go.uber.org/zap"
)

const uploadCategory = "uploads"

// fileType buckets a MIME type for the file listing.
func fileType(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "video/"):
		return "video"
	default:
		return "document"
	}
}

// UploadFile 通用文件上传，入库并返回访问地址
func (s *Service) UploadFile(ctx context.Context, userId int64, data []byte, filename, contentType string) (*dto.UploadFileResData, error) {
	result, err := s.Oss.Upload(ctx, data, filename, uploadCategory, contentType)
	if err != nil {
		return nil, err
	}

	file := &types.File{
		Filename:         path.Base(result.ObjectKey),
		OriginalFilename: filename,
		ObjectKey:        result.ObjectKey,
		FileUrl:          result.Url,
		FileSize:         result.Size,
		MimeType:         contentType,
		FileType:         fileType(contentType),
		UploadedBy:       userId,
	}
	if err := storage.CreateFile(file); err != nil {
		log.GetLogger().Error("保存文件记录失败", zap.String("object_key", result.ObjectKey), zap.Error(err))
		return nil, apperrors.Wrap(apperrors.CodeDBError, "保存文件记录失败 Save file record failed", err)
	}

	return &dto.UploadFileResData{
		Id:       file.Id,
		Filename: file.OriginalFilename,
		Url:      file.FileUrl,
		Size:     file.FileSize,
	}, nil
}

// ListFiles 当前用户最近上传的文件
func (s *Service) ListFiles(userId int64, limit int) ([]types.File, error) {
	if limit < 1 || limit > maxPageSize {
		limit = 20
	}
	files, err := storage.ListFiles(userId, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "查询文件列表失败 List files failed", err)
	}
	return files, nil
}

// DeleteFile 删除文件记录，归属校验后同时清理对象存储
func (s *Service) DeleteFile(ctx context.Context, fileId, userId int64) error {
	file, err := storage.GetFile(fileId)
	if err != nil {
		if storage.IsNotFound(err) {
			return apperrors.ErrFileNotFound
		}
		return apperrors.Wrap(apperrors.CodeDBError, "查询文件失败 Query file failed", err)
	}
	if file.UploadedBy != userId {
		return apperrors.ErrNotFound
	}

	if err := storage.DeleteFile(fileId); err != nil {
		return apperrors.Wrap(apperrors.CodeDBError, "删除文件失败 Delete file failed", err)
	}
	if s.OssDelete != nil {
		if err := s.OssDelete(ctx, file.ObjectKey); err != nil {
			log.GetLogger().Warn("删除对象存储文件失败", zap.String("object_key", file.ObjectKey), zap.Error(err))
		}
	}
	return nil
}
