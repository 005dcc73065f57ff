// Package aliyun wraps the OSS v2 SDK. Provider URLs are temporary, so every
// generated asset gets re-uploaded here under category/date/uuid object keys.
package aliyun

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"storyframe-ai/internal/types"
	"storyframe-ai/log"
	apperrors "storyframe-ai/pkg/errors"

	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss"
	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss/credentials"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OssClient struct {
	client       *oss.Client
	http         *resty.Client
	bucket       string
	endpoint     string
	publicRead   bool
	urlExpireSec int64
	maxFileSize  int64
}

type OssConfig struct {
	AccessKeyId     string
	AccessKeySecret string
	Endpoint        string
	Bucket          string
	Region          string
	PublicRead      bool
	UrlExpireSec    int64
	MaxFileSize     int64
}

func NewOssClient(cfg OssConfig) *OssClient {
	ossCfg := oss.LoadDefaultConfig().
		WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyId, cfg.AccessKeySecret)).
		WithRegion(cfg.Region).
		WithEndpoint(cfg.Endpoint)

	return &OssClient{
		client:       oss.NewClient(ossCfg),
		http:         resty.New().SetTimeout(5 * time.Minute),
		bucket:       cfg.Bucket,
		endpoint:     cfg.Endpoint,
		publicRead:   cfg.PublicRead,
		urlExpireSec: cfg.UrlExpireSec,
		maxFileSize:  cfg.MaxFileSize,
	}
}

// objectKey builds keys like keyframes/2026/08/29/a1b2c3d4_frame.png.
func objectKey(category, filename string) string {
	uniqueId := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	datePath := time.Now().Format("2006/01/02")
	return fmt.Sprintf("%s/%s/%s_%s", category, datePath, uniqueId, path.Base(filename))
}

func (c *OssClient) publicUrl(key string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(c.endpoint, "https://"), "http://")
	escaped := (&url.URL{Path: "/" + key}).EscapedPath()
	return fmt.Sprintf("https://%s.%s%s", c.bucket, host, escaped)
}

func (c *OssClient) signedUrl(ctx context.Context, key string) (string, error) {
	expires := time.Duration(c.urlExpireSec) * time.Second
	if expires <= 0 {
		expires = time.Hour
	}
	result, err := c.client.Presign(ctx, &oss.GetObjectRequest{
		Bucket: oss.Ptr(c.bucket),
		Key:    oss.Ptr(key),
	}, oss.PresignExpires(expires))
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeOSSError, "生成签名URL失败 Failed to presign URL", err)
	}
	return result.URL, nil
}

// Url returns the access URL for an object key, public or signed per config.
func (c *OssClient) Url(ctx context.Context, key string) (string, error) {
	if c.publicRead {
		return c.publicUrl(key), nil
	}
	return c.signedUrl(ctx, key)
}

// UrlExpireSeconds reports how long returned signed URLs stay valid, 0 when
// the bucket serves permanent public URLs.
func (c *OssClient) UrlExpireSeconds() int64 {
	if c.publicRead {
		return 0
	}
	return c.urlExpireSec
}

func (c *OssClient) Upload(ctx context.Context, data []byte, filename, category, contentType string) (*types.UploadResult, error) {
	if c.bucket == "" {
		return nil, apperrors.New(apperrors.CodeOSSError, "OSS未配置 OSS not configured")
	}
	if c.maxFileSize > 0 && int64(len(data)) > c.maxFileSize {
		return nil, apperrors.ErrFileTooLarge
	}

	key := objectKey(category, filename)
	req := &oss.PutObjectRequest{
		Bucket: oss.Ptr(c.bucket),
		Key:    oss.Ptr(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		req.ContentType = oss.Ptr(contentType)
	}

	if _, err := c.client.PutObject(ctx, req); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeOSSError, "上传OSS失败 OSS upload failed", err)
	}

	accessUrl, err := c.Url(ctx, key)
	if err != nil {
		return nil, err
	}

	log.GetLogger().Info("文件已上传OSS",
		zap.String("object_key", key),
		zap.Int("size", len(data)),
		zap.String("category", category))

	return &types.UploadResult{
		ObjectKey: key,
		Url:       accessUrl,
		Size:      int64(len(data)),
	}, nil
}

// UploadFromUrl downloads a provider's temporary URL and re-uploads the bytes.
func (c *OssClient) UploadFromUrl(ctx context.Context, srcUrl, filename, category string) (*types.UploadResult, error) {
	resp, err := c.http.R().SetContext(ctx).Get(srcUrl)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeOSSError, "下载源文件失败 Failed to download source file", err)
	}
	if resp.IsError() {
		return nil, apperrors.New(apperrors.CodeOSSError,
			fmt.Sprintf("下载源文件失败 Download HTTP error: %d", resp.StatusCode()))
	}

	contentType := resp.Header().Get("Content-Type")
	return c.Upload(ctx, resp.Body(), filename, category, contentType)
}

func (c *OssClient) Download(ctx context.Context, fileUrl string) ([]byte, error) {
	resp, err := c.http.R().SetContext(ctx).Get(fileUrl)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeOSSError, "下载文件失败 Failed to download file", err)
	}
	if resp.IsError() {
		return nil, apperrors.New(apperrors.CodeOSSError,
			fmt.Sprintf("下载文件失败 Download HTTP error: %d", resp.StatusCode()))
	}
	return resp.Body(), nil
}

func (c *OssClient) Delete(ctx context.Context, key string) error {
	_, err := c.client.DeleteObject(ctx, &oss.DeleteObjectRequest{
		Bucket: oss.Ptr(c.bucket),
		Key:    oss.Ptr(key),
	})
	if err != nil {
		return apperrors.Wrap(apperrors.CodeOSSError, "删除OSS文件失败 OSS delete failed", err)
	}
	log.GetLogger().Info("OSS文件已删除", zap.String("object_key", key))
	return nil
}

func (c *OssClient) HealthCheck(ctx context.Context) error {
	if c.bucket == "" {
		return apperrors.New(apperrors.CodeOSSError, "OSS未配置 OSS not configured")
	}
	exist, err := c.client.IsBucketExist(ctx, c.bucket)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeOSSError, "OSS健康检查失败 OSS health check failed", err)
	}
	if !exist {
		return apperrors.New(apperrors.CodeOSSError, "OSS存储桶不存在 OSS bucket does not exist")
	}
	return nil
}
