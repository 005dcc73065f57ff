// Package jimeng calls 火山引擎即梦4.0 through the volcengine visual API. Task
// submission and result polling both go to the same endpoint, distinguished by
// the Action query parameter, with every request HMAC-SHA256 signed.
package jimeng

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"storyframe-ai/internal/types"
	"storyframe-ai/log"
	apperrors "storyframe-ai/pkg/errors"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	apiVersion   = "2022-08-31"
	reqKey       = "jimeng_t2i_v40"
	pollInterval = 2 * time.Second
	pollAttempts = 30
	successCode  = 10000
	// 即梦最多接受6张参考图
	maxReferenceImages = 6
)

// sleep is swappable in tests.
var sleep = func(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

type Client struct {
	client          *resty.Client
	accessKeyId     string
	secretAccessKey string
	region          string
	host            string
}

func NewClient(baseUrl, accessKeyId, secretAccessKey, region string) *Client {
	if region == "" {
		region = "cn-north-1"
	}
	host := "visual.volcengineapi.com"
	if u, err := url.Parse(baseUrl); err == nil && u.Host != "" {
		host = u.Host
	}
	return &Client{
		client:          resty.New().SetBaseURL(baseUrl).SetTimeout(5 * time.Minute),
		accessKeyId:     accessKeyId,
		secretAccessKey: secretAccessKey,
		region:          region,
		host:            host,
	}
}

type apiResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		TaskId    string   `json:"task_id"`
		Status    string   `json:"status"`
		ImageUrls []string `json:"image_urls"`
	} `json:"data"`
}

func (c *Client) post(ctx context.Context, action string, body []byte) (*apiResponse, error) {
	query := map[string]string{
		"Action":  action,
		"Version": apiVersion,
	}
	headers := signRequest(c.accessKeyId, c.secretAccessKey, c.region, c.host, "POST", "/", query, body)

	var result apiResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetHeaders(headers).
		SetBody(body).
		SetResult(&result).
		Post("/")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeProviderError, "调用即梦接口失败 JiMeng request failed", err)
	}
	if resp.IsError() {
		return nil, apperrors.New(apperrors.CodeProviderError,
			fmt.Sprintf("即梦接口错误 JiMeng HTTP error: %d", resp.StatusCode()))
	}
	return &result, nil
}

// imageSize maps aspect ratio and quality onto pixel dimensions. Quality
// scales the base size (1K x1.0, 2K x1.5, 4K x2.0).
func imageSize(aspectRatio, quality string) (int, int) {
	type dim struct{ w, h int }
	base := map[string]dim{
		"1:1":  {1024, 1024},
		"16:9": {1920, 1080},
		"9:16": {1080, 1920},
		"4:3":  {1024, 768},
		"3:4":  {768, 1024},
		"3:2":  {1536, 1024},
		"2:3":  {1024, 1536},
		"21:9": {2560, 1080},
	}
	d, ok := base[aspectRatio]
	if !ok {
		d = dim{1024, 1024}
	}

	multiplier := 1.0
	switch quality {
	case "2K":
		multiplier = 1.5
	case "4K":
		multiplier = 2.0
	}
	return int(float64(d.w) * multiplier), int(float64(d.h) * multiplier)
}

// GenerateImage submits a jimeng_t2i_v40 task and polls until done. Returns
// the provider's temporary image URL.
func (c *Client) GenerateImage(ctx context.Context, req types.ImageGenerationRequest) (string, error) {
	if c.accessKeyId == "" || c.secretAccessKey == "" {
		return "", apperrors.New(apperrors.CodeProviderError, "火山引擎密钥未配置 Volc credentials not configured")
	}

	width, height := imageSize(req.AspectRatio, req.Quality)
	submitBody := map[string]any{
		"req_key":      reqKey,
		"prompt":       req.Prompt,
		"force_single": true,
		"width":        width,
		"height":       height,
	}
	if req.ReferenceImageUrl != "" {
		submitBody["image_urls"] = []string{req.ReferenceImageUrl}
	}

	submitJson, err := json.Marshal(submitBody)
	if err != nil {
		return "", err
	}

	submitResp, err := c.post(ctx, "CVSync2AsyncSubmitTask", submitJson)
	if err != nil {
		return "", err
	}
	if submitResp.Code != successCode {
		return "", apperrors.New(apperrors.CodeProviderError,
			fmt.Sprintf("即梦提交任务失败 JiMeng submit failed: %s", submitResp.Message))
	}
	taskId := submitResp.Data.TaskId
	if taskId == "" {
		return "", apperrors.New(apperrors.CodeProviderError, "即梦未返回task_id No task_id returned")
	}
	log.GetLogger().Info("即梦任务已提交", zap.String("task_id", taskId))

	queryJson, err := json.Marshal(map[string]any{
		"req_key":  reqKey,
		"task_id":  taskId,
		"req_json": `{"return_url":true}`,
	})
	if err != nil {
		return "", err
	}

	for i := 0; i < pollAttempts; i++ {
		if err := sleep(ctx, pollInterval); err != nil {
			return "", err
		}

		pollResp, err := c.post(ctx, "CVSync2AsyncGetResult", queryJson)
		if err != nil {
			return "", err
		}

		switch pollResp.Data.Status {
		case "done":
			if pollResp.Code != successCode {
				return "", apperrors.New(apperrors.CodeProviderError,
					fmt.Sprintf("即梦生成失败 JiMeng generation failed: %s", pollResp.Message))
			}
			if len(pollResp.Data.ImageUrls) == 0 {
				return "", apperrors.ErrNoImageReturned
			}
			log.GetLogger().Info("即梦图片生成完成", zap.String("task_id", taskId))
			return pollResp.Data.ImageUrls[0], nil
		case "in_queue", "generating":
			log.GetLogger().Debug("即梦任务处理中",
				zap.String("task_id", taskId),
				zap.String("status", pollResp.Data.Status),
				zap.Int("attempt", i+1))
		case "not_found":
			return "", apperrors.ErrTaskNotFound
		case "expired":
			return "", apperrors.ErrTaskExpired
		default:
			return "", apperrors.New(apperrors.CodeProviderError,
				fmt.Sprintf("即梦任务状态未知 Unknown JiMeng task status: %s", pollResp.Data.Status))
		}
	}

	return "", apperrors.New(apperrors.CodeKeyframeTimeout,
		fmt.Sprintf("即梦任务超时，轮询%d次后仍未完成 JiMeng task timeout", pollAttempts))
}
