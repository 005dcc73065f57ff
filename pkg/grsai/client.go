// Package grsai is the GrsAI submit-and-poll client covering the draw models
// (nano-banana, sora-image) and the video models (veo family, sora-2). Tasks
// return an id immediately; results come from polling /v1/draw/result.
package grsai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storyframe-ai/internal/types"
	"storyframe-ai/log"
	apperrors "storyframe-ai/pkg/errors"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	drawPollInterval  = 2 * time.Second
	drawPollAttempts  = 60
	videoPollInterval = 2 * time.Second
	videoPollAttempts = 30
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
	client *resty.Client
}

func NewClient(baseUrl, apiKey string) *Client {
	client := resty.New().
		SetBaseURL(baseUrl).
		SetTimeout(5 * time.Minute).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+apiKey)
	return &Client{client: client}
}

type submitResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Id string `json:"id"`
	} `json:"data"`
}

type resultResponse struct {
	Code int        `json:"code"`
	Msg  string     `json:"msg"`
	Data resultData `json:"data"`
}

type resultData struct {
	Id            string `json:"id"`
	Status        string `json:"status"`
	Progress      int    `json:"progress"`
	FailureReason string `json:"failure_reason"`
	Error         string `json:"error"`
	Url           string `json:"url"`
	Results       []struct {
		Url string `json:"url"`
	} `json:"results"`
}

func (c *Client) submit(ctx context.Context, path string, payload map[string]any) (string, error) {
	var result submitResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&result).
		Post(path)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeProviderError, "提交生成任务失败 Failed to submit generation task", err)
	}
	if resp.IsError() {
		return "", apperrors.New(apperrors.CodeProviderError,
			fmt.Sprintf("GrsAI接口错误 GrsAI HTTP error: %d", resp.StatusCode()))
	}
	if result.Code != 0 {
		return "", apperrors.New(apperrors.CodeProviderError,
			fmt.Sprintf("GrsAI接口错误 GrsAI API error: %s", result.Msg))
	}
	if result.Data.Id == "" {
		return "", apperrors.New(apperrors.CodeProviderError, "提交成功但未返回任务ID No task id returned")
	}
	return result.Data.Id, nil
}

// pollResult polls /v1/draw/result (shared by draw and video tasks) until the
// task reaches a terminal state or attempts are exhausted.
func (c *Client) pollResult(ctx context.Context, taskId string, interval time.Duration, attempts int, timeoutErr *apperrors.AppError) (*resultData, error) {
	for i := 0; i < attempts; i++ {
		if err := sleep(ctx, interval); err != nil {
			return nil, err
		}

		var result resultResponse
		resp, err := c.client.R().
			SetContext(ctx).
			SetBody(map[string]string{"id": taskId}).
			SetResult(&result).
			Post("/v1/draw/result")
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeProviderError, "查询任务结果失败 Failed to poll task result", err)
		}
		if resp.IsError() {
			return nil, apperrors.New(apperrors.CodeProviderError,
				fmt.Sprintf("查询任务结果失败 Poll HTTP error: %d", resp.StatusCode()))
		}
		if result.Code != 0 {
			return nil, apperrors.New(apperrors.CodeProviderError,
				fmt.Sprintf("查询任务结果失败 Poll error: %s", result.Msg))
		}

		switch result.Data.Status {
		case "succeeded":
			return &result.Data, nil
		case "failed":
			reason := result.Data.FailureReason
			if reason == "" {
				reason = result.Data.Error
			}
			return nil, apperrors.WrapWithDetail(apperrors.CodeProviderError,
				"生成失败 Generation failed", reason, nil)
		}

		log.GetLogger().Debug("任务进行中",
			zap.String("task_id", taskId),
			zap.String("status", result.Data.Status),
			zap.Int("progress", result.Data.Progress))
	}
	return nil, timeoutErr
}

// GenerateImage submits a draw task and blocks until it finishes. Returns the
// provider's temporary image URL.
func (c *Client) GenerateImage(ctx context.Context, req types.ImageGenerationRequest) (string, error) {
	var taskId string
	var err error

	switch req.Model {
	case "nano-banana", "nano-banana-fast":
		payload := map[string]any{
			"model":        req.Model,
			"prompt":       req.Prompt,
			"aspectRatio":  req.AspectRatio,
			"webHook":      "-1",
			"shutProgress": false,
		}
		if req.ReferenceImageUrl != "" {
			payload["urls"] = []string{req.ReferenceImageUrl}
		}
		taskId, err = c.submit(ctx, "/v1/draw/nano-banana", payload)
	case "sora-image":
		// sora-image 不支持参考图
		taskId, err = c.submit(ctx, "/v1/draw/completions", map[string]any{
			"model":        "sora-image",
			"prompt":       req.Prompt,
			"size":         soraImageSize(req.AspectRatio),
			"variants":     1,
			"webHook":      "-1",
			"shutProgress": false,
		})
	default:
		return "", apperrors.ErrModelNotFound
	}
	if err != nil {
		return "", err
	}
	log.GetLogger().Info("图片生成任务已提交", zap.String("model", req.Model), zap.String("task_id", taskId))

	data, err := c.pollResult(ctx, taskId, drawPollInterval, drawPollAttempts,
		apperrors.New(apperrors.CodeKeyframeTimeout, "图片生成超时 Image generation timeout"))
	if err != nil {
		return "", err
	}

	if len(data.Results) > 0 && data.Results[0].Url != "" {
		return data.Results[0].Url, nil
	}
	// 旧版响应格式把URL放在data.url
	if data.Url != "" {
		return data.Url, nil
	}
	return "", apperrors.ErrNoImageReturned
}

// soraImageSize maps aspect ratios onto the sizes sora-image accepts.
func soraImageSize(aspectRatio string) string {
	switch aspectRatio {
	case "1:1", "3:2", "2:3":
		return aspectRatio
	case "16:9":
		return "3:2"
	case "9:16":
		return "2:3"
	default:
		return "auto"
	}
}

// GenerateVideo submits a video task and blocks until it finishes. Veo models
// take first and last frame URLs; sora-2 takes a single reference image.
func (c *Client) GenerateVideo(ctx context.Context, req types.VideoGenerationRequest) (string, error) {
	switch {
	case strings.HasPrefix(req.Model, "veo"):
		return c.generateVeo(ctx, req)
	case strings.HasPrefix(req.Model, "sora"):
		return c.generateSora(ctx, req)
	default:
		return "", apperrors.ErrModelNotFound
	}
}

func (c *Client) generateVeo(ctx context.Context, req types.VideoGenerationRequest) (string, error) {
	payload := map[string]any{
		"model":        req.Model,
		"prompt":       req.Prompt,
		"aspectRatio":  req.AspectRatio,
		"webHook":      "-1",
		"shutProgress": true,
	}
	if req.FirstFrameUrl != "" {
		payload["firstFrameUrl"] = req.FirstFrameUrl
	}
	if req.LastFrameUrl != "" {
		payload["lastFrameUrl"] = req.LastFrameUrl
	}

	taskId, err := c.submit(ctx, "/v1/video/veo", payload)
	if err != nil {
		return "", err
	}
	log.GetLogger().Info("视频生成任务已提交", zap.String("model", req.Model), zap.String("task_id", taskId))

	data, err := c.pollResult(ctx, taskId, videoPollInterval, videoPollAttempts, apperrors.ErrVideoGenTimeout)
	if err != nil {
		return "", err
	}
	// veo 把视频URL放在data.url
	if data.Url != "" {
		return data.Url, nil
	}
	return "", apperrors.ErrNoVideoReturned
}

func (c *Client) generateSora(ctx context.Context, req types.VideoGenerationRequest) (string, error) {
	payload := map[string]any{
		"model":        req.Model,
		"prompt":       req.Prompt,
		"aspectRatio":  req.AspectRatio,
		"duration":     int(req.Duration),
		"size":         "small",
		"webHook":      "-1",
		"shutProgress": true,
	}
	// sora-2 单图参考，使用尾帧
	if req.LastFrameUrl != "" {
		payload["url"] = req.LastFrameUrl
	}

	taskId, err := c.submit(ctx, "/v1/video/sora-video", payload)
	if err != nil {
		return "", err
	}
	log.GetLogger().Info("视频生成任务已提交", zap.String("model", req.Model), zap.String("task_id", taskId))

	data, err := c.pollResult(ctx, taskId, videoPollInterval, videoPollAttempts, apperrors.ErrVideoGenTimeout)
	if err != nil {
		return "", err
	}
	if len(data.Results) > 0 && data.Results[0].Url != "" {
		return data.Results[0].Url, nil
	}
	return "", apperrors.ErrNoVideoReturned
}
