package service

import (
	"context"

	"storyframe-ai/config"
	"storyframe-ai/internal/types"
	"storyframe-ai/pkg/aliyun"
	"storyframe-ai/pkg/grsai"
	"storyframe-ai/pkg/jimeng"
	"storyframe-ai/pkg/llm"
)

// Dispatcher hands generation jobs to the background execution mode in use
// (in-process taskrunner or asynq). A nil Dispatch falls back to plain
// goroutines.
type Dispatcher interface {
	SubmitKeyframeBatch(scriptId int64, model, aspectRatio, quality string) error
	SubmitKeyframeRegenerate(keyframeId int64, model, aspectRatio, quality string) error
	SubmitVideoBatch(scriptId int64) error
	SubmitVideoRegenerate(segmentId int64) error
}

type Service struct {
	Llm        types.ChatCompleter
	GrsaiImage types.ImageGenerator
	Jimeng     types.ImageGenerator
	VideoGen   types.VideoGenerator
	Oss        types.ObjectStore

	// OssHealth checks object storage reachability for the health endpoint.
	OssHealth func(ctx context.Context) error
	// OssUrlExpire reports signed URL lifetime, 0 for permanent public URLs.
	OssUrlExpire func() int64
	// OssDelete removes an object; optional, nil skips storage cleanup.
	OssDelete func(ctx context.Context, key string) error

	Dispatch Dispatcher
	// WatchBatches starts a status watcher per submitted batch. Enabled
	// when batches run on external queue workers.
	WatchBatches bool
}

func NewService() *Service {
	grsaiClient := grsai.NewClient(config.Conf.Grsai.BaseUrl, config.Conf.Grsai.ApiKey)
	jimengClient := jimeng.NewClient(
		config.Conf.Jimeng.BaseUrl,
		config.Conf.Jimeng.AccessKeyId,
		config.Conf.Jimeng.SecretAccessKey,
		config.Conf.Jimeng.Region,
	)
	ossClient := aliyun.NewOssClient(aliyun.OssConfig{
		AccessKeyId:     config.Conf.Oss.AccessKeyId,
		AccessKeySecret: config.Conf.Oss.AccessKeySecret,
		Endpoint:        config.Conf.Oss.Endpoint,
		Bucket:          config.Conf.Oss.Bucket,
		Region:          config.Conf.Oss.Region,
		PublicRead:      config.Conf.Oss.PublicRead,
		UrlExpireSec:    config.Conf.Oss.UrlExpireSec,
		MaxFileSize:     config.Conf.Oss.MaxFileSize,
	})

	return &Service{
		Llm: llm.NewClient(
			config.Conf.Llm.DeepseekBaseUrl,
			config.Conf.Llm.DeepseekApiKey,
			config.Conf.Llm.QwenBaseUrl,
			config.Conf.Llm.QwenApiKey,
		),
		GrsaiImage:   grsaiClient,
		Jimeng:       jimengClient,
		VideoGen:     grsaiClient,
		Oss:          ossClient,
		OssHealth:    ossClient.HealthCheck,
		OssUrlExpire: ossClient.UrlExpireSeconds,
		OssDelete:    ossClient.Delete,
	}
}

// imageGeneratorFor routes a model id to its provider client.
func (s *Service) imageGeneratorFor(model string) types.ImageGenerator {
	if model == "jimeng_t2i_v40" {
		return s.Jimeng
	}
	return s.GrsaiImage
}
