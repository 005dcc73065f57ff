package main

import (
	"os"

	"go.uber.org/zap"

	"storyframe-ai/config"
	"storyframe-ai/internal/queue"
	"storyframe-ai/internal/server"
	"storyframe-ai/internal/service"
	"storyframe-ai/internal/storage"
	"storyframe-ai/internal/taskrunner"
	"storyframe-ai/log"
)

func main() {
	log.InitLogger()
	defer log.GetLogger().Sync()

	if !config.LoadConfig() {
		return
	}
	if err := config.CheckConfig(); err != nil {
		log.GetLogger().Error("加载配置失败", zap.Error(err))
		return
	}

	storage.InitDB()

	// 服务重启后无法续跑进行中的远程任务，统一标记失败
	if count, err := storage.MarkStaleGenerations(); err != nil {
		log.GetLogger().Warn("Failed to mark stale generations", zap.Error(err))
	} else if count > 0 {
		log.GetLogger().Info("Marked stale generations as failed", zap.Int64("count", count))
	}

	svc := service.NewService()

	switch config.Conf.Queue.Mode {
	case "redis":
		q := queue.NewQueue(queue.QueueConfig{
			RedisAddr:     config.Conf.Queue.RedisAddr,
			RedisPassword: config.Conf.Queue.RedisPassword,
			RedisDB:       config.Conf.Queue.RedisDB,
			Concurrency:   config.Conf.Queue.Concurrency,
		})
		defer q.Close()
		svc.Dispatch = q
		svc.WatchBatches = true

		go func() {
			if err := queue.StartWorker(q, svc); err != nil {
				log.GetLogger().Error("队列worker退出", zap.Error(err))
			}
		}()
	default:
		runner := taskrunner.New(svc, taskrunner.Config{
			Concurrency: config.Conf.Queue.Concurrency,
		})
		defer runner.Close()
		svc.Dispatch = runner
	}

	if err := server.StartBackend(svc); err != nil {
		log.GetLogger().Error("后端服务启动失败", zap.Error(err))
		os.Exit(1)
	}
}
