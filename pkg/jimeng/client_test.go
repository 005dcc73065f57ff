package jimeng

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storyframe-ai/internal/types"
	"storyframe-ai/log"
	apperrors "storyframe-ai/pkg/errors"

	"go.uber.org/zap"
)

func init() {
	log.Logger = zap.NewNop()
	sleep = func(ctx context.Context, d time.Duration) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}
}

func newJimengServer(t *testing.T, pollStatuses []string, imageUrls []string) (*httptest.Server, *[]map[string]any) {
	t.Helper()
	var submitted []map[string]any
	pollCount := 0

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			t.Error("请求缺少Authorization头")
		}
		if r.Header.Get("X-Content-Sha256") == "" {
			t.Error("请求缺少X-Content-Sha256头")
		}

		switch r.URL.Query().Get("Action") {
		case "CVSync2AsyncSubmitTask":
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			submitted = append(submitted, body)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"code": 10000,
				"data": map[string]any{"task_id": "jm-task-1"},
			})
		case "CVSync2AsyncGetResult":
			status := pollStatuses[len(pollStatuses)-1]
			if pollCount < len(pollStatuses) {
				status = pollStatuses[pollCount]
			}
			pollCount++
			data := map[string]any{"status": status}
			if status == "done" {
				data["image_urls"] = imageUrls
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"code": 10000, "data": data})
		default:
			t.Errorf("未知Action: %s", r.URL.Query().Get("Action"))
		}
	})

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, &submitted
}

func TestGenerateImageDone(t *testing.T) {
	server, submitted := newJimengServer(t,
		[]string{"in_queue", "generating", "done"},
		[]string{"https://tmp.volc.example.com/img.png"})

	c := NewClient(server.URL, "AKID", "secret", "cn-north-1")
	url, err := c.GenerateImage(context.Background(), types.ImageGenerationRequest{
		Prompt:            "一只小黄猫",
		Model:             "jimeng_t2i_v40",
		AspectRatio:       "16:9",
		Quality:           "2K",
		ReferenceImageUrl: "https://oss.example.com/prev.png",
	})
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}
	if url != "https://tmp.volc.example.com/img.png" {
		t.Errorf("返回URL错误: %s", url)
	}

	body := (*submitted)[0]
	if body["req_key"] != "jimeng_t2i_v40" {
		t.Errorf("req_key错误: %v", body["req_key"])
	}
	if body["force_single"] != true {
		t.Errorf("force_single应为true: %v", body["force_single"])
	}
	// 16:9 2K = 1920x1.5 x 1080x1.5
	if body["width"] != float64(2880) || body["height"] != float64(1620) {
		t.Errorf("尺寸错误: %vx%v", body["width"], body["height"])
	}
	urls, _ := body["image_urls"].([]any)
	if len(urls) != 1 || urls[0] != "https://oss.example.com/prev.png" {
		t.Errorf("参考图参数错误: %v", body["image_urls"])
	}
}

func TestGenerateImageNotFound(t *testing.T) {
	server, _ := newJimengServer(t, []string{"not_found"}, nil)

	c := NewClient(server.URL, "AKID", "secret", "")
	_, err := c.GenerateImage(context.Background(), types.ImageGenerationRequest{Prompt: "x"})
	if !apperrors.Is(err, apperrors.CodeTaskNotFound) {
		t.Errorf("期望任务未找到错误，实际 %v", err)
	}
}

func TestGenerateImageExpired(t *testing.T) {
	server, _ := newJimengServer(t, []string{"expired"}, nil)

	c := NewClient(server.URL, "AKID", "secret", "")
	_, err := c.GenerateImage(context.Background(), types.ImageGenerationRequest{Prompt: "x"})
	if !apperrors.Is(err, apperrors.CodeTaskExpired) {
		t.Errorf("期望任务过期错误，实际 %v", err)
	}
}

func TestGenerateImageTimeout(t *testing.T) {
	server, _ := newJimengServer(t, []string{"generating"}, nil)

	c := NewClient(server.URL, "AKID", "secret", "")
	_, err := c.GenerateImage(context.Background(), types.ImageGenerationRequest{Prompt: "x"})
	if !apperrors.Is(err, apperrors.CodeKeyframeTimeout) {
		t.Errorf("期望超时错误，实际 %v", err)
	}
}

func TestGenerateImageMissingCredentials(t *testing.T) {
	c := NewClient("https://visual.volcengineapi.com", "", "", "")
	_, err := c.GenerateImage(context.Background(), types.ImageGenerationRequest{Prompt: "x"})
	if !apperrors.Is(err, apperrors.CodeProviderError) {
		t.Errorf("期望提供方错误，实际 %v", err)
	}
}
