package llm

import (
	"testing"

	apperrors "storyframe-ai/pkg/errors"
)

func TestClientForRouting(t *testing.T) {
	c := NewClient("", "ds-key", "", "qwen-key")

	if _, err := c.clientFor("deepseek-chat"); err != nil {
		t.Errorf("deepseek-chat 应路由成功: %v", err)
	}
	if _, err := c.clientFor("qwen-plus"); err != nil {
		t.Errorf("qwen-plus 应路由成功: %v", err)
	}
	if _, err := c.clientFor("gpt-4"); !apperrors.Is(err, apperrors.CodeModelNotFound) {
		t.Errorf("未知模型应返回模型不存在错误，实际 %v", err)
	}
}

func TestClientForUnconfigured(t *testing.T) {
	c := NewClient("", "", "", "qwen-key")

	if _, err := c.clientFor("deepseek-chat"); !apperrors.Is(err, apperrors.CodeProviderError) {
		t.Errorf("未配置DeepSeek应返回提供方错误，实际 %v", err)
	}
	if _, err := c.clientFor("qwen-plus"); err != nil {
		t.Errorf("qwen-plus 应路由成功: %v", err)
	}
}

func TestAvailableModels(t *testing.T) {
	c := NewClient("", "ds-key", "", "")
	models := c.AvailableModels()
	if len(models) != 1 {
		t.Fatalf("期望1个模型，实际 %d", len(models))
	}
	if models[0].Id != "deepseek-chat" {
		t.Errorf("模型Id错误: %s", models[0].Id)
	}

	both := NewClient("", "a", "", "b").AvailableModels()
	if len(both) != 2 {
		t.Errorf("期望2个模型，实际 %d", len(both))
	}

	none := NewClient("", "", "", "").AvailableModels()
	if len(none) != 0 {
		t.Errorf("期望0个模型，实际 %d", len(none))
	}
}
