// Package llm drafts and optimizes narration scripts. DeepSeek and 通义千问
// both expose OpenAI-compatible chat endpoints, so a single client type covers
// both providers.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"storyframe-ai/log"
	apperrors "storyframe-ai/pkg/errors"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	maxTokens   = 4000
	temperature = 0.7
)

type Client struct {
	deepseek *openai.Client
	qwen     *openai.Client

	deepseekConfigured bool
	qwenConfigured     bool
}

func newOpenAIClient(baseUrl, apiKey string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseUrl != "" {
		cfg.BaseURL = baseUrl
	}
	// 不设置超时，脚本生成可能耗时较长
	cfg.HTTPClient = &http.Client{Transport: &http.Transport{}}
	return openai.NewClientWithConfig(cfg)
}

func NewClient(deepseekBaseUrl, deepseekApiKey, qwenBaseUrl, qwenApiKey string) *Client {
	return &Client{
		deepseek:           newOpenAIClient(deepseekBaseUrl, deepseekApiKey),
		qwen:               newOpenAIClient(qwenBaseUrl, qwenApiKey),
		deepseekConfigured: deepseekApiKey != "",
		qwenConfigured:     qwenApiKey != "",
	}
}

// clientFor routes by model name prefix.
func (c *Client) clientFor(model string) (*openai.Client, error) {
	switch {
	case strings.HasPrefix(model, "deepseek"):
		if !c.deepseekConfigured {
			return nil, apperrors.New(apperrors.CodeProviderError, "DeepSeek未配置 DeepSeek not configured")
		}
		return c.deepseek, nil
	case strings.HasPrefix(model, "qwen"):
		if !c.qwenConfigured {
			return nil, apperrors.New(apperrors.CodeProviderError, "通义千问未配置 Qwen not configured")
		}
		return c.qwen, nil
	default:
		return nil, apperrors.ErrModelNotFound
	}
}

func (c *Client) chat(ctx context.Context, model, systemPrompt, userPrompt string) (string, error) {
	client, err := c.clientFor(model)
	if err != nil {
		return "", err
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		log.GetLogger().Error("LLM chat completion failed", zap.String("model", model), zap.Error(err))
		return "", apperrors.Wrap(apperrors.CodeScriptGenFailed, "脚本生成失败 Script generation failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.ErrScriptEmpty
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// GenerateScript drafts a timed script from a creative brief.
func (c *Client) GenerateScript(ctx context.Context, inspiration, style string, totalDuration, segmentDuration int, model string) (string, error) {
	if segmentDuration <= 0 {
		segmentDuration = 6
	}
	segmentCount := totalDuration / segmentDuration
	// 按正常语速每秒约2-3个汉字，上浮以保证描述足够详细
	contentMin := segmentDuration * 3
	contentMax := segmentDuration * 5

	systemPrompt := fmt.Sprintf(`你是一个专业的视频脚本创作专家。你的任务是根据用户的创意和风格要求，生成一个结构化的视频脚本。

脚本要求：
1. 视频总时长：%d秒
2. 单个片段时长：%d秒
3. 片段数量：%d个
4. 脚本风格：%s

脚本格式要求：
- 必须包含第0帧（开场画面）：在第一个片段之前，格式为 `+"`第0帧：详细描述开场画面...`"+`，描述视频开始前的初始状态
- 每个片段必须按照时间范围格式：开始时间-结束时间 内容描述，时间格式：0-%ds, %d-%ds, ... 以此类推
- 每个片段的内容描述必须包含%d-%d个汉字，包含具体的动作描述、环境细节、情感表达和视觉元素，禁止使用简单的一句话描述
- 第0帧描述静态初始状态，第一个片段描述从第0帧开始的第一个动作或变化，两帧之间的动作和场景要自然衔接
- 同一个物品、角色、地点在所有片段（包括第0帧）中必须使用完全一致的名称和特征描述，不能使用同义词或不同的表达方式
- 片段之间要有连贯性，形成完整的故事线

请直接输出脚本内容，不要添加任何解释或说明。`,
		totalDuration, segmentDuration, segmentCount, style,
		segmentDuration, segmentDuration, segmentDuration*2,
		contentMin, contentMax)

	userPrompt := fmt.Sprintf(`请根据以下创意生成视频脚本：

创意：%s

请按照上述格式要求生成脚本，包括第0帧（开场画面）和%d个片段。每个片段的内容描述必须详细具体，包含%d-%d个汉字。注意第0帧到第一个片段的过渡连贯性，以及重复出现元素的描述一致性。`,
		inspiration, segmentCount, contentMin, contentMax)

	content, err := c.chat(ctx, model, systemPrompt, userPrompt)
	if err != nil {
		return "", err
	}
	log.GetLogger().Info("脚本生成完成", zap.String("model", model), zap.Int("segment_count", segmentCount))
	return content, nil
}

// OptimizeScript rewrites an existing script guided by a creative description.
func (c *Client) OptimizeScript(ctx context.Context, scriptContent, creativeDescription, model string) (string, error) {
	systemPrompt := `你是一个专业的视频脚本优化专家。你的任务是根据用户提供的创意描述，对现有脚本进行优化和改进。

优化要求：
1. 保持脚本的原有结构和时间格式
2. 根据创意描述，增强脚本的细节描述和表现力
3. 确保优化后的脚本更加生动、具体、有感染力
4. 保持脚本的连贯性和完整性
5. 使用创意描述中的语言风格和表达方式

请直接输出优化后的脚本内容，不要添加任何解释或说明。保持原有的时间格式（如：0-6s 内容描述）。`

	userPrompt := fmt.Sprintf(`请根据以下创意描述优化脚本：

原始脚本：
%s

创意描述（请使用这个描述的语言风格和表达方式来优化脚本）：
%s

请使用创意描述中的语言风格和表达方式，对原始脚本进行优化，使其更加生动、具体、有感染力。保持脚本的原有结构和时间格式。`,
		scriptContent, creativeDescription)

	content, err := c.chat(ctx, model, systemPrompt, userPrompt)
	if err != nil {
		return "", err
	}
	log.GetLogger().Info("脚本优化完成", zap.String("model", model))
	return content, nil
}

// AvailableModels lists the configured LLM providers.
func (c *Client) AvailableModels() []ModelInfo {
	var models []ModelInfo
	if c.deepseekConfigured {
		models = append(models, ModelInfo{Id: "deepseek-chat", Name: "DeepSeek Chat", Provider: "deepseek"})
	}
	if c.qwenConfigured {
		models = append(models, ModelInfo{Id: "qwen-plus", Name: "通义千问 Plus", Provider: "qwen"})
	}
	return models
}

type ModelInfo struct {
	Id       string
	Name     string
	Provider string
}
