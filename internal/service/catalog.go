package service

import (
	"storyframe-ai/internal/dto"

	"github.com/samber/lo"
)

// ScriptStyles 脚本风格目录
func (s *Service) ScriptStyles() []dto.ScriptStyleInfo {
	return []dto.ScriptStyleInfo{
		{
			Id:          "storytelling",
			Name:        "故事化叙事风格",
			Description: "通过一个具体的故事或场景引入理论或知识的科普。脚本结构：开端（问题）展示一个普通人或企业面临的困境；发展（引入理论知识）科学理论如何介入解决问题；高潮（价值升华）展示问题解决后的美好结果；结尾（呼吁）点明主题。",
		},
		{
			Id:          "visual_animation",
			Name:        "可视化动画/图形动画风格",
			Description: "用生动的动画、MG（Motion Graphics）来解释抽象的概念。脚本结构：提出概念、比喻解释、步骤拆解、总结应用。",
		},
	}
}

func (s *Service) scriptStyleDescription(styleId string) string {
	style, found := lo.Find(s.ScriptStyles(), func(st dto.ScriptStyleInfo) bool {
		return st.Id == styleId
	})
	if !found {
		return styleId
	}
	return style.Description
}

// ImageModels 图像模型目录，含各模型的比例/清晰度/参考图能力
func (s *Service) ImageModels() []dto.ImageModelInfo {
	allRatios := []string{"auto", "1:1", "16:9", "9:16", "4:3", "3:4", "3:2", "2:3", "5:4", "4:5", "21:9"}
	return []dto.ImageModelInfo{
		{
			Id:                "jimeng_t2i_v40",
			Name:              "即梦 4.0",
			Provider:          "volcengine",
			Description:       "火山引擎即梦4.0，支持图生图，高质量图片生成",
			AspectRatios:      []string{"1:1", "16:9", "9:16", "4:3", "3:4", "3:2", "2:3", "5:4", "4:5", "21:9"},
			Qualities:         []string{"1K", "2K", "4K"},
			SupportsReference: true,
		},
		{
			Id:                "nano-banana-fast",
			Name:              "Nano Banana Fast",
			Provider:          "grsai",
			Description:       "快速版本",
			AspectRatios:      allRatios,
			SupportsReference: true,
		},
		{
			Id:                "nano-banana",
			Name:              "Nano Banana",
			Provider:          "grsai",
			Description:       "标准版本",
			AspectRatios:      allRatios,
			SupportsReference: true,
		},
		{
			Id:                "sora-image",
			Name:              "Sora Image",
			Provider:          "grsai",
			Description:       "图片生成模型",
			AspectRatios:      []string{"auto", "1:1", "3:2", "2:3"},
			SupportsReference: false,
		},
	}
}

func (s *Service) imageModel(modelId string) (dto.ImageModelInfo, bool) {
	return lo.Find(s.ImageModels(), func(m dto.ImageModelInfo) bool {
		return m.Id == modelId
	})
}

// VideoModels 视频模型目录
func (s *Service) VideoModels() []dto.VideoModelInfo {
	ratios := []string{"16:9", "9:16"}
	return []dto.VideoModelInfo{
		{
			Id:                "sora-2",
			Name:              "Sora 2",
			Provider:          "grsai",
			Description:       "支持单图参考，生成高质量视频",
			AspectRatios:      ratios,
			SupportsLastFrame: false,
		},
		{
			Id:                "veo3-fast",
			Name:              "Veo 3 Fast",
			Provider:          "grsai",
			Description:       "快速生成，支持首尾帧控制",
			AspectRatios:      ratios,
			SupportsLastFrame: true,
		},
		{
			Id:                "veo3-pro",
			Name:              "Veo 3 Pro",
			Provider:          "grsai",
			Description:       "专业级质量，支持首尾帧控制",
			AspectRatios:      ratios,
			SupportsLastFrame: true,
		},
		{
			Id:                "veo3.1-fast",
			Name:              "Veo 3.1 Fast",
			Provider:          "grsai",
			Description:       "快速生成，支持首尾帧控制",
			AspectRatios:      ratios,
			SupportsLastFrame: true,
		},
		{
			Id:                "veo3.1-pro",
			Name:              "Veo 3.1 Pro",
			Provider:          "grsai",
			Description:       "专业级质量，支持首尾帧控制",
			AspectRatios:      ratios,
			SupportsLastFrame: true,
		},
	}
}

func (s *Service) videoModel(modelId string) (dto.VideoModelInfo, bool) {
	return lo.Find(s.VideoModels(), func(m dto.VideoModelInfo) bool {
		return m.Id == modelId
	})
}

// ScriptModels 可用LLM模型目录
func (s *Service) ScriptModels() []dto.ScriptModelInfo {
	return []dto.ScriptModelInfo{
		{Id: "deepseek-chat", Name: "DeepSeek Chat", Provider: "deepseek", Description: "DeepSeek对话模型"},
		{Id: "qwen-plus", Name: "通义千问 Plus", Provider: "qwen", Description: "阿里云通义千问"},
	}
}
