package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"

	"skillsync-go/internal/config"
	"skillsync-go/internal/constants"
	applog "skillsync-go/internal/logger"
	"skillsync-go/internal/parser"
	"skillsync-go/internal/storage"
	"skillsync-go/pkg/agent"
	"skillsync-go/pkg/ratelimit"
)

// NewComponentsFromConfig 按配置装配简历服务的全部组件。
// 文本提取器按 extractor.text_extractor 选择 Tika 或本地实现,
// LLM 相关组件仅在提供了 API Key 时构建。
func NewComponentsFromConfig(ctx context.Context, cfg *config.Config, store *storage.Storage) (*Components, error) {
	textExtractor, err := buildTextExtractor(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("构建文本提取器失败: %w", err)
	}

	opts := []ComponentOpt{
		WithcompHeuristicExtractor(parser.NewHeuristicExtractor()),
		WithcompTextExtractor(textExtractor),
		WithcompStorage(store),
	}

	llmModel, err := buildChatModel(cfg)
	if err != nil {
		return nil, fmt.Errorf("构建 LLM 模型失败: %w", err)
	}
	if llmModel != nil {
		stdLogger := applog.StdAdapter("parser")
		opts = append(opts,
			WithcompLLMResumeExtractor(parser.NewLLMResumeExtractor(llmModel, stdLogger)),
			WithcompJobExtractor(parser.NewJobDetailExtractor(llmModel, stdLogger)),
		)
	}

	return NewComponents(opts...), nil
}

// buildTextExtractor 按配置选择文本提取实现
func buildTextExtractor(ctx context.Context, cfg *config.Config) (TextExtractor, error) {
	switch cfg.Extractor.TextExtractor {
	case constants.TextExtractorLocal:
		return parser.NewLocalTextExtractor(ctx,
			parser.WithLocalLogger(applog.StdAdapter("extractor")))
	case constants.TextExtractorTika, "":
		options := []parser.TikaOption{
			parser.WithTikaLogger(applog.StdAdapter("extractor")),
		}
		if cfg.Tika.Timeout > 0 {
			options = append(options, parser.WithTimeout(time.Duration(cfg.Tika.Timeout)*time.Second))
		}
		switch cfg.Tika.MetadataMode {
		case "full":
			options = append(options, parser.WithFullMetadata(true))
		case "none":
			options = append(options, parser.WithMinimalMetadata(false))
		}
		return parser.NewTikaTextExtractor(cfg.Tika.ServerURL, options...), nil
	default:
		return nil, fmt.Errorf("未知的文本提取器类型: %s", cfg.Extractor.TextExtractor)
	}
}

// buildChatModel 构建带限速的 OpenRouter 模型。未配置 API Key 时返回 nil,
// 此时服务退化为纯启发式解析。
func buildChatModel(cfg *config.Config) (model.ToolCallingChatModel, error) {
	if cfg.OpenRouter.APIKey == "" {
		return nil, nil
	}
	chatModel, err := agent.NewOpenRouterChatModel(
		cfg.OpenRouter.APIKey,
		cfg.OpenRouter.Model,
		cfg.OpenRouter.APIURL,
		agent.WithReferer(cfg.OpenRouter.Referer, cfg.OpenRouter.Title),
		agent.WithTemperature(cfg.OpenRouter.Temperature),
		agent.WithJSONOutput(true),
	)
	if err != nil {
		return nil, err
	}
	return ratelimit.NewRateLimitedLLMModel(chatModel, cfg.OpenRouter.QPM), nil
}
