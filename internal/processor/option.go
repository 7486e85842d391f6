package processor

import (
	"time"

	"github.com/rs/zerolog"

	"skillsync-go/internal/parser"
	"skillsync-go/internal/storage"
)

// Components 聚合简历服务依赖的外部组件,便于按需注入与测试替换
type Components struct {
	TextExtractor      TextExtractor              // 文档文本提取器(Tika 或本地)
	HeuristicExtractor *parser.HeuristicExtractor // 启发式简历解析器
	LLMResumeExtractor ResumeExtractor            // LLM 简历解析器,可为 nil
	JobExtractor       JobExtractor               // 职位描述解析器,可为 nil
	Storage            *storage.Storage           // 存储层聚合
}

// Settings 聚合简历服务的行为配置
type Settings struct {
	Mode              string        // 解析模式: heuristic / llm / both
	ParserVersion     string        // 写入数据库的解析器版本标识
	ExtractionTimeout time.Duration // 单次 LLM 提取的超时
	Debug             bool          // 调试日志开关
	Logger            zerolog.Logger
}

// ComponentOpt 组件注入选项
type ComponentOpt func(*Components)

// SettingOpt 行为配置选项
type SettingOpt func(*Settings)

// NewComponents 按选项装配组件集合
func NewComponents(opts ...ComponentOpt) *Components {
	c := &Components{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithcompTextExtractor 注入文本提取器
func WithcompTextExtractor(e TextExtractor) ComponentOpt {
	return func(c *Components) { c.TextExtractor = e }
}

// WithcompHeuristicExtractor 注入启发式解析器
func WithcompHeuristicExtractor(h *parser.HeuristicExtractor) ComponentOpt {
	return func(c *Components) { c.HeuristicExtractor = h }
}

// WithcompLLMResumeExtractor 注入 LLM 简历解析器
func WithcompLLMResumeExtractor(e ResumeExtractor) ComponentOpt {
	return func(c *Components) { c.LLMResumeExtractor = e }
}

// WithcompJobExtractor 注入职位描述解析器
func WithcompJobExtractor(e JobExtractor) ComponentOpt {
	return func(c *Components) { c.JobExtractor = e }
}

// WithcompStorage 注入存储层
func WithcompStorage(s *storage.Storage) ComponentOpt {
	return func(c *Components) { c.Storage = s }
}

// WithsetMode 设置解析模式
func WithsetMode(mode string) SettingOpt {
	return func(s *Settings) { s.Mode = mode }
}

// WithsetParserVersion 设置解析器版本标识
func WithsetParserVersion(v string) SettingOpt {
	return func(s *Settings) { s.ParserVersion = v }
}

// WithsetExtractionTimeout 设置 LLM 提取超时
func WithsetExtractionTimeout(d time.Duration) SettingOpt {
	return func(s *Settings) { s.ExtractionTimeout = d }
}

// WithsetDebug 开启调试日志
func WithsetDebug(debug bool) SettingOpt {
	return func(s *Settings) { s.Debug = debug }
}

// WithsetLogger 设置日志器
func WithsetLogger(l zerolog.Logger) SettingOpt {
	return func(s *Settings) { s.Logger = l }
}

func (s *Settings) logDebug(msg string) {
	if s.Debug {
		s.Logger.Debug().Msg(msg)
	}
}
