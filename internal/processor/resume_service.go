package processor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"skillsync-go/internal/constants"
	"skillsync-go/internal/parser"
	"skillsync-go/internal/storage"
	"skillsync-go/internal/storage/models"
	"skillsync-go/internal/tracing"
	"skillsync-go/internal/types"
)

var tracer = otel.Tracer("processor")

// 解析器版本标识,随解析结果写入数据库,便于事后区分解析来源
const (
	parserVersionHeuristic = "heuristic-v1"
	parserVersionLLM       = "llm-v1"
)

// ParsedResume 同步解析路径的完整结果
type ParsedResume struct {
	SessionID string                 // 会话 ID,后续 compare 用它取回记录
	Text      string                 // 规范化后的简历文本
	Data      *types.ResumeData      // 结构化提取结果
	Metadata  map[string]interface{} // 文档元数据(文件类型等)
}

// ResumeService 简历处理服务,覆盖直接解析与消息驱动的完整处理两条路径
type ResumeService interface {
	// ParseResumeText 对一段简历文本做结构化提取,不落库
	ParseResumeText(ctx context.Context, text string) (*types.ResumeData, error)
	// ParseResumeFile 同步解析一份上传的简历文件:提取文本、规范化、
	// 结构化提取并按会话 ID 缓存结果供 compare 使用。
	// sessionID 为空时自动生成。
	ParseResumeFile(ctx context.Context, sessionID, fileName string, fileData []byte) (*ParsedResume, error)
	// ProcessUploadedResume 处理一条上传完成消息:下载原始文件、提取文本、
	// 结构化解析并持久化,状态机随步骤推进
	ProcessUploadedResume(ctx context.Context, msg *storage.ResumeUploadMessage) error
}

type resumeServiceImpl struct {
	components *Components
	settings   *Settings
}

var _ ResumeService = (*resumeServiceImpl)(nil)

// NewResumeService 构造简历处理服务。
// components 必须提供启发式解析器;LLM 解析器缺失时自动退化为纯启发式。
func NewResumeService(components *Components, settingOpts ...SettingOpt) (ResumeService, error) {
	if components == nil {
		return nil, fmt.Errorf("components 不能为空")
	}
	if components.HeuristicExtractor == nil {
		components.HeuristicExtractor = parser.NewHeuristicExtractor()
	}

	settings := &Settings{
		Mode: constants.ExtractModeBoth,
	}
	for _, opt := range settingOpts {
		opt(settings)
	}

	// llm / both 模式但没有可用模型时降级,只警告一次
	if components.LLMResumeExtractor == nil && settings.Mode != constants.ExtractModeHeuristic {
		settings.Logger.Warn().
			Str("configured_mode", settings.Mode).
			Msg("未配置 LLM 模型,简历解析退化为纯启发式模式")
		settings.Mode = constants.ExtractModeHeuristic
	}

	return &resumeServiceImpl{
		components: components,
		settings:   settings,
	}, nil
}

func (s *resumeServiceImpl) ParseResumeText(ctx context.Context, text string) (*types.ResumeData, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	ctx, span := tracer.Start(ctx, "ResumeService.ParseResumeText")
	defer span.End()
	span.SetAttributes(
		attribute.Int("resume.text_length", len(text)),
		attribute.String("resume.parse_mode", s.settings.Mode),
	)

	normalized := parser.NormalizeText(text)
	data, source := s.extractStructured(ctx, normalized)
	span.SetAttributes(attribute.String("resume.parser_version", source))
	return data, nil
}

// extractStructured 按配置模式执行结构化提取,返回结果与实际使用的解析器版本。
// both 模式先走 LLM,拿到失败哨兵时回退启发式。
func (s *resumeServiceImpl) extractStructured(ctx context.Context, normalized string) (*types.ResumeData, string) {
	switch s.settings.Mode {
	case constants.ExtractModeHeuristic:
		return s.components.HeuristicExtractor.Extract(normalized), parserVersionHeuristic

	case constants.ExtractModeLLM:
		return s.extractWithLLM(ctx, normalized), parserVersionLLM

	default: // both
		data := s.extractWithLLM(ctx, normalized)
		if data.IsParseFailed() {
			s.settings.logDebug("LLM 解析失败,回退启发式解析")
			return s.components.HeuristicExtractor.Extract(normalized), parserVersionHeuristic
		}
		return data, parserVersionLLM
	}
}

func (s *resumeServiceImpl) extractWithLLM(ctx context.Context, normalized string) *types.ResumeData {
	if s.settings.ExtractionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.settings.ExtractionTimeout)
		defer cancel()
	}
	return s.components.LLMResumeExtractor.Extract(ctx, normalized)
}

func (s *resumeServiceImpl) ParseResumeFile(ctx context.Context, sessionID, fileName string, fileData []byte) (*ParsedResume, error) {
	if s.components.TextExtractor == nil {
		return nil, ErrTextExtractorNotInit
	}
	if len(fileData) == 0 {
		return nil, ErrEmptyText
	}
	if sessionID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("生成会话 ID 失败: %w", err)
		}
		sessionID = id.String()
	}

	ctx, span := tracer.Start(ctx, "ResumeService.ParseResumeFile")
	defer span.End()
	span.SetAttributes(
		attribute.String("resume.session_id", sessionID),
		attribute.String("resume.file_name", tracing.SafeAttributeValue("resume.file_name", fileName, tracing.DefaultMaxLength)),
		attribute.Int("resume.file_size", len(fileData)),
	)

	rawText, metadata, err := s.components.TextExtractor.ExtractTextFromBytes(ctx, fileData, fileName)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return nil, fmt.Errorf("提取文档文本失败: %w", err)
	}
	normalized := parser.NormalizeText(rawText)
	if strings.TrimSpace(normalized) == "" {
		return nil, ErrEmptyText
	}
	span.SetAttributes(attribute.String("resume.text_preview", tracing.SafeResumeContent(normalized)))

	data, source := s.extractStructured(ctx, normalized)
	span.SetAttributes(attribute.String("resume.parser_version", source))

	// 同步路径的持久化均为尽力而为:会话记录以 Redis 为主,
	// MySQL 行用于补齐 compare 的外键与留痕
	s.persistSyncParse(ctx, sessionID, fileName, normalized, data, source)

	return &ParsedResume{
		SessionID: sessionID,
		Text:      normalized,
		Data:      data,
		Metadata:  metadata,
	}, nil
}

func (s *resumeServiceImpl) persistSyncParse(ctx context.Context, sessionID, fileName, text string, data *types.ResumeData, parserVersion string) {
	logger := s.settings.Logger.With().Str("session_id", sessionID).Logger()

	if s.components.Storage != nil && s.components.Storage.Redis != nil && !data.IsParseFailed() {
		if err := s.components.Storage.Redis.SaveResumeData(ctx, sessionID, data); err != nil {
			logger.Warn().Err(err).Msg("缓存解析结果到 Redis 失败")
		}
	}
	if s.components.Storage == nil || s.components.Storage.MySQL == nil {
		return
	}
	submission := &models.ResumeSubmission{
		SubmissionUUID:      sessionID,
		SubmissionTimestamp: time.Now(),
		OriginalFilename:    fileName,
		ProcessingStatus:    constants.StatusTextExtracted,
		ExtractedText:       text,
	}
	if err := s.components.Storage.MySQL.CreateResumeSubmission(ctx, submission); err != nil {
		logger.Warn().Err(err).Msg("保存会话提交记录失败")
		return
	}
	status := constants.StatusParsed
	if data.IsParseFailed() {
		status = constants.StatusExtractionFailed
	}
	if err := s.components.Storage.MySQL.SaveParsedResume(ctx, sessionID, data, parserVersion, status); err != nil {
		logger.Warn().Err(err).Msg("保存会话解析结果失败")
	}
}

func (s *resumeServiceImpl) ProcessUploadedResume(ctx context.Context, msg *storage.ResumeUploadMessage) error {
	if s.components.Storage == nil || s.components.Storage.MySQL == nil || s.components.Storage.MinIO == nil {
		return ErrStorageNotInit
	}
	if s.components.TextExtractor == nil {
		return ErrTextExtractorNotInit
	}

	ctx, span := tracer.Start(ctx, "ResumeService.ProcessUploadedResume")
	defer span.End()
	span.SetAttributes(
		attribute.String("resume.submission_uuid", msg.SubmissionUUID),
		attribute.String("resume.original_filename", tracing.SafeAttributeValue("resume.original_filename", msg.OriginalFilename, tracing.DefaultMaxLength)),
	)

	logger := s.settings.Logger.With().
		Str("submission_uuid", msg.SubmissionUUID).
		Logger()

	// 消息可能被重复投递,插入是幂等的
	submission := &models.ResumeSubmission{
		SubmissionUUID:      msg.SubmissionUUID,
		SubmissionTimestamp: msg.SubmissionTimestamp,
		OriginalFilename:    msg.OriginalFilename,
		OriginalFilePathOSS: msg.OriginalFilePathOSS,
		RawFileMD5:          msg.RawFileMD5,
		ProcessingStatus:    constants.StatusQueued,
	}
	if err := s.components.Storage.MySQL.CreateResumeSubmission(ctx, submission); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return fmt.Errorf("创建简历提交记录失败: %w", err)
	}

	fileData, err := s.components.Storage.MinIO.GetResumeFile(ctx, msg.OriginalFilePathOSS)
	if err != nil {
		s.markExtractionFailed(ctx, msg, logger)
		tracing.RecordError(span, err, tracing.ErrorTypeExternal)
		return fmt.Errorf("下载原始简历文件失败: %w", err)
	}

	rawText, _, err := s.components.TextExtractor.ExtractTextFromBytes(ctx, fileData, msg.OriginalFilename)
	if err != nil {
		s.markExtractionFailed(ctx, msg, logger)
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return fmt.Errorf("提取文档文本失败: %w", err)
	}

	normalized := parser.NormalizeText(rawText)
	if strings.TrimSpace(normalized) == "" {
		s.markExtractionFailed(ctx, msg, logger)
		err := fmt.Errorf("文档 %s 未提取到有效文本", msg.OriginalFilename)
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return err
	}

	span.SetAttributes(attribute.String("resume.text_preview", tracing.SafeResumeContent(normalized)))

	if err := s.components.Storage.MySQL.SaveExtractedText(ctx, msg.SubmissionUUID, normalized, constants.StatusTextExtracted); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return fmt.Errorf("保存提取文本失败: %w", err)
	}

	data, source := s.extractStructured(ctx, normalized)
	span.SetAttributes(attribute.String("resume.parser_version", source))

	parserVersion := source
	if s.settings.ParserVersion != "" {
		parserVersion = s.settings.ParserVersion
	}

	status := constants.StatusParsed
	if data.IsParseFailed() {
		// 失败哨兵照样落库,留下处理痕迹;同时释放去重记录,允许重新上传
		status = constants.StatusExtractionFailed
		logger.Warn().Str("parser_version", parserVersion).Msg("简历结构化解析失败,保存失败哨兵记录")
	}

	if err := s.components.Storage.MySQL.SaveParsedResume(ctx, msg.SubmissionUUID, data, parserVersion, status); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return fmt.Errorf("保存解析结果失败: %w", err)
	}

	if data.IsParseFailed() {
		s.releaseFileMD5(ctx, msg, logger)
		span.SetStatus(codes.Ok, "parse failed sentinel saved")
		return nil
	}

	// Redis 缓存失败不阻断主流程,下游会回落到 MySQL
	if s.components.Storage.Redis != nil {
		if err := s.components.Storage.Redis.SaveResumeData(ctx, msg.SubmissionUUID, data); err != nil {
			logger.Warn().Err(err).Msg("缓存解析结果到 Redis 失败")
		}
	}

	logger.Info().
		Str("parser_version", parserVersion).
		Int("skill_categories", len(data.Skills)).
		Msg("简历处理完成")
	span.SetStatus(codes.Ok, "")
	return nil
}

// markExtractionFailed 把提交状态置为提取失败并释放 MD5 去重记录
func (s *resumeServiceImpl) markExtractionFailed(ctx context.Context, msg *storage.ResumeUploadMessage, logger zerolog.Logger) {
	if err := s.components.Storage.MySQL.UpdateResumeProcessingStatus(ctx, msg.SubmissionUUID, constants.StatusExtractionFailed); err != nil {
		logger.Error().Err(err).Msg("更新提取失败状态失败")
	}
	s.releaseFileMD5(ctx, msg, logger)
}

func (s *resumeServiceImpl) releaseFileMD5(ctx context.Context, msg *storage.ResumeUploadMessage, logger zerolog.Logger) {
	if msg.RawFileMD5 == "" || s.components.Storage.Redis == nil {
		return
	}
	if err := s.components.Storage.Redis.RemoveFileMD5(ctx, msg.RawFileMD5); err != nil {
		logger.Warn().Err(err).Str("md5", msg.RawFileMD5).Msg("释放文件去重记录失败")
	}
}
