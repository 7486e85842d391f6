package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"skillsync-go/internal/parser"
	"skillsync-go/internal/storage"
	"skillsync-go/internal/tracing"
	"skillsync-go/internal/types"
)

// JDService 职位描述处理服务
type JDService struct {
	jobExtractor JobExtractor
	storage      *storage.Storage
	logger       zerolog.Logger
}

// NewJDService 构造职位描述处理服务
func NewJDService(jobExtractor JobExtractor, store *storage.Storage, logger zerolog.Logger) *JDService {
	return &JDService{
		jobExtractor: jobExtractor,
		storage:      store,
		logger:       logger,
	}
}

// ParseJobDescription 解析职位描述文本并持久化。
// 提取失败不返回 error,失败原因携带在返回记录的 Error 字段中。
func (s *JDService) ParseJobDescription(ctx context.Context, jobUUID string, text string) (*types.JobDetails, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if s.jobExtractor == nil {
		return nil, ErrJobExtractorNotInit
	}

	ctx, span := tracer.Start(ctx, "JDService.ParseJobDescription")
	defer span.End()
	span.SetAttributes(
		attribute.String("job.uuid", jobUUID),
		attribute.Int("job.text_length", len(text)),
	)

	normalized := parser.NormalizeText(text)
	details := s.jobExtractor.Extract(ctx, normalized)

	if s.storage != nil && s.storage.MySQL != nil {
		if err := s.storage.MySQL.CreateJobPosting(ctx, jobUUID, normalized, details); err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeDB)
			return nil, fmt.Errorf("保存职位记录失败: %w", err)
		}
	}

	// 失败记录不进缓存,避免挡住后续的重新解析
	if details.Error == "" && s.storage != nil && s.storage.Redis != nil {
		if err := s.storage.Redis.SaveJobDetails(ctx, jobUUID, details); err != nil {
			s.logger.Warn().Err(err).Str("job_uuid", jobUUID).Msg("缓存职位解析结果失败")
		}
	}

	if details.Error != "" {
		s.logger.Warn().
			Str("job_uuid", jobUUID).
			Str("extract_error", details.Error).
			Msg("职位描述解析失败,已保存失败记录")
	}
	return details, nil
}

// GetJobDetails 读取职位解析结果,优先 Redis 缓存,未命中回落 MySQL 并回填缓存
func (s *JDService) GetJobDetails(ctx context.Context, jobUUID string) (*types.JobDetails, error) {
	if s.storage == nil {
		return nil, ErrStorageNotInit
	}

	if s.storage.Redis != nil {
		details, err := s.storage.Redis.GetJobDetails(ctx, jobUUID)
		if err == nil {
			return details, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().Err(err).Str("job_uuid", jobUUID).Msg("读取职位缓存失败,回落数据库")
		}
	}

	if s.storage.MySQL == nil {
		return nil, ErrJobNotFound
	}
	posting, err := s.storage.MySQL.GetJobPosting(ctx, jobUUID)
	if err != nil {
		return nil, ErrJobNotFound
	}
	if len(posting.JobDetailsJSON) == 0 {
		return nil, ErrJobNotFound
	}

	var details types.JobDetails
	if err := json.Unmarshal(posting.JobDetailsJSON, &details); err != nil {
		return nil, fmt.Errorf("反序列化职位记录失败: %w", err)
	}

	// 回填缓存,失败不影响读取
	if s.storage.Redis != nil && details.Error == "" {
		if err := s.storage.Redis.SaveJobDetails(ctx, jobUUID, &details); err != nil {
			s.logger.Warn().Err(err).Str("job_uuid", jobUUID).Msg("回填职位缓存失败")
		}
	}
	return &details, nil
}
