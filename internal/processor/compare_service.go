package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"skillsync-go/internal/matcher"
	"skillsync-go/internal/storage"
	"skillsync-go/internal/types"
)

// CompareService 简历与职位要求的匹配服务
type CompareService struct {
	jdService *JDService
	storage   *storage.Storage
	logger    zerolog.Logger
}

// NewCompareService 构造匹配服务
func NewCompareService(jdService *JDService, store *storage.Storage, logger zerolog.Logger) *CompareService {
	return &CompareService{
		jdService: jdService,
		storage:   store,
		logger:    logger,
	}
}

// ComparisonOutcome 匹配结果及两侧记录,供响应层组装摘要
type ComparisonOutcome struct {
	Result *types.MatchResult
	Resume *types.ResumeData
	Job    *types.JobDetails
}

// Compare 计算同一会话下简历与职位要求的技能匹配结果。
// 简历与职位记录共用一个会话 ID,分别存放在各自的键下。
// 匹配结果的持久化失败只记日志,不影响返回。
func (s *CompareService) Compare(ctx context.Context, sessionID string) (*ComparisonOutcome, error) {
	ctx, span := tracer.Start(ctx, "CompareService.Compare")
	defer span.End()
	span.SetAttributes(attribute.String("compare.session_id", sessionID))

	resume, err := s.loadResume(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	job, err := s.jdService.GetJobDetails(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	result := matcher.Match(resume, job)
	span.SetAttributes(attribute.Int("match.percentage", result.Percentage))

	if s.storage != nil && s.storage.MySQL != nil {
		if err := s.storage.MySQL.SaveSkillMatch(ctx, sessionID, sessionID, result); err != nil {
			s.logger.Warn().Err(err).
				Str("session_id", sessionID).
				Msg("保存匹配结果失败")
		}
	}
	return &ComparisonOutcome{Result: result, Resume: resume, Job: job}, nil
}

// loadResume 读取解析后的简历,优先 Redis 缓存,未命中回落 MySQL 并回填缓存
func (s *CompareService) loadResume(ctx context.Context, submissionUUID string) (*types.ResumeData, error) {
	if s.storage == nil {
		return nil, ErrStorageNotInit
	}

	if s.storage.Redis != nil {
		data, err := s.storage.Redis.GetResumeData(ctx, submissionUUID)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().Err(err).Str("submission_uuid", submissionUUID).Msg("读取简历缓存失败,回落数据库")
		}
	}

	if s.storage.MySQL == nil {
		return nil, ErrResumeNotFound
	}
	submission, err := s.storage.MySQL.GetResumeSubmission(ctx, submissionUUID)
	if err != nil {
		return nil, ErrResumeNotFound
	}
	if len(submission.ParsedResumeJSON) == 0 {
		return nil, ErrResumeNotParsed
	}

	var data types.ResumeData
	if err := json.Unmarshal(submission.ParsedResumeJSON, &data); err != nil {
		return nil, fmt.Errorf("反序列化简历记录失败: %w", err)
	}

	if s.storage.Redis != nil && !data.IsParseFailed() {
		if err := s.storage.Redis.SaveResumeData(ctx, submissionUUID, &data); err != nil {
			s.logger.Warn().Err(err).Str("submission_uuid", submissionUUID).Msg("回填简历缓存失败")
		}
	}
	return &data, nil
}
