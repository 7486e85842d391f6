package handler

import (
	"context"
	"errors"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/rs/zerolog"

	"skillsync-go/internal/processor"
)

// CompareHandler 简历与职位匹配的 HTTP 处理器
type CompareHandler struct {
	compareService *processor.CompareService
	logger         zerolog.Logger
}

// NewCompareHandler 构造匹配处理器
func NewCompareHandler(svc *processor.CompareService, logger zerolog.Logger) *CompareHandler {
	return &CompareHandler{compareService: svc, logger: logger}
}

// CompareResponse 匹配接口响应
type CompareResponse struct {
	SessionID     string        `json:"session_id"`
	Percentage    int           `json:"percentage"`
	MatchedSkills []string      `json:"matched_skills"`
	MissingSkills []string      `json:"missing_skills"`
	Resume        ResumeSummary `json:"resume_summary"`
	Job           JobSummary    `json:"job_summary"`
}

// ResumeSummary 匹配响应中的简历侧摘要
type ResumeSummary struct {
	Name        string `json:"name"`
	TotalSkills int    `json:"total_skills"`
}

// JobSummary 匹配响应中的职位侧摘要
type JobSummary struct {
	RequiredSkills []string `json:"required_skills"`
	Experience     string   `json:"experience"`
}

// HandleCompare 读取同一会话下的简历与职位记录并计算匹配结果。
// 任一侧记录缺失返回 404。
func (h *CompareHandler) HandleCompare(ctx context.Context, c *app.RequestContext) {
	sessionID := c.Param("id")
	if sessionID == "" {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "缺少会话 ID"})
		return
	}

	outcome, err := h.compareService.Compare(ctx, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, processor.ErrResumeNotFound), errors.Is(err, processor.ErrResumeNotParsed):
			c.JSON(consts.StatusNotFound, map[string]string{"error": "该会话下没有可用的简历记录"})
		case errors.Is(err, processor.ErrJobNotFound):
			c.JSON(consts.StatusNotFound, map[string]string{"error": "该会话下没有可用的职位记录"})
		default:
			h.logger.Error().Err(err).Str("session_id", sessionID).Msg("计算匹配结果失败")
			c.JSON(consts.StatusInternalServerError, map[string]string{"error": "计算匹配结果失败"})
		}
		return
	}

	c.JSON(consts.StatusOK, CompareResponse{
		SessionID:     sessionID,
		Percentage:    outcome.Result.Percentage,
		MatchedSkills: outcome.Result.Matched,
		MissingSkills: outcome.Result.Missing,
		Resume: ResumeSummary{
			Name:        outcome.Resume.Name,
			TotalSkills: len(outcome.Resume.FlattenSkills()),
		},
		Job: JobSummary{
			RequiredSkills: outcome.Job.Skills,
			Experience:     outcome.Job.Experience,
		},
	})
}
