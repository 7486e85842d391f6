package handler

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"

	"skillsync-go/internal/processor"
	"skillsync-go/internal/types"
)

// JobHandler 职位描述相关的 HTTP 处理器
type JobHandler struct {
	jdService *processor.JDService
	logger    zerolog.Logger
}

// NewJobHandler 构造职位处理器
func NewJobHandler(jdService *processor.JDService, logger zerolog.Logger) *JobHandler {
	return &JobHandler{jdService: jdService, logger: logger}
}

// JobParseRequest 职位解析请求体
type JobParseRequest struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id"`
}

// JobParseResponse 职位解析响应
type JobParseResponse struct {
	SessionID  string            `json:"session_id"`
	JobDetails *types.JobDetails `json:"job_details"`
}

// HandleJobParse 解析职位描述文本。
// 提取失败返回 HTTP 200,失败原因在 job_details.error 字段中。
func (h *JobHandler) HandleJobParse(ctx context.Context, c *app.RequestContext) {
	var req JobParseRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "请求体不是合法 JSON"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "text 字段不能为空"})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			c.JSON(consts.StatusInternalServerError, map[string]string{"error": "生成会话 ID 失败"})
			return
		}
		sessionID = id.String()
	}

	details, err := h.jdService.ParseJobDescription(ctx, sessionID, req.Text)
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", sessionID).Msg("解析职位描述失败")
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "解析职位描述失败"})
		return
	}

	c.JSON(consts.StatusOK, JobParseResponse{
		SessionID:  sessionID,
		JobDetails: details,
	})
}
