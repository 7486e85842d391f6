package handler

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"skillsync-go/internal/config"
	"skillsync-go/internal/constants"
	"skillsync-go/internal/parser"
	"skillsync-go/internal/processor"
	"skillsync-go/internal/storage"
	"skillsync-go/internal/tracing"
	"skillsync-go/internal/types"
)

// ResumeHandler 简历相关的 HTTP 处理器
type ResumeHandler struct {
	cfg           *config.Config
	storage       *storage.Storage
	resumeService processor.ResumeService
	logger        zerolog.Logger
}

// NewResumeHandler 构造简历处理器
func NewResumeHandler(cfg *config.Config, store *storage.Storage, svc processor.ResumeService, logger zerolog.Logger) *ResumeHandler {
	return &ResumeHandler{
		cfg:           cfg,
		storage:       store,
		resumeService: svc,
		logger:        logger,
	}
}

// ResumeUploadResponse 上传接口响应
type ResumeUploadResponse struct {
	SubmissionUUID string `json:"submission_uuid"`
	Status         string `json:"status"`
}

// ResumeParseResponse 同步解析接口响应
type ResumeParseResponse struct {
	SessionID  string            `json:"session_id"`
	FileName   string            `json:"file_name"`
	FileType   string            `json:"file_type"`
	FileSize   int64             `json:"file_size"`
	Text       string            `json:"text"`
	ResumeData *types.ResumeData `json:"resume_data"`
}

// 上传状态值
const (
	statusSubmitted = "SUBMITTED_FOR_PROCESSING"
	statusDuplicate = "DUPLICATE_FILE_SKIPPED"
)

const (
	// fileMD5LockTTL 去重锁的过期时间,覆盖对象上传加消息发布的耗时
	fileMD5LockTTL = 30 * time.Second
	// downloadURLExpiry 预签名下载链接有效期
	downloadURLExpiry = 15 * time.Minute
)

// HandleResumeUpload 接收简历文件,去重后存入对象存储并发布处理消息
func (h *ResumeHandler) HandleResumeUpload(ctx context.Context, c *app.RequestContext) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "缺少 file 字段"})
		return
	}
	if !parser.IsSupportedDocument(fileHeader.Filename) {
		c.JSON(consts.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("不支持的文件类型: %s,仅接受 .pdf/.doc/.docx", filepath.Ext(fileHeader.Filename)),
		})
		return
	}

	// 异步上传链路依赖对象存储和消息队列,未配置时直接拒绝而不是panic
	if h.storage == nil || h.storage.MinIO == nil || h.storage.RabbitMQ == nil {
		c.JSON(consts.StatusServiceUnavailable, map[string]string{"error": "上传通道未配置,请使用同步解析接口"})
		return
	}

	fileData, err := readMultipartFile(fileHeader)
	if err != nil {
		h.logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("读取上传文件失败")
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "读取上传文件失败"})
		return
	}

	md5Sum := md5.Sum(fileData)
	md5Hex := hex.EncodeToString(md5Sum[:])

	id, err := uuid.NewV7()
	if err != nil {
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "生成提交 ID 失败"})
		return
	}
	submissionUUID := id.String()

	logger := h.logger.With().
		Str("submission_uuid", submissionUUID).
		Str("filename", fileHeader.Filename).
		Logger()

	// MD5 去重:同一文件内容直接返回已有提交。
	// 去重检查到消息发布之间持有分布式锁,避免并发上传同一文件时重复入库
	if h.storage.Redis != nil {
		lockKey := fmt.Sprintf(constants.KeyFileMD5Lock, md5Hex)
		lockValue, lockErr := h.storage.Redis.AcquireLock(ctx, lockKey, fileMD5LockTTL)
		if lockErr != nil {
			logger.Warn().Err(lockErr).Msg("获取文件去重锁失败,按无锁继续")
		} else if lockValue == "" {
			c.JSON(consts.StatusConflict, map[string]string{"error": "相同文件正在处理中,请稍后重试"})
			return
		} else {
			defer func() {
				if _, err := h.storage.Redis.ReleaseLock(ctx, lockKey, lockValue); err != nil {
					logger.Warn().Err(err).Msg("释放文件去重锁失败")
				}
			}()
		}

		exists, existingUUID, err := h.storage.Redis.CheckAndSetFileMD5(ctx, md5Hex, submissionUUID)
		if err != nil {
			logger.Warn().Err(err).Msg("文件去重检查失败,按新文件继续")
		} else if exists {
			logger.Info().Str("existing_uuid", existingUUID).Msg("检测到重复文件,跳过处理")
			c.JSON(consts.StatusOK, ResumeUploadResponse{
				SubmissionUUID: existingUUID,
				Status:         statusDuplicate,
			})
			return
		}
	}

	fileExt := strings.ToLower(filepath.Ext(fileHeader.Filename))
	objectKey, err := h.storage.MinIO.UploadResumeFile(ctx, submissionUUID, fileExt,
		bytes.NewReader(fileData), int64(len(fileData)))
	if err != nil {
		logger.Error().Err(err).Msg("上传文件到对象存储失败")
		h.rollbackFileMD5(ctx, md5Hex, logger)
		tracing.RecordHTTPError(trace.SpanFromContext(ctx), err, consts.StatusInternalServerError)
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "存储上传文件失败"})
		return
	}

	msg := &storage.ResumeUploadMessage{
		SubmissionUUID:      submissionUUID,
		SubmissionTimestamp: time.Now(),
		OriginalFilename:    fileHeader.Filename,
		OriginalFilePathOSS: objectKey,
		RawFileMD5:          md5Hex,
	}
	if err := h.storage.RabbitMQ.PublishResumeUploaded(ctx, msg); err != nil {
		logger.Error().Err(err).Msg("发布简历上传消息失败")
		// 消息没发出去,已上传的对象成了孤儿,连同去重记录一起回滚
		if delErr := h.storage.MinIO.DeleteFile(ctx, objectKey); delErr != nil {
			logger.Warn().Err(delErr).Str("object_key", objectKey).Msg("清理已上传对象失败")
		}
		h.rollbackFileMD5(ctx, md5Hex, logger)
		tracing.RecordHTTPError(trace.SpanFromContext(ctx), err, consts.StatusInternalServerError)
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "提交处理任务失败"})
		return
	}

	logger.Info().Str("object_key", objectKey).Msg("简历已提交处理")
	c.JSON(consts.StatusOK, ResumeUploadResponse{
		SubmissionUUID: submissionUUID,
		Status:         statusSubmitted,
	})
}

// HandleResumeParse 同步解析一份简历文件并返回结构化结果
func (h *ResumeHandler) HandleResumeParse(ctx context.Context, c *app.RequestContext) {
	fileHeader, err := c.FormFile("resume")
	if err != nil {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "缺少 resume 字段"})
		return
	}
	if !parser.IsSupportedDocument(fileHeader.Filename) {
		c.JSON(consts.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("不支持的文件类型: %s,仅接受 .pdf/.doc/.docx", filepath.Ext(fileHeader.Filename)),
		})
		return
	}

	fileData, err := readMultipartFile(fileHeader)
	if err != nil {
		h.logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("读取上传文件失败")
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "读取上传文件失败"})
		return
	}

	sessionID := c.PostForm("session_id")
	parsed, err := h.resumeService.ParseResumeFile(ctx, sessionID, fileHeader.Filename, fileData)
	if err != nil {
		if errors.Is(err, processor.ErrEmptyText) {
			c.JSON(consts.StatusBadRequest, map[string]string{"error": "文档中未提取到有效文本"})
			return
		}
		h.logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("解析简历失败")
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "解析简历失败"})
		return
	}

	fileType := "unknown"
	if parsed.Metadata != nil {
		if ct, ok := parsed.Metadata["Content-Type"].(string); ok {
			fileType = ct
		}
	}
	c.JSON(consts.StatusOK, ResumeParseResponse{
		SessionID:  parsed.SessionID,
		FileName:   fileHeader.Filename,
		FileType:   fileType,
		FileSize:   fileHeader.Size,
		Text:       parsed.Text,
		ResumeData: parsed.Data,
	})
}

// ResumeDownloadResponse 原始文件下载接口响应
type ResumeDownloadResponse struct {
	SubmissionUUID string `json:"submission_uuid"`
	DownloadURL    string `json:"download_url"`
	ExpiresIn      int64  `json:"expires_in_seconds"`
}

// HandleResumeDownload 为已上传的原始简历签发临时下载链接
func (h *ResumeHandler) HandleResumeDownload(ctx context.Context, c *app.RequestContext) {
	if h.storage == nil || h.storage.MySQL == nil || h.storage.MinIO == nil {
		c.JSON(consts.StatusServiceUnavailable, map[string]string{"error": "下载服务未配置"})
		return
	}

	submissionUUID := c.Param("id")
	submission, err := h.storage.MySQL.GetResumeSubmission(ctx, submissionUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(consts.StatusNotFound, map[string]string{"error": "提交记录不存在"})
			return
		}
		h.logger.Error().Err(err).Str("submission_uuid", submissionUUID).Msg("查询提交记录失败")
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "查询提交记录失败"})
		return
	}
	// 同步解析的会话没有原始文件落盘
	if submission.OriginalFilePathOSS == "" {
		c.JSON(consts.StatusNotFound, map[string]string{"error": "该提交没有可下载的原始文件"})
		return
	}

	url, err := h.storage.MinIO.GetPresignedURL(ctx, submission.OriginalFilePathOSS, downloadURLExpiry)
	if err != nil {
		h.logger.Error().Err(err).Str("submission_uuid", submissionUUID).Msg("生成下载链接失败")
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "生成下载链接失败"})
		return
	}

	c.JSON(consts.StatusOK, ResumeDownloadResponse{
		SubmissionUUID: submissionUUID,
		DownloadURL:    url,
		ExpiresIn:      int64(downloadURLExpiry.Seconds()),
	})
}

// StartResumeUploadConsumer 启动上传消息消费者,返回消费结束通知通道
func (h *ResumeHandler) StartResumeUploadConsumer(ctx context.Context) (<-chan struct{}, error) {
	if err := h.storage.RabbitMQ.EnsureResumeTopology(); err != nil {
		return nil, fmt.Errorf("初始化消息拓扑失败: %w", err)
	}

	return h.storage.RabbitMQ.StartConsumer(
		h.cfg.RabbitMQ.RawResumeQueue,
		h.cfg.RabbitMQ.PrefetchCount,
		func(body []byte) bool {
			var msg storage.ResumeUploadMessage
			if err := json.Unmarshal(body, &msg); err != nil {
				h.logger.Error().Err(err).Msg("反序列化上传消息失败,丢弃")
				return true // 格式错误的消息重试也无意义
			}
			if err := h.resumeService.ProcessUploadedResume(ctx, &msg); err != nil {
				h.logger.Error().Err(err).
					Str("submission_uuid", msg.SubmissionUUID).
					Msg("处理简历上传消息失败")
				return false
			}
			return true
		},
	)
}

func (h *ResumeHandler) rollbackFileMD5(ctx context.Context, md5Hex string, logger zerolog.Logger) {
	if h.storage.Redis == nil {
		return
	}
	if err := h.storage.Redis.RemoveFileMD5(ctx, md5Hex); err != nil {
		logger.Warn().Err(err).Msg("回滚文件去重记录失败")
	}
}

func readMultipartFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
