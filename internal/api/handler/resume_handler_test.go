package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillsync-go/internal/api/handler"
	"skillsync-go/internal/config"
	"skillsync-go/internal/processor"
	"skillsync-go/internal/storage"
	"skillsync-go/internal/types"
)

// fakeResumeService 只实现同步解析路径,供处理器单元测试使用
type fakeResumeService struct {
	parsed   *processor.ParsedResume
	parseErr error
}

func (f *fakeResumeService) ParseResumeText(ctx context.Context, text string) (*types.ResumeData, error) {
	return nil, nil
}

func (f *fakeResumeService) ParseResumeFile(ctx context.Context, sessionID, fileName string, fileData []byte) (*processor.ParsedResume, error) {
	if f.parseErr != nil {
		return nil, f.parseErr
	}
	result := *f.parsed
	if sessionID != "" {
		result.SessionID = sessionID
	}
	return &result, nil
}

func (f *fakeResumeService) ProcessUploadedResume(ctx context.Context, msg *storage.ResumeUploadMessage) error {
	return nil
}

func newTestEngine(svc processor.ResumeService) *server.Hertz {
	h := handler.NewResumeHandler(&config.Config{}, &storage.Storage{}, svc, zerolog.Nop())
	engine := server.New(server.WithHostPorts("127.0.0.1:0"))
	engine.POST("/api/v1/resumes/upload", func(c context.Context, appCtx *app.RequestContext) {
		h.HandleResumeUpload(c, appCtx)
	})
	engine.POST("/api/v1/resumes/parse", func(c context.Context, appCtx *app.RequestContext) {
		h.HandleResumeParse(c, appCtx)
	})
	engine.GET("/api/v1/resumes/:id/download", func(c context.Context, appCtx *app.RequestContext) {
		h.HandleResumeDownload(c, appCtx)
	})
	return engine
}

// buildMultipart 用给定字段名和文件内容构造 multipart 表单
func buildMultipart(t *testing.T, fieldName, fileName string, content []byte, extraFields map[string]string) (*bytes.Buffer, string) {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile(fieldName, fileName)
	require.NoError(t, err)
	_, err = io.Copy(part, bytes.NewReader(content))
	require.NoError(t, err)

	for k, v := range extraFields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestHandleResumeUploadRejectsUnsupportedExtension(t *testing.T) {
	engine := newTestEngine(&fakeResumeService{})

	body, contentType := buildMultipart(t, "file", "resume.txt", []byte("plain text resume"), nil)
	resp := ut.PerformRequest(engine.Engine, "POST", "/api/v1/resumes/upload",
		&ut.Body{Body: body, Len: body.Len()},
		ut.Header{Key: "Content-Type", Value: contentType},
	)

	require.Equal(t, http.StatusBadRequest, resp.Code, ".txt 文件应在入口被拒绝")
	var errResp map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	assert.Contains(t, errResp["error"], "不支持的文件类型")
}

func TestHandleResumeUploadMissingFileField(t *testing.T) {
	engine := newTestEngine(&fakeResumeService{})

	body, contentType := buildMultipart(t, "attachment", "resume.pdf", []byte("%PDF-1.4"), nil)
	resp := ut.PerformRequest(engine.Engine, "POST", "/api/v1/resumes/upload",
		&ut.Body{Body: body, Len: body.Len()},
		ut.Header{Key: "Content-Type", Value: contentType},
	)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	var errResp map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	assert.Contains(t, errResp["error"], "file")
}

func TestHandleResumeUploadUnavailableWithoutBackends(t *testing.T) {
	// 对象存储或消息队列未配置时,合法上传应得到 503 而不是 panic
	engine := newTestEngine(&fakeResumeService{})

	body, contentType := buildMultipart(t, "file", "resume.pdf", []byte("%PDF-1.4 dummy"), nil)
	resp := ut.PerformRequest(engine.Engine, "POST", "/api/v1/resumes/upload",
		&ut.Body{Body: body, Len: body.Len()},
		ut.Header{Key: "Content-Type", Value: contentType},
	)

	require.Equal(t, http.StatusServiceUnavailable, resp.Code, "后端未配置时应返回 503")
	var errResp map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	assert.Contains(t, errResp["error"], "上传通道未配置")
}

func TestHandleResumeDownloadUnavailableWithoutBackends(t *testing.T) {
	engine := newTestEngine(&fakeResumeService{})

	resp := ut.PerformRequest(engine.Engine, "GET", "/api/v1/resumes/some-id/download", nil)

	require.Equal(t, http.StatusServiceUnavailable, resp.Code, "后端未配置时下载应返回 503")
}

func TestHandleResumeParseSuccess(t *testing.T) {
	data := types.NewResumeData()
	data.Name = "Jane Doe"
	svc := &fakeResumeService{parsed: &processor.ParsedResume{
		SessionID: "generated-session",
		Text:      "Jane Doe",
		Data:      data,
		Metadata:  map[string]interface{}{"Content-Type": "application/pdf"},
	}}
	engine := newTestEngine(svc)

	body, contentType := buildMultipart(t, "resume", "resume.pdf", []byte("%PDF-1.4 dummy"), nil)
	resp := ut.PerformRequest(engine.Engine, "POST", "/api/v1/resumes/parse",
		&ut.Body{Body: body, Len: body.Len()},
		ut.Header{Key: "Content-Type", Value: contentType},
	)

	require.Equal(t, http.StatusOK, resp.Code)
	var parseResp handler.ResumeParseResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &parseResp))
	assert.Equal(t, "generated-session", parseResp.SessionID)
	assert.Equal(t, "resume.pdf", parseResp.FileName)
	assert.Equal(t, "application/pdf", parseResp.FileType)
	assert.Equal(t, "Jane Doe", parseResp.ResumeData.Name)
}

func TestHandleResumeParseEchoesSessionID(t *testing.T) {
	svc := &fakeResumeService{parsed: &processor.ParsedResume{
		SessionID: "generated-session",
		Data:      types.NewResumeData(),
	}}
	engine := newTestEngine(svc)

	body, contentType := buildMultipart(t, "resume", "resume.docx", []byte("dummy"), map[string]string{
		"session_id": "client-supplied",
	})
	resp := ut.PerformRequest(engine.Engine, "POST", "/api/v1/resumes/parse",
		&ut.Body{Body: body, Len: body.Len()},
		ut.Header{Key: "Content-Type", Value: contentType},
	)

	require.Equal(t, http.StatusOK, resp.Code)
	var parseResp handler.ResumeParseResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &parseResp))
	assert.Equal(t, "client-supplied", parseResp.SessionID, "客户端提供的会话 ID 应被沿用")
}

func TestHandleResumeParseEmptyDocument(t *testing.T) {
	engine := newTestEngine(&fakeResumeService{parseErr: processor.ErrEmptyText})

	body, contentType := buildMultipart(t, "resume", "blank.pdf", []byte("%PDF-1.4"), nil)
	resp := ut.PerformRequest(engine.Engine, "POST", "/api/v1/resumes/parse",
		&ut.Body{Body: body, Len: body.Len()},
		ut.Header{Key: "Content-Type", Value: contentType},
	)

	require.Equal(t, http.StatusBadRequest, resp.Code, "空文档应返回 400 而不是 500")
	var errResp map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	assert.Contains(t, errResp["error"], "未提取到有效文本")
}
