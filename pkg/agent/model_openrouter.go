package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const (
	// OpenRouter 的 OpenAI 兼容接口
	openRouterAPIURL       = "https://openrouter.ai/api/v1/chat/completions"
	defaultOpenRouterModel = "tngtech/deepseek-r1t-chimera:free"
	defaultTemperature     = 0.3
	defaultHTTPTimeout     = 90 * time.Second
)

// --- OpenAI 兼容请求/响应结构 ---

// ResponseFormat 请求JSON格式输出时使用
type ResponseFormat struct {
	Type string `json:"type"` // "json_object"
}

type ChatCompletionRequest struct {
	Model          string            `json:"model"`
	Messages       []*schema.Message `json:"messages"` // eino 的 schema.Message 与 role/content 结构兼容
	Temperature    float64           `json:"temperature,omitempty"`
	ResponseFormat *ResponseFormat   `json:"response_format,omitempty"`
}

type ChatChoiceMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

type ChatChoice struct {
	Index        int               `json:"index"`
	Message      ChatChoiceMessage `json:"message"`
	FinishReason string            `json:"finish_reason"`
}

type ChatCompletionResponse struct {
	Id      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
}

// OpenRouterChatModel 实现 model.ToolCallingChatModel 接口，
// 通过 OpenRouter 的 OpenAI 兼容接口调用补全模型。
// 默认请求 JSON 格式输出并使用较低采样温度，偏向确定性结果。
type OpenRouterChatModel struct {
	apiKey      string
	modelName   string
	apiURL      string
	referer     string
	title       string
	temperature float64
	jsonOutput  bool
	httpClient  *http.Client
}

// OpenRouterOption 是客户端的配置选项
type OpenRouterOption func(*OpenRouterChatModel)

// WithHTTPClient 替换默认的 HTTP 客户端（超时策略由客户端自身决定）
func WithHTTPClient(client *http.Client) OpenRouterOption {
	return func(m *OpenRouterChatModel) {
		m.httpClient = client
	}
}

// WithReferer 设置 OpenRouter 要求的 HTTP-Referer 和 X-Title 头
func WithReferer(referer, title string) OpenRouterOption {
	return func(m *OpenRouterChatModel) {
		m.referer = referer
		m.title = title
	}
}

// WithTemperature 设置采样温度
func WithTemperature(temperature float64) OpenRouterOption {
	return func(m *OpenRouterChatModel) {
		m.temperature = temperature
	}
}

// WithJSONOutput 控制是否请求 json_object 格式的输出
func WithJSONOutput(enabled bool) OpenRouterOption {
	return func(m *OpenRouterChatModel) {
		m.jsonOutput = enabled
	}
}

// NewOpenRouterChatModel 创建一个新的 OpenRouter 客户端实例
func NewOpenRouterChatModel(apiKey string, modelName string, apiURL string, options ...OpenRouterOption) (*OpenRouterChatModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API 密钥不能为空")
	}

	mn := modelName
	if strings.TrimSpace(mn) == "" {
		mn = defaultOpenRouterModel
	}
	url := apiURL
	if strings.TrimSpace(url) == "" {
		url = openRouterAPIURL
	}

	m := &OpenRouterChatModel{
		apiKey:      apiKey,
		modelName:   mn,
		apiURL:      url,
		temperature: defaultTemperature,
		jsonOutput:  true,
		httpClient:  &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range options {
		opt(m)
	}

	log.Printf("使用 OpenRouter LLM 客户端，API URL: %s, 模型: %s", m.apiURL, m.modelName)
	return m, nil
}

// Generate 实现 model.BaseChatModel 接口
func (m *OpenRouterChatModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	for _, opt := range options {
		_ = opt // 调用方的通用选项在此客户端中没有对应配置
	}

	reqPayload := ChatCompletionRequest{
		Model:       m.modelName,
		Messages:    messages,
		Temperature: m.temperature,
	}
	if m.jsonOutput {
		reqPayload.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}

	jsonData, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("序列化请求体失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建 HTTP 请求失败: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+m.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	if m.referer != "" {
		// OpenRouter 用这两个头识别调用方
		httpReq.Header.Set("HTTP-Referer", m.referer)
		httpReq.Header.Set("X-Title", m.title)
	}

	httpResp, err := m.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("发送 HTTP 请求失败: %w", err)
	}
	defer httpResp.Body.Close()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API 请求失败，状态 %s: %s", httpResp.Status, string(bodyBytes))
	}

	var completion ChatCompletionResponse
	if err := json.Unmarshal(bodyBytes, &completion); err != nil {
		return nil, fmt.Errorf("反序列化 API 响应失败: %w。响应体: %s", err, string(bodyBytes))
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("从 API 收到空选项: %s", string(bodyBytes))
	}

	apiMessage := completion.Choices[0].Message
	content := ""
	if apiMessage.Content != nil {
		content = *apiMessage.Content
	}

	result := &schema.Message{
		Role:    schema.RoleType(apiMessage.Role),
		Content: content,
	}
	if result.Role == "" {
		result.Role = schema.RoleType("assistant")
	}
	return result, nil
}

// Stream 实现 model.BaseChatModel 接口 (placeholder)
func (m *OpenRouterChatModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("OpenRouterChatModel 的 Stream 方法未实现")
}

// BindTools 实现 model.ChatModel 接口。
// 结构化提取场景不使用工具调用，这里只接受并忽略。
func (m *OpenRouterChatModel) BindTools(tools []*schema.ToolInfo) error {
	if len(tools) > 0 {
		log.Printf("[OpenRouter模型] 收到 %d 个工具绑定请求，此客户端不支持工具调用，已忽略。", len(tools))
	}
	return nil
}

// WithTools 满足 model.ToolCallingChatModel 接口
func (m *OpenRouterChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	if err := m.BindTools(tools); err != nil {
		return nil, err
	}
	return m, nil
}

var _ model.ChatModel = (*OpenRouterChatModel)(nil)
var _ model.ToolCallingChatModel = (*OpenRouterChatModel)(nil)
