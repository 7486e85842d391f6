package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
	"github.com/nguyenthenguyen/docx"
)

// LocalTextExtractor 是不依赖外部服务的文档文本提取器：
// PDF 走 eino 的 PDF 解析组件，DOCX 走本地解包。
// 用作 Tika 不可用时的回退，或离线CLI场景。
type LocalTextExtractor struct {
	pdfParser *pdf.PDFParser
	logger    *log.Logger
}

// LocalExtractorOption 本地提取器的配置选项
type LocalExtractorOption func(*LocalTextExtractor)

// WithLocalLogger 配置自定义日志记录器
func WithLocalLogger(logger *log.Logger) LocalExtractorOption {
	return func(e *LocalTextExtractor) {
		e.logger = logger
	}
}

var _ DocumentTextExtractor = (*LocalTextExtractor)(nil)

// NewLocalTextExtractor 初始化本地文本提取器。
// PDF 解析配置为不按页面分割，整个文档作为单个字符串返回。
func NewLocalTextExtractor(ctx context.Context, options ...LocalExtractorOption) (*LocalTextExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{
		ToPages: false,
	})
	if err != nil {
		return nil, fmt.Errorf("创建PDF解析器失败: %w", err)
	}

	extractor := &LocalTextExtractor{
		pdfParser: p,
		logger:    log.New(os.Stderr, "[本地解析器] ", log.LstdFlags),
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor, nil
}

// ExtractFromFile 从文档文件提取文本内容
func (e *LocalTextExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", nil, fmt.Errorf("打开文档文件 %s 失败: %w", filePath, err)
	}
	defer file.Close()
	return e.ExtractTextFromReader(ctx, file, filepath.Base(filePath))
}

// ExtractTextFromReader 从io.Reader提取文本内容
func (e *LocalTextExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, fileName string) (string, map[string]interface{}, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, fmt.Errorf("读取文档内容失败: %w", err)
	}
	return e.ExtractTextFromBytes(ctx, data, fileName)
}

// ExtractTextFromBytes 从字节数组提取文本内容，按扩展名分派解析路径
func (e *LocalTextExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, fileName string) (string, map[string]interface{}, error) {
	startTime := time.Now()
	metadata := map[string]interface{}{
		"extraction_time": time.Now().Format(time.RFC3339),
		"source_file":     fileName,
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	var text string
	var err error

	switch ext {
	case ".pdf":
		text, err = e.extractPDF(ctx, data, fileName)
	case ".doc", ".docx":
		// .doc 的旧二进制格式本地解不了，按docx尝试
		text, err = extractDocxText(data)
	default:
		err = fmt.Errorf("不支持的文档类型: %s", ext)
	}
	if err != nil {
		e.logger.Printf("文档提取失败 (%s): %v", fileName, err)
		return "", metadata, err
	}

	metadata["text_length"] = len(text)
	metadata["processing_duration_ms"] = time.Since(startTime).Milliseconds()
	e.logger.Printf("文档提取完成: 提取了 %d 个字符 (用时 %.2f秒)", len(text), time.Since(startTime).Seconds())
	return text, metadata, nil
}

// extractPDF 使用eino解析组件提取PDF全文
func (e *LocalTextExtractor) extractPDF(ctx context.Context, data []byte, fileName string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	docs, err := e.pdfParser.Parse(ctx, bytes.NewReader(data), einoParser.WithURI(fileName))
	if err != nil {
		return "", fmt.Errorf("PDF解析失败: %w", err)
	}
	if len(docs) == 0 {
		return "", fmt.Errorf("PDF解析无结果: %s", fileName)
	}

	var sb strings.Builder
	for i, doc := range docs {
		sb.WriteString(doc.Content)
		if i < len(docs)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String(), nil
}

var docxTagRegex = regexp.MustCompile(`<[^>]+>`)

// extractDocxText 本地解包docx并把document.xml内容还原为纯文本。
// 段落和换行标签转成换行符，其余标签丢弃。
func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("解析docx失败: %w", err)
	}
	defer doc.Close()

	content := doc.Editable().GetContent()
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	content = strings.ReplaceAll(content, "<w:br/>", "\n")
	content = docxTagRegex.ReplaceAllString(content, "")
	return strings.TrimSpace(content), nil
}
