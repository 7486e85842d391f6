package constants

// 提交状态常量
const (
	StatusUploaded         = "UPLOADED"
	StatusQueued           = "QUEUED"
	StatusTextExtracted    = "TEXT_EXTRACTED"
	StatusParsed           = "PARSED"
	StatusExtractionFailed = "EXTRACTION_FAILED"
)

// 提取模式常量，对应配置 extractor.mode
const (
	ExtractModeHeuristic = "heuristic"
	ExtractModeLLM       = "llm"
	ExtractModeBoth      = "both"
)

// 文本提取器类型常量，对应配置 extractor.text_extractor
const (
	TextExtractorTika  = "tika"
	TextExtractorLocal = "local"
)
