package processor

import "errors"

// 服务级错误,供上层判断失败原因
var (
	ErrStorageNotInit       = errors.New("存储层未初始化")
	ErrTextExtractorNotInit = errors.New("文本提取器未初始化")
	ErrJobExtractorNotInit  = errors.New("职位解析器未初始化")
	ErrEmptyText            = errors.New("输入文本为空")
	ErrResumeNotFound       = errors.New("简历记录不存在")
	ErrJobNotFound          = errors.New("职位记录不存在")
	ErrResumeNotParsed      = errors.New("简历尚未完成解析")
)
