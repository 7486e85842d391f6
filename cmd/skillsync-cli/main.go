package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/spf13/pflag"

	"skillsync-go/internal/config"
	applog "skillsync-go/internal/logger"
	"skillsync-go/internal/matcher"
	"skillsync-go/internal/parser"
	"skillsync-go/internal/types"
	"skillsync-go/pkg/agent"
	"skillsync-go/pkg/ratelimit"
)

const usage = `用法: skillsync-cli <命令> [选项]

命令:
  extract        提取简历文件并输出结构化 JSON
  parse-job      解析职位描述文本并输出要求 JSON
  match          匹配简历 JSON 与职位 JSON
  sample-config  生成示例配置文件
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "extract":
		err = runExtract(os.Args[2:])
	case "parse-job":
		err = runParseJob(os.Args[2:])
	case "match":
		err = runMatch(os.Args[2:])
	case "sample-config":
		err = runSampleConfig(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "未知命令: %s\n\n%s", os.Args[1], usage)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func runExtract(args []string) error {
	flags := pflag.NewFlagSet("extract", pflag.ExitOnError)
	filePath := flags.StringP("file", "f", "", "简历文件路径 (.pdf/.doc/.docx)")
	mode := flags.StringP("mode", "m", "heuristic", "解析模式: heuristic 或 llm")
	outPath := flags.StringP("out", "o", "", "输出文件路径,缺省打印到标准输出")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *filePath == "" {
		return fmt.Errorf("必须提供 --file 参数")
	}
	if !parser.IsSupportedDocument(*filePath) {
		return fmt.Errorf("不支持的文件类型: %s", *filePath)
	}

	fileData, err := os.ReadFile(*filePath)
	if err != nil {
		return fmt.Errorf("读取文件失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	extractor, err := parser.NewLocalTextExtractor(ctx)
	if err != nil {
		return fmt.Errorf("创建文本提取器失败: %w", err)
	}
	rawText, _, err := extractor.ExtractTextFromBytes(ctx, fileData, *filePath)
	if err != nil {
		return fmt.Errorf("提取文本失败: %w", err)
	}
	normalized := parser.NormalizeText(rawText)

	var data *types.ResumeData
	switch *mode {
	case "llm":
		llmModel, err := buildCLIModel()
		if err != nil {
			return err
		}
		data = parser.NewLLMResumeExtractor(llmModel, applog.StdAdapter("cli")).Extract(ctx, normalized)
	case "heuristic":
		data = parser.NewHeuristicExtractor().Extract(normalized)
	default:
		return fmt.Errorf("未知解析模式: %s", *mode)
	}
	return writeJSON(*outPath, data)
}

func runParseJob(args []string) error {
	flags := pflag.NewFlagSet("parse-job", pflag.ExitOnError)
	filePath := flags.StringP("file", "f", "", "职位描述文本文件,缺省读标准输入")
	outPath := flags.StringP("out", "o", "", "输出文件路径,缺省打印到标准输出")
	if err := flags.Parse(args); err != nil {
		return err
	}

	var text []byte
	var err error
	if *filePath != "" {
		text, err = os.ReadFile(*filePath)
	} else {
		text, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("读取职位描述失败: %w", err)
	}

	llmModel, err := buildCLIModel()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	extractor := parser.NewJobDetailExtractor(llmModel, applog.StdAdapter("cli"))
	details := extractor.Extract(ctx, parser.NormalizeText(string(text)))
	return writeJSON(*outPath, details)
}

func runMatch(args []string) error {
	flags := pflag.NewFlagSet("match", pflag.ExitOnError)
	resumePath := flags.StringP("resume", "r", "", "简历 JSON 文件路径")
	jobPath := flags.StringP("job", "j", "", "职位 JSON 文件路径")
	outPath := flags.StringP("out", "o", "", "输出文件路径,缺省打印到标准输出")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *resumePath == "" || *jobPath == "" {
		return fmt.Errorf("必须提供 --resume 和 --job 参数")
	}

	var resume types.ResumeData
	if err := readJSON(*resumePath, &resume); err != nil {
		return fmt.Errorf("读取简历 JSON 失败: %w", err)
	}
	var job types.JobDetails
	if err := readJSON(*jobPath, &job); err != nil {
		return fmt.Errorf("读取职位 JSON 失败: %w", err)
	}

	return writeJSON(*outPath, matcher.Match(&resume, &job))
}

func runSampleConfig(args []string) error {
	flags := pflag.NewFlagSet("sample-config", pflag.ExitOnError)
	outPath := flags.StringP("out", "o", "config.yaml", "示例配置文件输出路径")
	if err := flags.Parse(args); err != nil {
		return err
	}
	return config.CreateSampleConfig(*outPath)
}

// buildCLIModel 从环境变量构建带限速的 OpenRouter 模型
func buildCLIModel() (model.ToolCallingChatModel, error) {
	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("llm 模式需要设置 OPENROUTER_API_KEY 环境变量")
	}
	cfg := &config.Config{}
	if loaded, err := config.LoadConfig(os.Getenv("SKILLSYNC_CONFIG")); err == nil {
		cfg = loaded
	}
	apiURL := cfg.OpenRouter.APIURL
	modelName := cfg.OpenRouter.Model

	chatModel, err := agent.NewOpenRouterChatModel(apiKey, modelName, apiURL,
		agent.WithJSONOutput(true))
	if err != nil {
		return nil, fmt.Errorf("创建模型客户端失败: %w", err)
	}
	return ratelimit.NewRateLimitedLLMModel(chatModel, cfg.OpenRouter.QPM), nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func writeJSON(outPath string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化结果失败: %w", err)
	}
	if outPath == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}
	fmt.Printf("结果已写入: %s\n", outPath)
	return nil
}
