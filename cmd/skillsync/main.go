package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"

	"skillsync-go/internal/api/handler"
	"skillsync-go/internal/api/router"
	"skillsync-go/internal/config"
	applog "skillsync-go/internal/logger"
	"skillsync-go/internal/processor"
	"skillsync-go/internal/storage"
	"skillsync-go/internal/tracing"
)

var (
	version     = "1.0.0"
	serviceName = "skillsync"
)

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "", "配置文件路径")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		glog.Fatalf("加载配置失败: %v", err)
	}

	initLogger(cfg)
	glog.Info("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.InitTracerProvider(ctx, serviceName, version, cfg.Tracing.OTLPEndpoint, cfg.Tracing.SampleRatio)
	if err != nil {
		glog.Fatalf("初始化追踪失败: %v", err)
	}

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()
	glog.Info("存储服务初始化成功")

	components, err := processor.NewComponentsFromConfig(ctx, cfg, storageManager)
	if err != nil {
		glog.Fatalf("初始化处理组件失败: %v", err)
	}

	resumeService, err := processor.NewResumeService(components,
		processor.WithsetMode(cfg.Extractor.Mode),
		processor.WithsetExtractionTimeout(config.GetDuration(cfg.Extractor.ExtractionTimeout, 90*time.Second)),
		processor.WithsetDebug(cfg.Logger.Level == "debug"),
		processor.WithsetLogger(applog.Logger),
	)
	if err != nil {
		glog.Fatalf("初始化简历服务失败: %v", err)
	}
	glog.Info("简历服务初始化成功")

	jdService := processor.NewJDService(components.JobExtractor, storageManager, applog.Logger)
	compareService := processor.NewCompareService(jdService, storageManager, applog.Logger)

	resumeHandler := handler.NewResumeHandler(cfg, storageManager, resumeService, applog.Logger)
	jobHandler := handler.NewJobHandler(jdService, applog.Logger)
	compareHandler := handler.NewCompareHandler(compareService, applog.Logger)

	// 上传消费者随服务一起启动,每个 worker 独立消费同一队列
	if storageManager.RabbitMQ != nil {
		workers := cfg.RabbitMQ.ConsumerWorkers
		if workers <= 0 {
			workers = 1
		}
		glog.Infof("启动上传消费者，工作线程数: %d", workers)
		for i := 0; i < workers; i++ {
			if _, err := resumeHandler.StartResumeUploadConsumer(ctx); err != nil {
				glog.Fatalf("启动简历上传消费者失败: %v", err)
			}
		}
	} else {
		glog.Warn("RabbitMQ 未配置，跳过上传消费者")
	}

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		tracer,
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))

	router.RegisterRoutes(h, cfg, resumeHandler, jobHandler, compareHandler)
	glog.Info("HTTP路由注册成功")

	go func() {
		glog.Infof("HTTP 服务器启动中，监听地址: %s", cfg.Server.Address)
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Errorf("服务器关闭失败: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		glog.Errorf("追踪导出器关闭失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

func initLogger(cfg *config.Config) {
	applog.Init(applog.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})

	// Hertz 的日志走同一个 zerolog 实例
	glog.SetLogger(hertzadapter.From(applog.Logger))
	if cfg.Logger.Level == "debug" {
		glog.SetLevel(glog.LevelDebug)
	} else {
		glog.SetLevel(glog.LevelInfo)
	}
}
