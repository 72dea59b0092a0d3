package main

import (
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"OptionFlow/pkg/collector"
	"OptionFlow/pkg/config"
	"OptionFlow/pkg/database"
	"OptionFlow/pkg/messaging"
	"OptionFlow/pkg/pipeline"
	"OptionFlow/pkg/scheduler"
)

func main() {
	log.Println("启动调度服务...")

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 连接数据库
	db, err := database.NewPostgres(cfg)
	if err != nil {
		log.Fatalf("连接数据库失败: %v", err)
	}
	defer db.Close()

	// 连接NATS（可选）
	var natsClient *messaging.NATSClient
	if cfg.NATS.URL != "" {
		natsClient, err = messaging.NewNATSClient(cfg.NATS.URL)
		if err != nil {
			log.Warnf("连接NATS失败，事件发布禁用: %v", err)
		} else {
			defer natsClient.Close()
		}
	}

	// 创建采集组件与流水线执行器
	adapter := collector.NewOptionsAdapter(
		cfg.DataSource.MarketData.APIKey,
		cfg.DataSource.MarketData.BaseURL,
		cfg.DataSource.MarketData.Symbol,
		cfg.DataSource.MarketData.Timeout,
	)
	queue := collector.NewThrottledQueue(cfg.DataSource.MarketData.RateLimit)
	runner := pipeline.NewRunner(db, natsClient)

	var publisher collector.EventPublisher
	if natsClient != nil {
		publisher = natsClient
	}

	// 启动定时任务
	sched := scheduler.NewScheduler(adapter, queue, db, runner, publisher, cfg.DataSource.MarketData.Symbol)
	if err := sched.Start(cfg.Scheduler.Cron); err != nil {
		log.Fatalf("启动调度器失败: %v", err)
	}
	defer sched.Stop()

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("正在关闭调度服务...")
}
