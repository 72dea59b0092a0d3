package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"OptionFlow/pkg/config"
	"OptionFlow/pkg/database"
	"OptionFlow/pkg/messaging"
	"OptionFlow/pkg/pipeline"
)

func main() {
	log.Println("启动分析流水线...")

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

	// 执行一次完整重建
	runner := pipeline.NewRunner(db, natsClient)
	run, err := runner.Run()
	if err != nil {
		log.Fatalf("流水线运行失败: %v", err)
	}

	log.Printf("重建完成: run=%s 输出=%d行", run.RunID, run.OutputRows)
}
