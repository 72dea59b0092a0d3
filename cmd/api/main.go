package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"OptionFlow/pkg/api"
	"OptionFlow/pkg/config"
	"OptionFlow/pkg/database"
	"OptionFlow/pkg/messaging"
	"OptionFlow/pkg/model"
	"OptionFlow/pkg/monitor"
	"OptionFlow/pkg/pipeline"
)

func main() {
	log.Println("启动API服务...")

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

	// 注册组件健康检查
	mon := monitor.NewMonitor()
	mon.RegisterCheck("database", func() error {
		return db.Ping()
	})
	if natsClient != nil {
		mon.RegisterCheck("nats", func() error {
			if !natsClient.IsConnected() {
				return errNATSDisconnected
			}
			return nil
		})
	}
	mon.Start(5 * time.Minute)
	defer mon.Stop()

	// 订阅流水线完成事件，把最近一次重建结果纳入组件状态
	if natsClient != nil {
		err := natsClient.Subscribe(
			"PIPELINE_STREAM",
			"api-pipeline-watch",
			messaging.SubjectPipelineCompleted,
			pipelineEventHandler(mon),
		)
		if err != nil {
			log.Warnf("订阅流水线事件失败: %v", err)
		}
	}

	// 启动API服务器
	runner := pipeline.NewRunner(db, natsClient)
	handlers := api.NewHandlers(db, runner, mon)

	server := api.NewServer(cfg)
	server.SetupRoutes(handlers)
	server.Start()
}

// errNATSDisconnected NATS连接断开
var errNATSDisconnected = errors.New("NATS连接已断开")

// pipelineEventHandler 把流水线完成事件写入组件状态
func pipelineEventHandler(mon *monitor.Monitor) messaging.MessageHandler {
	return func(data []byte) error {
		var event model.PipelineEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return fmt.Errorf("解析流水线事件失败: %w", err)
		}

		message := fmt.Sprintf("run=%s 输出=%d行", event.RunID, event.OutputRows)
		if event.Status == model.RunStatusSucceeded {
			mon.SetStatus("pipeline", "healthy", message)
		} else {
			mon.SetStatus("pipeline", "unhealthy", event.Error)
		}
		return nil
	}
}
