package main

import (
	"flag"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"OptionFlow/pkg/collector"
	"OptionFlow/pkg/config"
	"OptionFlow/pkg/database"
	"OptionFlow/pkg/messaging"
)

func main() {
	var (
		startFlag  = flag.String("start", "", "起始日期 (YYYY-MM-DD)")
		endFlag    = flag.String("end", "", "结束日期 (YYYY-MM-DD)")
		symbolFlag = flag.String("symbol", "", "标的代码，默认取配置")
	)
	flag.Parse()

	log.Println("启动期权行情采集...")

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	symbol := cfg.DataSource.MarketData.Symbol
	if *symbolFlag != "" {
		symbol = *symbolFlag
	}

	start, end, err := parseDateRange(*startFlag, *endFlag)
	if err != nil {
		log.Fatalf("解析日期区间失败: %v", err)
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

	// 创建适配器与限速队列
	adapter := collector.NewOptionsAdapter(
		cfg.DataSource.MarketData.APIKey,
		cfg.DataSource.MarketData.BaseURL,
		symbol,
		cfg.DataSource.MarketData.Timeout,
	)
	queue := collector.NewThrottledQueue(cfg.DataSource.MarketData.RateLimit)

	var publisher collector.EventPublisher
	if natsClient != nil {
		publisher = natsClient
	}

	// 每个交易日一个任务，单日失败隔离，不中断整体回填
	days := collector.TradingDays(start, end)
	tasks := make([]collector.Task, 0, len(days))
	var totalInserted int64

	for _, day := range days {
		day := day
		tasks = append(tasks, collector.Task{
			Name: day.Format("2006-01-02"),
			Run: func() error {
				result, err := collector.IngestDay(adapter, db.Quote(), publisher, symbol, day)
				if err != nil {
					return err
				}
				totalInserted += result.Inserted
				return nil
			},
		})
	}

	failed := queue.RunAll(tasks)
	log.Printf("采集完成: 交易日=%d 失败=%d 新增=%d行", len(days), failed, totalInserted)
}

// parseDateRange 解析日期区间，缺省为最近30个日历日
func parseDateRange(startStr, endStr string) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -30)

	var err error
	if startStr != "" {
		start, err = time.ParseInLocation("2006-01-02", startStr, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if endStr != "" {
		end, err = time.ParseInLocation("2006-01-02", endStr, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return start, end, nil
}
