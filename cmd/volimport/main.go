package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"OptionFlow/pkg/config"
	"OptionFlow/pkg/database"
	"OptionFlow/pkg/model"
)

// CSV列顺序: date,hv_10,hv_20,hv_30,hv_avg
func main() {
	fileFlag := flag.String("file", "", "波动率CSV文件路径")
	flag.Parse()

	if *fileFlag == "" {
		log.Fatalln("必须指定 -file 参数")
	}

	log.Println("启动波动率数据导入...")

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

	records, err := readVolatilityCSV(*fileFlag)
	if err != nil {
		log.Fatalf("读取CSV失败: %v", err)
	}

	if err := db.Volatility().SaveBatch(records); err != nil {
		log.Fatalf("写入波动率数据失败: %v", err)
	}

	log.Printf("导入完成: %d条记录", len(records))
}

// readVolatilityCSV 读取波动率CSV，跳过表头和无法解析的行
func readVolatilityCSV(path string) ([]model.VolatilityRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开文件失败: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 5

	var records []model.VolatilityRecord
	line := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("解析CSV失败: %w", err)
		}
		line++

		// 跳过表头
		if line == 1 && row[0] == "date" {
			continue
		}

		record, err := parseRow(row)
		if err != nil {
			log.Warnf("跳过第%d行: %v", line, err)
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

// parseRow 解析单行CSV记录
func parseRow(row []string) (model.VolatilityRecord, error) {
	date, err := time.ParseInLocation("2006-01-02", row[0], time.UTC)
	if err != nil {
		return model.VolatilityRecord{}, fmt.Errorf("解析日期失败: %w", err)
	}

	values := make([]float64, 4)
	for i, field := range row[1:] {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return model.VolatilityRecord{}, fmt.Errorf("解析数值失败: %w", err)
		}
		values[i] = v
	}

	return model.VolatilityRecord{
		QuoteDate: date,
		HV10:      values[0],
		HV20:      values[1],
		HV30:      values[2],
		HVAvg:     values[3],
	}, nil
}
