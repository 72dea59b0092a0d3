package api

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"OptionFlow/pkg/database"
	"OptionFlow/pkg/model"
	"OptionFlow/pkg/monitor"
	"OptionFlow/pkg/pipeline"
)

// 查询参数使用的日期格式
const dateLayout = "2006-01-02"

// Handlers API处理程序
type Handlers struct {
	db      *database.Postgres
	runner  *pipeline.Runner
	monitor *monitor.Monitor
}

// NewHandlers 创建新的API处理程序
func NewHandlers(db *database.Postgres, runner *pipeline.Runner, mon *monitor.Monitor) *Handlers {
	return &Handlers{
		db:      db,
		runner:  runner,
		monitor: mon,
	}
}

// HealthCheck 健康检查处理程序
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// ReadinessCheck 就绪检查处理程序
func (h *Handlers) ReadinessCheck(c *gin.Context) {
	if !h.monitor.Healthy() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// GetAnalytics 查询分析行
func (h *Handlers) GetAnalytics(c *gin.Context) {
	filter := database.AnalyticsFilter{
		Limit: parseLimit(c, 100),
	}

	if v := c.Query("date"); v != "" {
		date, err := time.ParseInLocation(dateLayout, v, time.UTC)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date参数格式无效，应为YYYY-MM-DD"})
			return
		}
		filter.QuoteDate = &date
	}
	if v := c.Query("expiration"); v != "" {
		expiration, err := time.ParseInLocation(dateLayout, v, time.UTC)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "expiration参数格式无效，应为YYYY-MM-DD"})
			return
		}
		filter.Expiration = &expiration
	}
	if v := c.Query("strike"); v != "" {
		strike, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "strike参数格式无效"})
			return
		}
		filter.Strike = &strike
	}

	rows, err := h.db.Analytics().Query(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	sanitizeRows(rows)
	c.JSON(http.StatusOK, gin.H{
		"count": len(rows),
		"data":  rows,
	})
}

// GetAnalyticsDates 查询分析表中全部行情日
func (h *Handlers) GetAnalyticsDates(c *gin.Context) {
	dates, err := h.db.Analytics().DistinctDates()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	formatted := make([]string, 0, len(dates))
	for _, d := range dates {
		formatted = append(formatted, d.Format(dateLayout))
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(formatted),
		"data":  formatted,
	})
}

// GetOptions 查询原始行情
func (h *Handlers) GetOptions(c *gin.Context) {
	dateParam := c.Query("date")
	if dateParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date参数不能为空"})
		return
	}
	date, err := time.ParseInLocation(dateLayout, dateParam, time.UTC)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date参数格式无效，应为YYYY-MM-DD"})
		return
	}

	optType := c.Query("type")
	if optType != "" && optType != model.OptionTypeCall && optType != model.OptionTypePut {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type参数应为call或put"})
		return
	}

	quotes, err := h.db.Quote().GetByDate(date, optType, parseLimit(c, 500))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(quotes),
		"data":  quotes,
	})
}

// GetRuns 查询流水线运行历史
func (h *Handlers) GetRuns(c *gin.Context) {
	runs, err := h.db.Run().GetRecent(parseLimit(c, 20))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(runs),
		"data":  runs,
	})
}

// TriggerPipeline 触发一次分析表重建
func (h *Handlers) TriggerPipeline(c *gin.Context) {
	run, err := h.runner.Run()
	if err != nil {
		status := http.StatusInternalServerError
		if err == pipeline.ErrInsufficientInput {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{
			"error": err.Error(),
			"run":   run,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run": run,
	})
}

// GetStatus 查询组件健康状态与各表行数
func (h *Handlers) GetStatus(c *gin.Context) {
	tables := gin.H{}
	if count, err := h.db.Quote().Count(); err == nil {
		tables["option_quotes"] = count
	}
	if count, err := h.db.Volatility().Count(); err == nil {
		tables["volatility_records"] = count
	}
	if count, err := h.db.Analytics().Count(); err == nil {
		tables["option_analytics"] = count
	}

	c.JSON(http.StatusOK, gin.H{
		"components": h.monitor.GetAllStatus(),
		"tables":     tables,
	})
}

// parseLimit 解析limit参数，无效值回退默认
func parseLimit(c *gin.Context, def int) int {
	v := c.Query("limit")
	if v == "" {
		return def
	}
	limit, err := strconv.Atoi(v)
	if err != nil || limit <= 0 {
		return def
	}
	return limit
}

// sanitizeRows 将无法表示为JSON的±Inf比值置空
// 数据库中保留Infinity，HTTP层以null呈现
func sanitizeRows(rows []model.AnalyticalRow) {
	for i := range rows {
		r := &rows[i]
		for _, field := range []**float64{
			&r.StrikeDistancePct,
			&r.IVRatio,
			&r.TotalPCRatio,
			&r.TotalOIRatio,
			&r.ContractPCRatio,
			&r.ContractOIRatio,
		} {
			if *field != nil && math.IsInf(**field, 0) {
				*field = nil
			}
		}
	}
}
