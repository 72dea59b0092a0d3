package monitor

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// HealthStatus 组件健康状态
type HealthStatus struct {
	Component   string    `json:"component"`
	Status      string    `json:"status"`
	LastChecked time.Time `json:"last_checked"`
	Message     string    `json:"message,omitempty"`
}

// CheckFunc 组件健康检查函数，返回nil表示健康
type CheckFunc func() error

// Monitor 组件健康监控
type Monitor struct {
	components map[string]*HealthStatus
	checks     map[string]CheckFunc
	mutex      sync.RWMutex
	stopChan   chan struct{}
}

// NewMonitor 创建新的健康监控
func NewMonitor() *Monitor {
	return &Monitor{
		components: make(map[string]*HealthStatus),
		checks:     make(map[string]CheckFunc),
		stopChan:   make(chan struct{}),
	}
}

// RegisterCheck 注册组件健康检查
func (m *Monitor) RegisterCheck(component string, check CheckFunc) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.components[component] = &HealthStatus{
		Component:   component,
		Status:      "unknown",
		LastChecked: time.Now(),
	}
	m.checks[component] = check
}

// RunChecks 执行一轮全部健康检查
func (m *Monitor) RunChecks() {
	m.mutex.RLock()
	checks := make(map[string]CheckFunc, len(m.checks))
	for name, check := range m.checks {
		checks[name] = check
	}
	m.mutex.RUnlock()

	for name, check := range checks {
		if err := check(); err != nil {
			m.updateStatus(name, "unhealthy", err.Error())
		} else {
			m.updateStatus(name, "healthy", "")
		}
	}
}

// Start 启动周期性健康检查
func (m *Monitor) Start(interval time.Duration) {
	m.RunChecks()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.RunChecks()
			case <-m.stopChan:
				return
			}
		}
	}()
}

// Stop 停止周期性健康检查
func (m *Monitor) Stop() {
	close(m.stopChan)
}

// SetStatus 由外部事件直接更新组件状态，不经过注册的检查函数
func (m *Monitor) SetStatus(component, status, message string) {
	m.updateStatus(component, status, message)
}

// updateStatus 更新组件状态，状态恶化时记录告警日志
func (m *Monitor) updateStatus(component, status, message string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	entry, exists := m.components[component]
	if !exists {
		entry = &HealthStatus{Component: component}
		m.components[component] = entry
	}

	if entry.Status != status && status != "healthy" {
		log.Warnf("组件 %s 状态变为 %s: %s", component, status, message)
	}

	entry.Status = status
	entry.LastChecked = time.Now()
	entry.Message = message
}

// GetAllStatus 获取全部组件状态快照
func (m *Monitor) GetAllStatus() []HealthStatus {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	statuses := make([]HealthStatus, 0, len(m.components))
	for _, status := range m.components {
		statuses = append(statuses, *status)
	}
	return statuses
}

// Healthy 全部组件是否健康
func (m *Monitor) Healthy() bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, status := range m.components {
		if status.Status != "healthy" {
			return false
		}
	}
	return true
}
