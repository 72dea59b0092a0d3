package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OptionFlow/pkg/model"
	"OptionFlow/pkg/monitor"
)

func componentStatus(mon *monitor.Monitor, name string) *monitor.HealthStatus {
	for _, status := range mon.GetAllStatus() {
		if status.Component == name {
			s := status
			return &s
		}
	}
	return nil
}

func TestPipelineEventHandlerUpdatesMonitor(t *testing.T) {
	mon := monitor.NewMonitor()
	handler := pipelineEventHandler(mon)

	payload, err := json.Marshal(model.PipelineEvent{
		RunID:      "run-1",
		Status:     model.RunStatusSucceeded,
		OutputRows: 42,
	})
	require.NoError(t, err)
	require.NoError(t, handler(payload))

	status := componentStatus(mon, "pipeline")
	require.NotNil(t, status)
	assert.Equal(t, "healthy", status.Status)
	assert.Contains(t, status.Message, "run-1")

	// 失败事件将组件置为不健康
	payload, err = json.Marshal(model.PipelineEvent{
		RunID:  "run-2",
		Status: model.RunStatusFailed,
		Error:  "输入数据不足",
	})
	require.NoError(t, err)
	require.NoError(t, handler(payload))

	status = componentStatus(mon, "pipeline")
	require.NotNil(t, status)
	assert.Equal(t, "unhealthy", status.Status)
	assert.Equal(t, "输入数据不足", status.Message)
}

func TestPipelineEventHandlerRejectsMalformedPayload(t *testing.T) {
	mon := monitor.NewMonitor()
	handler := pipelineEventHandler(mon)

	assert.Error(t, handler([]byte("{not json")))
	assert.Nil(t, componentStatus(mon, "pipeline"))
}
