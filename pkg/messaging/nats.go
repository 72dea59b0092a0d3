package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	log "github.com/sirupsen/logrus"
)

// 事件主题
const (
	SubjectIngestDay         = "ingest.day"
	SubjectPipelineCompleted = "pipeline.completed"
)

// NATSClient NATS JetStream客户端
type NATSClient struct {
	conn      *nats.Conn
	jetStream jetstream.JetStream
	ctx       context.Context
	cancel    context.CancelFunc
	consumers map[string]jetstream.Consumer
	mu        sync.RWMutex
}

// MessageHandler 通用消息处理函数类型
type MessageHandler func(data []byte) error

// NewNATSClient 创建新的NATS客户端
func NewNATSClient(natsURL string) (*NATSClient, error) {
	// 连接NATS
	nc, err := nats.Connect(natsURL,
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1), // 无限重连
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warnf("NATS连接断开: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Println("NATS重新连接成功")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("连接NATS失败: %w", err)
	}

	// 创建JetStream上下文
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("创建JetStream失败: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	client := &NATSClient{
		conn:      nc,
		jetStream: js,
		ctx:       ctx,
		cancel:    cancel,
		consumers: make(map[string]jetstream.Consumer),
	}

	// 初始化基础Streams
	if err := client.setupStreams(); err != nil {
		log.Warnf("设置Streams失败: %v", err)
	}

	return client, nil
}

// setupStreams 设置基础的Streams
func (c *NATSClient) setupStreams() error {
	streams := []jetstream.StreamConfig{
		{
			Name:        "INGEST_STREAM",
			Subjects:    []string{"ingest.*"},
			Description: "期权行情采集事件流",
			Retention:   jetstream.LimitsPolicy,
			MaxMsgs:     50000,
			MaxBytes:    50 * 1024 * 1024,   // 50MB
			MaxAge:      7 * 24 * time.Hour, // 保留7天
		},
		{
			Name:        "PIPELINE_STREAM",
			Subjects:    []string{"pipeline.*"},
			Description: "分析流水线运行事件流",
			Retention:   jetstream.LimitsPolicy,
			MaxMsgs:     10000,
			MaxBytes:    10 * 1024 * 1024,    // 10MB
			MaxAge:      30 * 24 * time.Hour, // 保留30天
		},
	}

	for _, streamConfig := range streams {
		_, err := c.jetStream.CreateOrUpdateStream(c.ctx, streamConfig)
		if err != nil {
			log.Warnf("创建/更新Stream %s 失败: %v", streamConfig.Name, err)
		}
	}

	return nil
}

// Publish 发布消息到指定主题
func (c *NATSClient) Publish(subject string, data interface{}) error {
	var payload []byte
	var err error

	switch v := data.(type) {
	case []byte:
		payload = v
	case string:
		payload = []byte(v)
	default:
		payload, err = json.Marshal(data)
		if err != nil {
			return fmt.Errorf("序列化数据失败: %w", err)
		}
	}

	_, err = c.jetStream.Publish(c.ctx, subject, payload)
	if err != nil {
		return fmt.Errorf("发布消息到 %s 失败: %w", subject, err)
	}

	return nil
}

// Subscribe 订阅指定主题的消息
func (c *NATSClient) Subscribe(streamName, consumerName, filterSubject string, handler MessageHandler) error {
	consumerConfig := jetstream.ConsumerConfig{
		Name:          consumerName,
		FilterSubject: filterSubject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverNewPolicy,
		ReplayPolicy:  jetstream.ReplayInstantPolicy,
	}

	consumer, err := c.jetStream.CreateOrUpdateConsumer(c.ctx, streamName, consumerConfig)
	if err != nil {
		return fmt.Errorf("创建消费者 %s 失败: %w", consumerName, err)
	}

	c.mu.Lock()
	c.consumers[consumerName] = consumer
	c.mu.Unlock()

	go c.consumeMessages(consumer, consumerName, handler)

	log.Printf("已订阅 %s (Stream: %s, Consumer: %s)", filterSubject, streamName, consumerName)
	return nil
}

// consumeMessages 消费消息的通用逻辑
func (c *NATSClient) consumeMessages(consumer jetstream.Consumer, consumerName string, handler MessageHandler) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("消费者 %s 异常退出: %v", consumerName, r)
		}
	}()

	iter, err := consumer.Messages(jetstream.PullMaxMessages(10))
	if err != nil {
		log.Errorf("获取 %s 消息迭代器失败: %v", consumerName, err)
		return
	}

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			msg, err := iter.Next()
			if err != nil {
				if err == jetstream.ErrNoMessages {
					continue
				}
				log.Warnf("获取 %s 消息失败: %v", consumerName, err)
				time.Sleep(1 * time.Second)
				continue
			}

			if err := handler(msg.Data()); err != nil {
				log.Warnf("消费者 %s 处理消息失败: %v", consumerName, err)
				msg.Nak()
			} else {
				msg.Ack()
			}
		}
	}
}

// IsConnected 检查连接状态
func (c *NATSClient) IsConnected() bool {
	return c.conn != nil && c.conn.IsConnected()
}

// Close 关闭连接
func (c *NATSClient) Close() error {
	c.cancel()

	c.mu.Lock()
	c.consumers = make(map[string]jetstream.Consumer)
	c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
	}

	return nil
}
