// Package publish 把定位事件发布到 MQTT (可选, 未配置 broker 时不启用)
package publish

import (
	"encoding/json"
	"fmt"
	"time"

	"palace-guide/config"
	"palace-guide/logger"
	"palace-guide/metrics"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// LocateEvent 一次建筑解析的结果
type LocateEvent struct {
	Source            string  `json:"source"` // locate / fix / identify
	SessionID         string  `json:"sessionId,omitempty"`
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
	Accuracy          float64 `json:"accuracy,omitempty"`
	BuildingID        string  `json:"buildingId,omitempty"`
	DistanceMeters    int     `json:"distanceMeters"`
	InsideManagedArea bool    `json:"insideManagedArea"`
	Timestamp         int64   `json:"timestamp"`
}

// EventPublisher 事件发布
type EventPublisher interface {
	PublishLocate(ev LocateEvent) error
}

// Nop 不发布任何事件
type Nop struct{}

// PublishLocate 丢弃事件
func (Nop) PublishLocate(LocateEvent) error { return nil }

// Publisher MQTT 发布者; QoS 0, 不保留
type Publisher struct {
	client  mqtt.Client
	topic   string
	qos     byte
	timeout time.Duration
}

// NewPublisher 使用已有客户端创建发布者
func NewPublisher(client mqtt.Client, topic string) *Publisher {
	return &Publisher{client: client, topic: topic, timeout: 2 * time.Second}
}

// Connect 按配置连接 broker; 连接在后台自动重试
func Connect(cfg config.MQTTConfig) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt broker not configured")
	}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		logger.L().Info("mqtt_connected", "broker", cfg.Broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.L().Warn("mqtt_connection_lost", "err", err)
	})

	client := mqtt.NewClient(opts)
	// SetConnectRetry 时 Connect 立即返回, 失败在后台重试
	client.Connect()
	return NewPublisher(client, cfg.Topic), nil
}

// PublishLocate 发布事件到 {topic}/{source}
func (p *Publisher) PublishLocate(ev LocateEvent) error {
	if p.client == nil || !p.client.IsConnected() {
		metrics.EventsPublishedTotal.WithLabelValues("disconnected").Inc()
		return fmt.Errorf("MQTT client not connected")
	}
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().UnixMilli()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshaling locate event: %w", err)
	}

	topic := p.topic + "/" + ev.Source
	token := p.client.Publish(topic, p.qos, false, payload)
	if !token.WaitTimeout(p.timeout) {
		metrics.EventsPublishedTotal.WithLabelValues("timeout").Inc()
		return fmt.Errorf("publishing to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		metrics.EventsPublishedTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	metrics.EventsPublishedTotal.WithLabelValues("ok").Inc()
	logger.L().Debug("mqtt_published", "topic", topic, "building", ev.BuildingID)
	return nil
}

// Close 断开连接
func (p *Publisher) Close() {
	if p.client != nil {
		p.client.Disconnect(250)
	}
}
