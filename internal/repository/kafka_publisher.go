package repository

import (
	"context"
	"time"

	"FXSignals/internal/domain/models"
	pkgkafka "FXSignals/pkg/kafka"
)

// SignalEvent is the message body published per refreshed signal.
type SignalEvent struct {
	Pair        string              `json:"pair"`
	Timeframe   string              `json:"timeframe"`
	Type        models.SignalType   `json:"type"`
	Confidence  int                 `json:"confidence"`
	Price       float64             `json:"price"`
	BuyLevel    float64             `json:"buyLevel"`
	StopLoss    float64             `json:"stopLoss"`
	TakeProfit  float64             `json:"takeProfit"`
	RiskReward  float64             `json:"riskReward"`
	Risk        models.RiskCategory `json:"riskCategory,omitempty"`
	Stale       bool                `json:"stale"`
	PublishedAt int64               `json:"publishedAt"`
}

// BatchPublisher is the subset of the Kafka producer used here.
type BatchPublisher interface {
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
	Close() error
}

// KafkaSignalPublisher publishes refreshed signals keyed by pair.
type KafkaSignalPublisher struct {
	producer BatchPublisher
	topic    string
	now      func() time.Time
}

func NewKafkaSignalPublisher(producer BatchPublisher, topic string) *KafkaSignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic, now: time.Now}
}

func (p *KafkaSignalPublisher) PublishSignals(ctx context.Context, signals []models.SignalResult) error {
	if len(signals) == 0 {
		return nil
	}
	ts := p.now().UnixMilli()
	msgs := make([]pkgkafka.Message, len(signals))
	for i, s := range signals {
		msgs[i] = pkgkafka.Message{
			Key: []byte(s.Pair),
			Value: SignalEvent{
				Pair:        s.Pair,
				Timeframe:   s.Timeframe,
				Type:        s.Type,
				Confidence:  s.Confidence,
				Price:       s.CurrentPrice,
				BuyLevel:    s.BuyLevel,
				StopLoss:    s.StopLoss,
				TakeProfit:  s.TakeProfit,
				RiskReward:  s.RiskReward,
				Risk:        s.RiskCategory,
				Stale:       s.Stale,
				PublishedAt: ts,
			},
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaSignalPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
