package mq

import (
	"os"

	"credit-core/pkg/config"

	"github.com/redis/go-redis/v9"
)

// NewProducer picks the broker configured in redis.mq_type.
func NewProducer(cfg config.Config, rdb *redis.Client) Producer {
	if cfg.Redis.MQType == "kafka" {
		return NewKafkaProducer(cfg.Kafka.Brokers)
	}
	return NewRedisProducer(rdb)
}

// NewConsumer mirrors NewProducer for readers in consumer group group.
func NewConsumer(cfg config.Config, rdb *redis.Client, group string) Consumer {
	if cfg.Redis.MQType == "kafka" {
		return NewKafkaConsumer(cfg.Kafka.Brokers, group)
	}
	name, _ := os.Hostname()
	if name == "" {
		name = "credit-core"
	}
	return NewRedisConsumer(rdb, group, name)
}
