package config

import (
	"crypto/tls"
	"time"

	"github.com/segmentio/kafka-go/sasl/plain"
)

type HttpApiConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
	Debug      bool   `mapstructure:"debug"`
}

type KafkaStorageConfig struct {
	DBDSN               string           // storage_dbdsn
	Topic               string           // storage_topic
	ConsumerGroup       string           // kafka_consumer_group
	TlsConfig           *tls.Config      // kafka_truststore_path
	ProducerCredentials *plain.Mechanism // producer_credentials
	ConsumerCredentials *plain.Mechanism // consumer_credentials
	Timeout             time.Duration

	IgnoredMessages    []string
	UseOffsetInsteadId bool
}

type Config struct {
	Username      string `mapstructure:"username"`
	StateDBDSN    string `mapstructure:"state_dbdsn"`
	KeyStoreDBDSN string `mapstructure:"key_store_dbdsn"`

	HttpApiConfig      *HttpApiConfig      `mapstructure:"http_api_config"`
	KafkaStorageConfig *KafkaStorageConfig `mapstructure:"kafka_storage_config"`
}
