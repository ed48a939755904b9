package kafka_config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Enabled {
		t.Error("expected pipeline disabled by default")
	}
	if len(cfg.Brokers) != 1 || cfg.Brokers[0] != "localhost:9092" {
		t.Errorf("unexpected brokers: %v", cfg.Brokers)
	}
	if cfg.InputTopic != DefaultInputTopic || cfg.OutputTopic != DefaultOutputTopic {
		t.Errorf("unexpected topics: %s -> %s", cfg.InputTopic, cfg.OutputTopic)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv(EnvKafkaEnabled, "true")
	t.Setenv(EnvKafkaBrokers, " broker-1:9092 , broker-2:9092")
	t.Setenv(EnvKafkaInputTopic, "in")
	t.Setenv(EnvKafkaOutputTopic, "out")
	t.Setenv(EnvKafkaConsumerRetryBackoff, "1s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !cfg.Enabled {
		t.Error("expected pipeline enabled")
	}
	if cfg.Brokers[0] != "broker-1:9092" || cfg.Brokers[1] != "broker-2:9092" {
		t.Errorf("brokers not trimmed: %v", cfg.Brokers)
	}
	if cfg.ConsumerRetryBackoff != time.Second {
		t.Errorf("expected 1s backoff, got %s", cfg.ConsumerRetryBackoff)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid",
			mutate:  func(*Config) {},
			wantErr: "",
		},
		{
			name:    "empty broker",
			mutate:  func(c *Config) { c.Brokers = []string{""} },
			wantErr: "Broker 0 cannot be empty",
		},
		{
			name: "same input and output topic",
			mutate: func(c *Config) {
				c.Enabled = true
				c.OutputTopic = c.InputTopic
			},
			wantErr: "must differ",
		},
		{
			name:    "bad compression",
			mutate:  func(c *Config) { c.ProducerCompression = "brotli" },
			wantErr: "ProducerCompression",
		},
		{
			name:    "bad acks",
			mutate:  func(c *Config) { c.ProducerRequireAcks = 2 },
			wantErr: "ProducerRequireAcks",
		},
		{
			name:    "explicit offset",
			mutate:  func(c *Config) { c.ConsumerStartOffset = 42 },
			wantErr: "ConsumerStartOffset",
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.ConsumerMaxRetries = -1 },
			wantErr: "ConsumerMaxRetries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func validConfig() *Config {
	return &Config{
		Brokers:                   []string{"localhost:9092"},
		InputTopic:                DefaultInputTopic,
		OutputTopic:               DefaultOutputTopic,
		ConsumerGroup:             DefaultConsumerGroup,
		ProducerMaxAttempts:       DefaultProducerMaxAttempts,
		ProducerBatchTimeout:      DefaultProducerBatchTimeout,
		ProducerRequireAcks:       DefaultProducerRequireAcks,
		ProducerCompression:       DefaultProducerCompression,
		ConsumerStartOffset:       DefaultConsumerStartOffset,
		ConsumerMinBytes:          DefaultConsumerMinBytes,
		ConsumerMaxBytes:          DefaultConsumerMaxBytes,
		ConsumerMaxWait:           DefaultConsumerMaxWait,
		ConsumerCommitInterval:    DefaultConsumerCommitInterval,
		ConsumerHeartbeatInterval: DefaultConsumerHeartbeatInterval,
		ConsumerSessionTimeout:    DefaultConsumerSessionTimeout,
		ConsumerRebalanceTimeout:  DefaultConsumerRebalanceTimeout,
		ConsumerMaxRetries:        DefaultConsumerMaxRetries,
	}
}
