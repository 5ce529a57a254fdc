package logger

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/kerlexov/logstash-tcp-go-sdk/pkg/buffer"
	"github.com/kerlexov/logstash-tcp-go-sdk/pkg/transform"
)

const (
	DefaultHost          = "localhost"
	DefaultPort          = 5000
	DefaultMaxRetries    = 30
	DefaultRetryInterval = 2 * time.Second
	DefaultIdleClose     = 3 * time.Second
	DefaultKeepAlive     = 30 * time.Second
	DefaultDialTimeout   = 5 * time.Second
	DefaultWriteTimeout  = 10 * time.Second
)

type Config struct {
	Host          string        `json:"host" yaml:"host"`
	Port          int           `json:"port" yaml:"port"`
	Label         string        `json:"label" yaml:"label"`
	MaxRetries    int           `json:"max_retries" yaml:"max_retries"`
	RetryInterval time.Duration `json:"retry_interval" yaml:"retry_interval"`
	IdleClose     time.Duration `json:"idle_close" yaml:"idle_close"`
	KeepAlive     time.Duration `json:"keepalive" yaml:"keepalive"`
	DialTimeout   time.Duration `json:"dial_timeout" yaml:"dial_timeout"`
	WriteTimeout  time.Duration `json:"write_timeout" yaml:"write_timeout"`

	// Idle defers the first connection until the first record arrives.
	Idle bool `json:"idle" yaml:"idle"`

	// MaxQueueSize caps the pending queue. Zero keeps it unbounded.
	MaxQueueSize int    `json:"max_queue_size" yaml:"max_queue_size"`
	QueuePolicy  string `json:"queue_policy" yaml:"queue_policy"`

	Transformer transform.Transformer `json:"-" yaml:"-"`
	Dialer      Dialer                `json:"-" yaml:"-"`
	Logger      *zap.Logger           `json:"-" yaml:"-"`

	// OnError receives the retry-exhaustion warning and records dropped
	// because they could not be encoded. It runs on the transport goroutine
	// and must not block.
	OnError func(error) `json:"-" yaml:"-"`

	// OnDelivered fires once per record after it was written to the socket.
	// Same constraints as OnError.
	OnDelivered func(Record) `json:"-" yaml:"-"`
}

func DefaultConfig() Config {
	return Config{
		Host:          DefaultHost,
		Port:          DefaultPort,
		MaxRetries:    DefaultMaxRetries,
		RetryInterval: DefaultRetryInterval,
		IdleClose:     DefaultIdleClose,
		KeepAlive:     DefaultKeepAlive,
		DialTimeout:   DefaultDialTimeout,
		WriteTimeout:  DefaultWriteTimeout,
	}
}

// Validate rejects negative values and fills every zero value with its
// default.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return ErrInvalidConfig(fmt.Sprintf("port %d out of range", c.Port))
	}
	if c.MaxRetries < 0 {
		return ErrInvalidConfig("max_retries must not be negative")
	}
	if c.RetryInterval < 0 || c.IdleClose < 0 || c.KeepAlive < 0 ||
		c.DialTimeout < 0 || c.WriteTimeout < 0 {
		return ErrInvalidConfig("durations must not be negative")
	}
	if c.MaxQueueSize < 0 {
		return ErrInvalidConfig("max_queue_size must not be negative")
	}
	if _, ok := buffer.ParseOverflow(c.QueuePolicy); !ok {
		return ErrInvalidConfig(fmt.Sprintf("unknown queue_policy %q", c.QueuePolicy))
	}

	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RetryInterval == 0 {
		c.RetryInterval = DefaultRetryInterval
	}
	if c.IdleClose == 0 {
		c.IdleClose = DefaultIdleClose
	}
	if c.KeepAlive == 0 {
		c.KeepAlive = DefaultKeepAlive
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = DefaultDialTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.Transformer == nil {
		c.Transformer = transform.JSONMerge
	}
	if c.Dialer == nil {
		c.Dialer = &net.Dialer{
			Timeout:   c.DialTimeout,
			KeepAlive: c.KeepAlive,
		}
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return nil
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
