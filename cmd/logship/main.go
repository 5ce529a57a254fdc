package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kerlexov/logstash-tcp-go-sdk/pkg/logger"
)

type options struct {
	configPath    string
	host          string
	port          int
	label         string
	maxRetries    int
	retryInterval time.Duration
	idleClose     time.Duration
	keepAlive     time.Duration
	idle          bool
	verbose       bool
	level         string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	dconf := logger.DefaultConfig()

	root := &cobra.Command{
		Use:           "logship",
		Short:         "Ship log lines to a logstash TCP input",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pflags := root.PersistentFlags()
	pflags.StringVarP(&opts.configPath, "config", "c", "",
		"Load configuration from `FILE`")
	pflags.StringVar(&opts.host, "host", dconf.Host,
		"logstash `HOST`")
	pflags.IntVar(&opts.port, "port", dconf.Port,
		"logstash TCP `PORT`")
	pflags.StringVar(&opts.label, "label", "",
		"value of the label field added to every record")
	pflags.IntVar(&opts.maxRetries, "max-retries", dconf.MaxRetries,
		"reconnect attempts before giving up")
	pflags.DurationVar(&opts.retryInterval, "retry-interval", dconf.RetryInterval,
		"time between reconnect attempts")
	pflags.DurationVar(&opts.idleClose, "idle-close", dconf.IdleClose,
		"close the connection after this long without records")
	pflags.DurationVar(&opts.keepAlive, "keepalive", dconf.KeepAlive,
		"TCP keep-alive period")
	pflags.BoolVar(&opts.idle, "idle", false,
		"do not connect until the first record")
	pflags.BoolVarP(&opts.verbose, "verbose", "v", false,
		"print transport debug output")
	pflags.StringVar(&opts.level, "level", string(logger.LogLevelInfo),
		"`LEVEL` attached to shipped lines")

	root.AddCommand(newSendCmd(opts), newTailCmd(opts))
	return root
}

// buildConfig layers the config file, if any, under the flags the user set
// explicitly.
func (o *options) buildConfig(cmd *cobra.Command) (logger.Config, error) {
	config := logger.DefaultConfig()
	if o.configPath != "" {
		loaded, err := logger.LoadConfig(o.configPath)
		if err != nil {
			return config, err
		}
		config = loaded
	}

	flags := cmd.Flags()
	if o.configPath == "" || flags.Changed("host") {
		config.Host = o.host
	}
	if o.configPath == "" || flags.Changed("port") {
		config.Port = o.port
	}
	if flags.Changed("label") {
		config.Label = o.label
	}
	if o.configPath == "" || flags.Changed("max-retries") {
		config.MaxRetries = o.maxRetries
	}
	if o.configPath == "" || flags.Changed("retry-interval") {
		config.RetryInterval = o.retryInterval
	}
	if o.configPath == "" || flags.Changed("idle-close") {
		config.IdleClose = o.idleClose
	}
	if o.configPath == "" || flags.Changed("keepalive") {
		config.KeepAlive = o.keepAlive
	}
	if flags.Changed("idle") {
		config.Idle = o.idle
	}

	config.Logger = o.zapLogger()
	config.OnError = func(err error) {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
	}
	return config, nil
}

func (o *options) zapLogger() *zap.Logger {
	zconf := zap.NewProductionConfig()
	if o.verbose {
		zconf = zap.NewDevelopmentConfig()
		zconf.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	zl, err := zconf.Build()
	if err != nil {
		return zap.NewNop()
	}
	return zl
}

func (o *options) lineLevel() (logger.LogLevel, error) {
	switch l := logger.LogLevel(o.level); l {
	case logger.LogLevelDebug, logger.LogLevelInfo, logger.LogLevelWarn,
		logger.LogLevelError, logger.LogLevelFatal:
		return l, nil
	default:
		return "", fmt.Errorf("unknown level %q", o.level)
	}
}

func lineRecord(level logger.LogLevel, text string) logger.Record {
	return logger.Record{
		"level":     string(level),
		"message":   text,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
