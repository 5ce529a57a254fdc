package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"

	"github.com/kerlexov/logstash-tcp-go-sdk/pkg/logger"
)

func newTailCmd(opts *options) *cobra.Command {
	var (
		path         string
		follow       bool
		flushTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Ship every line of a file, optionally following it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				return errors.New("--file is required")
			}
			return doTail(cmd, opts, path, follow, flushTimeout)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&path, "file", "f", "", "`FILE` to ship")
	flags.BoolVarP(&follow, "follow", "F", false,
		"keep reading appended lines until interrupted")
	flags.DurationVar(&flushTimeout, "flush-timeout", 10*time.Second,
		"how long to wait for queued records to be written on exit")
	return cmd
}

func doTail(cmd *cobra.Command, opts *options, path string, follow bool, flushTimeout time.Duration) error {
	level, err := opts.lineLevel()
	if err != nil {
		return err
	}
	config, err := opts.buildConfig(cmd)
	if err != nil {
		return err
	}

	tf, err := tail.TailFile(path, tail.Config{
		Follow:    follow,
		ReOpen:    follow,
		MustExist: true,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return err
	}
	defer tf.Cleanup()

	t, err := logger.NewTransport(config)
	if err != nil {
		tf.Stop()
		return err
	}
	defer t.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := shipLines(ctx, tf, t, level, path); err != nil {
		return err
	}

	fctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	return t.Flush(fctx)
}

func shipLines(ctx context.Context, tf *tail.Tail, sink logger.Sink, level logger.LogLevel, path string) error {
	defer tf.Stop()
	for {
		select {
		case line, ok := <-tf.Lines:
			if !ok {
				return tf.Wait()
			}
			if line.Err != nil {
				return line.Err
			}
			if line.Text == "" {
				continue
			}
			rec := lineRecord(level, line.Text)
			rec["file"] = path
			sink.Log(rec, nil)
		case <-ctx.Done():
			return nil
		}
	}
}
