package main

import (
	"bufio"
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/kerlexov/logstash-tcp-go-sdk/pkg/logger"
)

func newSendCmd(opts *options) *cobra.Command {
	var flushTimeout time.Duration

	cmd := &cobra.Command{
		Use:     "send [messages]",
		Aliases: []string{"s"},
		Short:   "Ship each argument, or each line of stdin, as a record",
		RunE: func(cmd *cobra.Command, args []string) error {
			return doSend(cmd, opts, args, flushTimeout)
		},
	}
	cmd.Flags().DurationVar(&flushTimeout, "flush-timeout", 10*time.Second,
		"how long to wait for queued records to be written")
	return cmd
}

func doSend(cmd *cobra.Command, opts *options, args []string, flushTimeout time.Duration) error {
	level, err := opts.lineLevel()
	if err != nil {
		return err
	}
	config, err := opts.buildConfig(cmd)
	if err != nil {
		return err
	}
	t, err := logger.NewTransport(config)
	if err != nil {
		return err
	}
	defer t.Close()

	for _, arg := range args {
		if len(arg) == 0 {
			continue
		}
		t.Log(lineRecord(level, arg), nil)
	}

	if len(args) == 0 {
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			if len(scanner.Bytes()) == 0 {
				continue
			}
			t.Log(lineRecord(level, scanner.Text()), nil)
		}
		if err := scanner.Err(); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), flushTimeout)
	defer cancel()
	return t.Flush(ctx)
}
