package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"krait/internal/trace"
)

// activeTracer is the tracer of the running command, Nop when disabled.
var activeTracer trace.Tracer = trace.Nop

type traceFlags struct {
	output    string
	level     trace.Level
	mode      trace.StorageMode
	ringSize  int
	heartbeat time.Duration
}

func readTraceFlags(cmd *cobra.Command) (traceFlags, error) {
	flags := cmd.Root().PersistentFlags()
	var (
		tf  traceFlags
		err error
	)
	if tf.output, err = flags.GetString("trace"); err != nil {
		return tf, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := flags.GetString("trace-level")
	if err != nil {
		return tf, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	modeStr, err := flags.GetString("trace-mode")
	if err != nil {
		return tf, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	if tf.ringSize, err = flags.GetInt("trace-ring-size"); err != nil {
		return tf, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	if tf.heartbeat, err = flags.GetDuration("trace-heartbeat"); err != nil {
		return tf, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}
	if tf.level, err = trace.ParseLevel(levelStr); err != nil {
		return tf, err
	}
	// --trace without a level means phase-level events
	if tf.level == trace.LevelOff && tf.output != "" {
		tf.level = trace.LevelPhase
	}
	if tf.mode, err = trace.ParseMode(modeStr); err != nil {
		return tf, err
	}
	return tf, nil
}

// setupTracing attaches a tracer configured from the root flags to the
// command context. The returned cleanup flushes and closes it.
func setupTracing(cmd *cobra.Command) (func(), error) {
	tf, err := readTraceFlags(cmd)
	if err != nil {
		return nil, err
	}
	if tf.level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}
	if tf.output == "" {
		tf.output = "-"
	}

	tracer, err := trace.New(trace.Config{
		Level:      tf.level,
		Mode:       tf.mode,
		OutputPath: tf.output,
		RingSize:   tf.ringSize,
		Heartbeat:  tf.heartbeat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	activeTracer = tracer

	var heartbeat *trace.Heartbeat
	if tf.heartbeat > 0 {
		heartbeat = trace.StartHeartbeat(tracer, tf.heartbeat)
	}
	return func() {
		if heartbeat != nil {
			heartbeat.Stop()
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
		activeTracer = trace.Nop
	}, nil
}

// dumpTraceTail writes the ring buffer of a `--trace-mode both` tracer to
// w. It runs when a command fails so the last events are visible even
// when the stream went to a file.
func dumpTraceTail(w io.Writer) {
	if _, isMulti := activeTracer.(*trace.MultiTracer); !isMulti {
		return
	}
	ring, ok := trace.RingOf(activeTracer)
	if !ok {
		return
	}
	fmt.Fprintln(w, "last trace events:")
	if err := ring.Dump(w, trace.FormatText); err != nil {
		fmt.Fprintf(w, "trace: dump error: %v\n", err)
	}
}
