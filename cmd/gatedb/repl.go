package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"

	"github.com/gatedb/gatedb/gate"
	"github.com/gatedb/gatedb/metrics"
	"github.com/gatedb/gatedb/runner"
)

// runREPL reads statements interactively, accumulating lines until one
// ends in a semicolon (a bare blank-line Enter on an empty buffer does
// nothing), dispatches each through a fresh Stream, and prints whatever
// lands in Pending().
func runREPL(r *runner.Runner, log zerolog.Logger) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "gatedb> ",
		HistoryFile:     historyPath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	var buf strings.Builder
	for {
		prompt := "gatedb> "
		if buf.Len() > 0 {
			prompt = "     -> "
		}
		rl.SetPrompt(prompt)

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buf.Reset()
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" && buf.Len() == 0 {
			continue
		}

		buf.WriteString(line)
		buf.WriteString("\n")

		if trimmed == "" || !strings.HasSuffix(trimmed, ";") {
			continue
		}

		sql := strings.TrimSpace(buf.String())
		buf.Reset()
		if sql == "" {
			continue
		}
		runREPLStatement(r, log, sql)
	}
}

func runREPLStatement(r *runner.Runner, log zerolog.Logger, sql string) {
	s := r.NewStream()
	s.Emit(gate.New("sql", "sql", sql))
	recordEventCounts(s)

	outcome := "ok"
	for _, e := range s.Pending() {
		if e.Type == "error" {
			outcome = "error"
			printEvent(os.Stderr, e)
			continue
		}
		printEvent(os.Stdout, e)
	}
	metrics.StatementsTotal.WithLabelValues(outcome).Inc()
	log.Debug().Str("sql", sql).Int("events", s.EventCount()).Int("gates", s.GateCount()).Msg("statement processed")
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gatedb_history"
	}
	return home + "/.gatedb_history"
}
