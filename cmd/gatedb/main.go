// Command gatedb is the CLI front end (spec §6.A-§6.F): a single SQL
// statement via -e, or an interactive multi-line REPL reading until a
// trailing semicolon, against a file-backed content store/ref map/WAL
// rooted at --data.
package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gatedb/gatedb/gate"
	"github.com/gatedb/gatedb/metrics"
	"github.com/gatedb/gatedb/planner"
	"github.com/gatedb/gatedb/refs"
	"github.com/gatedb/gatedb/runner"
	"github.com/gatedb/gatedb/store"
	"github.com/gatedb/gatedb/table"
	"github.com/gatedb/gatedb/wal"
)

var (
	dataDir     string
	execSQL     string
	logLevel    string
	metricsAddr string
	verbosity   string
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gatedb",
		Short: "gatedb is an event/gate-routed SQL database engine",
		RunE:  runRoot,
	}
	cmd.Flags().StringVar(&dataDir, "data", "./gatedb-data", "directory holding the content store, ref map, and WAL")
	cmd.Flags().StringVarP(&execSQL, "execute", "e", "", "run a single SQL statement and exit")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "zerolog level: debug, info, warn, error")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address (e.g. :9090)")
	cmd.Flags().StringVar(&verbosity, "log-verbosity", "events", "gate dispatch log detail: off, events, deep, data")
	return cmd
}

func runRoot(cmd *cobra.Command, args []string) error {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("log-level: %w", err)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().
		Str("session", uuid.NewString()).Logger()

	r, err := openRunner(log)
	if err != nil {
		return err
	}

	if metricsAddr != "" {
		metrics.GatesRegistered.Set(float64(gatesRegisteredCount))
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				log.Error().Err(err).Msg("metrics server exited")
			}
		}()
		log.Info().Str("addr", metricsAddr).Msg("metrics listening")
	}

	if execSQL != "" {
		return runStatement(r, log, execSQL)
	}
	return runREPL(r, log)
}

var gatesRegisteredCount int

func openRunner(log zerolog.Logger) (*runner.Runner, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	baseStore, err := store.NewFile(dataDir)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	baseRefs, err := refs.NewFile(dataDir)
	if err != nil {
		return nil, fmt.Errorf("refs: %w", err)
	}
	w, err := wal.New(dataDir, log.With().Str("component", "wal").Logger())
	if err != nil {
		return nil, fmt.Errorf("wal: %w", err)
	}

	reg := gate.NewRegistry()
	if err := table.Register(reg); err != nil {
		return nil, fmt.Errorf("register table gates: %w", err)
	}
	if err := planner.Register(reg); err != nil {
		return nil, fmt.Errorf("register planner gates: %w", err)
	}
	gatesRegisteredCount = reg.Len()

	r, err := runner.New(baseStore, baseRefs, w, reg, parseVerbosity(verbosity), log)
	if err != nil {
		return nil, fmt.Errorf("runner: %w", err)
	}
	return r, nil
}

// recordEventCounts feeds a finished Stream's per-type Emit tally into
// the gatedb_events_total counter.
func recordEventCounts(s *gate.Stream) {
	for typ, n := range s.EventCounts() {
		metrics.EventsTotal.WithLabelValues(typ).Add(float64(n))
	}
}

func parseVerbosity(v string) gate.Verbosity {
	switch strings.ToLower(v) {
	case "off":
		return gate.Off
	case "deep":
		return gate.Deep
	case "data":
		return gate.VerbosityData
	default:
		return gate.Events
	}
}

// runStatement runs one complete SQL statement through a fresh Stream
// and prints its pending events.
func runStatement(r *runner.Runner, log zerolog.Logger, sql string) error {
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
	return nil
}
