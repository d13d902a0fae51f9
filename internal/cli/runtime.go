package cli

import (
	"context"
	"fmt"
	"os"

	"plbatch/internal/config"
	"plbatch/internal/engine"
	"plbatch/internal/ledger"
	"plbatch/internal/loader"
	"plbatch/internal/output"
	"plbatch/internal/store"
)

var cfg = config.New()

// batchRuntime bundles the collaborators every batch command needs: the
// ledger, the loader invoker, the output sinks, and (optionally) the store
// verification client.
type batchRuntime struct {
	ledger  *ledger.Ledger
	invoker loader.Invoker
	out     *output.Manager
	store   *store.Client
}

func setupRuntime(ctx context.Context, cfg *config.Config) (*batchRuntime, error) {
	led, err := ledger.Open(cfg.Output.LogRoot)
	if err != nil {
		return nil, err
	}

	inv, err := loader.NewExecInvoker(cfg.Loader.Path, cfg.Output.LogRoot)
	if err != nil {
		return nil, err
	}

	outMgr, err := setupOutputManager(cfg)
	if err != nil {
		return nil, err
	}

	rt := &batchRuntime{ledger: led, invoker: inv, out: outMgr}

	if cfg.Loader.VerifyStore {
		dsn, err := store.ResolveDSN(cfg.Loader.StoreDSN, cfg.Loader.EnvFile)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if dsn == "" {
			outMgr.Close()
			return nil, fmt.Errorf("--verify-store requires a store DSN (--store-dsn or %s)", store.DSNEnvVar)
		}
		client, err := store.Connect(ctx, dsn)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		rt.store = client
	}

	return rt, nil
}

func (rt *batchRuntime) close() {
	_ = rt.out.Close()
	if rt.store != nil {
		rt.store.Close()
	}
}

// sequencer builds a fresh sequencer instance. Each jurisdiction gets its own
// so fan-out instances share nothing mutable.
func (rt *batchRuntime) sequencer(cfg *config.Config) *engine.Sequencer {
	s := &engine.Sequencer{
		Invoker:  rt.invoker,
		Ledger:   rt.ledger,
		Out:      rt.out,
		Resume:   cfg.Runtime.Resume,
		Vintages: cfg.Targeting.Vintages,
		Levels:   cfg.Levels(),
		Tables:   cfg.Tables(),
		Exclude:  cfg.Plan.Exclude,
	}
	if rt.store != nil {
		s.Verify = rt.store.Verify
	}
	return s
}

func setupOutputManager(cfg *config.Config) (*output.Manager, error) {
	outMgr := output.NewManager()

	// Console Sink
	if !cfg.Output.NoConsole {
		if err := outMgr.AddSink(output.NewConsoleSink(nil, cfg.Output.ConsoleFormat, cfg.Output.ConsoleFilterOutcome, cfg.Runtime.Verbose)); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	// Emit Sinks (additional structured streams)
	for _, emit := range cfg.Output.Emit {
		es, err := output.NewEmitSink(os.Stdout, emit)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(es); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	// File Sink
	if cfg.Output.Out != "" {
		fs, err := output.NewFileSink(cfg.Output.Out, cfg.Output.OutFormat)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(fs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	// Report Sink
	if cfg.Output.Report != "" {
		rs, err := output.NewReportSink(cfg.Output.Report)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(rs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	return outMgr, nil
}

// finishRun closes the runtime and exits with the batch exit code.
func finishRun(rt *batchRuntime, results []*engine.RunResult, runErr error) {
	rt.close()
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
	}
	partial := false
	for _, res := range results {
		if res != nil && res.Status == engine.StatusPartialFailure {
			partial = true
		}
	}
	os.Exit(engine.ExitCodeForRun(runErr != nil, partial))
}

// fatal reports a setup error and exits with the fault code.
func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(engine.ExitFault)
}

// jurisdictionArgs resolves positional FIPS arguments, falling back to the
// configured targeting.
func jurisdictionArgs(args []string) ([]string, error) {
	if len(args) == 0 {
		return cfg.Jurisdictions(), nil
	}
	out := make([]string, 0, len(args))
	for _, arg := range args {
		fips, err := config.NormalizeFIPS(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, fips)
	}
	return out, nil
}
