package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/evan/internal/scenario"
	"github.com/dshills/evan/internal/trace"
	"github.com/dshills/evan/internal/watch"
)

func newRunCommand(a *app) *cobra.Command {
	var watching bool

	cmd := &cobra.Command{
		Use:   "run <scenario>...",
		Short: "Run scenario files and check their expectations",
		Long: `Run loads each scenario file (.toml or .json), wires its subscriptions
into a fresh event space and executes its steps. The handler trace and
the result of every step are printed. The exit status is non-zero if any
expectation fails.

With --watch the scenarios are re-run whenever one of the files changes.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if watching {
				return a.watchScenarios(cmd.Context(), out, args)
			}
			return a.runScenarios(out, args)
		},
	}

	cmd.Flags().BoolVarP(&watching, "watch", "w", false, "re-run when a scenario file changes")
	cmd.Flags().Duration("debounce", 0, "quiet period before re-running in watch mode")
	cmd.Flags().Duration("script-timeout", 0, "time limit for each Lua handler call")
	_ = a.v.BindPFlag("watch.debounce", cmd.Flags().Lookup("debounce"))
	_ = a.v.BindPFlag("script.timeout", cmd.Flags().Lookup("script-timeout"))
	return cmd
}

func (a *app) runner() *scenario.Runner {
	timeout := a.cfg.Script.Timeout
	if timeout == 0 {
		timeout = -1
	}
	return &scenario.Runner{
		Logger:        a.logger,
		Recorder:      trace.NewRecorder(),
		ScriptTimeout: timeout,
		ScriptOutput:  a.logWriter(),
	}
}

// logWriter sends Lua print output to the logger at info level.
func (a *app) logWriter() io.Writer {
	return writerFunc(func(b []byte) (int, error) {
		a.logger.Info("lua", "output", strings.TrimRight(string(b), "\n"))
		return len(b), nil
	})
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(b []byte) (int, error) { return f(b) }

// runScenarios runs every file in order. It returns ErrScenariosFailed
// when any file failed to load or did not pass.
func (a *app) runScenarios(out io.Writer, files []string) error {
	p := a.newPrinter(out)
	runner := a.runner()

	failed := 0
	for _, file := range files {
		report, err := a.runFile(runner, file)
		if err != nil {
			failed++
			a.logger.Error("scenario error", "file", file, "error", err)
			if perr := p.Error(file, err); perr != nil {
				return perr
			}
			continue
		}
		if report.Failed() {
			failed++
		}
		if err := p.Report(report); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrScenariosFailed, failed, len(files))
	}
	return nil
}

func (a *app) runFile(runner *scenario.Runner, file string) (*scenario.Report, error) {
	sc, err := scenario.Load(file)
	if err != nil {
		return nil, err
	}
	return runner.Run(sc)
}

// watchScenarios runs the files once and again after every change until
// ctx is cancelled.
func (a *app) watchScenarios(ctx context.Context, out io.Writer, files []string) error {
	w, err := watch.New(watch.WithDelay(a.cfg.Watch.Debounce), watch.WithLogger(a.logger))
	if err != nil {
		return err
	}
	defer w.Close()

	for _, file := range files {
		if err := w.Add(file); err != nil {
			return err
		}
	}

	rerun := func() {
		err := a.runScenarios(out, files)
		if err != nil && !errors.Is(err, ErrScenariosFailed) {
			a.logger.Error("run failed", "error", err)
		}
		fmt.Fprintln(out, "watching for changes...")
	}

	rerun()
	err = w.Run(ctx, func(changed []string) {
		a.logger.Info("re-running", "changed", changed)
		fmt.Fprintf(out, "\nchanged: %s\n", strings.Join(changed, ", "))
		rerun()
	})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
