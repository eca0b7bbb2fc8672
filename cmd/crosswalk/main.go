// Package main provides the crosswalk binary entry point.
// Crosswalk merges software metadata from CodeMeta and schema.org JSON-LD
// sources into one graph and writes it as framed JSON-LD or RDF.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/c360studio/crosswalk/crosswalk"
	"github.com/c360studio/crosswalk/export"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "crosswalk"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Software metadata crosswalk",
		Long: `Crosswalk merges software metadata from CodeMeta and schema.org JSON-LD
documents, and from HTML pages that embed them, into one graph.

It provides:
- Merging with singular-property precedence (later inputs win)
- Stable URIs for anonymous resources
- Framed, compacted JSON-LD around one root resource
- Turtle and N-Triples export
- A JetStream-backed document store`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.baseURI, "base-uri", "", "Base URI for generated resource URIs")
	cmd.PersistentFlags().StringVar(&opts.natsURL, "nats-url", "", "NATS server URL (empty = embedded server)")

	cmd.AddCommand(
		frameCmd(opts),
		mergeCmd(opts),
		exportCmd(opts),
		watchCmd(opts),
		storeCmd(opts),
		versionCmd(),
	)
	return cmd
}

// pipelineFlags are the flags of the commands that run the pipeline.
type pipelineFlags struct {
	root   string
	output string
	set    []string
}

func (f *pipelineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.root, "root", "", "Root resource id (default: detected)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringArrayVar(&f.set, "set", nil, "Set a root property, predicate=value (repeatable)")
}

func (f *pipelineFlags) request(inputs []string) (crosswalk.Request, error) {
	req := crosswalk.Request{Inputs: inputs, Root: f.root}
	for _, s := range f.set {
		a, err := crosswalk.ParseAssignment(s)
		if err != nil {
			return req, err
		}
		req.Set = append(req.Set, a)
	}
	return req, nil
}

// runPipeline builds the App and runs one request.
func runPipeline(cmd *cobra.Command, opts *globalOptions, flags *pipelineFlags, args []string, configure func(*crosswalk.Request)) error {
	app, err := NewApp(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer app.Close()

	req, err := flags.request(args)
	if err != nil {
		return err
	}
	configure(&req)

	_, err = app.Run(cmd.Context(), req, flags.output, cmd.OutOrStdout())
	return err
}

func frameCmd(opts *globalOptions) *cobra.Command {
	flags := &pipelineFlags{}
	cmd := &cobra.Command{
		Use:   "frame <input>...",
		Short: "Merge inputs and write framed JSON-LD",
		Long: `Frame merges the inputs in order and writes a nested JSON-LD document
around the root resource. Inputs are files or doublestar patterns.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, opts, flags, args, func(req *crosswalk.Request) {
				req.Format = export.FormatJSONLD
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func mergeCmd(opts *globalOptions) *cobra.Command {
	flags := &pipelineFlags{}
	var format string
	cmd := &cobra.Command{
		Use:   "merge <input>...",
		Short: "Merge descriptions of the same software",
		Long: `Merge treats every input as a description of the same software: the root
of each input is rewritten to --root (default: the root of the first input)
before merging, so facts from different manifests land on one resource.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := optionalFormat(format)
			if err != nil {
				return err
			}
			return runPipeline(cmd, opts, flags, args, func(req *crosswalk.Request) {
				req.Unify = true
				req.Format = f
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format (jsonld, turtle, ntriples)")
	return cmd
}

func exportCmd(opts *globalOptions) *cobra.Command {
	flags := &pipelineFlags{}
	var (
		format string
		flat   bool
	)
	cmd := &cobra.Command{
		Use:   "export <input>...",
		Short: "Merge inputs and write the graph as RDF",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := optionalFormat(format)
			if err != nil {
				return err
			}
			if f == "" && flags.output != "" {
				f, _ = export.FormatForPath(flags.output)
			}
			return runPipeline(cmd, opts, flags, args, func(req *crosswalk.Request) {
				req.Format = f
				req.Flat = flat
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format (jsonld, turtle, ntriples; default: from --output)")
	cmd.Flags().BoolVar(&flat, "flat", false, "Write JSON-LD as a flat @graph")
	return cmd
}

func optionalFormat(s string) (export.Format, error) {
	if s == "" {
		return "", nil
	}
	return export.ParseFormat(s)
}

func watchCmd(opts *globalOptions) *cobra.Command {
	flags := &pipelineFlags{}
	var (
		unify       bool
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Rebuild the output whenever inputs change",
		Long: `Watch builds the output once, then rebuilds it whenever a file matching
the configured watch.inputs patterns changes below dir (default: .).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runWatch(cmd, opts, flags, dir, unify, metricsAddr)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&unify, "unify", false, "Treat all inputs as descriptions of the root resource")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	return cmd
}

func runWatch(cmd *cobra.Command, opts *globalOptions, flags *pipelineFlags, dir string, unify bool, metricsAddr string) error {
	ctx := cmd.Context()
	app, err := NewApp(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer app.Close()

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve watch dir: %w", err)
	}
	patterns := app.cfg.Watch.Inputs
	inputs := make([]string, len(patterns))
	for i, p := range patterns {
		if !filepath.IsAbs(p) {
			p = filepath.Join(absDir, p)
		}
		inputs[i] = p
	}

	req, err := flags.request(inputs)
	if err != nil {
		return err
	}
	req.Unify = unify

	build := func(ctx context.Context) error {
		_, err := app.Run(ctx, req, flags.output, cmd.OutOrStdout())
		return err
	}
	if err := build(ctx); err != nil {
		// Keep watching: the inputs may be fixed or created later.
		app.logger.Error("Initial build failed", "error", err)
	}

	w, err := crosswalk.NewWatcher(absDir, patterns, app.cfg.Watch.Debounce,
		func(ctx context.Context, _ []string) error { return build(ctx) },
		app.logger)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if output := flags.output; output != "" {
		w.Ignore(output)
	} else if app.cfg.Output.Path != "" {
		w.Ignore(app.cfg.Output.Path)
	}

	if metricsAddr != "" {
		srv := &http.Server{
			Addr:              metricsAddr,
			Handler:           promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				app.logger.Error("Metrics server failed", "error", err)
			}
		}()
		defer srv.Close()
		app.logger.Info("Serving metrics", "addr", metricsAddr)
	}

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	<-w.Done()
	app.logger.Info("Watcher stopped",
		"rebuilds", w.Rebuilds(),
		"failures", w.Failures())
	return nil
}

func storeCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage documents in the JetStream document store",
	}
	cmd.AddCommand(
		storePutCmd(opts),
		storeGetCmd(opts),
		storeListCmd(opts),
		storeDeleteCmd(opts),
	)
	return cmd
}

func storePutCmd(opts *globalOptions) *cobra.Command {
	flags := &pipelineFlags{}
	cmd := &cobra.Command{
		Use:   "put <input>...",
		Short: "Merge inputs and store the graph under its root id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()

			req, err := flags.request(args)
			if err != nil {
				return err
			}
			req.Unify = true
			req.Format = export.FormatJSONLD

			res, err := app.engine.Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			store, err := app.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			ctx, cancel := app.storeContext(cmd.Context())
			defer cancel()
			rev, err := store.Put(ctx, res.RootID, res.Graph)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (revision %d)\n", res.RootID, rev)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.root, "root", "", "Root resource id (default: detected)")
	cmd.Flags().StringArrayVar(&flags.set, "set", nil, "Set a root property, predicate=value (repeatable)")
	return cmd
}

func storeGetCmd(opts *globalOptions) *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "get <root-id>",
		Short: "Read a stored graph and write it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()

			f, err := optionalFormat(format)
			if err != nil {
				return err
			}
			if f == "" {
				f = export.FormatJSONLD
			}

			store, err := app.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			ctx, cancel := app.storeContext(cmd.Context())
			defer cancel()
			g, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}

			emit := func(w io.Writer) error {
				if f != export.FormatJSONLD {
					return export.NewRDFExporter(app.engine.Vocabulary()).Export(w, g, f)
				}
				root, err := app.engine.Frame(g, args[0])
				if err != nil {
					return err
				}
				return export.WriteJSONLD(w, app.engine.Compact(root))
			}
			if output == "" {
				return emit(cmd.OutOrStdout())
			}
			return writeFile(output, emit)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format (jsonld, turtle, ntriples)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func storeListCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored root ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()

			store, err := app.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			ctx, cancel := app.storeContext(cmd.Context())
			defer cancel()
			ids, err := store.List(ctx)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func storeDeleteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <root-id>",
		Short: "Delete a stored graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()

			store, err := app.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			ctx, cancel := app.storeContext(cmd.Context())
			defer cancel()
			return store.Delete(ctx, args[0])
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	}
}
