package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	formflow "github.com/goliatone/go-formflow"
	"github.com/goliatone/go-formflow/internal/config"
	"github.com/goliatone/go-formflow/pkg/metrics"
	"github.com/goliatone/go-formflow/pkg/openapi"
	"github.com/goliatone/go-formflow/pkg/renderers/tui"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/transport/httpapi"
	"github.com/goliatone/go-formflow/pkg/workflow"
)

func loadModel(ctx context.Context, cfg *config.Config, location string) (*schema.Model, error) {
	if location == "" {
		return nil, errors.New("no schema given: pass -schema or set FORMFLOW_SCHEMA")
	}
	options := []schema.LoaderOption{schema.WithMaxBytes(cfg.Schema.MaxBytes)}
	if cfg.Schema.AllowHTTP {
		options = append(options, schema.WithHTTPFallback(30*time.Second))
	}
	src, err := formflow.SourceFromLocation(location)
	if err != nil {
		return nil, err
	}
	return formflow.LoadModel(ctx, src, options...)
}

func runTerminal(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	format := fs.String("format", string(tui.OutputFormatJSON), "output format: json or pretty")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, logger, err := common.load(stderr)
	if err != nil {
		return err
	}
	model, err := loadModel(ctx, cfg, cfg.Schema.Path)
	if err != nil {
		return err
	}
	sink, closeSink, err := newSubmitter(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSink()

	session, _, err := formflow.RunTerminal(ctx, model,
		[]workflow.Option{workflow.WithLogger(logger), workflow.WithSubmitter(sink)},
		tui.WithLogger(logger),
		tui.WithOutputFormat(tui.OutputFormat(*format)),
	)
	if err != nil {
		if errors.Is(err, tui.ErrAborted) {
			logger.Info().Msg("form abandoned")
			return nil
		}
		return err
	}
	out, err := session.Result()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, string(out))
	return err
}

func runServe(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	addr := fs.String("addr", "", "listen address (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, logger, err := common.load(stderr)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	model, err := loadModel(ctx, cfg, cfg.Schema.Path)
	if err != nil {
		return err
	}
	sink, closeSink, err := newSubmitter(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSink()

	options := []httpapi.Option{
		httpapi.WithLogger(logger),
		httpapi.WithSubmitter(sink),
		httpapi.WithMaxSessions(cfg.Server.MaxSessions),
	}
	if cfg.Metrics.Enabled {
		options = append(options, httpapi.WithMetrics(metrics.New(prometheus.NewRegistry())))
	}
	handler, err := formflow.NewHTTPHandler(model, options...)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Str("form", model.Title()).Msg("serving form sessions")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type violation struct {
	file    string
	path    string
	message string
}

// runValidate loads every given schema and reports all structural issues,
// sorted by file and location.
func runValidate(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, logger, err := common.load(stderr)
	if err != nil {
		return err
	}

	paths := fs.Args()
	if len(paths) == 0 && cfg.Schema.Path != "" {
		paths = []string{cfg.Schema.Path}
	}
	if len(paths) == 0 {
		return errors.New("no schema given")
	}

	var violations []violation
	for _, path := range paths {
		model, err := loadModel(ctx, cfg, path)
		if err != nil {
			schemaErr, ok := schema.AsError(err)
			if !ok {
				violations = append(violations, violation{file: path, message: err.Error()})
				continue
			}
			for _, issue := range schemaErr.Issues {
				violations = append(violations, violation{file: path, path: issue.Path, message: issue.Message})
			}
			continue
		}
		if err := openapi.ValidateSchema(ctx, model); err != nil {
			violations = append(violations, violation{file: path, path: "payload", message: err.Error()})
			continue
		}
		logger.Debug().Str("file", path).Int("steps", model.TotalSteps()).Msg("schema ok")
	}

	if len(violations) == 0 {
		_, err := fmt.Fprintf(stdout, "%d schema(s) ok\n", len(paths))
		return err
	}
	sort.Slice(violations, func(i, j int) bool {
		if violations[i].file == violations[j].file {
			if violations[i].path == violations[j].path {
				return violations[i].message < violations[j].message
			}
			return violations[i].path < violations[j].path
		}
		return violations[i].file < violations[j].file
	})
	for _, v := range violations {
		if v.path == "" {
			fmt.Fprintf(stderr, "%s: %s\n", v.file, v.message)
			continue
		}
		fmt.Fprintf(stderr, "%s: %s -> %s\n", v.file, v.path, v.message)
	}
	return fmt.Errorf("%d issue(s) found", len(violations))
}

func runOpenAPI(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("openapi", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	server := fs.String("server", "", "server URL added to the document")
	output := fs.String("output", "", "output file (stdout if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, _, err := common.load(stderr)
	if err != nil {
		return err
	}
	model, err := loadModel(ctx, cfg, cfg.Schema.Path)
	if err != nil {
		return err
	}

	var options []openapi.Option
	if *server != "" {
		options = append(options, openapi.WithServer(*server))
	}
	raw, err := openapi.MarshalJSON(openapi.Document(model, options...))
	if err != nil {
		return err
	}
	if *output != "" {
		if err := os.WriteFile(*output, raw, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}
	_, err = fmt.Fprintln(stdout, string(raw))
	return err
}
