package main

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formflow/internal/config"
	"github.com/goliatone/go-formflow/pkg/submission"
)

// newSubmitter builds the configured sink. The returned close function is
// always safe to call.
func newSubmitter(cfg *config.Config, logger zerolog.Logger) (submission.Submitter, func(), error) {
	noop := func() {}
	switch cfg.Sink.Kind {
	case config.SinkSQLite:
		sink, err := submission.NewSQLiteSubmitter(cfg.Sink.SQLite.DSN,
			submission.WithSQLiteLogger(logger),
			submission.WithFormName(cfg.Sink.FormName),
		)
		if err != nil {
			return nil, noop, err
		}
		return sink, func() {
			if err := sink.Close(); err != nil {
				logger.Warn().Err(err).Msg("close sqlite sink")
			}
		}, nil
	case config.SinkHTTP:
		options := []submission.HTTPOption{
			submission.WithHTTPLogger(logger),
			submission.WithHTTPFormName(cfg.Sink.FormName),
			submission.WithHTTPClient(&http.Client{Timeout: cfg.Sink.HTTP.Timeout}),
		}
		for k, v := range cfg.Sink.HTTP.Headers {
			options = append(options, submission.WithHeader(k, v))
		}
		sink, err := submission.NewHTTPSubmitter(cfg.Sink.HTTP.URL, options...)
		if err != nil {
			return nil, noop, err
		}
		return sink, noop, nil
	case config.SinkLog:
		return submission.NewLogSubmitter(logger), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown sink %q", cfg.Sink.Kind)
	}
}
