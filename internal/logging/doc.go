// Package logging provides structured, context-aware logging for strategist.
//
// It wraps zap with a custom Trace level, request and trace correlation
// pulled from context.Context, per-level sampling, and an encoder that
// redacts credentials before they reach any sink. Output goes to stderr so
// the CLI can print strategies on stdout, and can optionally be teed into an
// OpenTelemetry log provider through otelzap.
//
// Typical setup:
//
//	cfg, err := logging.FromSettings(settings.Logging)
//	if err != nil {
//		return err
//	}
//	logger, err := logging.NewLogger(cfg, nil)
//	if err != nil {
//		return err
//	}
//	defer logger.Sync()
//
//	ctx = logging.WithRequestID(ctx, id)
//	logger.Info(ctx, "strategy generated", zap.Int("length", len(text)))
//
// Components that only accept a *zap.Logger (vector store, embedder) take
// logger.Underlying().
//
// Tests use NewTestLogger, which records every entry for assertions.
package logging
