package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

type Options struct {
	Development bool
	SentryDSN   string
	Environment string
	AppName     string
}

// Init installs the default slog logger: text at Debug in development, JSON
// at Info otherwise, with errors fanned out to Sentry when a DSN is set.
// The returned function flushes pending Sentry events.
func Init(opts Options) (flush func()) {
	return install(os.Stdout, opts)
}

func install(w io.Writer, opts Options) func() {
	flush := func() {}

	handlers := []slog.Handler{consoleHandler(w, opts.Development)}

	if opts.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              opts.SentryDSN,
			Environment:      opts.Environment,
			ServerName:       opts.AppName,
			TracesSampleRate: 1.0,
		})
		if err != nil {
			slog.New(handlers[0]).Warn("sentry disabled", "error", err)
		} else {
			handlers = append(handlers, slogsentry.Option{
				Level: slog.LevelError,
			}.NewSentryHandler())
			flush = func() { sentry.Flush(2 * time.Second) }
		}
	}

	handler := handlers[0]
	if len(handlers) > 1 {
		handler = slogmulti.Fanout(handlers...)
	}

	log := slog.New(handler)
	if opts.AppName != "" {
		log = log.With("app", opts.AppName)
	}
	slog.SetDefault(log)

	return flush
}

func consoleHandler(w io.Writer, development bool) slog.Handler {
	if development {
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
}
