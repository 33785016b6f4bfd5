package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/xraph/billing"
	"github.com/xraph/billing/export"
	"github.com/xraph/billing/id"
	"github.com/xraph/billing/internal/config"
	"github.com/xraph/billing/notify/email"
	"github.com/xraph/billing/notify/pubsub"
	"github.com/xraph/billing/store/driver"
)

// DateLayout is the format of date flags.
const DateLayout = "2006-01-02"

// run wraps fn so that it executes against a started engine that is
// stopped again when fn returns.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		if err := a.open(cmd); err != nil {
			return err
		}
		defer func() {
			if cerr := a.close(); err == nil {
				err = cerr
			}
		}()
		return fn(cmd, args)
	}
}

// open loads configuration and starts the engine.
func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	eng, closeFn, err := newEngine(cmd.Context(), cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if err := eng.Start(cmd.Context()); err != nil {
		_ = closeFn()
		return err
	}

	a.engine = eng
	a.close = closeFn
	return nil
}

// newEngine builds an engine from cfg. The returned function stops the
// engine and releases every resource opened for it.
func newEngine(ctx context.Context, cfg *config.Config, logOut io.Writer) (*billing.Engine, func() error, error) {
	logger := cfg.Log.NewLogger(logOut)

	s, err := driver.Open(ctx, cfg.Store)
	if err != nil {
		return nil, nil, err
	}

	var closers []io.Closer

	sink, sinkCloser, err := export.NewSink(ctx, cfg.Export)
	if err != nil {
		_ = s.Close()
		return nil, nil, err
	}
	if sinkCloser != nil {
		closers = append(closers, sinkCloser)
	}

	opts := []billing.Option{
		billing.WithLogger(logger),
		billing.WithDefaultDueIn(time.Duration(cfg.Billing.DueInDays) * 24 * time.Hour),
		billing.WithNotifyTimeout(cfg.Billing.NotifyTimeout),
		billing.WithExporter(export.NewExporter(sink, export.WithLogger(logger))),
	}
	if cfg.Billing.IDFormat == "timestamp" {
		opts = append(opts, billing.WithIDGenerator(id.TimestampGenerator{}))
	}
	if cfg.Email.Enabled {
		opts = append(opts, billing.WithPlugin(email.NewSMTP(cfg.Email.Config, email.WithLogger(logger))))
	}
	if cfg.PubSub.Topic != "" {
		pub, err := pubsub.Dial(ctx, cfg.PubSub)
		if err != nil {
			for _, c := range closers {
				_ = c.Close()
			}
			_ = s.Close()
			return nil, nil, err
		}
		closers = append(closers, pub)
		opts = append(opts, billing.WithPlugin(pubsub.New(pub, pubsub.WithLogger(logger))))
	}

	eng := billing.New(s, opts...)

	closeFn := func() error {
		var errs billing.MultiError
		errs.Add(eng.Stop())
		for _, c := range closers {
			errs.Add(c.Close())
		}
		return errs.ErrorOrNil()
	}
	return eng, closeFn, nil
}

func (a *app) printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// checkKind rejects a TypeID that names another record kind. Legacy and
// unparseable identifiers are looked up as given.
func checkKind(s string, want id.Prefix) error {
	p, err := id.Parse(s)
	if err != nil || p == want {
		return nil
	}
	return &billing.ValidationError{
		Fields:  []string{"id"},
		Message: fmt.Sprintf("%s is a %s identifier, want %s", s, p, want),
	}
}

func parseDate(flag, s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: want YYYY-MM-DD", flag, s)
	}
	return t, nil
}
