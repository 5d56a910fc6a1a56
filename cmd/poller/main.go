// Command poller watches a running board and raises reminders on this
// machine, deleting each task shortly after its alert is shown.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reminder-board/cache"
	"reminder-board/common"
	"reminder-board/component"
	"reminder-board/reminder"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	server      string
	interval    time.Duration
	deleteDelay time.Duration
	stateFile   string
	redisAddr   string
	noDesktop   bool
	logFile     string
	logLevel    string
}

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	opts := options{}
	cmd := &cobra.Command{
		Use:          "poller",
		Short:        "Raise reminders for tasks on a reminder board",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.interval <= 0 {
				return fmt.Errorf("--interval must be positive, got %s", opts.interval)
			}
			if opts.deleteDelay < 0 {
				return fmt.Errorf("--delete-delay must not be negative, got %s", opts.deleteDelay)
			}
			return run(cmd.Context(), opts, in, out)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.server, "server", "http://localhost:8080", "base URL of the board server")
	f.DurationVar(&opts.interval, "interval", component.ScanInterval, "time between scans")
	f.DurationVar(&opts.deleteDelay, "delete-delay", component.DeleteDelay, "wait after an alert before deleting the task")
	f.StringVar(&opts.stateFile, "state-file", "", "keep fired alerts in this JSON file across restarts")
	f.StringVar(&opts.redisAddr, "redis", "", "share fired alerts through this Redis server")
	f.BoolVar(&opts.noDesktop, "no-desktop", false, "never use desktop notifications")
	f.StringVar(&opts.logFile, "log-file", "", "also write logs to this rotating file")
	f.StringVar(&opts.logLevel, "log-level", "info", "log level")
	return cmd
}

func run(ctx context.Context, opts options, in io.Reader, out io.Writer) error {
	logger, err := common.InitLogger(opts.logFile, opts.logLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fired, closeFired, err := newFiredSet(ctx, opts)
	if err != nil {
		logger.Error("fired set unavailable", zap.Error(err))
		return err
	}
	defer closeFired()

	client := reminder.NewClient(opts.server, nil)
	alerts := reminder.NewChain(
		reminder.NewDesktopChannel(!opts.noDesktop),
		&reminder.BannerChannel{Out: out},
		&reminder.PromptChannel{In: in, Out: out},
	)
	p := reminder.NewPoller(client, client, fired, alerts, logger)
	p.Interval = opts.interval
	p.DeleteDelay = opts.deleteDelay

	if err := p.Start(ctx); err != nil {
		return err
	}
	logger.Info("poller is running",
		zap.String("server", opts.server),
		zap.Duration("interval", opts.interval),
		zap.Duration("delete_delay", opts.deleteDelay))

	<-ctx.Done()
	p.Stop()
	logger.Info("poller stopped")
	return nil
}

// newFiredSet prefers Redis, then a state file, then memory only.
func newFiredSet(ctx context.Context, opts options) (reminder.FiredSet, func(), error) {
	switch {
	case opts.redisAddr != "":
		client, err := cache.InitRedis(ctx, opts.redisAddr)
		if err != nil {
			return nil, nil, err
		}
		return reminder.NewRedisFiredSet(client, nil), func() { _ = client.Close() }, nil
	case opts.stateFile != "":
		return reminder.NewFileFiredSet(opts.stateFile, nil), func() {}, nil
	default:
		return reminder.NewMemoryFiredSet(nil), func() {}, nil
	}
}
