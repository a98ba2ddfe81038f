package cmd

import (
	"context"
	"os/signal"
	"syscall"

	logging "github.com/KonishchevDmitry/go-easy-logging"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"podcastd/internal/store"
)

// newContext builds the root context of a command: signal-driven cancellation
// plus the configured logger.
func newContext(c *cli.Context) (context.Context, context.CancelFunc, error) {
	logger, err := newLogger(c.Bool("devel"))
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return logging.WithLogger(ctx, logger), cancel, nil
}

func newLogger(develMode bool) (*zap.SugaredLogger, error) {
	zapConfig := zap.NewProductionConfig()
	zapConfig.Encoding = "console"
	zapConfig.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	zapConfig.Sampling = nil

	if develMode {
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	return logger.Sugar(), nil
}

func openStore(ctx context.Context, path string) (*store.Store, error) {
	if err := store.Migrate(ctx, path); err != nil {
		return nil, err
	}
	return store.Open(path)
}

func closeStore(ctx context.Context, db *store.Store) {
	if err := db.Close(); err != nil {
		logging.L(ctx).Errorf("Failed to close the store: %s.", err)
	}
}
