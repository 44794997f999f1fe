package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/nkiryanov/triply/internal/apperrors"
)

var errUnknownCommand = errors.New("unknown command")

func main() {
	// Initialize context that cancelled on SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		slog.Warn("Interrupt signal")
		cancel()
	}()

	if err := run(ctx, os.Getenv, os.Getwd, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, apperrors.UserMessage(err, err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, getenv func(string) string, getwd func() (string, error), args []string, out io.Writer) error {
	cfg := NewConfig()

	if err := cfg.LoadDotEnv(getwd); err != nil {
		return fmt.Errorf("error while loading .env file. Err: %w", err)
	}
	if err := cfg.LoadEnv(getenv); err != nil {
		return fmt.Errorf("error while loading environment. Err: %w", err)
	}
	rest, err := cfg.ParseFlags(args)
	switch {
	case errors.Is(err, pflag.ErrHelp):
		printUsage(out)
		return nil
	case err != nil:
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if len(rest) == 0 || rest[0] == "help" {
		printUsage(out)
		return nil
	}

	cmd, ok := findCommand(rest[0])
	if !ok {
		printUsage(out)
		return fmt.Errorf("%w: %s", errUnknownCommand, rest[0])
	}

	app, err := NewApp(ctx, cfg, out)
	if err != nil {
		return err
	}
	app.getenv = getenv
	defer app.Close()
	defer app.flushNotices()

	if cmd.auth {
		if err := app.requireSession(ctx); err != nil {
			return err
		}
	}

	err = cmd.run(ctx, app, rest[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	return err
}
