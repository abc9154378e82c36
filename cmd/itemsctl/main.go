package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cicd-lab/vercel-render/internal/cli"
	"github.com/cicd-lab/vercel-render/internal/config"
	"github.com/cicd-lab/vercel-render/internal/logger"
	"github.com/cicd-lab/vercel-render/internal/smoke"
	"github.com/cicd-lab/vercel-render/pkg/apiclient"
	"github.com/cicd-lab/vercel-render/pkg/httpclient"
	"github.com/spf13/pflag"
	"go.uber.org/zap/zapcore"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return cli.ExitError
	}

	root := pflag.NewFlagSet("itemsctl", pflag.ContinueOnError)
	root.SetInterspersed(false)
	url := root.String("url", cfg.APIURL, "backend base URL (default API_URL or "+apiclient.DefaultBaseURL+")")
	timeout := root.Duration("timeout", cfg.RequestTimeout, "per-request timeout")
	frontend := root.String("frontend", fmt.Sprintf("http://localhost:%d/", cfg.FrontendPort), "UI shell URL used by smoke")
	if err := root.Parse(args); err != nil {
		return cli.ExitUsage
	}

	// Client failures are logged to stderr so stdout stays valid JSON.
	encoderCfg := zapcore.EncoderConfig{
		MessageKey:  "msg",
		LevelKey:    "level",
		EncodeLevel: zapcore.CapitalLevelEncoder,
	}
	log := logger.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.Lock(os.Stderr),
		logger.ParseLevel(cfg.LogLevel),
	))

	client, err := apiclient.New(*url, apiclient.WithTimeout(*timeout), apiclient.WithLogger(log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "build client: %v\n", err)
		return cli.ExitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout+time.Second)
	defer cancel()

	prober := smoke.NewProber(httpclient.NewRestyClient(*timeout))
	runner := cli.NewRunner(client, os.Stdout, os.Stderr, cli.WithPageChecker(prober, *frontend))
	return runner.Run(ctx, root.Args())
}
