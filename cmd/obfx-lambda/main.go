// Lambda entry point for the obfuscation service. Requests follow the
// handler package's JSON format; failures are reported in the response
// body so the invocation itself never errors.
//
// Key material comes from AWS Secrets Manager when OBFUSCATOR_SECRET_NAME
// is set, otherwise from the OBFUSCATOR_KEY environment variable.
package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/hengadev/obfx"
	"github.com/hengadev/obfx/handler"
	s3store "github.com/hengadev/obfx/providers/s3"
	"github.com/hengadev/obfx/providers/secrets/awssm"
)

func main() {
	setupLogging()
	ctx := context.Background()

	store, err := s3store.New(ctx, s3store.Config{})
	if err != nil {
		slog.Error("failed to initialize object store", "error", err)
		os.Exit(1)
	}

	var keys obfx.KeySource = obfx.EnvKeySource{}
	if secretName := os.Getenv(obfx.EnvSecretName); secretName != "" {
		sm, err := awssm.New(ctx, awssm.Config{SecretName: secretName})
		if err != nil {
			slog.Error("failed to initialize secrets manager key source", "error", err)
			os.Exit(1)
		}
		keys = sm
	}

	h := &handler.Handler{Store: store, Keys: keys, Logger: slog.Default()}

	lambda.Start(func(ctx context.Context, req handler.Request) (handler.Response, error) {
		return h.HandleRequest(ctx, req), nil
	})
}

// setupLogging installs a JSON slog handler (CloudWatch-friendly) at the
// level named by LOG_LEVEL.
func setupLogging() {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv(obfx.EnvLogLevel)) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
