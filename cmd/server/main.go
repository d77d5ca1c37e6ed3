// Command server runs the apps and subscriptions API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/router-for-me/AppSubscriptions/internal/app"
	"github.com/router-for-me/AppSubscriptions/internal/config"

	log "github.com/sirupsen/logrus"
)

func main() {
	if errRun := run(context.Background(), os.Args[1:]); errRun != nil {
		log.WithError(errRun).Error("server exited")
		os.Exit(1)
	}
}

// run loads configuration from the -config file, or CONFIG_PATH, and serves until shutdown.
func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "config file path (or env CONFIG_PATH)")
	port := fs.Int("port", 0, "server port (overrides config and PORT)")
	if errParse := fs.Parse(args); errParse != nil {
		return errParse
	}
	if *port != 0 {
		if errValidate := validatePort(*port); errValidate != nil {
			return errValidate
		}
	}

	// A missing .env file is fine; real environment variables still apply.
	_ = godotenv.Load()

	var (
		cfg     config.Config
		errLoad error
	)
	if strings.TrimSpace(*cfgPath) != "" {
		cfg, errLoad = config.Load(*cfgPath)
	} else {
		cfg, errLoad = config.LoadFromEnv()
	}
	if errLoad != nil {
		return errLoad
	}
	return app.RunServer(ctx, cfg, *port)
}

func validatePort(port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port: %d", port)
	}
	return nil
}
