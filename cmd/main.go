package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	_ "github.com/joho/godotenv/autoload"
	glog "github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"panelsmith/pkg/config"
	"panelsmith/pkg/server"
	"panelsmith/pkg/studio"
)

var (
	cfg *config.Config
	st  *studio.Studio
)

var rootCmd = &cobra.Command{
	Use:           "panelsmith",
	Short:         "Comic panel generation across Gemini and OpenAI-compatible providers",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configPath != "" {
			cfg, err = config.LoadFile(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return err
		}
		if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
			log.SetLevel(lvl)
		} else {
			log.Warn("unknown log level, using info", "level", cfg.LogLevel)
		}
		st = studio.New(cfg)
		log.Debug("providers ready", "plan", st.Orchestrator.Plan(), "hybrid", st.Registry.IsHybridEligible())
		return nil
	},
	RunE: serve,
}

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  serve,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default $PANELSMITH_CONFIG)")
	rootCmd.AddCommand(serveCmd, enhanceCmd, panelCmd, scriptCmd, storyCmd, validateCmd)
}

func serve(cmd *cobra.Command, _ []string) error {
	ctx, done := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer done()

	srv := server.NewServer(ctx, st)
	if log.GetLevel() <= log.DebugLevel {
		srv.Echo.Logger.SetLevel(glog.DEBUG)
	}

	finishedShutDown := make(chan struct{})
	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("shutdown failed", "error", err)
		}
		close(finishedShutDown)
	}()

	if err := srv.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		done()
		<-finishedShutDown
		return err
	}
	<-finishedShutDown
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
