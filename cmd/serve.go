package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/ats-scorer/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scoring API over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", server.DefaultAddr, "listen address")

	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := newLogger()
	defer log.Sync()

	config, err := getConfig()
	if err != nil {
		log.Fatal("getting a config", zap.Error(err))
	}

	log.Info("starting the ats-scorer api", zap.String("version", resolveVersion()))

	svc, err := newService(ctx, config, log, false)
	if err != nil {
		log.Fatal("building scoring service", zap.Error(err))
	}

	if !viper.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := server.NewEngine(server.Options{
		Logger:      log,
		Scorer:      svc,
		Concurrency: config.Ranking.Concurrency,
	})

	if err := server.Run(ctx, config.Server.Addr, engine, log); err != nil {
		log.Fatal("serving", zap.Error(err))
	}
}
