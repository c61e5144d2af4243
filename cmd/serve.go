package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rpupo63/company-rating-backend/api"
	"github.com/rpupo63/company-rating-backend/metrics"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the HTTP server",
	Example: `  company-ratings serve --log-level debug`,
	Args:    cobra.NoArgs,
	RunE:    runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	log.Info().Msg("Initializing app...")

	db, err := openDatabase(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("opening company store: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(ctx); err != nil {
			log.Error().Err(err).Msg("closing company store")
		}
	}()

	errChannel := make(chan error, 2)

	server, err := api.NewServer(cfg, db, metrics.New())
	if err != nil {
		return fmt.Errorf("initializing server: %w", err)
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(shutdownTimeout)
	return nil
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
