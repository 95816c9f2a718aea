package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"registry/domain/config"
	"registry/interface/exporter"
	"registry/usecase"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Starts registry's tasks",
	Long: `Starts registry's tasks: periodic activation refresh of the configured
registrar's entities and the metrics endpoint. To stop it, run 'stop' command.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("start called.")

		defaultDependencyInject()
		exporter.Init()

		server := serveMetrics(config.GetMetricsAddress())

		var refreshTicker *time.Ticker
		if config.GetRegistrarAddress().IsZero() {
			log.Printf("⚠️ No registrar_address is configured, refresh is disabled.\n")
		} else {
			refreshTicker = schedule(refresh, config.GetRefreshInterval(), quit)
		}

		signal.Ignore()
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		s := <-stop
		log.Printf("Got signal '%v', stopping", s)

		if refreshTicker != nil {
			refreshTicker.Stop()
		}
		if server != nil {
			server.Shutdown(context.Background())
		}
	},
}

func schedule(task func(), interval time.Duration, done chan bool) *time.Ticker {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {

			case <-ticker.C:
				ticker.Stop()
				task()
				ticker.Reset(interval)

			case <-done:
				return
			}
		}
	}()
	return ticker
}

func serveMetrics(address string) *http.Server {
	if address == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: address, Handler: mux}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("❌ Metrics server stopped - %v\n", err.Error())
		}
	}()
	return server
}

func refresh() {
	registrar := config.GetRegistrarAddress()

	count, err := registryInteractor.Refresh(context.Background(), usecase.RefreshRequest{Registrar: registrar})
	if err != nil {
		fmt.Printf("❌ Refresh failed due to error: %v\n", err.Error())
		return
	}

	if err := memoInteractor.SetLastRefresh(registrar, time.Now().Unix(), count); err != nil {
		fmt.Printf("⚠️ Failed to remember the refresh - %v\n", err.Error())
	}
	fmt.Printf("🔵 Refreshed %v entities of %v\n", count, config.FormatAddress(registrar))
}

func init() {
	rootCmd.AddCommand(startCmd)
}
