package commands

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command: a small admin server exposing
// health and Prometheus metrics for scheduled pipeline deployments.
func NewServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the admin endpoints (health, metrics)",
		Example: `  hoopstat-pipeline serve --addr :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logrus.StandardLogger()

			router := mux.NewRouter()
			router.HandleFunc("/health", handleHealth).Methods(http.MethodGet)
			router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

			server := &http.Server{
				Addr:         addr,
				Handler:      router,
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 10 * time.Second,
			}

			logger.WithField("addr", addr).Info("Starting admin server")
			return server.ListenAndServe()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":9090", "listen address")
	return cmd
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
