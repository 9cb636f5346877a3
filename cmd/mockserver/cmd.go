package mockserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	ctrl "sigs.k8s.io/controller-runtime"

	"gradient-sdk/cmd/server"
	"gradient-sdk/conf"
	"gradient-sdk/mockapi"
	"gradient-sdk/mockapi/handler"
)

func NewMockServerCommand() *cobra.Command {
	opts := NewOption()
	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "In-memory experiments service for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Option = server.CommonOptions
			return run(ctrl.SetupSignalHandler(), opts, server.Config)
		},
	}
	opts.Bind(cmd.Flags())
	return cmd
}

// serverConfig: mock server configuration after command line overrides
func serverConfig(opts *MockServerOption, config *conf.Configuration) conf.MockServerConfig {
	c := config.MockServer
	if len(opts.Listen) > 0 {
		c.Listen = opts.Listen
	}
	if opts.RequireAPIKey && len(c.APIKey) == 0 {
		c.APIKey = config.APIKey
	}
	return c
}

func run(ctx context.Context, opts *MockServerOption, config *conf.Configuration) error {
	setupLog := ctrl.Log.WithName("setup")
	setupLog.Info(" === [initializing...] === ")
	setupLog.Info("options: " + opts.String())

	mockConfig := serverConfig(opts, config)
	if config.Logging.Level != "debug" && config.Logging.Level != "trace" {
		gin.SetMode(gin.ReleaseMode)
	}
	svr := &http.Server{
		Addr:    mockConfig.Listen,
		Handler: handler.InitRouter(mockConfig, mockapi.NewMemoryStore()),
	}
	setupLog.Info("starting mock server", "listen", mockConfig.Listen, "apiKeyRequired", len(mockConfig.APIKey) > 0)
	if err := serve(ctx, svr, setupLog); err != nil {
		setupLog.Error(err, "problem running mock server")
		return err
	}
	setupLog.Info(" === [terminated] === ")
	return nil
}

func serve(ctx context.Context, svr *http.Server, log logr.Logger) error {
	errCh := make(chan error, 1)
	// start HTTP Server
	go func() {
		if err := svr.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "failed to ListenAndServe")
			errCh <- err
		}
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return svr.Shutdown(shutdownCtx)
	}
}
