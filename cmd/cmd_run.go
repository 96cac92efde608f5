package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/questline/mint-console/common/errs"
	"github.com/questline/mint-console/internal/config"
	"github.com/questline/mint-console/modules/minter"
	"github.com/questline/mint-console/pkg/errorhandler"
	"github.com/questline/mint-console/pkg/logger"
	"github.com/questline/mint-console/pkg/logger/slogx"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// Register Modules
var Modules = do.Package(
	do.Lazy(minter.New),
)

func NewRunCommand() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Start the mint-console API server",
		RunE:  runHandler,
	}

	// Add local flags
	flags := runCmd.Flags()
	flags.Int("port", 8080, "Port to serve the API on")

	// Bind flags to configuration
	config.BindPFlag("http_server.port", flags.Lookup("port"))

	return runCmd
}

const shutdownTimeout = 60 * time.Second

func runHandler(cmd *cobra.Command, _ []string) error {
	conf := config.Load()

	// Validate inputs and configurations
	{
		if !conf.Network.IsSupported() {
			return errors.Wrapf(errs.Unsupported, "%q network is not supported", conf.Network.String())
		}
	}

	// Initialize application process context
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Add logger context
	ctx = logger.WithContext(ctx, slogx.Stringer("network", conf.Network))

	injector := do.New(Modules)
	do.ProvideValue(injector, conf)
	do.ProvideValue(injector, ctx)

	// Initialize HTTP server
	do.Provide(injector, func(i do.Injector) (*fiber.App, error) {
		app := fiber.New(fiber.Config{
			AppName:      "Mint Console",
			ErrorHandler: errorhandler.NewHTTPErrorHandler(),
		})
		app.
			Use(cors.New()).
			Use(requestid.New()).
			Use(fiberrecover.New(fiberrecover.Config{
				EnableStackTrace: true,
				StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
					buf := make([]byte, 1024)
					buf = buf[:runtime.Stack(buf, false)]
					logger.ErrorContext(c.UserContext(), "Something went wrong, panic in http handler", slogx.Any("panic", e), slogx.String("stacktrace", string(buf)))
				},
			}))

		// Health check
		app.Get("/", func(c *fiber.Ctx) error {
			return errors.WithStack(c.SendStatus(http.StatusOK))
		})

		return app, nil
	})

	// Initialize minter module (mounts the API per its configuration)
	if _, err := do.Invoke[*minter.Module](injector); err != nil {
		return errors.Wrap(err, "can't init minter module")
	}

	// Run API server
	httpServer := do.MustInvoke[*fiber.App](injector)
	go func() {
		// stop main process if API stopped
		defer stop()

		logger.InfoContext(ctx, "Started HTTP server", slogx.Int("port", conf.HTTPServer.Port))
		if err := httpServer.Listen(fmt.Sprintf(":%d", conf.HTTPServer.Port)); err != nil {
			logger.PanicContext(ctx, "Something went wrong, error during running HTTP server", slogx.Error(err))
		}
	}()

	logger.InfoContext(ctx, "Mint console started")

	// Wait for interrupt signal to gracefully stop the server
	<-ctx.Done()

	// Force shutdown if timeout exceeded or got signal again
	go func() {
		defer os.Exit(1)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		select {
		case <-ctx.Done():
			logger.FatalContext(ctx, "Received exit signal again. Force shutdown...")
		case <-time.After(shutdownTimeout + 15*time.Second):
			logger.FatalContext(ctx, "Shutdown timeout exceeded. Force shutdown...")
		}
	}()

	var group errgroup.Group
	group.Go(func() error {
		return errors.WithStack(httpServer.ShutdownWithTimeout(shutdownTimeout))
	})
	group.Go(func() error {
		return errors.WithStack(injector.Shutdown())
	})
	if err := group.Wait(); err != nil {
		logger.PanicContext(ctx, "Failed while gracefully shutting down", slogx.Error(err))
	}

	return nil
}
