package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"

	"github.com/vnkhanh/survey-hub/config"
	"github.com/vnkhanh/survey-hub/controllers"
	"github.com/vnkhanh/survey-hub/database"
	"github.com/vnkhanh/survey-hub/exports"
	"github.com/vnkhanh/survey-hub/log"
	"github.com/vnkhanh/survey-hub/routes"
	"github.com/vnkhanh/survey-hub/services"
)

var noMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Run the HTTP server. Pending migrations are applied first unless
--no-migrate is given.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&noMigrate, "no-migrate", false, "do not apply pending migrations on start")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if !noMigrate {
		if err := database.Migrate(db, cfg.DBDriver); err != nil {
			return err
		}
	}

	store, err := newStore(cfg)
	if err != nil {
		return err
	}
	svc := services.New(db, store)
	defer svc.Wait()

	var google controllers.TokenValidator
	if cfg.GoogleClientID != "" {
		v, err := idtoken.NewValidator(ctx, option.WithHTTPClient(http.DefaultClient))
		if err != nil {
			return err
		}
		google = v
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	limiters := routes.NewLimiters(cfg)
	defer limiters.Stop()

	r := gin.New()
	if err := r.SetTrustedProxies(nil); err != nil {
		return err
	}
	if err := routes.SetupRoutes(r, cfg, svc, controllers.New(svc, cfg, sqlDB, google), limiters); err != nil {
		return err
	}

	sweeper, err := startSweeper(svc, cfg)
	if err != nil {
		return err
	}
	defer func() { <-sweeper.Stop().Done() }()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Infof("server listening on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newStore(cfg config.Config) (exports.Store, error) {
	if cfg.SupabaseEnabled() {
		log.Infof("export files go to supabase bucket %q", cfg.SupabaseBucket)
		return exports.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket), nil
	}
	log.Infof("export files go to %s", cfg.ExportDir)
	return exports.NewLocalStore(cfg.ExportDir)
}

// startSweeper removes expired export jobs on cfg.ExportSweepSchedule.
func startSweeper(svc *services.Service, cfg config.Config) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(cfg.ExportSweepSchedule, func() {
		n, err := svc.SweepExports(context.Background(), cfg.ExportRetention)
		if err != nil {
			log.WithError(err).Error("export sweep failed")
			return
		}
		if n > 0 {
			log.Infof("removed %d expired exports", n)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
