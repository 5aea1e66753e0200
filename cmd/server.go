package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kheina-com/tagsvc/config"
	"github.com/kheina-com/tagsvc/internal/application/services"
	"github.com/kheina-com/tagsvc/internal/cache"
	pgxdb "github.com/kheina-com/tagsvc/internal/db/pgx"
	"github.com/kheina-com/tagsvc/internal/db/rdb"
	"github.com/kheina-com/tagsvc/internal/infrastructure/adapters"
	"github.com/kheina-com/tagsvc/internal/infrastructure/persistence"
	"github.com/kheina-com/tagsvc/internal/router"
	"github.com/kheina-com/tagsvc/pkg/logger"
)

func init() {
	rootCmd.AddGroup(&cobra.Group{ID: "serve", Title: "Serve:"})
	rootCmd.AddCommand(serveAPICmd)
}

var serveAPICmd = &cobra.Command{
	Use:     "server",
	Short:   "Start the tag service",
	GroupID: "serve",
	RunE: func(cmd *cobra.Command, args []string) error {
		SetupAll()

		tagger := buildTagger()
		r := router.NewFiberRouter(tagger)

		port := config.GetConfig().HttpServer.Port

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		localIP, _ := getLocalIP()
		go func() {
			logger.Log.Info(fmt.Sprintf("Starting server on port %d", port))
			logger.Log.Info(fmt.Sprintf("Local: http://localhost:%d", port))
			logger.Log.Info(fmt.Sprintf("Network: http://%s:%d", localIP, port))
			logger.Log.Info("waiting for requests...")

			if err := r.Listen(fmt.Sprintf(":%d", port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Log.Fatal(fmt.Sprintf("listen: %s\n", err))
			}
		}()

		<-ctx.Done()
		stop()
		fmt.Println("\nShutting down gracefully, press Ctrl+C again to force")

		if err := r.ShutdownWithTimeout(5 * time.Second); err != nil {
			fmt.Println(err)
		}

		pgxdb.Close()
		return nil
	},
}

// buildTagger wires every concrete collaborator (repository, caches,
// snapshot, directories, projection) into a Tagger instance.
func buildTagger() *services.Tagger {
	cfg := config.GetConfig()
	pool := pgxdb.GetPool()
	client := rdb.GetRedisClient()

	repo := persistence.NewPgTagRepository(pool)

	tagCache := cache.NewRedisTagCache(
		client,
		cfg.Tagger.TagCacheTTL,
		cfg.Tagger.PostCacheTTL,
		cfg.Tagger.UserCacheTTL,
		cfg.Tagger.FreqCacheTTL,
	)

	counters := cache.NewRedisCounterStore(client, repo.CountPublicPostsForTag, cfg.Tagger.CounterMaxRetries)

	snapshot := cache.NewTagSnapshot(cfg.Tagger.SnapshotTTL, repo.FetchAllTags)

	users := adapters.NewHTTPUserDirectory(cfg.External.UserServiceBaseURL, cfg.External.Timeout)
	posts := adapters.NewHTTPPostDirectory(cfg.External.PostServiceBaseURL, cfg.External.Timeout)

	projection := services.NewProjection(users, counters)

	limits := services.FrequentLimits{
		Misc:  cfg.Tagger.FrequentMiscLimit,
		Other: cfg.Tagger.FrequentGroupLimit,
	}

	return services.NewTagger(repo, tagCache, counters, snapshot, users, posts, projection, limits)
}

func getLocalIP() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", err
	}
	for _, addr := range addrs {
		if ipNet, ok := addr.(*net.IPNet); ok && !ipNet.IP.IsLoopback() {
			if ipNet.IP.To4() != nil {
				return ipNet.IP.String(), nil
			}
		}
	}
	return "", fmt.Errorf("local IP not found")
}
