package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vijay-prabhu/jobmatch/internal/config"
	"github.com/vijay-prabhu/jobmatch/internal/database"
	"github.com/vijay-prabhu/jobmatch/internal/email/gmail"
	"github.com/vijay-prabhu/jobmatch/internal/logger"
	"github.com/vijay-prabhu/jobmatch/internal/match"
	"github.com/vijay-prabhu/jobmatch/internal/notify"
	"github.com/vijay-prabhu/jobmatch/internal/pgstore"
	"github.com/vijay-prabhu/jobmatch/internal/recommend"
	"github.com/vijay-prabhu/jobmatch/internal/source"
)

// store is what every command needs from a storage backend
type store interface {
	source.Store
	UpsertPosting(ctx context.Context, p *match.Posting) error
	UpsertProfile(ctx context.Context, p *match.Profile) error
	ListProfileIDs(ctx context.Context) ([]string, error)
	Health(ctx context.Context) error
}

var (
	_ store = (*database.DB)(nil)
	_ store = (*pgstore.Store)(nil)
)

// app bundles the configured dependencies of a command
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  store
	closer []func()
}

// newApp loads config, builds the logger and opens the configured store
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Logging.JSON || viper.GetBool("json-logs"), cfg.Logging.Debug || viper.GetBool("debug"))
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a := &app{cfg: cfg, logger: log}
	a.closer = append(a.closer, func() { _ = log.Sync() })

	s, err := openStore(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = s
	a.closer = append(a.closer, func() { s.Close() })

	log.Debug("store opened", zap.String("driver", cfg.Database.Driver))
	return a, nil
}

func openStore(ctx context.Context, cfg *config.Config) (store, error) {
	switch cfg.Database.Driver {
	case "postgres":
		s, err := pgstore.Open(ctx, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		return s, nil
	default:
		db, err := database.Open(cfg.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return db, nil
	}
}

// Close releases resources in reverse order of acquisition
func (a *app) Close() {
	for i := len(a.closer) - 1; i >= 0; i-- {
		a.closer[i]()
	}
}

// recommender builds the recommender, with a notification bridge when
// withNotify is set
func (a *app) recommender(ctx context.Context, withNotify bool, interactive bool, out io.Writer) (*recommend.Recommender, error) {
	scorer := match.NewScorer(a.cfg.Matching.Scorer())
	opts := []recommend.Option{recommend.WithLogger(a.logger)}

	if withNotify {
		transport, err := a.transport(ctx, interactive, out)
		if err != nil {
			return nil, err
		}
		bridge := notify.NewBridge(transport, a.cfg.Notify.Options(), a.logger)
		opts = append(opts, recommend.WithBridge(bridge))
	}

	return recommend.New(a.store, a.store, scorer, opts...), nil
}

// transport builds the configured notification transport
func (a *app) transport(ctx context.Context, interactive bool, out io.Writer) (notify.Transport, error) {
	n := a.cfg.Notify

	switch n.Transport {
	case "redis":
		client, err := notify.NewRedisClient(ctx, n.Redis.URL)
		if err != nil {
			return nil, err
		}
		a.closer = append(a.closer, func() { client.Close() })
		return notify.NewRedisTransport(client, n.Redis.Channel), nil
	case "gmail":
		sender, err := gmail.NewSender(ctx, gmail.Options{
			CredentialsPath: n.Gmail.CredentialsPath,
			TokenPath:       n.Gmail.TokenPath,
			From:            n.Gmail.From,
			To:              n.Gmail.To,
			Interactive:     interactive,
			Out:             out,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to set up gmail: %w", err)
		}
		return sender, nil
	default:
		return notify.NewLogTransport(a.logger), nil
	}
}

// rankOptions applies config defaults to command flags
func (a *app) rankOptions(filters source.PostingFilters, minScore float64, limit int) recommend.RankOptions {
	if minScore < 0 {
		minScore = a.cfg.Matching.MinScore
	}
	if limit < 0 {
		limit = a.cfg.Matching.Limit
	}
	return recommend.RankOptions{Filters: filters, MinScore: minScore, Limit: limit}
}
