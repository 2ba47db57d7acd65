package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/example/lingualisten/internal/assetcache"
	"github.com/example/lingualisten/internal/config"
	"github.com/example/lingualisten/internal/content"
	"github.com/example/lingualisten/internal/database"
	"github.com/example/lingualisten/internal/notify"
	"github.com/example/lingualisten/internal/scheduler"
	"github.com/example/lingualisten/internal/session"
	"github.com/jmoiron/sqlx"
)

// App holds the wired components shared by the commands
type App struct {
	Config *config.Config
	Log    *log.Logger

	DB         *sqlx.DB
	Records    *database.LearningRecordRepository
	Activity   *database.ActivityRepository
	Statistics *database.StatisticsRepository
	Cache      *database.CacheRepository

	Store  *content.Store
	Assets *assetcache.Cache
}

// NewApp connects the database and builds the content store. source
// overrides the configured content source when not nil.
func NewApp(cfg *config.Config, logger *log.Logger, source content.Source) (*App, error) {
	db, err := database.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:     cfg,
		Log:        logger,
		DB:         db,
		Records:    database.NewLearningRecordRepository(db),
		Activity:   database.NewActivityRepository(db),
		Statistics: database.NewStatisticsRepository(db),
		Cache:      database.NewCacheRepository(db),
	}

	reach := content.Reachability(content.AlwaysReachable)
	if source == nil && cfg.ContentSourceURL != "" {
		source, err = content.NewSource(cfg.ContentSourceURL, cfg.ContentFetchTimeout)
		if err != nil {
			db.Close()
			return nil, err
		}
		if content.IsRemote(source) && cfg.ReachabilityURL != "" {
			reach = content.NewHTTPProbe(cfg.ReachabilityURL)
		}
	}
	if source == nil {
		// cached content only
		source = content.SourceFunc(func(context.Context) ([]byte, error) {
			return nil, fmt.Errorf("CONTENT_SOURCE_URL is not set")
		})
		reach = content.ReachabilityFunc(func(context.Context) bool { return false })
	}

	app.Store = content.NewStore(content.Config{
		Source:       source,
		Reachability: reach,
		Persister:    app.Cache,
		FetchTimeout: cfg.ContentFetchTimeout,
		Logger:       logger.WithPrefix("content"),
	})

	app.Assets, err = assetcache.New(cfg.AssetCacheDir, cfg.AssetCacheMaxEntries, logger.WithPrefix("assets"))
	if err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

// Sessions returns a session manager over the app's store and repositories
func (a *App) Sessions() *session.Manager {
	return session.NewManager(a.Store, a.Records, a.Activity, session.Options{
		Size:     a.Config.SessionSize,
		DueAfter: a.Config.DueAfter,
		Logger:   a.Log.WithPrefix("session"),
	})
}

// Notifier returns the Telegram notifier when a bot token is configured and
// a log notifier otherwise
func (a *App) Notifier() (scheduler.Notifier, error) {
	if !a.Config.TelegramEnabled() {
		return &notify.LogNotifier{Logger: a.Log.WithPrefix("notify")}, nil
	}
	tg, err := notify.NewTelegramNotifier(a.Config.TelegramBotToken, a.Config.TelegramChatID, a.Log.WithPrefix("telegram"))
	if err != nil {
		return nil, err
	}
	return tg, nil
}

// Scheduler builds the background job scheduler
func (a *App) Scheduler(notifier scheduler.Notifier) *scheduler.Scheduler {
	return scheduler.New(scheduler.Config{
		RefreshInterval:   a.Config.ContentRefreshInterval,
		ReminderStartHour: a.Config.ReminderHourStart,
		ReminderEndHour:   a.Config.ReminderHourEnd,
		DueAfter:          a.Config.DueAfter,
		Logger:            a.Log.WithPrefix("scheduler"),
	}, a.Store, a.Statistics, notifier)
}

// Close releases all resources
func (a *App) Close() error {
	if a.Store != nil {
		a.Store.Close()
	}
	return a.DB.Close()
}
