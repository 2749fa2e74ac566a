package scraper

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/user/dashboard-scraper/internal/config"
	"github.com/user/dashboard-scraper/internal/domain"
	"github.com/user/dashboard-scraper/internal/monitoring"
	"github.com/user/dashboard-scraper/internal/storage"
)

// Service manages the worker pool and queued scrape tasks. Workers share
// one Scraper; each task runs against its own isolated page, so scrapes
// of different dashboards proceed in parallel without shared state.
type Service struct {
	config     *config.Config
	scraper    *Scraper
	redisStore *storage.RedisStore
	pgStore    *storage.PostgresStore
	metrics    *monitoring.Metrics
	logger     *zap.Logger
	taskQueue  chan domain.ScrapeTask
	stopChan   chan struct{}
	wg         sync.WaitGroup
}

func NewService(cfg *config.Config, sc *Scraper, rs *storage.RedisStore, ps *storage.PostgresStore, m *monitoring.Metrics, l *zap.Logger) *Service {
	return &Service{
		config:     cfg,
		scraper:    sc,
		redisStore: rs,
		pgStore:    ps,
		metrics:    m,
		logger:     l,
		taskQueue:  make(chan domain.ScrapeTask, cfg.ScrapeWorkers*2),
		stopChan:   make(chan struct{}),
	}
}

func (s *Service) Start() {
	for i := 0; i < s.config.ScrapeWorkers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
}

func (s *Service) Stop() {
	close(s.stopChan)
	close(s.taskQueue)
	s.wg.Wait()
}

func (s *Service) Submit(task domain.ScrapeTask) {
	s.taskQueue <- task
}

func (s *Service) worker() {
	defer s.wg.Done()
	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return // Channel closed
			}
			s.processTask(task)
		case <-s.stopChan:
			return
		}
	}
}

func (s *Service) processTask(task domain.ScrapeTask) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(s.config.ScrapeTimeoutSec)*time.Second)
	defer cancel()

	if !task.ForceScrape {
		isScraped, err := s.redisStore.IsRecentlyScraped(ctx, task.URL)
		if err != nil {
			s.logger.Error("failed to check redis for scraped status", zap.String("url", task.URL), zap.Error(err))
		}
		if isScraped {
			s.logger.Info("skipping recently scraped dashboard", zap.String("url", task.URL))
			return
		}
	}

	if err := s.pgStore.SetStatus(ctx, task.URL, "processing", ""); err != nil {
		s.logger.Error("failed to mark URL as processing", zap.String("url", task.URL), zap.Error(err))
	}

	start := time.Now()
	report, err := s.scraper.Scrape(ctx, task.URL)
	s.metrics.IncScrapesTotal()
	s.metrics.ScrapeDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		s.handleFailure(ctx, task.URL, err)
		return
	}

	s.metrics.TabsExplored.Add(float64(len(report.TabsExplored)))
	s.metrics.OcrCharacters.Add(float64(report.Summary.TotalOcrCharacters))

	if err := s.pgStore.SaveReport(ctx, task.URL, report); err != nil {
		s.logger.Error("error saving report", zap.String("url", task.URL), zap.Error(err))
		s.metrics.IncErrorsTotal("db_save_failed")
	} else {
		s.logger.Info("successfully scraped and saved dashboard", zap.String("url", task.URL))
		ttl := time.Duration(s.config.DeduplicationHrs) * time.Hour
		s.redisStore.MarkAsScraped(ctx, task.URL, ttl)
	}
}

func (s *Service) handleFailure(ctx context.Context, url string, scrapeErr error) {
	s.logger.Warn("failed to scrape dashboard", zap.String("url", url), zap.Error(scrapeErr))

	// An expired session cannot heal itself: retrying just burns browser
	// time until someone re-runs the interactive login setup.
	if errors.Is(scrapeErr, domain.ErrAuthenticationRequired) {
		s.metrics.IncErrorsTotal("auth_required")
		if err := s.pgStore.SetStatus(ctx, url, "failed", scrapeErr.Error()); err != nil {
			s.logger.Error("failed to mark URL as failed in db", zap.String("url", url), zap.Error(err))
		}
		return
	}
	if errors.Is(scrapeErr, domain.ErrNavigationTimeout) {
		s.metrics.IncErrorsTotal("nav_timeout")
	} else {
		s.metrics.IncErrorsTotal("scrape_failed")
	}

	retryCount, err := s.redisStore.IncrementRetryCount(ctx, url)
	if err != nil {
		s.logger.Error("failed to increment retry count", zap.String("url", url), zap.Error(err))
		return
	}

	if retryCount >= int64(s.config.MaxRetries) {
		s.logger.Error("max retries reached, marking as failed", zap.String("url", url))
		if err := s.pgStore.SetStatus(ctx, url, "failed", scrapeErr.Error()); err != nil {
			s.logger.Error("failed to mark URL as failed in db", zap.String("url", url), zap.Error(err))
		}
	} else {
		s.logger.Info("URL will be retried later", zap.String("url", url), zap.Int64("attempt", retryCount))
		// For a more robust retry, add it to a delayed queue (e.g., Redis ZSET)
	}
}
