package services

import (
	"log/slog"
	"time"

	"github.com/cyberguard/awareness-service/internal/content"
	"github.com/cyberguard/awareness-service/internal/events"
	"github.com/cyberguard/awareness-service/internal/progress"
	"github.com/cyberguard/awareness-service/internal/repositories"
	"github.com/cyberguard/awareness-service/internal/validator"
)

// ServiceManager gives handlers access to every service
type ServiceManager interface {
	Progress() ProgressService
	Auth() AuthService // nil when no relational store is configured
	Report() ReportService
	Catalog() *content.Catalog
}

type ServiceManagerConfig struct {
	Catalog   *content.Catalog
	Store     progress.Store
	Options   progress.Options
	Repos     *repositories.Repositories // optional
	Publisher events.EventPublisher
	Logger    *slog.Logger
	Validator *validator.Validator
	JWTSecret string
	TokenTTL  time.Duration
}

type serviceManager struct {
	catalog  *content.Catalog
	progress ProgressService
	auth     AuthService
	report   ReportService
}

func NewServiceManager(cfg ServiceManagerConfig) ServiceManager {
	var scores repositories.ScoreRepository
	if cfg.Repos != nil {
		scores = cfg.Repos.Scores
	}

	progressService := NewProgressService(ProgressServiceConfig{
		Engine:    progress.NewEngine(cfg.Catalog, cfg.Options),
		Store:     cfg.Store,
		Scores:    scores,
		Publisher: cfg.Publisher,
		Logger:    cfg.Logger,
	})

	sm := &serviceManager{
		catalog:  cfg.Catalog,
		progress: progressService,
		report:   NewReportService(progressService, cfg.Catalog, scores, cfg.Logger),
	}

	if cfg.Repos != nil && cfg.Repos.Users != nil {
		sm.auth = NewAuthService(AuthServiceConfig{
			Users:     cfg.Repos.Users,
			Secret:    cfg.JWTSecret,
			TokenTTL:  cfg.TokenTTL,
			Logger:    cfg.Logger,
			Validator: cfg.Validator,
		})
	}
	return sm
}

func (sm *serviceManager) Progress() ProgressService { return sm.progress }
func (sm *serviceManager) Auth() AuthService         { return sm.auth }
func (sm *serviceManager) Report() ReportService     { return sm.report }
func (sm *serviceManager) Catalog() *content.Catalog { return sm.catalog }
