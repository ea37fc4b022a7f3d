package provider

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/sho-platform/sho-core/internal/config"
	"github.com/sho-platform/sho-core/pkg/dataprovider"
	"github.com/sho-platform/sho-core/pkg/logger"
)

const defaultSwitchTimeout = 30 * time.Second

// Service orchestrates per-organization provider configuration: resolution
// with environment fallback, validation, connection testing, the switch
// pipeline and provider instance caching.
type Service struct {
	store   *Store
	factory Factory
	probe   Probe
	audit   AuditSink
	metrics *Metrics
	log     *slog.Logger

	defaultCfg *Config // nil when no usable environment default exists
	defaultErr error   // remediation error explaining the missing default

	switchTimeout time.Duration

	mu          sync.Mutex
	instances   map[string]dataprovider.DataProvider
	switchLocks map[string]*sync.Mutex
}

func NewService(
	cfg *config.Config,
	db bun.IDB,
	store *Store,
	factory Factory,
	probe Probe,
	audit AuditSink,
	metrics *Metrics,
	log *slog.Logger,
) *Service {
	s := &Service{
		store:         store,
		factory:       factory,
		probe:         probe,
		audit:         audit,
		metrics:       metrics,
		log:           log.With(logger.Scope("provider.service")),
		switchTimeout: cfg.Provider.SwitchTimeout,
		instances:     make(map[string]dataprovider.DataProvider),
		switchLocks:   make(map[string]*sync.Mutex),
	}
	if s.switchTimeout <= 0 {
		s.switchTimeout = defaultSwitchTimeout
	}
	s.defaultCfg, s.defaultErr = buildDefaultConfig(&cfg.Provider, db)
	if s.defaultErr != nil {
		s.log.Warn("no usable default provider configuration", logger.Error(s.defaultErr))
	} else if s.defaultCfg == nil {
		s.log.Info("environment default provider disabled; organizations require an explicit override")
	}
	return s
}

// buildDefaultConfig assembles the environment fallback configuration.
// A malformed default is reported with an error naming the exact
// environment variables to set.
func buildDefaultConfig(pc *config.ProviderConfig, db bun.IDB) (*Config, error) {
	// An explicitly empty PROVIDER_DEFAULT_KIND disables the environment
	// fallback entirely; organizations without an override get
	// ConfigNotFoundError.
	if pc.DefaultKind == "" {
		return nil, nil
	}

	cache := CacheSettings{Enabled: pc.CacheEnabled, TTL: pc.CacheTTL}

	switch Kind(pc.DefaultKind) {
	case KindPostgres:
		return &Config{
			Kind:     KindPostgres,
			Postgres: &PostgresSettings{DB: db},
			Cache:    cache,
		}, nil
	case KindNotion:
		if pc.NotionAPIKey == "" {
			return nil, &ConfigValidationError{Violations: []FieldViolation{
				{Field: "notion.apiKey", Message: "default notion provider is incomplete: set NOTION_API_KEY"},
			}}
		}
		return &Config{
			Kind:   KindNotion,
			Notion: &NotionSettings{APIKey: pc.NotionAPIKey},
			Cache:  cache,
		}, nil
	case KindAirtable:
		if pc.AirtableAPIKey == "" || pc.AirtableBaseID == "" {
			return nil, &ConfigValidationError{Violations: []FieldViolation{
				{Field: "airtable", Message: "default airtable provider is incomplete: set AIRTABLE_API_KEY and AIRTABLE_BASE_ID"},
			}}
		}
		return &Config{
			Kind:     KindAirtable,
			Airtable: &AirtableSettings{APIKey: pc.AirtableAPIKey, BaseID: pc.AirtableBaseID},
			Cache:    cache,
		}, nil
	case KindSanity:
		if pc.SanityAPIURL == "" || pc.SanityProjectID == "" || pc.SanityToken == "" {
			return nil, &ConfigValidationError{Violations: []FieldViolation{
				{Field: "sanity", Message: "default sanity provider is incomplete: set SANITY_API_URL, SANITY_PROJECT_ID, SANITY_DATASET and SANITY_API_TOKEN"},
			}}
		}
		return &Config{
			Kind: KindSanity,
			Sanity: &SanitySettings{
				APIURL:    pc.SanityAPIURL,
				ProjectID: pc.SanityProjectID,
				Dataset:   pc.SanityDataset,
				Token:     pc.SanityToken,
			},
			Cache: cache,
		}, nil
	default:
		return nil, &ConfigValidationError{Violations: []FieldViolation{
			{Field: "kind", Message: "PROVIDER_DEFAULT_KIND must be one of postgres, notion, airtable, sanity"},
		}}
	}
}

// GetForOrganization resolves the effective configuration for an
// organization: its stored override when present, otherwise the
// environment default.
func (s *Service) GetForOrganization(_ context.Context, orgID string) (Config, error) {
	if cfg, ok := s.store.Get(orgID); ok {
		return cfg, nil
	}
	return s.getDefault(orgID)
}

// GetDefault returns the environment default configuration.
func (s *Service) GetDefault() (Config, error) {
	return s.getDefault("")
}

func (s *Service) getDefault(orgID string) (Config, error) {
	if s.defaultCfg == nil {
		if s.defaultErr != nil {
			return Config{}, s.defaultErr
		}
		return Config{}, &ConfigNotFoundError{OrgID: orgID}
	}
	return *s.defaultCfg, nil
}

// SaveForOrganization validates and stores an override for an
// organization, returning the identifier of the saved configuration.
// Saving never probes the backend; use TestConnection or SwitchProvider
// for that.
func (s *Service) SaveForOrganization(ctx context.Context, orgID string, cfg Config, actorID string) (string, error) {
	start := time.Now()

	if violations := validateSaveRequest(orgID, cfg); len(violations) > 0 {
		return "", &ConfigValidationError{Violations: violations}
	}
	if actorID == "" {
		return "", &ConfigUnauthorizedError{Operation: "save"}
	}

	configID := uuid.NewString()
	s.store.Set(orgID, cfg)
	s.dropInstance(orgID)

	s.recordAudit(ctx, AuditRecord{
		Action:    AuditActionSave,
		OrgID:     orgID,
		ActorID:   actorID,
		ConfigID:  configID,
		Kind:      cfg.Kind,
		Duration:  time.Since(start),
		Timestamp: time.Now(),
	})
	return configID, nil
}

func validateSaveRequest(orgID string, cfg Config) []FieldViolation {
	var violations []FieldViolation
	if orgID == "" {
		violations = append(violations, FieldViolation{Field: "organizationId", Message: "organizationId is required"})
	}
	return append(violations, Validate(cfg)...)
}

// TestConnection probes a candidate configuration without storing
// anything. It returns the probe latency alongside any failure.
func (s *Service) TestConnection(ctx context.Context, cfg Config) (time.Duration, error) {
	if violations := Validate(cfg); len(violations) > 0 {
		return 0, &ConfigValidationError{Violations: violations}
	}
	return s.probe.Run(ctx, cfg)
}

// SwitchProvider runs the full pipeline for changing an organization's
// backend: validate, test connectivity, save, invalidate the cached
// provider instance, audit. Each stage failure keeps the previous
// configuration fully intact. Concurrent switches for the same
// organization are serialized; the whole pipeline runs under the switch
// timeout.
func (s *Service) SwitchProvider(ctx context.Context, orgID string, cfg Config, actorID string) (string, error) {
	lock := s.switchLock(orgID)
	lock.Lock()
	defer lock.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.switchTimeout)
	defer cancel()

	start := time.Now()
	configID, err := s.runSwitch(ctx, orgID, cfg, actorID, start)
	elapsed := time.Since(start)

	outcome := "success"
	if err != nil {
		outcome = switchOutcome(err)
		s.log.Warn("provider switch failed",
			"orgId", orgID,
			"kind", string(cfg.Kind),
			"stage", outcome,
			"elapsedMs", elapsed.Milliseconds(),
			logger.Error(err))
	} else {
		s.log.Info("provider switched",
			"orgId", orgID,
			"kind", string(cfg.Kind),
			"configId", configID,
			"elapsedMs", elapsed.Milliseconds())
	}
	s.metrics.observeSwitch(outcome, cfg.Kind, elapsed)
	return configID, err
}

func (s *Service) runSwitch(ctx context.Context, orgID string, cfg Config, actorID string, start time.Time) (string, error) {
	if violations := validateSaveRequest(orgID, cfg); len(violations) > 0 {
		return "", &ConfigValidationError{Violations: violations}
	}
	if actorID == "" {
		return "", &ConfigUnauthorizedError{Operation: "switch"}
	}

	if _, err := s.probe.Run(ctx, cfg); err != nil {
		return "", err
	}

	configID := uuid.NewString()
	s.store.Set(orgID, cfg)
	s.dropInstance(orgID)

	s.recordAudit(ctx, AuditRecord{
		Action:    AuditActionSwitch,
		OrgID:     orgID,
		ActorID:   actorID,
		ConfigID:  configID,
		Kind:      cfg.Kind,
		Duration:  time.Since(start),
		Timestamp: time.Now(),
	})
	return configID, nil
}

// InitializeProvider returns a ready data provider for an organization,
// building and caching one on first use. The cached instance is dropped
// whenever the organization's configuration changes.
func (s *Service) InitializeProvider(ctx context.Context, orgID string) (dataprovider.DataProvider, error) {
	s.mu.Lock()
	if prov, ok := s.instances[orgID]; ok {
		s.mu.Unlock()
		return prov, nil
	}
	s.mu.Unlock()

	cfg, err := s.GetForOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	prov, err := s.factory.Build(cfg)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another goroutine may have built one in the meantime; keep the
	// first so every caller shares a single instance.
	if existing, ok := s.instances[orgID]; ok {
		return existing, nil
	}
	s.instances[orgID] = prov
	return prov, nil
}

// ClearOrganization removes an organization's override and drops its
// cached provider instance. Clearing an organization without an override
// is a no-op.
func (s *Service) ClearOrganization(ctx context.Context, orgID string, actorID string) {
	s.store.Clear(orgID)
	s.dropInstance(orgID)
	s.recordAudit(ctx, AuditRecord{
		Action:    AuditActionClear,
		OrgID:     orgID,
		ActorID:   actorID,
		Kind:      "",
		Timestamp: time.Now(),
	})
}

// ClearAll removes every override and cached instance.
func (s *Service) ClearAll() {
	s.store.ClearAll()
	s.mu.Lock()
	s.instances = make(map[string]dataprovider.DataProvider)
	s.mu.Unlock()
}

func (s *Service) dropInstance(orgID string) {
	s.mu.Lock()
	delete(s.instances, orgID)
	s.mu.Unlock()
}

func (s *Service) switchLock(orgID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.switchLocks[orgID]
	if !ok {
		lock = &sync.Mutex{}
		s.switchLocks[orgID] = lock
	}
	return lock
}

// recordAudit delivers a record best-effort: a failing sink is logged and
// never surfaces to the caller.
func (s *Service) recordAudit(ctx context.Context, rec AuditRecord) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, rec); err != nil {
		s.log.Warn("audit sink rejected record",
			"action", rec.Action,
			"orgId", rec.OrgID,
			logger.Error(err))
	}
}

func switchOutcome(err error) string {
	switch err.(type) {
	case *ConfigValidationError:
		return "validation_failed"
	case *ConfigUnauthorizedError:
		return "unauthorized"
	case *ConnectionTestError:
		return "test_failed"
	case *ProviderInitError:
		return "init_failed"
	case *ConfigSaveError:
		return "save_failed"
	default:
		return "error"
	}
}
