package provider

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/sho-platform/sho-core/pkg/apperror"
	"github.com/sho-platform/sho-core/pkg/logger"
)

// actorHeader identifies the acting user on mutating requests.
const actorHeader = "X-Actor-ID"

// Handler handles HTTP requests for provider configuration
type Handler struct {
	svc *Service
	db  bun.IDB
	log *slog.Logger
}

// NewHandler creates a new provider configuration handler
func NewHandler(svc *Service, db bun.IDB, log *slog.Logger) *Handler {
	return &Handler{
		svc: svc,
		db:  db,
		log: log.With(logger.Scope("provider.handler")),
	}
}

// ListKinds handles GET /api/provider/kinds
func (h *Handler) ListKinds(c echo.Context) error {
	kinds := make([]KindDTO, 0, len(Kinds()))
	for _, k := range Kinds() {
		kinds = append(kinds, KindDTO{Kind: string(k), Implemented: k.Implemented()})
	}
	return c.JSON(http.StatusOK, kinds)
}

// GetConfig handles GET /api/orgs/:orgId/provider
// Returns the effective (override or default) configuration, redacted.
func (h *Handler) GetConfig(c echo.Context) error {
	orgID := c.Param("orgId")
	if orgID == "" {
		return apperror.NewBadRequest("organization id is required")
	}

	cfg, err := h.svc.GetForOrganization(c.Request().Context(), orgID)
	if err != nil {
		return h.toAppError(err)
	}
	return c.JSON(http.StatusOK, toConfigResponse(cfg))
}

// SaveConfig handles PUT /api/orgs/:orgId/provider
func (h *Handler) SaveConfig(c echo.Context) error {
	orgID := c.Param("orgId")
	if orgID == "" {
		return apperror.NewBadRequest("organization id is required")
	}

	var req ConfigRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	cfg := h.toConfig(req)
	actorID := c.Request().Header.Get(actorHeader)

	configID, err := h.svc.SaveForOrganization(c.Request().Context(), orgID, cfg, actorID)
	if err != nil {
		return h.toAppError(err)
	}
	return c.JSON(http.StatusOK, SaveResponse{ConfigID: configID, Kind: string(cfg.Kind)})
}

// TestConfig handles POST /api/provider/test
// Probes a candidate configuration without storing anything.
func (h *Handler) TestConfig(c echo.Context) error {
	var req ConfigRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	cfg := h.toConfig(req)
	elapsed, err := h.svc.TestConnection(c.Request().Context(), cfg)
	if err != nil {
		return h.toAppError(err)
	}
	return c.JSON(http.StatusOK, TestResponse{
		Success:   true,
		LatencyMs: elapsed.Milliseconds(),
		Kind:      string(cfg.Kind),
	})
}

// Switch handles POST /api/orgs/:orgId/provider/switch
func (h *Handler) Switch(c echo.Context) error {
	orgID := c.Param("orgId")
	if orgID == "" {
		return apperror.NewBadRequest("organization id is required")
	}

	var req ConfigRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	cfg := h.toConfig(req)
	actorID := c.Request().Header.Get(actorHeader)

	configID, err := h.svc.SwitchProvider(c.Request().Context(), orgID, cfg, actorID)
	if err != nil {
		return h.toAppError(err)
	}
	return c.JSON(http.StatusOK, SaveResponse{ConfigID: configID, Kind: string(cfg.Kind)})
}

// ClearConfig handles DELETE /api/orgs/:orgId/provider
// Removes the organization's override; it falls back to the default.
func (h *Handler) ClearConfig(c echo.Context) error {
	orgID := c.Param("orgId")
	if orgID == "" {
		return apperror.NewBadRequest("organization id is required")
	}

	h.svc.ClearOrganization(c.Request().Context(), orgID, c.Request().Header.Get(actorHeader))
	return c.NoContent(http.StatusNoContent)
}

// toConfig converts a wire request into a Config. The postgres variant
// gets the server's own database handle.
func (h *Handler) toConfig(req ConfigRequest) Config {
	cfg := Config{
		Kind: Kind(req.Kind),
		Cache: CacheSettings{
			Enabled: req.CacheEnabled,
			TTL:     time.Duration(req.CacheTTLSeconds) * time.Second,
		},
	}
	switch cfg.Kind {
	case KindPostgres:
		cfg.Postgres = &PostgresSettings{DB: h.db}
	case KindNotion:
		if req.Notion != nil {
			cfg.Notion = &NotionSettings{APIKey: req.Notion.APIKey}
		}
	case KindAirtable:
		if req.Airtable != nil {
			cfg.Airtable = &AirtableSettings{APIKey: req.Airtable.APIKey, BaseID: req.Airtable.BaseID}
		}
	case KindSanity:
		if req.Sanity != nil {
			cfg.Sanity = &SanitySettings{
				APIURL:    req.Sanity.APIURL,
				ProjectID: req.Sanity.ProjectID,
				Dataset:   req.Sanity.Dataset,
				Token:     req.Sanity.Token,
			}
		}
	}
	return cfg
}

// toAppError maps the typed config-layer errors onto the HTTP error
// envelope.
func (h *Handler) toAppError(err error) error {
	var validation *ConfigValidationError
	var notFound *ConfigNotFoundError
	var unauthorized *ConfigUnauthorizedError
	var testFailed *ConnectionTestError
	var initFailed *ProviderInitError
	var saveFailed *ConfigSaveError

	switch {
	case errors.As(err, &validation):
		return apperror.NewBadRequest(validation.Error()).
			WithDetails(map[string]interface{}{"violations": validation.Violations})
	case errors.As(err, &notFound):
		return apperror.ErrConfigNotFound.WithInternal(err)
	case errors.As(err, &unauthorized):
		return apperror.ErrUnauthorized.WithMessage(unauthorized.Error())
	case errors.As(err, &testFailed):
		return apperror.ErrConnectionTest.
			WithMessage(testFailed.Error()).
			WithDetails(map[string]interface{}{
				"kind":      string(testFailed.Kind),
				"elapsedMs": testFailed.Elapsed.Milliseconds(),
			}).
			WithInternal(err)
	case errors.As(err, &initFailed):
		return apperror.ErrProviderInit.WithMessage(initFailed.Error())
	case errors.As(err, &saveFailed):
		return apperror.NewInternal("saving provider configuration failed", err)
	default:
		return apperror.NewInternal("provider operation failed", err)
	}
}
