package provider

import "time"

// ConfigRequest is the wire form of a provider configuration. The
// postgres variant carries no fields over the wire; its database handle
// is the server's own pool, attached when the request is decoded.
type ConfigRequest struct {
	Kind     string               `json:"kind"`
	Notion   *NotionSettingsDTO   `json:"notion,omitempty"`
	Airtable *AirtableSettingsDTO `json:"airtable,omitempty"`
	Sanity   *SanitySettingsDTO   `json:"sanity,omitempty"`

	CacheEnabled    bool `json:"cacheEnabled"`
	CacheTTLSeconds int  `json:"cacheTtlSeconds,omitempty"`
}

type NotionSettingsDTO struct {
	APIKey string `json:"apiKey"`
}

type AirtableSettingsDTO struct {
	APIKey string `json:"apiKey"`
	BaseID string `json:"baseId"`
}

type SanitySettingsDTO struct {
	APIURL    string `json:"apiUrl"`
	ProjectID string `json:"projectId"`
	Dataset   string `json:"dataset"`
	Token     string `json:"token"`
}

// ConfigResponse is the redacted view of an effective configuration.
// Credentials are masked; only enough is shown to recognize them.
type ConfigResponse struct {
	Kind     string               `json:"kind"`
	Notion   *NotionSettingsDTO   `json:"notion,omitempty"`
	Airtable *AirtableSettingsDTO `json:"airtable,omitempty"`
	Sanity   *SanitySettingsDTO   `json:"sanity,omitempty"`

	CacheEnabled    bool `json:"cacheEnabled"`
	CacheTTLSeconds int  `json:"cacheTtlSeconds,omitempty"`
}

// KindDTO describes one selectable backend kind.
type KindDTO struct {
	Kind        string `json:"kind"`
	Implemented bool   `json:"implemented"`
}

// SaveResponse reports the id of a stored configuration.
type SaveResponse struct {
	ConfigID string `json:"configId"`
	Kind     string `json:"kind"`
}

// TestResponse reports a connection probe result.
type TestResponse struct {
	Success   bool   `json:"success"`
	LatencyMs int64  `json:"latencyMs"`
	Kind      string `json:"kind"`
}

// redact masks a credential, keeping a short recognizable prefix.
func redact(v string) string {
	if len(v) <= 8 {
		return "********"
	}
	return v[:4] + "****" + v[len(v)-2:]
}

func toConfigResponse(cfg Config) ConfigResponse {
	out := ConfigResponse{
		Kind:         string(cfg.Kind),
		CacheEnabled: cfg.Cache.Enabled,
	}
	if cfg.Cache.TTL > 0 {
		out.CacheTTLSeconds = int(cfg.Cache.TTL / time.Second)
	}
	if cfg.Notion != nil {
		out.Notion = &NotionSettingsDTO{APIKey: redact(cfg.Notion.APIKey)}
	}
	if cfg.Airtable != nil {
		out.Airtable = &AirtableSettingsDTO{
			APIKey: redact(cfg.Airtable.APIKey),
			BaseID: cfg.Airtable.BaseID,
		}
	}
	if cfg.Sanity != nil {
		out.Sanity = &SanitySettingsDTO{
			APIURL:    cfg.Sanity.APIURL,
			ProjectID: cfg.Sanity.ProjectID,
			Dataset:   cfg.Sanity.Dataset,
			Token:     redact(cfg.Sanity.Token),
		}
	}
	return out
}
