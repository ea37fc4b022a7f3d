package provider

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks a configuration against the rules of its declared kind.
// It is pure and total: it never probes the backend and it collects every
// violation instead of stopping at the first. A nil variant struct is
// treated as an empty one so each missing field is reported individually.
func Validate(cfg Config) []FieldViolation {
	switch cfg.Kind {
	case KindPostgres:
		return validatePostgres(cfg.Postgres)
	case KindNotion:
		return validateNotion(cfg.Notion)
	case KindAirtable:
		return validateAirtable(cfg.Airtable)
	case KindSanity:
		return validateSanity(cfg.Sanity)
	case "":
		return []FieldViolation{{Field: "kind", Message: "kind is required"}}
	default:
		return []FieldViolation{{Field: "kind", Message: fmt.Sprintf("unknown provider kind %q", cfg.Kind)}}
	}
}

func validatePostgres(s *PostgresSettings) []FieldViolation {
	if s == nil || s.DB == nil {
		return []FieldViolation{{Field: "postgres.db", Message: "database handle is required"}}
	}
	return nil
}

func validateNotion(s *NotionSettings) []FieldViolation {
	if s == nil {
		s = &NotionSettings{}
	}
	var out []FieldViolation
	switch {
	case s.APIKey == "":
		out = append(out, FieldViolation{Field: "notion.apiKey", Message: "apiKey is required"})
	case !strings.HasPrefix(s.APIKey, "secret_"):
		out = append(out, FieldViolation{Field: "notion.apiKey", Message: `apiKey must start with "secret_"`})
	case len(s.APIKey) < 30:
		out = append(out, FieldViolation{Field: "notion.apiKey", Message: "apiKey must be at least 30 characters"})
	}
	return out
}

func validateAirtable(s *AirtableSettings) []FieldViolation {
	if s == nil {
		s = &AirtableSettings{}
	}
	var out []FieldViolation
	switch {
	case s.APIKey == "":
		out = append(out, FieldViolation{Field: "airtable.apiKey", Message: "apiKey is required"})
	case !strings.HasPrefix(s.APIKey, "pat"):
		out = append(out, FieldViolation{Field: "airtable.apiKey", Message: `apiKey must start with "pat"`})
	case len(s.APIKey) < 17:
		out = append(out, FieldViolation{Field: "airtable.apiKey", Message: "apiKey must be at least 17 characters"})
	}
	switch {
	case s.BaseID == "":
		out = append(out, FieldViolation{Field: "airtable.baseId", Message: "baseId is required"})
	case !strings.HasPrefix(s.BaseID, "app"):
		out = append(out, FieldViolation{Field: "airtable.baseId", Message: `baseId must start with "app"`})
	}
	return out
}

func validateSanity(s *SanitySettings) []FieldViolation {
	if s == nil {
		s = &SanitySettings{}
	}
	var out []FieldViolation
	if s.APIURL == "" {
		out = append(out, FieldViolation{Field: "sanity.apiUrl", Message: "apiUrl is required"})
	} else if !isHTTPURL(s.APIURL) {
		out = append(out, FieldViolation{Field: "sanity.apiUrl", Message: "apiUrl must be an absolute http(s) URL"})
	}
	if s.ProjectID == "" {
		out = append(out, FieldViolation{Field: "sanity.projectId", Message: "projectId is required"})
	}
	if s.Dataset == "" {
		out = append(out, FieldViolation{Field: "sanity.dataset", Message: "dataset is required"})
	}
	switch {
	case s.Token == "":
		out = append(out, FieldViolation{Field: "sanity.token", Message: "token is required"})
	case !strings.HasPrefix(s.Token, "sk"):
		out = append(out, FieldViolation{Field: "sanity.token", Message: `token must start with "sk"`})
	case len(s.Token) < 20:
		out = append(out, FieldViolation{Field: "sanity.token", Message: "token must be at least 20 characters"})
	}
	return out
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
