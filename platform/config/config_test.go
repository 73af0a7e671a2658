package config

import (
	"testing"
	"time"
)

func setAgentEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/agency")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("CORS_ORIGINS", "http://localhost:4200")
	t.Setenv("CORS_ALLOW_ALL", "false")
	for _, key := range []string{
		"AGENT_FUZZY_THRESHOLD", "AGENT_CANDIDATE_LIMIT", "AGENT_SUGGESTION_LIMIT",
		"AGENT_TOOL_TIMEOUT", "ASYNQ_CONCURRENCY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadAppliesAgentDefaults(t *testing.T) {
	setAgentEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GetFuzzyThreshold() != 0.3 || cfg.GetCandidateLimit() != 500 || cfg.GetSuggestionLimit() != 3 {
		t.Fatalf("unexpected agent defaults %+v", cfg)
	}
	if cfg.GetToolTimeout() != 20*time.Second || cfg.GetAsynqConcurrency() != 5 {
		t.Fatalf("unexpected timeout %s or concurrency %d", cfg.GetToolTimeout(), cfg.GetAsynqConcurrency())
	}
}

func TestLoadRejectsBadSettings(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
	}{
		{"no database", "DATABASE_URL", ""},
		{"no jwt secret", "JWT_ACCESS_SECRET", ""},
		{"threshold out of range", "AGENT_FUZZY_THRESHOLD", "1.5"},
		{"no candidates", "AGENT_CANDIDATE_LIMIT", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setAgentEnv(t)
			t.Setenv(tc.key, tc.val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected %s=%q to be rejected", tc.key, tc.val)
			}
		})
	}
}

func TestWildcardOriginConflictsWithCredentials(t *testing.T) {
	setAgentEnv(t)
	t.Setenv("CORS_ORIGINS", "*")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "true")
	if _, err := Load(); err == nil {
		t.Fatal("expected wildcard origins with credentials to be rejected")
	}
}

func TestToolServerDoesNotNeedJWT(t *testing.T) {
	setAgentEnv(t)
	t.Setenv("JWT_ACCESS_SECRET", "")
	if _, err := LoadToolServer(); err != nil {
		t.Fatalf("load tool server: %v", err)
	}
}

func TestUnknownTimezoneFallsBackToUTC(t *testing.T) {
	cfg := &Config{AgencyTimezone: "Mars/Olympus_Mons"}
	if cfg.GetAgencyLocation() != time.UTC {
		t.Fatalf("expected UTC, got %s", cfg.GetAgencyLocation())
	}
}
