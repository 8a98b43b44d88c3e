package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_InvestigationConfig(t *testing.T) {
	// Setup environment variables
	os.Setenv("INVESTIGATION_MAX_SEARCH_GROUPS", "3")
	os.Setenv("INVESTIGATION_CALL_TIMEOUT", "10s")
	defer func() {
		os.Unsetenv("INVESTIGATION_MAX_SEARCH_GROUPS")
		os.Unsetenv("INVESTIGATION_CALL_TIMEOUT")
	}()

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, 3, cfg.Investigation.MaxSearchGroups)
	assert.Equal(t, 10*time.Second, cfg.Investigation.CallTimeout)
}

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("INVESTIGATION_MAX_SEARCH_GROUPS")
	os.Unsetenv("INVESTIGATION_CALL_TIMEOUT")
	os.Unsetenv("TAVILY_API_KEY")
	os.Unsetenv("OPENAI_MODEL")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, 7, cfg.Investigation.MaxSearchGroups)
	assert.Equal(t, 30*time.Second, cfg.Investigation.CallTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Investigation.ProgressTTL)
	assert.Equal(t, "", cfg.Tavily.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, "localhost:6379", cfg.Redis.RedisAddr())
}
