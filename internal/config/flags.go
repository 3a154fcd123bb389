package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"

	"github.com/bibujohny/rentalAI/internal/utils"
)

const LDConnectionTimeout = 5 * time.Second

// FlagSource evaluates boolean feature flags.
type FlagSource interface {
	BoolVariation(key string, defaultVal bool) (bool, error)
	Close() error
}

type ldFlagSource struct {
	client *ld.LDClient
	ctx    ldcontext.Context
}

func (s *ldFlagSource) BoolVariation(key string, defaultVal bool) (bool, error) {
	return s.client.BoolVariation(key, s.ctx, defaultVal)
}

func (s *ldFlagSource) Close() error { return s.client.Close() }

// FlagProvider connects to LaunchDarkly. Tests replace it.
var FlagProvider = func(sdkKey, appName string) (FlagSource, error) {
	client, err := ld.MakeClient(sdkKey, LDConnectionTimeout)
	if err != nil {
		return nil, err
	}
	kind := getEnv("LD_CONTEXT_KIND", "service")
	return &ldFlagSource{
		client: client,
		ctx:    ldcontext.NewWithKind(ldcontext.Kind(kind), appName),
	}, nil
}

// loadFlags sets the LDFlag_ fields. Without LD_SDK_KEY the environment
// decides: insights on, demo seed unless SKIP_SEED, strict CORS in production.
func (c *Config) loadFlags() error {
	c.LDFlag_AIInsightsEnabled = true
	c.LDFlag_SeedDbWithDemoData = !c.SkipSeed
	c.LDFlag_CORSHighSecurity = c.IsProduction()

	sdkKey := strings.TrimSpace(os.Getenv("LD_SDK_KEY"))
	if sdkKey == "" {
		return nil
	}

	src, err := FlagProvider(sdkKey, c.AppName)
	if err != nil {
		return fmt.Errorf("create LaunchDarkly client: %w", err)
	}
	defer src.Close()

	flags := []struct {
		key string
		dst *bool
	}{
		{"ai_insights_enabled", &c.LDFlag_AIInsightsEnabled},
		{"seed_db_with_demo_data", &c.LDFlag_SeedDbWithDemoData},
		{"cors_high_security", &c.LDFlag_CORSHighSecurity},
	}
	for _, f := range flags {
		v, err := src.BoolVariation(f.key, *f.dst)
		if err != nil {
			return fmt.Errorf("retrieve %s flag: %w", f.key, err)
		}
		*f.dst = v
		utils.Logger.Debugf("%s flag: %t", f.key, v)
	}
	if c.SkipSeed {
		c.LDFlag_SeedDbWithDemoData = false
	}
	return nil
}
