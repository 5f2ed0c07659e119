package session

import "github.com/matheus3301/livechat/internal/config"

const DefaultProfile = "main"

// Resolve determines the active profile name using precedence:
// 1. flagOverride (--profile flag)
// 2. default_profile from config.toml or LIVECHAT_PROFILE
// 3. "main"
func Resolve(flagOverride string, cfg *config.Config) string {
	if flagOverride != "" {
		return flagOverride
	}
	if cfg != nil && cfg.DefaultProfile != "" {
		return cfg.DefaultProfile
	}
	return DefaultProfile
}
