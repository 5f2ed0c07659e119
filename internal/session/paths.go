package session

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.livechat.
func BaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".livechat")
}

// Dir returns the profile-specific directory. All tabs of a profile share it.
func Dir(profile string) string {
	return filepath.Join(BaseDir(), "profiles", profile)
}

// SocketPath returns the relay's UDS socket path for a profile.
func SocketPath(profile string) string {
	return filepath.Join(Dir(profile), "relay.sock")
}

// LockPath returns the relay lock file path for a profile.
func LockPath(profile string) string {
	return filepath.Join(Dir(profile), "LOCK")
}

// StorePath returns the profile's key-value database.
func StorePath(profile string) string {
	return filepath.Join(Dir(profile), "livechat.db")
}

// LogDir returns the log directory for a profile.
func LogDir(profile string) string {
	return filepath.Join(Dir(profile), "logs")
}

// RelayLogPath returns the relay daemon log file path.
func RelayLogPath(profile string) string {
	return filepath.Join(LogDir(profile), "livechatd.log")
}

// TabLogPath returns the log file shared by the profile's tabs.
func TabLogPath(profile string) string {
	return filepath.Join(LogDir(profile), "livechat.log")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnsureDir creates the profile directory tree with proper permissions.
func EnsureDir(profile string) error {
	for _, d := range []string{Dir(profile), LogDir(profile)} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
