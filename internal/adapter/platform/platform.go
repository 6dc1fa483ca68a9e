package platform

import (
	"os"
	"path/filepath"
)

// Platform resolves environment-derived defaults.
type Platform struct {
	homeDir func() (string, error)
}

// New creates a Platform. The home directory is only looked up when the
// default config location is needed.
func New() *Platform {
	return &Platform{homeDir: os.UserHomeDir}
}

// DefaultCommands returns the clipboard commands for the running display
// server: wl-clipboard under Wayland, xclip under X11, nothing otherwise.
func (p *Platform) DefaultCommands() (copyCmd, pasteCmd string) {
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		return "wl-copy", "wl-paste"
	}
	if os.Getenv("DISPLAY") != "" {
		return "xclip -selection clipboard", "xclip -out -selection clipboard"
	}
	return "", ""
}

// ResolveConfigPath returns the config file path, checking flag, env, then
// the XDG default. explicit is false for the default path, which may be
// missing. path is empty when there is no default location either.
func (p *Platform) ResolveConfigPath(flagValue string) (path string, explicit bool) {
	if flagValue != "" {
		return flagValue, true
	}
	if v := os.Getenv("RCLIP_CONFIG"); v != "" {
		return v, true
	}
	dir, ok := p.ConfigDir()
	if !ok {
		return "", false
	}
	return filepath.Join(dir, "config.yaml"), false
}

// ConfigDir returns $XDG_CONFIG_HOME/rclip, or ~/.config/rclip. ok is false
// when neither $XDG_CONFIG_HOME nor the home directory is known.
func (p *Platform) ConfigDir() (dir string, ok bool) {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "rclip"), true
	}
	home, err := p.homeDir()
	if err != nil || home == "" {
		return "", false
	}
	return filepath.Join(home, ".config", "rclip"), true
}
