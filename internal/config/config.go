package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/pharmdesk/internal/common"
	"github.com/dmitrijs2005/pharmdesk/internal/flagx"
)

// Config holds runtime settings for the pharmdesk shell.
//
// Fields:
//   - APIOrigin: scheme://host[:port] of the backend; every API path is relative to it.
//   - PrefsPath: sqlite file holding persisted preferences.
//   - LogPath / LogLevel: destination and threshold of the JSON log.
//   - ToastDuration: how long a toast stays visible.
//   - Brand: text of the sidebar brand mark.
//   - Reset: wipe persisted preferences before boot.
//   - ShowVersion: print build data and exit.
type Config struct {
	APIOrigin     string
	PrefsPath     string
	LogPath       string
	LogLevel      string
	ToastDuration time.Duration
	Brand         string
	Reset         bool
	ShowVersion   bool
}

// LoadDefaults populates c with defaults. APIOrigin stays empty on purpose:
// the shell refuses to boot until it is configured.
func (c *Config) LoadDefaults() {
	c.APIOrigin = ""
	c.PrefsPath = "pharmdesk.db"
	c.LogPath = "pharmdesk.log"
	c.LogLevel = "info"
	c.ToastDuration = 2600 * time.Millisecond
	c.Brand = "pharmdesk"
}

// LoadConfig builds a Config from defaults, then the optional file named by
// -c/-config (JSON or TOML), then flags. Later sources win.
// args excludes the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path := flagx.ConfigPath(args); path != "" {
		if err := parseFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports configuration errors that must abort boot.
func (c *Config) Validate() error {
	origin := strings.TrimSpace(c.APIOrigin)
	if origin == "" {
		return common.NewError(common.KindConfig, common.ErrMissingOrigin)
	}
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &common.Error{
			Kind: common.KindConfig,
			Msg:  fmt.Sprintf("api origin %q must be an absolute http(s) URL", origin),
			Err:  common.ErrMissingOrigin,
		}
	}
	if c.ToastDuration <= 0 {
		return common.Errorf(common.KindConfig, "toast duration must be positive, got %s", c.ToastDuration)
	}
	return nil
}
