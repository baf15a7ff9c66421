package campfire

import (
	"errors"
	"fmt"
	"strings"

	"github.com/topi314/campfire-sync/internal/xtime"
)

type Config struct {
	Every           xtime.Duration `toml:"every"`
	Burst           int            `toml:"burst"`
	MaxRetries      int            `toml:"max_retries"`
	Token           string         `toml:"token"`
	EventAutoUpdate bool           `toml:"event_auto_update"`
	EventAutoImport bool           `toml:"event_auto_import"`
}

func (c Config) Validate() error {
	if c.Every.AsDuration() <= 0 {
		return errors.New("every must be positive")
	}
	if c.Burst <= 0 {
		return errors.New("burst must be positive")
	}
	if c.MaxRetries <= 0 {
		return errors.New("max_retries must be positive")
	}
	return nil
}

func (c Config) String() string {
	return fmt.Sprintf("\n Every: %s\n Burst: %d\n MaxRetries: %d\n Token: %s\n EventAutoUpdate: %t\n EventAutoImport: %t",
		c.Every,
		c.Burst,
		c.MaxRetries,
		strings.Repeat("*", len(c.Token)),
		c.EventAutoUpdate,
		c.EventAutoImport,
	)
}
