// Package obs contains observability utilities such as logging.
package obs

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is the global structured logger used by the service.
//
// Logger is exported to allow other packages to use it for logging. Its zero
// value is a disabled logger, so packages may log before initialization.
var Logger zerolog.Logger

// InitLogger initializes the global Logger with JSON output at the given
// level. Unknown levels fall back to info.
func InitLogger(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	Logger = zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
}
