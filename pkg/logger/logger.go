// Package logger holds the process-wide zerolog logger.
//
// main calls Init once; code without an injected logger calls Get.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the root logger.
type Options struct {
	Level   string // trace, debug, info, warn or error; anything else means info
	Pretty  bool   // human readable console output
	Service string // added as the "service" field
	Output  io.Writer
}

var (
	mu   sync.Mutex
	root *zerolog.Logger
)

// Init sets up the root logger and the global level. Later calls return the
// logger built by the first one.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if root == nil {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		zerolog.SetGlobalLevel(ParseLevel(opts.Level))
		l := New(opts)
		root = &l
	}
	return *root
}

// New builds a standalone logger from opts.
func New(opts Options) zerolog.Logger {
	var w io.Writer = os.Stdout
	if opts.Output != nil {
		w = opts.Output
	}
	if opts.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	c := zerolog.New(w).With().Timestamp()
	if opts.Service != "" {
		c = c.Str("service", opts.Service)
	}
	return c.Logger().Level(ParseLevel(opts.Level))
}

// Get returns the root logger and panics when Init was never called.
func Get() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if root == nil {
		panic("logger: Init must be called before Get")
	}
	return *root
}

// ParseLevel maps a level name onto zerolog, falling back to info.
func ParseLevel(name string) zerolog.Level {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		name = "warn"
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
