// Package logging builds the loggers tagbump passes to its components.
package logging

import (
	"io"
	"log"
)

// Loggers groups the per-level loggers for one invocation.
type Loggers struct {
	Info  *log.Logger
	Debug *log.Logger
	Error *log.Logger

	debug bool
}

// New returns loggers writing to out and errOut. Debug output is discarded
// unless debug is set.
func New(out, errOut io.Writer, debug bool) *Loggers {
	l := &Loggers{
		Info:  log.New(out, "", 0),
		Error: log.New(errOut, "ERROR: ", 0),
		debug: debug,
	}
	if debug {
		l.Debug = log.New(out, "DEBUG: ", log.Ltime)
	} else {
		l.Debug = log.New(io.Discard, "", 0)
	}
	return l
}

// Tracer returns the debug logger when debug is enabled, nil otherwise.
// Components treat a nil logger as "no tracing".
func (l *Loggers) Tracer() *log.Logger {
	if !l.debug {
		return nil
	}
	return l.Debug
}
