package logger

import (
	"context"
	"os"
	"strconv"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/adapters/detector"
	"go.trai.ch/kiln/internal/core/ports"
)

// NodeID is the unique identifier for the logger Graft node.
const NodeID graft.ID = "adapter.logger"

// Environment variables read before the project configuration is loaded.
const (
	envLogFormat = "KILN_LOG_FORMAT"
	envVerbose   = "KILN_VERBOSE"
)

func init() {
	graft.Register(graft.Node[ports.Logger]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Logger, error) {
			return newForEnvironment(detector.DetectEnvironment(), os.Getenv), nil
		},
	})
}

// newForEnvironment formats the logger from the terminal and the KILN_
// variables, so errors raised while loading the configuration already use the
// format of the build. The app applies the resolved configuration afterwards.
func newForEnvironment(detected detector.Format, getenv func(string) string) *Logger {
	l := New()
	l.SetJSON(detector.ResolveFormat(detected, getenv(envLogFormat)) == detector.FormatJSON)
	if verbose, err := strconv.ParseBool(getenv(envVerbose)); err == nil {
		l.SetVerbose(verbose)
	}
	return l
}
