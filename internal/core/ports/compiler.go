package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

// Compiler is the uniform contract of every source compiler: bundlers,
// style compilers, template renderers and external tools.
//
//go:generate mockgen -source=compiler.go -destination=mocks/mock_compiler.go -package=mocks
type Compiler interface {
	// Compile builds the sources matched by selector into destRoot.
	// Failures are reported as domain.ErrCompilationFailed.
	Compile(ctx context.Context, selector domain.Selector, destRoot string, env domain.Environment) error
}
