// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"go.trai.ch/kiln/internal/core/domain"
)

// Executor runs external commands on behalf of compilers.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs cmd and waits for it to complete.
	// It returns an error if the command cannot start or exits unsuccessfully.
	Execute(ctx context.Context, cmd *domain.Command, stdout, stderr io.Writer) error
}
