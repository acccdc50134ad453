package interfaces

import (
	"context"
	"tbtc-market-service/internal/domain/entities"
)

// ProcessRunner ejecuta el ejecutable upstream con sus argumentos fijos
type ProcessRunner interface {
	// Run launches the process once and waits for it to exit or time out.
	// A non-zero exit is reported through ProcessResult.ExitCode, not as an error.
	Run(ctx context.Context) (*entities.ProcessResult, error)

	// CommandLine returns the command as a human readable string, e.g. "node index.js --json"
	CommandLine() string

	// LookPath verifies the executable can be resolved
	LookPath() error
}
