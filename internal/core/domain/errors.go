package domain

import (
	"errors"

	"go.trai.ch/zerr"
)

// Configuration errors. They are fatal at startup.
var (
	// ErrTaskAlreadyExists is returned when attempting to add a task with a name that already exists.
	ErrTaskAlreadyExists = zerr.New("task already exists")

	// ErrMissingDependency is returned when a task references a prerequisite that doesn't exist in the graph.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when a cycle is detected in the task graph or in an execution plan.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrTaskNotFound is returned when a group references a task that is not declared in the graph.
	ErrTaskNotFound = zerr.New("task not found")

	// ErrInvalidTaskName is returned when a task is declared without a name.
	ErrInvalidTaskName = zerr.New("invalid task name")

	// ErrConfigReadFailed is returned when the project config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the project config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigInvalid is returned when a configuration value is out of range.
	ErrConfigInvalid = zerr.New("invalid configuration")

	// ErrManifestReadFailed is returned when the vendor manifest cannot be read.
	ErrManifestReadFailed = zerr.New("failed to read vendor manifest")

	// ErrManifestParseFailed is returned when the vendor manifest is malformed.
	ErrManifestParseFailed = zerr.New("failed to parse vendor manifest")

	// ErrInvalidRebuild is returned when a rebuild does not carry exactly one unit of work.
	ErrInvalidRebuild = zerr.New("rebuild must carry exactly one of target, action or globs")
)

// Execution errors.
var (
	// ErrBuildExecutionFailed is returned when one or more tasks of a group failed.
	ErrBuildExecutionFailed = zerr.New("build execution failed")

	// ErrTaskPanicked is returned when a task action panics.
	ErrTaskPanicked = zerr.New("task panicked")

	// ErrCompilationFailed is returned when a compiler adapter rejects its sources.
	ErrCompilationFailed = zerr.New("compilation failed")

	// ErrCommandFailed is returned when an external command exits unsuccessfully.
	ErrCommandFailed = zerr.New("command failed")
)

// Classification errors. They are logged and the event is ignored.
var (
	// ErrNoMatchingRule is returned when no watch rule matches a changed path.
	ErrNoMatchingRule = zerr.New("no watch rule matches path")

	// ErrClassificationFailed is returned when a watch rule cannot map a path to a rebuild.
	ErrClassificationFailed = zerr.New("failed to classify path")
)

// Filesystem errors.
var (
	// ErrPathOutsideRoot is returned when a path is neither under the static root nor the output root.
	ErrPathOutsideRoot = zerr.New("path is outside the static and output roots")

	// ErrAssetSyncFailed is returned when a static asset cannot be mirrored.
	ErrAssetSyncFailed = zerr.New("failed to sync asset")

	// ErrAssetRemoveFailed is returned when a mirrored asset cannot be deleted.
	ErrAssetRemoveFailed = zerr.New("failed to remove asset")

	// ErrOutputCleanFailed is returned when the output root cannot be removed.
	ErrOutputCleanFailed = zerr.New("failed to clean output directory")

	// ErrOutputWriteFailed is returned when a build artifact cannot be written.
	ErrOutputWriteFailed = zerr.New("failed to write output file")
)

// IsConfigurationError reports whether err stems from a broken project declaration
// (config file, vendor manifest or task graph) rather than from compiling sources.
func IsConfigurationError(err error) bool {
	for _, target := range []error{
		ErrConfigReadFailed,
		ErrConfigParseFailed,
		ErrConfigInvalid,
		ErrManifestReadFailed,
		ErrManifestParseFailed,
		ErrCycleDetected,
		ErrMissingDependency,
		ErrTaskAlreadyExists,
		ErrTaskNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
