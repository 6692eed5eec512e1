// Package snapshots lists, deletes, and thins local Time Machine snapshots
// through the tmutil command line tool.
package snapshots

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	tmutilCommandName        = "tmutil"
	listSnapshotsSubcommand  = "listlocalsnapshots"
	deleteSnapshotSubcommand = "deletelocalsnapshots"
	thinSnapshotsSubcommand  = "thinlocalsnapshots"

	snapshotNamePrefix = "com.apple.TimeMachine."
	snapshotNameSuffix = ".local"

	// thinningUrgency is the urgency level passed to tmutil thinlocalsnapshots;
	// 4 is the most aggressive level it accepts.
	thinningUrgency = "4"
)

// CommandRunner executes an external command and returns its standard output.
type CommandRunner interface {
	Run(ctx context.Context, name string, arguments ...string) ([]byte, error)
}

// ExecRunner runs commands through os/exec. A failed command surfaces its
// stderr text (falling back to stdout, then the exit error) as the error.
type ExecRunner struct{}

// Run implements CommandRunner.
func (ExecRunner) Run(ctx context.Context, name string, arguments ...string) ([]byte, error) {
	command := exec.CommandContext(ctx, name, arguments...)
	var standardOutput, standardError bytes.Buffer
	command.Stdout = &standardOutput
	command.Stderr = &standardError
	if runError := command.Run(); runError != nil {
		message := strings.TrimSpace(standardError.String())
		if message == "" {
			message = strings.TrimSpace(standardOutput.String())
		}
		if message == "" {
			message = runError.Error()
		}
		return nil, fmt.Errorf("%s: %s", name, message)
	}
	return standardOutput.Bytes(), nil
}

// Service wraps tmutil operations and caches the snapshot listing across
// calls until a thinning run invalidates it.
type Service struct {
	runner        CommandRunner
	logger        *zap.Logger
	snapshotNames []string
	listed        bool
}

// NewService builds a Service. A nil runner defaults to ExecRunner and a nil
// logger to a no-op logger.
func NewService(runner CommandRunner, logger *zap.Logger) *Service {
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{runner: runner, logger: logger}
}

// List returns the local snapshot date names for mountPoint, reusing the
// result of the first successful listing.
func (service *Service) List(ctx context.Context, mountPoint string) ([]string, error) {
	if service.listed {
		return service.snapshotNames, nil
	}
	listingOutput, runError := service.run(ctx, listSnapshotsSubcommand, mountPoint)
	if runError != nil {
		return nil, runError
	}
	service.snapshotNames = parseSnapshotNames(string(listingOutput))
	service.listed = true
	return service.snapshotNames, nil
}

// Delete removes one snapshot by its date name and drops it from the cache.
func (service *Service) Delete(ctx context.Context, snapshotName string) error {
	if _, runError := service.run(ctx, deleteSnapshotSubcommand, snapshotName); runError != nil {
		return runError
	}
	if service.listed {
		remainingNames := service.snapshotNames[:0]
		for _, cachedName := range service.snapshotNames {
			if cachedName != snapshotName {
				remainingNames = append(remainingNames, cachedName)
			}
		}
		service.snapshotNames = remainingNames
	}
	return nil
}

// Thin asks tmutil to reclaim at least purgeBytes from local snapshots and
// invalidates the cached listing so the next List reflects what remains.
func (service *Service) Thin(ctx context.Context, mountPoint string, purgeBytes int64) (string, error) {
	thinningOutput, runError := service.run(ctx, thinSnapshotsSubcommand, mountPoint,
		strconv.FormatInt(purgeBytes, 10), thinningUrgency)
	if runError != nil {
		return "", runError
	}
	service.snapshotNames = nil
	service.listed = false
	return strings.TrimSpace(string(thinningOutput)), nil
}

func (service *Service) run(ctx context.Context, arguments ...string) ([]byte, error) {
	service.logger.Debug("running command",
		zap.String("command", tmutilCommandName),
		zap.Strings("arguments", arguments))
	return service.runner.Run(ctx, tmutilCommandName, arguments...)
}

// parseSnapshotNames extracts date names from a tmutil listlocalsnapshots
// listing, skipping the header line and stripping the snapshot name prefix
// and suffix.
func parseSnapshotNames(listingOutput string) []string {
	listingLines := strings.Split(strings.TrimSpace(listingOutput), "\n")
	if len(listingLines) < 2 {
		return nil
	}
	snapshotNames := make([]string, 0, len(listingLines)-1)
	for _, listingLine := range listingLines[1:] {
		snapshotName := strings.TrimSpace(listingLine)
		snapshotName = strings.TrimPrefix(snapshotName, snapshotNamePrefix)
		snapshotName = strings.TrimSuffix(snapshotName, snapshotNameSuffix)
		if snapshotName != "" {
			snapshotNames = append(snapshotNames, snapshotName)
		}
	}
	return snapshotNames
}
