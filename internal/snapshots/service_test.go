package snapshots_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"sdutil/internal/snapshots"
)

const sampleListing = `Snapshots for disk /:
com.apple.TimeMachine.2024-05-01-101010.local
com.apple.TimeMachine.2024-05-02-101010.local
com.apple.TimeMachine.2024-05-03-101010.local
`

// fakeRunner replays canned responses and records every invocation.
type fakeRunner struct {
	responses map[string][]byte
	failures  map[string]error
	calls     []string
}

func (runner *fakeRunner) Run(_ context.Context, name string, arguments ...string) ([]byte, error) {
	invocation := name + " " + strings.Join(arguments, " ")
	runner.calls = append(runner.calls, invocation)
	if failure, failing := runner.failures[arguments[0]]; failing {
		return nil, failure
	}
	return runner.responses[arguments[0]], nil
}

func newListingRunner() *fakeRunner {
	return &fakeRunner{
		responses: map[string][]byte{
			"listlocalsnapshots": []byte(sampleListing),
			"thinlocalsnapshots": []byte("Thinned local snapshots: 1"),
		},
		failures: map[string]error{},
	}
}

func TestListParsesSnapshotNames(t *testing.T) {
	runner := newListingRunner()
	service := snapshots.NewService(runner, nil)

	snapshotNames, listError := service.List(context.Background(), "/")
	if listError != nil {
		t.Fatalf("unexpected error: %v", listError)
	}
	expectedNames := []string{"2024-05-01-101010", "2024-05-02-101010", "2024-05-03-101010"}
	if len(snapshotNames) != len(expectedNames) {
		t.Fatalf("expected %d names, got %d", len(expectedNames), len(snapshotNames))
	}
	for index, expectedName := range expectedNames {
		if snapshotNames[index] != expectedName {
			t.Fatalf("expected %s at position %d, got %s", expectedName, index, snapshotNames[index])
		}
	}
}

func TestListReturnsNothingForHeaderOnlyOutput(t *testing.T) {
	runner := newListingRunner()
	runner.responses["listlocalsnapshots"] = []byte("Snapshots for disk /:\n")
	service := snapshots.NewService(runner, nil)

	snapshotNames, listError := service.List(context.Background(), "/")
	if listError != nil {
		t.Fatalf("unexpected error: %v", listError)
	}
	if len(snapshotNames) != 0 {
		t.Fatalf("expected no names, got %d", len(snapshotNames))
	}
}

func TestListCachesAcrossCalls(t *testing.T) {
	runner := newListingRunner()
	service := snapshots.NewService(runner, nil)

	if _, listError := service.List(context.Background(), "/"); listError != nil {
		t.Fatalf("unexpected error: %v", listError)
	}
	if _, listError := service.List(context.Background(), "/"); listError != nil {
		t.Fatalf("unexpected error: %v", listError)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("expected one tmutil invocation, got %d", len(runner.calls))
	}
}

func TestDeleteRemovesNameFromCache(t *testing.T) {
	runner := newListingRunner()
	service := snapshots.NewService(runner, nil)

	if _, listError := service.List(context.Background(), "/"); listError != nil {
		t.Fatalf("unexpected error: %v", listError)
	}
	if deleteError := service.Delete(context.Background(), "2024-05-02-101010"); deleteError != nil {
		t.Fatalf("unexpected error: %v", deleteError)
	}
	snapshotNames, listError := service.List(context.Background(), "/")
	if listError != nil {
		t.Fatalf("unexpected error: %v", listError)
	}
	if len(snapshotNames) != 2 {
		t.Fatalf("expected 2 remaining names, got %d", len(snapshotNames))
	}
	for _, snapshotName := range snapshotNames {
		if snapshotName == "2024-05-02-101010" {
			t.Fatal("deleted snapshot must leave the cache")
		}
	}
	expectedInvocation := "tmutil deletelocalsnapshots 2024-05-02-101010"
	if runner.calls[1] != expectedInvocation {
		t.Fatalf("expected %q, got %q", expectedInvocation, runner.calls[1])
	}
}

func TestThinInvalidatesCacheAndPassesUrgency(t *testing.T) {
	runner := newListingRunner()
	service := snapshots.NewService(runner, nil)

	if _, listError := service.List(context.Background(), "/"); listError != nil {
		t.Fatalf("unexpected error: %v", listError)
	}
	thinningOutput, thinError := service.Thin(context.Background(), "/", 1<<30)
	if thinError != nil {
		t.Fatalf("unexpected error: %v", thinError)
	}
	if thinningOutput != "Thinned local snapshots: 1" {
		t.Fatalf("unexpected output %q", thinningOutput)
	}
	expectedInvocation := fmt.Sprintf("tmutil thinlocalsnapshots / %d 4", int64(1<<30))
	if runner.calls[1] != expectedInvocation {
		t.Fatalf("expected %q, got %q", expectedInvocation, runner.calls[1])
	}
	if _, listError := service.List(context.Background(), "/"); listError != nil {
		t.Fatalf("unexpected error: %v", listError)
	}
	if len(runner.calls) != 3 {
		t.Fatal("thinning must force the next listing to re-run tmutil")
	}
}

func TestRunnerErrorsPropagate(t *testing.T) {
	runner := newListingRunner()
	listingFailure := errors.New("tmutil: No local snapshots found")
	runner.failures["listlocalsnapshots"] = listingFailure
	service := snapshots.NewService(runner, nil)

	_, listError := service.List(context.Background(), "/")
	if !errors.Is(listError, listingFailure) {
		t.Fatalf("expected runner failure to propagate, got %v", listError)
	}
}
