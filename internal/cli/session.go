package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"sdutil/internal/fstree"
	"sdutil/internal/sizespec"
	"sdutil/internal/snapshots"
	"sdutil/internal/ui"
)

const (
	promptText           = "Enter your choice: "
	invalidChoiceMessage = "Invalid choice."
	invalidEntryMessage  = "Invalid entry."
)

// Session carries the state of one interactive run: the mount point under
// inspection, the current browse filters, and the background library walk.
type Session struct {
	mountPoint    string
	browseOnly    bool
	treeDepth     int
	sizeThreshold int64
	copyListing   bool

	logger       *zap.Logger
	theme        ui.Theme
	snapshots    *snapshots.Service
	libraryBuild *fstree.AsyncBuild
	input        *bufio.Reader
	output       io.Writer
}

// Run drives the session: browse-only mode jumps straight into the library
// listing, otherwise the snapshot check runs first and the main menu follows.
func (session *Session) Run(ctx context.Context) error {
	if session.browseOnly {
		_, browseError := session.browseLibraryDirectories(ctx)
		return browseError
	}
	session.checkSnapshots(ctx)
	return session.menu(ctx)
}

// checkSnapshots reports the local snapshots found for the mount point.
func (session *Session) checkSnapshots(ctx context.Context) {
	session.printLine(session.theme.Cyan.Render(
		fmt.Sprintf("Checking local Time Machine snapshots for %s...", session.mountPoint)))
	snapshotNames, listError := session.snapshots.List(ctx, session.mountPoint)
	if listError != nil {
		session.printLine(session.theme.Red.Render(fmt.Sprintf("Failed to list snapshots: %v", listError)))
		return
	}
	if len(snapshotNames) == 0 {
		session.printLine(fmt.Sprintf("  No Time Machine snapshots found for %s.", session.mountPoint))
		return
	}
	session.printLine(fmt.Sprintf("  Found %s local Time Machine snapshots:",
		humanize.Comma(int64(len(snapshotNames)))))
	for _, snapshotName := range snapshotNames {
		session.printLine("    " + snapshotName)
	}
}

// menuChoice pairs a menu label with its handler. The handler reports whether
// the main menu should be shown again; a nil handler quits.
type menuChoice struct {
	label   string
	handler func(context.Context) (bool, error)
}

// menu shows the main menu until a handler asks to stop or input ends.
func (session *Session) menu(ctx context.Context) error {
	for {
		choiceKeys, choices := session.menuChoices(ctx)
		session.printLine("")
		session.printLine(session.theme.Cyan.Render("Choose from the following options:"))
		for _, choiceKey := range choiceKeys {
			session.printLine(session.theme.Cyan.Render("["+choiceKey+"]") + " " + choices[choiceKey].label)
		}
		session.printLine("")
		selection, readError := session.readLine(promptText)
		if readError != nil {
			return nil
		}
		choice, known := choices[strings.ToLower(strings.TrimSpace(selection))]
		if !known {
			session.printLine(session.theme.Red.Render(invalidChoiceMessage))
			continue
		}
		if choice.handler == nil {
			return nil
		}
		showMenuAgain, handlerError := choice.handler(ctx)
		if handlerError != nil {
			return handlerError
		}
		if !showMenuAgain {
			return nil
		}
	}
}

// menuChoices assembles the menu; snapshot actions appear only when local
// snapshots exist.
func (session *Session) menuChoices(ctx context.Context) ([]string, map[string]menuChoice) {
	var choiceKeys []string
	choices := make(map[string]menuChoice)
	addChoice := func(choiceKey string, label string, handler func(context.Context) (bool, error)) {
		choiceKeys = append(choiceKeys, choiceKey)
		choices[choiceKey] = menuChoice{label: label, handler: handler}
	}

	snapshotNames, listError := session.snapshots.List(ctx, session.mountPoint)
	choiceNumber := 1
	if listError == nil && len(snapshotNames) > 0 {
		addChoice(strconv.Itoa(choiceNumber),
			"Delete specific Time Machine snapshots by date", session.deleteSnapshotsByDate)
		addChoice(strconv.Itoa(choiceNumber+1),
			"Trim Time Machine snapshots by specifying purge size", session.trimSnapshots)
		choiceNumber += 2
	}
	addChoice(strconv.Itoa(choiceNumber),
		"Browse system library directories to clean", session.browseLibraryDirectories)
	addChoice("q", "Quit", nil)
	return choiceKeys, choices
}

// deleteSnapshotsByDate prompts for snapshots to delete until the user backs
// out, quits, or none remain.
func (session *Session) deleteSnapshotsByDate(ctx context.Context) (bool, error) {
	for {
		snapshotNames, listError := session.snapshots.List(ctx, session.mountPoint)
		if listError != nil {
			return false, listError
		}
		if len(snapshotNames) == 0 {
			return true, nil
		}
		session.printLine("\n" + session.theme.Cyan.Render("Choose a snapshot to delete:"))
		for snapshotIndex, snapshotName := range snapshotNames {
			session.printLine(session.theme.Cyan.Render(fmt.Sprintf("[%d]", snapshotIndex+1)) + " " + snapshotName)
		}
		session.printLine(session.theme.Cyan.Render("[b]") + " Back to main menu")
		session.printLine(session.theme.Cyan.Render("[q]") + " Quit")
		session.printLine("")
		selection, readError := session.readLine(promptText)
		if readError != nil {
			return false, nil
		}
		normalizedSelection := strings.ToLower(strings.TrimSpace(selection))
		if normalizedSelection == "b" {
			return true, nil
		}
		if normalizedSelection == "q" {
			return false, nil
		}
		selectedIndex, conversionError := strconv.Atoi(normalizedSelection)
		if conversionError != nil || selectedIndex < 1 || selectedIndex > len(snapshotNames) {
			session.printLine(session.theme.Red.Render(invalidChoiceMessage))
			continue
		}
		snapshotName := snapshotNames[selectedIndex-1]
		session.printLine("\n" + session.theme.Cyan.Render("Deleting local Time Machine snapshot ") +
			snapshotName + session.theme.Cyan.Render("..."))
		if deleteError := session.snapshots.Delete(ctx, snapshotName); deleteError != nil {
			session.printLine(session.theme.Red.Render(fmt.Sprintf("Failed to delete snapshot: %v", deleteError)))
			continue
		}
		session.printLine(session.theme.Cyan.Render("Snapshot deleted successfully."))
	}
}

// trimSnapshots prompts for a purge size and asks tmutil to thin snapshots.
func (session *Session) trimSnapshots(ctx context.Context) (bool, error) {
	var purgeBytes int64
	for {
		selection, readError := session.readLine("\n" + session.theme.Cyan.Render(
			`Enter the minimum amount of space you wish to reclaim (e.g., "1G"): `))
		if readError != nil {
			return true, nil
		}
		parsedBytes, specError := sizespec.Parse(strings.ToUpper(strings.TrimSpace(selection)))
		if specError != nil {
			session.printLine(session.theme.Red.Render(invalidEntryMessage))
			continue
		}
		purgeBytes = parsedBytes
		break
	}

	session.printLine("\n" + session.theme.Cyan.Render("Attempting to purge ") +
		sizespec.Format(purgeBytes, false) + session.theme.Cyan.Render(" of Time Machine snapshots..."))
	thinningOutput, thinError := session.snapshots.Thin(ctx, session.mountPoint, purgeBytes)
	if thinError != nil {
		session.printLine(session.theme.Red.Render(fmt.Sprintf("Failed to thin snapshots: %v", thinError)))
		return true, nil
	}
	session.printLine(thinningOutput)
	session.printLine(session.theme.Cyan.Render("Finished thinning local Time Machine snapshots."))
	session.printLine("")
	session.checkSnapshots(ctx)
	return true, nil
}

func (session *Session) printLine(text string) {
	fmt.Fprintln(session.output, text)
}

// readLine prints a prompt and reads one line of input. The returned error is
// non-nil only when input ended before any text arrived.
func (session *Session) readLine(prompt string) (string, error) {
	fmt.Fprint(session.output, prompt)
	line, readError := session.input.ReadString('\n')
	if readError != nil && line == "" {
		return "", readError
	}
	return strings.TrimRight(line, "\r\n"), nil
}
