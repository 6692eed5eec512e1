package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"sdutil/internal/fstree"
	"sdutil/internal/sizespec"
)

// browseActionKind enumerates what the user asked for at the browse prompt.
type browseActionKind int

const (
	browseActionQuit browseActionKind = iota
	browseActionBack
	browseActionSetDepth
	browseActionSetSize
)

// browseAction is one parsed browse prompt selection.
type browseAction struct {
	kind          browseActionKind
	treeDepth     int
	sizeThreshold int64
}

// parseBrowseSelection interprets a browse prompt line. Back is only
// available when the session came from the main menu.
func parseBrowseSelection(input string, allowBack bool) (browseAction, bool) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(input)))
	switch {
	case len(fields) == 1 && fields[0] == "q":
		return browseAction{kind: browseActionQuit}, true
	case len(fields) == 1 && fields[0] == "b" && allowBack:
		return browseAction{kind: browseActionBack}, true
	case len(fields) == 2 && fields[0] == "d":
		newDepth, conversionError := strconv.Atoi(fields[1])
		if conversionError != nil {
			return browseAction{}, false
		}
		return browseAction{kind: browseActionSetDepth, treeDepth: newDepth}, true
	case len(fields) == 2 && fields[0] == "s":
		newThreshold, specError := sizespec.Parse(fields[1])
		if specError != nil {
			return browseAction{}, false
		}
		return browseAction{kind: browseActionSetSize, sizeThreshold: newThreshold}, true
	default:
		return browseAction{}, false
	}
}

// browseLibraryDirectories joins the background walk and loops between the
// rendered listing and the filter prompt until the user backs out or quits.
// The returned flag reports whether the main menu should be shown again.
func (session *Session) browseLibraryDirectories(ctx context.Context) (bool, error) {
	libraryTree, buildError := session.libraryBuild.Tree()
	if buildError != nil {
		return false, buildError
	}

	for {
		if !session.browseOnly {
			session.printLine("")
		}
		session.showLibraryTree(libraryTree)
		action, done := session.promptBrowseAction()
		if !done {
			return false, nil
		}
		switch action.kind {
		case browseActionQuit:
			return false, nil
		case browseActionBack:
			return true, nil
		case browseActionSetDepth:
			session.treeDepth = action.treeDepth
		case browseActionSetSize:
			session.sizeThreshold = action.sizeThreshold
		}
	}
}

// showLibraryTree renders the library tree with the current filters, colors
// each size by severity, and optionally copies the plain listing to the
// clipboard.
func (session *Session) showLibraryTree(libraryTree *fstree.Tree) {
	thresholdText := "to clean"
	if session.sizeThreshold > 0 {
		thresholdText = "over " + sizespec.Format(session.sizeThreshold, false)
	}
	if session.treeDepth > 0 {
		thresholdText += fmt.Sprintf(" (max depth: %d)", session.treeDepth)
	}
	session.printLine(session.theme.Cyan.Render(
		fmt.Sprintf("Showing system library directories %s...", thresholdText)) + "\n")

	renderedLines := libraryTree.Render(session.treeDepth, session.sizeThreshold)
	var plainListing strings.Builder
	for _, renderedLine := range renderedLines {
		plainListing.WriteString(renderedLine.Text())
		plainListing.WriteByte('\n')
		paddedSize := fmt.Sprintf("%*s", fstree.SizeColumnWidth, renderedLine.SizeText)
		session.printLine(session.theme.SeverityStyle(renderedLine.Severity).Render(paddedSize) +
			"  " + strings.Repeat("  ", renderedLine.Depth) + renderedLine.Name)
	}

	if session.copyListing {
		if copyError := clipboard.WriteAll(plainListing.String()); copyError != nil {
			session.logger.Warn("copying listing to clipboard failed", zap.Error(copyError))
		} else {
			session.logger.Debug("copied listing to clipboard",
				zap.Int("lines", len(renderedLines)))
		}
	}
}

// promptBrowseAction loops on the browse prompt until a valid selection
// arrives. The second return value is false when input ended.
func (session *Session) promptBrowseAction() (browseAction, bool) {
	for {
		session.printLine(session.theme.Cyan.Render("Choose from the following options:"))
		session.printLine(session.theme.Cyan.Render("[d]") +
			fmt.Sprintf(" Change tree depth (e.g., \"d %d\" to show one more level)", session.treeDepth+1))
		session.printLine(session.theme.Cyan.Render("[s]") + ` Change size threshold (e.g., "s 10G")`)
		if !session.browseOnly {
			session.printLine(session.theme.Cyan.Render("[b]") + " Back to main menu")
		}
		session.printLine(session.theme.Cyan.Render("[q]") + " Quit")
		session.printLine("")
		selection, readError := session.readLine(promptText)
		if readError != nil {
			return browseAction{}, false
		}
		action, valid := parseBrowseSelection(selection, !session.browseOnly)
		if valid {
			return action, true
		}
		session.printLine(session.theme.Red.Render(invalidChoiceMessage) + "\n")
	}
}
