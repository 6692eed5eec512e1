// Package cli provides the command line interface and the interactive menus
// for browsing library directories and managing local snapshots.
package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sdutil/internal/config"
	"sdutil/internal/fstree"
	"sdutil/internal/sizespec"
	"sdutil/internal/snapshots"
	"sdutil/internal/ui"
	"sdutil/internal/utils"
)

const (
	browseFlagName  = "browse"
	depthFlagName   = "depth"
	sizeFlagName    = "size"
	verboseFlagName = "verbose"
	copyFlagName    = "copy"
	configFlagName  = "config"
	versionFlagName = "version"

	browseFlagShorthand  = "b"
	depthFlagShorthand   = "d"
	sizeFlagShorthand    = "s"
	verboseFlagShorthand = "v"

	browseFlagDescription  = "browse system library directories only (skip the main menu)"
	depthFlagDescription   = "number of levels to show when browsing system library directories"
	sizeFlagDescription    = "minimum size for entries to be shown (units: B, K, M, G)"
	verboseFlagDescription = "enable debug logging"
	copyFlagDescription    = "copy the rendered library listing to the clipboard"
	configFlagDescription  = "path to a configuration file"
	versionFlagDescription = "display application version"
	versionTemplate        = "sdutil version: %s\n"

	rootUse              = "sdutil [mount-point]"
	rootShortDescription = "manage System Data files and local Time Machine snapshots"
	rootLongDescription  = `sdutil inventories the per-user library directories that accumulate System
Data on a workstation and lists local Time Machine snapshots.
Browse the library tree interactively to locate large caches and logs, delete
individual snapshots by date, or thin snapshots by a purge size.`
	// rootUsageExample demonstrates common invocations.
	rootUsageExample = `  # Check snapshots on the root volume and open the main menu
  sdutil

  # Browse library directories over 10G, three levels deep
  sdutil --browse --size 10G --depth 3`
)

// Execute runs the sdutil application.
func Execute() error {
	return createRootCommand().Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand() *cobra.Command {
	var (
		browseOnly     bool
		treeDepth      int
		sizeSpecValue  string
		verbose        bool
		copyListing    bool
		configFilePath string
		showVersion    bool
	)

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Example:      rootUsageExample,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				return nil
			}
			return runApplication(command, arguments, sessionFlags{
				browseOnly:     browseOnly,
				treeDepth:      treeDepth,
				sizeSpecValue:  sizeSpecValue,
				verbose:        verbose,
				copyListing:    copyListing,
				configFilePath: configFilePath,
			})
		},
	}
	rootCommand.Flags().BoolVarP(&browseOnly, browseFlagName, browseFlagShorthand, false, browseFlagDescription)
	rootCommand.Flags().IntVarP(&treeDepth, depthFlagName, depthFlagShorthand, config.DefaultTreeDepth, depthFlagDescription)
	rootCommand.Flags().StringVarP(&sizeSpecValue, sizeFlagName, sizeFlagShorthand, config.DefaultSizeSpec, sizeFlagDescription)
	rootCommand.Flags().BoolVarP(&verbose, verboseFlagName, verboseFlagShorthand, false, verboseFlagDescription)
	rootCommand.Flags().BoolVar(&copyListing, copyFlagName, false, copyFlagDescription)
	rootCommand.Flags().StringVar(&configFilePath, configFlagName, "", configFlagDescription)
	rootCommand.Flags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	return rootCommand
}

// sessionFlags carries the parsed command line values into session setup.
type sessionFlags struct {
	browseOnly     bool
	treeDepth      int
	sizeSpecValue  string
	verbose        bool
	copyListing    bool
	configFilePath string
}

// runApplication merges flags over configuration, starts the background
// library walk, and drives the interactive session.
func runApplication(command *cobra.Command, arguments []string, flags sessionFlags) error {
	logger, loggerError := utils.NewApplicationLogger(flags.verbose)
	if loggerError != nil {
		return fmt.Errorf("initializing logger: %w", loggerError)
	}
	defer func() { _ = logger.Sync() }()

	configuration, configurationError := config.Load(config.LoadOptions{ExplicitFilePath: flags.configFilePath})
	if configurationError != nil {
		return configurationError
	}

	mountPoint := configuration.MountPoint
	if len(arguments) > 0 {
		mountPoint = arguments[0]
	}
	if !command.Flags().Changed(depthFlagName) {
		flags.treeDepth = configuration.TreeDepth
	}
	if !command.Flags().Changed(sizeFlagName) {
		flags.sizeSpecValue = configuration.SizeSpec
	}
	sizeThreshold, thresholdError := sizespec.Parse(flags.sizeSpecValue)
	if thresholdError != nil {
		return thresholdError
	}

	// The walk starts before any snapshot queries so it overlaps with the
	// foreground tmutil work; the first access to the tree joins the worker.
	libraryBuild := fstree.StartBuild(configuration.Library.Root, configuration.Library.Include)

	session := &Session{
		mountPoint:    mountPoint,
		browseOnly:    flags.browseOnly,
		treeDepth:     flags.treeDepth,
		sizeThreshold: sizeThreshold,
		copyListing:   flags.copyListing,
		logger:        logger,
		theme:         ui.NewTheme(),
		snapshots:     snapshots.NewService(nil, logger),
		libraryBuild:  libraryBuild,
		input:         bufio.NewReader(os.Stdin),
		output:        os.Stdout,
	}
	return session.Run(command.Context())
}
