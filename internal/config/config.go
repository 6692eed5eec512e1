// Package config loads the sdutil configuration file and supplies defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

const (
	configDirectoryName = "sdutil"
	configFileName      = "config.yaml"
	configFileType      = "yaml"
	localConfigFileName = ".sdutil.yaml"
)

// Built-in defaults, used when no configuration file overrides them.
const (
	DefaultMountPoint  = "/"
	DefaultTreeDepth   = 2
	DefaultSizeSpec    = "1G"
	DefaultLibraryRoot = "~/Library"
)

// DefaultLibraryInclude names the well-known per-user library subdirectories
// that accumulate System Data and are inventoried by default.
var DefaultLibraryInclude = []string{
	"Application Support",
	"Caches",
	"Containers",
	"Group Containers",
	"Logs",
}

// ApplicationConfiguration holds the settings an interactive session starts from.
type ApplicationConfiguration struct {
	MountPoint string               `mapstructure:"mount_point"`
	TreeDepth  int                  `mapstructure:"depth"`
	SizeSpec   string               `mapstructure:"size"`
	Library    LibraryConfiguration `mapstructure:"library"`
}

// LibraryConfiguration selects the directory subtree to inventory.
type LibraryConfiguration struct {
	Root    string   `mapstructure:"root"`
	Include []string `mapstructure:"include"`
}

// LoadOptions controls where configuration files are discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// Load merges the global configuration file under the user configuration
// directory with a local .sdutil.yaml in the working directory, on top of the
// built-in defaults. Keys absent from a file keep their earlier values. When
// an explicit file path is given, only that file is consulted.
func Load(options LoadOptions) (ApplicationConfiguration, error) {
	configuration := DefaultConfiguration()

	if options.ExplicitFilePath != "" {
		if _, statError := os.Stat(options.ExplicitFilePath); statError != nil {
			return configuration, fmt.Errorf("reading configuration %s: %w", options.ExplicitFilePath, statError)
		}
		return mergeConfigurationFile(configuration, options.ExplicitFilePath)
	}

	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return configuration, fmt.Errorf("determine working directory: %w", workingDirectoryError)
		}
		workingDirectory = currentDirectory
	}

	globalPath := filepath.Join(xdg.ConfigHome, configDirectoryName, configFileName)
	merged, globalError := mergeConfigurationFile(configuration, globalPath)
	if globalError != nil {
		return configuration, globalError
	}
	return mergeConfigurationFile(merged, filepath.Join(workingDirectory, localConfigFileName))
}

// DefaultConfiguration returns the built-in settings.
func DefaultConfiguration() ApplicationConfiguration {
	return ApplicationConfiguration{
		MountPoint: DefaultMountPoint,
		TreeDepth:  DefaultTreeDepth,
		SizeSpec:   DefaultSizeSpec,
		Library: LibraryConfiguration{
			Root:    DefaultLibraryRoot,
			Include: append([]string(nil), DefaultLibraryInclude...),
		},
	}
}

// mergeConfigurationFile applies the keys present in one file on top of the
// configuration built so far. Each file is decoded into a fresh struct and
// only keys the file actually sets are copied over, so a present key wholly
// replaces the earlier value instead of merging into it element-wise.
func mergeConfigurationFile(configuration ApplicationConfiguration, filePath string) (ApplicationConfiguration, error) {
	if _, statError := os.Stat(filePath); statError != nil {
		if os.IsNotExist(statError) {
			return configuration, nil
		}
		return configuration, fmt.Errorf("reading configuration %s: %w", filePath, statError)
	}
	loader := viper.New()
	loader.SetConfigFile(filePath)
	loader.SetConfigType(configFileType)
	if readError := loader.ReadInConfig(); readError != nil {
		return configuration, fmt.Errorf("reading configuration %s: %w", filePath, readError)
	}
	var loaded ApplicationConfiguration
	if unmarshalError := loader.Unmarshal(&loaded); unmarshalError != nil {
		return configuration, fmt.Errorf("parsing configuration %s: %w", filePath, unmarshalError)
	}
	if loader.IsSet("mount_point") {
		configuration.MountPoint = loaded.MountPoint
	}
	if loader.IsSet("depth") {
		configuration.TreeDepth = loaded.TreeDepth
	}
	if loader.IsSet("size") {
		configuration.SizeSpec = loaded.SizeSpec
	}
	if loader.IsSet("library.root") {
		configuration.Library.Root = loaded.Library.Root
	}
	if loader.IsSet("library.include") {
		configuration.Library.Include = loaded.Library.Include
	}
	return configuration, nil
}
