package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/gfc/internal/checkout"
	"github.com/temirov/gfc/internal/utils"
	flagutils "github.com/temirov/gfc/internal/utils/flags"
	"github.com/temirov/gfc/internal/version"
)

const (
	configFileFlagNameConstant                         = "config"
	configFileFlagUsageConstant                        = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                           = "log-level"
	logLevelFlagUsageConstant                          = "Override the configured log level."
	logFormatFlagNameConstant                          = "log-format"
	logFormatFlagUsageConstant                         = "Override the configured log format."
	commonConfigurationKeyConstant                     = "common"
	commonLogLevelConfigKeyConstant                    = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant                   = commonConfigurationKeyConstant + ".log_format"
	checkoutConfigurationKeyConstant                   = "checkout"
	environmentPrefixConstant                          = "GFC"
	configurationNameConstant                          = "config"
	configurationTypeConstant                          = "yaml"
	configurationSearchPathEnvironmentVariableConstant = "GFC_CONFIG_SEARCH_PATH"
	xdgConfigHomeEnvironmentVariableConstant           = "XDG_CONFIG_HOME"
	userConfigurationDirectoryNameConstant             = "gfc"
	defaultConfigurationSearchPathConstant             = "."
	configurationInitializedMessageConstant            = "configuration initialized"
	configurationLogLevelFieldConstant                 = "log_level"
	configurationLogFormatFieldConstant                = "log_format"
	configurationFileFieldConstant                     = "config_file"
	configurationLoadErrorTemplateConstant             = "unable to load configuration: %w"
	logLevelErrorTemplateConstant                      = "invalid log level: %w"
	logFormatErrorTemplateConstant                     = "invalid log format: %w"
	loggerCreationErrorTemplateConstant                = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant                    = "unable to flush logger: %w"
	versionTemplateConstant                            = "gfc version: {{.Version}}\n"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common   ApplicationCommonConfiguration `mapstructure:"common"`
	Checkout checkout.CommandConfiguration  `mapstructure:"checkout"`
}

// ApplicationCommonConfiguration stores logging configuration.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationOption customizes an Application.
type ApplicationOption func(*Application)

// WithGitExecutor replaces the git executor used by the checkout command.
func WithGitExecutor(gitExecutor checkout.GitExecutor) ApplicationOption {
	return func(application *Application) {
		application.gitExecutor = gitExecutor
	}
}

// WithLogOutput redirects diagnostic logs, which go to standard error by default.
func WithLogOutput(output io.Writer) ApplicationOption {
	return func(application *Application) {
		application.loggerFactory = utils.NewLoggerFactory(output)
	}
}

// WithSettleWait replaces the pause applied after each git command.
func WithSettleWait(wait checkout.WaitFunc) ApplicationOption {
	return func(application *Application) {
		application.settleWait = wait
	}
}

// WithVersionProvider replaces the source of the reported version.
func WithVersionProvider(provider version.BuildInfoProvider) ApplicationOption {
	return func(application *Application) {
		application.versionProvider = provider
	}
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	gitExecutor           checkout.GitExecutor
	settleWait            checkout.WaitFunc
	versionProvider       version.BuildInfoProvider
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication(options ...ApplicationOption) (*Application, error) {
	application := &Application{
		loggerFactory:   utils.NewLoggerFactory(nil),
		logger:          zap.NewNop(),
		versionProvider: version.RuntimeBuildInfoProvider{},
	}
	for _, option := range options {
		option(application)
	}

	application.configurationLoader = utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		resolveConfigurationSearchPaths(),
	)
	embeddedConfigurationData, embeddedConfigurationType := EmbeddedDefaultConfiguration()
	application.configurationLoader.SetEmbeddedConfiguration(embeddedConfigurationData, embeddedConfigurationType)

	checkoutBuilder := checkout.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		GitExecutor:                  application.gitExecutor,
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() checkout.CommandConfiguration {
			return application.configuration.Checkout
		},
		Wait: application.settleWait,
	}
	if workingDirectory, workingDirectoryError := os.Getwd(); workingDirectoryError == nil {
		checkoutBuilder.WorkingDirectory = workingDirectory
	}

	cobraCommand, buildError := checkoutBuilder.Build()
	if buildError != nil {
		return nil, buildError
	}

	cobraCommand.SilenceUsage = true
	cobraCommand.SilenceErrors = true
	cobraCommand.Version = version.Detect(application.versionProvider)
	cobraCommand.SetVersionTemplate(versionTemplateConstant)
	cobraCommand.PersistentPreRunE = func(command *cobra.Command, arguments []string) error {
		return application.initializeConfiguration(command)
	}
	cobraCommand.SetContext(context.Background())

	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", flagutils.FormatChoiceUsage(string(utils.LogLevelError), utils.SupportedLogLevels(), logLevelFlagUsageConstant))
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", flagutils.FormatChoiceUsage(string(utils.LogFormatConsole), utils.SupportedLogFormats(), logFormatFlagUsageConstant))

	application.rootCommand = cobraCommand

	return application, nil
}

// SetArgs overrides the command-line arguments, which default to os.Args[1:].
func (application *Application) SetArgs(arguments []string) {
	application.rootCommand.SetArgs(arguments)
}

// SetOutput redirects the standard and error output of the command.
func (application *Application) SetOutput(output io.Writer, errorOutput io.Writer) {
	application.rootCommand.SetOut(output)
	application.rootCommand.SetErr(errorOutput)
}

// Execute runs the configured Cobra command and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes it against os.Args.
func Execute() error {
	application, applicationError := NewApplication()
	if applicationError != nil {
		return applicationError
	}
	return application.Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelError),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
	}
	for configurationKey, configurationValue := range checkout.DefaultConfigurationValues(checkoutConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}
	application.configurationMetadata = loadedConfiguration

	if persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}
	if persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logLevel, logLevelError := flagutils.NormalizeChoice(application.configuration.Common.LogLevel, utils.SupportedLogLevels())
	if logLevelError != nil {
		return fmt.Errorf(logLevelErrorTemplateConstant, logLevelError)
	}
	logFormat, logFormatError := flagutils.NormalizeChoice(application.configuration.Common.LogFormat, utils.SupportedLogFormats())
	if logFormatError != nil {
		return fmt.Errorf(logFormatErrorTemplateConstant, logFormatError)
	}
	application.configuration.Common.LogLevel = logLevel
	application.configuration.Common.LogFormat = logFormat

	logger, loggerCreationError := application.loggerFactory.CreateLogger(utils.LogLevel(logLevel), utils.LogFormat(logFormat))
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}
	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, logLevel),
		zap.String(configurationLogFormatFieldConstant, logFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	return nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	return strings.EqualFold(strings.TrimSpace(application.configuration.Common.LogFormat), string(utils.LogFormatConsole))
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}
	if rootCommand := command.Root(); rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet != nil && flagSet.Changed(flagName) {
			return true
		}
	}
	return false
}

// resolveConfigurationSearchPaths honours GFC_CONFIG_SEARCH_PATH, a path list, before the working directory and the user configuration directories.
func resolveConfigurationSearchPaths() []string {
	overrideValue := strings.TrimSpace(os.Getenv(configurationSearchPathEnvironmentVariableConstant))
	if len(overrideValue) > 0 {
		overridePaths := strings.FieldsFunc(overrideValue, func(candidate rune) bool {
			return candidate == os.PathListSeparator
		})
		cleanedPaths := make([]string, 0, len(overridePaths))
		for _, pathCandidate := range overridePaths {
			if trimmedCandidate := strings.TrimSpace(pathCandidate); len(trimmedCandidate) > 0 {
				cleanedPaths = append(cleanedPaths, trimmedCandidate)
			}
		}
		if len(cleanedPaths) > 0 {
			return cleanedPaths
		}
	}

	searchPaths := []string{defaultConfigurationSearchPathConstant}
	appendConfigurationDirectory := func(baseDirectoryPath string) {
		trimmedBaseDirectoryPath := strings.TrimSpace(baseDirectoryPath)
		if len(trimmedBaseDirectoryPath) == 0 {
			return
		}
		candidateDirectoryPath := filepath.Join(trimmedBaseDirectoryPath, userConfigurationDirectoryNameConstant)
		for _, existingDirectoryPath := range searchPaths {
			if existingDirectoryPath == candidateDirectoryPath {
				return
			}
		}
		searchPaths = append(searchPaths, candidateDirectoryPath)
	}

	appendConfigurationDirectory(os.Getenv(xdgConfigHomeEnvironmentVariableConstant))
	if userConfigurationBaseDirectoryPath, userConfigurationDirectoryError := os.UserConfigDir(); userConfigurationDirectoryError == nil {
		appendConfigurationDirectory(userConfigurationBaseDirectoryPath)
	}
	if userHomeDirectoryPath, userHomeDirectoryError := os.UserHomeDir(); userHomeDirectoryError == nil {
		appendConfigurationDirectory(filepath.Join(userHomeDirectoryPath, ".config"))
	}

	return searchPaths
}
