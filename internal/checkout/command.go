package checkout

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gfc/internal/execshell"
	"github.com/temirov/gfc/internal/issues"
	"github.com/temirov/gfc/internal/ui"
	flagutils "github.com/temirov/gfc/internal/utils/flags"
)

const (
	commandUseNameConstant             = "gfc"
	commandUsageTemplateConstant       = commandUseNameConstant + " <issueNumber>"
	commandShortDescriptionConstant    = "Check out the git branch of an issue"
	commandLongDescriptionConstant     = "gfc fetches the remote, finds the branch named <issue>-<slug> for the issue number, and creates a tracking branch or fast-forwards the existing local branch. Use --rebase when the local history diverged."
	commandExampleConstant             = "gfc 42\ngfc '#42' --remote-name upstream"
	remoteNameFlagNameConstant         = "remote-name"
	remoteNameFlagUsageConstant        = "Remote that hosts the issue branches."
	selectBranchFlagNameConstant       = "select-branch"
	selectBranchFlagUsageConstant      = "Remote branch to use when several branches match the issue."
	rebaseFlagNameConstant             = "rebase"
	rebaseFlagUsageConstant            = "Rebase the local branch with --autostash when it cannot be fast-forwarded."
	createdSuccessTemplateConstant     = "Successfully created and moved to branch %s."
	switchedSuccessTemplateConstant    = "Successfully switched to local branch %s."
	updatedSuccessTemplateConstant     = "Successfully updated local branch %s."
	invocationSeparatorConstant        = " "
	invocationRemoteFlagPrefixConstant = "--" + remoteNameFlagNameConstant
)

// LoggerProvider yields a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the checkout command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	GitExecutor                  GitExecutor
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	WorkingDirectory             string
	Wait                         WaitFunc
	EnvironmentLookup            ui.EnvironmentLookup
}

type commandFlagValues struct {
	remoteName   string
	selectBranch string
	rebase       bool
}

// Build constructs the checkout command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	flagValues := &commandFlagValues{}

	command := &cobra.Command{
		Use:     commandUsageTemplateConstant,
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Example: commandExampleConstant,
		Args:    cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, arguments, flagValues)
		},
	}

	command.SetGlobalNormalizationFunc(flagutils.KebabCaseNormalization)
	command.Flags().StringVar(&flagValues.remoteName, remoteNameFlagNameConstant, defaultRemoteNameConstant, remoteNameFlagUsageConstant)
	command.Flags().StringVar(&flagValues.selectBranch, selectBranchFlagNameConstant, "", selectBranchFlagUsageConstant)
	flagutils.AddToggleFlag(command.Flags(), &flagValues.rebase, rebaseFlagNameConstant, "", false, rebaseFlagUsageConstant)

	if hideError := command.Flags().MarkHidden(selectBranchFlagNameConstant); hideError != nil {
		return nil, hideError
	}
	if hideError := command.Flags().MarkHidden(rebaseFlagNameConstant); hideError != nil {
		return nil, hideError
	}

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string, flagValues *commandFlagValues) error {
	issueNumber, parseError := issues.ParseNumber(arguments[0])
	if parseError != nil {
		return parseError
	}

	configuration := builder.resolveConfiguration()
	remoteName := configuration.RemoteName
	if command.Flags().Changed(remoteNameFlagNameConstant) {
		if overridden := strings.TrimSpace(flagValues.remoteName); len(overridden) > 0 {
			remoteName = overridden
		}
	}
	remoteName, remoteError := issues.ParseRemoteName(remoteName)
	if remoteError != nil {
		return remoteError
	}
	rebase := configuration.Rebase
	if command.Flags().Changed(rebaseFlagNameConstant) {
		rebase = flagValues.rebase
	}

	logger := builder.resolveLogger()
	gitExecutor, executorError := builder.resolveGitExecutor(logger)
	if executorError != nil {
		return executorError
	}

	runner, runnerError := NewGitCommandRunner(gitExecutor,
		WithWorkingDirectory(builder.WorkingDirectory),
		WithSettleDelay(configuration.SettleDelay),
		WithWaitFunc(builder.Wait),
	)
	if runnerError != nil {
		return runnerError
	}

	colorOptions := ui.EnvironmentColorOptions(builder.resolveEnvironmentLookup())
	outputPrinter := ui.NewPrinter(command.OutOrStdout(), colorOptions...)
	errorPrinter := ui.NewPrinter(command.ErrOrStderr(), colorOptions...)

	service, serviceError := NewService(ServiceDependencies{
		Runner:     runner,
		Logger:     logger,
		HintStyler: errorPrinter.RenderAccent,
	})
	if serviceError != nil {
		return serviceError
	}

	result, checkoutError := service.Checkout(command.Context(), Options{
		RemoteName:   remoteName,
		IssueNumber:  issueNumber,
		SelectBranch: flagValues.selectBranch,
		Rebase:       rebase,
		Invocation:   buildInvocation(command, issueNumber, remoteName),
	})
	if checkoutError != nil {
		return checkoutError
	}

	return outputPrinter.PrintSuccess(describeOutcome(result))
}

func describeOutcome(result Result) string {
	switch result.Outcome {
	case OutcomeCreated:
		return fmt.Sprintf(createdSuccessTemplateConstant, result.LocalBranch)
	case OutcomeUpdated:
		return fmt.Sprintf(updatedSuccessTemplateConstant, result.LocalBranch)
	default:
		return fmt.Sprintf(switchedSuccessTemplateConstant, result.LocalBranch)
	}
}

// buildInvocation reconstructs the command line for relaunch hints; the remote is only repeated when it is not the default.
func buildInvocation(command *cobra.Command, issueNumber int, remoteName string) string {
	parts := []string{command.CommandPath(), strconv.Itoa(issueNumber)}
	if remoteName != defaultRemoteNameConstant {
		parts = append(parts, invocationRemoteFlagPrefixConstant, remoteName)
	}
	return strings.Join(parts, invocationSeparatorConstant)
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveEnvironmentLookup() ui.EnvironmentLookup {
	if builder.EnvironmentLookup == nil {
		return os.LookupEnv
	}
	return builder.EnvironmentLookup
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveGitExecutor(logger *zap.Logger) (GitExecutor, error) {
	if builder.GitExecutor != nil {
		return builder.GitExecutor, nil
	}
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}
	shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), humanReadableLogging)
	if executorError != nil {
		return nil, executorError
	}
	return shellExecutor, nil
}
