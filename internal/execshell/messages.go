package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
)

const (
	gitFetchSubcommandNameConstant    = "fetch"
	gitBranchSubcommandNameConstant   = "branch"
	gitRemoteBranchesFlagConstant     = "-r"
	gitShowSubcommandNameConstant     = "show"
	gitCheckoutSubcommandNameConstant = "checkout"
	gitCreateBranchFlagConstant       = "-b"
	gitMergeSubcommandNameConstant    = "merge"
	gitRebaseSubcommandNameConstant   = "rebase"
)

const (
	gitFetchStartTemplateConstant                   = "Fetching %s in %s"
	gitFetchSuccessTemplateConstant                 = "Fetched %s in %s"
	gitFetchFailureTemplateConstant                 = "Failed to fetch %s in %s (exit code %d%s)"
	gitFetchExecutionFailureTemplateConstant        = "Unable to fetch %s in %s: %s"
	gitRemoteBranchesStartTemplateConstant          = "Listing remote branches in %s"
	gitRemoteBranchesSuccessTemplateConstant        = "Listed %d remote branches in %s"
	gitRemoteBranchesFailureTemplateConstant        = "Failed to list remote branches in %s (exit code %d%s)"
	gitRemoteBranchesExecutionFailureTemplate       = "Unable to list remote branches in %s: %s"
	gitShowStartTemplateConstant                    = "Looking up %s in %s"
	gitShowSuccessTemplateConstant                  = "%s exists in %s"
	gitShowFailureTemplateConstant                  = "%s not found in %s (exit code %d%s)"
	gitShowExecutionFailureTemplateConstant         = "Unable to look up %s in %s: %s"
	gitCheckoutStartTemplateConstant                = "Switching %s to branch %s"
	gitCheckoutSuccessTemplateConstant              = "%s now on branch %s"
	gitCheckoutFailureTemplateConstant              = "Failed to switch %s to branch %s (exit code %d%s)"
	gitCheckoutExecutionFailureTemplateConstant     = "Unable to switch %s to branch %s: %s"
	gitCheckoutCreateStartTemplateConstant          = "Creating branch %s from %s in %s"
	gitCheckoutCreateSuccessTemplateConstant        = "Created branch %s from %s in %s"
	gitCheckoutCreateFailureTemplateConstant        = "Failed to create branch %s from %s in %s (exit code %d%s)"
	gitCheckoutCreateExecutionFailureTemplate       = "Unable to create branch %s from %s in %s: %s"
	gitMergeStartTemplateConstant                   = "Fast-forwarding to %s in %s"
	gitMergeSuccessTemplateConstant                 = "Fast-forwarded to %s in %s"
	gitMergeFailureTemplateConstant                 = "Could not fast-forward to %s in %s (exit code %d%s)"
	gitMergeExecutionFailureTemplateConstant        = "Unable to fast-forward to %s in %s: %s"
	gitRebaseStartTemplateConstant                  = "Rebasing onto %s in %s"
	gitRebaseSuccessTemplateConstant                = "Rebased onto %s in %s"
	gitRebaseFailureTemplateConstant                = "Failed to rebase onto %s in %s (exit code %d%s)"
	gitRebaseExecutionFailureTemplateConstant       = "Unable to rebase onto %s in %s: %s"
	remoteBranchListingLineSeparatorConstant        = "\n"
	remoteBranchListingSymbolicReferenceMarkerConst = "->"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)
	failureSuffix := formatter.formatStandardErrorSuffix(result.StandardError)
	failureReason := formatter.describeFailure(failure)

	switch strings.TrimSpace(arguments[0]) {
	case gitFetchSubcommandNameConstant:
		remoteName := formatter.ensureValue(formatter.firstOperand(arguments))
		return selectStageMessage(stage,
			fmt.Sprintf(gitFetchStartTemplateConstant, remoteName, workingDirectory),
			fmt.Sprintf(gitFetchSuccessTemplateConstant, remoteName, workingDirectory),
			fmt.Sprintf(gitFetchFailureTemplateConstant, remoteName, workingDirectory, result.ExitCode, failureSuffix),
			fmt.Sprintf(gitFetchExecutionFailureTemplateConstant, remoteName, workingDirectory, failureReason),
		)
	case gitBranchSubcommandNameConstant:
		if !containsArgument(arguments, gitRemoteBranchesFlagConstant) {
			return formatter.buildGenericMessage(command, result, failure, stage)
		}
		return selectStageMessage(stage,
			fmt.Sprintf(gitRemoteBranchesStartTemplateConstant, workingDirectory),
			fmt.Sprintf(gitRemoteBranchesSuccessTemplateConstant, countListedBranches(result.StandardOutput), workingDirectory),
			fmt.Sprintf(gitRemoteBranchesFailureTemplateConstant, workingDirectory, result.ExitCode, failureSuffix),
			fmt.Sprintf(gitRemoteBranchesExecutionFailureTemplate, workingDirectory, failureReason),
		)
	case gitShowSubcommandNameConstant:
		reference := formatter.ensureValue(formatter.lastArgument(arguments))
		return selectStageMessage(stage,
			fmt.Sprintf(gitShowStartTemplateConstant, reference, workingDirectory),
			fmt.Sprintf(gitShowSuccessTemplateConstant, reference, workingDirectory),
			fmt.Sprintf(gitShowFailureTemplateConstant, reference, workingDirectory, result.ExitCode, failureSuffix),
			fmt.Sprintf(gitShowExecutionFailureTemplateConstant, reference, workingDirectory, failureReason),
		)
	case gitCheckoutSubcommandNameConstant:
		if containsArgument(arguments, gitCreateBranchFlagConstant) {
			branchName := formatter.ensureValue(findFlagValue(arguments, gitCreateBranchFlagConstant))
			startPoint := formatter.ensureValue(formatter.lastArgument(arguments))
			return selectStageMessage(stage,
				fmt.Sprintf(gitCheckoutCreateStartTemplateConstant, branchName, startPoint, workingDirectory),
				fmt.Sprintf(gitCheckoutCreateSuccessTemplateConstant, branchName, startPoint, workingDirectory),
				fmt.Sprintf(gitCheckoutCreateFailureTemplateConstant, branchName, startPoint, workingDirectory, result.ExitCode, failureSuffix),
				fmt.Sprintf(gitCheckoutCreateExecutionFailureTemplate, branchName, startPoint, workingDirectory, failureReason),
			)
		}
		branchName := formatter.ensureValue(formatter.firstOperand(arguments))
		return selectStageMessage(stage,
			fmt.Sprintf(gitCheckoutStartTemplateConstant, workingDirectory, branchName),
			fmt.Sprintf(gitCheckoutSuccessTemplateConstant, workingDirectory, branchName),
			fmt.Sprintf(gitCheckoutFailureTemplateConstant, workingDirectory, branchName, result.ExitCode, failureSuffix),
			fmt.Sprintf(gitCheckoutExecutionFailureTemplateConstant, workingDirectory, branchName, failureReason),
		)
	case gitMergeSubcommandNameConstant:
		target := formatter.ensureValue(formatter.firstOperand(arguments))
		return selectStageMessage(stage,
			fmt.Sprintf(gitMergeStartTemplateConstant, target, workingDirectory),
			fmt.Sprintf(gitMergeSuccessTemplateConstant, target, workingDirectory),
			fmt.Sprintf(gitMergeFailureTemplateConstant, target, workingDirectory, result.ExitCode, failureSuffix),
			fmt.Sprintf(gitMergeExecutionFailureTemplateConstant, target, workingDirectory, failureReason),
		)
	case gitRebaseSubcommandNameConstant:
		upstream := formatter.ensureValue(formatter.firstOperand(arguments))
		return selectStageMessage(stage,
			fmt.Sprintf(gitRebaseStartTemplateConstant, upstream, workingDirectory),
			fmt.Sprintf(gitRebaseSuccessTemplateConstant, upstream, workingDirectory),
			fmt.Sprintf(gitRebaseFailureTemplateConstant, upstream, workingDirectory, result.ExitCode, failureSuffix),
			fmt.Sprintf(gitRebaseExecutionFailureTemplateConstant, upstream, workingDirectory, failureReason),
		)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func selectStageMessage(stage messageStage, started string, succeeded string, failed string, executionFailed string) string {
	switch stage {
	case messageStageStart:
		return started
	case messageStageSuccess:
		return succeeded
	case messageStageFailure:
		return failed
	case messageStageExecutionFailure:
		return executionFailed
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	return selectStageMessage(stage,
		fmt.Sprintf(genericStartTemplateConstant, commandLabel),
		fmt.Sprintf(genericSuccessTemplateConstant, commandLabel),
		fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
		fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure)),
	)
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	workingDirectorySuffix := formatter.formatWorkingDirectorySuffix(command)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, workingDirectorySuffix)
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

// firstOperand returns the first non-flag argument after the subcommand.
func (formatter CommandMessageFormatter) firstOperand(arguments []string) string {
	for _, argument := range arguments[1:] {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		return trimmed
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) lastArgument(arguments []string) string {
	if len(arguments) < 2 {
		return emptyStringConstant
	}
	return strings.TrimSpace(arguments[len(arguments)-1])
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}

func findFlagValue(arguments []string, flag string) string {
	for index := 0; index < len(arguments)-1; index++ {
		if strings.TrimSpace(arguments[index]) == flag {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return emptyStringConstant
}

func countListedBranches(output string) int {
	count := 0
	for _, line := range strings.Split(output, remoteBranchListingLineSeparatorConstant) {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) == 0 || strings.Contains(trimmed, remoteBranchListingSymbolicReferenceMarkerConst) {
			continue
		}
		count++
	}
	return count
}
