package checkout

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/gfc/internal/issues"
)

func noWait(context.Context, time.Duration) error {
	return nil
}

func buildTestCommand(t *testing.T, executor *stubGitExecutor, configuration CommandConfiguration) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	builder := CommandBuilder{
		LoggerProvider:        func() *zap.Logger { return zap.NewNop() },
		GitExecutor:           executor,
		ConfigurationProvider: func() CommandConfiguration { return configuration },
		Wait:                  noWait,
	}
	command, buildError := builder.Build()
	require.NoError(t, buildError)

	output := &bytes.Buffer{}
	command.SetOut(output)
	command.SetErr(&bytes.Buffer{})
	command.SetContext(context.Background())
	command.SilenceUsage = true
	command.SilenceErrors = true
	return command, output
}

func TestCommandBuilds(t *testing.T) {
	builder := CommandBuilder{}
	command, err := builder.Build()
	require.NoError(t, err)
	require.Equal(t, "gfc", command.Name())
	require.True(t, command.Flags().Lookup("select-branch").Hidden)
	require.True(t, command.Flags().Lookup("rebase").Hidden)
	require.False(t, command.Flags().Lookup("remote-name").Hidden)
}

func TestCommandPrintsOutcome(t *testing.T) {
	testCases := []struct {
		name              string
		arguments         []string
		configuration     CommandConfiguration
		responses         []stubGitResponse
		expectedOutput    string
		expectedFetchArgs []string
	}{
		{
			name:              "Created",
			arguments:         []string{"42"},
			configuration:     DefaultCommandConfiguration(),
			responses:         []stubGitResponse{succeed(""), succeed(twoBranchListing), failWithExitCode(128, "", "show"), succeed("")},
			expectedOutput:    "✔ Successfully created and moved to branch 42-fix-bug.\n",
			expectedFetchArgs: []string{"fetch", "origin"},
		},
		{
			name:              "SwitchedWithHashPrefix",
			arguments:         []string{"#42"},
			configuration:     DefaultCommandConfiguration(),
			responses:         []stubGitResponse{succeed(""), succeed(twoBranchListing), succeed(""), succeed(""), succeed("")},
			expectedOutput:    "✔ Successfully switched to local branch 42-fix-bug.\n",
			expectedFetchArgs: []string{"fetch", "origin"},
		},
		{
			name:              "UpdatedWithRebaseFlag",
			arguments:         []string{"--rebase", "42"},
			configuration:     DefaultCommandConfiguration(),
			responses:         []stubGitResponse{succeed(""), succeed(twoBranchListing), succeed(""), succeed(""), failWithExitCode(128, "", "merge"), succeed("")},
			expectedOutput:    "✔ Successfully updated local branch 42-fix-bug.\n",
			expectedFetchArgs: []string{"fetch", "origin"},
		},
		{
			name:              "UpdatedWithConfiguredRebase",
			arguments:         []string{"42"},
			configuration:     CommandConfiguration{RemoteName: "origin", Rebase: true},
			responses:         []stubGitResponse{succeed(""), succeed(twoBranchListing), succeed(""), succeed(""), failWithExitCode(128, "", "merge"), succeed("")},
			expectedOutput:    "✔ Successfully updated local branch 42-fix-bug.\n",
			expectedFetchArgs: []string{"fetch", "origin"},
		},
		{
			name:              "ConfiguredRemote",
			arguments:         []string{"5"},
			configuration:     CommandConfiguration{RemoteName: "upstream"},
			responses:         []stubGitResponse{succeed(""), succeed("upstream/5-docs"), failWithExitCode(128, "", "show"), succeed("")},
			expectedOutput:    "✔ Successfully created and moved to branch 5-docs.\n",
			expectedFetchArgs: []string{"fetch", "upstream"},
		},
		{
			name:              "CamelCaseRemoteFlag",
			arguments:         []string{"--remoteName", "upstream", "5"},
			configuration:     DefaultCommandConfiguration(),
			responses:         []stubGitResponse{succeed(""), succeed("upstream/5-docs"), failWithExitCode(128, "", "show"), succeed("")},
			expectedOutput:    "✔ Successfully created and moved to branch 5-docs.\n",
			expectedFetchArgs: []string{"fetch", "upstream"},
		},
		{
			name:              "SelectBranchFlag",
			arguments:         []string{"42", "--select-branch", "42-second"},
			configuration:     DefaultCommandConfiguration(),
			responses:         []stubGitResponse{succeed(""), succeed("origin/42-fix-bug\norigin/42-second"), failWithExitCode(128, "", "show"), succeed("")},
			expectedOutput:    "✔ Successfully created and moved to branch 42-second.\n",
			expectedFetchArgs: []string{"fetch", "origin"},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			executor := &stubGitExecutor{responses: testCase.responses}
			command, output := buildTestCommand(t, executor, testCase.configuration)
			command.SetArgs(testCase.arguments)

			require.NoError(t, command.Execute())
			require.Equal(t, testCase.expectedOutput, output.String())
			require.Equal(t, testCase.expectedFetchArgs, executor.recorded[0].Arguments)
		})
	}
}

func TestCommandRejectsInvalidIssueNumberBeforeRunningGit(t *testing.T) {
	executor := &stubGitExecutor{}
	command, output := buildTestCommand(t, executor, DefaultCommandConfiguration())
	command.SetArgs([]string{"fix-bug"})

	executionError := command.Execute()
	require.ErrorIs(t, executionError, issues.ErrInvalidIssueNumber)
	require.Empty(t, executor.recorded)
	require.Empty(t, output.String())
}

func TestCommandRejectsUnsafeRemoteNameBeforeRunningGit(t *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		configuration CommandConfiguration
	}{
		{
			name:          "OptionFlag",
			arguments:     []string{"42", "--remote-name=--upload-pack=touch pwned; git-upload-pack"},
			configuration: DefaultCommandConfiguration(),
		},
		{
			name:          "ShortOptionFlag",
			arguments:     []string{"42", "--remote-name", "-v"},
			configuration: DefaultCommandConfiguration(),
		},
		{
			name:          "ConfiguredRemote",
			arguments:     []string{"42"},
			configuration: CommandConfiguration{RemoteName: "--upload-pack=id"},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			executor := &stubGitExecutor{}
			command, output := buildTestCommand(t, executor, testCase.configuration)
			command.SetArgs(testCase.arguments)

			executionError := command.Execute()
			require.ErrorIs(t, executionError, issues.ErrInvalidRemoteName)
			require.Empty(t, executor.recorded)
			require.Empty(t, output.String())
		})
	}
}

func TestCommandRequiresExactlyOneArgument(t *testing.T) {
	for _, arguments := range [][]string{{}, {"1", "2"}} {
		executor := &stubGitExecutor{}
		command, _ := buildTestCommand(t, executor, DefaultCommandConfiguration())
		command.SetArgs(arguments)

		require.Error(t, command.Execute())
		require.Empty(t, executor.recorded)
	}
}

func TestCommandRelaunchHintRepeatsRemote(t *testing.T) {
	executor := &stubGitExecutor{responses: []stubGitResponse{
		succeed(""),
		succeed("upstream/42-fix-bug"),
		succeed(""),
		succeed(""),
		failWithExitCode(128, "", "merge"),
	}}
	command, _ := buildTestCommand(t, executor, CommandConfiguration{RemoteName: "origin", Rebase: true})
	command.SetArgs([]string{"42", "--remote-name", "upstream", "--rebase=no"})

	executionError := command.Execute()
	require.ErrorIs(t, executionError, ErrNonFastForward)
	require.Contains(t, executionError.Error(), "Rebase using: gfc 42 --remote-name upstream --rebase")
	require.Len(t, executor.recorded, 5)
}

func TestCommandHonorsColorEnvironment(t *testing.T) {
	testCases := []struct {
		name           string
		environment    map[string]string
		expectedOutput string
		expectColored  bool
	}{
		{name: "NoColor", environment: map[string]string{"NO_COLOR": "1", "CLICOLOR_FORCE": "1"}, expectedOutput: "✔ Successfully created and moved to branch 42-fix-bug.\n"},
		{name: "Forced", environment: map[string]string{"CLICOLOR_FORCE": "1"}, expectColored: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			executor := &stubGitExecutor{responses: []stubGitResponse{succeed(""), succeed(twoBranchListing), failWithExitCode(128, "", "show"), succeed("")}}
			builder := CommandBuilder{
				GitExecutor:           executor,
				ConfigurationProvider: DefaultCommandConfiguration,
				Wait:                  noWait,
				EnvironmentLookup: func(key string) (string, bool) {
					value, present := testCase.environment[key]
					return value, present
				},
			}
			command, buildError := builder.Build()
			require.NoError(t, buildError)

			output := &bytes.Buffer{}
			command.SetOut(output)
			command.SetErr(&bytes.Buffer{})
			command.SetContext(context.Background())
			command.SetArgs([]string{"42"})

			require.NoError(t, command.Execute())
			if testCase.expectColored {
				require.True(t, strings.HasPrefix(output.String(), "\x1b["))
				require.Contains(t, output.String(), "42-fix-bug")
				return
			}
			require.Equal(t, testCase.expectedOutput, output.String())
		})
	}
}

func TestDescribeOutcome(t *testing.T) {
	require.Equal(t, "Successfully created and moved to branch 1-a.", describeOutcome(Result{LocalBranch: "1-a", Outcome: OutcomeCreated}))
	require.Equal(t, "Successfully switched to local branch 1-a.", describeOutcome(Result{LocalBranch: "1-a", Outcome: OutcomeSwitched}))
	require.Equal(t, "Successfully updated local branch 1-a.", describeOutcome(Result{LocalBranch: "1-a", Outcome: OutcomeUpdated}))
}
