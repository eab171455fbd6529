package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime/debug"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/gfc/cmd/cli"
	"github.com/temirov/gfc/internal/checkout"
	"github.com/temirov/gfc/internal/execshell"
)

const (
	testConfigurationFileNameConstant = "config.yaml"
	testBranchListingConstant         = "origin/42-fix-bug\nupstream/42-fix-bug\norigin/main"
)

type stubGitExecutor struct {
	recorded  []execshell.CommandDetails
	responses map[string]execshell.ExecutionResult
	failures  map[string]int
}

func newStubGitExecutor() *stubGitExecutor {
	return &stubGitExecutor{
		responses: map[string]execshell.ExecutionResult{"branch": {StandardOutput: testBranchListingConstant}},
		failures:  map[string]int{"show": 128},
	}
}

func (executor *stubGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recorded = append(executor.recorded, details)
	subcommand := details.Arguments[0]
	if exitCode, failing := executor.failures[subcommand]; failing {
		return execshell.ExecutionResult{}, execshell.CommandFailedError{
			Command: execshell.ShellCommand{Name: execshell.CommandGit, Details: details},
			Result:  execshell.ExecutionResult{ExitCode: exitCode},
		}
	}
	return executor.responses[subcommand], nil
}

type stubBuildInfoProvider struct{}

func (stubBuildInfoProvider) Read() (*debug.BuildInfo, bool) {
	return &debug.BuildInfo{Main: debug.Module{Version: "v1.2.3"}}, true
}

type applicationHarness struct {
	executor    *stubGitExecutor
	output      *bytes.Buffer
	errorOutput *bytes.Buffer
	logOutput   *bytes.Buffer
	waits       []time.Duration
}

func runApplication(t *testing.T, arguments ...string) (*applicationHarness, error) {
	t.Helper()
	t.Setenv("GFC_CONFIG_SEARCH_PATH", t.TempDir())

	harness := &applicationHarness{
		executor:    newStubGitExecutor(),
		output:      &bytes.Buffer{},
		errorOutput: &bytes.Buffer{},
		logOutput:   &bytes.Buffer{},
	}
	application, applicationError := cli.NewApplication(
		cli.WithGitExecutor(harness.executor),
		cli.WithLogOutput(harness.logOutput),
		cli.WithSettleWait(func(_ context.Context, duration time.Duration) error {
			harness.waits = append(harness.waits, duration)
			return nil
		}),
		cli.WithVersionProvider(stubBuildInfoProvider{}),
	)
	require.NoError(t, applicationError)

	application.SetArgs(arguments)
	application.SetOutput(harness.output, harness.errorOutput)
	return harness, application.Execute()
}

func writeConfigurationFile(t *testing.T, content string) string {
	t.Helper()
	configurationFilePath := filepath.Join(t.TempDir(), testConfigurationFileNameConstant)
	require.NoError(t, os.WriteFile(configurationFilePath, []byte(content), 0o600))
	return configurationFilePath
}

func TestApplicationChecksOutIssueBranch(t *testing.T) {
	harness, executionError := runApplication(t, "42")
	require.NoError(t, executionError)

	require.Equal(t, "✔ Successfully created and moved to branch 42-fix-bug.\n", harness.output.String())
	require.Len(t, harness.executor.recorded, 4)
	require.Equal(t, []string{"fetch", "origin"}, harness.executor.recorded[0].Arguments)
	require.Equal(t, []string{"checkout", "-b", "42-fix-bug", "origin/42-fix-bug"}, harness.executor.recorded[3].Arguments)
	require.Equal(t, []time.Duration{150 * time.Millisecond, 150 * time.Millisecond, 150 * time.Millisecond, 150 * time.Millisecond}, harness.waits)
	require.Empty(t, harness.logOutput.String())
}

func TestApplicationConfigurationSources(t *testing.T) {
	testCases := []struct {
		name               string
		configuration      string
		environment        map[string]string
		extraArguments     []string
		expectedFetchArgs  []string
		expectedWaitCount  int
		expectedWaitLength time.Duration
	}{
		{
			name:               "ConfigurationFile",
			configuration:      "checkout:\n  remote: upstream\n  settle_delay: 1s\n",
			expectedFetchArgs:  []string{"fetch", "upstream"},
			expectedWaitCount:  4,
			expectedWaitLength: time.Second,
		},
		{
			name:              "EnvironmentOverridesFile",
			configuration:     "checkout:\n  remote: upstream\n",
			environment:       map[string]string{"GFC_CHECKOUT_REMOTE": "origin", "GFC_CHECKOUT_SETTLE_DELAY": "0s"},
			expectedFetchArgs: []string{"fetch", "origin"},
		},
		{
			name:               "FlagOverridesFile",
			configuration:      "checkout:\n  remote: origin\n",
			extraArguments:     []string{"--remote-name", "upstream"},
			expectedFetchArgs:  []string{"fetch", "upstream"},
			expectedWaitCount:  4,
			expectedWaitLength: 150 * time.Millisecond,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			for environmentName, environmentValue := range testCase.environment {
				t.Setenv(environmentName, environmentValue)
			}
			configurationFilePath := writeConfigurationFile(t, testCase.configuration)

			arguments := append([]string{"42", "--config", configurationFilePath}, testCase.extraArguments...)
			harness, executionError := runApplication(t, arguments...)
			require.NoError(t, executionError)

			require.Equal(t, testCase.expectedFetchArgs, harness.executor.recorded[0].Arguments)
			require.Len(t, harness.waits, testCase.expectedWaitCount)
			for _, wait := range harness.waits {
				require.Equal(t, testCase.expectedWaitLength, wait)
			}
		})
	}
}

func TestApplicationDebugLogging(t *testing.T) {
	harness, executionError := runApplication(t, "42", "--log-level", "debug", "--log-format", "structured")
	require.NoError(t, executionError)

	logOutput := harness.logOutput.String()
	require.Contains(t, logOutput, `"msg":"configuration initialized"`)
	require.Contains(t, logOutput, `"msg":"issue branch selected"`)
	require.Contains(t, logOutput, `"remote_branch":"origin/42-fix-bug"`)
}

func TestApplicationRejectsInvalidLoggingConfiguration(t *testing.T) {
	testCases := []struct {
		name            string
		arguments       []string
		expectedMessage string
	}{
		{name: "LogLevel", arguments: []string{"42", "--log-level", "verbose"}, expectedMessage: `invalid log level: invalid value "verbose": expected one of debug, info, warn, error`},
		{name: "LogFormat", arguments: []string{"42", "--log-format", "xml"}, expectedMessage: `invalid log format: invalid value "xml": expected one of structured, console`},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			harness, executionError := runApplication(t, testCase.arguments...)
			require.EqualError(t, executionError, testCase.expectedMessage)
			require.Empty(t, harness.executor.recorded)
		})
	}
}

func TestApplicationReportsCheckoutFailures(t *testing.T) {
	harness, executionError := runApplication(t, "7")
	require.ErrorIs(t, executionError, checkout.ErrNoBranchForIssue)
	require.Empty(t, harness.output.String())
	require.Len(t, harness.executor.recorded, 2)
}

func TestApplicationPrintsVersion(t *testing.T) {
	harness, executionError := runApplication(t, "--version")
	require.NoError(t, executionError)
	require.Equal(t, "gfc version: v1.2.3\n", harness.output.String())
	require.Empty(t, harness.executor.recorded)
}

func TestEmbeddedDefaultConfiguration(t *testing.T) {
	configurationData, configurationType := cli.EmbeddedDefaultConfiguration()
	require.Equal(t, "yaml", configurationType)

	var configuration struct {
		Common struct {
			LogLevel  string `yaml:"log_level"`
			LogFormat string `yaml:"log_format"`
		} `yaml:"common"`
		Checkout struct {
			Remote      string `yaml:"remote"`
			Rebase      bool   `yaml:"rebase"`
			SettleDelay string `yaml:"settle_delay"`
		} `yaml:"checkout"`
	}
	require.NoError(t, yaml.Unmarshal(configurationData, &configuration))

	require.Equal(t, "error", configuration.Common.LogLevel)
	require.Equal(t, "console", configuration.Common.LogFormat)
	require.Equal(t, "origin", configuration.Checkout.Remote)
	require.False(t, configuration.Checkout.Rebase)
	require.Equal(t, "150ms", configuration.Checkout.SettleDelay)
}
