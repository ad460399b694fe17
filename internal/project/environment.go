package project

import (
	"os"

	"github.com/mattn/go-isatty"
)

// ciEnvVars mark continuous integration environments.
var ciEnvVars = []string{
	"CI",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"JENKINS_HOME",
	"CIRCLECI",
	"TRAVIS",
	"BITBUCKET_BUILD_NUMBER",
	"BUILDKITE",
}

// IsCI reports whether the process runs under CI or without a terminal.
func IsCI() bool {
	return anyEnvSet(ciEnvVars) || !isatty.IsTerminal(os.Stdout.Fd())
}

// IsAutomated reports whether interactive prompts must be avoided.
func IsAutomated() bool {
	return IsCI() || os.Getenv("TESTRIG_HEADLESS") != ""
}

func anyEnvSet(names []string) bool {
	for _, name := range names {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}
