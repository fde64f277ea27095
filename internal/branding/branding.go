// Package branding provides compile-time identity values for the shell.
//
// The values come from branding.yaml, which //go:embed bakes into the
// binary. Forks edit that file rather than the constants below.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName        string `yaml:"cli_name"`
	DisplayName    string `yaml:"display_name"`
	Description    string `yaml:"description"`
	HomeDir        string `yaml:"home_dir"`
	EnvPrefix      string `yaml:"env_prefix"`
	GoModule       string `yaml:"go_module"`
	GitHubRepo     string `yaml:"github_repo"`
	DefaultBranch  string `yaml:"default_branch"`
	CommandsFolder string `yaml:"commands_folder"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing or empty.
		defaults = brand{
			CLIName:        "flame",
			DisplayName:    "Flame",
			Description:    "Extensible command shell with a remote package manager",
			HomeDir:        ".flame",
			EnvPrefix:      "FLAME",
			GoModule:       "github.com/randompixle/Flame",
			GitHubRepo:     "randompixle/Flame",
			DefaultBranch:  "main",
			CommandsFolder: "FlameCommands",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "flame").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name (e.g., "Flame").
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".flame").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "FLAME").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path.
func GoModule() string { load(); return defaults.GoModule }

// GitHubRepo returns the "owner/repo" string that hosts the shared commands.
func GitHubRepo() string { load(); return defaults.GitHubRepo }

// DefaultBranch returns the branch used when a repository locator omits one.
func DefaultBranch() string { load(); return defaults.DefaultBranch }

// CommandsFolder returns the folder inside a repository that holds
// shareable command units.
func CommandsFolder() string { load(); return defaults.CommandsFolder }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("HOME") → "FLAME_HOME".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
