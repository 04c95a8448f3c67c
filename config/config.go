package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// BuildConfig holds the external build commands run in each problem directory
type BuildConfig struct {
	StatementCommand  []string `mapstructure:"statement_command" validate:"required,min=1,dive,required"`
	CheckNotesCommand []string `mapstructure:"check_notes_command" validate:"required,min=1,dive,required"`
	NotesCommand      []string `mapstructure:"notes_command" validate:"required,min=1,dive,required"`
	StatementArtifact string   `mapstructure:"statement_artifact" validate:"required"`
	NotesArtifact     string   `mapstructure:"notes_artifact" validate:"required"`
}

// Config represents the structure of the configuration file
type Config struct {
	CacheDir          string       `mapstructure:"cache_dir" validate:"required"`
	StatementFile     string       `mapstructure:"statement_file" validate:"required"`
	ExcludedCourses   []string     `mapstructure:"excluded_courses"`
	ExcludedContests  []string     `mapstructure:"excluded_contests"`
	SolutionExtension string       `mapstructure:"solution_extension" validate:"required,startswith=."`
	VocabularyFile    string       `mapstructure:"vocabulary_file"`
	LogLevel          string       `mapstructure:"log_level" validate:"oneof=trace debug info warn error"`
	LogFormat         string       `mapstructure:"log_format" validate:"oneof=colorful json"`
	Theme             string       `mapstructure:"theme"`
	Build             *BuildConfig `mapstructure:"build" validate:"required"`
}

// DefaultConfig values
var DefaultConfig = Config{
	CacheDir:          ".cache/build",
	StatementFile:     "problem.tex",
	ExcludedCourses:   []string{"tools"},
	ExcludedContests:  []string{"templates"},
	SolutionExtension: ".py",
	VocabularyFile:    "",
	LogLevel:          "info",
	LogFormat:         "colorful",
	Theme:             "dracula",
	Build: &BuildConfig{
		StatementCommand:  []string{"make", "pdf"},
		CheckNotesCommand: []string{"make", "check-notes"},
		NotesCommand:      []string{"make", "notes"},
		StatementArtifact: "build/problem/problem.pdf",
		NotesArtifact:     "build/{name}-notes.pdf",
	},
}

// ConfigName is the file looked up in the repository root, as .yaml or .json
const ConfigName = "problem-list"

// EnvPrefix prefixes every environment variable read by the tool
const EnvPrefix = "PROBLEM_LIST"

var configValidate = validator.New()

// cfgFile holds the path to the configuration file (set via CLI)
var cfgFile string

// LoadConfigs initializes the configuration from file, flags, and environment
// variables, and returns the final config. Without --config the file is
// looked up in dir; a missing file means defaults.
func LoadConfigs(v *viper.Viper, rootCmd *cobra.Command, dir string) (*Config, error) {
	var config *Config

	setDefaults(v)

	bindEnv(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName(ConfigName)
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file in %s: %w", dir, err)
			}
		}
	}

	bindFlags(v, rootCmd)

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := configValidate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// CacheRoot resolves the cache directory against the repository root
func (c *Config) CacheRoot(repoRoot string) string {
	if filepath.IsAbs(c.CacheDir) {
		return c.CacheDir
	}
	return filepath.Join(repoRoot, c.CacheDir)
}

// VocabularyPath resolves the vocabulary file against the repository root.
// An empty result selects the built-in vocabulary.
func (c *Config) VocabularyPath(repoRoot string) string {
	if c.VocabularyFile == "" || filepath.IsAbs(c.VocabularyFile) {
		return c.VocabularyFile
	}
	return filepath.Join(repoRoot, c.VocabularyFile)
}

// setDefaults sets all default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("cache_dir", DefaultConfig.CacheDir)
	v.SetDefault("statement_file", DefaultConfig.StatementFile)
	v.SetDefault("excluded_courses", DefaultConfig.ExcludedCourses)
	v.SetDefault("excluded_contests", DefaultConfig.ExcludedContests)
	v.SetDefault("solution_extension", DefaultConfig.SolutionExtension)
	v.SetDefault("vocabulary_file", DefaultConfig.VocabularyFile)
	v.SetDefault("log_level", DefaultConfig.LogLevel)
	v.SetDefault("log_format", DefaultConfig.LogFormat)
	v.SetDefault("theme", DefaultConfig.Theme)
	v.SetDefault("build.statement_command", DefaultConfig.Build.StatementCommand)
	v.SetDefault("build.check_notes_command", DefaultConfig.Build.CheckNotesCommand)
	v.SetDefault("build.notes_command", DefaultConfig.Build.NotesCommand)
	v.SetDefault("build.statement_artifact", DefaultConfig.Build.StatementArtifact)
	v.SetDefault("build.notes_artifact", DefaultConfig.Build.NotesArtifact)
}

// bindEnv explicitly binds environment variables to configuration keys.
// List values are comma separated.
func bindEnv(v *viper.Viper) {
	for _, key := range []string{
		"cache_dir",
		"statement_file",
		"excluded_courses",
		"excluded_contests",
		"solution_extension",
		"vocabulary_file",
		"log_level",
		"log_format",
		"theme",
		"build.statement_command",
		"build.check_notes_command",
		"build.notes_command",
		"build.statement_artifact",
		"build.notes_artifact",
	} {
		_ = v.BindEnv(key, EnvName(key))
	}
}

// EnvName is the environment variable bound to a configuration key
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// bindFlags binds the CLI flags to configuration values.
func bindFlags(v *viper.Viper, rootCmd *cobra.Command) {
	_ = v.BindPFlag("cache_dir", rootCmd.PersistentFlags().Lookup("cache_dir"))
	_ = v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log_level"))
	_ = v.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log_format"))
	_ = v.BindPFlag("theme", rootCmd.PersistentFlags().Lookup("theme"))
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to a configuration file (JSON or YAML). Defaults to problem-list.yaml or problem-list.json in the repository root.")

	rootCmd.PersistentFlags().String("cache_dir", DefaultConfig.CacheDir, "Cache directory for build artifacts, relative to the repository root unless absolute.")
	rootCmd.PersistentFlags().String("log_level", DefaultConfig.LogLevel, "Log level: trace, debug, info, warn or error.")
	rootCmd.PersistentFlags().String("log_format", DefaultConfig.LogFormat, "Log format: 'colorful' for terminals or 'json' for CI logs.")
	rootCmd.PersistentFlags().String("theme", DefaultConfig.Theme, "Chroma theme used by the show command (e.g., 'dracula', 'monokai').")

	rootCmd.Flags().BoolP("version", "v", false, "Specifies the version of the application.")
}
