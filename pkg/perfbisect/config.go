package perfbisect

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type buildYaml struct {
	Name    string `yaml:"name"`
	Dir     string `yaml:"dir"`
	Command string `yaml:"command"`

	TolerateFailure bool `yaml:"tolerateFailure"`
}

type probeYaml struct {
	Dir     string `yaml:"dir"`
	Command string `yaml:"command"`

	Marker string `yaml:"marker" default:"renderBlobsToTexture"`
}

type configYaml struct {
	Repository string `yaml:"repository"`

	Threshold float64 `yaml:"threshold" default:"1.0"`

	LogDir string `yaml:"logDir" default:"bisect_logs"`

	StageTimeout int64 `yaml:"stageTimeout"`

	PrimaryBuild   buildYaml `yaml:"primaryBuild"`
	SecondaryBuild buildYaml `yaml:"secondaryBuild"`

	Probe probeYaml `yaml:"probe"`
}

// A BuildConfig describes how one of the dependent projects is built.
type BuildConfig struct {
	Name    string // The name of the project, used to tag log phases
	Dir     string // The working directory in which Command is run
	Command string // The fixed build command

	// Whether a failed build should be reported as a success.
	// The legacy tooling behaved this way for the primary build only, so setting
	// this on the primary build reproduces its behavior. Off by default.
	TolerateFailure bool
}

// A ProbeConfig describes the external program measuring the render latency.
type ProbeConfig struct {
	Dir     string // The working directory in which Command is run
	Command string // The command running the measurement

	Marker string // The token whose line carries the latency, in the form "<marker>: <float>s"
}

// A Config holds everything needed to run a bisection session.
type Config struct {
	Repository string // The path to the repository being bisected

	Threshold float64 // The latency in seconds at or above which a commit is considered bad

	LogDir string // The directory transcripts, the main log and run summaries are written to

	StageTimeout time.Duration // The maximum duration of any single external command, or 0 for no limit

	PrimaryBuild   BuildConfig // The build of the repository being bisected
	SecondaryBuild BuildConfig // The build of the dependent project

	Probe ProbeConfig // The performance probe classifying a built commit
}

// GetConfigFromFile reads in a config in yaml format from the file at path and
// initializes the corresponding config struct.
func GetConfigFromFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return GetConfigFromReader(file)
}

// GetConfigFromReader reads in a config in yaml format from a reader and
// initializes the corresponding config struct.
func GetConfigFromReader(r io.Reader) (*Config, error) {
	var config configYaml

	// Read in yaml
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&config); err != nil {
		return nil, err
	}
	if err := defaults.Set(&config); err != nil {
		return nil, err
	}

	if config.Repository == "" {
		return nil, fmt.Errorf("no repository supplied in config")
	}
	for _, build := range []buildYaml{config.PrimaryBuild, config.SecondaryBuild} {
		if build.Dir == "" || build.Command == "" {
			return nil, fmt.Errorf("incomplete build config for project %q, dir and command are required", build.Name)
		}
	}
	if config.Probe.Dir == "" || config.Probe.Command == "" {
		return nil, fmt.Errorf("incomplete probe config, dir and command are required")
	}

	// Convert to Config struct
	return &Config{
		Repository: config.Repository,

		Threshold: config.Threshold,

		LogDir: config.LogDir,

		StageTimeout: time.Duration(config.StageTimeout) * time.Second,

		PrimaryBuild:   buildConfigFromYaml(config.PrimaryBuild),
		SecondaryBuild: buildConfigFromYaml(config.SecondaryBuild),

		Probe: ProbeConfig{
			Dir:     config.Probe.Dir,
			Command: config.Probe.Command,
			Marker:  config.Probe.Marker,
		},
	}, nil
}

func buildConfigFromYaml(build buildYaml) BuildConfig {
	return BuildConfig{
		Name:    build.Name,
		Dir:     build.Dir,
		Command: build.Command,

		TolerateFailure: build.TolerateFailure,
	}
}
