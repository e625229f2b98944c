package perfbisect

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetConfigFromReader(t *testing.T) {
	yml := `
repository: "/home/user/slang"
threshold: 1.5
logDir: "my_logs"
stageTimeout: 600
primaryBuild:
  name: slang
  dir: "/home/user/slang"
  command: "cmake --build build --config Release -j10 --clean-first"
  tolerateFailure: true
secondaryBuild:
  name: sgl
  dir: "/home/user/sgl"
  command: "cmake --build build/windows-vs2022 --config Release -j10"
probe:
  dir: "/home/user/slangpy/examples/simplified-splatting"
  command: "python3 main.py"
  marker: "renderBlobsToTexture"
`

	config, err := GetConfigFromReader(strings.NewReader(yml))
	assert.Nil(t, err, "GetConfigFromReader returned an error")

	assert.Equal(t, "/home/user/slang", config.Repository, "Mismatch in config field")
	assert.Equal(t, 1.5, config.Threshold, "Mismatch in config field")
	assert.Equal(t, "my_logs", config.LogDir, "Mismatch in config field")
	assert.Equal(t, 600*time.Second, config.StageTimeout, "Mismatch in config field")
	assert.Equal(t, "slang", config.PrimaryBuild.Name, "Mismatch in config field")
	assert.True(t, config.PrimaryBuild.TolerateFailure, "Mismatch in config field")
	assert.Equal(t, "cmake --build build/windows-vs2022 --config Release -j10", config.SecondaryBuild.Command, "Mismatch in config field")
	assert.False(t, config.SecondaryBuild.TolerateFailure, "Mismatch in config field")
	assert.Equal(t, "python3 main.py", config.Probe.Command, "Mismatch in config field")
	assert.Equal(t, "renderBlobsToTexture", config.Probe.Marker, "Mismatch in config field")
}

func TestGetConfigFromReaderDefaults(t *testing.T) {
	yml := `
repository: "/repo"
primaryBuild:
  name: slang
  dir: "/slang"
  command: "make slang"
secondaryBuild:
  name: sgl
  dir: "/sgl"
  command: "make sgl"
probe:
  dir: "/probe"
  command: "python3 main.py"
`

	config, err := GetConfigFromReader(strings.NewReader(yml))
	assert.Nil(t, err, "GetConfigFromReader returned an error")

	assert.Equal(t, 1.0, config.Threshold, "Wrong default threshold")
	assert.Equal(t, "bisect_logs", config.LogDir, "Wrong default log directory")
	assert.Equal(t, "renderBlobsToTexture", config.Probe.Marker, "Wrong default marker")
	assert.Equal(t, time.Duration(0), config.StageTimeout, "Stage timeout should default to unbounded")
	assert.False(t, config.PrimaryBuild.TolerateFailure, "Tolerating build failures should be off by default")
}

func TestGetConfigFromReaderValidation(t *testing.T) {
	t.Run("Missing repository is rejected", func(t *testing.T) {
		yml := `
primaryBuild:
  dir: "/slang"
  command: "make slang"
secondaryBuild:
  dir: "/sgl"
  command: "make sgl"
probe:
  dir: "/probe"
  command: "python3 main.py"
`
		_, err := GetConfigFromReader(strings.NewReader(yml))
		assert.NotNil(t, err, "Config without repository was accepted")
	})

	t.Run("Incomplete build config is rejected", func(t *testing.T) {
		yml := `
repository: "/repo"
primaryBuild:
  name: slang
  dir: "/slang"
secondaryBuild:
  dir: "/sgl"
  command: "make sgl"
probe:
  dir: "/probe"
  command: "python3 main.py"
`
		_, err := GetConfigFromReader(strings.NewReader(yml))
		assert.NotNil(t, err, "Config with commandless build was accepted")
	})

	t.Run("Incomplete probe config is rejected", func(t *testing.T) {
		yml := `
repository: "/repo"
primaryBuild:
  dir: "/slang"
  command: "make slang"
secondaryBuild:
  dir: "/sgl"
  command: "make sgl"
probe:
  marker: "renderBlobsToTexture"
`
		_, err := GetConfigFromReader(strings.NewReader(yml))
		assert.NotNil(t, err, "Config with commandless probe was accepted")
	})

	t.Run("Invalid yaml is rejected", func(t *testing.T) {
		_, err := GetConfigFromReader(strings.NewReader("\trepository: [\n"))
		assert.NotNil(t, err, "Invalid yaml was accepted")
	})
}
