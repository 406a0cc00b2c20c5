package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/tacusci/logging/v2"
	"github.com/tauraamui/patterncam/pkg/configdef"
)

type LoadConfigTestSuite struct {
	suite.Suite
	configResolver configdef.Resolver
	fs             afero.Fs
	path           string
	resetConfigDir func() (string, error)
}

func (suite *LoadConfigTestSuite) SetupSuite() {
	logging.CurrentLoggingLevel = logging.SilentLevel

	suite.fs = afero.NewMemMapFs()
	suite.configResolver = DefaultResolver()

	// use in memory FS in implementation for tests
	fs = suite.fs
	suite.resetConfigDir = userConfigDir
	userConfigDir = func() (string, error) { return "/testroot", nil }
}

func (suite *LoadConfigTestSuite) TearDownSuite() {
	fs = afero.NewOsFs()
	userConfigDir = suite.resetConfigDir
	logging.CurrentLoggingLevel = logging.WarnLevel
}

func (suite *LoadConfigTestSuite) SetupTest() {
	path, err := resolveConfigPath()
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), suite.fs.MkdirAll(filepath.Dir(path), os.ModeDir|os.ModePerm))
	suite.path = path

	// can be overridden this so reset it back before
	// each test to ensure that it's an opt in thing per
	// individual test
	suite.overwriteTestConfig(
		`{
			"debug": true,
			"device": "/dev/video2",
			"backend": "mock",
			"models_dir": "/testroot/models",
			"default_model": "haarcascade_eye",
			"frame_interval_ms": 40,
			"stop_timeout_ms": 500,
			"display_width": 1280,
			"display_height": 720
		}`,
	)
}

func (suite *LoadConfigTestSuite) overwriteTestConfig(config string) {
	require.NoError(suite.T(), afero.WriteFile(suite.fs, suite.path, []byte(config), 0666))
}

func (suite *LoadConfigTestSuite) TearDownTest() {
	require.NoError(suite.T(), suite.fs.RemoveAll("/testroot"))
}

func (suite *LoadConfigTestSuite) TestResolveConfigPathFromUserConfigDir() {
	assert.Equal(suite.T(), "/testroot/tacusci/patterncam/config.json", suite.path)
}

func (suite *LoadConfigTestSuite) TestResolveConfigPathFromEnv() {
	os.Setenv("PATTERNCAM_CONFIG", "/elsewhere/config.json")
	defer os.Unsetenv("PATTERNCAM_CONFIG")

	path, err := resolveConfigPath()
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "/elsewhere/config.json", path)
}

func (suite *LoadConfigTestSuite) TestResolveConfigPathFailure() {
	reset := userConfigDir
	defer func() { userConfigDir = reset }()
	userConfigDir = func() (string, error) { return "", errors.New("$HOME is not defined") }

	_, err := suite.configResolver.Resolve()
	assert.EqualError(suite.T(), err, "unable to resolve config.json location: $HOME is not defined")
}

func (suite *LoadConfigTestSuite) TestLoadConfig() {
	config, err := suite.configResolver.Resolve()
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), configdef.Values{
		Debug:           true,
		Device:          "/dev/video2",
		Backend:         "mock",
		ModelsDir:       "/testroot/models",
		DefaultModel:    "haarcascade_eye",
		FrameIntervalMS: 40,
		StopTimeoutMS:   500,
		DisplayWidth:    1280,
		DisplayHeight:   720,
	}, config)
}

func (suite *LoadConfigTestSuite) TestLoadConfigFillsDefaults() {
	suite.overwriteTestConfig(`{"models_dir": "/testroot/models"}`)

	config, err := suite.configResolver.Resolve()
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), configdef.Values{
		Device:        "0",
		Backend:       "opencv",
		ModelsDir:     "/testroot/models",
		DefaultModel:  "haarcascade_frontalface_default",
		StopTimeoutMS: 2000,
		DisplayWidth:  720,
		DisplayHeight: 480,
	}, config)
}

func (suite *LoadConfigTestSuite) TestLoadConfigMissingFile() {
	require.NoError(suite.T(), suite.fs.Remove(suite.path))

	config, err := suite.configResolver.Resolve()
	require.Error(suite.T(), err)
	assert.Empty(suite.T(), config)
	assert.Contains(suite.T(), err.Error(), "unable to read from path /testroot/tacusci/patterncam/config.json")
}

func (suite *LoadConfigTestSuite) TestLoadConfigInvalidJSON() {
	suite.overwriteTestConfig(`{"debug" true,}`)

	config, err := suite.configResolver.Resolve()
	require.Error(suite.T(), err)
	assert.Empty(suite.T(), config)
	assert.EqualError(suite.T(), err, "parsing configuration error: invalid character 't' after object key")
}

func (suite *LoadConfigTestSuite) TestLoadConfigFailsValidationOnMissingModelsDir() {
	suite.overwriteTestConfig(`{"device": "0"}`)

	config, err := suite.configResolver.Resolve()
	require.Error(suite.T(), err)
	assert.Empty(suite.T(), config)
	assert.EqualError(suite.T(), err, `Validation error in field "ModelsDir" of type "string" using validator "empty=false"`)
}

func (suite *LoadConfigTestSuite) TestLoadConfigFailsValidationOnStopTimeout() {
	suite.overwriteTestConfig(`{"models_dir": "/testroot/models", "stop_timeout_ms": 60000}`)

	_, err := suite.configResolver.Resolve()
	assert.EqualError(suite.T(), err, `Validation error in field "StopTimeoutMS" of type "int" using validator "lte=10000"`)
}

func TestLoadConfigTestSuite(t *testing.T) {
	suite.Run(t, &LoadConfigTestSuite{})
}
