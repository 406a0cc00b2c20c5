package config

import (
	"errors"
	"testing"

	"github.com/matryer/is"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/tacusci/logging/v2"
	"github.com/tauraamui/patterncam/pkg/configdef"
)

type CreateConfigTestSuite struct {
	suite.Suite
	is                   *is.I
	configCreateResolver configdef.CreateResolver
	fs                   afero.Fs
	resetConfigDir       func() (string, error)
}

func (suite *CreateConfigTestSuite) SetupSuite() {
	logging.CurrentLoggingLevel = logging.SilentLevel
	suite.is = is.New(suite.T())
	suite.fs = afero.NewMemMapFs()
	suite.configCreateResolver = DefaultCreateResolver()

	// use in memory FS in implementation for tests
	fs = suite.fs
	suite.resetConfigDir = userConfigDir
	userConfigDir = func() (string, error) { return "/testroot", nil }
}

func (suite *CreateConfigTestSuite) TearDownSuite() {
	fs = afero.NewOsFs()
	userConfigDir = suite.resetConfigDir
	logging.CurrentLoggingLevel = logging.WarnLevel
}

func (suite *CreateConfigTestSuite) TearDownTest() {
	suite.is.NoErr(suite.fs.RemoveAll("/testroot"))
}

func (suite *CreateConfigTestSuite) TestConfigCreate() {
	require.NoError(suite.T(), suite.configCreateResolver.Create())
	loadedConfig, err := suite.configCreateResolver.Resolve()

	assert.NoError(suite.T(), err)
	assert.EqualValues(suite.T(), configdef.Values{
		Device:        "0",
		Backend:       "opencv",
		ModelsDir:     "/usr/share/opencv4/haarcascades",
		DefaultModel:  "haarcascade_frontalface_default",
		StopTimeoutMS: 2000,
		DisplayWidth:  720,
		DisplayHeight: 480,
	}, loadedConfig)
}

func (suite *CreateConfigTestSuite) TestConfigCreateMakesParentDirs() {
	require.NoError(suite.T(), suite.configCreateResolver.Create())
	info, err := suite.fs.Stat("/testroot/tacusci/patterncam")
	require.NoError(suite.T(), err)
	assert.True(suite.T(), info.IsDir())
}

func (suite *CreateConfigTestSuite) TestConfigCreateFailsDueToAlreadyExisting() {
	suite.is.NoErr(suite.configCreateResolver.Create())
	err := suite.configCreateResolver.Create()
	suite.is.Equal(err.Error(), "config file already exists")
	suite.is.True(errors.Is(err, configdef.ErrConfigAlreadyExists))
}

func (suite *CreateConfigTestSuite) TestConfigCreateFailsOnReadOnlyFS() {
	fs = afero.NewReadOnlyFs(afero.NewMemMapFs())
	defer func() { fs = suite.fs }()

	err := suite.configCreateResolver.Create()
	assert.Error(suite.T(), err)
	assert.False(suite.T(), errors.Is(err, configdef.ErrConfigAlreadyExists))
}

func TestCreateConfigTestSuite(t *testing.T) {
	suite.Run(t, &CreateConfigTestSuite{})
}
