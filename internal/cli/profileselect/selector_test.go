package profileselect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snackshop-dev/snackadmin/internal/cli/config"
	"github.com/snackshop-dev/snackadmin/internal/cli/forms"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvConfigDir, t.TempDir())
}

func TestProfiles_IncludesLocal(t *testing.T) {
	file := &config.FileConfig{Profiles: []config.Profile{{Name: "prod", APIURL: "https://api.shop.vn/api"}}}

	profiles := Profiles(file)
	require.Len(t, profiles, 2)
	assert.Equal(t, config.DefaultProfile, profiles[0].Name)
	assert.Equal(t, config.DefaultAPIURL, profiles[0].APIURL)
	assert.Equal(t, config.DefaultProfile, Selected(file))
}

func TestAddAndUse(t *testing.T) {
	isolate(t)

	require.NoError(t, Add("prod", "https://api.shop.vn/api/"))
	require.NoError(t, Add("prod", "https://api2.shop.vn/api"))

	p, err := Use("prod")
	require.NoError(t, err)
	assert.Equal(t, "https://api2.shop.vn/api", p.APIURL)

	file, err := config.LoadFile()
	require.NoError(t, err)
	assert.Equal(t, "prod", file.SelectedProfile)
	assert.Len(t, file.Profiles, 1)

	_, err = Use(config.DefaultProfile)
	require.NoError(t, err)
	file, err = config.LoadFile()
	require.NoError(t, err)
	assert.Equal(t, config.DefaultProfile, file.SelectedProfile)
	assert.Len(t, file.Profiles, 2)
}

func TestUse_Unknown(t *testing.T) {
	isolate(t)

	_, err := Use("staging")
	assert.ErrorIs(t, err, config.ErrProfileNotFound)
}

func TestAdd_InvalidURL(t *testing.T) {
	isolate(t)

	assert.Error(t, Add("prod", "api.shop.vn"))
	assert.Error(t, Add("", "https://api.shop.vn"))
}

func TestPrompt(t *testing.T) {
	file := &config.FileConfig{
		SelectedProfile: "prod",
		Profiles:        []config.Profile{{Name: "prod", APIURL: "https://api.shop.vn/api"}},
	}

	p, err := Prompt(&forms.Scripted{Answers: []string{""}}, file)
	require.NoError(t, err)
	assert.Equal(t, "prod", p.Name)

	_, err = Prompt(&forms.Scripted{}, file)
	assert.ErrorIs(t, err, forms.ErrAborted)
}
