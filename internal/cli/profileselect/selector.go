// Package profileselect manages which API profile the CLI talks to.
package profileselect

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/snackshop-dev/snackadmin/internal/cli/config"
	"github.com/snackshop-dev/snackadmin/internal/cli/forms"
)

// Profiles returns the configured profiles. The local profile is always available, pointing at
// the development API unless the file overrides it.
func Profiles(file *config.FileConfig) []config.Profile {
	out := append([]config.Profile(nil), file.Profiles...)
	if _, err := file.GetProfile(config.DefaultProfile); err != nil {
		out = append([]config.Profile{{Name: config.DefaultProfile, APIURL: config.DefaultAPIURL}}, out...)
	}
	return out
}

// Selected returns the name of the selected profile
func Selected(file *config.FileConfig) string {
	if file.SelectedProfile == "" {
		return config.DefaultProfile
	}
	return file.SelectedProfile
}

// Use makes name the selected profile and saves the config
func Use(name string) (*config.Profile, error) {
	file, err := config.LoadFile()
	if err != nil {
		return nil, err
	}

	profile, err := find(file, name)
	if err != nil {
		return nil, err
	}

	file.SelectedProfile = profile.Name
	if err := config.SaveFile(file); err != nil {
		return nil, err
	}
	return profile, nil
}

// Add creates or updates a profile
func Add(name, apiURL string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("profile name is required")
	}
	u, err := url.Parse(apiURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API URL %q, expected http(s)://host/path", apiURL)
	}

	file, err := config.LoadFile()
	if err != nil {
		return err
	}

	apiURL = strings.TrimRight(apiURL, "/")
	if p, err := file.GetProfile(name); err == nil {
		p.APIURL = apiURL
	} else {
		file.Profiles = append(file.Profiles, config.Profile{Name: name, APIURL: apiURL})
	}
	return config.SaveFile(file)
}

// Prompt shows an interactive list of profiles and returns the chosen one
func Prompt(p forms.Prompter, file *config.FileConfig) (*config.Profile, error) {
	profiles := Profiles(file)
	selected := Selected(file)

	labels := make([]string, len(profiles))
	cursor := 0
	for i, prof := range profiles {
		labels[i] = fmt.Sprintf("%s (%s)", prof.Name, prof.APIURL)
		if prof.Name == selected {
			cursor = i
		}
	}

	i, err := p.Select("Select a profile", labels, cursor)
	if err != nil {
		return nil, fmt.Errorf("profile selection cancelled: %w", err)
	}
	return &profiles[i], nil
}

func find(file *config.FileConfig, name string) (*config.Profile, error) {
	for _, p := range Profiles(file) {
		if p.Name == name {
			if p.Name == config.DefaultProfile {
				if _, err := file.GetProfile(name); err != nil {
					file.Profiles = append(file.Profiles, p)
				}
			}
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", config.ErrProfileNotFound, name)
}
