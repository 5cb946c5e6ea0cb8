package appconf

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Profile maps a movement profile name used in walk mode descriptors to the
// profile understood by the routing server.
type Profile struct {
	Name     string `yaml:"name" validate:"required,alphanum"`
	Upstream string `yaml:"upstream" validate:"required"`
}

// ProfilesFile is the layout of the YAML profiles file. The first profile is
// the fallback for unknown names.
type ProfilesFile struct {
	Profiles []Profile `yaml:"profiles" validate:"required,min=1,unique=Name,dive"`
}

// DefaultProfiles is used when no profiles file is configured.
func DefaultProfiles() []Profile {
	return []Profile{
		{Name: "pedestrian", Upstream: "foot"},
		{Name: "bicycle", Upstream: "bike"},
		{Name: "car", Upstream: "car"},
	}
}

// LoadProfiles reads and validates the profiles file at path. An empty path
// yields DefaultProfiles.
func LoadProfiles(path string) ([]Profile, error) {
	if path == "" {
		return DefaultProfiles(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profiles: %w", err)
	}
	return ParseProfiles(data)
}

func ParseProfiles(data []byte) ([]Profile, error) {
	var file ProfilesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing profiles: %w", err)
	}
	if err := validator.New().Struct(file); err != nil {
		return nil, fmt.Errorf("invalid profiles: %w", err)
	}
	return file.Profiles, nil
}

// ProfileNames lists the profile names in file order.
func ProfileNames(profiles []Profile) []string {
	names := make([]string, len(profiles))
	for i, p := range profiles {
		names[i] = p.Name
	}
	return names
}

// UpstreamProfiles maps each profile name to its routing server profile.
func UpstreamProfiles(profiles []Profile) map[string]string {
	m := make(map[string]string, len(profiles))
	for _, p := range profiles {
		m[p.Name] = p.Upstream
	}
	return m
}
