package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// PromptTemplate is one versioned pair of instruction templates for the
// keyword-extraction model. The user template must carry the {message} and
// {course} placeholders.
type PromptTemplate struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

type PromptSet struct {
	Versions map[string]PromptTemplate `yaml:"versions"`
}

func LoadPrompts(path string) (*PromptSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var set PromptSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, err
	}

	if len(set.Versions) == 0 {
		return nil, fmt.Errorf("prompt file %s defines no versions", path)
	}

	for version, tpl := range set.Versions {
		if !strings.Contains(tpl.User, "{message}") || !strings.Contains(tpl.User, "{course}") {
			return nil, fmt.Errorf("prompt version %q is missing a {message} or {course} placeholder", version)
		}
	}

	return &set, nil
}

// Render substitutes the document text and course name into the template.
func (t PromptTemplate) Render(message, course string) (system, user string) {
	user = strings.ReplaceAll(t.User, "{message}", message)
	user = strings.ReplaceAll(user, "{course}", course)
	system = strings.ReplaceAll(t.System, "{course}", course)
	return system, user
}

func (s *PromptSet) Version(version string) (PromptTemplate, error) {
	tpl, ok := s.Versions[version]
	if !ok {
		return PromptTemplate{}, fmt.Errorf("unknown prompt version %q", version)
	}
	return tpl, nil
}
