package projectconfig

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type setting struct {
	get func(c *ProjectConfig) string
	set func(c *ProjectConfig, v string) error
}

func intSetting(get func(c *ProjectConfig) *int) setting {
	return setting{
		get: func(c *ProjectConfig) string { return strconv.Itoa(*get(c)) },
		set: func(c *ProjectConfig, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return fmt.Errorf("%q is not a non-negative integer", v)
			}
			*get(c) = n
			return nil
		},
	}
}

func stringSetting(get func(c *ProjectConfig) *string) setting {
	return setting{
		get: func(c *ProjectConfig) string { return *get(c) },
		set: func(c *ProjectConfig, v string) error { *get(c) = v; return nil },
	}
}

var settings = map[string]setting{
	"provider":      stringSetting(func(c *ProjectConfig) *string { return &c.LLM.Provider }),
	"model":         stringSetting(func(c *ProjectConfig) *string { return &c.LLM.Model }),
	"api_key":       stringSetting(func(c *ProjectConfig) *string { return &c.LLM.APIKey }),
	"base_url":      stringSetting(func(c *ProjectConfig) *string { return &c.LLM.BaseURL }),
	"timeout":       intSetting(func(c *ProjectConfig) *int { return &c.LLM.Timeout }),
	"dataset_label": stringSetting(func(c *ProjectConfig) *string { return &c.Effectiveness.DatasetLabel }),
	"results_dir":   stringSetting(func(c *ProjectConfig) *string { return &c.Paths.Results }),
	"reports_dir":   stringSetting(func(c *ProjectConfig) *string { return &c.Paths.Reports }),
	"sessions_dir":  stringSetting(func(c *ProjectConfig) *string { return &c.Paths.Sessions }),
	"port":          intSetting(func(c *ProjectConfig) *int { return &c.Server.Port }),
	"workers":       intSetting(func(c *ProjectConfig) *int { return &c.Batch.Workers }),
	"container_url": stringSetting(func(c *ProjectConfig) *string { return &c.Publish.ContainerURL }),
	"include_expected_ranges": {
		get: func(c *ProjectConfig) string {
			return strconv.FormatBool(c.Effectiveness.IncludeExpectedRanges == nil || *c.Effectiveness.IncludeExpectedRanges)
		},
		set: func(c *ProjectConfig, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%q is not a boolean", v)
			}
			c.Effectiveness.IncludeExpectedRanges = boolPtr(b)
			return nil
		},
	},
}

// Keys lists the settable keys in alphabetical order.
func Keys() []string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set assigns a value by key and validates the result.
func (c *ProjectConfig) Set(key, value string) error {
	s, ok := settings[strings.ToLower(key)]
	if !ok {
		return fmt.Errorf("unknown key %q (valid keys: %s)", key, strings.Join(Keys(), ", "))
	}
	if err := s.set(c, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return c.validate()
}

// Get returns a value by key. The API key is masked.
func (c *ProjectConfig) Get(key string) (string, error) {
	s, ok := settings[strings.ToLower(key)]
	if !ok {
		return "", fmt.Errorf("unknown key %q (valid keys: %s)", key, strings.Join(Keys(), ", "))
	}
	v := s.get(c)
	if key == "api_key" {
		v = Mask(v)
	}
	return v, nil
}

// Mask hides all but the last four characters of a credential.
func Mask(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
