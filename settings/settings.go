// Copyright 2026 Ian Lewis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package settings loads and saves the YAML settings of the SERPENT readers.
//
// A missing settings file yields the defaults. Environment variables with
// the SERPENT_ prefix override values read from the file.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/ianlewis/go-serpent/compare"
	"github.com/ianlewis/go-serpent/dep"
	"github.com/ianlewis/go-serpent/det"
	"github.com/ianlewis/go-serpent/naming"
	"github.com/ianlewis/go-serpent/res"
	"github.com/ianlewis/go-serpent/result"
	"github.com/ianlewis/go-serpent/validate"
)

// Settings holds all user settings.
type Settings struct {
	Naming      NamingSettings    `yaml:"naming"`
	Depletion   DepletionSettings `yaml:"depletion"`
	Detector    DetectorSettings  `yaml:"detector"`
	Results     ResultsSettings   `yaml:"results"`
	Validation  map[string]string `yaml:"validation,omitempty"`
	Compare     compare.Tolerance `yaml:"compare"`
	Logging     LoggingSettings   `yaml:"logging"`
	Concurrency int               `yaml:"concurrency"`
}

// NamingSettings configures name normalization.
type NamingSettings struct {
	// Mode is "strict" or "lenient".
	Mode    string            `yaml:"mode"`
	Aliases map[string]string `yaml:"aliases,omitempty"`
	Rules   []RuleSettings    `yaml:"rules,omitempty"`
}

// RuleSettings is a rewrite rule applied after aliases.
type RuleSettings struct {
	Pattern string `yaml:"pattern"`
	Replace string `yaml:"replace"`
}

// DepletionSettings configures the depletion reader.
type DepletionSettings struct {
	// Materials is a regular expression selecting materials.
	Materials    string   `yaml:"materials,omitempty"`
	Metrics      []string `yaml:"metrics,omitempty"`
	ProcessTotal bool     `yaml:"process_total"`
}

// DetectorSettings configures the detector reader.
type DetectorSettings struct {
	// Names is a regular expression selecting detectors.
	Names string `yaml:"names,omitempty"`
}

// ResultsSettings configures the results reader.
type ResultsSettings struct {
	SplitUncertainties bool `yaml:"split_uncertainties"`
	ConvertNames       bool `yaml:"convert_names"`

	// Variables is a regular expression selecting variables.
	Variables string `yaml:"variables,omitempty"`
}

// LoggingSettings configures logging.
type LoggingSettings struct {
	// Level is one of debug, info, warn or error.
	Level string `yaml:"level"`
}

// Default returns the default settings.
func Default() *Settings {
	return &Settings{
		Naming: NamingSettings{
			Mode: naming.Lenient.String(),
		},
		Depletion: DepletionSettings{
			ProcessTotal: dep.DefaultOptions.ProcessTotal,
		},
		Results: ResultsSettings{
			SplitUncertainties: res.DefaultOptions.SplitUncertainties,
			ConvertNames:       res.DefaultOptions.ConvertNames,
		},
		Compare: compare.DefaultTolerance,
		Logging: LoggingSettings{
			Level: "warn",
		},
		Concurrency: 4,
	}
}

// Load loads settings from a YAML file. Defaults are returned if the file
// does not exist.
func Load(path string) (*Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read settings: %w", err)
	default:
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("failed to parse settings %q: %w", path, err)
		}
	}

	if err := s.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings %q: %w", path, err)
	}
	return s, nil
}

// Save saves the settings to a YAML file.
func (s *Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (s *Settings) applyEnvOverrides() error {
	if v := os.Getenv("SERPENT_NAMING_MODE"); v != "" {
		s.Naming.Mode = v
	}
	if v := os.Getenv("SERPENT_LOG_LEVEL"); v != "" {
		s.Logging.Level = v
	}
	if v := os.Getenv("SERPENT_DEP_MATERIALS"); v != "" {
		s.Depletion.Materials = v
	}
	if v := os.Getenv("SERPENT_DEP_METRICS"); v != "" {
		s.Depletion.Metrics = strings.Split(v, ",")
	}
	if v := os.Getenv("SERPENT_DET_NAMES"); v != "" {
		s.Detector.Names = v
	}
	if v := os.Getenv("SERPENT_RES_VARIABLES"); v != "" {
		s.Results.Variables = v
	}
	if v := os.Getenv("SERPENT_RES_CONVERT_NAMES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SERPENT_RES_CONVERT_NAMES: %w", err)
		}
		s.Results.ConvertNames = b
	}
	if v := os.Getenv("SERPENT_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SERPENT_CONCURRENCY: %w", err)
		}
		s.Concurrency = n
	}
	return nil
}

// Validate validates the settings.
func (s *Settings) Validate() error {
	if _, err := s.Names(); err != nil {
		return err
	}
	if _, err := s.Policy(); err != nil {
		return err
	}
	if _, err := s.DepletionOptions(); err != nil {
		return err
	}
	if _, err := s.DetectorOptions(); err != nil {
		return err
	}
	if _, err := s.ResultsOptions(); err != nil {
		return err
	}
	if _, err := s.Level(); err != nil {
		return err
	}
	if err := s.Compare.Validate(); err != nil {
		return err
	}
	if s.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive, got %d", s.Concurrency)
	}
	return nil
}

// Names returns the naming table described by the settings.
func (s *Settings) Names() (*naming.Table, error) {
	mode, err := naming.ParseMode(s.Naming.Mode)
	if err != nil {
		return nil, err
	}
	rules := []naming.Rule{naming.SuffixRule}
	for _, r := range s.Naming.Rules {
		rule, err := naming.NewRule(r.Pattern, r.Replace)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return naming.New(mode, s.Naming.Aliases, rules...), nil
}

// Policy returns the validation policy. Checks without an override use the
// default for the naming mode.
func (s *Settings) Policy() (validate.Policy, error) {
	mode, err := naming.ParseMode(s.Naming.Mode)
	if err != nil {
		return nil, err
	}
	p := validate.DefaultPolicy(mode)
	for check, v := range s.Validation {
		if _, ok := p[check]; !ok {
			return nil, fmt.Errorf("unknown validation check %q", check)
		}
		sev, err := result.ParseSeverity(v)
		if err != nil {
			return nil, fmt.Errorf("validation check %q: %w", check, err)
		}
		p = p.With(check, sev)
	}
	return p, nil
}

// DepletionOptions returns the options of the depletion reader.
func (s *Settings) DepletionOptions() (*dep.Options, error) {
	re, err := compile("depletion.materials", s.Depletion.Materials)
	if err != nil {
		return nil, err
	}
	return &dep.Options{
		Materials:    re,
		Metrics:      s.Depletion.Metrics,
		ProcessTotal: s.Depletion.ProcessTotal,
	}, nil
}

// DetectorOptions returns the options of the detector reader.
func (s *Settings) DetectorOptions() (*det.Options, error) {
	re, err := compile("detector.names", s.Detector.Names)
	if err != nil {
		return nil, err
	}
	return &det.Options{Names: re}, nil
}

// ResultsOptions returns the options of the results reader.
func (s *Settings) ResultsOptions() (*res.Options, error) {
	re, err := compile("results.variables", s.Results.Variables)
	if err != nil {
		return nil, err
	}
	return &res.Options{
		SplitUncertainties: s.Results.SplitUncertainties,
		ConvertNames:       s.Results.ConvertNames,
		Variables:          re,
	}, nil
}

// Level returns the log level.
func (s *Settings) Level() (zapcore.Level, error) {
	l, err := zapcore.ParseLevel(s.Logging.Level)
	if err != nil {
		return l, fmt.Errorf("logging.level: %w", err)
	}
	return l, nil
}

func compile(key, pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return re, nil
}
