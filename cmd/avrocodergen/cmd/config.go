// Licensed to the Apache Software Foundation (ASF) under one or more
// contributor license agreements.  See the NOTICE file distributed with
// this work for additional information regarding copyright ownership.
// The ASF licenses this file to You under the Apache License, Version 2.0
// (the "License"); you may not use this file except in compliance with
// the License.  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"os"

	"github.com/erikogenvik/beam-avrocoder/internal/environment"
	"github.com/erikogenvik/beam-avrocoder/internal/errors"
	"gopkg.in/yaml.v3"
)

const defaultOutput = "avrocoder.registrations.go"

// Config holds generator settings. Flags override environment variables,
// which override the YAML file.
type Config struct {
	// Output is the file name written into each package directory.
	Output string `yaml:"output"`

	// Packages lists package directories used when no directory is given on
	// the command line.
	Packages []string `yaml:"packages"`

	// Check verifies that existing files are current instead of writing them.
	Check bool `yaml:"check"`
}

func init() {
	environment.Output.MustDefault(defaultOutput)
}

// loadConfig reads the YAML file at path. An empty path yields an empty Config.
func loadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %v", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %v", path)
	}
	return cfg, nil
}

// applyEnvironment fills settings the environment provides over those from
// the file.
func (c *Config) applyEnvironment() error {
	if !environment.Output.Missing() && (c.Output == "" || environment.Output.Value() != defaultOutput) {
		c.Output = environment.Output.Value()
	}
	check, err := environment.Check.Bool()
	if err != nil {
		return errors.Wrapf(err, "parsing %v", environment.Check.KeyValue())
	}
	c.Check = c.Check || check
	return nil
}
