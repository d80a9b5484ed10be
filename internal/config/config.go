// Copyright 2025 OpenPlate Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "pantry.config"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

const (
	DefaultBlobPlugin     = "badger"
	DefaultMetadataPlugin = "sqlite"
)

type Config struct {
	DatabasePath      string `yaml:"databasePath"                                        split_words:"true"`
	BlobPlugin        string `yaml:"blobPlugin"        envconfig:"PANTRY_DATABASE_BLOB_PLUGIN"`
	MetadataPlugin    string `yaml:"metadataPlugin"    envconfig:"PANTRY_DATABASE_METADATA_PLUGIN"`
	MetricsPort       uint   `yaml:"metricsPort"                                         split_words:"true"`
	RequiredApprovals int    `yaml:"requiredApprovals"                                   split_words:"true"`
	SweepInterval     string `yaml:"sweepInterval"                                       split_words:"true"`
	TracingEnabled    bool   `yaml:"tracing"           envconfig:"PANTRY_TRACING"`
	TracingStdout     bool   `yaml:"tracingStdout"     envconfig:"PANTRY_TRACING_STDOUT"`
}

var globalConfig = &Config{
	DatabasePath:      ".pantry",
	BlobPlugin:        DefaultBlobPlugin,
	MetadataPlugin:    DefaultMetadataPlugin,
	MetricsPort:       12788,
	RequiredApprovals: 2,
	SweepInterval:     "1m",
}

// LoadConfig returns the config from the given YAML file overlaid with
// environment variables. When no file is given, ~/.pantry/pantry.yaml
// and /etc/pantry/pantry.yaml are tried in that order.
func LoadConfig(configFile string) (*Config, error) {
	if configFile == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".pantry", "pantry.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}
		if configFile == "" {
			systemPath := "/etc/pantry/pantry.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, globalConfig); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Environment variables take precedence over the config file
	if err := envconfig.Process("pantry", globalConfig); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	return globalConfig, nil
}

// GetConfig returns the global config instance
func GetConfig() *Config {
	return globalConfig
}
