/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/suparena/flatstore/datastore/ddb"
	"github.com/suparena/flatstore/errors"
)

// Environment variable names
const (
	EnvRegion              = "AWS_REGION"
	EnvAccessKey           = "AWS_ACCESS_KEY"
	EnvSecretKey           = "AWS_SECRET_KEY"
	EnvEndpoint            = "DYNAMODB_URL"
	EnvResponsesConfigPath = "RESPONSES_CONFIG_PATH"
	EnvSnippetsConfigPath  = "SNIPPETS_CONFIG_PATH"
)

// Config holds the settings needed to reach the backing store and find the
// table schema files.
type Config struct {
	Region              string
	AccessKey           string
	SecretKey           string
	Endpoint            string
	ResponsesConfigPath string
	SnippetsConfigPath  string
}

// Load applies the given .env files (".env" when none are named) and reads
// the configuration from the environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.NewConfigurationError("dotenv", err.Error())
	}
	return FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Region:              getenv(EnvRegion),
		AccessKey:           getenv(EnvAccessKey),
		SecretKey:           getenv(EnvSecretKey),
		Endpoint:            getenv(EnvEndpoint),
		ResponsesConfigPath: getenv(EnvResponsesConfigPath),
		SnippetsConfigPath:  getenv(EnvSnippetsConfigPath),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings every caller needs.
func (c *Config) Validate() error {
	if c.Region == "" {
		return errors.NewConfigurationError(EnvRegion, "must be set")
	}
	if (c.AccessKey == "") != (c.SecretKey == "") {
		return errors.NewConfigurationError(EnvAccessKey, EnvAccessKey+" and "+EnvSecretKey+" must be set together")
	}
	return nil
}

// RequireSchemaPaths checks that both table schema paths are configured.
func (c *Config) RequireSchemaPaths() error {
	if c.ResponsesConfigPath == "" {
		return errors.NewConfigurationError(EnvResponsesConfigPath, "must be set")
	}
	if c.SnippetsConfigPath == "" {
		return errors.NewConfigurationError(EnvSnippetsConfigPath, "must be set")
	}
	return nil
}

// ClientConfig returns the settings used to build a DynamoDB client.
func (c *Config) ClientConfig() ddb.ClientConfig {
	return ddb.ClientConfig{
		Region:    c.Region,
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		Endpoint:  c.Endpoint,
	}
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
