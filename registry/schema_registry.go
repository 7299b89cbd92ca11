/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/suparena/flatstore/errors"
	"github.com/suparena/flatstore/storagemodels"
)

// TableConfig mirrors the on-disk table configuration. It is also the form
// in which schemas appear in dump files.
type TableConfig struct {
	TableName             string           `yaml:"TableName" json:"TableName"`
	AttributeNamePrefix   string           `yaml:"AttributeNamePrefix,omitempty" json:"AttributeNamePrefix,omitempty"`
	KeySchema             []KeySchemaEntry `yaml:"KeySchema" json:"KeySchema"`
	AttributeDefinitions  []AttributeEntry `yaml:"AttributeDefinitions" json:"AttributeDefinitions"`
	ProvisionedThroughput *ThroughputEntry `yaml:"ProvisionedThroughput,omitempty" json:"ProvisionedThroughput,omitempty"`
}

type KeySchemaEntry struct {
	AttributeName string `yaml:"AttributeName" json:"AttributeName"`
	KeyType       string `yaml:"KeyType" json:"KeyType"`
}

type AttributeEntry struct {
	AttributeName string `yaml:"AttributeName" json:"AttributeName"`
	AttributeType string `yaml:"AttributeType" json:"AttributeType"`
}

type ThroughputEntry struct {
	ReadCapacityUnits  int64 `yaml:"ReadCapacityUnits" json:"ReadCapacityUnits"`
	WriteCapacityUnits int64 `yaml:"WriteCapacityUnits" json:"WriteCapacityUnits"`
}

// ConfigOf renders schema in configuration form.
func ConfigOf(schema storagemodels.TableSchema) TableConfig {
	config := TableConfig{
		TableName:           schema.Name,
		AttributeNamePrefix: schema.AttributeNamePrefix,
	}
	for _, k := range schema.KeyAttributes {
		keyType := "HASH"
		if k.Role == storagemodels.RoleSort {
			keyType = "RANGE"
		}
		config.KeySchema = append(config.KeySchema, KeySchemaEntry{AttributeName: k.Name, KeyType: keyType})
	}
	for _, a := range schema.AttributeDefinitions {
		config.AttributeDefinitions = append(config.AttributeDefinitions, AttributeEntry{AttributeName: a.Name, AttributeType: a.Type.Code()})
	}
	if c := schema.Capacity; c != nil {
		config.ProvisionedThroughput = &ThroughputEntry{ReadCapacityUnits: c.ReadCapacityUnits, WriteCapacityUnits: c.WriteCapacityUnits}
	}
	return config
}

// Schema converts the configuration into a validated TableSchema.
func (c TableConfig) Schema() (storagemodels.TableSchema, error) {
	schema := storagemodels.TableSchema{
		Name:                c.TableName,
		AttributeNamePrefix: c.AttributeNamePrefix,
	}
	for _, k := range c.KeySchema {
		role, err := storagemodels.ParseKeyRole(k.KeyType)
		if err != nil {
			return storagemodels.TableSchema{}, errors.NewConfigurationError("KeySchema", err.Error())
		}
		schema.KeyAttributes = append(schema.KeyAttributes, storagemodels.KeyAttribute{Name: k.AttributeName, Role: role})
	}
	for _, a := range c.AttributeDefinitions {
		typ, err := storagemodels.ParseAttributeType(a.AttributeType)
		if err != nil {
			return storagemodels.TableSchema{}, errors.NewConfigurationError("AttributeDefinitions", err.Error())
		}
		schema.AttributeDefinitions = append(schema.AttributeDefinitions, storagemodels.AttributeDefinition{Name: a.AttributeName, Type: typ})
	}
	if pt := c.ProvisionedThroughput; pt != nil {
		schema.Capacity = &storagemodels.CapacityHints{
			ReadCapacityUnits:  pt.ReadCapacityUnits,
			WriteCapacityUnits: pt.WriteCapacityUnits,
		}
	}

	if err := schema.Validate(); err != nil {
		return storagemodels.TableSchema{}, err
	}
	return schema, nil
}

// SchemaRegistry holds validated table schemas by table name.
type SchemaRegistry struct {
	mu      sync.RWMutex
	schemas map[string]storagemodels.TableSchema
}

// New creates an empty registry
func New() *SchemaRegistry {
	return &SchemaRegistry{schemas: make(map[string]storagemodels.TableSchema)}
}

// Register validates schema and adds it. Registering a second schema under
// the same table name is a ConfigurationError.
func (r *SchemaRegistry) Register(schema storagemodels.TableSchema) error {
	if err := schema.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.schemas[schema.Name]; exists {
		return errors.NewConfigurationError("TableName", fmt.Sprintf("table %q already registered", schema.Name))
	}
	r.schemas[schema.Name] = schema
	return nil
}

// LoadFile parses the schema file at path and registers it.
func (r *SchemaRegistry) LoadFile(path string) (storagemodels.TableSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return storagemodels.TableSchema{}, errors.NewConfigurationError(path, err.Error())
	}
	schema, err := ParseSchema(data)
	if err != nil {
		return storagemodels.TableSchema{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := r.Register(schema); err != nil {
		return storagemodels.TableSchema{}, fmt.Errorf("%s: %w", path, err)
	}
	return schema, nil
}

// Get returns the schema registered for table
func (r *SchemaRegistry) Get(table string) (storagemodels.TableSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	schema, ok := r.schemas[table]
	if !ok {
		return storagemodels.TableSchema{}, errors.NewNotFoundError("schema", table)
	}
	return schema, nil
}

// Names returns the registered table names in sorted order
func (r *SchemaRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseSchema decodes and validates a schema document.
func ParseSchema(data []byte) (storagemodels.TableSchema, error) {
	var config TableConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return storagemodels.TableSchema{}, errors.NewConfigurationError("schema", err.Error())
	}
	return config.Schema()
}
