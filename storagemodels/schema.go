/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"fmt"
	"strings"

	"github.com/suparena/flatstore/errors"
)

// AttributeType is the declared type of a schema-governed attribute.
type AttributeType string

const (
	TypeString  AttributeType = "string"
	TypeNumber  AttributeType = "number"
	TypeBoolean AttributeType = "boolean"
)

// ParseAttributeType accepts the short DynamoDB-style codes used in table
// config files (S, N, B) as well as the long names. B means boolean.
func ParseAttributeType(s string) (AttributeType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "s", "string":
		return TypeString, nil
	case "n", "number":
		return TypeNumber, nil
	case "b", "bool", "boolean":
		return TypeBoolean, nil
	}
	return "", fmt.Errorf("unknown attribute type %q", s)
}

// Code returns the single-letter code used in table config files.
func (t AttributeType) Code() string {
	switch t {
	case TypeString:
		return "S"
	case TypeNumber:
		return "N"
	case TypeBoolean:
		return "B"
	}
	return ""
}

// KeyRole is the role of a key attribute in the table's primary key.
type KeyRole string

const (
	RolePartition KeyRole = "partition"
	RoleSort      KeyRole = "sort"
)

// ParseKeyRole accepts HASH/RANGE as well as partition/sort.
func ParseKeyRole(s string) (KeyRole, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hash", "partition":
		return RolePartition, nil
	case "range", "sort":
		return RoleSort, nil
	}
	return "", fmt.Errorf("unknown key role %q", s)
}

// KeyAttribute names one attribute of the primary key.
type KeyAttribute struct {
	Name string
	Role KeyRole
}

// AttributeDefinition declares the type of a schema-governed attribute.
type AttributeDefinition struct {
	Name string
	Type AttributeType
}

// CapacityHints carries provisioned throughput. A nil hint means on-demand billing.
type CapacityHints struct {
	ReadCapacityUnits  int64
	WriteCapacityUnits int64
}

// TableSchema describes one logical table. It is built once at configuration
// load and not modified afterwards.
type TableSchema struct {
	Name                 string
	KeyAttributes        []KeyAttribute
	AttributeDefinitions []AttributeDefinition
	Capacity             *CapacityHints

	// AttributeNamePrefix overrides the prefix derived from Name when non-empty.
	AttributeNamePrefix string
}

// Validate checks the structural invariants of the schema.
func (s TableSchema) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.NewConfigurationError("TableName", "table name is required")
	}
	if len(s.KeyAttributes) == 0 || len(s.KeyAttributes) > 2 {
		return errors.NewConfigurationError(s.Name+".KeySchema", "one partition key and at most one sort key are required")
	}
	if s.KeyAttributes[0].Role != RolePartition {
		return errors.NewConfigurationError(s.Name+".KeySchema", "first key attribute must be the partition key")
	}
	if len(s.KeyAttributes) == 2 && s.KeyAttributes[1].Role != RoleSort {
		return errors.NewConfigurationError(s.Name+".KeySchema", "second key attribute must be the sort key")
	}

	seen := make(map[string]bool, len(s.AttributeDefinitions))
	for _, def := range s.AttributeDefinitions {
		if def.Name == "" {
			return errors.NewConfigurationError(s.Name+".AttributeDefinitions", "attribute name is required")
		}
		if seen[def.Name] {
			return errors.NewConfigurationError(s.Name+".AttributeDefinitions", fmt.Sprintf("attribute %q defined twice", def.Name))
		}
		if def.Type.Code() == "" {
			return errors.NewConfigurationError(s.Name+".AttributeDefinitions", fmt.Sprintf("attribute %q has unknown type %q", def.Name, def.Type))
		}
		seen[def.Name] = true
	}
	for _, key := range s.KeyAttributes {
		if !seen[key.Name] {
			return errors.NewConfigurationError(s.Name+".KeySchema", fmt.Sprintf("key attribute %q is not declared in AttributeDefinitions", key.Name))
		}
	}
	if s.Capacity != nil && (s.Capacity.ReadCapacityUnits <= 0 || s.Capacity.WriteCapacityUnits <= 0) {
		return errors.NewConfigurationError(s.Name+".ProvisionedThroughput", "capacity units must be positive")
	}
	return nil
}

// AttributeType returns the declared type of the named attribute.
func (s TableSchema) AttributeType(name string) (AttributeType, bool) {
	for _, def := range s.AttributeDefinitions {
		if def.Name == name {
			return def.Type, true
		}
	}
	return "", false
}

// KeyNames returns the key attribute names, partition key first.
func (s TableSchema) KeyNames() []string {
	names := make([]string, len(s.KeyAttributes))
	for i, key := range s.KeyAttributes {
		names[i] = key.Name
	}
	return names
}

// PartitionKey returns the partition key attribute name.
func (s TableSchema) PartitionKey() string {
	for _, key := range s.KeyAttributes {
		if key.Role == RolePartition {
			return key.Name
		}
	}
	return ""
}

// SortKey returns the sort key attribute name, or "" for a partition-only table.
func (s TableSchema) SortKey() string {
	for _, key := range s.KeyAttributes {
		if key.Role == RoleSort {
			return key.Name
		}
	}
	return ""
}

// IsKey reports whether name is one of the key attributes.
func (s TableSchema) IsKey(name string) bool {
	for _, key := range s.KeyAttributes {
		if key.Name == name {
			return true
		}
	}
	return false
}

// Compatible reports whether other declares the same name and key schema.
func (s TableSchema) Compatible(other TableSchema) bool {
	if s.Name != other.Name || len(s.KeyAttributes) != len(other.KeyAttributes) {
		return false
	}
	for i, key := range s.KeyAttributes {
		if other.KeyAttributes[i] != key {
			return false
		}
		mine, _ := s.AttributeType(key.Name)
		theirs, _ := other.AttributeType(key.Name)
		if mine != theirs {
			return false
		}
	}
	return true
}
