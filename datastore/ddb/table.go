/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/flatstore/datastore"
	ferrors "github.com/suparena/flatstore/errors"
	"github.com/suparena/flatstore/storagemodels"
)

// describe returns nil and no error when the table does not exist.
func (g *Gateway) describe(ctx context.Context) (*types.TableDescription, error) {
	out, err := g.client.DescribeTable(ctx, &sdk.DescribeTableInput{
		TableName: aws.String(g.schema.Name),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, g.storeError("DescribeTable", err)
	}
	return out.Table, nil
}

// Exists reports whether the table exists. A table found active moves the
// gateway to Ready.
func (g *Gateway) Exists(ctx context.Context) (bool, error) {
	desc, err := g.describe(ctx)
	if err != nil {
		return false, err
	}
	if desc == nil {
		g.setState(datastore.Uninitialized)
		return false, nil
	}
	if desc.TableStatus == types.TableStatusActive {
		g.setState(datastore.Ready)
	} else if g.State() == datastore.Uninitialized {
		g.setState(datastore.Exists)
	}
	return true, nil
}

// CreateTable creates the table from the schema and waits until it is active.
// Only key attributes are declared to DynamoDB; a table with capacity hints
// uses provisioned billing, otherwise on-demand.
func (g *Gateway) CreateTable(ctx context.Context) error {
	defs, err := keyAttributeDefinitions(g.schema)
	if err != nil {
		return err
	}

	input := &sdk.CreateTableInput{
		TableName:            aws.String(g.schema.Name),
		AttributeDefinitions: defs,
		KeySchema:            keySchemaElements(g.schema),
		BillingMode:          types.BillingModePayPerRequest,
	}
	if c := g.schema.Capacity; c != nil {
		input.BillingMode = types.BillingModeProvisioned
		input.ProvisionedThroughput = &types.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(c.ReadCapacityUnits),
			WriteCapacityUnits: aws.Int64(c.WriteCapacityUnits),
		}
	}

	if _, err := g.client.CreateTable(ctx, input); err != nil {
		var inUse *types.ResourceInUseException
		if !errors.As(err, &inUse) {
			return g.storeError("CreateTable", err)
		}
		g.logger.Info("table creation already in progress")
	} else {
		g.logger.Info("table created", "billingMode", string(input.BillingMode))
	}

	g.setState(datastore.Exists)
	return g.waitActive(ctx)
}

func (g *Gateway) waitActive(ctx context.Context) error {
	waiter := sdk.NewTableExistsWaiter(g.client, func(o *sdk.TableExistsWaiterOptions) {
		o.MinDelay = g.waiterMinDelay
		o.MaxDelay = g.waiterMaxDelay
	})
	err := waiter.Wait(ctx, &sdk.DescribeTableInput{TableName: aws.String(g.schema.Name)}, g.createTimeout)
	if err != nil {
		return g.storeError("WaitTableExists", err)
	}
	g.setState(datastore.Ready)
	return nil
}

// DeleteTable drops the table. Deleting an absent table logs a warning and
// succeeds.
func (g *Gateway) DeleteTable(ctx context.Context) error {
	_, err := g.client.DeleteTable(ctx, &sdk.DeleteTableInput{TableName: aws.String(g.schema.Name)})
	if err != nil {
		if isNotFound(err) {
			g.logger.Warn("table to delete does not exist")
			g.setState(datastore.Uninitialized)
			return nil
		}
		return g.storeError("DeleteTable", err)
	}

	waiter := sdk.NewTableNotExistsWaiter(g.client, func(o *sdk.TableNotExistsWaiterOptions) {
		o.MinDelay = g.waiterMinDelay
		o.MaxDelay = g.waiterMaxDelay
	})
	if err := waiter.Wait(ctx, &sdk.DescribeTableInput{TableName: aws.String(g.schema.Name)}, g.createTimeout); err != nil {
		return g.storeError("WaitTableNotExists", err)
	}
	g.setState(datastore.Uninitialized)
	g.logger.Info("table deleted")
	return nil
}

// DescribeSchema rebuilds the key schema and capacity of the live table.
// Non-key attributes are not known to DynamoDB and are not returned.
func (g *Gateway) DescribeSchema(ctx context.Context) (storagemodels.TableSchema, error) {
	desc, err := g.describe(ctx)
	if err != nil {
		return storagemodels.TableSchema{}, err
	}
	if desc == nil {
		return storagemodels.TableSchema{}, ferrors.NewNotFoundError("table", g.schema.Name)
	}
	return schemaFromDescription(desc)
}

func schemaFromDescription(desc *types.TableDescription) (storagemodels.TableSchema, error) {
	schema := storagemodels.TableSchema{Name: aws.ToString(desc.TableName)}

	for _, def := range desc.AttributeDefinitions {
		var typ storagemodels.AttributeType
		switch def.AttributeType {
		case types.ScalarAttributeTypeS:
			typ = storagemodels.TypeString
		case types.ScalarAttributeTypeN:
			typ = storagemodels.TypeNumber
		default:
			return schema, ferrors.NewConfigurationError(schema.Name+".AttributeDefinitions",
				fmt.Sprintf("attribute %q has unsupported type %q", aws.ToString(def.AttributeName), def.AttributeType))
		}
		schema.AttributeDefinitions = append(schema.AttributeDefinitions, storagemodels.AttributeDefinition{
			Name: aws.ToString(def.AttributeName),
			Type: typ,
		})
	}

	for _, role := range []types.KeyType{types.KeyTypeHash, types.KeyTypeRange} {
		for _, el := range desc.KeySchema {
			if el.KeyType != role {
				continue
			}
			key := storagemodels.KeyAttribute{Name: aws.ToString(el.AttributeName), Role: storagemodels.RolePartition}
			if role == types.KeyTypeRange {
				key.Role = storagemodels.RoleSort
			}
			schema.KeyAttributes = append(schema.KeyAttributes, key)
		}
	}

	onDemand := desc.BillingModeSummary != nil && desc.BillingModeSummary.BillingMode == types.BillingModePayPerRequest
	if pt := desc.ProvisionedThroughput; pt != nil && !onDemand &&
		aws.ToInt64(pt.ReadCapacityUnits) > 0 && aws.ToInt64(pt.WriteCapacityUnits) > 0 {
		schema.Capacity = &storagemodels.CapacityHints{
			ReadCapacityUnits:  aws.ToInt64(pt.ReadCapacityUnits),
			WriteCapacityUnits: aws.ToInt64(pt.WriteCapacityUnits),
		}
	}
	return schema, nil
}

// keyAttributeDefinitions declares the key attributes. DynamoDB keys can only
// be strings, numbers or binary, so a boolean key is a configuration error.
func keyAttributeDefinitions(schema storagemodels.TableSchema) ([]types.AttributeDefinition, error) {
	defs := make([]types.AttributeDefinition, 0, len(schema.KeyAttributes))
	for _, key := range schema.KeyAttributes {
		typ, _ := schema.AttributeType(key.Name)
		var scalar types.ScalarAttributeType
		switch typ {
		case storagemodels.TypeString:
			scalar = types.ScalarAttributeTypeS
		case storagemodels.TypeNumber:
			scalar = types.ScalarAttributeTypeN
		default:
			return nil, ferrors.NewConfigurationError(schema.Name+".KeySchema",
				fmt.Sprintf("key attribute %q must be a string or number, not %s", key.Name, typ))
		}
		defs = append(defs, types.AttributeDefinition{
			AttributeName: aws.String(key.Name),
			AttributeType: scalar,
		})
	}
	return defs, nil
}

func keySchemaElements(schema storagemodels.TableSchema) []types.KeySchemaElement {
	elements := make([]types.KeySchemaElement, 0, len(schema.KeyAttributes))
	for _, key := range schema.KeyAttributes {
		keyType := types.KeyTypeHash
		if key.Role == storagemodels.RoleSort {
			keyType = types.KeyTypeRange
		}
		elements = append(elements, types.KeySchemaElement{
			AttributeName: aws.String(key.Name),
			KeyType:       keyType,
		})
	}
	return elements
}

// ListTableNames returns the names of all tables visible to the client.
func ListTableNames(ctx context.Context, client Client) ([]string, error) {
	var names []string
	paginator := sdk.NewListTablesPaginator(client, &sdk.ListTablesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &ferrors.BackingStoreError{Operation: "ListTables", Code: errorCode(err), Retryable: isRetryableError(err), Cause: err}
		}
		names = append(names, page.TableNames...)
	}
	return names, nil
}

// CountTables returns the number of tables visible to the client.
func CountTables(ctx context.Context, client Client) (int, error) {
	names, err := ListTableNames(ctx, client)
	return len(names), err
}
