/*
Package registry loads and holds table schemas.

Schemas are declared in files shaped like a DynamoDB CreateTable request.
JSON files are accepted as well as YAML:

	TableName: Snippets
	KeySchema:
	  - AttributeName: snippet.channelId
	    KeyType: HASH
	  - AttributeName: snippet.publishedAt
	    KeyType: RANGE
	AttributeDefinitions:
	  - AttributeName: snippet.channelId
	    AttributeType: S
	  - AttributeName: snippet.publishedAt
	    AttributeType: S
	  - AttributeName: snippet.live
	    AttributeType: B
	ProvisionedThroughput:
	  ReadCapacityUnits: 5
	  WriteCapacityUnits: 5

AttributeType B declares a boolean attribute. A registry is an ordinary
value; construct one at startup and pass it to the code that needs it.
*/
package registry
