/*
Package config reads runtime configuration from the environment.

Load first applies any .env files with godotenv (a missing file is not an
error), then reads:

	AWS_REGION             required
	AWS_ACCESS_KEY         optional, must be set together with AWS_SECRET_KEY
	AWS_SECRET_KEY         optional
	DYNAMODB_URL           optional endpoint override, e.g. DynamoDB Local
	RESPONSES_CONFIG_PATH  schema file of the Responses table
	SNIPPETS_CONFIG_PATH   schema file of the Snippets table

Variables already present in the environment take precedence over .env
values.
*/
package config
