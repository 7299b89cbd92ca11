/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package youtube archives YouTube search requests and responses. Each
// response becomes one row of the Responses table and each search result
// one row of the Snippets table, joined by a generated response_id.
package youtube
