// Package schemas embeds the JSON Schemas for documents the CLI reads.
package schemas

import _ "embed"

// ContentPlan is the schema of a content plan document
//
//go:embed content_plan.schema.json
var ContentPlan string

// Candidates is the schema of a candidate list input file
//
//go:embed candidates.schema.json
var Candidates string
