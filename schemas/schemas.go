// Package schemas embeds the JSON Schemas that declare the required fields
// of each record kind returned by the generation service.
package schemas

import _ "embed"

//go:embed risk.schema.json
var RiskSchemaJSON string

//go:embed cognate_group.schema.json
var CognateGroupSchemaJSON string

//go:embed cognate_item.schema.json
var CognateItemSchemaJSON string

//go:embed transliteration.schema.json
var TransliterationSchemaJSON string

//go:embed effectiveness.schema.json
var EffectivenessSchemaJSON string
