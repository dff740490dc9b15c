// Package validation turns loosely shaped documents returned by the
// generation service into typed records. It never fails: records that cannot
// be repaired are dropped and counted.
package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ctalab/ctaeval/schemas"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

var (
	riskSchema            *jsonschema.Schema
	cognateGroupSchema    *jsonschema.Schema
	cognateItemSchema     *jsonschema.Schema
	transliterationSchema *jsonschema.Schema
	variantSchema         *jsonschema.Schema
)

func init() {
	riskSchema = mustCompileSchema(schemas.RiskSchemaJSON, "risk.schema.json")
	cognateGroupSchema = mustCompileSchema(schemas.CognateGroupSchemaJSON, "cognate_group.schema.json")
	cognateItemSchema = mustCompileSchema(schemas.CognateItemSchemaJSON, "cognate_item.schema.json")
	transliterationSchema = mustCompileSchema(schemas.TransliterationSchemaJSON, "transliteration.schema.json")
	variantSchema = mustCompileSchema(schemas.EffectivenessSchemaJSON, "effectiveness.schema.json")
}

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// schemaErrors returns one message per violated constraint, or nil when
// instance conforms.
func schemaErrors(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}
