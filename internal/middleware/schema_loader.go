package middleware

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	contextutils "culturology/internal/utils"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v2"
)

// SchemaLoader holds the component schemas of an OpenAPI document, compiled for validation,
// and the request body schema of every documented operation.
type SchemaLoader struct {
	schemas        map[string]*gojsonschema.Schema
	requestSchemas map[string]string // "METHOD /gin/:path" -> schema name
}

// NewSchemaLoader creates an empty schema loader
func NewSchemaLoader() *SchemaLoader {
	return &SchemaLoader{
		schemas:        make(map[string]*gojsonschema.Schema),
		requestSchemas: make(map[string]string),
	}
}

// LoadSchemasFromOpenAPI parses an OpenAPI YAML document and compiles its component schemas
func (sl *SchemaLoader) LoadSchemasFromOpenAPI(data []byte) error {
	var doc map[interface{}]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return contextutils.WrapError(err, "failed to parse OpenAPI document as YAML")
	}

	components, ok := doc["components"].(map[interface{}]interface{})
	if !ok {
		return contextutils.ErrorWithContextf("no components section found in OpenAPI document")
	}
	schemas, ok := components["schemas"].(map[interface{}]interface{})
	if !ok {
		return contextutils.ErrorWithContextf("no schemas section found in OpenAPI document")
	}

	jsonCompatibleSchemas := make(map[string]interface{}, len(schemas))
	for name, schemaData := range schemas {
		nameStr, ok := name.(string)
		if !ok {
			return contextutils.ErrorWithContextf("schema name is not a string: %v", name)
		}
		converted, err := convertToJSONCompatible(schemaData)
		if err != nil {
			return contextutils.WrapErrorf(err, "failed to convert schema %s", nameStr)
		}
		jsonCompatibleSchemas[nameStr] = converted
	}

	for name := range jsonCompatibleSchemas {
		// the full components block rides along so $ref can resolve
		completeSchemaDoc := map[string]interface{}{
			"$schema": "http://json-schema.org/draft-07/schema#",
			"components": map[string]interface{}{
				"schemas": jsonCompatibleSchemas,
			},
			"$ref": "#/components/schemas/" + name,
		}

		schemaBytes, err := json.Marshal(completeSchemaDoc)
		if err != nil {
			return contextutils.WrapErrorf(err, "failed to marshal schema %s", name)
		}

		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaBytes))
		if err != nil {
			return contextutils.WrapErrorf(err, "failed to compile schema %s", name)
		}
		sl.schemas[name] = schema
	}

	paths, _ := doc["paths"].(map[interface{}]interface{})
	for rawPath, rawItem := range paths {
		path, _ := rawPath.(string)
		item, _ := rawItem.(map[interface{}]interface{})
		for rawMethod, rawOp := range item {
			method, _ := rawMethod.(string)
			op, _ := rawOp.(map[interface{}]interface{})
			if name := requestBodySchemaName(op); name != "" {
				sl.requestSchemas[routeKey(method, ginPath(path))] = name
			}
		}
	}

	return nil
}

// SchemaNames returns the compiled schema names in sorted order
func (sl *SchemaLoader) SchemaNames() []string {
	names := make([]string, 0, len(sl.schemas))
	for name := range sl.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateJSON validates a raw JSON document against a named schema
func (sl *SchemaLoader) ValidateJSON(body []byte, schemaName string) error {
	schema, exists := sl.schemas[schemaName]
	if !exists {
		return contextutils.ErrorWithContextf("schema %s not found", schemaName)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInvalidFormat,
			contextutils.SeverityWarn,
			"Request body is not valid JSON",
			err.Error(),
			err,
		)
	}

	if !result.Valid() {
		validationErrors := make([]string, 0, len(result.Errors()))
		for _, validationErr := range result.Errors() {
			validationErrors = append(validationErrors, fmt.Sprintf("%s: %s", validationErr.Field(), validationErr.Description()))
		}
		return contextutils.NewAppError(
			contextutils.ErrorCodeValidationFailed,
			contextutils.SeverityWarn,
			"Request data does not match the API specification",
			strings.Join(validationErrors, "; "),
		)
	}

	return nil
}

// RequestSchemaFor returns the request body schema for a gin route pattern, if any
func (sl *SchemaLoader) RequestSchemaFor(method, fullPath string) string {
	return sl.requestSchemas[routeKey(method, fullPath)]
}

func routeKey(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

// ginPath rewrites /api/cultures/{slug} as /api/cultures/:slug
func ginPath(openAPIPath string) string {
	segments := strings.Split(openAPIPath, "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			segments[i] = ":" + strings.TrimSuffix(strings.TrimPrefix(seg, "{"), "}")
		}
	}
	return strings.Join(segments, "/")
}

// requestBodySchemaName follows requestBody.content["application/json"].schema.$ref
func requestBodySchemaName(op map[interface{}]interface{}) string {
	requestBody, _ := op["requestBody"].(map[interface{}]interface{})
	content, _ := requestBody["content"].(map[interface{}]interface{})
	jsonContent, _ := content["application/json"].(map[interface{}]interface{})
	schema, _ := jsonContent["schema"].(map[interface{}]interface{})
	ref, _ := schema["$ref"].(string)
	if ref == "" {
		return ""
	}

	// $ref format: "#/components/schemas/SchemaName"
	parts := strings.Split(ref, "/")
	if len(parts) < 4 {
		return ""
	}
	return parts[len(parts)-1]
}

// convertToJSONCompatible converts yaml.v2 maps to map[string]interface{} and rewrites
// OpenAPI nullable into JSON Schema type unions
func convertToJSONCompatible(data interface{}) (interface{}, error) {
	switch v := data.(type) {
	case map[interface{}]interface{}:
		result := make(map[string]interface{}, len(v))
		hasNullable := false

		for k, val := range v {
			keyStr, ok := k.(string)
			if !ok {
				return nil, contextutils.ErrorWithContextf("key is not a string: %v", k)
			}

			if keyStr == "nullable" {
				if nullable, ok := val.(bool); ok && nullable {
					hasNullable = true
				}
				continue
			}

			convertedVal, err := convertToJSONCompatible(val)
			if err != nil {
				return nil, err
			}
			result[keyStr] = convertedVal
		}

		if hasNullable {
			if ref, hasRef := result["$ref"].(string); hasRef {
				result["oneOf"] = []interface{}{
					map[string]interface{}{"$ref": ref},
					map[string]interface{}{"type": "null"},
				}
				delete(result, "$ref")
			} else if typeVal, hasType := result["type"].(string); hasType {
				result["type"] = []interface{}{typeVal, "null"}
			}
		}

		return result, nil
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, val := range v {
			convertedVal, err := convertToJSONCompatible(val)
			if err != nil {
				return nil, err
			}
			result[i] = convertedVal
		}
		return result, nil
	default:
		return data, nil
	}
}
