package middleware

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	contextutils "grovaapp/internal/utils"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v2"
)

//go:embed openapi.yaml
var openAPISpec []byte

const schemaRefPrefix = "#/components/schemas/"

// operation is the documented request and 200 response schema of one route
type operation struct {
	requestSchema  string
	responseSchema string
}

// SchemaLoader compiles the component schemas of an OpenAPI document and
// indexes which schema each documented route answers with.
type SchemaLoader struct {
	schemas    map[string]*gojsonschema.Schema
	operations map[string]map[string]operation // path pattern -> method -> operation
}

// NewSchemaLoader creates an empty schema loader
func NewSchemaLoader() *SchemaLoader {
	return &SchemaLoader{
		schemas:    make(map[string]*gojsonschema.Schema),
		operations: make(map[string]map[string]operation),
	}
}

// LoadEmbeddedSchemas returns a loader for the API document compiled into
// the binary
func LoadEmbeddedSchemas() (*SchemaLoader, error) {
	loader := NewSchemaLoader()
	if err := loader.Load(openAPISpec); err != nil {
		return nil, err
	}
	return loader, nil
}

// Load parses a YAML OpenAPI document and compiles its schemas
func (sl *SchemaLoader) Load(data []byte) error {
	var doc map[interface{}]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return contextutils.WrapError(err, "failed to parse API document as YAML")
	}

	components, ok := doc["components"].(map[interface{}]interface{})
	if !ok {
		return contextutils.ErrorWithContextf("no components section found in API document")
	}
	rawSchemas, ok := components["schemas"].(map[interface{}]interface{})
	if !ok {
		return contextutils.ErrorWithContextf("no schemas section found in API document")
	}

	jsonCompatibleSchemas := make(map[string]interface{}, len(rawSchemas))
	for name, schemaData := range rawSchemas {
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
		// Every schema is compiled against the full component set so that
		// $ref resolves inside the same document.
		completeSchemaDoc := map[string]interface{}{
			"$schema": "http://json-schema.org/draft-07/schema#",
			"components": map[string]interface{}{
				"schemas": jsonCompatibleSchemas,
			},
			"$ref": schemaRefPrefix + name,
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
		path, ok := rawPath.(string)
		if !ok {
			continue
		}
		item, ok := rawItem.(map[interface{}]interface{})
		if !ok {
			continue
		}
		methods := make(map[string]operation, len(item))
		for rawMethod, rawOp := range item {
			method, ok := rawMethod.(string)
			if !ok {
				continue
			}
			methods[strings.ToUpper(method)] = operation{
				requestSchema:  refAt(rawOp, "requestBody", "content", "application/json", "schema"),
				responseSchema: refAt(rawOp, "responses", "200", "content", "application/json", "schema"),
			}
		}
		sl.operations[path] = methods
	}
	return nil
}

// SchemaNames lists the compiled schemas in name order
func (sl *SchemaLoader) SchemaNames() []string {
	names := make([]string, 0, len(sl.schemas))
	for name := range sl.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateData validates data against a schema
func (sl *SchemaLoader) ValidateData(data interface{}, schemaName string) error {
	schema, exists := sl.schemas[schemaName]
	if !exists {
		return contextutils.ErrorWithContextf("schema %s not found", schemaName)
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return contextutils.WrapError(err, "failed to marshal data")
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(jsonData))
	if err != nil {
		return contextutils.WrapError(err, "validation error")
	}

	if !result.Valid() {
		validationErrors := make([]string, 0, len(result.Errors()))
		for _, validationErr := range result.Errors() {
			validationErrors = append(validationErrors, fmt.Sprintf("%s: %s", validationErr.Field(), validationErr.Description()))
		}
		return contextutils.ErrorWithContextf("schema validation failed: %s", strings.Join(validationErrors, "; "))
	}

	return nil
}

// IsEndpointDocumented reports whether the document describes method on path
func (sl *SchemaLoader) IsEndpointDocumented(path, method string) bool {
	_, ok := sl.lookup(path, method)
	return ok
}

// DetermineSchemaFromPath returns the 200 response schema of a route, or ""
func (sl *SchemaLoader) DetermineSchemaFromPath(path, method string) string {
	op, _ := sl.lookup(path, method)
	return op.responseSchema
}

// DetermineRequestSchemaFromPath returns the JSON request body schema of a route, or ""
func (sl *SchemaLoader) DetermineRequestSchemaFromPath(path, method string) string {
	op, _ := sl.lookup(path, method)
	return op.requestSchema
}

func (sl *SchemaLoader) lookup(path, method string) (operation, bool) {
	method = strings.ToUpper(method)
	if methods, ok := sl.operations[path]; ok {
		if op, ok := methods[method]; ok {
			return op, true
		}
	}
	// Literal segments win over parameters, so /categories/move is not
	// taken for /categories/{index}.
	var (
		best      operation
		bestScore = -1
	)
	for pattern, methods := range sl.operations {
		op, ok := methods[method]
		if !ok {
			continue
		}
		if score, matched := pathMatchesPattern(path, pattern); matched && score > bestScore {
			best, bestScore = op, score
		}
	}
	return best, bestScore >= 0
}

// pathMatchesPattern checks a request path against a templated path and
// returns how many literal segments matched
func pathMatchesPattern(requestPath, pattern string) (int, bool) {
	requestSegments := strings.Split(requestPath, "/")
	patternSegments := strings.Split(pattern, "/")
	if len(requestSegments) != len(patternSegments) {
		return 0, false
	}

	literals := 0
	for i, segment := range patternSegments {
		if strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") {
			if requestSegments[i] == "" {
				return 0, false
			}
			continue
		}
		if segment != requestSegments[i] {
			return 0, false
		}
		literals++
	}
	return literals, true
}

// refAt walks nested YAML maps and returns the component name of the $ref found there
func refAt(node interface{}, keys ...string) string {
	for _, key := range keys {
		m, ok := node.(map[interface{}]interface{})
		if !ok {
			return ""
		}
		node = m[key]
	}
	m, ok := node.(map[interface{}]interface{})
	if !ok {
		return ""
	}
	ref, _ := m["$ref"].(string)
	if !strings.HasPrefix(ref, schemaRefPrefix) {
		return ""
	}
	return strings.TrimPrefix(ref, schemaRefPrefix)
}

// convertToJSONCompatible turns YAML maps into JSON objects and rewrites
// OpenAPI's nullable into a JSON Schema union with null
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
				if enum, hasEnum := result["enum"].([]interface{}); hasEnum {
					result["enum"] = append(enum, nil)
				}
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
