package ai

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/kaptinlin/jsonrepair"
)

var (
	jsonFenceOpen  = regexp.MustCompile("```json\\s*")
	jsonFenceClose = regexp.MustCompile("\\s*```")
)

// ExtractJSONObject cuts a model response down to the outermost JSON
// object it contains. Markdown code fences are removed first, then
// everything before the first '{' and after the last '}' is dropped.
// Input without any object is returned with fences stripped only.
func ExtractJSONObject(input string) string {
	input = jsonFenceOpen.ReplaceAllString(input, "")
	input = jsonFenceClose.ReplaceAllString(input, "")

	start := strings.Index(input, "{")
	end := strings.LastIndex(input, "}")
	if start == -1 || end == -1 || end < start {
		return strings.TrimSpace(input)
	}

	return input[start : end+1]
}

func stripDuplicateLeadingBrace(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") {
		rest := strings.TrimSpace(s[1:])
		if strings.HasPrefix(rest, "{") {
			return rest
		}
	}
	return s
}

// GenerateSchema creates a JSON Schema from the given Go type.
// It uses reflection to inspect the type structure and generates
// a schema suitable for use with AI structured output.
func GenerateSchema(value any) any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	t := reflect.TypeOf(value)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	v := reflect.New(t).Interface()
	return reflector.Reflect(v)
}

// UnmarshalFlexible attempts to unmarshal JSON into the target with multiple fallback strategies.
// It first tries standard JSON unmarshaling, then handles double-encoded JSON strings,
// then attempts to repair malformed JSON, and finally falls back to extracting the
// outermost JSON object from responses that wrap it in code fences or prose.
//
// This is useful for parsing AI-generated JSON which may be malformed or wrapped in strings.
//
// Example:
//
//	var result MyStruct
//	// All of these inputs would work:
//	UnmarshalFlexible(`{"name": "test"}`, &result)            // standard JSON
//	UnmarshalFlexible(`"{\"name\": \"test\"}"`, &result)      // double-encoded
//	UnmarshalFlexible(`{name: "test"}`, &result)              // malformed (repaired)
//	UnmarshalFlexible("Sure! {\"name\": \"test\"}", &result)  // wrapped in prose
func UnmarshalFlexible(input string, out any) error {
	input = strings.TrimSpace(input)

	if err := json.Unmarshal([]byte(input), out); err == nil {
		return nil
	}

	var asString string
	if err := json.Unmarshal([]byte(input), &asString); err == nil {
		asString = strings.TrimSpace(asString)
		if err := json.Unmarshal([]byte(asString), out); err == nil {
			return nil
		}
		input = asString
	}

	fixed := stripDuplicateLeadingBrace(input)
	if repaired, err := jsonrepair.JSONRepair(fixed); err == nil {
		if err := json.Unmarshal([]byte(repaired), out); err == nil {
			return nil
		}
	}

	extracted := ExtractJSONObject(input)
	repaired, err := jsonrepair.JSONRepair(extracted)
	if err != nil {
		return fmt.Errorf("json repair failed: %w (input: %s)", err, input)
	}

	if err := json.Unmarshal([]byte(repaired), out); err == nil {
		return nil
	}

	return fmt.Errorf(
		"unmarshal failed after repair: input=%s repaired=%s",
		input, repaired,
	)
}
