//
// Tencent is pleased to support the open source community by making trpc-flow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flow-go is licensed under the Apache License Version 2.0.
//
//

package tool

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ValidateAndCoerce checks raw arguments against a declaration input schema
// and converts values to their declared types where a conventional conversion
// exists (numeric strings, "true"/"false"/"yes"/"no"/"1"/"0", JSON-encoded
// arrays and objects inside strings).
//
// Models routinely hallucinate extra fields and stringly-typed values, so the
// rules are deliberately permissive:
//   - keys not declared in the schema are dropped silently, unless the schema
//     allows additional properties;
//   - null and blank-string values for optional parameters are stripped so
//     empty filters never reach a downstream API;
//   - missing or null required parameters are reported per parameter.
//
// Coercion is idempotent: applying it to already-coerced arguments returns
// the same map. The input map is never mutated.
func ValidateAndCoerce(schema *Schema, args map[string]any) (map[string]any, []error) {
	coerced := make(map[string]any, len(args))
	if schema == nil {
		return coerced, nil
	}
	if allowsAdditional(schema) {
		for name, value := range args {
			if _, declared := schema.Properties[name]; !declared {
				coerced[name] = value
			}
		}
	}

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	var errs []error
	for name, propSchema := range schema.Properties {
		value, present := args[name]
		if !present {
			if required[name] {
				errs = append(errs, fmt.Errorf("missing required parameter %q", name))
			}
			continue
		}
		if value == nil {
			if required[name] {
				errs = append(errs, fmt.Errorf("required parameter %q is null", name))
			}
			continue
		}
		if s, ok := value.(string); ok && s == "" && !required[name] {
			continue
		}
		converted, err := coerceValue(value, propSchema)
		if err != nil {
			errs = append(errs, fmt.Errorf("parameter %q: %w", name, err))
			continue
		}
		coerced[name] = converted
	}
	return coerced, errs
}

// allowsAdditional reports whether the schema explicitly permits properties
// beyond the declared ones.
func allowsAdditional(schema *Schema) bool {
	switch v := schema.AdditionalProperties.(type) {
	case bool:
		return v
	case nil:
		return false
	default:
		// A schema value for additionalProperties also permits extra keys.
		return true
	}
}

// coerceValue converts a single value to the type declared by the schema.
func coerceValue(value any, schema *Schema) (any, error) {
	if schema == nil {
		return value, nil
	}
	switch schema.Type {
	case "string":
		return coerceString(value)
	case "number":
		return coerceNumber(value)
	case "integer":
		return coerceInteger(value)
	case "boolean":
		return coerceBoolean(value)
	case "array":
		return coerceArray(value, schema)
	case "object":
		return coerceObject(value, schema)
	default:
		// No declared type, pass the value through unchanged.
		return value, nil
	}
}

func coerceString(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case json.Number:
		return v.String(), nil
	default:
		return nil, fmt.Errorf("cannot convert %T to string", value)
	}
}

func coerceNumber(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert string %q to number", v)
		}
		return parsed, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to number", value)
	}
}

func coerceInteger(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		if float64(int(v)) != v {
			return nil, fmt.Errorf("cannot convert non-integer number %v to integer", v)
		}
		return int(v), nil
	case float32:
		return coerceInteger(float64(v))
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to integer", v.String())
		}
		return int(i), nil
	case string:
		s := strings.TrimSpace(v)
		if parsed, err := strconv.Atoi(s); err == nil {
			return parsed, nil
		}
		// Accept integral floats such as "3.0".
		if f, err := strconv.ParseFloat(s, 64); err == nil && float64(int(f)) == f {
			return int(f), nil
		}
		return nil, fmt.Errorf("cannot convert string %q to integer", v)
	default:
		return nil, fmt.Errorf("cannot convert %T to integer", value)
	}
}

func coerceBoolean(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "1":
			return true, nil
		case "false", "no", "0":
			return false, nil
		default:
			return nil, fmt.Errorf("cannot convert string %q to boolean", v)
		}
	case float64:
		if v == 1 {
			return true, nil
		}
		if v == 0 {
			return false, nil
		}
		return nil, fmt.Errorf("cannot convert number %v to boolean", v)
	case int:
		return coerceBoolean(float64(v))
	default:
		return nil, fmt.Errorf("cannot convert %T to boolean", value)
	}
}

func coerceArray(value any, schema *Schema) (any, error) {
	arr, ok := value.([]any)
	if !ok {
		// Models often JSON-encode arrays inside a string argument.
		if s, isStr := value.(string); isStr && strings.HasPrefix(strings.TrimSpace(s), "[") {
			var decoded []any
			if err := json.Unmarshal([]byte(s), &decoded); err != nil {
				return nil, fmt.Errorf("cannot decode string as array: %w", err)
			}
			arr = decoded
		} else {
			// A bare value in array position becomes a one-element array.
			converted, err := coerceValue(value, schema.Items)
			if err != nil {
				return nil, fmt.Errorf("cannot convert %T to array", value)
			}
			return []any{converted}, nil
		}
	}
	if schema.Items == nil {
		return arr, nil
	}
	result := make([]any, len(arr))
	for i, item := range arr {
		converted, err := coerceValue(item, schema.Items)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		result[i] = converted
	}
	return result, nil
}

func coerceObject(value any, schema *Schema) (any, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		// Models often JSON-encode objects inside a string argument.
		s, isStr := value.(string)
		if !isStr || !strings.HasPrefix(strings.TrimSpace(s), "{") {
			return nil, fmt.Errorf("cannot convert %T to object", value)
		}
		var decoded map[string]any
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return nil, fmt.Errorf("cannot decode string as object: %w", err)
		}
		obj = decoded
	}
	if schema.Properties == nil {
		return obj, nil
	}
	result := make(map[string]any, len(obj))
	for name, propVal := range obj {
		propSchema, declared := schema.Properties[name]
		if !declared {
			// Nested extras are kept; only top-level unknowns are dropped.
			result[name] = propVal
			continue
		}
		converted, err := coerceValue(propVal, propSchema)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		result[name] = converted
	}
	return result, nil
}
