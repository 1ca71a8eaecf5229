//
// Tencent is pleased to support the open source community by making trpc-flow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flow-go is licensed under the Apache License Version 2.0.
//
//

// Package schema generates JSON schemas for tool declarations from Go types.
package schema

import (
	"reflect"
	"strings"

	"trpc.group/trpc-go/trpc-flow-go/tool"
)

// Generate builds a JSON schema from a reflect.Type. Struct fields map to
// object properties using their json tags; a field is required unless it is a
// pointer or carries omitempty. The jsonschema tag refines the result:
//
//	Query string `json:"query" jsonschema:"description=Search query text"`
//	Limit int    `json:"limit,omitempty" jsonschema:"description=Max results"`
func Generate(t reflect.Type) *tool.Schema {
	if t == nil {
		return &tool.Schema{Type: "object"}
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return generateField(t)
	}

	schema := &tool.Schema{
		Type:       "object",
		Properties: map[string]*tool.Schema{},
	}
	var required []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		fieldName := field.Name
		isOmitEmpty := false
		if jsonTag != "" {
			if commaIdx := strings.Index(jsonTag, ","); commaIdx != -1 {
				if commaIdx > 0 {
					fieldName = jsonTag[:commaIdx]
				}
				isOmitEmpty = strings.Contains(jsonTag[commaIdx:], "omitempty")
			} else {
				fieldName = jsonTag
			}
		}

		fieldSchema := generateField(field.Type)
		desc, forceRequired := parseSchemaTag(field.Tag.Get("jsonschema"))
		if desc != "" {
			fieldSchema.Description = desc
		}
		schema.Properties[fieldName] = fieldSchema

		switch {
		case forceRequired:
			required = append(required, fieldName)
		case field.Type.Kind() != reflect.Ptr && !isOmitEmpty:
			required = append(required, fieldName)
		}
	}
	if len(required) > 0 {
		schema.Required = required
	}
	return schema
}

// parseSchemaTag extracts the supported jsonschema tag directives.
func parseSchemaTag(tag string) (description string, required bool) {
	if tag == "" {
		return "", false
	}
	for _, part := range strings.Split(tag, ",") {
		switch {
		case strings.HasPrefix(part, "description="):
			description = strings.TrimPrefix(part, "description=")
		case part == "required":
			required = true
		}
	}
	return description, required
}

// generateField builds the schema for a single field type.
func generateField(t reflect.Type) *tool.Schema {
	switch t.Kind() {
	case reflect.String:
		return &tool.Schema{Type: "string"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &tool.Schema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &tool.Schema{Type: "number"}
	case reflect.Bool:
		return &tool.Schema{Type: "boolean"}
	case reflect.Slice, reflect.Array:
		return &tool.Schema{
			Type:  "array",
			Items: generateField(t.Elem()),
		}
	case reflect.Map:
		return &tool.Schema{
			Type:                 "object",
			AdditionalProperties: generateField(t.Elem()),
		}
	case reflect.Ptr:
		return generateField(t.Elem())
	case reflect.Struct:
		nested := &tool.Schema{
			Type:       "object",
			Properties: map[string]*tool.Schema{},
		}
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			jsonTag := field.Tag.Get("json")
			if jsonTag == "-" {
				continue
			}
			fieldName := field.Name
			if jsonTag != "" {
				if commaIdx := strings.Index(jsonTag, ","); commaIdx != -1 {
					if commaIdx > 0 {
						fieldName = jsonTag[:commaIdx]
					}
				} else {
					fieldName = jsonTag
				}
			}
			fieldSchema := generateField(field.Type)
			if desc, _ := parseSchemaTag(field.Tag.Get("jsonschema")); desc != "" {
				fieldSchema.Description = desc
			}
			nested.Properties[fieldName] = fieldSchema
		}
		return nested
	default:
		return &tool.Schema{Type: "object"}
	}
}
