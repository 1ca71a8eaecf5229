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
	"testing"

	"github.com/stretchr/testify/require"
)

func searchSchema() *Schema {
	return &Schema{
		Type:     "object",
		Required: []string{"query"},
		Properties: map[string]*Schema{
			"query":    {Type: "string"},
			"limit":    {Type: "integer"},
			"min":      {Type: "number"},
			"exact":    {Type: "boolean"},
			"tags":     {Type: "array", Items: &Schema{Type: "string"}},
			"filters":  {Type: "object", Properties: map[string]*Schema{"age": {Type: "integer"}}},
			"optional": {Type: "string"},
		},
	}
}

func TestValidateAndCoerce_MissingRequired(t *testing.T) {
	t.Parallel()

	_, errs := ValidateAndCoerce(searchSchema(), map[string]any{"limit": 3})
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Error(), "query")
}

func TestValidateAndCoerce_NullRequired(t *testing.T) {
	t.Parallel()

	_, errs := ValidateAndCoerce(searchSchema(), map[string]any{"query": nil})
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Error(), "null")
}

func TestValidateAndCoerce_DropsUnknownKeys(t *testing.T) {
	t.Parallel()

	coerced, errs := ValidateAndCoerce(searchSchema(), map[string]any{
		"query":        "books",
		"hallucinated": "field",
	})
	require.Empty(t, errs)
	require.Equal(t, map[string]any{"query": "books"}, coerced)
}

func TestValidateAndCoerce_KeepsUnknownWhenAdditionalAllowed(t *testing.T) {
	t.Parallel()

	schema := &Schema{
		Type:                 "object",
		Properties:           map[string]*Schema{"query": {Type: "string"}},
		AdditionalProperties: true,
	}
	coerced, errs := ValidateAndCoerce(schema, map[string]any{
		"query": "books",
		"extra": 42,
	})
	require.Empty(t, errs)
	require.Equal(t, 42, coerced["extra"])
}

func TestValidateAndCoerce_StripsBlankAndNullOptionals(t *testing.T) {
	t.Parallel()

	coerced, errs := ValidateAndCoerce(searchSchema(), map[string]any{
		"query":    "books",
		"optional": "",
		"min":      nil,
	})
	require.Empty(t, errs)
	require.NotContains(t, coerced, "optional")
	require.NotContains(t, coerced, "min")
}

func TestValidateAndCoerce_PrimitiveConversions(t *testing.T) {
	t.Parallel()

	coerced, errs := ValidateAndCoerce(searchSchema(), map[string]any{
		"query": 42,     // number -> string
		"limit": "3",    // numeric string -> integer
		"min":   "0.25", // numeric string -> number
		"exact": "true", // string -> boolean
	})
	require.Empty(t, errs)
	require.Equal(t, "42", coerced["query"])
	require.Equal(t, 3, coerced["limit"])
	require.Equal(t, 0.25, coerced["min"])
	require.Equal(t, true, coerced["exact"])
}

func TestValidateAndCoerce_BooleanSpellings(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   any
		want bool
	}{
		{"true", true}, {"yes", true}, {"1", true},
		{"false", false}, {"no", false}, {"0", false},
		{float64(1), true}, {float64(0), false},
	}
	for _, c := range cases {
		coerced, errs := ValidateAndCoerce(searchSchema(), map[string]any{
			"query": "q", "exact": c.in,
		})
		require.Empty(t, errs, "input %v", c.in)
		require.Equal(t, c.want, coerced["exact"], "input %v", c.in)
	}
}

func TestValidateAndCoerce_IntegralFloatString(t *testing.T) {
	t.Parallel()

	coerced, errs := ValidateAndCoerce(searchSchema(), map[string]any{
		"query": "q", "limit": "3.0",
	})
	require.Empty(t, errs)
	require.Equal(t, 3, coerced["limit"])
}

func TestValidateAndCoerce_JSONEncodedComposites(t *testing.T) {
	t.Parallel()

	coerced, errs := ValidateAndCoerce(searchSchema(), map[string]any{
		"query":   "q",
		"tags":    `["a","b"]`,
		"filters": `{"age":"7"}`,
	})
	require.Empty(t, errs)
	require.Equal(t, []any{"a", "b"}, coerced["tags"])
	require.Equal(t, map[string]any{"age": 7}, coerced["filters"])
}

func TestValidateAndCoerce_BareValueBecomesArray(t *testing.T) {
	t.Parallel()

	coerced, errs := ValidateAndCoerce(searchSchema(), map[string]any{
		"query": "q", "tags": "solo",
	})
	require.Empty(t, errs)
	require.Equal(t, []any{"solo"}, coerced["tags"])
}

func TestValidateAndCoerce_ArrayItemCoercion(t *testing.T) {
	t.Parallel()

	schema := &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"ids": {Type: "array", Items: &Schema{Type: "integer"}},
		},
	}
	coerced, errs := ValidateAndCoerce(schema, map[string]any{
		"ids": []any{"1", float64(2), 3},
	})
	require.Empty(t, errs)
	require.Equal(t, []any{1, 2, 3}, coerced["ids"])
}

func TestValidateAndCoerce_ConversionFailures(t *testing.T) {
	t.Parallel()

	cases := []map[string]any{
		{"query": "q", "limit": "many"},
		{"query": "q", "limit": 1.5},
		{"query": "q", "min": "fast"},
		{"query": "q", "exact": "maybe"},
		{"query": "q", "exact": float64(2)},
		{"query": "q", "filters": 12},
	}
	for _, args := range cases {
		_, errs := ValidateAndCoerce(searchSchema(), args)
		require.NotEmpty(t, errs, "args %v should fail", args)
	}
}

func TestValidateAndCoerce_ErrorsReportedPerParameter(t *testing.T) {
	t.Parallel()

	_, errs := ValidateAndCoerce(searchSchema(), map[string]any{
		"limit": "many",
		"exact": "maybe",
	})
	// Missing query plus two conversion failures.
	require.Len(t, errs, 3)
}

func TestValidateAndCoerce_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []map[string]any{
		{"query": "books", "limit": "3", "exact": "yes", "tags": `["a"]`},
		{"query": 42, "min": "1.5", "filters": `{"age":"7"}`},
		{"query": "q", "tags": "solo", "exact": float64(1)},
	}
	for _, args := range inputs {
		once, errs := ValidateAndCoerce(searchSchema(), args)
		require.Empty(t, errs)
		twice, errs := ValidateAndCoerce(searchSchema(), once)
		require.Empty(t, errs)
		require.Equal(t, once, twice)
	}
}

func TestValidateAndCoerce_NilSchemaDropsEverything(t *testing.T) {
	t.Parallel()

	coerced, errs := ValidateAndCoerce(nil, map[string]any{"any": "thing"})
	require.Empty(t, errs)
	require.Empty(t, coerced)
}
