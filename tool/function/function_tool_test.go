//
// Tencent is pleased to support the open source community by making trpc-flow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flow-go is licensed under the Apache License Version 2.0.
//
//

package function_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-flow-go/tool/function"
)

type weatherRequest struct {
	City string `json:"city" jsonschema:"description=City to look up"`
	Days int    `json:"days,omitempty" jsonschema:"description=Forecast horizon in days"`
}

type weatherResponse struct {
	City     string `json:"city"`
	Forecast string `json:"forecast"`
}

func getWeather(ctx context.Context, req weatherRequest) (weatherResponse, error) {
	if req.City == "" {
		return weatherResponse{}, errors.New("city is required")
	}
	return weatherResponse{City: req.City, Forecast: "sunny"}, nil
}

func TestFunctionTool_Call(t *testing.T) {
	t.Parallel()

	ft := function.NewFunctionTool(getWeather,
		function.WithName("get_weather"),
		function.WithDescription("Returns the weather for a city."),
	)

	out, err := ft.Call(context.Background(), []byte(`{"city":"Shenzhen"}`))
	require.NoError(t, err)
	resp, ok := out.(weatherResponse)
	require.True(t, ok)
	require.Equal(t, "Shenzhen", resp.City)
	require.Equal(t, "sunny", resp.Forecast)
}

func TestFunctionTool_CallPropagatesError(t *testing.T) {
	t.Parallel()

	ft := function.NewFunctionTool(getWeather, function.WithName("get_weather"))
	_, err := ft.Call(context.Background(), []byte(`{}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "city is required")
}

func TestFunctionTool_CallRejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	ft := function.NewFunctionTool(getWeather, function.WithName("get_weather"))
	_, err := ft.Call(context.Background(), []byte(`{"city":`))
	require.Error(t, err)
}

func TestFunctionTool_Declaration(t *testing.T) {
	t.Parallel()

	ft := function.NewFunctionTool(getWeather,
		function.WithName("get_weather"),
		function.WithDescription("Returns the weather for a city."),
	)

	decl := ft.Declaration()
	require.Equal(t, "get_weather", decl.Name)
	require.Equal(t, "Returns the weather for a city.", decl.Description)

	in := decl.InputSchema
	require.Equal(t, "object", in.Type)
	require.Equal(t, []string{"city"}, in.Required)
	require.Equal(t, "string", in.Properties["city"].Type)
	require.Equal(t, "City to look up", in.Properties["city"].Description)
	require.Equal(t, "integer", in.Properties["days"].Type)

	out := decl.OutputSchema
	require.Equal(t, "object", out.Type)
	require.Contains(t, out.Properties, "forecast")
}
