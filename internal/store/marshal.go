package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/simquery/internal/world"
)

// marshalParams converts entity parameters to JSON TEXT for storage.
// Floats keep a fractional part, so the param kinds survive a round trip.
func marshalParams(params world.Params) (string, error) {
	if params == nil {
		params = world.Params{}
	}
	data, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("marshal params: %w", err)
	}
	return string(data), nil
}

// unmarshalParams converts stored JSON TEXT back to parameters.
// An empty string yields an empty list.
func unmarshalParams(data string) (world.Params, error) {
	if data == "" {
		return world.Params{}, nil
	}
	var params world.Params
	if err := json.Unmarshal([]byte(data), &params); err != nil {
		return nil, fmt.Errorf("unmarshal params: %w", err)
	}
	if params == nil {
		params = world.Params{}
	}
	return params, nil
}
