package store

import (
	"encoding/json"

	"github.com/agenthands/distill/internal/core/model"
)

// The SQL and graph backends keep attributes as a JSON text column so any
// attribute value survives unchanged.

func encodeAttributes(attrs model.Attributes) (string, error) {
	if attrs == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(attrs)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeAttributes(raw string) (model.Attributes, error) {
	attrs := model.Attributes{}
	if raw == "" {
		return attrs, nil
	}
	if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
		return nil, err
	}
	if attrs == nil {
		attrs = model.Attributes{}
	}
	return attrs, nil
}
