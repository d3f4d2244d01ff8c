package services

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Optional* wrappers distinguish "field absent" from "field set to zero" in
// patch bodies. Set is true whenever the key appeared in the JSON at all.

type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		o.Value = nil
		return nil
	}
	o.Value = &s
	return nil
}

type OptionalInt struct {
	Set   bool
	Value *int
}

func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	o.Set = true
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

type OptionalFloat64 struct {
	Set   bool
	Value *float64
}

func (o *OptionalFloat64) UnmarshalJSON(data []byte) error {
	o.Set = true
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		o.Value = &v
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		o.Value = nil
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	o.Value = &f
	return nil
}

type OptionalJSON struct {
	Set   bool
	Value *json.RawMessage
}

func (o *OptionalJSON) UnmarshalJSON(data []byte) error {
	o.Set = true
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	cp := make(json.RawMessage, len(raw))
	copy(cp, raw)
	o.Value = &cp
	return nil
}

// mergeJSONObjects applies patch keys over base, shallow. Empty patch copies
// base through unchanged.
func mergeJSONObjects(base, patch json.RawMessage) (json.RawMessage, error) {
	if len(patch) == 0 {
		if len(base) == 0 {
			return nil, nil
		}
		out := make(json.RawMessage, len(base))
		copy(out, base)
		return out, nil
	}

	var patchObj map[string]any
	if err := json.Unmarshal(patch, &patchObj); err != nil {
		return nil, err
	}
	if patchObj == nil {
		patchObj = map[string]any{}
	}

	var baseObj map[string]any
	if len(base) > 0 {
		if err := json.Unmarshal(base, &baseObj); err != nil {
			return nil, err
		}
	}
	if baseObj == nil {
		baseObj = map[string]any{}
	}

	for k, v := range patchObj {
		baseObj[k] = v
	}

	merged, err := json.Marshal(baseObj)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(merged), nil
}
