package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// unitFields has Unit's fields without its methods
type unitFields Unit

// unitKeys are the JSON names of the declared Unit fields
var unitKeys = jsonKeys(reflect.TypeFor[unitFields]())

func jsonKeys(t reflect.Type) map[string]bool {
	keys := make(map[string]bool, t.NumField())
	for i := range t.NumField() {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			keys[name] = true
		}
	}
	return keys
}

// UnmarshalJSON decodes the declared fields and keeps every other field
// in Extra
func (u *Unit) UnmarshalJSON(data []byte) error {
	var fields unitFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for key, raw := range all {
		if unitKeys[key] {
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return fmt.Errorf("unit field %s: %w", key, err)
		}
		if fields.Extra == nil {
			fields.Extra = make(map[string]json.RawMessage)
		}
		fields.Extra[key] = buf.Bytes()
	}

	*u = Unit(fields)
	return nil
}

// MarshalJSON writes the declared fields followed by Extra in key order.
// Extra entries that collide with a declared field are skipped.
func (u Unit) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(unitFields(u))
	if err != nil || len(u.Extra) == 0 {
		return data, err
	}

	var buf bytes.Buffer
	buf.Write(data[:len(data)-1])
	empty := len(data) == 2
	for _, key := range slices.Sorted(maps.Keys(u.Extra)) {
		if unitKeys[key] {
			continue
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		if !empty {
			buf.WriteByte(',')
		}
		empty = false
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(u.Extra[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML renders the JSON form so Extra is kept in YAML output
func (u Unit) MarshalYAML() (any, error) {
	data, err := u.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	node := doc.Content[0]
	blockStyle(node)
	return node, nil
}

// blockStyle drops the flow and quoting styles the JSON parse left on n.
// Scalars keep their resolved tags, so strings that look like numbers are
// still quoted on output.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
