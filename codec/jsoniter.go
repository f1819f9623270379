package codec

import jsoniter "github.com/json-iterator/go"

var jsoniterAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONIter is a JSON codec backed by github.com/json-iterator/go in
// standard-library compatible mode.
type JSONIter struct{}

// Marshal encodes the value to JSON.
func (JSONIter) Marshal(v any) ([]byte, error) { return jsoniterAPI.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSONIter) Unmarshal(data []byte, v any) error { return jsoniterAPI.Unmarshal(data, v) }

// Name returns the unique name of the codec ("jsoniter").
func (JSONIter) Name() string { return "jsoniter" }
