package codec

import "encoding/json"

// JSON serializes values with encoding/json. The zero value is ready to
// use; this is the default codec since entries stay greppable on disk.
type JSON[V any] struct{}

var _ Codec[struct{}] = JSON[struct{}]{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }
func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}
