package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// document is the raw JSON text shared by an object and every nested object
// handed out from it. The first failed edit is kept in err.
type document struct {
	raw []byte
	err error
}

// Object is a view of one JSON object inside a document. Reads go through
// gjson and edits through sjson against the raw text, so untouched keys keep
// their position, number literals and string escapes.
//
// Get returns *Object for nested objects, []any for arrays, string,
// json.Number, bool or nil. Set accepts any value encoding/json can marshal.
type Object struct {
	doc  *document
	path string
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{doc: &document{raw: []byte("{}")}}
}

func (o *Object) keyPath(key string) string {
	if o.path == "" {
		return gjson.Escape(key)
	}
	return o.path + "." + gjson.Escape(key)
}

func (o *Object) result() gjson.Result {
	if o.path == "" {
		return gjson.ParseBytes(o.doc.raw)
	}
	return gjson.GetBytes(o.doc.raw, o.path)
}

func (o *Object) lookup(key string) gjson.Result {
	return gjson.GetBytes(o.doc.raw, o.keyPath(key))
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	r := o.lookup(key)
	if !r.Exists() {
		return nil, false
	}
	return o.convert(o.keyPath(key), r), true
}

func (o *Object) convert(path string, r gjson.Result) any {
	switch {
	case r.IsObject():
		return &Object{doc: o.doc, path: path}
	case r.IsArray():
		items := []any{}
		for i, item := range r.Array() {
			items = append(items, o.convert(path+"."+strconv.Itoa(i), item))
		}
		return items
	}
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.Number:
		return json.Number(r.Raw)
	case gjson.True, gjson.False:
		return r.Bool()
	}
	return nil
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	return o.lookup(key).Exists()
}

// Set stores v under key. New keys are appended; existing keys keep their
// position. Objects are copied.
func (o *Object) Set(key string, v any) {
	raw, err := marshal(v)
	if err != nil {
		o.fail(fmt.Errorf("encoding %q: %w", key, err))
		return
	}
	o.setRaw(key, raw)
}

func (o *Object) setRaw(key string, raw []byte) {
	if o.doc.err != nil {
		return
	}
	out, err := sjson.SetRawBytes(o.doc.raw, o.keyPath(key), raw)
	if err != nil {
		o.fail(fmt.Errorf("setting %q: %w", key, err))
		return
	}
	o.doc.raw = out
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	if o.doc.err != nil || !o.Has(key) {
		return false
	}
	out, err := sjson.DeleteBytes(o.doc.raw, o.keyPath(key))
	if err != nil {
		o.fail(fmt.Errorf("deleting %q: %w", key, err))
		return false
	}
	o.doc.raw = out
	return true
}

func (o *Object) fail(err error) {
	if o.doc.err == nil {
		o.doc.err = err
	}
}

// Err returns the first edit that could not be applied.
func (o *Object) Err() error {
	return o.doc.err
}

// Keys returns the keys in document order.
func (o *Object) Keys() []string {
	var keys []string
	o.result().ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})
	return keys
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.Keys())
}

// String returns the value under key when it is a string.
func (o *Object) String(key string) (string, bool) {
	r := o.lookup(key)
	if r.Type != gjson.String {
		return "", false
	}
	return r.Str, true
}

// Object returns the nested object under key, creating an empty one at the
// end of the key list when the key is absent. It fails when the key holds a
// value that is not an object.
func (o *Object) Object(key string) (*Object, error) {
	r := o.lookup(key)
	if !r.Exists() || r.Type == gjson.Null {
		o.setRaw(key, []byte("{}"))
		if o.doc.err != nil {
			return nil, o.doc.err
		}
	} else if !r.IsObject() {
		return nil, fmt.Errorf("key %q holds %s, not an object", key, kind(r))
	}
	return &Object{doc: o.doc, path: o.keyPath(key)}, nil
}

func kind(r gjson.Result) string {
	switch {
	case r.IsArray():
		return "an array"
	case r.Type == gjson.String:
		return "a string"
	case r.Type == gjson.Number:
		return "a number"
	case r.Type == gjson.True, r.Type == gjson.False:
		return "a boolean"
	}
	return "null"
}

// MarshalJSON returns the object's text as stored, or the first failed edit.
func (o *Object) MarshalJSON() ([]byte, error) {
	if o.doc.err != nil {
		return nil, o.doc.err
	}
	return bytes.TrimSpace([]byte(o.result().Raw)), nil
}

// marshal encodes v without HTML escaping. Objects contribute their raw text.
func marshal(v any) ([]byte, error) {
	if obj, ok := v.(*Object); ok {
		return obj.MarshalJSON()
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Decode parses data as a JSON object. Comments and trailing commas are
// tolerated so tsconfig and editor settings files can be read.
func Decode(data []byte) (*Object, error) {
	raw := toJSON(data)
	if !gjson.ValidBytes(raw) {
		return nil, errors.New("parsing JSON: invalid document")
	}
	if !gjson.ParseBytes(raw).IsObject() {
		return nil, errors.New("parsing JSON: top-level value is not an object")
	}
	return &Object{doc: &document{raw: raw}}, nil
}
