// Package serialized converts between plain Go mappings and the PHP
// serialize() strings sites store metatag values and paragraph behaviour
// settings in.
//
// Decoded arrays whose keys are exactly 0..n-1 in order become []any, every
// other array becomes map[string]any. Integers decode to int.
package serialized

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/elliotchance/phpserialize"
)

// ErrUnsupported is returned for values the format cannot represent.
var ErrUnsupported = errors.New("serialized: unsupported value")

// ErrSyntax is returned for input that is not a serialised array.
var ErrSyntax = errors.New("serialized: syntax error")

// Decode decodes a serialised array into a mapping.
func Decode(data string) (out map[string]any, err error) {
	// The decoder slices by the lengths declared in the input.
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrSyntax, r)
		}
	}()

	raw, err := phpserialize.UnmarshalAssociativeArray([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	m := make(map[string]any, len(raw))
	for k, v := range raw {
		m[keyString(k)] = convert(v)
	}
	return m, nil
}

func keyString(k any) string {
	switch kv := k.(type) {
	case string:
		return kv
	case int64:
		return strconv.FormatInt(kv, 10)
	default:
		return fmt.Sprint(kv)
	}
}

// convert turns decoded values into the loose types used by documents.
func convert(v any) any {
	switch val := v.(type) {
	case int64:
		return int(val)
	case map[any]any:
		if list, ok := asList(val); ok {
			return list
		}
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[keyString(k)] = convert(item)
		}
		return m
	default:
		return val
	}
}

func asList(m map[any]any) ([]any, bool) {
	if len(m) == 0 {
		return nil, false
	}
	list := make([]any, len(m))
	for k, v := range m {
		i, ok := k.(int64)
		if !ok || i < 0 || i >= int64(len(m)) {
			return nil, false
		}
		list[i] = convert(v)
	}
	return list, true
}

// Encode serialises a mapping. Keys are written in sorted order, so
// encoding a decoded value again yields the same string.
func Encode(m map[string]any) (string, error) {
	var b bytes.Buffer
	if err := encodeMap(&b, m); err != nil {
		return "", err
	}
	return b.String(), nil
}

func encodeMap(b *bytes.Buffer, m map[string]any) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(b, "a:%d:{", len(m))
	for _, k := range keys {
		var key any = k
		if n, err := strconv.ParseInt(k, 10, 64); err == nil && strconv.FormatInt(n, 10) == k {
			key = n
		}
		if err := encodeValue(b, key); err != nil {
			return err
		}
		if err := encodeValue(b, m[k]); err != nil {
			return err
		}
	}
	b.WriteByte('}')
	return nil
}

func encodeValue(b *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		b.WriteString("N;")
		return nil
	case map[string]any:
		return encodeMap(b, val)
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[keyString(k)] = item
		}
		return encodeMap(b, m)
	case []any:
		return encodeList(b, val)
	case []map[string]any:
		list := make([]any, len(val))
		for i, m := range val {
			list[i] = m
		}
		return encodeList(b, list)
	case []string:
		list := make([]any, len(val))
		for i, s := range val {
			list[i] = s
		}
		return encodeList(b, list)
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fmt.Errorf("%w: %v", ErrUnsupported, val)
		}
	case bool, string, int, int32, int64, uint64:
	default:
		return fmt.Errorf("%w: %T", ErrUnsupported, v)
	}

	out, err := phpserialize.Marshal(v, phpserialize.DefaultMarshalOptions())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	b.Write(out)
	return nil
}

// encodeList writes list items under their positions, which keeps index
// order for lists of ten or more items.
func encodeList(b *bytes.Buffer, list []any) error {
	fmt.Fprintf(b, "a:%d:{", len(list))
	for i, item := range list {
		if err := encodeValue(b, int64(i)); err != nil {
			return err
		}
		if err := encodeValue(b, item); err != nil {
			return err
		}
	}
	b.WriteByte('}')
	return nil
}
