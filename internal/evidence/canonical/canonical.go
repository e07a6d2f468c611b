// Package canonical turns arbitrary data values into one deterministic
// serialization and a deterministic hash of it. Two structurally equal
// values always canonicalize to the same string regardless of key insertion
// order or object identity - every integrity guarantee in an evidence pack
// rests on this property.
package canonical

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	dErrors "dossier/pkg/domain-errors"
)

// Canonicalize serializes v with all object keys sorted lexicographically,
// arrays in order, and scalars JSON-encoded. Non-finite numbers and cyclic
// values are programming errors and fail with CodeSerialization.
func Canonicalize(v any) (string, error) {
	normalized, err := normalize(v)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := write(&sb, normalized); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Digest computes the SHA-256 of the UTF-8 bytes of s, lowercase hex.
func Digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// HashValue is Digest(Canonicalize(v)).
func HashValue(v any) (string, error) {
	s, err := Canonicalize(v)
	if err != nil {
		return "", err
	}
	return Digest(s), nil
}

// normalize reduces v to the JSON data model (map[string]any, []any,
// json.Number, string, bool, nil) via a marshal round-trip. json.Number
// keeps the source's numeric text verbatim so no float reformatting can
// change a hash.
func normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeSerialization, "value is not canonicalizable", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeSerialization, "normalize value", err)
	}
	return out, nil
}

func write(sb *strings.Builder, v any) error {
	switch val := v.(type) {
	case nil:
		sb.WriteString("null")
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			if err := writeString(sb, k); err != nil {
				return err
			}
			sb.WriteByte(':')
			if err := write(sb, val[k]); err != nil {
				return err
			}
		}
		sb.WriteByte('}')
	case []any:
		sb.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				sb.WriteByte(',')
			}
			if err := write(sb, item); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
	case json.Number:
		sb.WriteString(val.String())
	case string:
		return writeString(sb, val)
	case bool:
		if val {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	default:
		// normalize() only produces the cases above.
		return dErrors.Newf(dErrors.CodeSerialization, "unexpected canonical type %T", v)
	}
	return nil
}

func writeString(sb *strings.Builder, s string) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return dErrors.Wrap(dErrors.CodeSerialization, "encode string", err)
	}
	sb.Write(raw)
	return nil
}
