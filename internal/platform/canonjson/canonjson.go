// Package canonjson is the single canonical-JSON choke point used by every
// hash or signature computed in IDIS: the calc-engine reproducibility hash,
// the break-glass token signature, the audit-event sink, and the DOCX/PDF
// determinism tests. No other package hand-rolls JSON for hashing.
//
// Canonical form: ASCII output, object keys sorted lexicographically,
// separators "," and ":" with no extra whitespace, shopspring/decimal values
// rendered as JSON strings, UUIDs lowercased. Map iteration order is never
// observed; every encode step sorts keys explicitly.
package canonjson

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Marshal renders v as canonical JSON bytes.
func Marshal(v interface{}) ([]byte, error) {
	norm, err := normalize(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := encode(&buf, norm); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Hash returns the lowercase-hex SHA-256 digest of v's canonical JSON form.
func Hash(v interface{}) (string, error) {
	b, err := Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// MustHash is Hash but panics on error; only safe for values constructed
// in-process whose encodability is already guaranteed.
func MustHash(v interface{}) string {
	h, err := Hash(v)
	if err != nil {
		panic(fmt.Sprintf("canonjson: %v", err))
	}
	return h
}

// normalize converts v into a tree of map[string]interface{}, []interface{},
// string, bool, nil, json.Number and decimal.Decimal (rendered as string at
// encode time) via a JSON round-trip, so struct field tags and custom
// MarshalJSON implementations are honored identically to the rest of the
// codebase.
func normalize(v interface{}) (interface{}, error) {
	if d, ok := v.(decimal.Decimal); ok {
		return d, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic interface{}
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}
	return generic, nil
}

func encode(buf *bytes.Buffer, v interface{}) error {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
		return nil
	case bool:
		if t {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case json.Number:
		buf.WriteString(t.String())
		return nil
	case decimal.Decimal:
		return encodeString(buf, t.String())
	case string:
		return encodeString(buf, t)
	case []interface{}:
		buf.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encode(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := encode(buf, t[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	default:
		return fmt.Errorf("canonjson: unsupported type %T", v)
	}
}

// encodeString writes s as an ASCII-safe JSON string: non-ASCII runes are
// escaped as \uXXXX so the canonical form never depends on encoding locale.
func encodeString(buf *bytes.Buffer, s string) error {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 || r > 0x7e {
				fmt.Fprintf(buf, `\u%04x`, r)
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
	return nil
}

// LowercaseUUID trims and lowercases a UUID string; used wherever an entity
// ID is placed into a hash preimage.
func LowercaseUUID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
