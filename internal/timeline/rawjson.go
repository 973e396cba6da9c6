package timeline

import (
	"bytes"
	"slices"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// The helpers below patch a raw JSON object in place of re-marshalling it.
// Each setter leaves the input untouched when the stored value already equals
// the requested one, so unchanged fields keep their original spelling
// (1.0 stays 1.0) and untouched documents serialize byte-identically.

func escapePath(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', '!', '=', '<', '>', '%', ':':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func setInt(raw []byte, path string, v int64) ([]byte, error) {
	cur := gjson.GetBytes(raw, path)
	if cur.Type == gjson.Number && cur.Num == float64(v) && cur.Int() == v {
		return raw, nil
	}
	return sjson.SetBytes(raw, path, v)
}

func setFloat(raw []byte, path string, v float64) ([]byte, error) {
	cur := gjson.GetBytes(raw, path)
	if cur.Type == gjson.Number && cur.Num == v {
		return raw, nil
	}
	return sjson.SetBytes(raw, path, v)
}

func setString(raw []byte, path string, v string) ([]byte, error) {
	cur := gjson.GetBytes(raw, path)
	if cur.Type == gjson.String && cur.Str == v {
		return raw, nil
	}
	return sjson.SetBytes(raw, path, v)
}

func setBool(raw []byte, path string, v bool) ([]byte, error) {
	cur := gjson.GetBytes(raw, path)
	if (v && cur.Type == gjson.True) || (!v && cur.Type == gjson.False) {
		return raw, nil
	}
	return sjson.SetBytes(raw, path, v)
}

func setStrings(raw []byte, path string, v []string) ([]byte, error) {
	cur := gjson.GetBytes(raw, path)
	if cur.IsArray() && slices.Equal(stringArray(cur), v) {
		return raw, nil
	}
	if v == nil {
		v = []string{}
	}
	return sjson.SetBytes(raw, path, v)
}

func setRaw(raw []byte, path string, value []byte) ([]byte, error) {
	cur := gjson.GetBytes(raw, path)
	if cur.Exists() && cur.Raw == string(value) {
		return raw, nil
	}
	return sjson.SetRawBytes(raw, path, value)
}

func has(raw []byte, path string) bool {
	return gjson.GetBytes(raw, path).Exists()
}

// joinArray renders elems as a JSON array. When orig is an array holding
// exactly the same element bytes, orig is returned so its formatting survives.
func joinArray(orig string, elems [][]byte) []byte {
	if orig != "" {
		parsed := gjson.Parse(orig)
		if parsed.IsArray() {
			existing := parsed.Array()
			if len(existing) == len(elems) {
				same := true
				for i, el := range existing {
					if el.Raw != string(elems[i]) {
						same = false
						break
					}
				}
				if same {
					return []byte(orig)
				}
			}
		}
	}
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, el := range elems {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(el)
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

func stringArray(r gjson.Result) []string {
	items := r.Array()
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.String())
	}
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
