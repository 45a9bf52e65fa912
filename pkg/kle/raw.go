package kle

import (
	"bytes"
	"encoding/json"
)

// Parse accepts either a compact document or the "raw data" text shown in
// the web editor, which drops the outer brackets and leaves object keys
// unquoted.
func Parse(data []byte) (Keyboard, error) {
	data = bytes.TrimSpace(data)
	if IsDocument(data) {
		return Decode(data)
	}
	return Decode(NormalizeRaw(data))
}

// IsDocument reports whether data already is a compact document: a JSON
// array whose first element is a row, the metadata object, or nothing.
func IsDocument(data []byte) bool {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' || !json.Valid(data) {
		return false
	}
	switch firstToken(data[1:]) {
	case '[', '{', ']':
		return true
	}
	return false
}

// NormalizeRaw wraps raw editor data in brackets and quotes bare property
// names. String literals are copied through untouched.
func NormalizeRaw(data []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(data) + 2)
	out.WriteByte('[')

	inString := false
	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			out.WriteByte(c)
			switch c {
			case '\\':
				if i+1 < len(data) {
					i++
					out.WriteByte(data[i])
				}
			case '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			out.WriteByte(c)
			continue
		}
		if isIdentStart(c) {
			j := i + 1
			for j < len(data) && isIdentPart(data[j]) {
				j++
			}
			if k := skipSpace(data, j); k < len(data) && data[k] == ':' {
				out.WriteByte('"')
				out.Write(data[i:j])
				out.WriteByte('"')
			} else {
				out.Write(data[i:j])
			}
			i = j - 1
			continue
		}
		out.WriteByte(c)
	}

	out.WriteByte(']')
	return out.Bytes()
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func skipSpace(data []byte, i int) int {
	for i < len(data) && (data[i] == ' ' || data[i] == '\t' || data[i] == '\n' || data[i] == '\r') {
		i++
	}
	return i
}
