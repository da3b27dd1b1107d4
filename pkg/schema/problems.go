// pkg/schema/problems.go
package schema

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// Problem is one field-level decode failure, shaped like the validation
// error lists clients of schema-checked APIs already expect.
type Problem struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// Problems maps a decode error onto a non-empty list of field problems.
// Returns nil when err is nil.
func Problems(err error) []Problem {
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		loc := []string{"body"}
		if typeErr.Field != "" {
			loc = append(loc, strings.Split(typeErr.Field, ".")...)
		}
		return []Problem{{
			Loc:  loc,
			Msg:  "expected " + typeErr.Type.String() + ", got " + typeErr.Value,
			Type: "type_error",
		}}
	}

	var synErr *json.SyntaxError
	if errors.As(err, &synErr) {
		return []Problem{{
			Loc:  []string{"body"},
			Msg:  synErr.Error(),
			Type: "json_invalid",
		}}
	}

	// Truncated or empty payloads surface as bare EOFs from the decoder.
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return []Problem{{
			Loc:  []string{"body"},
			Msg:  "unexpected end of JSON input",
			Type: "json_invalid",
		}}
	}

	msg := err.Error()
	if field, ok := unknownField(msg); ok {
		return []Problem{{
			Loc:  []string{"body", field},
			Msg:  "unknown field",
			Type: "extra_forbidden",
		}}
	}

	return []Problem{{
		Loc:  []string{"body"},
		Msg:  msg,
		Type: "value_error",
	}}
}

// unknownField digs the field name out of encoding/json's
// `unknown field "x"` message, which has no dedicated error type.
func unknownField(msg string) (string, bool) {
	const marker = `unknown field "`
	i := strings.Index(msg, marker)
	if i < 0 {
		return "", false
	}
	rest := msg[i+len(marker):]
	j := strings.Index(rest, `"`)
	if j < 0 {
		return "", false
	}
	return rest[:j], true
}
