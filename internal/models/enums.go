package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrorAction is the per-command policy applied when a command fails.
type ErrorAction string

// Error actions.
const (
	Stop     ErrorAction = "stop"
	Skip     ErrorAction = "skip"
	Retry    ErrorAction = "retry"
	Continue ErrorAction = "continue"
)

// ParseErrorAction parses s case-insensitively.
func ParseErrorAction(s string) (ErrorAction, error) {
	switch a := ErrorAction(strings.ToLower(strings.TrimSpace(s))); a {
	case Stop, Skip, Retry, Continue:
		return a, nil
	case "":
		return Stop, nil
	default:
		return "", fmt.Errorf("invalid on_error %q: want stop, skip, retry or continue", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *ErrorAction) UnmarshalText(b []byte) error {
	v, err := ParseErrorAction(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// ParameterType hints how a parameter value should be collected. The engine
// itself never enforces it.
type ParameterType string

// Parameter types.
const (
	Text     ParameterType = "text"
	Password ParameterType = "password"
	Choice   ParameterType = "choice"
	Boolean  ParameterType = "boolean"
)

// ParseParameterType parses s case-insensitively; empty means Text.
func ParseParameterType(s string) (ParameterType, error) {
	switch t := ParameterType(strings.ToLower(strings.TrimSpace(s))); t {
	case Text, Password, Choice, Boolean:
		return t, nil
	case "":
		return Text, nil
	default:
		return "", fmt.Errorf("invalid parameter type %q: want text, password, choice or boolean", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ParameterType) UnmarshalText(b []byte) error {
	v, err := ParseParameterType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// parameterAlias avoids recursion in the custom decoders below.
type parameterAlias Parameter

// UnmarshalJSON applies the defaults records written without a type or
// required flag expect: text, required.
func (p *Parameter) UnmarshalJSON(b []byte) error {
	v := parameterAlias{Type: Text, Required: true}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*p = Parameter(v)
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML bundles.
func (p *Parameter) UnmarshalYAML(node *yaml.Node) error {
	v := parameterAlias{Type: Text, Required: true}
	if err := node.Decode(&v); err != nil {
		return err
	}
	*p = Parameter(v)
	return nil
}
