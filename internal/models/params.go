package models

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var paramRe = regexp.MustCompile(`{{([a-zA-Z0-9_.-]+)}}`)

// Placeholder returns the literal token substituted for name.
func Placeholder(name string) string {
	return "{{" + name + "}}"
}

// FindParams returns a unique list of parameter names referenced in s in order of appearance.
func FindParams(s string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, m := range paramRe.FindAllStringSubmatch(s, -1) {
		name := m[1]
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// ApplyParams replaces every {{name}} in s with values[name]. Replacement is
// literal and single-pass: substituted values are never rescanned, and
// placeholders without a value are left untouched.
func ApplyParams(s string, values map[string]string) string {
	if len(values) == 0 || !strings.Contains(s, "{{") {
		return s
	}
	names := make([]string, 0, len(values))
	for k := range values {
		names = append(names, k)
	}
	slices.Sort(names)
	pairs := make([]string, 0, 2*len(names))
	for _, k := range names {
		pairs = append(pairs, Placeholder(k), values[k])
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

// ParameterValues merges supplied values over the declared defaults. Keys
// that are not declared are kept so ad-hoc placeholders still substitute.
func (a Automation) ParameterValues(supplied map[string]string) map[string]string {
	out := make(map[string]string, len(supplied)+len(a.Parameters))
	for _, p := range a.Parameters {
		if p.DefaultValue != nil {
			out[p.Name] = *p.DefaultValue
		}
	}
	for k, v := range supplied {
		out[k] = v
	}
	return out
}

// SubstituteParameters returns a copy of a whose command lines have their
// placeholders replaced by supplied values or declared defaults. The
// receiver is not modified.
func (a Automation) SubstituteParameters(supplied map[string]string) Automation {
	out := a.Clone()
	values := a.ParameterValues(supplied)
	for i := range out.Commands {
		out.Commands[i].Command = ApplyParams(out.Commands[i].Command, values)
	}
	return out
}

// Placeholders lists the parameter names referenced by any command.
func (a Automation) Placeholders() []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range a.Commands {
		for _, n := range FindParams(c.Command) {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	return out
}

// ParameterError reports required parameters that have neither a supplied
// value nor a default.
type ParameterError struct {
	Missing []string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("missing parameters: %s", strings.Join(e.Missing, ", "))
}

// MissingParameters returns the required parameters left without a value.
func (a Automation) MissingParameters(supplied map[string]string) []string {
	values := a.ParameterValues(supplied)
	var missing []string
	for _, p := range a.Parameters {
		if !p.Required {
			continue
		}
		if _, ok := values[p.Name]; !ok {
			missing = append(missing, p.Name)
		}
	}
	return missing
}

// CheckParameters returns a *ParameterError when required parameters are missing.
func (a Automation) CheckParameters(supplied map[string]string) error {
	if missing := a.MissingParameters(supplied); len(missing) > 0 {
		return &ParameterError{Missing: missing}
	}
	return nil
}

// Validate checks value against the parameter's type hints.
func (p Parameter) Validate(value string) error {
	switch p.Type {
	case Choice:
		if len(p.Choices) > 0 && !slices.Contains(p.Choices, value) {
			return fmt.Errorf("invalid value %q for %s: want one of %s", value, p.Name, strings.Join(p.Choices, ", "))
		}
	case Boolean:
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("invalid value %q for %s: want true or false", value, p.Name)
		}
	}
	return nil
}

// ParseParamPairs parses "key=value" tokens. Tokens without '=' are rejected.
func ParseParamPairs(pairs []string) (map[string]string, error) {
	out := map[string]string{}
	for _, kv := range pairs {
		kv = strings.TrimSpace(kv)
		if kv == "" {
			continue
		}
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid parameter %q: want key=value", kv)
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out, nil
}
