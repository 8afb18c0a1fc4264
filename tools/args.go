package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-shellwords"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// ParamError reports a tool argument that cannot be turned into command arguments
type ParamError struct {
	Param  string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("Parameter '%s' %s", e.Param, e.Reason)
}

func paramErrorf(param, format string, args ...any) *ParamError {
	return &ParamError{Param: param, Reason: fmt.Sprintf(format, args...)}
}

// BuildArgs converts tool call arguments into the argument vector passed to
// the executor: the fixed command words, then flags in declared order, then
// positionals in declared order. Flags equal to their default are omitted.
func (s *Spec) BuildArgs(arguments map[string]any, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	args := append([]string(nil), s.Command...)
	var positionals []string

	for i := range s.Params {
		p := &s.Params[i]

		raw, present := arguments[p.Name]
		if !present || raw == nil {
			if p.Required {
				return nil, paramErrorf(p.Name, "is required")
			}
			if p.Positional && p.Default != nil {
				positionals = append(positionals, p.Default.(string))
			}
			continue
		}

		tokens, err := p.render(raw, logger)
		if err != nil {
			return nil, err
		}
		if p.Positional {
			positionals = append(positionals, tokens...)
		} else {
			args = append(args, tokens...)
		}
	}

	return append(args, positionals...), nil
}

// render returns the command line tokens for one present argument
func (p *Param) render(raw any, logger *zap.Logger) ([]string, error) {
	switch p.Type {
	case TypeBoolean:
		v, err := toBool(raw)
		if err != nil {
			return nil, paramErrorf(p.Name, "must be a boolean: %v", err)
		}
		if !v {
			return nil, nil
		}
		return []string{p.Flag}, nil

	case TypeInteger:
		v, err := toInt(raw)
		if err != nil {
			return nil, paramErrorf(p.Name, "must be an integer: %v", err)
		}
		if p.Default != nil && v == p.Default.(int64) {
			return nil, nil
		}
		return []string{p.Flag, strconv.FormatInt(v, 10)}, nil

	case TypeNumber:
		v, err := toFloat(raw)
		if err != nil {
			return nil, paramErrorf(p.Name, "must be a number: %v", err)
		}
		if p.Default != nil && v == p.Default.(float64) {
			return nil, nil
		}
		return []string{p.Flag, strconv.FormatFloat(v, 'f', -1, 64)}, nil

	case TypeArray:
		items, err := StringList(raw)
		if err != nil {
			return nil, paramErrorf(p.Name, "%v", err)
		}
		if p.Positional {
			return items, nil
		}
		tokens := make([]string, 0, 2*len(items))
		for _, item := range items {
			tokens = append(tokens, p.Flag, item)
		}
		return tokens, nil

	default:
		v, ok := raw.(string)
		if !ok {
			return nil, paramErrorf(p.Name, "must be a string, but got: %T", raw)
		}
		if p.Positional {
			if v == "" {
				if p.Required {
					return nil, paramErrorf(p.Name, "is required and cannot be empty")
				}
				return nil, nil
			}
			if p.Split {
				return splitWords(v, logger), nil
			}
			return []string{v}, nil
		}
		if v == "" || v == p.Default {
			return nil, nil
		}
		return []string{p.Flag, v}, nil
	}
}

// StringList normalizes an array argument. It accepts a list of strings, a
// JSON-encoded array of strings, or a bare string taken as a single item.
// Empty arrays are rejected.
func StringList(raw any) ([]string, error) {
	var items []string

	switch v := raw.(type) {
	case []string:
		items = v
	case []any:
		items = make([]string, 0, len(v))
		var bad []string
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				bad = append(bad, fmt.Sprintf("%T", item))
				continue
			}
			items = append(items, s)
		}
		if len(bad) > 0 {
			return nil, fmt.Errorf("must be a list of strings, but contains non-string elements: [%s]",
				strings.Join(bad, ", "))
		}
	case string:
		if !gjson.Valid(v) {
			return []string{v}, nil
		}
		parsed := gjson.Parse(v)
		if !parsed.IsArray() {
			return nil, fmt.Errorf("JSON must be an array of strings, but got: %s", jsonTypeName(parsed))
		}
		for _, item := range parsed.Array() {
			if item.Type != gjson.String {
				return nil, fmt.Errorf("JSON must be an array of strings, but contains: %s", jsonTypeName(item))
			}
			items = append(items, item.String())
		}
	default:
		return nil, fmt.Errorf("must be a string, array of strings, or null, but got: %T", raw)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("cannot be an empty array. Either omit the parameter or provide at least one item")
	}
	return items, nil
}

func jsonTypeName(r gjson.Result) string {
	switch {
	case r.IsArray():
		return "array"
	case r.IsObject():
		return "object"
	case r.IsBool():
		return "boolean"
	case r.Type == gjson.Number:
		return "number"
	case r.Type == gjson.String:
		return "string"
	default:
		return "null"
	}
}

// splitWords splits a command line the way a POSIX shell would, without
// expanding anything. A line that cannot be parsed is kept as one argument.
func splitWords(line string, logger *zap.Logger) []string {
	parser := shellwords.NewParser()
	words, err := parser.Parse(line)
	if err == nil && parser.Position != -1 {
		err = fmt.Errorf("unquoted shell operator at offset %d", parser.Position)
	}
	if err != nil {
		logger.Warn("failed to split command, using it as a single argument",
			zap.String("command", line),
			zap.Error(err))
		return []string{line}
	}
	if len(words) == 0 {
		return []string{line}
	}
	return words
}

// MaxTimeoutSeconds is the largest timeout override that fits in a time.Duration
const MaxTimeoutSeconds = math.MaxInt64 / int64(time.Second)

// TimeoutSeconds returns the optional per-call timeout override, or zero
func TimeoutSeconds(arguments map[string]any) (int64, error) {
	raw, ok := arguments[TimeoutParam]
	if !ok || raw == nil {
		return 0, nil
	}
	v, err := toInt(raw)
	if err != nil {
		return 0, paramErrorf(TimeoutParam, "must be an integer: %v", err)
	}
	if v <= 0 {
		return 0, paramErrorf(TimeoutParam, "must be a positive number of seconds")
	}
	if v > MaxTimeoutSeconds {
		return 0, paramErrorf(TimeoutParam, "must not exceed %d seconds", MaxTimeoutSeconds)
	}
	return v, nil
}

func toBool(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(v)
	default:
		return false, fmt.Errorf("got %T", raw)
	}
}

func toInt(raw any) (int64, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%v has a fractional part", v)
		}
		if v >= 1<<63 || v < -(1<<63) {
			return 0, fmt.Errorf("%v is out of range", v)
		}
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	default:
		return 0, fmt.Errorf("got %T", raw)
	}
}

func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, fmt.Errorf("got %T", raw)
	}
}
