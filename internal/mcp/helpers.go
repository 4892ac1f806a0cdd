package mcp

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are the accepted forms for date arguments, ISO first because
// that is what agents usually emit.
var dateLayouts = []string{"2006-01-02", "02/01/2006"}

func argString(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string, got %T", key, v)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("argument %q must not be empty", key)
	}
	return s, nil
}

func optionalString(args map[string]interface{}, key, fallback string) (string, error) {
	if _, ok := args[key]; !ok {
		return fallback, nil
	}
	return argString(args, key)
}

// argFloat accepts JSON numbers and numeric strings; MCP clients are not
// consistent about which one they send.
func argFloat(args map[string]interface{}, key string) (float64, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing required argument %q", key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("argument %q is not a number: %v", key, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("argument %q must be a number, got %T", key, v)
	}
}

func argDate(args map[string]interface{}, key string) (time.Time, error) {
	raw, err := argString(args, key)
	if err != nil {
		return time.Time{}, err
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, raw); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("argument %q: cannot parse date %q (want YYYY-MM-DD or DD/MM/YYYY)", key, raw)
}
