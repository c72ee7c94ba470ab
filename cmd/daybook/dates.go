package main

import (
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/mschirtz/daybook/internal/schema"
)

// parseDate resolves a command-line date argument to a YYYY-MM-DD key.
// Accepts the canonical form directly, or natural language like
// "yesterday" and "last monday". An empty argument means today.
func parseDate(arg, today string) (string, error) {
	if arg == "" {
		return today, nil
	}
	if schema.ValidDateKey(arg) {
		return arg, nil
	}

	parser := when.New(nil)
	parser.Add(en.All...)
	parser.Add(common.All...)

	now, err := time.Parse(schema.DateLayout, today)
	if err != nil {
		now = time.Now()
	}
	result, err := parser.Parse(arg, now)
	if err != nil || result == nil {
		return "", fmt.Errorf("unrecognized date %q (use YYYY-MM-DD or e.g. \"yesterday\")", arg)
	}
	return schema.DateKey(result.Time), nil
}
