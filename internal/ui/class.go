package ui

import (
	"strings"

	twmerge "github.com/Oudwins/tailwind-merge-go"
)

// Class joins tailwind class lists. Later classes win over conflicting
// earlier ones, so callers can override a component's defaults.
func Class(classes ...string) string {
	parts := make([]string, 0, len(classes))
	for _, c := range classes {
		if c = strings.TrimSpace(c); c != "" {
			parts = append(parts, c)
		}
	}
	return twmerge.Merge(strings.Join(parts, " "))
}

var buttonVariants = map[string]string{
	"primary":   "bg-gray-900 text-white hover:bg-gray-700",
	"secondary": "bg-gray-100 text-gray-900 hover:bg-gray-200",
	"ghost":     "bg-transparent text-gray-700 hover:bg-gray-100",
}

const buttonBase = "inline-flex items-center justify-center rounded-md px-4 py-2 text-sm font-medium transition-colors disabled:pointer-events-none disabled:opacity-50"

// ButtonClass returns the classes for a button variant, primary when unknown
func ButtonClass(variant string, extra ...string) string {
	v, ok := buttonVariants[variant]
	if !ok {
		v = buttonVariants["primary"]
	}
	return Class(append([]string{buttonBase, v}, extra...)...)
}
