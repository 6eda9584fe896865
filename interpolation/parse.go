package interpolation

import (
	"fmt"
	"sort"
	"strings"
)

var methodsByName = map[string]Method{
	"linear":                      Linear{},
	"loglinear":                   LogLinear{},
	"backwardflat":                BackwardFlat{},
	"forwardflat":                 ForwardFlat{},
	"convexmonotone":              ConvexMonotone{ForcePositive: true},
	"cubicnaturalspline":          CubicNaturalSpline,
	"monotoniccubicnaturalspline": MonotonicCubicNaturalSpline,
	"notaknotcubicspline":         NotAKnotCubicSpline,
	"krugercubic":                 KrugerCubic,
	"harmoniccubic":               HarmonicCubic,
	"fritschbutlandcubic":         FritschButlandCubic,
	"monotoniclogcubic":           MonotonicLogCubic,
	"logcubicnotaknot":            LogCubicNotAKnot,
}

// ParseMethod maps a preset name such as "LogLinear" or "MonotonicLogCubic"
// to its Method. Matching ignores case, dashes and underscores.
func ParseMethod(name string) (Method, error) {
	key := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(name))
	if m, ok := methodsByName[key]; ok {
		return m, nil
	}
	known := make([]string, 0, len(methodsByName))
	for k := range methodsByName {
		known = append(known, k)
	}
	sort.Strings(known)
	return nil, fmt.Errorf("ParseMethod: unknown interpolation %q (known: %s)", name, strings.Join(known, ", "))
}
