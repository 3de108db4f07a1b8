package compat

import (
	"strconv"
	"strings"

	"github.com/dhamidi/phpcheck/php/observed"
)

// simpleCompatible checks an observed type against a bare name: a
// primitive, a pseudo-type or a class name.
func simpleCompatible(name string, o observed.Type) bool {
	lower := strings.ToLower(name)

	if _, ok := o.(observed.Void); ok {
		return lower == "void" || lower == "mixed"
	}

	switch lower {
	case "mixed":
		return true
	case "void", "never":
		return false
	case "null":
		return isNull(o)

	case "int", "integer":
		return isKind(o, observed.Int)
	case "positive-int":
		return intValue(o, func(v int64) bool { return v > 0 })
	case "negative-int":
		return intValue(o, func(v int64) bool { return v < 0 })
	case "non-negative-int":
		return intValue(o, func(v int64) bool { return v >= 0 })
	case "non-positive-int":
		return intValue(o, func(v int64) bool { return v <= 0 })
	case "non-zero-int":
		return intValue(o, func(v int64) bool { return v != 0 })

	case "float", "double":
		return isKind(o, observed.Float)

	case "string", "class-string", "callable-string", "literal-string", "interface-string", "trait-string", "enum-string":
		return isKind(o, observed.String)
	case "non-empty-string", "non-empty-literal-string":
		return stringValue(o, func(s string) bool { return s != "" })
	case "non-falsy-string", "truthy-string":
		return stringValue(o, func(s string) bool { return s != "" && s != "0" })
	case "numeric-string":
		return stringValue(o, isNumeric)
	case "lowercase-string", "non-empty-lowercase-string":
		return stringValue(o, func(s string) bool {
			return s == strings.ToLower(s) && (lower == "lowercase-string" || s != "")
		})

	case "bool", "boolean":
		return isKind(o, observed.Bool)
	case "true", "false":
		p, ok := o.(observed.Primitive)
		return ok && p.Kind == observed.Bool && (!p.HasValue || p.Value == lower)

	case "array", "associative-array":
		_, ok := o.(observed.Array)
		return ok
	case "list":
		arr, ok := o.(observed.Array)
		return ok && isSequential(arr)
	case "non-empty-array":
		arr, ok := o.(observed.Array)
		return ok && (arr.Opaque || len(arr.Entries) > 0)
	case "non-empty-list":
		arr, ok := o.(observed.Array)
		return ok && (arr.Opaque || len(arr.Entries) > 0) && isSequential(arr)
	case "iterable":
		switch o.(type) {
		case observed.Array, observed.Object:
			return true
		}
		return false

	case "object", "self", "static", "$this", "parent":
		_, ok := o.(observed.Object)
		return ok
	case "callable":
		switch x := o.(type) {
		case observed.Object, observed.Array:
			return true
		case observed.Primitive:
			return x.Kind == observed.String
		}
		return false

	case "scalar":
		_, ok := o.(observed.Primitive)
		return ok
	case "numeric":
		p, ok := o.(observed.Primitive)
		if !ok {
			return false
		}
		switch p.Kind {
		case observed.Int, observed.Float:
			return true
		case observed.String:
			return !p.HasValue || isNumeric(p.Value)
		}
		return false
	case "array-key":
		return isKind(o, observed.Int) || isKind(o, observed.String)

	case "resource", "open-resource", "closed-resource":
		return false
	}

	// Names with a dash are pseudo-types this checker does not model.
	if strings.Contains(lower, "-") {
		return true
	}

	// PHP class names are case-insensitive, so equal names ignore case.
	// There is no inheritance: a subclass does not satisfy its parent.
	obj, ok := o.(observed.Object)
	return ok && (obj.Class == "" || strings.EqualFold(obj.Class, name))
}

func isNull(o observed.Type) bool {
	_, ok := o.(observed.Null)
	return ok
}

func isKind(o observed.Type, kind observed.Kind) bool {
	p, ok := o.(observed.Primitive)
	return ok && p.Kind == kind
}

// intValue checks an int against pred when its value is known.
func intValue(o observed.Type, pred func(int64) bool) bool {
	p, ok := o.(observed.Primitive)
	if !ok || p.Kind != observed.Int {
		return false
	}
	if !p.HasValue {
		return true
	}
	v, err := strconv.ParseInt(p.Value, 10, 64)
	return err != nil || pred(v)
}

// stringValue checks a string against pred when its value is known.
func stringValue(o observed.Type, pred func(string) bool) bool {
	p, ok := o.(observed.Primitive)
	if !ok || p.Kind != observed.String {
		return false
	}
	return !p.HasValue || pred(p.Value)
}

func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.Trim(s, "0123456789+-.eE") != "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// isSequential reports whether the known keys of arr are 0, 1, 2, ...
func isSequential(arr observed.Array) bool {
	for i, e := range arr.Entries {
		p, ok := e.Key.(observed.Primitive)
		if !ok {
			continue
		}
		if p.Kind != observed.Int {
			return false
		}
		if p.HasValue && p.Value != strconv.Itoa(i) {
			return false
		}
	}
	return true
}
