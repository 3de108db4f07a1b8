package observed

import (
	"math"
	"strconv"
	"strings"

	"github.com/dhamidi/phpcheck/php/parser"
)

// Infer classifies an expression. Anything other than a literal, an array
// literal or an object construction is Unknown.
//
// For array literals the entries of the result correspond one to one, in
// order, with the entries of the literal.
func Infer(e parser.Expr) Type {
	switch x := e.(type) {
	case *parser.IntLit:
		return IntValue(x.Value)
	case *parser.FloatLit:
		return Primitive{Kind: Float}
	case *parser.StringLit:
		if x.Interpolated {
			return Primitive{Kind: String}
		}
		return StringValue(x.Value)
	case *parser.BoolLit:
		return BoolValue(x.Value)
	case *parser.NullLit:
		return Null{}
	case *parser.ArrayLit:
		return inferArray(x)
	case *parser.NewExpr:
		return inferNew(x.Class)
	}
	return Unknown{}
}

func inferArray(lit *parser.ArrayLit) Array {
	arr := Array{Entries: make([]Entry, 0, len(lit.Entries))}

	next := int64(0)
	hasIntKey := false
	autoKnown := true

	for _, e := range lit.Entries {
		if e.Spread {
			arr.Opaque = true
			autoKnown = false
			arr.Entries = append(arr.Entries, Entry{Key: Unknown{}, Value: Unknown{}})
			continue
		}

		value := Infer(e.Value)
		if e.ByRef {
			value = Unknown{}
		}

		var key Type
		if e.Key == nil {
			if autoKnown {
				key = IntValue(next)
				next++
				hasIntKey = true
			} else {
				key = Primitive{Kind: Int}
			}
		} else {
			key = castKey(Infer(e.Key))
			if p, ok := key.(Primitive); ok && p.Kind == Int && p.HasValue {
				k, _ := strconv.ParseInt(p.Value, 10, 64)
				if !hasIntKey || k >= next {
					next = k + 1
				}
				hasIntKey = true
			}
		}
		arr.Entries = append(arr.Entries, Entry{Key: key, Value: value})
	}
	return arr
}

// castKey applies PHP's array key conversion: decimal integer strings,
// bools and floats become ints and null becomes the empty string.
func castKey(key Type) Type {
	switch k := key.(type) {
	case Primitive:
		switch k.Kind {
		case Int:
			return k
		case String:
			if k.HasValue && isDecimalInt(k.Value) {
				v, _ := strconv.ParseInt(k.Value, 10, 64)
				return IntValue(v)
			}
			return k
		case Bool:
			if k.HasValue {
				if k.Value == "true" {
					return IntValue(1)
				}
				return IntValue(0)
			}
			return Primitive{Kind: Int}
		case Float:
			return Primitive{Kind: Int}
		}
	case Null:
		return StringValue("")
	}
	return Unknown{}
}

// isDecimalInt reports whether s is the canonical decimal form of an
// int64, which is the form PHP converts to an integer key.
func isDecimalInt(s string) bool {
	if s == "" || s == "-" {
		return false
	}
	digits := strings.TrimPrefix(s, "-")
	if digits == "" || digits[0] == '0' && (len(digits) > 1 || s[0] == '-') {
		return false
	}
	for _, ch := range digits {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	return err == nil && v > math.MinInt64
}

func inferNew(class string) Type {
	name := strings.TrimPrefix(class, "\\")
	switch strings.ToLower(name) {
	case "static", "self", "parent", "class", "":
		return Unknown{}
	}
	if i := strings.LastIndexByte(name, '\\'); i >= 0 {
		name = name[i+1:]
	}
	return Object{Class: name}
}
