package observed

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/dhamidi/phpcheck/php/doctype"
)

// HintOptions controls how native type hints are read.
type HintOptions struct {
	// Version is the targeted PHP version. Keywords introduced after it
	// are read as class names. Nil means the latest version.
	Version *semver.Version
}

var (
	php71 = semver.MustParse("7.1")
	php72 = semver.MustParse("7.2")
	php80 = semver.MustParse("8.0")
	php81 = semver.MustParse("8.1")
	php82 = semver.MustParse("8.2")
)

func (o HintOptions) supports(min *semver.Version) bool {
	return o.Version == nil || !o.Version.LessThan(min)
}

// FromHint classifies a native type declaration such as "?int",
// "int|string" or "\App\User". Declarations the target version does not
// support, intersections and hints that do not constrain values (mixed,
// callable, self, static) are Unknown.
func FromHint(text string, opts HintOptions) Type {
	text = strings.TrimSpace(text)
	if text == "" || strings.Contains(text, "&") {
		return Unknown{}
	}

	isUnion := strings.Contains(text, "|")
	if isUnion && !opts.supports(php80) {
		return Unknown{}
	}
	if strings.HasPrefix(text, "?") && (isUnion || !opts.supports(php71)) {
		return Unknown{}
	}

	switch e := doctype.Parse(text).(type) {
	case doctype.Simple:
		return fromName(e.Name, opts, !isUnion)
	case doctype.Nullable:
		inner := fromExpr(e.Inner, opts)
		if _, ok := inner.(Unknown); ok {
			return Unknown{}
		}
		if u, ok := inner.(Union); ok && u.Name == "" {
			return Union{Members: append(u.Members, Null{})}
		}
		return Union{Members: []Type{inner, Null{}}}
	case doctype.Union:
		return fromExpr(e, opts)
	}
	return Unknown{}
}

func fromExpr(e doctype.Expr, opts HintOptions) Type {
	switch x := e.(type) {
	case doctype.Simple:
		return fromName(x.Name, opts, false)
	case doctype.Union:
		members := make([]Type, 0, len(x.Members))
		for _, m := range x.Members {
			t := fromExpr(m, opts)
			if _, ok := t.(Unknown); ok {
				return Unknown{}
			}
			members = append(members, t)
		}
		return Union{Members: members}
	}
	return Unknown{}
}

// fromName classifies a single hint word. Standalone null, false and true
// need PHP 8.2; inside unions null and false are accepted from 8.0. Other
// keywords newer than the target version are ordinary class names there.
func fromName(name string, opts HintOptions, standalone bool) Type {
	switch strings.ToLower(name) {
	case "int":
		return Primitive{Kind: Int}
	case "float":
		return Primitive{Kind: Float}
	case "string":
		return Primitive{Kind: String}
	case "bool":
		return Primitive{Kind: Bool}
	case "false", "true":
		isTrue := strings.EqualFold(name, "true")
		if (standalone || isTrue) && !opts.supports(php82) {
			return Unknown{}
		}
		return BoolValue(isTrue)
	case "null":
		if standalone && !opts.supports(php82) {
			return Unknown{}
		}
		return Null{}
	case "array":
		return Array{Opaque: true}
	case "iterable":
		// array|Traversable; any object stands in for Traversable and
		// its implementations.
		if opts.supports(php71) {
			return Union{Members: []Type{Array{Opaque: true}, Object{}}, Name: "iterable"}
		}
	case "object":
		if opts.supports(php72) {
			return Object{}
		}
	case "void":
		if opts.supports(php71) {
			return Void{}
		}
	case "mixed":
		if opts.supports(php80) {
			return Unknown{}
		}
	case "never":
		if opts.supports(php81) {
			return Unknown{}
		}
	case "callable", "self", "static", "parent":
		return Unknown{}
	}
	return Object{Class: name}
}
