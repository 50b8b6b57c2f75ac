package attrs

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/seitarof/gen-derive/internal/schema"
)

// Recognized namespaces and keys.
const (
	NamespaceBuilder = "builder"
	NamespaceDebug   = "debug"
	// NamespaceDerive holds derivation requests. Its keys are the names of
	// the requested generators.
	NamespaceDerive = "derive"

	KeyEach   = "each"
	KeyFormat = "format"
	KeyBound  = "bound"

	// DirectivePrefix starts a type-level directive comment.
	DirectivePrefix = "//derive:"
)

func recognizedNamespace(ns string) bool {
	return ns == NamespaceBuilder || ns == NamespaceDebug
}

// ParseTag extracts builder and debug attributes from a struct tag. Other
// tag keys are ignored. Duplicate namespaces are kept so the resolver can
// report them.
func ParseTag(tag, origin string) ([]schema.Attribute, error) {
	var out []schema.Attribute
	for tag != "" {
		i := 0
		for i < len(tag) && tag[i] == ' ' {
			i++
		}
		tag = tag[i:]
		if tag == "" {
			break
		}

		i = 0
		for i < len(tag) && tag[i] > ' ' && tag[i] != ':' && tag[i] != '"' && tag[i] != 0x7f {
			i++
		}
		if i == 0 || i+1 >= len(tag) || tag[i] != ':' || tag[i+1] != '"' {
			return nil, errors.Newf("%s: malformed struct tag %q", origin, tag)
		}
		name := tag[:i]
		tag = tag[i+1:]

		quoted, err := strconv.QuotedPrefix(tag)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: malformed struct tag value for %q", origin, name)
		}
		tag = tag[len(quoted):]
		if !recognizedNamespace(name) {
			continue
		}
		value, err := strconv.Unquote(quoted)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: tag %q", origin, name)
		}
		pairs, err := splitPairs(value)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: tag %q", origin, name)
		}
		for _, p := range pairs {
			out = append(out, schema.Attribute{Namespace: name, Key: p.key, Value: p.value, Origin: origin})
		}
	}
	return out, nil
}

// ParseDirective parses one comment line of the form
//
//	//derive:debug bound="T fmt.Stringer"
//
// It reports false when the line is not a directive. A directive yields a
// derive request for its namespace followed by its key/value pairs.
func ParseDirective(line, origin string) ([]schema.Attribute, bool, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), DirectivePrefix)
	if !ok {
		return nil, false, nil
	}
	ns, args := rest, ""
	if i := strings.IndexAny(rest, " \t"); i >= 0 {
		ns, args = rest[:i], rest[i+1:]
	}
	if ns == "" {
		return nil, true, errors.Newf("%s: directive without generator name", origin)
	}
	out := []schema.Attribute{{Namespace: NamespaceDerive, Key: ns, Origin: origin}}
	pairs, err := splitPairs(args)
	if err != nil {
		return nil, true, errors.Wrapf(err, "%s: directive %q", origin, ns)
	}
	for _, p := range pairs {
		out = append(out, schema.Attribute{Namespace: ns, Key: p.key, Value: p.value, Origin: origin})
	}
	return out, true, nil
}

type pair struct {
	key   string
	value string
}

// splitPairs splits `k=v; k2="quoted; value"; flag` into pairs. Unquoted
// values run to the next semicolon.
func splitPairs(s string) ([]pair, error) {
	var out []pair
	for {
		s = strings.TrimLeft(s, " \t;")
		if s == "" {
			return out, nil
		}
		end := strings.IndexAny(s, "=;")
		if end < 0 || s[end] == ';' {
			if end < 0 {
				end = len(s)
			}
			out = append(out, pair{key: strings.TrimSpace(s[:end])})
			s = s[end:]
			continue
		}
		key := strings.TrimSpace(s[:end])
		if key == "" {
			return nil, errors.Newf("missing key before %q", s)
		}
		s = strings.TrimLeft(s[end+1:], " \t")
		if s != "" && (s[0] == '"' || s[0] == '`') {
			quoted, err := strconv.QuotedPrefix(s)
			if err != nil {
				return nil, errors.Wrapf(err, "value of %q", key)
			}
			value, err := strconv.Unquote(quoted)
			if err != nil {
				return nil, errors.Wrapf(err, "value of %q", key)
			}
			out = append(out, pair{key: key, value: value})
			s = s[len(quoted):]
			if t := strings.TrimLeft(s, " \t"); t != "" && t[0] != ';' {
				return nil, errors.Newf("unexpected %q after value of %q", t, key)
			}
			continue
		}
		vend := strings.IndexByte(s, ';')
		if vend < 0 {
			vend = len(s)
		}
		out = append(out, pair{key: key, value: strings.TrimSpace(s[:vend])})
		s = s[vend:]
	}
}
