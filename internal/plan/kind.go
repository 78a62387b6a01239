package plan

import (
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"remapper/internal/diagnostic"
	"remapper/internal/match"
)

//go:generate go tool stringer -type=Kind -linecomment -output=kind_string.go

// Kind is an end-to-end translation between naming conventions.
type Kind int

const (
	_ Kind = iota // zero value is invalid

	MojangToSpigot // MOJANG_TO_SPIGOT
	MojangToObf    // MOJANG_TO_OBF
	ObfToMojang    // OBF_TO_MOJANG
	ObfToSpigot    // OBF_TO_SPIGOT
	SpigotToMojang // SPIGOT_TO_MOJANG
	SpigotToObf    // SPIGOT_TO_OBF

	kindEnd
)

var (
	mojangToObf = Plan{MojangObf}
	obfToMojang = Plan{ObfMojang}
	obfToSpigot = Plan{ObfSpigot}
	spigotToObf = Plan{SpigotObf}
)

// Two-hop kinds go through the obfuscated names.
var kindPlans = map[Kind]Plan{
	MojangToSpigot: mojangToObf.Then(obfToSpigot),
	MojangToObf:    mojangToObf,
	ObfToMojang:    obfToMojang,
	ObfToSpigot:    obfToSpigot,
	SpigotToMojang: spigotToObf.Then(obfToMojang),
	SpigotToObf:    spigotToObf,
}

// Kinds returns every valid kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, int(kindEnd)-1)
	for k := MojangToSpigot; k < kindEnd; k++ {
		out = append(out, k)
	}

	return out
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool { return k > 0 && k < kindEnd }

// Plan returns the procedures of k in execution order. The result is a copy.
func (k Kind) Plan() Plan {
	return slices.Clone(kindPlans[k])
}

// ParseKind accepts a kind name in any case, with '-' or ' ' in place of '_'.
func ParseKind(s string) (Kind, error) {
	norm := match.Normalize(s)

	names := make([]string, 0, int(kindEnd)-1)
	for _, k := range Kinds() {
		if strings.ToLower(k.String()) == norm {
			return k, nil
		}

		names = append(names, k.String())
	}

	msg := fmt.Sprintf("unknown translation kind %q (valid: %s)", s, strings.Join(names, ", "))
	if best, ok := match.Closest(s, names); ok {
		msg += fmt.Sprintf("; did you mean %s?", best)
	}

	return 0, &diagnostic.Error{Kind: diagnostic.ErrConfiguration, Op: "parse translation kind", Err: fmt.Errorf("%s", msg)}
}

// Set implements pflag.Value.
func (k *Kind) Set(s string) error {
	v, err := ParseKind(s)
	if err != nil {
		return err
	}

	*k = v

	return nil
}

// Type implements pflag.Value.
func (k *Kind) Type() string { return "kind" }

// UnmarshalYAML accepts the kind name as a scalar.
func (k *Kind) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: translation kind must be a string", node.Line)
	}

	if err := k.Set(node.Value); err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}

	return nil
}

// MarshalYAML writes the kind name.
func (k Kind) MarshalYAML() (any, error) {
	return k.String(), nil
}
