package inequality

import (
	"math"
	"strings"
)

// Kind names an inequality index.
type Kind string

const (
	KindGini      Kind = "gini"
	KindTheilT    Kind = "theil-t"
	KindTheilL    Kind = "theil-l"
	KindRobinHood Kind = "robin-hood"
)

// Kinds lists every supported index kind.
var Kinds = []Kind{KindGini, KindTheilT, KindTheilL, KindRobinHood}

// ParseKind converts a user supplied name into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if err := k.Validate(); err != nil {
		return "", err
	}
	return k, nil
}

// Validate returns a config error when k is not a known kind.
func (k Kind) Validate() error {
	switch k {
	case KindGini, KindTheilT, KindTheilL, KindRobinHood:
		return nil
	}
	return ConfigError("kind", "unrecognized index kind %q", string(k))
}

func (k Kind) String() string {
	return string(k)
}

// Mode tells TheilT how to interpret its input.
type Mode string

const (
	// ModeProps means the values are proportions that already sum to 1.
	ModeProps Mode = "props"
	// ModeGains means the values are raw gains that get normalized first.
	ModeGains Mode = "gains"
)

// ParseMode converts a user supplied name into a Mode. The empty string maps to ModeProps.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return ModeProps, nil
	}
	if err := m.Validate(); err != nil {
		return "", err
	}
	return m, nil
}

// Validate returns a config error when m is not a known mode.
func (m Mode) Validate() error {
	switch m {
	case ModeProps, ModeGains:
		return nil
	}
	return ConfigError("mode", "unrecognized theil-t mode %q", string(m))
}

// Params holds the index specific parameters. Only TheilT reads them.
type Params struct {
	Mode Mode    `json:"mode,omitempty" msgpack:"mode"`
	Base float64 `json:"base,omitempty" msgpack:"base"`
}

// normalize fills defaults: props mode and natural log base.
func (p Params) normalize() (Params, error) {
	if p.Mode == "" {
		p.Mode = ModeProps
	}
	if err := p.Mode.Validate(); err != nil {
		return p, err
	}
	if p.Base == 0 {
		p.Base = math.E
	}
	if math.IsNaN(p.Base) || math.IsInf(p.Base, 0) || p.Base <= 0 || p.Base == 1 {
		return p, DomainError("theil-t", "entropy base must be positive and not 1, got %v", p.Base)
	}
	return p, nil
}
