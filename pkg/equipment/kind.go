package equipment

import "github.com/gridsmith/oneline/pkg/errors"

// Kind identifies the equipment variant. The set is closed: every kind carries
// its own voltage and size resolution via Traits, resolved once at
// construction instead of type switches scattered across call sites.
type Kind int

const (
	KindGenerator Kind = iota
	KindTransformer
	KindBus
	KindMeter
	KindOther
)

// String returns the lowercase name used in serialized diagrams.
func (k Kind) String() string {
	switch k {
	case KindGenerator:
		return "generator"
	case KindTransformer:
		return "transformer"
	case KindBus:
		return "bus"
	case KindMeter:
		return "meter"
	default:
		return "other"
	}
}

// ParseKind converts a serialized kind name back to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "generator":
		return KindGenerator, nil
	case "transformer":
		return KindTransformer, nil
	case "bus":
		return KindBus, nil
	case "meter":
		return KindMeter, nil
	case "other":
		return KindOther, nil
	}
	return KindOther, errors.New(errors.ErrCodeInvalidKind, "unknown equipment kind %q", s)
}

// Facing distinguishes the two electrical faces of a piece of equipment.
// SourceFacing is the upstream face (where sources attach), LoadFacing the
// downstream face (where loads attach).
type Facing int

const (
	SourceFacing Facing = iota
	LoadFacing
)

// Side identifies a node boundary edge where handles sit.
type Side int

const (
	SideTop Side = iota
	SideBottom
	SideLeft
	SideRight
)

// String returns the lowercase side name used in serialized handles.
func (s Side) String() string {
	switch s {
	case SideTop:
		return "top"
	case SideBottom:
		return "bottom"
	case SideLeft:
		return "left"
	default:
		return "right"
	}
}

// ParseSide converts a serialized side name back to a Side.
func ParseSide(s string) (Side, error) {
	switch s {
	case "top":
		return SideTop, nil
	case "bottom":
		return SideBottom, nil
	case "left":
		return SideLeft, nil
	case "right":
		return SideRight, nil
	}
	return SideTop, errors.New(errors.ErrCodeInvalidInput, "unknown handle side %q", s)
}

// Traits captures the per-kind capabilities of a piece of equipment.
// Implementations are resolved at construction time by the New* constructors,
// so voltage and sizing logic lives with the kind rather than in call sites.
type Traits interface {
	// Voltage returns the voltage presented on the given face, or false if
	// the kind is electrically transparent on that face (meters, other).
	Voltage(f Facing) (float64, bool)

	// DefaultSize returns the rendered footprint for the kind.
	DefaultSize() Size

	// DefaultAllowedSources returns the default incoming connection capacity.
	DefaultAllowedSources() int

	// DefaultAllowedLoads returns the default outgoing connection capacity.
	DefaultAllowedLoads() int
}

type generatorTraits struct {
	voltage float64
}

func (t generatorTraits) Voltage(Facing) (float64, bool) { return t.voltage, true }
func (t generatorTraits) DefaultSize() Size              { return Size{Width: 80, Height: 80} }
func (t generatorTraits) DefaultAllowedSources() int     { return 0 }
func (t generatorTraits) DefaultAllowedLoads() int       { return 1 }

// transformerTraits presents the primary voltage on the upstream face and the
// secondary voltage on the downstream face.
type transformerTraits struct {
	primary   float64
	secondary float64
}

func (t transformerTraits) Voltage(f Facing) (float64, bool) {
	if f == SourceFacing {
		return t.primary, true
	}
	return t.secondary, true
}
func (t transformerTraits) DefaultSize() Size          { return Size{Width: 80, Height: 100} }
func (t transformerTraits) DefaultAllowedSources() int { return 1 }
func (t transformerTraits) DefaultAllowedLoads() int   { return 1 }

type busTraits struct {
	voltage float64
	width   float64
}

func (t busTraits) Voltage(Facing) (float64, bool) { return t.voltage, true }
func (t busTraits) DefaultSize() Size              { return Size{Width: t.width, Height: 12} }
func (t busTraits) DefaultAllowedSources() int     { return 6 }
func (t busTraits) DefaultAllowedLoads() int       { return 6 }

type meterTraits struct{}

func (meterTraits) Voltage(Facing) (float64, bool) { return 0, false }
func (meterTraits) DefaultSize() Size              { return Size{Width: 60, Height: 60} }
func (meterTraits) DefaultAllowedSources() int     { return 1 }
func (meterTraits) DefaultAllowedLoads() int       { return 1 }

type otherTraits struct{}

func (otherTraits) Voltage(Facing) (float64, bool) { return 0, false }
func (otherTraits) DefaultSize() Size              { return Size{Width: 80, Height: 60} }
func (otherTraits) DefaultAllowedSources() int     { return 1 }
func (otherTraits) DefaultAllowedLoads() int       { return 1 }
