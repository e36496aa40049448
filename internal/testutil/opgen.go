package testutil

import (
	"strings"

	"github.com/calvinalkan/radr/internal/adr"
)

// OpGenConfig sets the percentage of each operation. Rates are cumulative
// thresholds over 0-99; whatever is left is a transition.
type OpGenConfig struct {
	CreateRate      int
	SupersedingRate int
	SupersedeRate   int
	ReformatRate    int
	SwitchRate      int
	TickRate        int

	// InvalidIDRate is the percentage of references to numbers or titles
	// that do not exist.
	InvalidIDRate int
}

// DefaultOpGenConfig returns a balanced configuration.
func DefaultOpGenConfig() OpGenConfig {
	return OpGenConfig{
		CreateRate:      25,
		SupersedingRate: 10,
		SupersedeRate:   10,
		ReformatRate:    10,
		SwitchRate:      5,
		TickRate:        10,
		InvalidIDRate:   10,
	}
}

// OpGenerator derives operations from fuzz bytes, consulting the model so
// most references hit existing ADRs.
type OpGenerator struct {
	stream *ByteStream
	config OpGenConfig
	model  *Model
}

// NewOpGenerator creates a generator over fuzzBytes.
func NewOpGenerator(fuzzBytes []byte, model *Model, cfg OpGenConfig) *OpGenerator {
	return &OpGenerator{
		stream: NewByteStream(fuzzBytes),
		config: cfg,
		model:  model,
	}
}

// HasMore reports whether more operations can be generated.
func (g *OpGenerator) HasMore() bool {
	return g.stream.HasMore()
}

// NextOp returns the next operation.
func (g *OpGenerator) NextOp() Op {
	c := g.config
	roll := g.stream.NextInt(100)

	switch {
	case roll < c.CreateRate:
		var supersedes uint32
		if g.stream.NextInt(4) == 0 {
			supersedes = g.number()
		}

		return OpCreate{Title: g.stream.NextTitle(), Supersedes: supersedes}
	case roll < c.CreateRate+c.SupersedingRate:
		return OpCreateSuperseding{Old: g.number(), Title: g.stream.NextTitle()}
	case roll < c.CreateRate+c.SupersedingRate+c.SupersedeRate:
		return OpSupersede{Old: g.number(), New: g.number()}
	case roll < c.CreateRate+c.SupersedingRate+c.SupersedeRate+c.ReformatRate:
		return OpReformat{Number: g.number()}
	case roll < c.CreateRate+c.SupersedingRate+c.SupersedeRate+c.ReformatRate+c.SwitchRate:
		return OpSwitchFormat{}
	case roll < c.CreateRate+c.SupersedingRate+c.SupersedeRate+c.ReformatRate+c.SwitchRate+c.TickRate:
		return OpTick{Days: 1 + g.stream.NextInt(30)}
	default:
		return OpTransition{ID: g.id(), Status: statusFor(g.stream.NextBool())}
	}
}

// number picks an existing number, or an unused one at InvalidIDRate.
func (g *OpGenerator) number() uint32 {
	numbers := g.model.Numbers()
	if len(numbers) == 0 || g.stream.Percent(g.config.InvalidIDRate) {
		return uint32(len(numbers)) + 1 + uint32(g.stream.NextInt(50))
	}

	return numbers[g.stream.NextInt(len(numbers))]
}

// id picks a transition reference in one of the accepted spellings.
func (g *OpGenerator) id() string {
	records := g.model.Records()
	if len(records) == 0 || g.stream.Percent(g.config.InvalidIDRate) {
		return "missing " + g.stream.NextTitle()
	}

	rec := records[g.stream.NextInt(len(records))]

	switch g.stream.NextInt(4) {
	case 0:
		return adr.FormatNumber(rec.Number)
	case 1:
		return strings.TrimLeft(adr.FormatNumber(rec.Number), "0")
	case 2:
		return strings.ToUpper(rec.Title)
	default:
		return rec.Title
	}
}
