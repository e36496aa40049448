package testutil

import (
	"fmt"

	"github.com/calvinalkan/radr/internal/adr"
)

// Result is the comparable outcome of one operation.
type Result struct {
	Kind   string
	Number uint32
	Status string
}

func resultOf(number uint32, status string, err error) Result {
	if err != nil {
		return Result{Kind: ErrorKind(err)}
	}

	return Result{Kind: ErrorKind(nil), Number: number, Status: status}
}

// Op is one operation applied to both the engine and the model.
type Op interface {
	fmt.Stringer

	ApplyReal(h *Harness) Result
	ApplyModel(h *Harness) Result
}

// OpCreate creates an ADR, optionally recording a superseded number.
type OpCreate struct {
	Title      string
	Supersedes uint32
}

func (o OpCreate) String() string {
	return fmt.Sprintf("create %q supersedes=%d", o.Title, o.Supersedes)
}

// ApplyReal implements [Op].
func (o OpCreate) ApplyReal(h *Harness) Result {
	rec, err := h.Active.Create(o.Title, o.Supersedes)

	return resultOf(rec.Number, rec.Status, err)
}

// ApplyModel implements [Op].
func (o OpCreate) ApplyModel(h *Harness) Result {
	rec, err := h.Model.Create(o.Title, o.Supersedes, h.Clock.Today())

	return resultOf(rec.Number, rec.Status, err)
}

// OpCreateSuperseding creates an ADR that supersedes Old.
type OpCreateSuperseding struct {
	Old   uint32
	Title string
}

func (o OpCreateSuperseding) String() string {
	return fmt.Sprintf("supersede %d with %q", o.Old, o.Title)
}

// ApplyReal implements [Op].
func (o OpCreateSuperseding) ApplyReal(h *Harness) Result {
	rec, err := h.Active.CreateSuperseding(o.Old, o.Title)

	return resultOf(rec.Number, rec.Status, err)
}

// ApplyModel implements [Op].
func (o OpCreateSuperseding) ApplyModel(h *Harness) Result {
	rec, err := h.Model.CreateSuperseding(o.Old, o.Title, h.Clock.Today())

	return resultOf(rec.Number, rec.Status, err)
}

// OpTransition accepts or rejects by number or title.
type OpTransition struct {
	ID     string
	Status string
}

func (o OpTransition) String() string {
	return fmt.Sprintf("transition %q -> %s", o.ID, o.Status)
}

// ApplyReal implements [Op].
func (o OpTransition) ApplyReal(h *Harness) Result {
	rec, err := h.Active.Transition(o.ID, o.Status)

	return resultOf(rec.Number, rec.Status, err)
}

// ApplyModel implements [Op].
func (o OpTransition) ApplyModel(h *Harness) Result {
	rec, err := h.Model.Transition(o.ID, o.Status, h.Clock.Today())

	return resultOf(rec.Number, rec.Status, err)
}

// OpSupersede marks Old superseded by New without creating anything.
type OpSupersede struct {
	Old uint32
	New uint32
}

func (o OpSupersede) String() string {
	return fmt.Sprintf("mark %d superseded by %d", o.Old, o.New)
}

// ApplyReal implements [Op].
func (o OpSupersede) ApplyReal(h *Harness) Result {
	rec, err := h.Active.Supersede(o.Old, o.New)

	return resultOf(rec.Number, rec.Status, err)
}

// ApplyModel implements [Op].
func (o OpSupersede) ApplyModel(h *Harness) Result {
	rec, err := h.Model.Supersede(o.Old, o.New)

	return resultOf(rec.Number, rec.Status, err)
}

// OpReformat reformats one ADR with the active engine.
type OpReformat struct {
	Number uint32
}

func (o OpReformat) String() string {
	return fmt.Sprintf("reformat %d", o.Number)
}

// ApplyReal implements [Op].
func (o OpReformat) ApplyReal(h *Harness) Result {
	rec, err := h.Active.Reformat(o.Number)

	return resultOf(rec.Number, rec.Status, err)
}

// ApplyModel implements [Op].
func (o OpReformat) ApplyModel(h *Harness) Result {
	rec, err := h.Model.Reformat(o.Number)

	return resultOf(rec.Number, rec.Status, err)
}

// OpSwitchFormat flips the active engine between plain and front matter and
// reformats every ADR into the new representation.
type OpSwitchFormat struct{}

func (OpSwitchFormat) String() string {
	return "switch format and reformat all"
}

// ApplyReal implements [Op].
func (OpSwitchFormat) ApplyReal(h *Harness) Result {
	if h.Active == h.Plain {
		h.Active = h.FrontMatter
	} else {
		h.Active = h.Plain
	}

	records, err := h.Active.ReformatAll()

	return resultOf(uint32(len(records)), "", err)
}

// ApplyModel implements [Op].
func (OpSwitchFormat) ApplyModel(h *Harness) Result {
	return resultOf(uint32(len(h.Model.records)), "", nil)
}

// OpTick advances the clock.
type OpTick struct {
	Days int
}

func (o OpTick) String() string {
	return fmt.Sprintf("advance %d days", o.Days)
}

// ApplyReal implements [Op]. The clock is shared, so only one side moves it.
func (o OpTick) ApplyReal(h *Harness) Result {
	h.Clock.AdvanceDays(o.Days)

	return resultOf(0, "", nil)
}

// ApplyModel implements [Op].
func (OpTick) ApplyModel(*Harness) Result {
	return resultOf(0, "", nil)
}

var _ = []Op{
	OpCreate{}, OpCreateSuperseding{}, OpTransition{}, OpSupersede{},
	OpReformat{}, OpSwitchFormat{}, OpTick{},
}

// statusFor maps a byte choice to a transition target.
func statusFor(accept bool) string {
	if accept {
		return adr.StatusAccepted
	}

	return adr.StatusRejected
}
