package ir

// ChipDefinition describes a compound chip: an ordered list of sub-chips and
// the wires between their pins.
type ChipDefinition struct {
	ID      string       `json:"id" yaml:"id"`
	Name    string       `json:"name" yaml:"name"`
	Color   string       `json:"color,omitempty" yaml:"color,omitempty"`
	Chips   []SubChip    `json:"chips" yaml:"chips"`
	Wires   []Wire       `json:"wires" yaml:"wires"`
	Anchors [][2]float64 `json:"anchors,omitempty" yaml:"anchors,omitempty"`
	Code    string       `json:"code,omitempty" yaml:"code,omitempty"` // Last compiled program text
}

// SubChip is one chip instance inside a definition, addressed by its index.
type SubChip struct {
	Kind     Kind    `json:"kind" yaml:"kind"`
	X        float64 `json:"x" yaml:"x"`
	Y        float64 `json:"y" yaml:"y"`
	Label    string  `json:"label,omitempty" yaml:"label,omitempty"`
	PinCount int     `json:"pinCount,omitempty" yaml:"pinCount,omitempty"` // Groups only
}

// Wire is a directed connection from an output pin to an input pin.
type Wire struct {
	From    PinRef `json:"from" yaml:"from"`
	To      PinRef `json:"to" yaml:"to"`
	Anchors []int  `json:"anchors,omitempty" yaml:"anchors,omitempty"`
}

// PinRef addresses a pin as [sub-chip index, pin index].
type PinRef [2]int

// Chip returns the sub-chip index.
func (p PinRef) Chip() int { return p[0] }

// Pin returns the pin index.
func (p PinRef) Pin() int { return p[1] }

// Boundary reports how s maps onto the enclosing chip's pins.
func (s SubChip) Boundary() Boundary {
	switch s.Kind.Class() {
	case ClassInput:
		return Boundary{Direction: DirIn, Width: 1}
	case ClassOutput:
		return Boundary{Direction: DirOut, Width: 1}
	case ClassInputGroup:
		return Boundary{Direction: DirIn, Width: s.PinCount}
	case ClassOutputGroup:
		return Boundary{Direction: DirOut, Width: s.PinCount}
	default:
		return Boundary{}
	}
}

// InputWidth is the number of external input values the chip consumes.
func (d *ChipDefinition) InputWidth() int {
	n := 0
	for _, c := range d.Chips {
		if b := c.Boundary(); b.Direction == DirIn {
			n += b.Width
		}
	}
	return n
}

// OutputWidth is the number of values the chip produces.
func (d *ChipDefinition) OutputWidth() int {
	n := 0
	for _, c := range d.Chips {
		if b := c.Boundary(); b.Direction == DirOut {
			n += b.Width
		}
	}
	return n
}

// References returns the distinct non-boundary kinds used by d, in first-use
// order.
func (d *ChipDefinition) References() []Kind {
	seen := make(map[Kind]bool)
	var kinds []Kind
	for _, c := range d.Chips {
		if c.Kind.IsBoundary() || seen[c.Kind] {
			continue
		}
		seen[c.Kind] = true
		kinds = append(kinds, c.Kind)
	}
	return kinds
}

// EditorState holds the editor's input toggles (0 or 1 per input).
type EditorState struct {
	Input []int `json:"input" yaml:"input"`
}

// ProjectFile is a saved project: the editor canvas plus its chip library.
type ProjectFile struct {
	Version int              `json:"version" yaml:"version"`
	File    string           `json:"file" yaml:"file"` // "project"
	ID      string           `json:"id" yaml:"id"`
	Name    string           `json:"name" yaml:"name"`
	Editor  ChipDefinition   `json:"editor" yaml:"editor"`
	State   EditorState      `json:"state" yaml:"state"`
	Chips   []ChipDefinition `json:"chips" yaml:"chips"`
}

// ChipFile is a single exported chip.
type ChipFile struct {
	Version int            `json:"version" yaml:"version"`
	File    string         `json:"file" yaml:"file"` // "chip"
	Chip    ChipDefinition `json:"chip" yaml:"chip"`
}

// File kinds carried in the "file" field.
const (
	FileProject = "project"
	FileChip    = "chip"
)
