package netblock

import (
	"fmt"
	"log/slog"
	"slices"
)

// Entry is one raw netblock as supplied by the caller.
type Entry struct {
	Label       string // canonical "base/mask" identifier, generated from the masked base when empty
	Base        string // dotted-decimal base address, host bits are cleared
	Mask        int    // prefix length in [0,32]
	Description string
}

// Record is a validated netblock held by a Table.
//
// BaseInt is always the base address with its own mask applied, so a base
// with stray host bits (10.1.2.5/24) is stored as its network (10.1.2.0).
type Record struct {
	NetBlock    string `json:"NetBlock" yaml:"NetBlock"`
	Base        string `json:"Base" yaml:"Base"`
	Mask        int    `json:"Mask" yaml:"Mask"`
	BaseInt     uint32 `json:"BaseInt" yaml:"BaseInt"`
	Description string `json:"Description" yaml:"Description"`
}

// DumpColumns are the column names of the Dump projection, in order.
var DumpColumns = []string{"NetBlock", "Base", "Mask", "BaseInt", "Description"}

// Row returns the record as text cells ordered like DumpColumns.
func (r Record) Row() []string {
	return []string{r.NetBlock, r.Base, fmt.Sprint(r.Mask), fmt.Sprint(r.BaseInt), r.Description}
}

// the index is keyed by mask length and masked value together, so two
// records with different masks never compete for the same slot
type indexKey struct {
	mask  uint8
	value uint32
}

// Table is an immutable set of netblocks plus the exact-match index used by
// lookups, and the probe order of mask lengths.
//
// A Table is built once. Only the probe order can change afterwards, and
// SetProbeOrder must not run concurrently with lookups. Once the probe order
// is set, any number of goroutines may call the lookup methods.
type Table struct {
	records    []Record
	index      map[indexKey]int
	probeOrder []int
	shadowed   []Shadow
	logger     *slog.Logger
}

// Build validates entries and builds a table from them, in order.
//
// Parameters:
//   - entries: the raw netblocks.
//   - opts: build options, see WithLogger, WithStrict and WithProbeOrder.
//
// Returns:
//   - the table, holding one record per valid entry in insertion order.
//   - a report of rejected and shadowed entries.
//   - an error only in strict mode, or when a WithProbeOrder mask is invalid.
//
// An entry with a malformed address or a mask length outside [0,32] is
// skipped with a warning and the build goes on with the remaining entries.
// When two records share the same mask and masked base, the later one wins the
// index slot and the earlier one is reported as shadowed.
func Build(entries []Entry, opts ...Option) (*Table, *BuildReport, error) {
	b := defaultBuilder()
	for _, opt := range opts {
		b = opt(b)
	}

	table := &Table{
		records: make([]Record, 0, len(entries)),
		index:   make(map[indexKey]int, len(entries)),
		logger:  b.logger,
	}
	report := &BuildReport{}

	for position, entry := range entries {
		record, err := newRecord(entry)
		if err != nil {
			if b.strict {
				return nil, report, fmt.Errorf("netblock entry %d: %w", position, err)
			}
			b.logger.Warn("Skipping netblock entry",
				slog.Int("position", position),
				slog.String("address", entry.Base),
				slog.Int("mask", entry.Mask),
				slog.String("error", err.Error()))
			report.reject(position, entry, err)
			continue
		}
		table.insert(record, report)
	}
	report.Accepted = len(table.records)

	if len(b.probeOrder) > 0 {
		if err := table.SetProbeOrder(b.probeOrder...); err != nil {
			return nil, report, err
		}
	}

	return table, report, nil
}

// BuildColumns builds a table from four parallel columns, the shape in which
// tabular callers usually hold netblocks. All columns must have the same length.
func BuildColumns(labels, bases []string, masks []int, descriptions []string, opts ...Option) (*Table, *BuildReport, error) {
	n := len(bases)
	if len(labels) != n || len(masks) != n || len(descriptions) != n {
		return nil, nil, fmt.Errorf("%w: labels=%d bases=%d masks=%d descriptions=%d",
			ErrColumnLength, len(labels), n, len(masks), len(descriptions))
	}

	entries := make([]Entry, n)
	for i := range entries {
		entries[i] = Entry{
			Label:       labels[i],
			Base:        bases[i],
			Mask:        masks[i],
			Description: descriptions[i],
		}
	}
	return Build(entries, opts...)
}

func newRecord(entry Entry) (Record, error) {
	if !ValidMaskLength(entry.Mask) {
		return Record{}, fmt.Errorf("%w: %d", ErrInvalidMaskLength, entry.Mask)
	}
	base, err := ParseAddr(entry.Base)
	if err != nil {
		return Record{}, err
	}
	masked := ApplyMask(base, entry.Mask)

	label := entry.Label
	if label == "" {
		label = Label(masked, entry.Mask)
	}

	return Record{
		NetBlock:    label,
		Base:        entry.Base,
		Mask:        entry.Mask,
		BaseInt:     masked,
		Description: entry.Description,
	}, nil
}

func (t *Table) insert(record Record, report *BuildReport) {
	position := len(t.records)
	t.records = append(t.records, record)

	key := indexKey{mask: uint8(record.Mask), value: record.BaseInt}
	if previous, exists := t.index[key]; exists {
		shadow := Shadow{
			Record:     previous,
			ShadowedBy: position,
			NetBlock:   t.records[previous].NetBlock,
		}
		t.shadowed = append(t.shadowed, shadow)
		report.Shadowed = append(report.Shadowed, shadow)
		t.logger.Warn("Netblock shadowed by a later entry with the same network",
			slog.String("netblock", shadow.NetBlock),
			slog.Int("record", previous),
			slog.Int("shadowed_by", position))
	}
	t.index[key] = position
}

// SetProbeOrder appends masks, in the given order, to the sequence of mask
// lengths probed by lookups. Calling it twice concatenates the two sequences.
//
// The first probe that finds a record wins, so masks are normally listed from
// most specific (32) to least specific (0). Any mask used by a record but
// missing here makes that record unreachable. Nothing is appended if any mask
// is outside [0,32].
func (t *Table) SetProbeOrder(masks ...int) error {
	for _, mask := range masks {
		if !ValidMaskLength(mask) {
			return fmt.Errorf("probe order: %w: %d", ErrInvalidMaskLength, mask)
		}
	}
	t.probeOrder = append(t.probeOrder, masks...)
	return nil
}

// ProbeOrder returns a copy of the configured probe order.
func (t *Table) ProbeOrder() []int {
	return slices.Clone(t.probeOrder)
}

// UsedMasks returns the distinct mask lengths of the records, most specific
// first. Passing it to SetProbeOrder gives true longest-prefix-match lookups.
func (t *Table) UsedMasks() []int {
	var seen [MaxMaskLength + 1]bool
	for _, record := range t.records {
		seen[record.Mask] = true
	}

	masks := []int{}
	for mask := MaxMaskLength; mask >= 0; mask-- {
		if seen[mask] {
			masks = append(masks, mask)
		}
	}
	return masks
}

// Len is the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// Dump returns a copy of every record in insertion order, shadowed ones included.
func (t *Table) Dump() []Record {
	return slices.Clone(t.records)
}
