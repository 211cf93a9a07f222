package netblock

import "fmt"

// FindingKind classifies an Audit finding.
type FindingKind int

const (
	UnreachableMask    FindingKind = iota // a record mask missing from the probe order
	OrderNotDescending                    // a probe goes from a shorter to a longer mask
	DuplicateProbe                        // a mask probed more than once
	ShadowedEntry                         // a record replaced in the index by a later one
)

func (k FindingKind) String() string {
	switch k {
	case UnreachableMask:
		return "Unreachable Mask"
	case OrderNotDescending:
		return "Order Not Descending"
	case DuplicateProbe:
		return "Duplicate Probe"
	case ShadowedEntry:
		return "Shadowed Entry"
	}
	return fmt.Sprintf("FindingKind(%d)", int(k))
}

// Finding is one configuration problem that makes lookups behave differently
// from a longest-prefix-match over every record.
type Finding struct {
	Kind    FindingKind `json:"Kind"`
	Mask    int         `json:"Mask"`
	Records int         `json:"Records"` // number of records affected
	Detail  string      `json:"Detail"`
}

// MarshalText lets encoders write the kind by name.
func (k FindingKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// AuditColumns are the column names of audit findings, in order.
var AuditColumns = []string{"Kind", "Mask", "Records", "Detail"}

// Row returns the finding as text cells ordered like AuditColumns.
func (f Finding) Row() []string {
	return []string{f.Kind.String(), fmt.Sprint(f.Mask), fmt.Sprint(f.Records), f.Detail}
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Detail)
}

// Audit checks the probe order against the records.
// An empty result means every record is reachable and lookups are true
// longest-prefix-matches.
func (t *Table) Audit() []Finding {
	var findings []Finding

	var perMask [MaxMaskLength + 1]int
	for _, record := range t.records {
		perMask[record.Mask]++
	}

	var probed [MaxMaskLength + 1]bool
	for i, mask := range t.probeOrder {
		if probed[mask] {
			findings = append(findings, Finding{
				Kind:    DuplicateProbe,
				Mask:    mask,
				Records: perMask[mask],
				Detail:  fmt.Sprintf("/%d is probed again at position %d", mask, i),
			})
		}
		probed[mask] = true

		if i > 0 && t.probeOrder[i-1] < mask {
			findings = append(findings, Finding{
				Kind:    OrderNotDescending,
				Mask:    mask,
				Records: perMask[mask],
				Detail:  fmt.Sprintf("/%d is probed after /%d, a shorter match may hide it", mask, t.probeOrder[i-1]),
			})
		}
	}

	for mask := MaxMaskLength; mask >= 0; mask-- {
		if perMask[mask] > 0 && !probed[mask] {
			findings = append(findings, Finding{
				Kind:    UnreachableMask,
				Mask:    mask,
				Records: perMask[mask],
				Detail:  fmt.Sprintf("%d record(s) with /%d are never probed", perMask[mask], mask),
			})
		}
	}

	for _, shadow := range t.shadowed {
		findings = append(findings, Finding{
			Kind:    ShadowedEntry,
			Mask:    t.records[shadow.Record].Mask,
			Records: 1,
			Detail:  shadow.String(),
		})
	}

	return findings
}
