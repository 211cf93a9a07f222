package netblock

import (
	"fmt"
	"strings"
)

// records the outcome of building a table, for reporting
type BuildReport struct {
	Accepted int         // number of records added to the table
	Rejected []Rejection // entries skipped because of bad input
	Shadowed []Shadow    // records replaced in the index by a later entry with the same key
}

// Rejection is an entry that contributed nothing to the table.
type Rejection struct {
	Position int    // position of the entry in the build input
	Base     string // base address text as supplied
	Mask     int
	Err      error // wraps ErrMalformedAddress or ErrInvalidMaskLength
}

func (r Rejection) String() string {
	return fmt.Sprintf("entry %d (%s/%d): %v", r.Position, r.Base, r.Mask, r.Err)
}

// Shadow is a record that stays in the table but can no longer be matched,
// because a later record with the same mask and masked base took its index slot.
type Shadow struct {
	Record     int // record position of the shadowed record
	ShadowedBy int // record position of the record now in the index
	NetBlock   string
}

func (s Shadow) String() string {
	return fmt.Sprintf("record %d (%s) shadowed by record %d", s.Record, s.NetBlock, s.ShadowedBy)
}

// Skipped is the number of rejected entries.
func (br *BuildReport) Skipped() int {
	return len(br.Rejected)
}

func (br *BuildReport) String() string {
	str := fmt.Sprintf("Accepted: %d, Skipped: %d, Shadowed: %d", br.Accepted, br.Skipped(), len(br.Shadowed))

	if len(br.Rejected) > 0 {
		rejected := make([]string, 0, len(br.Rejected))
		for _, rejection := range br.Rejected {
			rejected = append(rejected, rejection.String())
		}
		str += " | Rejected: [" + strings.Join(rejected, "; ") + "]"
	}

	return str
}

func (br *BuildReport) reject(position int, entry Entry, err error) {
	br.Rejected = append(br.Rejected, Rejection{
		Position: position,
		Base:     entry.Base,
		Mask:     entry.Mask,
		Err:      err,
	})
}
