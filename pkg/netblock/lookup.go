package netblock

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// NotFound fills both NetBlock and Description of a Match for an address that
// is malformed or in no probed netblock.
const NotFound = "NotFound"

// LookupColumns are the column names of lookup results, in order.
var LookupColumns = []string{"IPaddr", "NetBlock", "Description"}

// Match is the classification of one address.
type Match struct {
	IPaddr      string `json:"IPaddr" yaml:"IPaddr"`
	NetBlock    string `json:"NetBlock" yaml:"NetBlock"`
	Description string `json:"Description" yaml:"Description"`
	Found       bool   `json:"-" yaml:"-"`
	Err         error  `json:"-" yaml:"-"` // set when IPaddr is malformed
}

// Row returns the match as text cells ordered like LookupColumns.
func (m Match) Row() []string {
	return []string{m.IPaddr, m.NetBlock, m.Description}
}

func notFound(addr string) Match {
	return Match{
		IPaddr:      addr,
		NetBlock:    NotFound,
		Description: NotFound,
	}
}

// chunk size below which LookupParallel does not split the work further
const minParallelChunk = 256

// Lookup classifies a single address.
//
// The masks of the probe order are tried in the order they were set. For each
// mask the address is masked and looked up in the index, and the first record
// found is returned. Lookup does not compare prefix lengths itself: it is a
// longest-prefix-match only when the probe order runs from most to least
// specific.
//
// A malformed address logs a warning and returns the NotFound match with Err set.
func (t *Table) Lookup(addr string) Match {
	ip, err := ParseAddr(addr)
	if err != nil {
		t.logger.Warn("Lookup of malformed address", slog.String("address", addr))
		match := notFound(addr)
		match.Err = err
		return match
	}

	position, found := t.lookupU32(ip)
	if !found {
		return notFound(addr)
	}

	record := &t.records[position]
	return Match{
		IPaddr:      addr,
		NetBlock:    record.NetBlock,
		Description: record.Description,
		Found:       true,
	}
}

// lookupU32 returns the record position of the first probe that hits.
func (t *Table) lookupU32(ip uint32) (int, bool) {
	for _, mask := range t.probeOrder {
		key := indexKey{mask: uint8(mask), value: ApplyMask(ip, mask)}
		if position, found := t.index[key]; found {
			return position, true
		}
	}
	return 0, false
}

// LookupAll classifies every address independently. The result has one match
// per address, in the same order.
func (t *Table) LookupAll(addrs []string) []Match {
	results := make([]Match, len(addrs))
	for i, addr := range addrs {
		results[i] = t.Lookup(addr)
	}
	return results
}

// LookupParallel is LookupAll spread over at most workers goroutines.
// workers < 1 uses GOMAXPROCS.
//
// The table must not be modified while it runs. It returns ctx.Err() if the
// context is cancelled before every address is classified.
func (t *Table) LookupParallel(ctx context.Context, addrs []string, workers int) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	chunk := (len(addrs) + workers - 1) / workers
	if chunk < minParallelChunk {
		chunk = minParallelChunk
	}

	results := make([]Match, len(addrs))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for start := 0; start < len(addrs); start += chunk {
		end := min(start+chunk, len(addrs))
		group.Go(func() error {
			for i := start; i < end; i++ {
				if (i-start)%minParallelChunk == 0 {
					if err := groupCtx.Err(); err != nil {
						return err
					}
				}
				results[i] = t.Lookup(addrs[i])
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
