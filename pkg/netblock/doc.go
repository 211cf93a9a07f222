// ## Overview
// Package netblock classifies IPv4 addresses against a table of netblocks,
// each tagged with a free-text description.
//
// Instead of a prefix trie, a Table keeps a flat exact-match index keyed by
// (mask length, masked base address). A lookup masks the address with each
// mask length of the probe order, in turn, and returns the first record it
// finds. The probe order is set by the caller, so lookups are
// longest-prefix-matches only when it runs from the most to the least
// specific mask; Table.UsedMasks returns that order.
//
// ## Example usage:
//
//	table, report, _ := netblock.Build([]netblock.Entry{
//		{Base: "10.0.0.0", Mask: 8, Description: "Corp"},
//		{Base: "10.1.2.0", Mask: 24, Description: "Lab"},
//	})
//	fmt.Println(report) // Accepted: 2, Skipped: 0, Shadowed: 0
//	_ = table.SetProbeOrder(table.UsedMasks()...)
//
//	match := table.Lookup("10.1.2.77")
//	fmt.Println(match.NetBlock, match.Description) // 10.1.2.0/24 Lab
//
// A built table is read-only for lookups, which are safe to run from many
// goroutines once SetProbeOrder has returned.
package netblock
