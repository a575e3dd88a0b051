// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package units

// Denominations of byte sizes, used to size the pebble-backed ledger's
// cache and memtable configuration.
const (
	KiB uint64 = 1 << (10 * (iota + 1))
	MiB
	GiB
)
