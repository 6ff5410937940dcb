// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

// Command respitectl queries a Respite catalog and ledger without a running
// server.
//
//	respitectl recommend --actor u1 --lat 37.5665 --lon 126.9780 --radius 2
//	respitectl neighbors park -k 3
//	respitectl profile u1
//	respitectl ledger import clicks.csv --encoding cp949
//	respitectl ledger tail -n 20
//
// Settings come from the same config file and environment as the server.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
