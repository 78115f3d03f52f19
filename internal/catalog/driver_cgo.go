//go:build !nocgo

package catalog

import (
	_ "github.com/mattn/go-sqlite3" // registers "sqlite3"
)

// driverName is the sql.Open driver used to reach the catalog file. The
// default build uses mattn/go-sqlite3 (cgo); building with -tags nocgo
// switches to the pure-Go modernc.org/sqlite driver in driver_nocgo.go,
// mirroring the teacher's dual-driver support (store/sqlite_bm25.go uses
// modernc.org/sqlite unconditionally; here the choice is a build tag instead
// since C6 owns the single catalog file both drivers must agree on).
const driverName = "sqlite3"
