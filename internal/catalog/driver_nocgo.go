//go:build nocgo

package catalog

import (
	_ "modernc.org/sqlite" // registers "sqlite"
)

// driverName selects the pure-Go driver when built with -tags nocgo.
const driverName = "sqlite"
