//go:build !sqlite_vec

package store

import (
	_ "modernc.org/sqlite"
)

// Pure-Go build: modernc.org/sqlite registers as "sqlite". Vector recall
// runs the in-process cosine scan.
const driverName = "sqlite"
