package targetdb

import "time"

// unixNow is isolated in its own tiny file so tests can swap nowFunc without
// reaching into store.go's transaction logic.
func unixNow() int64 { return time.Now().Unix() }
