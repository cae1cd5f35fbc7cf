// Package appfs exposes the application's embedded file system.
package appfs

import "embed"

//go:embed migrations
var FS embed.FS
