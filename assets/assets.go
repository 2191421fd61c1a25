// Package assets embeds the bootstrap catalog shared by the server and the
// utility CLI.
package assets

import "embed"

//go:embed seed.json
var SeedFS embed.FS
