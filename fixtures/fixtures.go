// Package fixtures embeds the sample feed served when no other source is
// configured.
package fixtures

import "embed"

//go:embed videos.json comments.json
var FS embed.FS
