// Package resources embeds migrations and translation catalogs into the binary.
package resources

import "embed"

//go:embed migrations i18n
var FS embed.FS
