package tessera

import _ "embed"

// Version is the release version, kept in the VERSION file so packaging
// scripts can read it without parsing Go.
//
//go:embed VERSION
var Version string
