package version

// AppName is the display name used in logs and embeds.
const AppName = "Beatframe"

// Version is overridden at build time via -ldflags.
var Version = "dev"
