package model

// Version is the sentidash release, overridden at build time with
// -ldflags "-X github.com/ppiankov/sentidash/internal/model.Version=..."
var Version = "v0.1.0"
