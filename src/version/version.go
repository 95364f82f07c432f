package version

// Version is the current acc2tax release.
const Version = "0.1.0"
