package cardflow

// Version is the current cardflow release.
var Version = "0.2.0"
