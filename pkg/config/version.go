package config

// Version is the build version, set with
// -ldflags "-X fieldnorm/pkg/config.Version=1.4.0".
var Version = "dev"
