package app

// AppName names the config, theme and log locations.
const AppName = "botdeck"

// AppVersion is overridden at build time with -ldflags "-X".
var AppVersion = "dev"
