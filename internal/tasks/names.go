package tasks

// Task names used in logs and metrics.
const (
	NameStyle          = "style"
	NameScript         = "script"
	NameThirdPartyCopy = "third_party_copy"
	NameMarkup         = "markup"
	NameImages         = "images"
	NameFonts          = "fonts"
	NameCacheBust      = "cache_bust"
	NameClean          = "clean"
)
