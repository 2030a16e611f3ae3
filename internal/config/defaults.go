package config

const (
	defaultConfigPath     = "~/.config/imgcat/config.toml"
	defaultRootDir        = "./images"
	defaultDatabase       = "~/.local/share/imgcat/image_catalog.db"
	defaultLogDir         = "~/.local/share/imgcat/logs"
	defaultCreateRoot     = true
	defaultVerifyPixels   = true
	defaultFilesystemDate = FilesystemDateModified
	defaultExifTimezone   = "Local"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Filesystem timestamp used when an image carries no capture date.
const (
	FilesystemDateModified = "modified"
	FilesystemDateBirth    = "birth"
)

// DefaultExtensions lists the file extensions scanned when none are configured.
var DefaultExtensions = []string{"jpg", "jpeg", "png", "gif", "bmp", "webp"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	exts := make([]string, len(DefaultExtensions))
	copy(exts, DefaultExtensions)
	return Config{
		Paths: Paths{
			RootDir:    defaultRootDir,
			Database:   defaultDatabase,
			LogDir:     defaultLogDir,
			CreateRoot: defaultCreateRoot,
		},
		Scan: Scan{
			Extensions:     exts,
			VerifyPixels:   defaultVerifyPixels,
			FilesystemDate: defaultFilesystemDate,
			ExifTimezone:   defaultExifTimezone,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
