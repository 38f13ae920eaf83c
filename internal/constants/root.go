package constants

const (
	AppName             = "posy"
	DefaultKeyringUser  = "affirmation-api-key"
	DatabaseKeyringUser = "database-connection"
	DefaultConfigPath   = "~/.config/posy/posy.db"
	Version             = "v0.3.0"

	// DateFormat is the canonical day key format (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Blob store keys. These match the browser storage keys so that an
	// exported localStorage snapshot can be restored as-is.
	EntriesKey  = "posy_garden_entries"
	SettingsKey = "posy_settings"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "posy-"
	BackupFileSuffix = ".json"

	// MaxBlobRevisions caps the replaced values a store keeps per key
	MaxBlobRevisions = 30

	// Lock constants
	LockfileName = "posy.lock"

	// MaxMediaBytes caps an attachment before it is embedded as a data URL
	MaxMediaBytes = 10 << 20
)
