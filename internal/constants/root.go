package constants

import "time"

// SessionState represents the current view of the TUI application
type SessionState int

const (
	AppName             = "bloomlet"
	DefaultKeyringUser  = "database-connection"
	SessionKeyringUser  = "session-user"
	DefaultConfigPath   = "~/.config/bloomlet/bloomlet.db"
	DefaultSettingsPath = "~/.config/bloomlet/config.yaml"
	Version             = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// LocalUserID owns entries written without an authenticated session.
	LocalUserID = "local-user"

	// Weekly goal bounds
	MinWeeklyGoal     = 1
	MaxWeeklyGoal     = 7
	DefaultWeeklyGoal = 4

	// Local cache keys
	EntriesCacheKey        = "bloomlet_entries"
	CompletedWeeksCacheKey = "bloomlet_completed_weeks"
	ProfileCacheKey        = "bloomlet_profile"
	PendingCacheKey        = "bloomlet_pending"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "bloomlet-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "bloomlet-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.bloomlet"

	// Analysis
	DefaultAnalysisTimeout = 15 * time.Second
	ReanalyzeDelay         = 500 * time.Millisecond
	SummaryMaxLength       = 100
)

// Session States
const (
	StateJournal SessionState = iota
	StateProgress
	StateGarden
	StateCompose
	StateConfirmDelete
)
