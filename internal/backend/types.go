package backend

import "time"

// Profile is a descriptor returned by `GET /profiles`. The credential fields
// are opaque to the client and only shown in the preview pane.
type Profile struct {
	Name     string `json:"-"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
}

// NewProfile is the body of `POST /profiles`.
type NewProfile struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Status is the authoritative run state returned by `GET /status/{profile}`.
type Status struct {
	Running     bool   `json:"running"`
	CurrentTask string `json:"current_task"`
}

// RunRequest is the body of `POST /run`.
type RunRequest struct {
	PostURL     string `json:"post_url"`
	Comment     string `json:"comment"`
	Count       int    `json:"count"`
	Headless    bool   `json:"headless"`
	ProfileName string `json:"profile_name"`
}

// ImportResult is the decoded `{message}` of a successful `POST /import_session`.
type ImportResult struct {
	Message string `json:"message"`
}

// Export describes a session artifact written to disk by ExportSession.
type Export struct {
	Profile string
	Path    string
	Bytes   int64
}

// Artifact is a session archive found in the import directory.
type Artifact struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
	// Entries is the number of files in the archive, or -1 when the file is
	// not a readable zip archive.
	Entries int
	Err     string
}

// Valid reports whether the archive could be opened.
func (a Artifact) Valid() bool {
	return a.Entries >= 0
}

// Push event names.
const (
	EventBotLog      = "bot_log"
	EventBotFinished = "bot_finished"
	EventJoin        = "join"
	EventLeave       = "leave"
)

// LogEvent is the payload of a `bot_log` push event.
type LogEvent struct {
	Message   string `json:"message"`
	Level     string `json:"level"`
	Timestamp string `json:"timestamp"`
	// Profile is set by servers that tag broadcasts; empty means untagged.
	Profile string `json:"profile,omitempty"`
}

// FinishedEvent is the payload of a `bot_finished` push event.
type FinishedEvent struct {
	Profile string `json:"profile"`
	Success bool   `json:"success"`
}

// ConnectionEvent reports push channel connectivity changes.
type ConnectionEvent struct {
	Connected bool
	Err       error
}

// RoomMsg is the payload of emitted `join` and `leave` events.
type RoomMsg struct {
	Profile string `json:"profile"`
}

// Config is the resolved client configuration.
type Config struct {
	Server struct {
		URL         string
		Token       string
		HTTPTimeout time.Duration
	}
	Poll struct {
		StatusInterval   time.Duration
		SnapshotInterval time.Duration
	}
	Transfer struct {
		DownloadDir string
		ImportDir   string
	}
	Log struct {
		Level string
		File  string
	}
}
