package app

import "github.com/olivoil/botdeck/internal/control"

// NoticeMsg is a client-side notice for the operator log, such as a startup
// problem found after the program began.
type NoticeMsg struct {
	Level control.Level
	Text  string
}
