package logview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/olivoil/botdeck/internal/control"
)

func TestFormatKeepsOrder(t *testing.T) {
	out := Format([]control.Entry{
		{Message: "first", Level: control.LevelInfo, Timestamp: "10:00:00"},
		{Message: "second", Level: control.LevelError, Timestamp: "10:00:01"},
	})
	assert.Contains(t, out, "[10:00:00]")
	assert.Contains(t, out, "first")
	assert.Less(t, strings.Index(out, "first"), strings.Index(out, "second"))
}

func TestSyncFollowsRevision(t *testing.T) {
	var log control.LogStream
	m := New()
	m.SetSize(80, 5)

	m.Sync(&log)
	assert.Contains(t, m.View(), "Waiting for bot activity")

	for i := 0; i < 20; i++ {
		log.Append("line", control.LevelInfo, "10:00:00")
	}
	log.Append("newest", control.LevelSuccess, "10:00:01")
	m.Sync(&log)
	assert.Contains(t, m.View(), "newest")
	assert.True(t, m.viewport.AtBottom())

	log.Clear()
	m.Sync(&log)
	assert.Contains(t, m.View(), "Waiting for bot activity")
}

