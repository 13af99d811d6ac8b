package notify

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsole_PlainOutputWhenNotATerminal(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, true)

	Error(c, "Cannot connect to the server")
	Success(c, "Product deleted")

	assert.Equal(t, "✗ Cannot connect to the server\n✓ Product deleted\n", buf.String())
}

func TestRecorder_CountsConcurrentNotifications(t *testing.T) {
	var r Recorder
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Warn(&r, "slow down")
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, r.Count("slow down"))
	assert.Len(t, r.All(), 20)
	assert.Equal(t, LevelWarning, r.All()[0].Level)
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "info", LevelInfo.String())
	assert.Equal(t, "success", LevelSuccess.String())
	assert.Equal(t, "warning", LevelWarning.String())
	assert.Equal(t, "error", LevelError.String())
}
