package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/dmorgan81/imagine/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMulti(t *testing.T) {
	var got []string
	record := func(name string) Notifier {
		return Func(func(_ context.Context, n Notification) {
			got = append(got, name+":"+n.Title)
		})
	}

	Multi{record("a"), record("b")}.Notify(context.Background(), Notification{Title: "t"})
	assert.Equal(t, []string{"a:t", "b:t"}, got)
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	ctx := log.NewContext(context.Background(), log.New(&buf, slog.LevelDebug))

	LogNotifier{}.Notify(ctx, Notification{Title: "Generation failed", Description: "boom", Severity: Destructive})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "Generation failed", line["msg"])
	group, ok := line["notification"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "boom", group["description"])
	assert.Equal(t, "destructive", group["severity"])
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "info", Info.String())
	assert.Equal(t, "destructive", Destructive.String())
}
