package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerDefaults(t *testing.T) {
	l := newLogger()

	assert.Equal(t, logrus.WarnLevel, l.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)
}

func TestGetLoggerFallsBackToGlobal(t *testing.T) {
	entry := G(context.Background())
	assert.Equal(t, L.Logger, entry.Logger)
}

func TestWithLogger(t *testing.T) {
	custom := logrus.New()
	ctx := WithLogger(context.Background(), logrus.NewEntry(custom).WithField("cmd", "publish"))

	entry := G(ctx)
	assert.Equal(t, custom, entry.Logger)
	assert.Equal(t, "publish", entry.Data["cmd"])
}

func TestSetLogLevel(t *testing.T) {
	orig := L.Logger.GetLevel()
	t.Cleanup(func() { L.Logger.SetLevel(orig) })

	require.NoError(t, SetLogLevel("debug"))
	assert.Equal(t, logrus.DebugLevel, L.Logger.GetLevel())

	assert.Error(t, SetLogLevel("chatty"))
}

func TestJSONFormat(t *testing.T) {
	l := logrus.New()
	setLoggerFormat(l, "json")
	var buf bytes.Buffer
	l.SetOutput(&buf)

	l.WithField("skill_id", "Anonymous.demo").Warn("push rejected")

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "push rejected", out["message"])
	assert.Equal(t, "warning", out["level"])
	assert.Equal(t, "Anonymous.demo", out["skill_id"])
}
