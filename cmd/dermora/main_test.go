package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yourusername/dermora-assistant/config"
	"github.com/yourusername/dermora-assistant/internal/domain/entity"
	"github.com/yourusername/dermora-assistant/internal/usecase"
)

func TestNewLogger(t *testing.T) {
	l, err := newLogger("warn", false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))

	l, err = newLogger("warn", true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	_, err = newLogger("loud", false)
	assert.Error(t, err)
}

func TestAskKeywordQuestion(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"ask", "How", "often", "should", "I", "use", "retinol?"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, entity.DefaultKeywordRules()[0].Response+"\n", out.String())
}

func TestAskWithoutKeyFailsClosed(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"ask", "what is niacinamide?"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, usecase.MisconfiguredReply+"\n", out.String())
}

func TestRunJanitorStops(t *testing.T) {
	logger = zap.NewNop()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runJanitor(ctx, nil, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestBuildAppKnowledgeFile(t *testing.T) {
	base := config.Config{
		GeminiModel:   "gemini-1.5-flash-latest",
		GeminiBackend: config.BackendREST,
		GeminiTimeout: time.Second,
		ChatStore:     config.StoreMemory,
		MaxHistory:    config.MinHistory,
		KnowledgeFile: filepath.Join(t.TempDir(), "missing-guide.txt"),
	}

	// no key: the guide is skipped rather than failing startup
	a, err := buildApp(context.Background(), &base, zap.NewNop())
	require.NoError(t, err)
	a.Close()

	withKey := base
	withKey.GeminiAPIKey = "test-key"
	_, err = buildApp(context.Background(), &withKey, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "knowledge guide")
}
