package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/custodia-labs/clinref/internal/citations"
	"github.com/custodia-labs/clinref/internal/config"
	"github.com/custodia-labs/clinref/internal/core/domain"
	"github.com/custodia-labs/clinref/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/clinref/internal/core/services"
	"github.com/custodia-labs/clinref/internal/panel"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLocateCmd_PlainText(t *testing.T) {
	src := writeFile(t, "extract.txt", "Patients should take 5mg,   daily. Review in 2 weeks.")

	out, err := runCmd(t, "locate", "--source", src, "--start", "patients", "--end", "DAILY.")
	require.NoError(t, err)

	var res locateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, domain.LocateFound, res.Status)
	assert.False(t, res.IsError)
	assert.Equal(t, "Patients should take 5mg, daily", res.Highlighted)
}

func TestLocateCmd_SourceDocument(t *testing.T) {
	src := writeFile(t, "sources.json", `{"1": "Unrelated text.", "3": "Offer inhaled steroids and review at 4 weeks."}`)

	out, err := runCmd(t, "locate", "--source", src, "--number", "3", "--start", "Offer", "--end", "missingword")
	require.NoError(t, err)

	var res locateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, domain.LocatePartial, res.Status)
	assert.True(t, res.IsError)
	assert.True(t, strings.HasPrefix(res.Highlighted, "Offer inhaled"))

	_, err = runCmd(t, "locate", "--source", src, "--number", "9", "--start", "a", "--end", "b")
	assert.Error(t, err)
}

func TestLocateCmd_RequiresFlags(t *testing.T) {
	_, err := runCmd(t, "locate", "--start", "a")
	assert.Error(t, err)
}

func TestRenderCmd(t *testing.T) {
	md := writeFile(t, "answer.md", "Metformin first line [1]. Review renal function [1] [2].")
	cites := writeFile(t, "citations.json", `{"1": {"title": "NG28", "source_type": "guidelines_database", "guidelines_index": "ng28"}}`)

	out, err := runCmd(t, "render", "--markdown", md, "--citations", cites)
	require.NoError(t, err)

	var res citations.Rendered
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 2, res.Occurrences["1"])
	assert.Contains(t, res.HTML, "<p>")
	assert.NotContains(t, res.HTML, "[1]")
}

func TestRenderCmd_BadCitations(t *testing.T) {
	md := writeFile(t, "answer.md", "text [1]")
	cites := writeFile(t, "citations.json", `not json`)

	_, err := runCmd(t, "render", "--markdown", md, "--citations", cites)
	assert.Error(t, err)
}

func TestBootstrapAdmin(t *testing.T) {
	admin := config.AdminConfig{Email: "admin@example.com", Password: "s3cret-pass", Name: "Admin"}
	logger := zaptest.NewLogger(t)

	t.Run("creates admin once", func(t *testing.T) {
		userStore := mocks.NewMockUserStore()
		lock := mocks.NewMockDistributedLock()
		users := services.NewUserService(userStore, mocks.NewMockSessionStore(), mocks.NewMockAuthAdapter(), logger)

		require.NoError(t, bootstrapAdmin(context.Background(), admin, users, lock, logger))
		require.NoError(t, bootstrapAdmin(context.Background(), admin, users, lock, logger))

		count, err := userStore.Count(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		assert.False(t, lock.IsHeld(bootstrapLock))
	})

	t.Run("skips when lock is held elsewhere", func(t *testing.T) {
		userStore := mocks.NewMockUserStore()
		lock := mocks.NewMockDistributedLock()
		lock.AcquireFn = func(string, time.Duration) (bool, error) { return false, nil }
		users := services.NewUserService(userStore, mocks.NewMockSessionStore(), mocks.NewMockAuthAdapter(), logger)

		require.NoError(t, bootstrapAdmin(context.Background(), admin, users, lock, logger))

		count, err := userStore.Count(context.Background())
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("lock failure", func(t *testing.T) {
		lock := mocks.NewMockDistributedLock()
		lock.AcquireFn = func(string, time.Duration) (bool, error) { return false, errors.New("redis down") }
		users := services.NewUserService(mocks.NewMockUserStore(), mocks.NewMockSessionStore(), mocks.NewMockAuthAdapter(), logger)

		assert.Error(t, bootstrapAdmin(context.Background(), admin, users, lock, logger))
	})

	t.Run("not configured", func(t *testing.T) {
		assert.NoError(t, bootstrapAdmin(context.Background(), config.AdminConfig{}, nil, nil, logger))
	})
}

func TestSweepPanels_StopsOnCancel(t *testing.T) {
	registry := panel.NewRegistry(zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		sweepPanels(ctx, registry, 20*time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
