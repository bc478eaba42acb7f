package ui

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/metascrape/pkg/common"
)

func TestForm_Submit(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		wantErr error
		wantURL string
	}{
		{name: "empty", input: "", wantErr: common.ErrEmptyInput},
		{name: "blank", input: " \t ", wantErr: common.ErrEmptyInput},
		{name: "no scheme", input: "example.com", wantErr: ErrInvalidURL},
		{name: "unsupported scheme", input: "ftp://example.com", wantErr: ErrInvalidURL},
		{name: "no host", input: "http://", wantErr: ErrInvalidURL},
		{name: "http", input: "http://a.com", wantURL: "http://a.com"},
		{name: "trimmed", input: "  https://a.com/page?q=1  ", wantURL: "https://a.com/page?q=1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := &fakeClient{status: common.StatusCreated}
			f := NewForm()
			f.SetValue(tc.input)

			cmd, err := f.Submit(context.Background(), c)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, cmd)
				assert.Equal(t, 0, c.submitCalls)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cmd)
			assert.Equal(t, 0, c.submitCalls, "nothing is sent until the command runs")

			done, ok := cmd().(SubmitDoneMsg)
			require.True(t, ok)
			assert.Equal(t, tc.wantURL, done.URL)
			assert.Equal(t, common.StatusCreated, done.Status)
			assert.NoError(t, done.Err)
			assert.Equal(t, []string{tc.wantURL}, c.submitted)
		})
	}
}

func TestForm_BusyView(t *testing.T) {
	f := NewForm()
	assert.Contains(t, f.View(), "Submit →")

	cmd := f.SetBusy(true)
	assert.NotNil(t, cmd, "becoming busy starts the spinner")
	assert.True(t, f.Busy())
	assert.Contains(t, f.View(), "Scraping")
	assert.NotContains(t, f.View(), "Submit →")

	assert.Nil(t, f.SetBusy(true), "already busy")
	assert.Nil(t, f.SetBusy(false))
	assert.Contains(t, f.View(), "Submit →")
}

func TestForm_Reset(t *testing.T) {
	f := NewForm()
	f.SetValue("http://a.com")
	f.Reset()
	assert.Empty(t, f.Value())
}

func TestNotices(t *testing.T) {
	t.Run("toast expires", func(t *testing.T) {
		n := NewNotices(ModeToast, time.Millisecond)
		cmd := n.Push(LevelSuccess, "done")
		require.NotNil(t, cmd)
		require.Len(t, n.Visible(), 1)
		assert.Contains(t, n.View(), "done")

		n.Update(cmd())
		assert.Empty(t, n.Visible())
		assert.Empty(t, n.View())

		last, ok := n.Last()
		require.True(t, ok)
		assert.Equal(t, "done", last.Text)
	})

	t.Run("toast stack is bounded", func(t *testing.T) {
		n := NewNotices(ModeToast, time.Hour)
		for i := 0; i < maxToasts+2; i++ {
			n.Push(LevelInfo, "msg")
		}
		assert.Len(t, n.Visible(), maxToasts)
		assert.Equal(t, maxToasts+2, n.Count())
	})

	t.Run("inline replaces", func(t *testing.T) {
		n := NewNotices(ModeInline, 0)
		assert.Nil(t, n.Push(LevelError, "first"))
		assert.Nil(t, n.Push(LevelInfo, "second"))

		visible := n.Visible()
		require.Len(t, visible, 1)
		assert.Equal(t, "second", visible[0].Text)
		assert.NotContains(t, n.View(), "first")
	})

	t.Run("unknown mode falls back to toast", func(t *testing.T) {
		n := NewNotices(NoticeMode("popup"), 0)
		assert.Equal(t, ModeToast, n.Mode())
	})
}
