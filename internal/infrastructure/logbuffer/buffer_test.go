package logbuffer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuffer_DropsOldest(t *testing.T) {
	b := New(3)
	for i := 1; i <= 5; i++ {
		b.Add("info", fmt.Sprintf("msg-%d", i), nil)
	}

	entries := b.Entries(10, "")
	assert.Len(t, entries, 3)
	// Новые сначала, самые старые вытеснены
	assert.Equal(t, "msg-5", entries[0].Message)
	assert.Equal(t, "msg-4", entries[1].Message)
	assert.Equal(t, "msg-3", entries[2].Message)
}

func TestBuffer_LevelFilterAndLimit(t *testing.T) {
	b := New(100)
	b.Add("info", "a", nil)
	b.Add("error", "b", nil)
	b.Add("warn", "c", nil)
	b.Add("error", "d", nil)

	errors := b.Entries(10, "error")
	assert.Len(t, errors, 2)
	assert.Equal(t, "d", errors[0].Message)
	assert.Equal(t, "b", errors[1].Message)

	limited := b.Entries(1, "")
	assert.Len(t, limited, 1)
	assert.Equal(t, "c", limited[0].Message)
}

func TestBuffer_Clear(t *testing.T) {
	b := New(10)
	b.Add("info", "a", nil)
	b.Clear()
	assert.Empty(t, b.Entries(10, ""))
}
