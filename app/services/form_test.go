package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasklist/app/storage"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		text   string
		author string
		want   error
	}{
		{"valid", "Buy milk", "Alice", nil},
		{"digit in author", "Call Bob2", "Bob2", ErrInvalidAuthor},
		{"digit wins over empty text", "", "R2D2", ErrInvalidAuthor},
		{"digit wins over empty author", "x", " 7 ", ErrInvalidAuthor},
		{"empty text", "", "Bob", ErrEmptyField},
		{"blank text", "   ", "Bob", ErrEmptyField},
		{"empty author", "Buy milk", "", ErrEmptyField},
		{"blank author", "Buy milk", "\t", ErrEmptyField},
		{"digits in text are fine", "Buy 2 eggs", "Alice", nil},
		{"non-ascii digits are fine", "x", "Ali٣", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.text, tc.author)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestFormController_Submit(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, storage.NewMemoryKV())
	now := time.UnixMilli(1_700_000_000_000)

	t.Run("invalid author keeps input and sets error", func(t *testing.T) {
		f := FormController{Text: "Call Bob2", Author: "Bob2"}
		_, res, err := f.Submit(ctx, store, now)
		require.NoError(t, err)
		assert.Equal(t, SubmitInvalidAuthor, res)
		assert.Equal(t, "Author name cannot contain numbers.", f.Error)
		assert.Equal(t, "Call Bob2", f.Text)
		assert.Equal(t, "Bob2", f.Author)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("empty field is silent", func(t *testing.T) {
		f := FormController{Text: "", Author: "Bob"}
		_, res, err := f.Submit(ctx, store, now)
		require.NoError(t, err)
		assert.Equal(t, SubmitIgnored, res)
		assert.Empty(t, f.Error)
		assert.Equal(t, "Bob", f.Author)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("empty field leaves an earlier error in place", func(t *testing.T) {
		f := FormController{Text: "", Author: "Bob", Error: InvalidAuthorMessage}
		_, res, err := f.Submit(ctx, store, now)
		require.NoError(t, err)
		assert.Equal(t, SubmitIgnored, res)
		assert.Equal(t, InvalidAuthorMessage, f.Error)
	})

	t.Run("valid creates untrimmed task and clears form", func(t *testing.T) {
		f := FormController{Text: " Buy milk ", Author: "Alice ", Error: InvalidAuthorMessage}
		created, res, err := f.Submit(ctx, store, now)
		require.NoError(t, err)
		assert.Equal(t, SubmitCreated, res)
		assert.Equal(t, int64(1_700_000_000_000), created.ID)
		assert.Equal(t, " Buy milk ", created.Text)
		assert.Equal(t, "Alice ", created.Author)
		assert.False(t, created.Completed)
		assert.False(t, created.Deleted)
		assert.Equal(t, FormController{}, f)
		assert.Equal(t, 1, store.Len())
	})
}

func TestFormController_SubmitWriteFailureKeepsInput(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{KV: storage.NewMemoryKV(), fail: true}
	store := newStore(t, kv)

	f := FormController{Text: "Buy milk", Author: "Alice"}
	_, _, err := f.Submit(ctx, store, time.Now())
	assert.ErrorIs(t, err, errDiskFull)
	assert.Equal(t, "Buy milk", f.Text)
	assert.Equal(t, "Alice", f.Author)
	assert.Equal(t, 0, store.Len())
}
