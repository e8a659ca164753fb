package errutil_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/yamusic/errutil"
	"github.com/xeptore/yamusic/yandex/api"
)

func TestTree(t *testing.T) {
	t.Parallel()

	t.Run("Nil", func(t *testing.T) {
		t.Parallel()
		assert.PanicsWithValue(t, "nil error", func() { errutil.Tree(nil) })
	})

	t.Run("Leaf", func(t *testing.T) {
		t.Parallel()
		assertTree(t, leaf("context canceled", "*errors.errorString"), errutil.Tree(context.Canceled))
	})

	t.Run("APIErrorChain", func(t *testing.T) {
		t.Parallel()
		notFound := &api.NotFoundError{HTTPError: api.HTTPError{StatusCode: 404}, IDs: []string{"1"}} //nolint:exhaustruct
		err := fmt.Errorf("lookup: %w", notFound)

		expected := errutil.ErrInfo{
			Message:  err.Error(),
			TypeName: "*fmt.wrapError",
			Children: []errutil.ErrInfo{
				{
					Message:  notFound.Error(),
					TypeName: "*api.NotFoundError",
					Children: []errutil.ErrInfo{leaf(notFound.HTTPError.Error(), "*api.HTTPError")},
				},
			},
		}
		assertTree(t, expected, errutil.Tree(err))
	})

	t.Run("Joined", func(t *testing.T) {
		t.Parallel()
		_, readErr := os.ReadDir("nonexistent")
		err := errors.Join(
			errors.New("cover download failed"),
			errors.Join(
				fmt.Errorf("audio: %w", readErr),
				errors.New("info file"),
			),
		)

		expected := errutil.ErrInfo{
			Message:  err.Error(),
			TypeName: "*errors.joinError",
			Children: []errutil.ErrInfo{
				leaf("cover download failed", "*errors.errorString"),
				{
					Message:  "audio: open nonexistent: no such file or directory\ninfo file",
					TypeName: "*errors.joinError",
					Children: []errutil.ErrInfo{
						{
							Message:  "audio: open nonexistent: no such file or directory",
							TypeName: "*fmt.wrapError",
							Children: []errutil.ErrInfo{
								{
									Message:  "open nonexistent: no such file or directory",
									TypeName: "*fs.PathError",
									Children: []errutil.ErrInfo{leaf("no such file or directory", "syscall.Errno")},
								},
							},
						},
						leaf("info file", "*errors.errorString"),
					},
				},
			},
		}
		assertTree(t, expected, errutil.Tree(err))
	})

	t.Run("FlawP", func(t *testing.T) {
		t.Parallel()
		p := errutil.Tree(fmt.Errorf("outer: %w", context.DeadlineExceeded)).FlawP()
		assert.Equal(t, "outer: context deadline exceeded", p["message"])
		children, ok := p["children"].([]flaw.P)
		require.True(t, ok)
		require.Len(t, children, 1)
		assert.Equal(t, "context deadline exceeded", children[0]["message"])
		assert.Nil(t, children[0]["children"])
	})
}

func leaf(message, typeName string) errutil.ErrInfo {
	return errutil.ErrInfo{Message: message, TypeName: typeName, SyntaxRepr: "", Children: nil}
}

func assertTree(t *testing.T, expected, actual errutil.ErrInfo) {
	t.Helper()
	assert.Equal(t, expected.Message, actual.Message)
	assert.Equal(t, expected.TypeName, actual.TypeName)
	if assert.Len(t, actual.Children, len(expected.Children), expected.Message) {
		for i, child := range actual.Children {
			assertTree(t, expected.Children[i], child)
		}
	}
}
