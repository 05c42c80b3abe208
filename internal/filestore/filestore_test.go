package filestore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestLocal(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	s, err := NewLocal(t.TempDir())
	is.NoErr(err)

	is.NoErr(s.Put(ctx, "users/1/photo.png", strings.NewReader("png")))
	f, _, err := s.Open(ctx, "users/1/photo.png")
	is.NoErr(err)
	b, err := io.ReadAll(f)
	is.NoErr(err)
	is.NoErr(f.Close())
	is.Equal(string(b), "png")

	is.NoErr(s.Delete(ctx, "users/1/photo.png"))
	_, _, err = s.Open(ctx, "users/1/photo.png")
	is.True(errors.Is(err, ErrNotExist))

	is.NoErr(s.Delete(ctx, "users/1/photo.png")) // already gone
}

func TestLocalRejectsTraversal(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	s, err := NewLocal(t.TempDir())
	is.NoErr(err)

	for _, name := range []string{"../secret", "users/../../x", "", "/"} {
		_, _, err := s.Open(ctx, name)
		is.True(errors.Is(err, ErrInvalidPath))
	}

	_, _, err = s.Open(ctx, "users")
	is.True(err != nil)
}
