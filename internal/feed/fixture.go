package feed

import (
	"context"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/pders01/reel/internal/storage"
)

const (
	videosFile   = "videos.json"
	commentsFile = "comments.json"
)

// FixtureSource serves videos.json and comments.json from a filesystem.
// The cursor is an offset into the video list. A page size of zero serves
// the whole list per page. With loop set the list repeats forever, which
// gives the endless feed the sample data is meant to show.
type FixtureSource struct {
	fsys     fs.FS
	pageSize int
	loop     bool
}

func NewFixtureSource(fsys fs.FS, pageSize int, loop bool) *FixtureSource {
	return &FixtureSource{fsys: fsys, pageSize: pageSize, loop: loop}
}

func (s *FixtureSource) Name() string { return "fixture" }

func (s *FixtureSource) FetchPage(ctx context.Context, cursor string) (*storage.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	offset, err := parseOffset(cursor)
	if err != nil {
		return nil, err
	}

	data, err := fs.ReadFile(s.fsys, videosFile)
	if err != nil {
		return nil, classify("reading "+videosFile, err)
	}
	all, err := storage.DecodePage(data)
	if err != nil {
		return nil, classify("decoding "+videosFile, err)
	}

	n := len(all.Videos)
	if offset >= n {
		if !s.loop || n == 0 {
			return &storage.Page{Videos: []*storage.Video{}, NextCursor: cursor}, nil
		}
		offset %= n
	}

	size := s.pageSize
	if size <= 0 {
		size = n
	}
	end := offset + size
	if end > n {
		end = n
	}

	next := end
	if s.loop {
		next %= n
	}
	return &storage.Page{
		Videos:     all.Videos[offset:end],
		NextCursor: strconv.Itoa(next),
	}, nil
}

func (s *FixtureSource) FetchComments(ctx context.Context) ([]*storage.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(s.fsys, commentsFile)
	if err != nil {
		return nil, classify("reading "+commentsFile, err)
	}
	comments, err := storage.DecodeComments(data)
	if err != nil {
		return nil, classify("decoding "+commentsFile, err)
	}
	return comments, nil
}

func parseOffset(cursor string) (int, error) {
	if cursor == "" {
		return 0, nil
	}
	offset, err := strconv.Atoi(cursor)
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("%w: invalid cursor %q", ErrDecode, cursor)
	}
	return offset, nil
}
