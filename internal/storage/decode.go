package storage

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed reports a payload that does not match the wire format.
var ErrMalformed = errors.New("malformed payload")

type videoRecord struct {
	ID            *int64  `json:"id"`
	UserID        *int64  `json:"userID"`
	Username      *string `json:"username"`
	ProfilePicURL *string `json:"profilePicURL"`
	Description   *string `json:"description"`
	Topic         *string `json:"topic"`
	Viewers       *int64  `json:"viewers"`
	Likes         *int64  `json:"likes"`
	Video         *string `json:"video"`
	Thumbnail     *string `json:"thumbnail"`
}

type commentRecord struct {
	ID       *int64  `json:"id"`
	Username *string `json:"username"`
	PicURL   *string `json:"picURL"`
	Comment  *string `json:"comment"`
}

type videosEnvelope struct {
	Videos     *[]videoRecord `json:"videos"`
	NextCursor string         `json:"next_cursor"`
}

type commentsEnvelope struct {
	Comments *[]commentRecord `json:"comments"`
}

// DecodePage parses a {"videos": [...], "next_cursor": "..."} document.
// Every video field is required.
func DecodePage(data []byte) (*Page, error) {
	var env videosEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Videos == nil {
		return nil, fmt.Errorf("%w: missing field %q", ErrMalformed, "videos")
	}

	page := &Page{
		Videos:     make([]*Video, 0, len(*env.Videos)),
		NextCursor: env.NextCursor,
	}
	for i, rec := range *env.Videos {
		v, err := rec.toVideo()
		if err != nil {
			return nil, fmt.Errorf("%w: videos[%d]: %v", ErrMalformed, i, err)
		}
		page.Videos = append(page.Videos, v)
	}
	return page, nil
}

// DecodeComments parses a {"comments": [...]} document.
func DecodeComments(data []byte) ([]*Comment, error) {
	var env commentsEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Comments == nil {
		return nil, fmt.Errorf("%w: missing field %q", ErrMalformed, "comments")
	}

	comments := make([]*Comment, 0, len(*env.Comments))
	for i, rec := range *env.Comments {
		c, err := rec.toComment()
		if err != nil {
			return nil, fmt.Errorf("%w: comments[%d]: %v", ErrMalformed, i, err)
		}
		comments = append(comments, c)
	}
	return comments, nil
}

func (r videoRecord) toVideo() (*Video, error) {
	missing := missingFields(map[string]bool{
		"id":            r.ID == nil,
		"userID":        r.UserID == nil,
		"username":      r.Username == nil,
		"profilePicURL": r.ProfilePicURL == nil,
		"description":   r.Description == nil,
		"topic":         r.Topic == nil,
		"viewers":       r.Viewers == nil,
		"likes":         r.Likes == nil,
		"video":         r.Video == nil,
		"thumbnail":     r.Thumbnail == nil,
	}, "id", "userID", "username", "profilePicURL", "description", "topic", "viewers", "likes", "video", "thumbnail")
	if missing != "" {
		return nil, fmt.Errorf("missing field %q", missing)
	}
	return &Video{
		ID:            *r.ID,
		UserID:        *r.UserID,
		Username:      *r.Username,
		ProfilePicURL: *r.ProfilePicURL,
		Description:   *r.Description,
		Topic:         *r.Topic,
		Viewers:       *r.Viewers,
		Likes:         *r.Likes,
		Video:         *r.Video,
		Thumbnail:     *r.Thumbnail,
	}, nil
}

func (r commentRecord) toComment() (*Comment, error) {
	missing := missingFields(map[string]bool{
		"id":       r.ID == nil,
		"username": r.Username == nil,
		"picURL":   r.PicURL == nil,
		"comment":  r.Comment == nil,
	}, "id", "username", "picURL", "comment")
	if missing != "" {
		return nil, fmt.Errorf("missing field %q", missing)
	}
	return &Comment{
		ID:       *r.ID,
		Username: *r.Username,
		PicURL:   *r.PicURL,
		Comment:  *r.Comment,
	}, nil
}

// missingFields returns the first absent field in wire order.
func missingFields(absent map[string]bool, order ...string) string {
	for _, name := range order {
		if absent[name] {
			return name
		}
	}
	return ""
}
