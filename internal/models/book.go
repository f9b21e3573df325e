package models

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TimestampLayout renders timestamps as ISO-8601 UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

type Book struct {
	ID         string
	Name       string
	Year       int
	Author     string
	Summary    string
	Publisher  string
	PageCount  int
	ReadPage   int
	Reading    bool
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// Finished is derived from the page counters and is never stored on its own.
func (b Book) Finished() bool { return b.ReadPage == b.PageCount }

// ListItem is the projection returned by the list endpoint.
type ListItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Publisher string `json:"publisher"`
}

func (b Book) ListItem() ListItem {
	return ListItem{ID: b.ID, Name: b.Name, Publisher: b.Publisher}
}

type bookJSON struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Year       int    `json:"year"`
	Author     string `json:"author"`
	Summary    string `json:"summary"`
	Publisher  string `json:"publisher"`
	PageCount  int    `json:"pageCount"`
	ReadPage   int    `json:"readPage"`
	Finished   bool   `json:"finished"`
	Reading    bool   `json:"reading"`
	InsertedAt string `json:"insertedAt"`
	UpdatedAt  string `json:"updatedAt"`
}

func (b Book) MarshalJSON() ([]byte, error) {
	return json.Marshal(bookJSON{
		ID:         b.ID,
		Name:       b.Name,
		Year:       b.Year,
		Author:     b.Author,
		Summary:    b.Summary,
		Publisher:  b.Publisher,
		PageCount:  b.PageCount,
		ReadPage:   b.ReadPage,
		Finished:   b.Finished(),
		Reading:    b.Reading,
		InsertedAt: b.InsertedAt.UTC().Format(TimestampLayout),
		UpdatedAt:  b.UpdatedAt.UTC().Format(TimestampLayout),
	})
}
