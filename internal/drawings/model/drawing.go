// Package model defines the drawings domain types shared by the service
// clients, the synchronization store and the filter.
package model

import (
	"cmp"
	"slices"
	"time"
)

// User is a reference to an account owned by the identity provider.
type User struct {
	ID        string `json:"id"`
	FullName  string `json:"fullName,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Version is an immutable snapshot of a drawing's file.
type Version struct {
	ID            string    `json:"id"`
	VersionNumber int       `json:"versionNumber"`
	FileName      string    `json:"fileName"`
	URL           string    `json:"url"`
	Size          int64     `json:"size"`
	Uploader      User      `json:"uploader"`
	UploadDate    time.Time `json:"uploadDate"`
}

// Comment is a note attached to a drawing.
type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Author    User      `json:"author"`
	Timestamp time.Time `json:"timestamp"`
}

// Drawing is a technical document and its history. Versions are ordered
// newest first; Comments are in insertion order.
type Drawing struct {
	ID         string     `json:"id"`
	Code       string     `json:"code"`
	Title      string     `json:"title"`
	Discipline Discipline `json:"discipline"`
	Status     string     `json:"status,omitempty"`
	Versions   []Version  `json:"versions"`
	Comments   []Comment  `json:"comments,omitempty"`
}

// Current returns the authoritative version, versions[0].
func (d Drawing) Current() (Version, bool) {
	if len(d.Versions) == 0 {
		return Version{}, false
	}
	return d.Versions[0], true
}

// Clone returns a copy that shares no slices with d.
func (d Drawing) Clone() Drawing {
	d.Versions = slices.Clone(d.Versions)
	d.Comments = slices.Clone(d.Comments)
	return d
}

// VersionsOrdered reports whether versions[0] carries the highest version number.
func VersionsOrdered(d Drawing) bool {
	if len(d.Versions) == 0 {
		return false
	}
	top := d.Versions[0].VersionNumber
	for _, v := range d.Versions[1:] {
		if v.VersionNumber > top {
			return false
		}
	}
	return true
}

// NormalizeVersions returns d with Versions sorted newest first. The input is
// returned unchanged when already ordered; otherwise the sort is applied to a
// copy so the caller's slice is never reordered.
func NormalizeVersions(d Drawing) Drawing {
	if len(d.Versions) < 2 || VersionsOrdered(d) {
		return d
	}
	versions := slices.Clone(d.Versions)
	slices.SortStableFunc(versions, func(a, b Version) int {
		return cmp.Compare(b.VersionNumber, a.VersionNumber)
	})
	d.Versions = versions
	return d
}

// StoredFile is what the upload service returns for a stored file.
type StoredFile struct {
	FileName string `json:"fileName"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
}
