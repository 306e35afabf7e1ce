package store

import (
	"fmt"
	"os"
	"strings"
)

// OpenMode is a set of flags describing how a file is opened.
type OpenMode uint8

const (
	OpenRead OpenMode = 1 << iota
	OpenWrite
	OpenCreate
	OpenTruncate
	OpenAppend
	OpenExclusive
)

// Common mode combinations.
const (
	// ModeRead opens an existing file for reading.
	ModeRead = OpenRead

	// ModeWrite creates or truncates a file for writing.
	ModeWrite = OpenWrite | OpenCreate | OpenTruncate

	// ModeAppend creates a file if needed and appends to it.
	ModeAppend = OpenWrite | OpenCreate | OpenAppend

	// ModeUpdate opens an existing file for reading and writing in place.
	ModeUpdate = OpenRead | OpenWrite

	// ModeCreateNew creates a file that must not exist yet.
	ModeCreateNew = OpenWrite | OpenCreate | OpenExclusive
)

// Readable reports whether reads are allowed.
func (m OpenMode) Readable() bool { return m&OpenRead != 0 }

// Mutates reports whether the mode can change the file's content.
func (m OpenMode) Mutates() bool { return m&OpenWrite != 0 }

// Creates reports whether a missing file is created on open.
func (m OpenMode) Creates() bool { return m&OpenCreate != 0 }

// Flag converts the mode to os.OpenFile flags.
func (m OpenMode) Flag() int {
	var flag int
	switch {
	case m.Readable() && m.Mutates():
		flag = os.O_RDWR
	case m.Mutates():
		flag = os.O_WRONLY
	default:
		flag = os.O_RDONLY
	}
	if m&OpenCreate != 0 {
		flag |= os.O_CREATE
	}
	if m&OpenTruncate != 0 {
		flag |= os.O_TRUNC
	}
	if m&OpenAppend != 0 {
		flag |= os.O_APPEND
	}
	if m&OpenExclusive != 0 {
		flag |= os.O_EXCL
	}
	return flag
}

func (m OpenMode) String() string {
	var b strings.Builder
	switch {
	case m&OpenExclusive != 0:
		b.WriteByte('x')
	case m&OpenAppend != 0:
		b.WriteByte('a')
	case m&OpenTruncate != 0:
		b.WriteByte('w')
	default:
		b.WriteByte('r')
	}
	primaryReads := b.String() == "r"
	if (primaryReads && m.Mutates()) || (!primaryReads && m.Readable()) {
		b.WriteByte('+')
	}
	return b.String()
}

// ParseOpenMode parses a conventional mode string ("r", "w", "a", "x",
// optionally followed by "+", "b" or "t").
func ParseOpenMode(s string) (OpenMode, error) {
	if s == "" {
		return 0, fmt.Errorf("empty open mode")
	}

	var m OpenMode
	switch s[0] {
	case 'r':
		m = ModeRead
	case 'w':
		m = ModeWrite
	case 'a':
		m = ModeAppend
	case 'x':
		m = ModeCreateNew
	default:
		return 0, fmt.Errorf("invalid open mode %q", s)
	}

	for _, c := range s[1:] {
		switch c {
		case '+':
			m |= OpenRead | OpenWrite
		case 'b', 't':
		default:
			return 0, fmt.Errorf("invalid open mode %q", s)
		}
	}
	return m, nil
}
