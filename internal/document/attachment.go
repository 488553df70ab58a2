package document

import (
	"path/filepath"
	"strings"
)

// Kind names the attachment variants for logging.
type Kind string

const (
	KindImage        Kind = "image"
	KindPDF          Kind = "pdf"
	KindUnrecognized Kind = "unrecognized"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// Attachment is one user-supplied file. It is one of Image, PDF or
// Unrecognized; the assembler dispatches on the concrete type. Attachments
// have no identity beyond their name, and duplicate names are kept.
type Attachment interface {
	Name() string
	Kind() Kind
	Size() int
}

type Image struct {
	name    string
	Content []byte
}

type PDF struct {
	name    string
	Content []byte
}

type Unrecognized struct {
	name string
	size int
}

func (a Image) Name() string { return a.name }
func (a Image) Kind() Kind   { return KindImage }
func (a Image) Size() int    { return len(a.Content) }

func (a PDF) Name() string { return a.name }
func (a PDF) Kind() Kind   { return KindPDF }
func (a PDF) Size() int    { return len(a.Content) }

func (a Unrecognized) Name() string { return a.name }
func (a Unrecognized) Kind() Kind   { return KindUnrecognized }
func (a Unrecognized) Size() int    { return a.size }

// NewAttachment classifies a file by its extension, case-insensitively.
func NewAttachment(name string, content []byte) Attachment {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case ext == ".pdf":
		return PDF{name: name, Content: content}
	case imageExtensions[ext]:
		return Image{name: name, Content: content}
	default:
		return Unrecognized{name: name, size: len(content)}
	}
}
