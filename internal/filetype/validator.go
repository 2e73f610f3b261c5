package filetype

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"portal/internal/model"
)

// DefaultMaxBytes is the upload ceiling when none is configured.
const DefaultMaxBytes int64 = 50 << 20

var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrPayloadTooLarge      = errors.New("payload too large")
)

// Payload is an upload that passed validation and is held in memory until it is stored.
type Payload struct {
	Data           []byte
	ContentType    string
	Classification model.Classification
}

// Size returns the number of buffered bytes.
func (p *Payload) Size() int64 { return int64(len(p.Data)) }

// Reader returns a fresh reader over the buffered bytes.
func (p *Payload) Reader() io.Reader { return bytes.NewReader(p.Data) }

// Validator accepts or rejects uploads before anything is persisted.
// It holds no mutable state and is safe for concurrent use.
type Validator struct {
	maxBytes int64
}

// NewValidator returns a validator with the given ceiling; non-positive means DefaultMaxBytes.
func NewValidator(maxBytes int64) *Validator {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Validator{maxBytes: maxBytes}
}

// MaxBytes returns the upload ceiling.
func (v *Validator) MaxBytes() int64 { return v.maxBytes }

// Check inspects the declared media type and length.
// A generic declared type is let through here and resolved by Buffer.
func (v *Validator) Check(mediaType string, size int64) error {
	if size > v.maxBytes {
		return v.tooLarge(size)
	}
	if !IsGeneric(mediaType) && !Allowed(mediaType) {
		return fmt.Errorf("%w: %s", ErrUnsupportedMediaType, Normalize(mediaType))
	}
	return nil
}

// Buffer reads the whole upload, bounded by the ceiling, and resolves its media type.
// The declared type wins unless it is generic, in which case the content is sniffed and,
// for generic containers, the filename extension decides.
func (v *Validator) Buffer(r io.Reader, declaredType, filename string) (*Payload, error) {
	if r == nil {
		return nil, errors.New("reader is nil")
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, v.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if n > v.maxBytes {
		return nil, v.tooLarge(n)
	}

	ct := Normalize(declaredType)
	if IsGeneric(ct) {
		ct = Normalize(mimetype.Detect(buf.Bytes()).String())
		if !Allowed(ct) {
			if byExt, ok := FromExtension(filename); ok {
				ct = byExt
			}
		}
	}
	if !Allowed(ct) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, ct)
	}

	return &Payload{
		Data:           buf.Bytes(),
		ContentType:    ct,
		Classification: Classify(ct),
	}, nil
}

func (v *Validator) tooLarge(size int64) error {
	return fmt.Errorf("%w: upload of %s exceeds the %s limit",
		ErrPayloadTooLarge, humanize.IBytes(uint64(size)), humanize.IBytes(uint64(v.maxBytes)))
}
