package processing

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
)

// FormatError is returned when the input is not a valid gzip stream:
// bad magic bytes, truncation, or a corrupt checksum.
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid gzip data: %v", e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Decompress interprets data as a gzip stream and returns the fully
// decoded text. It never partially succeeds: any structural violation
// anywhere in the stream yields a FormatError and an empty result.
func Decompress(data []byte) (string, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", &FormatError{Err: err}
	}

	text, err := io.ReadAll(zr)
	if err != nil {
		_ = zr.Close()
		return "", &FormatError{Err: err}
	}

	if err := zr.Close(); err != nil {
		return "", &FormatError{Err: err}
	}

	return string(text), nil
}
