package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Marshal encodes the layout as indented JSON with a trailing newline. The
// field order is fixed and the slices are already deterministic, so the same
// layout always encodes to the same bytes.
func Marshal(l *Layout) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return nil, fmt.Errorf("encoding layout: %w", err)
	}
	return buf.Bytes(), nil
}

// Write encodes the layout to a writer.
func Write(w io.Writer, l *Layout) error {
	data, err := Marshal(l)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing layout: %w", err)
	}
	return nil
}

// WriteFile encodes the layout to a file.
func WriteFile(path string, l *Layout) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := Write(f, l); err != nil {
		return err
	}
	return f.Close()
}

// Read decodes a layout from a reader.
func Read(r io.Reader) (*Layout, error) {
	var l Layout
	dec := json.NewDecoder(r)
	if err := dec.Decode(&l); err != nil {
		return nil, fmt.Errorf("decoding layout: %w", err)
	}
	return &l, nil
}

// ReadFile decodes a layout from a file.
func ReadFile(path string) (*Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
