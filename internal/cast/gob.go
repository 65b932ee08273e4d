package cast

import (
	"encoding/gob"
	"fmt"
	"io"
)

func init() {
	gob.Register(&Block{})
	gob.Register(&If{})
	gob.Register(&While{})
	gob.Register(&DoWhile{})
	gob.Register(&For{})
	gob.Register(&Return{})
	gob.Register(&Instr{})
	gob.Register(&Raw{})
	gob.Register(&RawDecl{})
	gob.Register(&FuncDef{})
}

// EncodeFiles gob-encodes a set of parsed files keyed by file name.
func EncodeFiles(w io.Writer, files map[string]*File) error {
	if err := gob.NewEncoder(w).Encode(files); err != nil {
		return fmt.Errorf("failed to encode ast: %w", err)
	}

	return nil
}

// DecodeFiles reads a set of parsed files written by EncodeFiles.
func DecodeFiles(r io.Reader) (map[string]*File, error) {
	var files map[string]*File
	if err := gob.NewDecoder(r).Decode(&files); err != nil {
		return nil, fmt.Errorf("failed to decode ast: %w", err)
	}

	return files, nil
}
