// Package pkg provides reusable utilities for mendc.
package pkg

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Spool is a gob-backed append-only journal of items of type T, safe for
// concurrent appends. mendc uses it to persist one record per fitness
// evaluation so finished runs can be inspected.
type Spool[T any] interface {
	Len() uint64
	Path() string
	Append(item T) error
	Range(fn func(index uint64, item T) error) error
	Close() error
}

type spoolImpl[T any] struct {
	path    string
	file    *os.File
	encoder *gob.Encoder
	mu      sync.Mutex
	length  uint64
}

// NewSpool creates (or truncates) a spool file at path.
func NewSpool[T any](path string) (Spool[T], error) {
	file, err := os.Create(path)
	if err != nil {
		slog.Error("failed to create spool", "path", path, "error", err)
		return nil, fmt.Errorf("failed to create spool: %w", err)
	}

	return &spoolImpl[T]{
		path:    path,
		file:    file,
		encoder: gob.NewEncoder(file),
	}, nil
}

// Append encodes one item at the end of the spool.
func (s *spoolImpl[T]) Append(item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.encoder.Encode(item); err != nil {
		slog.Error("failed to encode spool item", "path", s.path, "index", s.length, "error", err)
		return fmt.Errorf("failed to encode item: %w", err)
	}

	s.length++

	return nil
}

// Len returns the number of items appended through this handle.
func (s *spoolImpl[T]) Len() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.length
}

// Path returns the backing file path.
func (s *spoolImpl[T]) Path() string {
	return s.path
}

// Range decodes every item currently in the file, in append order.
func (s *spoolImpl[T]) Range(fn func(index uint64, item T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return rangeSpoolFile[T](s.path, fn)
}

// Close flushes and closes the backing file.
func (s *spoolImpl[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}

	err := s.file.Close()
	s.file = nil

	if err != nil {
		slog.Error("failed to close spool", "path", s.path, "error", err)
		return err
	}

	return nil
}

// RangeSpool reads an existing spool file without opening it for appends.
// Used to inspect a finished run.
func RangeSpool[T any](path string, fn func(index uint64, item T) error) error {
	return rangeSpoolFile[T](path, fn)
}

func rangeSpoolFile[T any](path string, fn func(index uint64, item T) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open spool: %w", err)
	}

	defer func() {
		if err := file.Close(); err != nil {
			slog.Error("failed to close spool", "path", path, "error", err)
		}
	}()

	decoder := gob.NewDecoder(file)

	for index := uint64(0); ; index++ {
		var item T

		if err := decoder.Decode(&item); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("failed to decode item at index %d: %w", index, err)
		}

		if err := fn(index, item); err != nil {
			return err
		}
	}
}
