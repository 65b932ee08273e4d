package adapter

import (
	"bufio"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"mendc.dev/pkg/mendc/internal/cast"
	m "mendc.dev/pkg/mendc/internal/model"
)

// IndexInfo is the decoded contents of the stem's .ht file: the statement
// count paired with the sid → file mapping.
type IndexInfo struct {
	Count int
	Files map[int]string
}

// StemAdapter loads and stores the files derived from an input stem.
type StemAdapter interface {
	// LoadBank decodes the serialised original AST.
	LoadBank(stem m.Stem) (map[string]*cast.File, error)

	// SaveBank writes the serialised AST for a stem.
	SaveBank(stem m.Stem, files map[string]*cast.File) error

	// LoadIndexInfo decodes the (count, statement index) pair.
	LoadIndexInfo(stem m.Stem) (IndexInfo, error)

	// SaveIndexInfo writes the (count, statement index) pair.
	SaveIndexInfo(stem m.Stem, info IndexInfo) error

	// LoadWeightedPath reads the execution path, assigning weight 1.0 per
	// step, or goodPathFactor for sids also present in the optional
	// goodpath file.
	LoadWeightedPath(stem m.Stem, goodPathFactor float64) (m.WeightedPath, error)

	// SavePath writes a path file, one sid per line.
	SavePath(path string, sids []m.Sid) error
}

// LocalStemAdapter is the os-backed stem adapter.
type LocalStemAdapter struct{}

// NewLocalStemAdapter constructs a LocalStemAdapter.
func NewLocalStemAdapter() *LocalStemAdapter {
	return &LocalStemAdapter{}
}

// LoadBank decodes the gob AST file.
func (a *LocalStemAdapter) LoadBank(stem m.Stem) (map[string]*cast.File, error) {
	f, err := os.Open(stem.AST())
	if err != nil {
		return nil, fmt.Errorf("failed to open ast file: %w", err)
	}

	defer func() { _ = f.Close() }()

	return cast.DecodeFiles(f)
}

// SaveBank encodes the bank to the stem's .ast file.
func (a *LocalStemAdapter) SaveBank(stem m.Stem, files map[string]*cast.File) error {
	f, err := os.Create(stem.AST())
	if err != nil {
		return fmt.Errorf("failed to create ast file: %w", err)
	}

	defer func() { _ = f.Close() }()

	return cast.EncodeFiles(f, files)
}

// LoadIndexInfo decodes the gob .ht file.
func (a *LocalStemAdapter) LoadIndexInfo(stem m.Stem) (IndexInfo, error) {
	f, err := os.Open(stem.HT())
	if err != nil {
		return IndexInfo{}, fmt.Errorf("failed to open ht file: %w", err)
	}

	defer func() { _ = f.Close() }()

	var info IndexInfo
	if err := gob.NewDecoder(f).Decode(&info); err != nil {
		return IndexInfo{}, fmt.Errorf("failed to decode ht file: %w", err)
	}

	return info, nil
}

// SaveIndexInfo encodes the .ht file.
func (a *LocalStemAdapter) SaveIndexInfo(stem m.Stem, info IndexInfo) error {
	f, err := os.Create(stem.HT())
	if err != nil {
		return fmt.Errorf("failed to create ht file: %w", err)
	}

	defer func() { _ = f.Close() }()

	if err := gob.NewEncoder(f).Encode(info); err != nil {
		return fmt.Errorf("failed to encode ht file: %w", err)
	}

	return nil
}

// LoadWeightedPath builds the weighted path from the .path file and the
// optional .goodpath file.
func (a *LocalStemAdapter) LoadWeightedPath(stem m.Stem, goodPathFactor float64) (m.WeightedPath, error) {
	sids, err := readSidLines(stem.PathFile())
	if err != nil {
		return nil, err
	}

	if len(sids) == 0 {
		return nil, fmt.Errorf("path file %s is empty", stem.PathFile())
	}

	path := make(m.WeightedPath, 0, len(sids))
	for _, sid := range sids {
		path = append(path, m.PathStep{Weight: 1.0, Sid: sid})
	}

	goodSids, err := readSidLines(stem.GoodPathFile())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return path, nil
		}

		return nil, err
	}

	goodSet := make(map[m.Sid]struct{}, len(goodSids))
	for _, sid := range goodSids {
		goodSet[sid] = struct{}{}
	}

	return path.Reweigh(goodSet, goodPathFactor), nil
}

// SavePath writes sids one per line.
func (a *LocalStemAdapter) SavePath(path string, sids []m.Sid) error {
	var sb strings.Builder
	for _, sid := range sids {
		sb.WriteString(strconv.Itoa(int(sid)))
		sb.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0o600); err != nil {
		return fmt.Errorf("failed to write path file %s: %w", path, err)
	}

	return nil
}

func readSidLines(path string) ([]m.Sid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open path file: %w", err)
	}

	defer func() { _ = f.Close() }()

	var sids []m.Sid

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		n, err := strconv.Atoi(line)
		if err != nil {
			return nil, fmt.Errorf("bad sid %q in %s: %w", line, path, err)
		}

		sids = append(sids, m.Sid(n))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return sids, nil
}
