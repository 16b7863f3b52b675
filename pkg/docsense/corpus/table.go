package corpus

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cognicore/docsense/pkg/docsense/internalerr"
)

// Column names of the persisted table.
const (
	TextColumn  = "Text"
	LabelColumn = "Label"
)

// Write serializes c as a CSV table with a Text,Label header and returns the
// number of records written. Fields containing delimiters, quotes or line
// breaks are quoted so Read restores them exactly.
func Write(w io.Writer, c Corpus) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{TextColumn, LabelColumn}); err != nil {
		return 0, fmt.Errorf("%w: header: %v", internalerr.ErrWriteFailure, err)
	}
	for i, r := range c {
		if err := cw.Write([]string{r.Text, r.Label}); err != nil {
			return 0, fmt.Errorf("%w: record %d: %v", internalerr.ErrWriteFailure, i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("%w: %v", internalerr.ErrWriteFailure, err)
	}
	return len(c), nil
}

// WriteFile creates or overwrites path with the table form of c. Rows go to a
// temporary file in the same directory which is renamed over path only after
// every record is flushed, so a failed write leaves no partial table behind.
func WriteFile(path string, c Corpus) (int, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("%w: create %s: %v", internalerr.ErrWriteFailure, path, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	bw := bufio.NewWriter(tmp)
	n, err := Write(bw, c)
	if err != nil {
		return 0, err
	}
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("%w: flush %s: %v", internalerr.ErrWriteFailure, path, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("%w: close %s: %v", internalerr.ErrWriteFailure, path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return 0, fmt.Errorf("%w: chmod %s: %v", internalerr.ErrWriteFailure, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return 0, fmt.Errorf("%w: rename into %s: %v", internalerr.ErrWriteFailure, path, err)
	}
	committed = true
	return n, nil
}

// Read loads a table written by Write. The header must name a Text and a
// Label column (case-insensitive, any position); extra columns are ignored.
// A row with the wrong number of fields is an internalerr.ErrInvalidRecord.
// Quoted fields come back exactly as written, carriage returns included.
func Read(r io.Reader) (Corpus, error) {
	cr := newRecordScanner(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header", internalerr.ErrInvalidRecord)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", internalerr.ErrInvalidRecord, err)
	}

	textIdx, labelIdx := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case strings.ToLower(TextColumn):
			textIdx = i
		case strings.ToLower(LabelColumn):
			labelIdx = i
		}
	}
	if textIdx < 0 || labelIdx < 0 {
		return nil, fmt.Errorf("%w: header %q lacks %s/%s columns", internalerr.ErrInvalidRecord, header, TextColumn, LabelColumn)
	}

	var c Corpus
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidRecord, err)
		}
		c = append(c, Record{Text: row[textIdx], Label: row[labelIdx]})
	}
	return c, nil
}

// ReadFile loads the table at path.
func ReadFile(path string) (Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus %s: %w", path, err)
	}
	defer f.Close()

	c, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}
	return c, nil
}
