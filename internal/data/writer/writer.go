package writer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/psun/rvuaudit/internal/util"
)

// WriteJSON serializes v and writes it to path atomically: the bytes go to
// a temp file in the destination directory and are renamed into place only
// on success, so a failed build never leaves a partial document behind.
//
// Marshaling uses sonic's stdlib-compatible config, which sorts map keys;
// two builds of identical input produce identical bytes. Indent affects
// readability only; indent <= 0 writes compact output.
func WriteJSON(v interface{}, path string, indent int) error {
	var (
		data []byte
		err  error
	)
	if indent > 0 {
		data, err = sonic.ConfigStd.MarshalIndent(v, "", strings.Repeat(" ", indent))
	} else {
		data, err = sonic.ConfigStd.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s to %s: %w", tmpName, path, err)
	}

	util.LogDebugf("Wrote %d bytes to %s", len(data), path)
	return nil
}
