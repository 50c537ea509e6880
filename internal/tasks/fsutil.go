package tasks

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// writeFile writes data to dst, creating parent directories as needed.
func writeFile(dst string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

// copyFile copies a single file from src to dst
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = srcFile.Close()
	}()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		_ = dstFile.Close()
	}()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return err
	}

	// Preserve file permissions
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	return os.Chmod(dst, srcInfo.Mode())
}

// rebase moves the relative slash path rel from folder from to folder to.
func rebase(rel, from, to string) (string, error) {
	prefix := from + "/"
	if !strings.HasPrefix(rel, prefix) {
		return "", fmt.Errorf("%s is not under %s", rel, from)
	}
	return path.Join(to, strings.TrimPrefix(rel, prefix)), nil
}
