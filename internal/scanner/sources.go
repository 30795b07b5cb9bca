package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cheerioskun/testtool/internal/utils"
	"github.com/spf13/afero"
)

// SourceFile is a C-like source discovered under a directory
type SourceFile struct {
	Path string // Relative path from the scan root
	Size int64  // File size in bytes
}

// SourceScanner handles discovery of C-like source files
type SourceScanner struct {
	fs       afero.Fs
	maxDepth int
	srcExts  map[string]bool
}

// NewSourceScanner creates a new SourceScanner with the given filesystem
func NewSourceScanner(fs afero.Fs) *SourceScanner {
	return &SourceScanner{
		fs:       fs,
		maxDepth: 10, // Default max depth
		srcExts: map[string]bool{
			".c":   true,
			".h":   true,
			".cc":  true,
			".cpp": true,
		},
	}
}

// SetMaxDepth sets the maximum scanning depth
func (ss *SourceScanner) SetMaxDepth(depth int) {
	ss.maxDepth = depth
}

// AddExtension adds a file extension to be considered a source file
func (ss *SourceScanner) AddExtension(ext string) {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	ss.srcExts[strings.ToLower(ext)] = true
}

// Extensions returns the sorted list of recognized source extensions
func (ss *SourceScanner) Extensions() []string {
	exts := make([]string, 0, len(ss.srcExts))
	for ext := range ss.srcExts {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Scan walks a directory and returns every source file found, sorted by path
func (ss *SourceScanner) Scan(path string) ([]SourceFile, error) {
	info, err := ss.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access path %s: %w", path, err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path %s is not a directory", path)
	}

	var files []SourceFile
	if err := ss.scanDirectory(path, "", 0, &files); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", path, err)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files, nil
}

// scanDirectory recursively collects source files below basePath
func (ss *SourceScanner) scanDirectory(basePath, relativePath string, depth int, files *[]SourceFile) error {
	if depth > ss.maxDepth {
		return nil
	}

	currentPath := filepath.Join(basePath, relativePath)

	entries, err := afero.ReadDir(ss.fs, currentPath)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", currentPath, err)
	}

	for _, entry := range entries {
		entryRelPath := filepath.Join(relativePath, entry.Name())

		if entry.IsDir() {
			if err := ss.scanDirectory(basePath, entryRelPath, depth+1, files); err != nil {
				// Log warning but continue scanning
				utils.Warning("failed to scan directory %s: %v", entryRelPath, err)
			}
			continue
		}

		if ss.isSourceFile(entry) {
			*files = append(*files, SourceFile{Path: entryRelPath, Size: entry.Size()})
		}
	}

	return nil
}

// isSourceFile determines if a regular file has a recognized extension
func (ss *SourceScanner) isSourceFile(info os.FileInfo) bool {
	if !info.Mode().IsRegular() {
		return false
	}
	return ss.srcExts[strings.ToLower(filepath.Ext(info.Name()))]
}
