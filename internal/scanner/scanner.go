// Package scanner provides file tree walking functionality with ignore pattern support.
// It respects .gbqignore files with gitignore-style patterns and collects the Go
// source files the analyzer can work on.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileInfo represents information about a discovered Go source file.
type FileInfo struct {
	Path     string // Relative path from root
	FullPath string // Absolute path
	Size     int64  // File size in bytes
}

// Options configures the scanner behavior.
type Options struct {
	SkipHidden      bool     // Skip hidden files and directories (starting with .)
	SkipTests       bool     // Skip _test.go files
	FollowSymlinks  bool     // Follow symlinks (within root only)
	MaxFileSize     int64    // Skip files larger than this many bytes (0 = no limit)
	DefaultExcludes []string // Default directories to exclude
	IgnoreFileName  string   // Name of the ignore file (default: .gbqignore)
}

// DefaultOptions returns scanner options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		SkipHidden:     true,
		SkipTests:      false,
		FollowSymlinks: false,
		IgnoreFileName: ".gbqignore",
		DefaultExcludes: []string{
			".git",
			".hg",
			".svn",
			".idea",
			".vscode",
			"vendor",
			"testdata",
			"node_modules",
			"dist",
			"bin",
		},
	}
}

// Scanner provides file tree scanning capabilities.
type Scanner struct {
	opts Options
	root string
}

// New creates a new Scanner with the given options.
func New(opts Options) *Scanner {
	return &Scanner{opts: opts}
}

// Scan recursively scans the directory at root and returns the Go source files
// found. It respects .gbqignore patterns and default exclusions.
func (s *Scanner) Scan(root string) ([]FileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path: %w", err)
	}
	s.root = absRoot

	// Load ignore rules from root
	ignore, err := s.loadIgnoreFile(absRoot)
	if err != nil {
		return nil, fmt.Errorf("loading ignore patterns: %w", err)
	}
	if ignore == nil {
		ignore = &IgnoreList{}
	}

	var files []FileInfo

	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Log error but continue walking
			return nil
		}

		// Get relative path for pattern matching
		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}

		// Skip root itself
		if relPath == "." {
			return nil
		}

		// Normalize path for pattern matching (use forward slashes)
		relPathSlash := filepath.ToSlash(relPath)

		// Check if should skip hidden files/directories
		if s.opts.SkipHidden && s.isHidden(info.Name()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Check default excludes for directories
		if info.IsDir() {
			if s.isDefaultExcluded(info.Name()) {
				return filepath.SkipDir
			}
			// Load nested .gbqignore if present
			nested, err := s.loadIgnoreFile(path)
			if err == nil && nested != nil {
				ignore.Extend(nested)
			}
			return nil
		}

		if !IsGoSource(info.Name()) {
			return nil
		}
		if s.opts.SkipTests && IsTestFile(info.Name()) {
			return nil
		}

		// Check ignore rules
		if ignore.Ignored(relPathSlash) {
			return nil
		}

		// Handle symlinks
		if info.Mode()&os.ModeSymlink != 0 {
			if !s.opts.FollowSymlinks {
				return nil
			}
			// Resolve symlink and check if it's within root
			realPath, err := filepath.EvalSymlinks(path)
			if err != nil {
				return nil // Skip broken symlinks
			}
			realAbs, err := filepath.Abs(realPath)
			if err != nil {
				return nil
			}
			// Ensure symlink target is within root
			if !strings.HasPrefix(realAbs, absRoot+string(filepath.Separator)) && realAbs != absRoot {
				return nil
			}
			// Get info of the target
			targetInfo, err := os.Stat(realPath)
			if err != nil {
				return nil
			}
			if targetInfo.IsDir() {
				return nil // Don't follow directory symlinks
			}
			info = targetInfo
		}

		if s.opts.MaxFileSize > 0 && info.Size() > s.opts.MaxFileSize {
			return nil
		}

		files = append(files, FileInfo{
			Path:     relPathSlash,
			FullPath: path,
			Size:     info.Size(),
		})

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return files, nil
}

// isHidden checks if a file or directory name indicates it's hidden.
func (s *Scanner) isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// isDefaultExcluded checks if the name matches default exclusion patterns.
func (s *Scanner) isDefaultExcluded(name string) bool {
	for _, exclude := range s.opts.DefaultExcludes {
		if strings.EqualFold(name, exclude) {
			return true
		}
	}
	return false
}

// loadIgnoreFile reads the .gbqignore file in dir, if one exists.
func (s *Scanner) loadIgnoreFile(dir string) (*IgnoreList, error) {
	file, err := os.Open(filepath.Join(dir, s.opts.IgnoreFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()
	return ParseIgnoreFile(file)
}

// Scan is a convenience function that scans a directory with default options.
func Scan(root string) ([]FileInfo, error) {
	scanner := New(DefaultOptions())
	return scanner.Scan(root)
}

// ScanWithOptions scans a directory with custom options.
func ScanWithOptions(root string, opts Options) ([]FileInfo, error) {
	scanner := New(opts)
	return scanner.Scan(root)
}

// IsGoSource reports whether name looks like a Go source file.
func IsGoSource(name string) bool {
	return strings.HasSuffix(name, ".go")
}

// IsTestFile reports whether name is a Go test file.
func IsTestFile(name string) bool {
	return strings.HasSuffix(name, "_test.go")
}
