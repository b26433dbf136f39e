package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/TWALLACK/foreign-flyers/internal/config"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindWorkbookFiles finds all Excel workbooks in the specified directory.
// Excel owner lock files ("~$...") are skipped.
func (d *Discovery) FindWorkbookFiles(dir string) ([]FileInfo, error) {
	// If dir is already absolute, use it directly
	fullPath := dir
	if !filepath.IsAbs(dir) {
		fullPath = filepath.Join(d.basePath, dir)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if skipEntry(name) {
			continue
		}
		if strings.HasSuffix(strings.ToLower(name), ".xlsx") ||
			strings.HasSuffix(strings.ToLower(name), ".xls") {
			info, err := entry.Info()
			if err != nil {
				continue
			}

			files = append(files, FileInfo{
				Path:    filepath.Join(fullPath, name),
				Name:    name,
				Size:    info.Size(),
				ModTime: info.ModTime(),
				IsDir:   false,
			})
		}
	}

	sortInputFiles(files)

	return files, nil
}

// FindCSVFiles finds all CSV files in the specified directory
func (d *Discovery) FindCSVFiles(dir string) ([]FileInfo, error) {
	// If dir is already absolute, use it directly
	fullPath := dir
	if !filepath.IsAbs(dir) {
		fullPath = filepath.Join(d.basePath, dir)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if skipEntry(name) {
			continue
		}
		if strings.HasSuffix(strings.ToLower(name), ".csv") {
			info, err := entry.Info()
			if err != nil {
				continue
			}

			files = append(files, FileInfo{
				Path:    filepath.Join(fullPath, name),
				Name:    name,
				Size:    info.Size(),
				ModTime: info.ModTime(),
				IsDir:   false,
			})
		}
	}

	sortInputFiles(files)

	return files, nil
}

// FindInputFiles returns all parseable input files (workbooks and CSV
// exports) in the directory, in a deterministic order.
func (d *Discovery) FindInputFiles(dir string) ([]FileInfo, error) {
	workbooks, err := d.FindWorkbookFiles(dir)
	if err != nil {
		return nil, err
	}

	csvs, err := d.FindCSVFiles(dir)
	if err != nil {
		return nil, err
	}

	files := append(workbooks, csvs...)
	sortInputFiles(files)

	return files, nil
}

// FindFilesByPattern finds files matching a glob pattern, in the same
// deterministic order as the extension-based finders. Operators use it
// through the input.file_pattern setting to narrow a noisy drop
// directory.
func (d *Discovery) FindFilesByPattern(dir string, pattern string) ([]FileInfo, error) {
	// If dir is already absolute, use it directly
	fullPath := dir
	if !filepath.IsAbs(dir) {
		fullPath = filepath.Join(d.basePath, dir)
	}
	searchPattern := filepath.Join(fullPath, pattern)

	matches, err := filepath.Glob(searchPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}

	var files []FileInfo
	for _, match := range matches {
		if skipEntry(filepath.Base(match)) {
			continue
		}

		info, err := os.Stat(match)
		if err != nil {
			continue
		}

		if !info.IsDir() {
			files = append(files, FileInfo{
				Path:    match,
				Name:    filepath.Base(match),
				Size:    info.Size(),
				ModTime: info.ModTime(),
				IsDir:   false,
			})
		}
	}

	sortInputFiles(files)

	return files, nil
}

// skipEntry reports whether a directory entry should be ignored during
// discovery. Excel lock files and hidden files are not real inputs.
func skipEntry(name string) bool {
	return strings.HasPrefix(name, config.TempFilePrefix) || strings.HasPrefix(name, ".")
}

// sortInputFiles orders files by the reporting period embedded in the
// filename when present ("2024 01 air traffic.xlsx"), then by name.
// Agencies re-export old months, so modification time alone is not a
// stable ordering.
func sortInputFiles(files []FileInfo) {
	sort.Slice(files, func(i, j int) bool {
		pi, iOK := periodHint(files[i].Name)
		pj, jOK := periodHint(files[j].Name)

		switch {
		case iOK && jOK && pi != pj:
			return pi < pj
		case iOK != jOK:
			return iOK
		default:
			return files[i].Name < files[j].Name
		}
	})
}

// periodHint extracts a "YYYY MM" or "YYYY-MM" prefix from a filename.
// Returns year*100+month and whether a period was found.
func periodHint(name string) (int, bool) {
	if len(name) < 7 {
		return 0, false
	}

	sep := name[4]
	if sep != ' ' && sep != '-' && sep != '_' {
		return 0, false
	}

	year, err := strconv.Atoi(name[:4])
	if err != nil {
		return 0, false
	}
	month, err := strconv.Atoi(name[5:7])
	if err != nil {
		return 0, false
	}

	if year < 1900 || year > 2999 || month < 1 || month > 12 {
		return 0, false
	}

	return year*100 + month, true
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}

	return latest, true
}
