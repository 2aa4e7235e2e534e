package platform

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ytget/clipforge/internal/model"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// Name matching limits
const (
	MaxNameDifference = 10
)

// Partial files left behind by the extraction library
var (
	SkippedExtensions = []string{".part", ".ytdl", ".temp"}
)

// Fallback used when a channel has no usable name
const DefaultChannelDirName = "channel"

var unsafeDirChars = regexp.MustCompile(`[\\/:*?"<>|]`)

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		if err := os.MkdirAll(dirPath, DefaultDirPermissions); err != nil {
			return goerr.Wrap(err, "failed to create directory", goerr.V("path", dirPath), goerr.T(model.ErrTagFilesystem))
		}
	}
	return nil
}

// GetHomeDownloadsDir returns the standard Downloads directory for the user
func GetHomeDownloadsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", goerr.Wrap(err, "failed to get user home directory", goerr.T(model.ErrTagFilesystem))
	}
	return filepath.Join(homeDir, "Downloads"), nil
}

// SanitizeDirName makes a channel or uploader name usable as one path element
func SanitizeDirName(name string) string {
	name = strings.TrimSpace(unsafeDirChars.ReplaceAllString(name, "_"))
	if name == "" || name == "." || name == ".." {
		return DefaultChannelDirName
	}
	return name
}

// LocateOutputFile returns the file the extraction library actually wrote
// for expected. The reported name may carry the pre-merge extension or a
// slightly different title, so when expected is missing the same directory
// is searched for the same base name with another extension, then for a
// similar base name.
func LocateOutputFile(expected string) (string, error) {
	if expected == "" {
		return "", goerr.New("file path is empty", goerr.T(model.ErrTagFilesystem))
	}
	if strings.HasPrefix(expected, "http://") || strings.HasPrefix(expected, "https://") {
		return "", goerr.New("file path appears to be a URL", goerr.V("path", expected), goerr.T(model.ErrTagFilesystem))
	}

	if _, err := os.Stat(expected); err == nil {
		return expected, nil
	}

	dir := filepath.Dir(expected)
	baseName := strings.TrimSuffix(filepath.Base(expected), filepath.Ext(expected))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read directory", goerr.V("dir", dir), goerr.T(model.ErrTagFilesystem))
	}

	var sameBase, similar []string
	for _, entry := range entries {
		if entry.IsDir() || isPartialFile(entry.Name()) {
			continue
		}
		entryBase := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		switch {
		case entryBase == baseName:
			sameBase = append(sameBase, filepath.Join(dir, entry.Name()))
		case isSimilarFileName(entryBase, baseName):
			similar = append(similar, filepath.Join(dir, entry.Name()))
		}
	}

	for _, candidates := range [][]string{sameBase, similar} {
		if len(candidates) > 0 {
			sort.Strings(candidates)
			return candidates[0], nil
		}
	}

	return "", goerr.New("file not found", goerr.V("path", expected), goerr.T(model.ErrTagFilesystem))
}

func isPartialFile(name string) bool {
	for _, ext := range SkippedExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	// intermediate streams of a merged download, e.g. title.f137.mp4
	inner := filepath.Ext(strings.TrimSuffix(name, filepath.Ext(name)))
	return len(inner) > 2 && inner[1] == 'f' && strings.Trim(inner[2:], "0123456789") == ""
}

// isSimilarFileName checks if two file names are similar enough to be considered the same file
func isSimilarFileName(name1, name2 string) bool {
	clean1 := strings.TrimSpace(name1)
	clean2 := strings.TrimSpace(name2)

	if clean1 == clean2 {
		return true
	}

	for _, variation := range []string{"-" + clean1, clean1 + "-", "_" + clean1, clean1 + "_"} {
		if clean2 == variation {
			return true
		}
	}

	// truncated titles
	if strings.Contains(clean1, clean2) || strings.Contains(clean2, clean1) {
		diff := len(clean1) - len(clean2)
		if diff < 0 {
			diff = -diff
		}
		return diff <= MaxNameDifference
	}

	return false
}
