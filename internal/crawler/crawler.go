package crawler

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// FileInfo describes one file discovered by the structural scan.
type FileInfo struct {
	Path     string // project-relative, slash-separated
	AbsPath  string
	Language string
	Size     int64
}

// Crawler scans a project directory for source and config files.
type Crawler struct {
	ignored []string
}

// NewCrawler creates a crawler with the default ignore list.
func NewCrawler() *Crawler {
	return &Crawler{
		ignored: []string{".git", "vendor", "node_modules", "__pycache__", "build", "dist", "testdata"},
	}
}

// ScanProject walks root and streams every relevant file through onFile.
// Hidden files and ignored directories are skipped. Files the language map
// does not recognize are still reported, tagged "unknown", so the graph
// records the complete tree.
func (c *Crawler) ScanProject(root string, onFile func(FileInfo)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			for _, ign := range c.ignored {
				if d.Name() == ign {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}

		onFile(FileInfo{
			Path:     filepath.ToSlash(rel),
			AbsPath:  path,
			Language: DetectLanguage(path),
			Size:     info.Size(),
		})
		return nil
	})
}
