package crawler

import (
	"mime"
	"path/filepath"
	"strings"
)

// extensionMap covers the legacy source, markup and config formats the
// migration pipeline expects to meet. Anything else falls back to the MIME
// type's major class, then "unknown".
var extensionMap = map[string]string{
	".py":     "python",
	".js":     "javascript",
	".ts":     "typescript",
	".jsx":    "react",
	".tsx":    "react",
	".html":   "html",
	".css":    "css",
	".scss":   "scss",
	".sass":   "sass",
	".java":   "java",
	".kt":     "kotlin",
	".kts":    "kotlin",
	".c":      "c",
	".cpp":    "cpp",
	".h":      "c_header",
	".hpp":    "cpp_header",
	".cs":     "csharp",
	".go":     "go",
	".rs":     "rust",
	".rb":     "ruby",
	".php":    "php",
	".swift":  "swift",
	".m":      "objective_c",
	".mm":     "objective_cpp",
	".sql":    "sql",
	".json":   "json",
	".xml":    "xml",
	".yaml":   "yaml",
	".yml":    "yaml",
	".md":     "markdown",
	".cob":    "cobol",
	".cbl":    "cobol",
	".dpr":    "delphi",
	".pas":    "pascal",
	".f":      "fortran",
	".f90":    "fortran",
	".sh":     "shell",
	".bat":    "batch",
	".ps1":    "powershell",
	".config": "config",
	".toml":   "toml",
	".ini":    "ini",
	".csv":    "csv",
	".txt":    "text",
}

// DetectLanguage maps a file path to its language tag.
func DetectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := extensionMap[ext]; ok {
		return lang
	}
	if mimeType := mime.TypeByExtension(ext); mimeType != "" {
		return strings.SplitN(mimeType, "/", 2)[0]
	}
	return "unknown"
}
