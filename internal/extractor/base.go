package extractor

import sitter "github.com/smacker/go-tree-sitter"

// LanguageExtractor turns a parsed syntax tree into a FileSkeleton. Each
// supported legacy language implements it.
type LanguageExtractor interface {
	GetLanguage() *sitter.Language
	// ExtractSkeleton walks the tree rooted at root and fills sk. filePath
	// is the project-relative path of the file being parsed, used to resolve
	// relative imports.
	ExtractSkeleton(root *sitter.Node, source []byte, filePath string, sk *FileSkeleton) error
}
