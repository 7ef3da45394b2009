package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeport/internal/model"
)

func extractPython(t *testing.T, path, source string) *FileSkeleton {
	t.Helper()
	ext, ok := ForLanguage("python")
	require.True(t, ok)
	sk, err := ext.Extract(context.Background(), path, []byte(source))
	require.NoError(t, err)
	return sk
}

func TestPython_FunctionsAndClass(t *testing.T) {
	source := `import utils

@staticmethod
def main(args: list):
    utils.helper()

class DataProcessor(metaclass=SingletonMeta):
    """Processes incoming records."""

    def process(self) -> dict:
        return {}
`
	sk := extractPython(t, "main.py", source)

	require.Len(t, sk.Functions, 1)
	fn := sk.Functions[0]
	assert.Equal(t, "main", fn.Name)
	assert.True(t, fn.IsStatic)
	assert.False(t, fn.IsAsync)
	assert.Equal(t, "Any", fn.ReturnType)
	require.Len(t, fn.Arguments, 1)
	assert.Equal(t, model.Argument{Name: "args", Type: "list"}, fn.Arguments[0])

	require.Len(t, sk.Classes, 1)
	cls := sk.Classes[0]
	assert.Equal(t, "DataProcessor", cls.Name)
	assert.Equal(t, "singleton", cls.Kind)
	assert.Equal(t, "Processes incoming records.", cls.Doc)
	require.Len(t, cls.Methods, 1)
	assert.Equal(t, "process", cls.Methods[0].Name)
	assert.Equal(t, "dict", cls.Methods[0].ReturnType)

	require.Len(t, sk.Imports, 1)
	assert.Equal(t, "utils", sk.Imports[0].Module)
	assert.Equal(t, "utils.py", sk.Imports[0].CandidatePath)

	require.Len(t, sk.References, 1)
	assert.Equal(t, "utils", sk.References[0].Name)
	assert.Equal(t, 5, sk.References[0].Line)
}

func TestPython_AsyncAndDefaults(t *testing.T) {
	source := `async def fetch(url: str, timeout: int = 30) -> bytes:
    """Fetch a URL."""
    return b""
`
	sk := extractPython(t, "client.py", source)

	require.Len(t, sk.Functions, 1)
	fn := sk.Functions[0]
	assert.Equal(t, "fetch", fn.Name)
	assert.True(t, fn.IsAsync)
	assert.Equal(t, "bytes", fn.ReturnType)
	assert.Equal(t, "Fetch a URL.", fn.Doc)
	require.Len(t, fn.Arguments, 2)
	assert.Equal(t, model.Argument{Name: "url", Type: "str"}, fn.Arguments[0])
	assert.Equal(t, model.Argument{Name: "timeout", Type: "int"}, fn.Arguments[1])
}

func TestPython_AbstractAndFinal(t *testing.T) {
	source := `from abc import ABC, abstractmethod

@final
class Base(ABC):
    @abstractmethod
    def run(self):
        ...
`
	sk := extractPython(t, "base.py", source)

	require.Len(t, sk.Classes, 1)
	cls := sk.Classes[0]
	assert.Equal(t, "abstract", cls.Kind)
	assert.True(t, cls.IsFinal)
	assert.Contains(t, cls.Superclasses, "ABC")
	require.Len(t, cls.Methods, 1)
	assert.Contains(t, cls.Methods[0].Decorators, "@abstractmethod")
}

func TestPython_EnumBecomesEnumNotClass(t *testing.T) {
	source := `from enum import Enum

class Color(Enum):
    RED = 1
    GREEN = 2
    BLUE = 3
`
	sk := extractPython(t, "color.py", source)

	assert.Empty(t, sk.Classes)
	require.Len(t, sk.Enums, 1)
	assert.Equal(t, "Color", sk.Enums[0].Name)
	assert.Equal(t, []string{"RED", "GREEN", "BLUE"}, sk.Enums[0].Values)
}

func TestPython_ClassAttributes(t *testing.T) {
	source := `class Settings:
    debug: bool = False
    _secret = "x"
`
	sk := extractPython(t, "settings.py", source)

	require.Len(t, sk.Classes, 1)
	attrs := sk.Classes[0].Attributes
	require.Len(t, attrs, 2)
	assert.Equal(t, model.Attribute{Name: "debug", Type: "bool", Visibility: "public"}, attrs[0])
	assert.Equal(t, model.Attribute{Name: "_secret", Type: "Any", Visibility: "private"}, attrs[1])
	assert.Equal(t, "plain", orPlain(sk.Classes[0].Kind))
}

func orPlain(kind string) string {
	if kind == "" {
		return "plain"
	}
	return kind
}

func TestPython_Imports(t *testing.T) {
	source := `import os
import numpy as np
from app.models import User
from . import helpers
from ..common import shared
`
	sk := extractPython(t, "app/views/page.py", source)

	modules := map[string]string{}
	for _, imp := range sk.Imports {
		modules[imp.Module] = imp.CandidatePath
	}
	assert.Equal(t, "os.py", modules["os"])
	assert.Equal(t, "numpy.py", modules["numpy"])
	assert.Equal(t, "app/models.py", modules["app.models"])
	assert.Equal(t, "app/views/helpers.py", modules["helpers"])
	assert.Equal(t, "app/common.py", modules["common"])
}

func TestPython_MalformedFile(t *testing.T) {
	ext, ok := ForLanguage("python")
	require.True(t, ok)

	_, err := ext.Extract(context.Background(), "broken.py", []byte("def (((\n"))
	require.Error(t, err)
	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
	assert.Equal(t, "broken.py", perr.Path)
}

func TestPython_DecoratorArgumentsStripped(t *testing.T) {
	source := `@app.route("/health")
def health():
    return "ok"
`
	sk := extractPython(t, "routes.py", source)

	require.Len(t, sk.Functions, 1)
	assert.Equal(t, []string{"@app.route"}, sk.Functions[0].Decorators)
}
