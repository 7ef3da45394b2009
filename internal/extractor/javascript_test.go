package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extractJS(t *testing.T, path, source string) *FileSkeleton {
	t.Helper()
	ext, ok := ForLanguage("javascript")
	require.True(t, ok)
	sk, err := ext.Extract(context.Background(), path, []byte(source))
	require.NoError(t, err)
	return sk
}

func TestJavaScript_FunctionsAndClasses(t *testing.T) {
	source := `import { helper } from "./utils";

export async function fetchUser(id) {
  return helper(id);
}

const format = (value, width = 8) => String(value);

export class UserStore extends BaseStore {
  cache = {};

  static create() {
    return new UserStore();
  }

  async load(id) {
    return fetchUser(id);
  }
}
`
	sk := extractJS(t, "src/store.js", source)

	require.Len(t, sk.Functions, 2)
	assert.Equal(t, "fetchUser", sk.Functions[0].Name)
	assert.True(t, sk.Functions[0].IsAsync)
	assert.Equal(t, "format", sk.Functions[1].Name)
	require.Len(t, sk.Functions[1].Arguments, 2)
	assert.Equal(t, "value", sk.Functions[1].Arguments[0].Name)
	assert.Equal(t, "width", sk.Functions[1].Arguments[1].Name)

	require.Len(t, sk.Classes, 1)
	cls := sk.Classes[0]
	assert.Equal(t, "UserStore", cls.Name)
	assert.Equal(t, []string{"BaseStore"}, cls.Superclasses)
	require.Len(t, cls.Methods, 2)
	assert.True(t, cls.Methods[0].IsStatic)
	assert.Equal(t, "create", cls.Methods[0].Name)
	assert.True(t, cls.Methods[1].IsAsync)

	require.Len(t, sk.Imports, 1)
	assert.Equal(t, "./utils", sk.Imports[0].Module)
	assert.Equal(t, "src/utils.js", sk.Imports[0].CandidatePath)

	require.NotEmpty(t, sk.References)
	assert.Equal(t, "helper", sk.References[0].Name)
}

func TestJavaScript_BareImportHasNoCandidate(t *testing.T) {
	sk := extractJS(t, "index.js", `import React from "react";`)

	require.Len(t, sk.Imports, 1)
	assert.Equal(t, "react", sk.Imports[0].Module)
	assert.Empty(t, sk.Imports[0].CandidatePath)
}

func TestJavaScript_Require(t *testing.T) {
	sk := extractJS(t, "lib/a.js", `const helpers = require("./helpers");
helpers.run();
`)

	require.Len(t, sk.Imports, 1)
	assert.Equal(t, "./helpers", sk.Imports[0].Module)
	assert.Equal(t, "lib/helpers.js", sk.Imports[0].CandidatePath)
}

func TestForLanguage_Unsupported(t *testing.T) {
	_, ok := ForLanguage("cobol")
	assert.False(t, ok)

	assert.True(t, Supported("python"))
	assert.True(t, Supported("typescript"))
	assert.False(t, Supported("unknown"))
}
