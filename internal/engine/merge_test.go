package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeport/internal/extractor"
	"codeport/internal/model"
)

func TestMergeSkeletons_ParserWins(t *testing.T) {
	parsed := &extractor.FileSkeleton{
		Path: "svc.py",
		Functions: []extractor.FunctionDecl{
			{Name: "run", ReturnType: "dict", Arguments: []model.Argument{{Name: "job", Type: "Job"}}},
		},
	}
	inferred := &extractor.FileSkeleton{
		Path: "svc.py",
		Functions: []extractor.FunctionDecl{
			{Name: "run", ReturnType: "str", Arguments: []model.Argument{{Name: "job", Type: "Task"}}},
		},
	}

	m := mergeSkeletons(parsed, inferred)

	require.Len(t, m.Functions, 1)
	assert.Equal(t, "dict", m.Functions[0].ReturnType, "syntactic return type must not be overridden")
	assert.Equal(t, "Job", m.Functions[0].Arguments[0].Type)
	assert.Equal(t, model.SourceParser, m.funcProv["run"]["return_type"])
}

func TestMergeSkeletons_InferenceFillsGaps(t *testing.T) {
	parsed := &extractor.FileSkeleton{
		Path: "svc.py",
		Functions: []extractor.FunctionDecl{
			{Name: "run", ReturnType: "Any", Arguments: []model.Argument{{Name: "job", Type: "Any"}}},
		},
		Classes: []extractor.ClassDecl{
			{Name: "Svc", Kind: ""},
		},
	}
	inferred := &extractor.FileSkeleton{
		Path: "svc.py",
		Functions: []extractor.FunctionDecl{
			{Name: "run", ReturnType: "dict", Arguments: []model.Argument{{Name: "job", Type: "Job"}}, Doc: "Runs one job."},
		},
		Classes: []extractor.ClassDecl{
			{Name: "Svc", Kind: "singleton"},
		},
	}

	m := mergeSkeletons(parsed, inferred)

	fn := m.Functions[0]
	assert.Equal(t, "dict", fn.ReturnType)
	assert.Equal(t, "Job", fn.Arguments[0].Type)
	assert.Equal(t, "Runs one job.", fn.Doc)
	assert.Equal(t, model.SourceInference, m.funcProv["run"]["return_type"])
	assert.Equal(t, model.SourceInference, m.funcProv["run"]["doc"])
	assert.Equal(t, model.SourceParser, m.funcProv["run"]["name"])

	assert.Equal(t, "singleton", m.Classes[0].Kind)
	assert.Equal(t, model.SourceInference, m.classProv["Svc"]["kind"])
}

func TestMergeSkeletons_InferenceOnlyDeclarations(t *testing.T) {
	parsed := &extractor.FileSkeleton{Path: "legacy.pas"}
	inferred := &extractor.FileSkeleton{
		Path: "legacy.pas",
		Functions: []extractor.FunctionDecl{
			{Name: "CalcTax", ReturnType: "Currency"},
		},
		Extensions: []extractor.ExtensionDecl{
			{Name: "TStringHelper", BaseType: "string"},
		},
	}

	m := mergeSkeletons(parsed, inferred)

	require.Len(t, m.Functions, 1)
	assert.Equal(t, model.SourceInference, m.funcProv["CalcTax"]["name"])
	require.Len(t, m.Extensions, 1)
	assert.Equal(t, "TStringHelper", m.Extensions[0].Name)
}

func TestMergeSkeletons_NilInference(t *testing.T) {
	parsed := &extractor.FileSkeleton{
		Path:      "a.py",
		Functions: []extractor.FunctionDecl{{Name: "f", ReturnType: "Any"}},
	}

	m := mergeSkeletons(parsed, nil)

	require.Len(t, m.Functions, 1)
	assert.Equal(t, model.SourceParser, m.funcProv["f"]["return_type"])
}
