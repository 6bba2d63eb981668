package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "sitebuilder.yaml").
			Build()

		require.Equal(t, CategoryConfig, err.Category())
		require.Equal(t, SeverityFatal, err.Severity())
		require.Equal(t, "invalid configuration", err.Message())
		require.True(t, err.IsFatal())

		file, exists := err.Context().GetString("file")
		require.True(t, exists)
		require.Equal(t, "sitebuilder.yaml", file)
	})

	t.Run("Error string includes cause", func(t *testing.T) {
		err := WrapError(errors.New("no such file"), CategoryTemplate, "fragment unreadable").Fatal().Build()
		require.Equal(t, "[template:fatal] fragment unreadable: no such file", err.Error())
	})

	t.Run("Detection through wrapping", func(t *testing.T) {
		inner := ConvertError("bad body").Build()
		outer := fmt.Errorf("page posts/a.md: %w", inner)

		require.True(t, IsClassified(outer))
		require.True(t, HasCategory(outer, CategoryConvert))
		require.Equal(t, CategoryConvert, GetCategory(outer))
		require.Equal(t, SeverityError, GetSeverity(outer))
		require.True(t, errors.Is(outer, ConvertError("bad body").Build()))
	})

	t.Run("Defaults for unclassified", func(t *testing.T) {
		plain := errors.New("plain")
		require.False(t, IsClassified(plain))
		require.Equal(t, CategoryInternal, GetCategory(plain))
		require.Equal(t, SeverityError, GetSeverity(plain))
	})
}

func TestErrorBuilder(t *testing.T) {
	originalErr := errors.New("original error")
	err := WrapError(originalErr, CategoryFileSystem, "write failed").
		Warning().
		WithContext("path", "index.html").
		WithContext("size", 42).
		Build()

	require.Equal(t, SeverityWarning, err.Severity())
	require.ErrorIs(t, err, originalErr)
	size, ok := err.Context().Get("size")
	require.True(t, ok)
	require.Equal(t, 42, size)

	extended := err.WithContext("attempt", 2)
	_, had := err.Context().Get("attempt")
	require.False(t, had, "WithContext must not mutate the receiver")
	_, has := extended.Context().Get("attempt")
	require.True(t, has)
}

func TestErrorContext(t *testing.T) {
	var nilCtx ErrorContext
	_, ok := nilCtx.Get("x")
	require.False(t, ok)

	merged := ErrorContext{"a": 1, "b": 2}.Merge(ErrorContext{"b": 3})
	require.Equal(t, ErrorContext{"a": 1, "b": 3}, merged)

	_, isString := ErrorContext{"n": 1}.GetString("n")
	require.False(t, isString)
}
