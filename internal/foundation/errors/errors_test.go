package errors

import (
	"errors"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "assetflow.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Error("expected fatal severity")
		}
		file, ok := err.Context().Get("file")
		if !ok || file != "assetflow.yaml" {
			t.Errorf("expected context file=assetflow.yaml, got %v", file)
		}
	})

	t.Run("Wrapping keeps the cause reachable", func(t *testing.T) {
		cause := errors.New("unexpected token")
		err := WrapError(cause, CategoryTransform, "compile sass").Warning().Build()

		if !errors.Is(err, cause) {
			t.Error("expected errors.Is to reach the cause")
		}
		if err.Severity() != SeverityWarning {
			t.Errorf("expected warning severity, got %s", err.Severity())
		}
		if err.Error() != "[transform:warning] compile sass: unexpected token" {
			t.Errorf("unexpected message %q", err.Error())
		}
	})

	t.Run("Detection through fmt wrapping", func(t *testing.T) {
		err := fmtWrap(FileSystemError("remove dist").Build())
		if !IsClassified(err) {
			t.Fatal("expected classified error in chain")
		}
		if !HasCategory(err, CategoryFileSystem) {
			t.Error("expected filesystem category")
		}
		if GetSeverity(err) != SeverityError {
			t.Errorf("expected default severity error, got %s", GetSeverity(err))
		}
		if GetCategory(errors.New("plain")) != CategoryInternal {
			t.Error("plain errors default to internal")
		}
	})

	t.Run("WithContext copies", func(t *testing.T) {
		base := TransformError("minify").Build()
		derived := base.WithContext("task", "scripts")
		if _, ok := base.Context().Get("task"); ok {
			t.Error("base context must not be mutated")
		}
		if v, _ := derived.Context().Get("task"); v != "scripts" {
			t.Errorf("derived context = %q", v)
		}
		if !errors.Is(derived, base) {
			t.Error("derived error should match base by category and message")
		}
	})
}

func fmtWrap(err error) error {
	return errors.Join(errors.New("stage failed"), err)
}
