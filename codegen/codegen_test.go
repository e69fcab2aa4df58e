package codegen

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"
)

var codePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

func TestBase62Generator_Generate(t *testing.T) {
	t.Run("generates code of requested length", func(t *testing.T) {
		gen := NewBase62()

		for _, length := range []int{1, 6, 7, 8, 16, 64} {
			code, err := gen.Generate(length)
			if err != nil {
				t.Fatalf("Generate(%d) unexpected error: %v", length, err)
			}
			if len(code) != length {
				t.Errorf("Generate(%d) returned length %d", length, len(code))
			}
		}
	})

	t.Run("generates only alphanumeric characters", func(t *testing.T) {
		gen := NewBase62()

		for range 200 {
			code, err := gen.Generate(6)
			if err != nil {
				t.Fatalf("Generate() unexpected error: %v", err)
			}
			if !codePattern.MatchString(code) {
				t.Fatalf("Generate() = %q, not alphanumeric", code)
			}
		}
	})

	t.Run("returns error for non-positive length", func(t *testing.T) {
		gen := NewBase62()

		for _, length := range []int{0, -1} {
			if _, err := gen.Generate(length); err == nil {
				t.Errorf("Generate(%d) expected error, got nil", length)
			}
		}
	})

	t.Run("discards biased bytes", func(t *testing.T) {
		// 255 and 248 are above the unbiased ceiling and must be skipped.
		src := bytes.NewReader([]byte{255, 248, 0, 1, 61, 62, 0, 0})
		gen := NewBase62From(src)

		code, err := gen.Generate(4)
		if err != nil {
			t.Fatalf("Generate() unexpected error: %v", err)
		}
		if code != "01z0" {
			t.Errorf("Generate() = %q, want %q", code, "01z0")
		}
	})

	t.Run("propagates source errors", func(t *testing.T) {
		gen := NewBase62From(errReader{})

		_, err := gen.Generate(6)
		if err == nil {
			t.Fatal("Generate() expected error, got nil")
		}
		if !strings.Contains(err.Error(), "entropy") {
			t.Errorf("error = %v, want entropy failure", err)
		}
	})

	t.Run("is safe for concurrent use", func(t *testing.T) {
		gen := NewBase62()

		var wg sync.WaitGroup
		errs := make(chan error, 50)
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := gen.Generate(8); err != nil {
					errs <- err
				}
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			t.Errorf("concurrent Generate() error: %v", err)
		}
	})
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("entropy unavailable") }
