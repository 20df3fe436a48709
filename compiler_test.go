package blink

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCompileEndToEnd(t *testing.T) {
	src := `
		func fib(n: i32): i32 {
			if (n <= 1) { return n; }
			return fib(n - 1) + fib(n - 2);
		}
		func main(): i32 {
			return fib(10);
		}
	`
	m, err := Compile("main.bl", src, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	ir := m.String()
	if !strings.Contains(ir, "define i32 @fib(i32 %n)") {
		t.Errorf("expected a fib function definition:\n%s", ir)
	}
	if !strings.Contains(ir, "define i32 @main()") {
		t.Errorf("expected a main function definition:\n%s", ir)
	}
}

func TestCompileStopsAtFirstFailingStage(t *testing.T) {
	if _, err := Compile("bad.bl", `func f(): i32 { return "not an i32"; }`, nil); err == nil {
		t.Fatal("expected a semantic-stage error for a mismatched return type")
	}
}

func TestCompileReportsLexError(t *testing.T) {
	if _, err := Compile("bad.bl", `var x: i32 = 1.2.3;`, nil); err == nil {
		t.Fatal("expected a lex-stage error for a malformed number literal")
	}
}

func TestCompileReportsParseError(t *testing.T) {
	if _, err := Compile("bad.bl", `var x i32 = 1;`, nil); err == nil {
		t.Fatal("expected a parse-stage error for a missing ':'")
	}
}

// TestCompileResolvesInclude exercises $include end to end against a real
// loader rooted at a temp directory: main.bl pulls in helpers.bl, and the
// function it declares must be visible to main.bl's own body.
func TestCompileResolvesInclude(t *testing.T) {
	dir := t.TempDir()
	helperPath := filepath.Join(dir, "helpers.bl")
	if err := os.WriteFile(helperPath, []byte(`func double(x: i32): i32 { return x * 2; }`), 0o644); err != nil {
		t.Fatalf("writing helpers.bl: %v", err)
	}

	mainPath := filepath.Join(dir, "main.bl")
	mainSrc := "$include helpers\n" + "func main(): i32 { return double(21); }"

	loader, err := NewFileLoader(dir)
	if err != nil {
		t.Fatalf("NewFileLoader: %v", err)
	}

	m, err := Compile(mainPath, mainSrc, loader)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	ir := m.String()
	if !strings.Contains(ir, "define i32 @double(i32 %x)") {
		t.Errorf("expected the included double() function to be defined:\n%s", ir)
	}
	if !strings.Contains(ir, "define i32 @main()") {
		t.Errorf("expected main() to be defined:\n%s", ir)
	}
}

// TestCompileIncludeIsIdempotent confirms the per-compile includeSet guards
// against pulling the same file in twice, even when two different files
// both $include it.
func TestCompileIncludeIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "shared.bl"), []byte(`func one(): i32 { return 1; }`), 0o644); err != nil {
		t.Fatalf("writing shared.bl: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.bl"), []byte("$include shared\n"), 0o644); err != nil {
		t.Fatalf("writing a.bl: %v", err)
	}

	mainSrc := "$include a\n$include shared\nfunc main(): i32 { return one(); }"
	loader, err := NewFileLoader(dir)
	if err != nil {
		t.Fatalf("NewFileLoader: %v", err)
	}

	mainPath := filepath.Join(dir, "main.bl")
	m, err := Compile(mainPath, mainSrc, loader)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	ir := m.String()
	if strings.Count(ir, "define i32 @one()") != 1 {
		t.Errorf("expected exactly one definition of one(), got:\n%s", ir)
	}
}
