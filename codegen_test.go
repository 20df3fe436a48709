package blink

import (
	"strings"
	"testing"
)

func compileSource(t *testing.T, src string) string {
	t.Helper()
	tokens, err := lex("codegen-test", src, nil, nil)
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	stmts, err := newParser("codegen-test", tokens).Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := NewAnalyzer().Analyze(stmts); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	m, err := NewCodegen("codegen-test").Generate(stmts)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return m.String()
}

func TestCodegenDeclaresPrintf(t *testing.T) {
	ir := compileSource(t, `func f(): i32 { return 0; }`)
	if !strings.Contains(ir, "declare i32 @printf(i8*, ...)") {
		t.Errorf("module does not declare printf:\n%s", ir)
	}
}

func TestCodegenEmitsFunctionSignature(t *testing.T) {
	ir := compileSource(t, `func add(a: i32, b: i32): i32 { return a + b; }`)
	if !strings.Contains(ir, "define i32 @add(i32 %a, i32 %b)") {
		t.Errorf("expected an add function signature:\n%s", ir)
	}
}

func TestCodegenGlobalVarDecl(t *testing.T) {
	ir := compileSource(t, `var counter: i32 = 7;`)
	if !strings.Contains(ir, "@counter") {
		t.Errorf("expected a global named counter:\n%s", ir)
	}
}

func TestCodegenLocalVarUsesAllocaAndStore(t *testing.T) {
	ir := compileSource(t, `func f(): i32 { var x: i32 = 3; return x; }`)
	if !strings.Contains(ir, "alloca i32") {
		t.Errorf("expected an alloca for a local variable:\n%s", ir)
	}
	if !strings.Contains(ir, "store i32 3") {
		t.Errorf("expected a store of the initializer:\n%s", ir)
	}
	if !strings.Contains(ir, "load i32") {
		t.Errorf("expected a load when reading the variable back:\n%s", ir)
	}
}

func TestCodegenIfEmitsConditionalBranch(t *testing.T) {
	ir := compileSource(t, `
		func f(x: i32): i32 {
			if (x > 0) { return 1; } else { return 2; }
			return 0;
		}
	`)
	if !strings.Contains(ir, "br i1") {
		t.Errorf("expected a conditional branch:\n%s", ir)
	}
	if strings.Count(ir, "ret i32") < 2 {
		t.Errorf("expected at least two returns, one per branch:\n%s", ir)
	}
}

func TestCodegenForLoopBlockNames(t *testing.T) {
	ir := compileSource(t, `
		func f(): i32 {
			var s: i32 = 0;
			for (var i: i32 = 0; i < 10; i = i + 1) { s = s + i; }
			return s;
		}
	`)
	for _, label := range []string{"for.indexator", "for.condition", "for.iteration", "for.body", "for.exit"} {
		if !strings.Contains(ir, label) {
			t.Errorf("expected a block labeled %q:\n%s", label, ir)
		}
	}
}

func TestCodegenWhileLoopBlockNames(t *testing.T) {
	ir := compileSource(t, `
		func f(): i32 {
			var i: i32 = 0;
			while (i < 10) { i = i + 1; }
			return i;
		}
	`)
	for _, label := range []string{"while.condition", "while.body", "while.exit"} {
		if !strings.Contains(ir, label) {
			t.Errorf("expected a block labeled %q:\n%s", label, ir)
		}
	}
}

func TestCodegenDoWhileLoopBlockNames(t *testing.T) {
	ir := compileSource(t, `
		func f(): i32 {
			var i: i32 = 0;
			do { i = i + 1; } while (i < 10);
			return i;
		}
	`)
	for _, label := range []string{"dowhile.body", "dowhile.condition", "dowhile.exit"} {
		if !strings.Contains(ir, label) {
			t.Errorf("expected a block labeled %q:\n%s", label, ir)
		}
	}
}

func TestCodegenWideningUsesSignExtendNotZeroExtend(t *testing.T) {
	// Preserves the original's quirk: widening always sign-extends, even
	// toward an unsigned destination.
	ir := compileSource(t, `func f(): i32 { var x: u64 = 3; return 0; }`)
	if !strings.Contains(ir, "sext") {
		t.Errorf("expected a sext when widening the i32 literal to u64:\n%s", ir)
	}
	if strings.Contains(ir, "zext") {
		t.Errorf("did not expect a zext anywhere, widening must always sign-extend:\n%s", ir)
	}
}

func TestCodegenLogicalOperatorsAreBitwise(t *testing.T) {
	ir := compileSource(t, `func f(a: bool, b: bool): bool { return a && b; }`)
	if !strings.Contains(ir, "and i1") {
		t.Errorf("expected a bitwise 'and' for &&, not short-circuit branching:\n%s", ir)
	}
}

func TestCodegenStringLiteralBecomesGlobalConstant(t *testing.T) {
	ir := compileSource(t, `func f(): i32 { printf("hi"); return 0; }`)
	if !strings.Contains(ir, "c\"hi\\00\"") {
		t.Errorf("expected a NUL-terminated string constant:\n%s", ir)
	}
}
