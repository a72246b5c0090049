package cgen_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/arafura-lang/arafura/internal/cgen"
	"github.com/arafura-lang/arafura/internal/diag"
	"github.com/arafura-lang/arafura/internal/parser"
)

func translate(t *testing.T, input string) string {
	t.Helper()
	p := parser.New(input)
	module := p.ParseModule()
	if p.Failed() {
		t.Fatalf("parse failed: %v", p.Errors())
	}
	out, err := cgen.Translate(module)
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	return out
}

func translateErr(t *testing.T, input string) *cgen.Error {
	t.Helper()
	p := parser.New(input)
	module := p.ParseModule()
	if p.Failed() {
		t.Fatalf("parse failed: %v", p.Errors())
	}
	_, err := cgen.Translate(module)
	if err == nil {
		t.Fatal("expected a lowering error")
	}
	var lowering *cgen.Error
	if !errors.As(err, &lowering) {
		t.Fatalf("expected *cgen.Error, got %T", err)
	}
	return lowering
}

func TestVariableDeclarations(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"x: int = 42", "int x = 42;"},
		{"p: -char", "char *p;"},
		{"pp: -(-int)", "int **pp;"},
		{"m: int[2][3]", "int m[2][3];"},
		{"k: const[char]", "const char k;"},
		{"u: unsigned[long[long]]", "unsigned long long u;"},
		{"counter: atomic[int]", "_Atomic int counter;"},
		{"tls: static[thread_local[int]]", "static _Thread_local int tls;"},
		{"av: alignas[16, int]", "_Alignas(16) int av;"},
		{"aa: alignas[64, list[int, 10]]", "_Alignas(64) int aa[10];"},
		{"buf: list[char, 100]", "char buf[100];"},
		{"cb: int(int, int)", "int (*cb)(int, int);"},
		{"add: (int, int)(int)", "int add(int, int);"},
		{"h: ()(void)", "void h(void);"},
		{"pa: +int[10]", "int (*pa)[10];"},
		{"fp: -(int, int)(int)", "int (*fp)(int, int);"},
		{"n: -void = None", "void *n = NULL;"},
	}

	for _, tt := range tests {
		got := translate(t, tt.input+"\n")
		if diff := cmp.Diff(tt.want+"\n", got); diff != "" {
			t.Errorf("%s: output mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}

func TestStructDefinition(t *testing.T) {
	input := `class Node:
    data: int
    next: -type[Node]
`
	want := `struct Node {
    int data;
    struct Node *next;
};
`
	if diff := cmp.Diff(want, translate(t, input)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestTypedefStruct(t *testing.T) {
	input := `@Typedef(Point)
class Point:
    x: int
    y: int

pt: Point
tag: type[Point]
`
	want := `typedef struct Point {
    int x;
    int y;
} Point;
Point pt;
struct Point tag;
`
	if diff := cmp.Diff(want, translate(t, input)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestBareTagInTypePositionFails(t *testing.T) {
	input := `class Node:
    data: int

n: Node
`
	err := translateErr(t, input)
	if err.Code != diag.CodeUnrecognisedPattern {
		t.Fatalf("code = %q, want %q", err.Code, diag.CodeUnrecognisedPattern)
	}
}

func TestVarDecorators(t *testing.T) {
	input := `@Var(v2, v3)
class MultiVar:
    value: int

@Typedef(Combined)
@Var(c1)
class Combined:
    field: int
`
	want := `struct MultiVar {
    int value;
} v2, v3;
typedef struct Combined {
    int field;
} Combined;
Combined c1;
`
	if diff := cmp.Diff(want, translate(t, input)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestEnumAndUnion(t *testing.T) {
	input := `class Color(Enum):
    RED = 0
    GREEN = 1
    BLUE

class Data(Union):
    i: int
    f: float
`
	want := `enum Color {
    RED = 0,
    GREEN = 1,
    BLUE,
};
union Data {
    int i;
    float f;
};
`
	if diff := cmp.Diff(want, translate(t, input)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestAnonymousAggregates(t *testing.T) {
	input := `class Outer:
    a: int
    class W:
        x: int
    b: int

class Widget:
    @Var(color)
    class W(Enum):
        RED = 0
    value: int

@Var(gs)
class W(Enum):
    OK = 0
`
	want := `struct Outer {
    int a;
    struct {
        int x;
    };
    int b;
};
struct Widget {
    enum {
        RED = 0,
    } color;
    int value;
};
enum {
    OK = 0,
} gs;
`
	if diff := cmp.Diff(want, translate(t, input)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestTopLevelAnonymousWithoutVarFails(t *testing.T) {
	input := `class W:
    x: int
`
	err := translateErr(t, input)
	if err.Code != diag.CodeAnnotationMismatch {
		t.Fatalf("code = %q, want %q", err.Code, diag.CodeAnnotationMismatch)
	}
}

func TestUnknownDecoratorFails(t *testing.T) {
	input := `@Packed(tight)
class P:
    x: int
`
	err := translateErr(t, input)
	if err.Code != diag.CodeUnknownDecorator {
		t.Fatalf("code = %q, want %q", err.Code, diag.CodeUnknownDecorator)
	}
}

func TestBitfieldsAndFlexibleMember(t *testing.T) {
	input := `class Flags:
    a: bit[unsigned[int], 3]
    c: bit[int, 1]

class Buffer:
    len: int
    data: list[char]
`
	want := `struct Flags {
    unsigned int a : 3;
    int c : 1;
};
struct Buffer {
    int len;
    char data[];
};
`
	if diff := cmp.Diff(want, translate(t, input)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestFlexibleMemberNotLastFails(t *testing.T) {
	input := `class Buffer:
    data: list[char]
    len: int
`
	err := translateErr(t, input)
	if err.Code != diag.CodeAnnotationMismatch {
		t.Fatalf("code = %q, want %q", err.Code, diag.CodeAnnotationMismatch)
	}
}

func TestConstructorForms(t *testing.T) {
	input := `@Typedef(Point)
class Point:
    x: int
    y: int

def f() -> void:
    q: Point(x=1, y=2)
    r: Point = Point(3, 4)
    arr: Point[2]
    arr[0] = Point(5, 6)
    w: Point = W(x=7)
`
	want := `typedef struct Point {
    int x;
    int y;
} Point;
void f(void) {
    Point q = {.x = 1, .y = 2};
    Point r = {3, 4};
    Point arr[2];
    arr[0] = (Point){5, 6};
    Point w = (Point){.x = 7};
}
`
	if diff := cmp.Diff(want, translate(t, input)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestWildcardLiteralWithoutContextFails(t *testing.T) {
	input := `def f() -> void:
    g(W(x=1))
`
	err := translateErr(t, input)
	if err.Code != diag.CodeMissingContext {
		t.Fatalf("code = %q, want %q", err.Code, diag.CodeMissingContext)
	}
}

func TestWildcardForms(t *testing.T) {
	input := `def f() -> void:
    x: int = 5
    p: -int = W.x
    y: int = p.W
    p.W = 7
`
	want := `void f(void) {
    int x = 5;
    int *p = &x;
    int y = (*p);
    (*p) = 7;
}
`
	if diff := cmp.Diff(want, translate(t, input)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestArrowAccess(t *testing.T) {
	input := `class Point:
    x: int

def g(p: -type[Point], pp: -(-type[Point])) -> void:
    p.W.x = 1
    q: int = p.W.x
    r: type[Point] = pp.W.W
`
	want := `struct Point {
    int x;
};
void g(struct Point *p, struct Point **pp) {
    p->x = 1;
    int q = p->x;
    struct Point r = (*(*pp));
}
`
	if diff := cmp.Diff(want, translate(t, input)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestIncrementDecrement(t *testing.T) {
	input := `def f() -> void:
    i: int = 0
    i ** W
    W ** i
    i // W
    W // i
`
	want := `void f(void) {
    int i = 0;
    i++;
    ++i;
    i--;
    --i;
}
`
	if diff := cmp.Diff(want, translate(t, input)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestPowerWithoutWildcardFails(t *testing.T) {
	input := `def f() -> void:
    x = a ** b
`
	err := translateErr(t, input)
	if err.Code != diag.CodeUnrecognisedPattern {
		t.Fatalf("code = %q, want %q", err.Code, diag.CodeUnrecognisedPattern)
	}
}

func TestChainedComparisonFails(t *testing.T) {
	input := `def f() -> void:
    x = a < b < c
`
	err := translateErr(t, input)
	if err.Code != diag.CodeUnrecognisedPattern {
		t.Fatalf("code = %q, want %q", err.Code, diag.CodeUnrecognisedPattern)
	}
}

func TestIfElifElse(t *testing.T) {
	input := `def f(x: int) -> int:
    if x > 0:
        return 1
    elif x < 0:
        return -1
    else:
        return 0
`
	want := `int f(int x) {
    if (x > 0) {
        return 1;
    } else if (x < 0) {
        return -1;
    } else {
        return 0;
    }
}
`
	if diff := cmp.Diff(want, translate(t, input)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestLoops(t *testing.T) {
	input := `def f() -> void:
    i: int = 0
    while i < 5:
        i ** W
    while ():
        i ** W
        if i < 10:
            continue
    while ():
        break
    for j in int(j := 0)(j < 3)(j ** W):
        printf("%d\n", j)
`
	want := `void f(void) {
    int i = 0;
    while (i < 5) {
        i++;
    }
    do {
        i++;
    } while (i < 10);
    for (;;) {
        break;
    }
    for (int j = 0; j < 3; j++) {
        printf("%d\n", j);
    }
}
`
	if diff := cmp.Diff(want, translate(t, input)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestMultiVariableForLoop(t *testing.T) {
	input := `def f() -> void:
    for i, j in (int, int)(i := 0, j := 10)(i < 5)(i ** W, j // W):
        pass
`
	want := `void f(void) {
    for (int i = 0, j = 10; i < 5; i++, j--) {
    }
}
`
	if diff := cmp.Diff(want, translate(t, input)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestForLoopTypeMismatchFails(t *testing.T) {
	input := `def f() -> void:
    for i, j in (int, char)(i := 0, j := 1)(i < 5)(i ** W):
        pass
`
	err := translateErr(t, input)
	if err.Code != diag.CodeAnnotationMismatch {
		t.Fatalf("code = %q, want %q", err.Code, diag.CodeAnnotationMismatch)
	}
}

func TestMatchToSwitch(t *testing.T) {
	input := `def f(x: int) -> void:
    match x:
        case 1:
            printf("one\n")
            break
        case 2:
            printf("two\n")
        case W:
            break
`
	want := `void f(int x) {
    switch (x) {
    case 1:
        printf("one\n");
        break;
    case 2:
        printf("two\n");
    default:
        break;
    }
}
`
	if diff := cmp.Diff(want, translate(t, input)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestPreprocessorConditionals(t *testing.T) {
	input := `if [DEBUG]:
    printf("debug\n")
elif [VERBOSE]:
    printf("verbose\n")
else:
    printf("normal\n")

if [not QUIET]:
    printf("loud\n")
`
	want := `#ifdef DEBUG
printf("debug\n");
#elif defined(VERBOSE)
printf("verbose\n");
#else
printf("normal\n");
#endif
#ifndef QUIET
printf("loud\n");
#endif
`
	if diff := cmp.Diff(want, translate(t, input)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestMacros(t *testing.T) {
	input := `MAX: macro = 100

def SQUARE(x):
    x * x

def SWAP(a, b):
    t = a
    a = b
    b = t

def LOG(fmt, *args):
    printf(fmt, __VA_ARGS__)

del MAX
`
	want := `#define MAX 100
#define SQUARE(x) ((x * x))
#define SWAP(a, b) do { \
    t = a; \
    a = b; \
    b = t; \
} while(0)
#define LOG(fmt, ...) (printf(fmt, __VA_ARGS__))
#undef MAX
`
	if diff := cmp.Diff(want, translate(t, input)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestMixedAnnotationsFails(t *testing.T) {
	input := `def f(a: int, b) -> int:
    return a
`
	err := translateErr(t, input)
	if err.Code != diag.CodeAnnotationMismatch {
		t.Fatalf("code = %q, want %q", err.Code, diag.CodeAnnotationMismatch)
	}
}

func TestVariadicFunction(t *testing.T) {
	input := `def log_all(fmt: -(const[char]), *args) -> void:
    pass
`
	want := `void log_all(const char *fmt, ...) {
}
`
	if diff := cmp.Diff(want, translate(t, input)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestEscapedIdentifiers(t *testing.T) {
	input := `def f() -> void:
    ___: int = 5
    __FILE__: -char = "test.c"
`
	want := `void f(void) {
    int _ = 5;
    char *FILE__ = "test.c";
}
`
	if diff := cmp.Diff(want, translate(t, input)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestCasts(t *testing.T) {
	input := `def f() -> void:
    x: int = 42
    y: float = cast[float](x)
    p: -void = [-void](x)
`
	want := `void f(void) {
    int x = 42;
    float y = ((float)(x));
    void *p = ((void*)(x));
}
`
	if diff := cmp.Diff(want, translate(t, input)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestSizeof(t *testing.T) {
	input := `class Node:
    data: int

def f(x: int) -> void:
    a: int = sizeof(type[Node])
    b: int = sizeof(int)
    c: int = sizeof(x)
`
	want := `struct Node {
    int data;
};
void f(int x) {
    int a = sizeof(struct Node);
    int b = sizeof(int);
    int c = sizeof(x);
}
`
	if diff := cmp.Diff(want, translate(t, input)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestSizeofBareTagFails(t *testing.T) {
	input := `class Node:
    data: int

def f() -> void:
    a: int = sizeof(Node)
`
	err := translateErr(t, input)
	if err.Code != diag.CodeUnrecognisedPattern {
		t.Fatalf("code = %q, want %q", err.Code, diag.CodeUnrecognisedPattern)
	}
}

func TestAlignofAndStaticAssert(t *testing.T) {
	input := `class Node:
    data: int

def f() -> void:
    a: size_t = alignof[type[Node]]
    b: size_t = alignof[int]
    static_assert(sizeof(type[Node]) > 0, "size")
`
	want := `struct Node {
    int data;
};
void f(void) {
    size_t a = _Alignof(struct Node);
    size_t b = _Alignof(int);
    _Static_assert(sizeof(struct Node) > 0, "size");
}
`
	if diff := cmp.Diff(want, translate(t, input)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestGotoAndLabels(t *testing.T) {
	input := `def f() -> void:
    LOOP: label
    raise END
    raise LOOP
    END: label
`
	want := `void f(void) {
LOOP:
    goto END;
    goto LOOP;
END:
}
`
	if diff := cmp.Diff(want, translate(t, input)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestIncludesAndTypeAlias(t *testing.T) {
	input := `import mylib
from stdio import *

type IntPtr = -int

@Typedef(Point)
class Point:
    x: int

type PointPtr = -type[Point]
`
	want := `#include "mylib.h"
#include <stdio.h>
typedef int *IntPtr;
typedef struct Point {
    int x;
} Point;
typedef struct Point *PointPtr;
`
	if diff := cmp.Diff(want, translate(t, input)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestTernaryAndWalrus(t *testing.T) {
	input := `def f() -> int:
    x: int = 0
    y: int = (x := 5)
    return x if x > y else y
`
	want := `int f(void) {
    int x = 0;
    int y = (x = 5);
    return (x > y ? x : y);
}
`
	if diff := cmp.Diff(want, translate(t, input)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestInitialiserDisplays(t *testing.T) {
	input := `def f() -> void:
    a: int[3] = [1, 2, 3]
    d: int[4] = {0: 1, 3: 9}
`
	want := `void f(void) {
    int a[3] = {1, 2, 3};
    int d[4] = {[0] = 1, [3] = 9};
}
`
	if diff := cmp.Diff(want, translate(t, input)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestReservedNameMisuse(t *testing.T) {
	if err := translateErr(t, "W = 5\n"); err.Code != diag.CodeReservedMisuse {
		t.Fatalf("code = %q, want %q", err.Code, diag.CodeReservedMisuse)
	}
	if err := translateErr(t, "x: list\n"); err.Code != diag.CodeReservedMisuse {
		t.Fatalf("code = %q, want %q", err.Code, diag.CodeReservedMisuse)
	}
}

func TestTags(t *testing.T) {
	input := `@Typedef(Point)
class Point:
    x: int

class Data(Union):
    i: int

class Color(Enum):
    RED = 0
`
	p := parser.New(input)
	module := p.ParseModule()
	if p.Failed() {
		t.Fatalf("parse failed: %v", p.Errors())
	}

	tags := cgen.Tags(module)
	want := map[string]cgen.TagInfo{
		"Point": {Kind: cgen.TagStruct, TypedefName: "Point"},
		"Data":  {Kind: cgen.TagUnion},
		"Color": {Kind: cgen.TagEnum},
	}
	if diff := cmp.Diff(want, tags); diff != "" {
		t.Errorf("tag table mismatch (-want +got):\n%s", diff)
	}
}

func TestBitfieldOutsideStructFails(t *testing.T) {
	inputs := []string{
		"def f() -> void:\n    x: bit[int, 3]\n",
		"x: bit[int, 3]\n",
		"def f(a: bit[int, 2]) -> void:\n    pass\n",
	}
	for _, input := range inputs {
		err := translateErr(t, input)
		if err.Code != diag.CodeAnnotationMismatch {
			t.Errorf("%q: code = %q, want %q", input, err.Code, diag.CodeAnnotationMismatch)
		}
	}
}

func TestFlexibleArrayOutsideStructFails(t *testing.T) {
	inputs := []string{
		"def f() -> void:\n    b: list[int]\n",
		"b: list[int]\n",
		"type Buf = list[char]\n",
	}
	for _, input := range inputs {
		err := translateErr(t, input)
		if err.Code != diag.CodeAnnotationMismatch {
			t.Errorf("%q: code = %q, want %q", input, err.Code, diag.CodeAnnotationMismatch)
		}
	}
}

func TestStringEscapeDecoding(t *testing.T) {
	input := "s: -char = \"\\x41\"\np: -char = \"\\101\\n\"\n"
	want := "char *s = \"A\";\nchar *p = \"A\\n\";\n"
	if diff := cmp.Diff(want, translate(t, input)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestNestedArrayInitialiserContext(t *testing.T) {
	input := `def f() -> void:
    m: int[2][3] = [W(0), [4, 5, 6]]
`
	want := `void f(void) {
    int m[2][3] = {(int [3]){0}, {4, 5, 6}};
}
`
	if diff := cmp.Diff(want, translate(t, input)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}
