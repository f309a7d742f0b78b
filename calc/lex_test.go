package calc

import (
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// scanAll scans every token in src, dropping byte offsets so that cases only
// need to list rune columns.
func scanAll(src string) ([]lexToken, int) {
	scan := lex(src)
	var toks []lexToken
	errs := 0
	for {
		tok, err := scan.next()
		if err == io.EOF {
			return toks, errs
		}
		if err != nil {
			errs++
			continue
		}
		if tok.kind == tokenEOF {
			return toks, errs
		}
		tok.off, tok.end = 0, 0
		toks = append(toks, tok)
	}
}

func TestLex(t *testing.T) {
	cases := []struct {
		src    string
		tokens []lexToken
		errs   int
	}{
		// spaces
		{"", nil, 0},
		{" \t \r\n ", nil, 0},
		// numbers
		{"0", []lexToken{{text: "0", kind: tokenNum, pos: 1}}, 0},
		{"9876543210", []lexToken{{text: "9876543210", kind: tokenNum, pos: 1}}, 0},
		{"1 0", []lexToken{{text: "1", kind: tokenNum, pos: 1}, {text: "0", kind: tokenNum, pos: 3}}, 0},
		{"1.0", []lexToken{{text: "1.0", kind: tokenNum, pos: 1}}, 0},
		{"-1", []lexToken{{text: "-", kind: tokenOp, pos: 1}, {text: "1", kind: tokenNum, pos: 2}}, 0},
		{"1e1", []lexToken{{text: "1e1", kind: tokenNum, pos: 1}}, 0},
		{"1e+1", []lexToken{{text: "1e+1", kind: tokenNum, pos: 1}}, 0},
		{"1e-1", []lexToken{{text: "1e-1", kind: tokenNum, pos: 1}}, 0},
		{"1.0e1", []lexToken{{text: "1.0e1", kind: tokenNum, pos: 1}}, 0},
		{".1", []lexToken{{text: ".1", kind: tokenNum, pos: 1}}, 0},
		{".1e1", []lexToken{{text: ".1e1", kind: tokenNum, pos: 1}}, 0},
		{"1.1.1", []lexToken{{text: "1", kind: tokenNum, pos: 5}}, 1},
		{".", nil, 1},
		// quantities
		{"30mils", []lexToken{{text: "30", unit: "mils", kind: tokenNum, pos: 1}}, 0},
		{"4GHz", []lexToken{{text: "4", unit: "GHz", kind: tokenNum, pos: 1}}, 0},
		{"1e-3mm", []lexToken{{text: "1e-3", unit: "mm", kind: tokenNum, pos: 1}}, 0},
		{"1e", []lexToken{{text: "1", unit: "e", kind: tokenNum, pos: 1}}, 0},
		{"2μm", []lexToken{{text: "2", unit: "μm", kind: tokenNum, pos: 1}}, 0},
		{"5 mm", []lexToken{{text: "5", kind: tokenNum, pos: 1}, {text: "mm", kind: tokenIdent, pos: 3}}, 0},
		{"2x3", nil, 1},
		{"0$", nil, 1},
		{"1+0", []lexToken{{text: "1", kind: tokenNum, pos: 1}, {text: "+", kind: tokenOp, pos: 2}, {text: "0", kind: tokenNum, pos: 3}}, 0},
		// identifiers
		{"e", []lexToken{{text: "e", kind: tokenIdent, pos: 1}}, 0},
		{"e1", []lexToken{{text: "e1", kind: tokenIdent, pos: 1}}, 0},
		{"π", []lexToken{{text: "π", kind: tokenIdent, pos: 1}}, 0},
		{"_1234_", []lexToken{{text: "_1234_", kind: tokenIdent, pos: 1}}, 0},
		{"$a", []lexToken{{text: "$a", kind: tokenIdent, pos: 1}}, 0},
		{"$a_1", []lexToken{{text: "$a_1", kind: tokenIdent, pos: 1}}, 0},
		{"e(", []lexToken{{text: "e", kind: tokenIdent, pos: 1}, {text: "(", kind: tokenOpen, pos: 2}}, 0},
		// operators
		{"++", []lexToken{{text: "+", kind: tokenOp, pos: 1}, {text: "+", kind: tokenOp, pos: 2}}, 0},
		{"a--b", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {text: "-", kind: tokenOp, pos: 2}, {text: "-", kind: tokenOp, pos: 3}, {text: "b", kind: tokenIdent, pos: 4}}, 0},
		{"a^b", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {text: "^", kind: tokenOp, pos: 2}, {text: "b", kind: tokenIdent, pos: 3}}, 0},
		// brackets and separators
		{"(1)", []lexToken{{text: "(", kind: tokenOpen, pos: 1}, {text: "1", kind: tokenNum, pos: 2}, {text: ")", kind: tokenClose, pos: 3}}, 0},
		{"[1, 2]", []lexToken{{text: "[", kind: tokenOpen, pos: 1}, {text: "1", kind: tokenNum, pos: 2}, {text: ",", kind: tokenSep, pos: 3}, {text: "2", kind: tokenNum, pos: 5}, {text: "]", kind: tokenClose, pos: 6}}, 0},
		// erroneous symbols
		{"{}", nil, 2},
		{"$", nil, 1},
		{"$$", nil, 2},
		{"a$", []lexToken{{text: "a", kind: tokenIdent, pos: 1}}, 1},
		{"a;b", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {text: "b", kind: tokenIdent, pos: 3}}, 1},
	}
	for _, c := range cases {
		got, errs := scanAll(c.src)
		if diff := cmp.Diff(c.tokens, got, cmp.AllowUnexported(lexToken{})); diff != "" {
			t.Errorf("scanning %q gave wrong tokens (-want +got):\n%s", c.src, diff)
		}
		if errs != c.errs {
			t.Errorf("scanning %q gave %d errors, want %d", c.src, errs, c.errs)
		}
	}
}

func TestLexOffsets(t *testing.T) {
	src := "a + $π*2mm"
	scan := lex(src)
	var got []string
	for {
		tok, err := scan.next()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tok.kind == tokenEOF {
			if tok.off != len(src) || tok.end != len(src) {
				t.Errorf("EOF at [%d:%d], want [%d:%d]", tok.off, tok.end, len(src), len(src))
			}
			break
		}
		got = append(got, src[tok.off:tok.end])
	}
	want := []string{"a", "+", "$π", "*", "2mm"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrong token text (-want +got):\n%s", diff)
	}
}

func TestIdents(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want []Ident
	}{
		{"none", "1 + 2mm", nil},
		{"design", "c0/varB + varA", []Ident{
			{Name: "c0", Off: 0, End: 2},
			{Name: "varB", Off: 3, End: 7},
			{Name: "varA", Off: 10, End: 14},
		}},
		{"call", "sin(x) + $p", []Ident{
			{Name: "sin", Off: 0, End: 3, Call: true},
			{Name: "x", Off: 4, End: 5},
			{Name: "$p", Off: 9, End: 11},
		}},
		{"spacedcall", "f (x)", []Ident{
			{Name: "f", Off: 0, End: 1, Call: true},
			{Name: "x", Off: 3, End: 4},
		}},
		{"indexnotcall", "v[0]", []Ident{{Name: "v", Off: 0, End: 1}}},
		{"units", "30mils + w", []Ident{{Name: "w", Off: 9, End: 10}}},
		{"invalid", "a ; b", []Ident{
			{Name: "a", Off: 0, End: 1},
			{Name: "b", Off: 4, End: 5},
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Idents(c.src)
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("Idents(%q) (-want +got):\n%s", c.src, diff)
			}
		})
	}
}

func TestClosed(t *testing.T) {
	cases := []struct {
		src  string
		want bool
	}{
		{"x", true},
		{"$x", true},
		{"30mils", true},
		{" 5 ", true},
		{"1e-3", true},
		{"sin(x)", true},
		{"v[0]", true},
		{"[1, 2]", true},
		{"[1, 2][0]", true},
		{"(a+b)", true},
		{"(a+b)[1]", true},
		{"", false},
		{"-5", false},
		{"a+b", false},
		{"(a)+(b)", false},
		{"a b", false},
		{"(a) b", false},
		{"(a", false},
		{"a)", false},
		{"2x3", false},
		{"$", false},
		{"(1)(2)", false},
		{"2(3)", false},
		{"sin(x)(y)", false},
		{"[1][0](2)", false},
		{"$f(1)", true},
		{"(a)[0][1]", true},
	}
	for _, c := range cases {
		if got := Closed(c.src); got != c.want {
			t.Errorf("Closed(%q) = %t, want %t", c.src, got, c.want)
		}
	}
}
