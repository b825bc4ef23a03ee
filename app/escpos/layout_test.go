package escpos

import (
	"strings"
	"testing"
)

func lineWidths(s string) []int {
	var widths []int
	for _, line := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		widths = append(widths, len([]rune(line)))
	}
	return widths
}

func TestWrapTextNeverExceedsWidth(t *testing.T) {
	texts := []string{
		"Caipirinha de limão com açúcar mascavo e gelo",
		"umapalavramuitocompridaquenaocabe em uma linha",
		"linha um\nlinha dois com mais palavras do que cabem aqui",
		strings.Repeat("x", 200),
		"a b c d e f g h i j k l m n o p q r s t u v w x y z",
	}
	for _, width := range []int{8, 32, 48} {
		for _, text := range texts {
			out := WrapText(text, width)
			for i, w := range lineWidths(out) {
				if w > width {
					t.Errorf("WrapText(%q, %d): line %d has width %d", text, width, i, w)
				}
			}
		}
	}
}

func TestWrapTextGreedyFill(t *testing.T) {
	out := WrapText("um dois tres quatro", 11)
	want := "um dois\ntres quatro\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestWrapTextCollapsesWhitespace(t *testing.T) {
	out := WrapText("um   dois\t tres", 32)
	if out != "um dois tres\n" {
		t.Errorf("got %q", out)
	}
}

func TestWrapTextKeepsParagraphs(t *testing.T) {
	out := WrapText("primeira\n\nsegunda", 32)
	if out != "primeira\n\nsegunda\n" {
		t.Errorf("got %q", out)
	}
}

func TestWrapTextHyphenatesLongWords(t *testing.T) {
	const width = 32
	out := WrapText(strings.Repeat("a", 70), width)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), out)
	}
	for _, line := range lines[:2] {
		if len([]rune(line)) != width {
			t.Errorf("hyphenated chunk %q has width %d, want %d", line, len([]rune(line)), width)
		}
		if !strings.HasSuffix(line, "-") {
			t.Errorf("hyphenated chunk %q lacks trailing hyphen", line)
		}
	}
	if lines[2] != strings.Repeat("a", 8) {
		t.Errorf("remainder = %q", lines[2])
	}
}

func TestWrapTextNoHyphen(t *testing.T) {
	const width = 10
	out := WrapTextOpt(strings.Repeat("b", 25), width, false)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", out)
	}
	for _, line := range lines[:2] {
		if line != strings.Repeat("b", width) {
			t.Errorf("chunk = %q", line)
		}
	}
}

func TestWrapTextEmpty(t *testing.T) {
	if out := WrapText("", 32); out != "" {
		t.Errorf("got %q, want empty", out)
	}
}

func TestWrapTextRemainderJoinsNextWord(t *testing.T) {
	out := WrapText(strings.Repeat("c", 12)+" fim", 10)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %q", out)
	}
	if lines[1] != "ccc fim" {
		t.Errorf("remainder line = %q, want %q", lines[1], "ccc fim")
	}
}

func TestPadKeyValueExactWidth(t *testing.T) {
	cases := []struct {
		key, value string
		width      int
	}{
		{"Mesa", "5", 32},
		{"Hora", "2024-01-01 12:00:00", 32},
		{"Remetente", "Um Nome Muito Comprido Que Nao Cabe Na Linha", 32},
		{"UmaChaveEnormeDemaisParaALinha", "v", 32},
		{"Prazo", "", 48},
		{"Mesa", "açaí e café", 20},
	}
	for _, tc := range cases {
		out := PadKeyValue(tc.key, tc.value, tc.width)
		if !strings.HasSuffix(out, "\n") {
			t.Errorf("PadKeyValue(%q, %q) missing newline", tc.key, tc.value)
		}
		if got := len([]rune(strings.TrimSuffix(out, "\n"))); got != tc.width {
			t.Errorf("PadKeyValue(%q, %q, %d) width = %d", tc.key, tc.value, tc.width, got)
		}
	}
}

func TestPadKeyValueTruncatesValue(t *testing.T) {
	out := PadKeyValue("Mesa", strings.Repeat("z", 50), 32)
	row := strings.TrimSuffix(out, "\n")
	if !strings.HasPrefix(row, "Mesa: ") {
		t.Errorf("label missing: %q", row)
	}
	if len([]rune(row)) != 32 {
		t.Errorf("width = %d", len([]rune(row)))
	}
}

func TestSanitizeStripsReservedLines(t *testing.T) {
	in := strings.Join([]string{
		"Batata frita grande",
		"Mesa: 7",
		"hora: 22:15",
		"Remetente - Loja Centro",
		"  Operador: joao  ",
		"Endereço: Rua das Flores 12",
		"endereco: Rua das Flores 12",
		"Pedido: 1234",
		"Obrigado pela preferência!",
		"NAO E DOCUMENTO FISCAL",
		"sem cebola",
	}, "\n")

	want := "Batata frita grande\nsem cebola"
	if got := Sanitize(in); got != want {
		t.Errorf("Sanitize = %q, want %q", got, want)
	}
}

func TestSanitizeKeepsOrdinaryLines(t *testing.T) {
	cases := []string{
		"2x Caipirinha",
		"mesada: valor",         // prefix of a label but not the label
		"a mesa esta reservada", // label not at line start
		"horario flexivel",
	}
	for _, line := range cases {
		if got := Sanitize(line); got != line {
			t.Errorf("Sanitize(%q) = %q, want unchanged", line, got)
		}
	}
}

func TestSanitizeEmpty(t *testing.T) {
	if got := Sanitize(""); got != "" {
		t.Errorf("got %q", got)
	}
	if got := Sanitize("Mesa: 1"); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
