package escpos

import (
	"regexp"
	"strings"
)

// reservedLabels are the metadata labels the compositor emits itself.
// Free text coming from upstream may already embed lines like
// "Mesa: 5" or "Hora: 12:30"; those must be stripped before the text is
// placed into a coupon, otherwise the metadata prints twice.
// New labels only need to be added here.
var reservedLabels = []string{
	"mesa",
	"hora",
	"remetente",
	"operador",
	"enviado por",
	"enviou",
	"endere[cç]o",
	"pedido",
}

// footerPhrases are the fixed footer lines the compositor always appends.
var footerPhrases = []string{
	`obrigado pela prefer[êe]ncia!?`,
	`nao e documento fiscal`,
}

var metaLine = regexp.MustCompile(
	`(?i)^(?:\s*(?:` + strings.Join(reservedLabels, "|") + `)\s*[:\-]\s*.*` +
		`|\s*(?:` + strings.Join(footerPhrases, "|") + `)\s*)$`,
)

// Sanitize removes every line that matches a reserved metadata label or a
// fixed footer phrase. All other lines are left untouched. Must be applied
// to every free-text field before it is rendered into a coupon.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !metaLine.MatchString(strings.TrimSpace(line)) {
			kept = append(kept, line)
		}
	}
	return strings.TrimRight(strings.Join(kept, "\n"), " \t\n")
}

// WrapText word-wraps text to the given column width with hyphenation of
// oversized words. Equivalent to WrapTextOpt(text, width, true).
func WrapText(text string, width int) string {
	return WrapTextOpt(text, width, true)
}

// WrapTextOpt breaks text by word so no output line exceeds width columns.
// Paragraphs (newlines) are preserved; runs of whitespace inside a
// paragraph collapse to single spaces. A word longer than the width is
// sliced into width-1 chunks, each suffixed with a hyphen when hyphenate
// is set; the remainder starts the next line. Non-empty output always
// ends with a newline.
func WrapTextOpt(text string, width int, hyphenate bool) string {
	if text == "" || width <= 0 {
		return ""
	}

	normalized := strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\r", "\n")
	var out []string

	for _, paragraph := range strings.Split(normalized, "\n") {
		paragraph = strings.TrimSpace(strings.Join(strings.Fields(paragraph), " "))
		if paragraph == "" {
			out = append(out, "")
			continue
		}

		line := ""
		for _, word := range strings.Split(paragraph, " ") {
			if word == "" {
				continue
			}
			sep := 0
			if line != "" {
				sep = 1
			}
			if runeLen(line)+sep+runeLen(word) <= width {
				if line != "" {
					line += " "
				}
				line += word
				continue
			}

			if runeLen(word) > width {
				if line != "" {
					out = append(out, line)
					line = ""
				}
				rest := []rune(word)
				for len(rest) > width {
					take := width
					if hyphenate {
						take = width - 1
						if take < 1 {
							take = 1
						}
					}
					chunk := string(rest[:take])
					if hyphenate {
						chunk += "-"
					}
					out = append(out, chunk)
					rest = rest[take:]
				}
				line = string(rest)
			} else {
				if line != "" {
					out = append(out, line)
				}
				line = word
			}
		}
		if line != "" {
			out = append(out, line)
		}
	}

	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, "\n") + "\n"
}

// PadKeyValue renders "key: value" padded to exactly width columns. The
// label column takes min(len(key)+2, width/2) columns; the value fills the
// remainder and is truncated if it overflows, never wrapped.
func PadKeyValue(key, value string, width int) string {
	label := key + ": "
	labelWidth := runeLen(label)
	if half := width / 2; labelWidth > half {
		labelWidth = half
	}
	return padTo(label, labelWidth) + padTo(value, width-labelWidth) + "\n"
}

// padTo truncates or space-pads s to exactly n columns.
func padTo(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s + strings.Repeat(" ", n-len(r))
}

func runeLen(s string) int {
	return len([]rune(s))
}
