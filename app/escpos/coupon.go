package escpos

import (
	"fmt"
	"strings"
	"time"
)

// Line is one order item rendered on a coupon.
type Line struct {
	Name     string
	Quantity int
	Options  string
	Note     string
}

// Coupon holds everything the compositor needs to render one receipt.
// Either Lines or LegacyText carries the order content; LegacyText is the
// free-text format older job producers still send.
type Coupon struct {
	StoreName       string
	Address1        string
	Address2        string
	Table           string
	Time            string
	Sender          string
	Operator        string
	DeliveryAddress string
	Deadline        string
	Lines           []Line
	LegacyText      string
}

const (
	footerThanks     = "Obrigado pela preferência!"
	footerDisclaimer = "NAO E DOCUMENTO FISCAL"
)

// Compose renders the full coupon (header, item block, footer) as an
// ESC/POS document. Width is the column count of the paper: 32 for 58mm,
// 48 for 80mm. Excluding control sequences, no rendered line exceeds
// width columns.
func Compose(c Coupon, width int) string {
	sep := strings.Repeat("-", width) + "\n"

	var b strings.Builder
	b.WriteString(Init)
	b.WriteString(CodePage)

	// Header
	b.WriteString(AlignCenter)
	b.WriteString(BoldOn)
	b.WriteString(DoubleSize)
	b.WriteString(c.StoreName + "\n")
	b.WriteString(NormalSize)
	b.WriteString(BoldOff)
	b.WriteString(AlignLeft)
	if c.Address1 != "" {
		b.WriteString(WrapText(c.Address1, width))
	}
	if c.Address2 != "" {
		b.WriteString(WrapText(c.Address2, width))
	}
	b.WriteString(sep)

	hora := c.Time
	if hora == "" {
		hora = time.Now().Format("2006-01-02 15:04:05")
	}
	if c.Table != "" {
		b.WriteString(PadKeyValue("Mesa", c.Table, width))
	}
	b.WriteString(PadKeyValue("Hora", hora, width))
	if c.Sender != "" {
		b.WriteString(PadKeyValue("Remetente", c.Sender, width))
	}
	if c.Operator != "" {
		b.WriteString(PadKeyValue("Operador", c.Operator, width))
	}
	if c.DeliveryAddress != "" {
		// Addresses wrap instead of using a key/value row so long
		// street names are never truncated.
		b.WriteString(WrapText("Endereço: "+c.DeliveryAddress, width))
	}
	if c.Deadline != "" {
		b.WriteString(PadKeyValue("Prazo", c.Deadline, width))
	}
	b.WriteString(sep)

	// Body
	b.WriteString(renderLines(c, width, sep))
	b.WriteString(sep)

	// Footer
	b.WriteString(AlignCenter)
	b.WriteString(footerThanks + "\n")
	b.WriteString(AlignCenter)
	b.WriteString(footerDisclaimer + "\n")
	b.WriteString("\n")
	b.WriteString(Feed2)
	b.WriteString(Cut)

	return b.String()
}

// renderLines renders the item block. Every free-text field passes through
// Sanitize before wrapping; skipping that would put duplicate metadata
// lines on paper.
func renderLines(c Coupon, width int, sep string) string {
	var b strings.Builder

	if len(c.Lines) == 0 {
		if c.LegacyText != "" {
			b.WriteString(WrapText(Sanitize(c.LegacyText), width))
		}
		return b.String()
	}

	for i, line := range c.Lines {
		qty := line.Quantity
		if qty < 1 {
			qty = 1
		}
		b.WriteString(BoldOn)
		b.WriteString(WrapText(fmt.Sprintf("%dx %s", qty, Sanitize(line.Name)), width))
		b.WriteString(BoldOff)
		if line.Options != "" {
			b.WriteString(WrapText(Sanitize(line.Options), width))
		}
		if line.Note != "" {
			b.WriteString(WrapText(Sanitize("Obs: "+line.Note), width))
		}
		if i < len(c.Lines)-1 {
			b.WriteString(sep)
		} else {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// ComposePlain renders the undecorated station layout: double-height
// header, plain item list, no cut. Used by bar-style sinks where the
// paper is torn off by hand.
func ComposePlain(c Coupon, width int) string {
	var b strings.Builder
	b.WriteString(Init)
	b.WriteString(CodePage)

	b.WriteString(AlignCenter)
	b.WriteString(DoubleSize)
	b.WriteString(fmt.Sprintf("Mesa: %s\n", c.Table))
	b.WriteString(NormalSize)

	b.WriteString(DoubleHeight)
	b.WriteString("Pedido(s):\n")
	b.WriteString(NormalSize)
	b.WriteString(renderLinesPlain(c, width))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Hora: %s\n", c.Time))
	if c.Operator != "" {
		b.WriteString(fmt.Sprintf("Operador: %s\n", c.Operator))
	}
	if c.DeliveryAddress != "" {
		b.WriteString(WrapText("Endereco: "+c.DeliveryAddress, width))
	}
	if c.Deadline != "" {
		b.WriteString(fmt.Sprintf("Prazo: %s\n", c.Deadline))
	}
	b.WriteString(Feed2)

	return b.String()
}

func renderLinesPlain(c Coupon, width int) string {
	if len(c.Lines) == 0 {
		return strings.TrimRight(WrapText(Sanitize(c.LegacyText), width), "\n")
	}

	sep := "\n" + strings.Repeat("-", width) + "\n"
	parts := make([]string, 0, len(c.Lines))
	for _, line := range c.Lines {
		qty := line.Quantity
		if qty < 1 {
			qty = 1
		}
		fields := []string{
			strings.TrimRight(WrapText(fmt.Sprintf("%dx %s", qty, Sanitize(line.Name)), width), "\n"),
		}
		if line.Options != "" {
			fields = append(fields, strings.TrimRight(WrapText(Sanitize(line.Options), width), "\n"))
		}
		if line.Note != "" {
			fields = append(fields, strings.TrimRight(WrapText(Sanitize("Obs: "+line.Note), width), "\n"))
		}
		parts = append(parts, strings.Join(fields, "\n"))
	}
	return strings.Join(parts, sep)
}
