package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexString decodes a JSON string or number into a string. The ordering
// backend is loosely typed: ids, tables and times arrive as either.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// String returns the decoded value.
func (f FlexString) String() string { return string(f) }

// FlexInt decodes a JSON number or numeric string into an int.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	s := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// some producers send quantities as floats ("2.0", 2.5); a
		// parse failure here would poison the whole pedidos batch, so
		// truncate instead of rejecting
		fl, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return err
		}
		n = int(fl)
	}
	*f = FlexInt(n)
	return nil
}

// Order is the wire shape of one pending print order, as returned by
// POST /getPendingPrintOrders and carried by the push event. Pedido is
// either a plain string (legacy producers) or an array of OrderItem.
type Order struct {
	ID                 FlexString      `json:"id"`
	IDs                []FlexString    `json:"ids"`
	Pedido             json.RawMessage `json:"pedido"`
	Quantidade         FlexInt         `json:"quantidade"`
	Opcoes             string          `json:"opcoes"`
	Extra              string          `json:"extra"`
	Mesa               FlexString      `json:"mesa"`
	Comanda            FlexString      `json:"comanda"`
	Hora               FlexString      `json:"hora"`
	Remetente          string          `json:"remetente"`
	Endereco           string          `json:"endereco"`
	EnderecoEntrega    string          `json:"endereco_entrega"`
	Prazo              FlexString      `json:"prazo"`
	HorarioParaEntrega FlexString      `json:"horario_para_entrega"`
	SendBy             string          `json:"sendBy"`
}

// OrderItem is one structured entry of a pedido array.
type OrderItem struct {
	ID         FlexString `json:"id"`
	Pedido     FlexString `json:"pedido"`
	Nome       FlexString `json:"nome"`
	Quantidade FlexInt    `json:"quantidade"`
	Quant      FlexInt    `json:"quant"`
	Opcoes     string     `json:"opcoes"`
	Extra      string     `json:"extra"`
}

// Items decodes the pedido field as a structured item list. ok is false
// when pedido is absent, a plain string, or malformed.
func (o Order) Items() (items []OrderItem, ok bool) {
	raw := bytes.TrimSpace(o.Pedido)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

// LegacyText decodes the pedido field as the legacy free-text block.
func (o Order) LegacyText() string {
	raw := bytes.TrimSpace(o.Pedido)
	if len(raw) == 0 || raw[0] != '"' {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// CollectIDs gathers every backend identifier this order carries: the
// top-level id, the ids array, and any per-item ids. Duplicates are
// removed, insertion order kept.
func (o Order) CollectIDs() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(id string) {
		if id == "" {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	for _, id := range o.IDs {
		add(id.String())
	}
	add(o.ID.String())
	if items, ok := o.Items(); ok {
		for _, it := range items {
			add(it.ID.String())
		}
	}
	return out
}

// Table returns the station/table label, whichever alias the backend used.
func (o Order) Table() string {
	if o.Mesa != "" {
		return o.Mesa.String()
	}
	return o.Comanda.String()
}

// DeliveryAddress returns the delivery address, whichever alias was sent.
func (o Order) DeliveryAddress() string {
	if o.Endereco != "" {
		return o.Endereco
	}
	return o.EnderecoEntrega
}

// Deadline returns the delivery deadline, whichever alias was sent.
func (o Order) Deadline() string {
	if o.Prazo != "" {
		return o.Prazo.String()
	}
	return o.HorarioParaEntrega.String()
}

// NormalizeLines turns the pedido payload into the canonical line list.
// A structured array maps item by item; a legacy string (possibly with
// order-level quantity/options/note) becomes a single line. Items without
// a name are dropped.
func (o Order) NormalizeLines() []OrderLine {
	if items, ok := o.Items(); ok {
		lines := make([]OrderLine, 0, len(items))
		for _, it := range items {
			name := it.Pedido.String()
			if name == "" {
				name = it.Nome.String()
			}
			if name == "" {
				continue
			}
			qty := int(it.Quantidade)
			if qty < 1 {
				qty = int(it.Quant)
			}
			if qty < 1 {
				qty = 1
			}
			lines = append(lines, OrderLine{
				Name:     name,
				Quantity: qty,
				Options:  it.Opcoes,
				Note:     it.Extra,
				SourceID: it.ID.String(),
			})
		}
		return lines
	}

	name := o.LegacyText()
	if name == "" {
		return nil
	}
	qty := int(o.Quantidade)
	if qty < 1 {
		qty = 1
	}
	return []OrderLine{{
		Name:     name,
		Quantity: qty,
		Options:  o.Opcoes,
		Note:     o.Extra,
		SourceID: o.ID.String(),
	}}
}

// ToPrintJob normalizes the order into a queueable job. ok is false when
// the order has nothing renderable.
func (o Order) ToPrintJob(origin Origin) (PrintJob, bool) {
	lines := o.NormalizeLines()
	if len(lines) == 0 {
		return PrintJob{}, false
	}
	return PrintJob{
		IDs:               o.CollectIDs(),
		Table:             o.Table(),
		Lines:             lines,
		Timestamp:         o.Hora.String(),
		Sender:            o.Remetente,
		DeliveryAddress:   o.DeliveryAddress(),
		Deadline:          o.Deadline(),
		Operator:          o.SendBy,
		ShouldMarkPrinted: true,
		Origin:            origin,
	}, true
}
