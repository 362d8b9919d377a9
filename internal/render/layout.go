package render

import (
	"math"
	"strings"
	"time"
)

// Page geometry in points (A4 landscape).
const (
	PageWidth  = 842.0
	PageHeight = 595.0

	outerInset = 20.0
	innerInset = 30.0
	maxText    = 602.0
	logoMaxW   = 200.0
	logoMaxH   = 50.0
	footerRule = PageHeight - 95
	footerCol  = 200.0

	descSize     = 12.0
	msgSize      = 11.0
	minBodyScale = 0.5
)

// Title is printed on every certificate; templates only change its colors and font.
const Title = "CERTIFICATE OF RECOGNITION"

// Font is a core font family plus style ("", "B", "I", "BI").
type Font struct {
	Family string
	Style  string
}

// FontFamily maps a design font name to a core PDF font.
func FontFamily(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sans", "sans-serif", "helvetica", "arial":
		return "Helvetica"
	case "mono", "monospace", "courier":
		return "Courier"
	default:
		return "Times"
	}
}

type OpKind int

const (
	OpFill OpKind = iota
	OpStroke
	OpLine
	OpText
	OpImage
)

// Op is one drawing instruction. Y grows downward; text Y is the baseline.
type Op struct {
	Kind      OpKind
	X, Y      float64
	W, H      float64
	X2, Y2    float64
	LineWidth float64
	Color     RGB
	Font      Font
	Size      float64
	Text      string
}

// Plan is the full, ordered drawing of one certificate page. Overflow is set
// when the body text could not fit above the signature block even at the
// smallest size.
type Plan struct {
	Ops      []Op
	Overflow bool
}

// Texts returns the text ops in drawing order.
func (p Plan) Texts() []Op {
	var out []Op
	for _, op := range p.Ops {
		if op.Kind == OpText {
			out = append(out, op)
		}
	}
	return out
}

// Metrics measures rendered string width.
type Metrics interface {
	Width(f Font, size float64, s string) float64
}

// Logo is a registered image with its natural size.
type Logo struct {
	W, H float64
}

// fitBox scales w×h down to fit the max box, preserving aspect ratio.
func fitBox(w, h, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	s := math.Min(maxW/w, maxH/h)
	if s > 1 {
		s = 1
	}
	return w * s, h * s
}

type planner struct {
	m   Metrics
	ops []Op
}

func (p *planner) add(op Op) { p.ops = append(p.ops, op) }

func (p *planner) centered(text string, f Font, size float64, c RGB, y float64) float64 {
	w := p.m.Width(f, size, text)
	p.add(Op{Kind: OpText, X: (PageWidth - w) / 2, Y: y, Font: f, Size: size, Color: c, Text: text})
	return w
}

func (p *planner) column(text string, f Font, size float64, c RGB, cx, y float64) {
	if text == "" {
		return
	}
	w := p.m.Width(f, size, text)
	p.add(Op{Kind: OpText, X: cx - w/2, Y: y, Font: f, Size: size, Color: c, Text: text})
}

func (p *planner) hline(cx, y, half, width float64, c RGB) {
	p.add(Op{Kind: OpLine, X: cx - half, Y: y, X2: cx + half, Y2: y, LineWidth: width, Color: c})
}

// Layout computes the page top-down from a running cursor. logo is nil when
// there is no usable logo. now is only used for the footer date.
func Layout(in Input, logo *Logo, m Metrics, now time.Time) Plan {
	d := in.Template.Design
	primary := ColorOr(in.Template.PrimaryColor, DefaultPrimary)
	secondary := ColorOr(in.Template.SecondaryColor, DefaultSecondary)
	accent := ColorOr(d.AccentColor, primary)
	border := ColorOr(d.BorderColor, accent)
	bg := ColorOr(d.Background, DefaultBackground)
	tierColor := ColorOr(in.Tier.Color, secondary)

	titleFam := FontFamily(d.TitleFont)
	bodyFam := FontFamily(d.BodyFont)
	bold := Font{Family: titleFam, Style: "B"}
	italic := Font{Family: bodyFam, Style: "I"}
	plain := Font{Family: bodyFam}

	p := &planner{m: m}
	cx := PageWidth / 2

	p.add(Op{Kind: OpFill, W: PageWidth, H: PageHeight, Color: bg})
	p.add(Op{Kind: OpStroke, X: outerInset, Y: outerInset, W: PageWidth - 2*outerInset, H: PageHeight - 2*outerInset, LineWidth: 4, Color: border})
	p.add(Op{Kind: OpStroke, X: innerInset, Y: innerInset, W: PageWidth - 2*innerInset, H: PageHeight - 2*innerInset, LineWidth: 1, Color: secondary})

	y := 55.0
	if logo != nil {
		w, h := fitBox(logo.W, logo.H, logoMaxW, logoMaxH)
		if w > 0 {
			p.add(Op{Kind: OpImage, X: cx - w/2, Y: y, W: w, H: h})
			y += h + 12
		}
	} else {
		y += 8
	}

	y += 32
	p.centered(Title, bold, 36, primary, y)
	y += 14
	p.hline(cx, y, 150, 2, primary)
	y += 5
	p.hline(cx, y, 100, 0.75, secondary)

	y += 32
	p.centered("This certifies that", italic, 14, Muted, y)

	y += 46
	nameW := p.centered(in.Employee.Name, bold, 40, Ink, y)
	underline := math.Min(nameW+40, 500)
	p.hline(cx, y+10, underline/2, 1, secondary)

	y += 38
	p.centered("has been recognized as", italic, 14, Muted, y)

	y += 34
	p.centered(strings.ToUpper(in.Tier.Name), bold, 28, tierColor, y)

	if period := strings.TrimSpace(in.Period); period != "" {
		y += 22
		p.centered("for "+period, plain, 12, Muted, y)
	}

	var quoted string
	if msg := strings.TrimSpace(in.CustomMessage); msg != "" {
		quoted = "“" + msg + "”"
	}
	// Body text stops above the signature block.
	body, fits := fitBody(in.Description(), quoted, italic, m, footerRule-40-y)
	if len(body.desc)+len(body.msg) > 0 {
		y += 10
	}
	for _, l := range body.desc {
		y += body.descLead
		p.centered(l, italic, body.descSize, Ink, y)
	}
	if len(body.msg) > 0 && len(body.desc) > 0 {
		y += body.gap
	}
	for _, l := range body.msg {
		y += body.msgLead
		p.centered(l, italic, body.msgSize, Light, y)
	}

	sig := ResolveSignature(in.Override, in.Sender, in.Global)
	left, right := footerCol, PageWidth-footerCol

	p.column(now.Format("January 2, 2006"), plain, 12, Ink, left, footerRule-6)
	p.hline(left, footerRule, 90, 0.75, Ink)
	p.column("Date", plain, 10, Muted, left, footerRule+14)

	p.column(sig.Name, Font{Family: bodyFam, Style: "B"}, 12, Ink, right, footerRule-6)
	p.hline(right, footerRule, 90, 0.75, Ink)
	p.column(sig.Title, plain, 10, secondary, right, footerRule+14)

	p.centered("Certificate ID: "+in.CertificateID.String(), Font{Family: "Helvetica"}, 8, Light, PageHeight-40)

	return Plan{Ops: p.ops, Overflow: !fits}
}

// bodyText is the wrapped description and message at the chosen scale.
type bodyText struct {
	desc, msg          []string
	descSize, descLead float64
	msgSize, msgLead   float64
	gap                float64
}

func (b bodyText) height() float64 {
	h := float64(len(b.desc))*b.descLead + float64(len(b.msg))*b.msgLead
	if len(b.desc) > 0 || len(b.msg) > 0 {
		h += 10
	}
	if len(b.desc) > 0 && len(b.msg) > 0 {
		h += b.gap
	}
	return h
}

// fitBody wraps the description and quoted message, shrinking both in 5%
// steps until they fit in avail points. It reports false when even
// minBodyScale does not fit; the returned text is then at minBodyScale.
func fitBody(desc, msg string, f Font, m Metrics, avail float64) (bodyText, bool) {
	var b bodyText
	for step := 0; ; step++ {
		scale := 1 - 0.05*float64(step)
		b = bodyText{
			descSize: descSize * scale, descLead: 16 * scale,
			msgSize: msgSize * scale, msgLead: 15 * scale,
			gap: 8 * scale,
		}
		b.desc = Wrap(desc, maxText, func(s string) float64 { return m.Width(f, b.descSize, s) })
		b.msg = Wrap(msg, maxText, func(s string) float64 { return m.Width(f, b.msgSize, s) })
		if b.height() <= avail {
			return b, true
		}
		if scale-0.05 < minBodyScale-1e-9 {
			return b, false
		}
	}
}
