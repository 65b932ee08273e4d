package cast

import (
	"fmt"
	"io"
	"strings"
)

// Transform rewrites a statement just before it is printed. Returning the
// statement unchanged is the common case. The printer recurses into the
// returned statement, so a transform that wraps a statement in a block will
// see the wrapped children visited afterwards.
type Transform func(*Stmt) (*Stmt, error)

// Printer pretty-prints a file, streaming every statement through an
// optional transform.
type Printer struct {
	Indent string
}

// NewPrinter returns a printer using four-space indentation.
func NewPrinter() *Printer {
	return &Printer{Indent: "    "}
}

// Fprint writes the file to w. When xform is nil statements print as-is.
func (p *Printer) Fprint(w io.Writer, f *File, xform Transform) error {
	pr := &printRun{w: w, indent: p.Indent, xform: xform}

	for i, decl := range f.Decls {
		if i > 0 {
			pr.line(0, "")
		}

		switch d := decl.(type) {
		case *RawDecl:
			pr.text(0, d.Text)
		case *FuncDef:
			pr.line(0, d.Header)

			if err := pr.stmt(d.Body, 0); err != nil {
				return err
			}
		}

		if pr.err != nil {
			return pr.err
		}
	}

	return pr.err
}

// Print renders the file to a string.
func (p *Printer) Print(f *File, xform Transform) (string, error) {
	var sb strings.Builder

	if err := p.Fprint(&sb, f, xform); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// KindText renders a single kind to text, used for listings and tests.
func KindText(k Kind) string {
	pr := &printRun{w: &strings.Builder{}, indent: "    "}
	_ = pr.stmt(&Stmt{Kind: k}, 0)

	return pr.w.(*strings.Builder).String()
}

type printRun struct {
	w      io.Writer
	indent string
	xform  Transform
	err    error
}

func (pr *printRun) stmt(s *Stmt, depth int) error {
	if s == nil {
		return nil
	}

	if pr.xform != nil {
		transformed, err := pr.xform(s)
		if err != nil {
			pr.err = err
			return err
		}

		s = transformed
	}

	for _, label := range s.Labels {
		pr.line(depth, label+":")
	}

	return pr.kind(s.Kind, depth)
}

func (pr *printRun) kind(k Kind, depth int) error {
	switch k := k.(type) {
	case *Block:
		pr.line(depth, "{")

		for _, child := range k.Stmts {
			if err := pr.stmt(child, depth+1); err != nil {
				return err
			}
		}

		pr.line(depth, "}")
	case *If:
		pr.line(depth, "if ("+string(k.Cond)+")")

		if err := pr.stmt(k.Then, depth+1); err != nil {
			return err
		}

		if k.Else != nil {
			pr.line(depth, "else")

			if err := pr.stmt(k.Else, depth+1); err != nil {
				return err
			}
		}
	case *While:
		pr.line(depth, "while ("+string(k.Cond)+")")
		return pr.stmt(k.Body, depth+1)
	case *DoWhile:
		pr.line(depth, "do")

		if err := pr.stmt(k.Body, depth+1); err != nil {
			return err
		}

		pr.line(depth, "while ("+string(k.Cond)+");")
	case *For:
		header := fmt.Sprintf("for (%s; %s; %s)", k.Init, k.Cond, k.Post)
		pr.line(depth, header)

		return pr.stmt(k.Body, depth+1)
	case *Return:
		if k.Expr == "" {
			pr.line(depth, "return;")
		} else {
			pr.line(depth, "return "+string(k.Expr)+";")
		}
	case *Instr:
		for _, instr := range k.Instrs {
			pr.line(depth, string(instr)+";")
		}
	case *Raw:
		pr.text(depth, k.Text)
	default:
		pr.err = fmt.Errorf("unknown statement kind %T", k)
		return pr.err
	}

	return nil
}

// line writes one indented line. Errors are sticky.
func (pr *printRun) line(depth int, text string) {
	if pr.err != nil {
		return
	}

	if text == "" {
		_, pr.err = io.WriteString(pr.w, "\n")
		return
	}

	_, pr.err = io.WriteString(pr.w, strings.Repeat(pr.indent, depth)+text+"\n")
}

// text writes verbatim multi-line text re-indented to depth.
func (pr *printRun) text(depth int, text string) {
	for line := range strings.SplitSeq(strings.TrimRight(text, "\n"), "\n") {
		pr.line(depth, strings.TrimRight(line, " \t"))
	}
}
