// Package manpage renders document trees as groff manual pages.
package manpage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rgonek/manpage-builder/doctree"
)

// ErrUnknownNode is returned for unsupported nodes under UnknownError.
var ErrUnknownNode = errors.New("unknown node type")

// Result holds the output of a translation.
type Result struct {
	Text     string            `json:"text"`
	Warnings []doctree.Warning `json:"warnings,omitempty"`
}

// Translator converts document trees to groff text.
type Translator struct {
	config Config
}

type state struct {
	config       Config
	sectionLevel int
	listDepth    int
	warnings     []doctree.Warning
}

// New creates a new Translator with the given config.
func New(config Config) (*Translator, error) {
	cfg := config.applyDefaults().clone()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Translator{config: cfg}, nil
}

// Translate renders tree, which must be free of toctree and pending
// reference nodes, as a complete manual page.
func (t *Translator) Translate(tree doctree.Node) (Result, error) {
	s := &state{config: t.config}

	body, err := s.convertChildren(tree.Content)
	if err != nil {
		return Result{}, err
	}

	var sb strings.Builder
	sb.WriteString(s.header())
	sb.WriteString(body)
	sb.WriteString(s.footer())

	return Result{
		Text:     sb.String(),
		Warnings: s.warnings,
	}, nil
}

func (s *state) addWarning(warnType doctree.WarningType, nodeType, message string) {
	s.warnings = append(s.warnings, doctree.Warning{
		Type:     warnType,
		NodeType: nodeType,
		Message:  message,
	})
}

func (s *state) header() string {
	var sb strings.Builder
	sb.WriteString(".\\\" Man page generated from a documentation project.\n.\n")
	fmt.Fprintf(&sb, ".TH %s %s %s %s %s\n",
		quoteArg(strings.ToUpper(s.config.Name)),
		quoteArg(fmt.Sprint(s.config.Section)),
		quoteArg(s.config.Date),
		quoteArg(s.config.Version),
		quoteArg(s.config.ManualGroup),
	)
	if s.config.Description != "" {
		sb.WriteString(".SH NAME\n")
		sb.WriteString(escapeText(s.config.Name))
		sb.WriteString(" \\- ")
		sb.WriteString(escapeText(s.config.Description))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (s *state) footer() string {
	var sb strings.Builder
	if len(s.config.Authors) > 0 {
		sb.WriteString(".SH AUTHOR\n")
		sb.WriteString(escapeText(strings.Join(s.config.Authors, ", ")))
		sb.WriteString("\n")
	}
	if s.config.Copyright != "" {
		sb.WriteString(".SH COPYRIGHT\n")
		sb.WriteString(escapeText(s.config.Copyright))
		sb.WriteString("\n")
	}
	sb.WriteString(".\\\" Generated by manb.\n")
	return sb.String()
}

func (s *state) convertNode(node doctree.Node) (string, error) {
	switch node.Type {
	case doctree.TypeSection:
		return s.convertSection(node)

	case doctree.TypeTitle:
		return s.convertTitle(node)

	case doctree.TypeParagraph:
		return s.convertParagraph(node, true)

	case doctree.TypeBulletList, doctree.TypeOrderedList:
		return s.convertList(node)

	case doctree.TypeListItem:
		return s.convertListItem(node)

	case doctree.TypeLiteralBlock:
		return s.convertLiteralBlock(node)

	case doctree.TypeBlockquote:
		return s.convertBlockquote(node)

	case doctree.TypeRule:
		return ".sp\n.ce\n----\n\n.ce 0\n.sp\n", nil

	case doctree.TypeStartOfFile, doctree.TypeCompound, doctree.TypeDocument:
		return s.convertChildren(node.Content)

	case doctree.TypeText, doctree.TypeEmphasis, doctree.TypeStrong, doctree.TypeLiteral,
		doctree.TypeReference, doctree.TypeHardBreak:
		// Inline content outside a paragraph.
		return s.convertParagraph(doctree.New(doctree.TypeParagraph, node), true)

	default:
		return s.convertUnknown(node)
	}
}

func (s *state) convertChildren(content []doctree.Node) (string, error) {
	var sb strings.Builder
	for _, child := range content {
		res, err := s.convertNode(child)
		if err != nil {
			return "", err
		}
		sb.WriteString(res)
	}
	return sb.String(), nil
}

func (s *state) convertUnknown(node doctree.Node) (string, error) {
	switch s.config.UnknownNodes {
	case UnknownError:
		return "", fmt.Errorf("%w: %s", ErrUnknownNode, node.Type)
	case UnknownPlaceholder:
		s.addWarning(doctree.WarningUnknownNode, node.Type, fmt.Sprintf("unknown node type %q rendered as placeholder", node.Type))
		return fmt.Sprintf(".sp\n[Unknown node: %s]\n", escapeText(node.Type)), nil
	default:
		s.addWarning(doctree.WarningUnknownNode, node.Type, fmt.Sprintf("unknown node type %q skipped", node.Type))
		return "", nil
	}
}
