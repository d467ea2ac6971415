package doctree

// WarningType categorizes build warnings.
type WarningType string

const (
	WarningNoEntries           WarningType = "no_entries"
	WarningUnknownDocument     WarningType = "unknown_document"
	WarningMissingDocument     WarningType = "missing_document"
	WarningUnresolvedReference WarningType = "unresolved_reference"
	WarningUnknownNode         WarningType = "unknown_node"
	WarningDuplicateLabel      WarningType = "duplicate_label"
	WarningDuplicateDocument   WarningType = "duplicate_document"
)

// Warning represents a non-fatal issue encountered while building.
type Warning struct {
	Type     WarningType `json:"type"`
	Docname  string      `json:"docname,omitempty"`
	NodeType string      `json:"nodeType,omitempty"`
	Message  string      `json:"message"`
}
