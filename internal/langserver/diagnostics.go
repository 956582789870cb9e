package langserver

import (
	"errors"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"kansomid/internal/kerrors"
)

// DiagnosticFromError converts a compile error into an LSP diagnostic. A
// *kerrors.CompilerError carries a precise source position; anything else
// (a textir.ParseError, an ir construction panic recovered upstream) is
// reported at the top of the document instead.
func DiagnosticFromError(err error) protocol.Diagnostic {
	var ce *kerrors.CompilerError
	if errors.As(err, &ce) {
		line := uint32(0)
		col := uint32(0)
		if ce.Position.Line > 0 {
			line = uint32(ce.Position.Line - 1)
		}
		if ce.Position.Column > 0 {
			col = uint32(ce.Position.Column - 1)
		}
		length := uint32(ce.Length)
		if length == 0 {
			length = 1
		}
		return protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: line, Character: col},
				End:   protocol.Position{Line: line, Character: col + length},
			},
			Severity: severityFor(ce.Level),
			Source:   ptrString("kansomid"),
			Message:  ce.Code + ": " + ce.Message,
		}
	}

	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 0},
			End:   protocol.Position{Line: 0, Character: 1},
		},
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString("kansomid"),
		Message:  err.Error(),
	}
}

func severityFor(level kerrors.ErrorLevel) *protocol.DiagnosticSeverity {
	switch level {
	case kerrors.Warning:
		return ptrSeverity(protocol.DiagnosticSeverityWarning)
	case kerrors.Note:
		return ptrSeverity(protocol.DiagnosticSeverityInformation)
	case kerrors.Help:
		return ptrSeverity(protocol.DiagnosticSeverityHint)
	default:
		return ptrSeverity(protocol.DiagnosticSeverityError)
	}
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity { return &s }

func ptrString(s string) *string { return &s }
