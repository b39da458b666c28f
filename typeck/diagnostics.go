package typeck

import "nova/diagnostic"

// Diagnostic codes emitted by typeck (spec §4.11) and the flow analyses
// (spec §4.10), which Checker.TypeDiagnostics folds into the same result set
// so a caller gets one ordered list per method instead of stitching two.
const (
	CodeTypeMismatch     diagnostic.Code = "type-mismatch"
	CodeConditionNotBool diagnostic.Code = "condition-not-boolean"
	CodeUnresolvedMethod diagnostic.Code = "unresolved-method"
	CodeUnresolvedName   diagnostic.Code = "unresolved-name"
	CodeUnresolvedType   diagnostic.Code = "unresolved-type"
	CodeUnresolvedField  diagnostic.Code = "unresolved-field"
	CodeAmbiguousCall    diagnostic.Code = "ambiguous-call"
	CodeAmbiguousImport  diagnostic.Code = "ambiguous-import"
	CodeFlowUnreachable  diagnostic.Code = "FLOW_UNREACHABLE"
	CodeFlowUnassigned   diagnostic.Code = "FLOW_UNASSIGNED"
	CodeFlowNullDeref    diagnostic.Code = "FLOW_NULL_DEREF"
)
