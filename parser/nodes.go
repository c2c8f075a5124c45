package parser

// NodeKind classifies the grammatical role of a syntax tree node.
// Kinds mirror the POSIX shell grammar productions; structural kinds
// (NodeList, NodeSeparator, ...) carry no token payload.
type NodeKind uint8

const (
	NodeProgram NodeKind = iota
	NodeCompleteCommand
	NodeList
	NodeAndOr
	NodePipeline
	NodePipeSequence
	NodeCommand
	NodeCompoundCommand
	NodeSubshell
	NodeFunctionDefinition
	NodeSimpleCommand
	NodeCmdName
	NodeCmdWord
	NodeCmdPrefix
	NodeCmdSuffix
	NodeRedirectList
	NodeSeparator
	NodeReserved
)

func (k NodeKind) String() string {
	switch k {
	case NodeProgram:
		return "program"
	case NodeCompleteCommand:
		return "complete_command"
	case NodeList:
		return "list"
	case NodeAndOr:
		return "and_or"
	case NodePipeline:
		return "pipeline"
	case NodePipeSequence:
		return "pipe_sequence"
	case NodeCommand:
		return "command"
	case NodeCompoundCommand:
		return "compound_command"
	case NodeSubshell:
		return "subshell"
	case NodeFunctionDefinition:
		return "function_definition"
	case NodeSimpleCommand:
		return "simple_command"
	case NodeCmdName:
		return "cmd_name"
	case NodeCmdWord:
		return "cmd_word"
	case NodeCmdPrefix:
		return "cmd_prefix"
	case NodeCmdSuffix:
		return "cmd_suffix"
	case NodeRedirectList:
		return "redirect_list"
	case NodeSeparator:
		return "separator"
	case NodeReserved:
		return "reserved"
	default:
		return "unknown"
	}
}
