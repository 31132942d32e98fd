package diag

import "strings"

// MessageID is the stable identifier of a message; fixtures and policies match on it.
type MessageID string

// Compiler messages.
const (
	TSUnterminatedString   MessageID = "TS1002"
	TSIdentifierExpected   MessageID = "TS1003"
	TSTokenExpected        MessageID = "TS1005"
	TSCommentNotClosed     MessageID = "TS1010"
	TSTopLevelModifier     MessageID = "TS1046"
	TSTypeExpected         MessageID = "TS1110"
	TSInvalidCharacter     MessageID = "TS1127"
	TSDeclarationExpected  MessageID = "TS1128"
	TSUnterminatedTemplate MessageID = "TS1160"
	TSUnterminatedRegex    MessageID = "TS1161"
)

// Doc comment messages.
const (
	TSDocUndefinedTag               MessageID = "tsdoc-undefined-tag"
	TSDocMalformedInlineTag         MessageID = "tsdoc-malformed-inline-tag"
	TSDocInlineTagMissingBrace      MessageID = "tsdoc-inline-tag-missing-right-brace"
	TSDocParamTagMissingHyphen      MessageID = "tsdoc-param-tag-missing-hyphen"
	TSDocParamTagInvalidName        MessageID = "tsdoc-param-tag-with-invalid-name"
	TSDocMissingDeprecationMessage  MessageID = "tsdoc-missing-deprecation-message"
	TSDocMalformedReference         MessageID = "tsdoc-malformed-declaration-reference"
	TSDocExtraInheritDocTag         MessageID = "tsdoc-extra-inheritdoc-tag"
	TSDocInheritDocIncompatibleText MessageID = "tsdoc-inheritdoc-incompatible-summary"
	TSDocMissingClosingDelimiter    MessageID = "tsdoc-comment-missing-closing-delimiter"
)

// Analyzer messages.
const (
	AEMissingReleaseTag         MessageID = "ae-missing-release-tag"
	AEExtraReleaseTag           MessageID = "ae-extra-release-tag"
	AEDifferentReleaseTags      MessageID = "ae-different-release-tags"
	AEIncompatibleReleaseTags   MessageID = "ae-incompatible-release-tags"
	AEInternalMissingUnderscore MessageID = "ae-internal-missing-underscore"
	AEInternalMixedReleaseTag   MessageID = "ae-internal-mixed-release-tag"
	AEMisplacedPackageTag       MessageID = "ae-misplaced-package-tag"
	AECyclicInheritDoc          MessageID = "ae-cyclic-inherit-doc"
	AEUnresolvedInheritDocRef   MessageID = "ae-unresolved-inheritdoc-reference"
	AEUnresolvedInheritDocBase  MessageID = "ae-unresolved-inheritdoc-base"
	AEUnresolvedLink            MessageID = "ae-unresolved-link"
	AEUndocumented              MessageID = "ae-undocumented"
	AEForgottenExport           MessageID = "ae-forgotten-export"
	AECircularReexport          MessageID = "ae-circular-reexport"
	AEUnresolvedModule          MessageID = "ae-unresolved-module"
	AEUnresolvedExport          MessageID = "ae-unresolved-export"
	AEUnresolvedReference       MessageID = "ae-unresolved-reference"
	AEWrongInputFileType        MessageID = "ae-wrong-input-file-type"
	AESetterWithDocs            MessageID = "ae-setter-with-docs"
)

// Console messages.
const (
	ConsoleAPIReportCopied        MessageID = "console-api-report-copied"
	ConsoleAPIReportNotCopied     MessageID = "console-api-report-not-copied"
	ConsoleAPIReportUnchanged     MessageID = "console-api-report-unchanged"
	ConsoleAPIReportMissing       MessageID = "console-api-report-missing"
	ConsoleAPIReportCreated       MessageID = "console-api-report-created"
	ConsoleAPIReportFolderMissing MessageID = "console-api-report-folder-missing"
	ConsoleWritingDtsRollup       MessageID = "console-writing-dts-rollup"
	ConsoleWritingDocModelFile    MessageID = "console-writing-doc-model-file"
	ConsoleAnalysisCached         MessageID = "console-analysis-cached"
)

// Category derives the message category from the ID prefix.
func (id MessageID) Category() Category {
	s := string(id)
	switch {
	case strings.HasPrefix(s, "TS"):
		return CategoryCompiler
	case strings.HasPrefix(s, "tsdoc-"):
		return CategoryTSDoc
	case strings.HasPrefix(s, "console-"):
		return CategoryConsole
	default:
		return CategoryExtractor
	}
}

func (id MessageID) String() string { return string(id) }
