package exc

const (
	CodeUnknownFatal                  = "K0000"
	CodeFileNotFound                  = "K0001"
	CodeUnsuportedFileSystemOperation = "K0002"
	CodePermissionDenied              = "K0003"
	CodeUnsupportedFileFormat         = "K0004"
	CodeUnexpectedEOF                 = "K0005"
	CodeInvalidNumber                 = "K0006"
	CodeUnrecognizedToken             = "K0007"
	CodeUnrecognizedOperator          = "K0008"
	CodeNoAlternative                 = "K0009"
	CodeInvalidExpression             = "K0010"
	CodeDuplicateDefinition           = "K0011"
	CodeInvalidConfig                 = "K0012"
)

const (
	CodeEOF = "_EOF_"
)

var (
	defaultNonFatal = map[string]bool{}
)
