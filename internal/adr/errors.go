package adr

import "errors"

// Status values produced by the engine.
const (
	StatusProposed = "Proposed"
	StatusAccepted = "Accepted"
	StatusRejected = "Rejected"

	statusSupersededPrefix = "Superseded by "
)

// Error variables for ADR operations.
var (
	ErrConfigFileNotFound      = errors.New("config file not found")
	ErrConfigFileRead          = errors.New("cannot read config file")
	ErrConfigInvalid           = errors.New("invalid config file")
	ErrUnsupportedConfigFormat = errors.New("unsupported config extension")
	ErrDirEmpty                = errors.New("adr_dir cannot be empty")
	ErrIndexNameEmpty          = errors.New("index_name cannot be empty")
	ErrExtensionInvalid        = errors.New("format must be md or mdx")
	ErrFlagRequiresArg         = errors.New("flag requires an argument")
	ErrUnknownFlag             = errors.New("unknown flag")
	ErrNotFound                = errors.New("ADR not found")
	ErrTemplateRead            = errors.New("cannot read template")
	ErrSuperseded              = errors.New("ADR is superseded")
	ErrAlreadySuperseded       = errors.New("ADR is already superseded")
	ErrTitleRequired           = errors.New("title is required")
	ErrInvalidNumber           = errors.New("invalid ADR number")
	ErrMalformedFrontMatter    = errors.New("malformed front matter")
	ErrFileExists              = errors.New("ADR file already exists")
)
