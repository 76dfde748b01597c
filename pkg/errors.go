package tagbump

import (
	"errors"

	"github.com/bcomnes/tagbump/pkg/execcmd"
)

// Error kinds returned by the release workflow. Errors are wrapped with
// context; test for a kind with errors.Is.
var (
	ErrVersionFileMissing = errors.New("version file missing")
	ErrVersionFormat      = errors.New("invalid version format")
	ErrVersionWrite       = errors.New("writing version file failed")
	ErrBumpFile           = errors.New("bumping version in file failed")
	ErrTagCreation        = errors.New("tag creation failed")
	ErrRemoteEnumeration  = errors.New("listing remotes failed")
	ErrPush               = errors.New("pushing tag failed")
)

// Exit codes reported by the CLI.
const (
	ExitOK             = 0
	ExitFailure        = 1
	ExitUsage          = 2
	ExitEmptyCommand   = 3
	ExitTooManyArgs    = 4
	ExitVersionMissing = 10
	ExitVersionFormat  = 11
	ExitVersionWrite   = 12
	ExitBumpFile       = 13
	ExitTagCreation    = 20
	ExitRemoteList     = 21
	ExitPush           = 22
	ExitCommandFailed  = 23
)

var exitCodes = []struct {
	kind error
	code int
}{
	{ErrVersionFileMissing, ExitVersionMissing},
	{ErrVersionFormat, ExitVersionFormat},
	{ErrVersionWrite, ExitVersionWrite},
	{ErrBumpFile, ExitBumpFile},
	{ErrTagCreation, ExitTagCreation},
	{ErrRemoteEnumeration, ExitRemoteList},
	{ErrPush, ExitPush},
	{execcmd.ErrEmptyCommand, ExitEmptyCommand},
	{execcmd.ErrCommandFailed, ExitCommandFailed},
}

// ExitCode maps err to the process exit code for its kind. Workflow kinds
// take precedence over the command failures they wrap.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	for _, ec := range exitCodes {
		if errors.Is(err, ec.kind) {
			return ec.code
		}
	}
	return ExitFailure
}
