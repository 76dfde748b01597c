// Package tagbump provides a library for cutting patch releases from a plain
// version file.
//
// It provides functionalities for:
//   - Reading and writing a version file that holds a single major.minor.patch line.
//   - Bumping the patch component (major and minor never change).
//   - Propagating the new version into other files (package.json, Cargo.toml, Makefiles).
//   - Creating an annotated git tag named after the new version and pushing it to
//     every configured remote, with remotes listed by "git remote" or go-git.
//
// Every failure is reported as a wrapped error of a known kind (ErrVersionFileMissing,
// ErrVersionFormat, ErrTagCreation, ErrRemoteEnumeration, ErrPush, ...) and ExitCode
// maps it to the process exit status used by the CLI.
//
// Usage Example:
//
//	import (
//	    "log"
//	    "github.com/bcomnes/tagbump/pkg"
//	)
//
//	func main() {
//	    meta, err := tagbump.Run(tagbump.Options{VersionFile: "tag.txt"})
//	    if err != nil {
//	        log.Fatalf("release failed: %v", err)
//	    }
//	    log.Printf("released %s", meta.Tag)
//	}
//
// Commands are run through the execcmd subpackage, which can also be used on its
// own to run shell commands, command lists as scripts, and dry runs.
package tagbump
