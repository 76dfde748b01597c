// Package main implements the tagbump CLI tool.
//
// The tagbump tool cuts a patch release. It reads a major.minor.patch version from a
// plain text file (default "tag.txt"), increments the patch component, writes the new
// version back, creates an annotated git tag named after the new version and pushes
// the tag to every configured remote, one remote at a time.
//
// Command Usage:
//
//	tagbump [flags] [sourceDirectoryPath]
//
// At most one positional argument is accepted; it must name an existing directory.
// More than one positional argument exits with status 4.
//
// Flags:
//
//	-d, --debug:        Trace to stdout. Tag and push commands are printed, not run.
//	-v, --verbose:      Print completion status and start, end and run time at exit.
//	                    May be repeated.
//	--dry:              Do not write any file or run tag/push commands.
//	--version-file:     File holding the version (default "tag.txt").
//	-m, --message:      Tag message; {version} is replaced (default "New Release {version}").
//	--bump-file:        Additional file whose main version string is set to the new
//	                    version. May be repeated.
//	--remote-backend:   "cli" lists remotes with "git remote"; "go-git" reads the
//	                    repository config directly.
//	--git:              git client to run (default "git").
//	--config:           YAML or TOML config file. Without it, .tagbump.yaml, .tagbump.yml
//	                    or .tagbump.toml in the current directory is used when present.
//	--version:          Displays the version of the tagbump CLI tool and exits.
//
// Exit Codes:
//
//	0   success
//	1   unclassified failure
//	2   invalid invocation (unknown flag, bad source directory, bad config)
//	3   empty command
//	4   too many positional arguments
//	10  version file missing
//	11  version file does not hold major.minor.patch
//	12  version file could not be written
//	13  a --bump-file could not be updated
//	20  tag creation failed (for example, the tag already exists)
//	21  remotes could not be listed
//	22  pushing the tag failed for at least one remote
//	23  any other command failure
//
// Examples:
//
//	# Bump tag.txt from 2.0.9 to 2.0.10, tag 2.0.10 and push it everywhere
//	tagbump
//
//	# Show what would happen
//	tagbump --dry
//
//	# Keep package.json in step with the version file
//	tagbump --bump-file package.json
//
// For the library API see the "pkg" package.
package main
